package session

import "context"

// Ticket identifies one dispatched action.
type Ticket uint64

// Kind names the action occupying the request slot.
type Kind int

const (
	KindChat Kind = iota + 1
	KindEdit
	KindDiagram
	KindLecture
)

func (k Kind) String() string {
	switch k {
	case KindChat:
		return "chat"
	case KindEdit:
		return "edit"
	case KindDiagram:
		return "diagram"
	case KindLecture:
		return "lecture"
	default:
		return "unknown"
	}
}

// slot holds at most one in-flight action. Issuing a new ticket cancels the
// previous action's context; results for any ticket but the current one are
// stale.
type slot struct {
	next    Ticket
	current Ticket
	kind    Kind
	cancel  context.CancelFunc
	active  bool
}

func (s *slot) issue(parent context.Context, kind Kind) (Ticket, context.Context) {
	s.abort()
	s.next++
	ctx, cancel := context.WithCancel(parent)
	s.current = s.next
	s.kind = kind
	s.cancel = cancel
	s.active = true
	return s.current, ctx
}

// settle reports whether t is the in-flight ticket and frees the slot if so.
func (s *slot) settle(t Ticket) bool {
	if !s.active || t != s.current {
		return false
	}
	s.cancel()
	s.active = false
	return true
}

// abortKind cancels the in-flight action if it is of kind k.
func (s *slot) abortKind(k Kind) {
	if s.active && s.kind == k {
		s.abort()
	}
}

func (s *slot) abort() {
	if !s.active {
		return
	}
	s.cancel()
	s.active = false
}

func (s *slot) busy() (Kind, bool) {
	return s.kind, s.active
}
