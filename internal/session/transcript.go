package session

import (
	"time"

	"github.com/csheth/notable/internal/llm"
)

// Turn is one entry of the chat transcript.
type Turn struct {
	Role llm.Role
	Text string
	At   time.Time
}

// Transcript is the ordered chat history shown in the chat overlay. It lives
// only while the overlay is open.
type Transcript struct {
	turns []Turn
}

// Turns returns a copy of the entries.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of entries.
func (t *Transcript) Len() int { return len(t.turns) }

// Last returns the newest entry.
func (t *Transcript) Last() (Turn, bool) {
	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}

// LastReply returns the newest assistant text, or "".
func (t *Transcript) LastReply() string {
	for i := len(t.turns) - 1; i >= 0; i-- {
		if t.turns[i].Role == llm.RoleAssistant {
			return t.turns[i].Text
		}
	}
	return ""
}

// History converts the transcript to model messages.
func (t *Transcript) History() []llm.Message {
	out := make([]llm.Message, 0, len(t.turns))
	for _, turn := range t.turns {
		out = append(out, llm.Message{Role: turn.Role, Content: turn.Text})
	}
	return out
}

func (t *Transcript) append(role llm.Role, text string, at time.Time) {
	t.turns = append(t.turns, Turn{Role: role, Text: text, At: at})
}

func (t *Transcript) reset() {
	t.turns = nil
}
