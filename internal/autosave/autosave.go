// Package autosave buffers rapid local edits and releases at most one
// persistence call per quiet window.
//
// The buffer is a two-state value: Pending while the display holds edits the
// store has not confirmed, Confirmed once the display matches the last value
// the store acknowledged. Timers are generation-stamped: every edit advances
// the generation, and only a tick carrying the newest generation releases a
// value, so the released value is always the latest one.
package autosave

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultWindow is the quiet period after the last edit before a save.
const DefaultWindow = 300 * time.Millisecond

// State is the sync state of the displayed content.
type State int

const (
	Confirmed State = iota
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "confirmed"
}

// TickMsg is delivered when a debounce window elapses.
type TickMsg struct {
	Key string
	Gen uint64
}

// Sync is the debounced content buffer for one note. It is driven from a
// single goroutine (the TUI update loop).
type Sync struct {
	key    string
	window time.Duration

	display   string
	confirmed string
	state     State

	gen          uint64
	confirmedGen uint64
	lastErr      error
}

// New returns a confirmed buffer holding the stored content.
func New(key, content string, window time.Duration) *Sync {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Sync{key: key, window: window, display: content, confirmed: content}
}

// Key identifies the note the buffer belongs to.
func (s *Sync) Key() string { return s.key }

// Display returns what the editor should show.
func (s *Sync) Display() string { return s.display }

// Confirmed returns the last value the store acknowledged.
func (s *Sync) Confirmed() string { return s.confirmed }

// State returns Pending or Confirmed.
func (s *Sync) State() State { return s.state }

// Window returns the debounce window.
func (s *Sync) Window() time.Duration { return s.window }

// Gen returns the current generation.
func (s *Sync) Gen() uint64 { return s.gen }

// LastError returns the most recent persistence failure, cleared on success.
func (s *Sync) LastError() error { return s.lastErr }

// Edit records a local change. The display updates immediately; the returned
// generation must come back through Fire once the window has elapsed.
func (s *Sync) Edit(value string) uint64 {
	s.display = value
	s.gen++
	if value == s.confirmed {
		s.state = Confirmed
	} else {
		s.state = Pending
	}
	return s.gen
}

// Schedule returns a command that delivers a TickMsg for gen after the window.
func (s *Sync) Schedule(gen uint64) tea.Cmd {
	key := s.key
	return tea.Tick(s.window, func(time.Time) tea.Msg {
		return TickMsg{Key: key, Gen: gen}
	})
}

// Fire is called when the tick for gen arrives. It returns the value to
// persist, or false when a newer edit superseded gen or nothing is pending.
func (s *Sync) Fire(gen uint64) (string, bool) {
	if gen != s.gen || s.state != Pending {
		return "", false
	}
	return s.display, true
}

// Flush returns the pending value immediately, bypassing the window. The
// generation advances so an armed tick releases nothing.
func (s *Sync) Flush() (string, uint64, bool) {
	if s.state != Pending {
		return "", s.gen, false
	}
	s.gen++
	return s.display, s.gen, true
}

// Confirm records that the store accepted value, released at generation gen.
// Confirmations older than one already applied are dropped.
//
// When the store now holds something other than the display while the
// buffer believed it was confirmed (an edit returned to the old stored value
// while a save was in flight), the buffer goes back to Pending and Confirm
// returns a fresh generation the caller must Schedule.
func (s *Sync) Confirm(gen uint64, value string) (uint64, bool) {
	if gen < s.confirmedGen {
		return 0, false
	}
	s.confirmedGen = gen
	s.confirmed = value
	s.lastErr = nil
	if s.display == value {
		s.state = Confirmed
		return 0, false
	}
	if s.state == Pending {
		return 0, false
	}
	s.state = Pending
	s.gen++
	return s.gen, true
}

// Fail records a persistence failure. The display is never rolled back.
func (s *Sync) Fail(gen uint64, err error) {
	if gen < s.confirmedGen {
		return
	}
	s.lastErr = err
}

// Replace swaps in a programmatic replacement (an AI edit) that must be
// persisted now rather than after the window. Any armed tick is invalidated;
// the caller persists the value under the returned generation.
func (s *Sync) Replace(value string) uint64 {
	s.gen++
	s.display = value
	if value == s.confirmed {
		s.state = Confirmed
	} else {
		s.state = Pending
	}
	return s.gen
}

// Resync replaces the display with an externally updated value that the
// store already holds, bypassing the debounce. Any armed tick is invalidated.
func (s *Sync) Resync(value string) {
	s.gen++
	s.confirmedGen = s.gen
	s.display = value
	s.confirmed = value
	s.state = Confirmed
	s.lastErr = nil
}
