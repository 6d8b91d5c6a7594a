// Package selection normalizes selection-change events from the editor into
// a single Selection value.
package selection

import (
	"strings"

	"github.com/csheth/notable/internal/geometry"
)

// Source identifies where a selection event came from.
type Source int

const (
	SourcePointer Source = iota
	SourceKeyboard
	SourceRichText
)

func (s Source) String() string {
	switch s {
	case SourcePointer:
		return "pointer"
	case SourceKeyboard:
		return "keyboard"
	case SourceRichText:
		return "richtext"
	default:
		return "unknown"
	}
}

// Payload is implemented by the per-source event payloads.
type Payload interface {
	source() Source
}

// Pointer is a mouse release inside the editable surface.
type Pointer struct {
	Start, End int
	Release    geometry.Point
}

// Keyboard is the key press that finished a keyboard selection.
type Keyboard struct {
	Start, End int
}

// RichText is a selection made in the rendered preview, where only the
// selected string and its on-screen bounds are known.
type RichText struct {
	Text   string
	Bounds geometry.Rect
}

func (Pointer) source() Source  { return SourcePointer }
func (Keyboard) source() Source { return SourceKeyboard }
func (RichText) source() Source { return SourceRichText }

// Event is a selection-change notification. Revision is the surface revision
// the event was captured against.
type Event struct {
	Revision uint64
	Payload  Payload
}

// Source reports the payload's source.
func (e Event) Source() Source {
	if e.Payload == nil {
		return SourceKeyboard
	}
	return e.Payload.source()
}

// Surface is the view of the editor the normalizer needs.
type Surface interface {
	Revision() uint64
	Slice(start, end int) (string, bool)
	// Caret returns the viewport-relative cell of a text offset.
	Caret(offset int) (geometry.Point, bool)
}

// Selection is a non-empty, trimmed selection with its anchor point.
type Selection struct {
	Text   string
	Start  int
	End    int
	Source Source
	Anchor geometry.Point
}

// Kind classifies the outcome of normalizing an event.
type Kind int

const (
	// Ignored events leave the current selection untouched.
	Ignored Kind = iota
	// Cleared means there is no selection; overlays must close.
	Cleared
	// Selected carries a usable selection.
	Selected
)

func (k Kind) String() string {
	switch k {
	case Cleared:
		return "cleared"
	case Selected:
		return "selected"
	default:
		return "ignored"
	}
}

// Result is the normalized outcome of one event.
type Result struct {
	Kind      Kind
	Selection Selection
}

// Normalize resolves an event of any source against the surface.
func Normalize(ev Event, surface Surface) Result {
	if ev.Payload == nil || surface == nil {
		return Result{Kind: Ignored}
	}

	switch p := ev.Payload.(type) {
	case RichText:
		text := strings.TrimSpace(p.Text)
		if text == "" {
			return Result{Kind: Cleared}
		}
		anchor := geometry.Point{X: p.Bounds.X + p.Bounds.W/2, Y: p.Bounds.Y}
		return Result{Kind: Selected, Selection: Selection{Text: text, Start: -1, End: -1, Source: SourceRichText, Anchor: anchor}}
	case Pointer:
		return normalizeRange(ev.Revision, p.Start, p.End, SourcePointer, &p.Release, surface)
	case Keyboard:
		return normalizeRange(ev.Revision, p.Start, p.End, SourceKeyboard, nil, surface)
	default:
		return Result{Kind: Ignored}
	}
}

func normalizeRange(rev uint64, start, end int, src Source, release *geometry.Point, surface Surface) Result {
	if rev != surface.Revision() {
		// The text changed underneath the event.
		return Result{Kind: Ignored}
	}
	if start > end {
		start, end = end, start
	}
	if start == end {
		return Result{Kind: Cleared}
	}
	raw, ok := surface.Slice(start, end)
	if !ok {
		return Result{Kind: Ignored}
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return Result{Kind: Cleared}
	}
	caret, ok := surface.Caret(end)
	if release != nil {
		// The pointer row is where the user let go; the caret gives the column.
		if !ok {
			caret.X = release.X
		}
		caret.Y = release.Y
	}
	return Result{Kind: Selected, Selection: Selection{Text: text, Start: start, End: end, Source: src, Anchor: caret}}
}

// Tracker remembers the current selection.
type Tracker struct {
	current *Selection
}

// Observe normalizes ev and updates the tracker. Ignored events leave the
// tracker as it was.
func (t *Tracker) Observe(ev Event, surface Surface) Result {
	res := Normalize(ev, surface)
	switch res.Kind {
	case Selected:
		sel := res.Selection
		t.current = &sel
	case Cleared:
		t.current = nil
	}
	return res
}

// Clear forgets the current selection, e.g. when focus leaves the editor.
func (t *Tracker) Clear() {
	t.current = nil
}

// Current returns the tracked selection.
func (t *Tracker) Current() (Selection, bool) {
	if t.current == nil {
		return Selection{}, false
	}
	return *t.current, true
}
