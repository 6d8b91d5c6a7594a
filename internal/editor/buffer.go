// Package editor implements the plain-text editing surface used by the note
// editor: a rune buffer with a cursor, a selection anchor, soft wrapping and
// a vertical scroll offset.
package editor

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"

	"github.com/csheth/notable/internal/geometry"
)

// Buffer is a wrapped, scrollable text buffer. Offsets are rune indexes.
type Buffer struct {
	text     []rune
	cursor   int
	anchor   int
	revision uint64

	width  int
	height int
	scroll int

	lines []visualLine
	dirty bool
	// goal column kept across vertical moves
	goal int
}

type visualLine struct {
	start, end int
}

// New returns a buffer holding text with the cursor at the end.
func New(text string) *Buffer {
	b := &Buffer{width: 80, height: 20}
	b.SetText(text)
	return b
}

// SetText replaces the whole content. The selection collapses at the end and
// the revision advances, so any in-flight selection event becomes stale.
func (b *Buffer) SetText(text string) {
	b.text = []rune(text)
	b.cursor = len(b.text)
	b.anchor = b.cursor
	b.goal = -1
	b.touch()
	b.ensureVisible()
}

// Text returns the content.
func (b *Buffer) Text() string {
	return string(b.text)
}

// Len returns the content length in runes.
func (b *Buffer) Len() int {
	return len(b.text)
}

// Revision changes whenever the text changes.
func (b *Buffer) Revision() uint64 {
	return b.revision
}

// Cursor returns the caret offset.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// Resize sets the wrap width and the number of visible rows.
func (b *Buffer) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if width != b.width {
		b.dirty = true
	}
	b.width = width
	b.height = height
	b.ensureVisible()
}

// Size returns the viewport size in cells.
func (b *Buffer) Size() geometry.Size {
	return geometry.Size{Width: b.width, Height: b.height}
}

// Scroll returns the first visible row.
func (b *Buffer) Scroll() int {
	return b.scroll
}

// ScrollBy moves the viewport without moving the cursor.
func (b *Buffer) ScrollBy(delta int) {
	maxScroll := len(b.layout()) - b.height
	if maxScroll < 0 {
		maxScroll = 0
	}
	b.scroll += delta
	if b.scroll > maxScroll {
		b.scroll = maxScroll
	}
	if b.scroll < 0 {
		b.scroll = 0
	}
}

// Selection returns the ordered selection range; start == end when collapsed.
func (b *Buffer) Selection() (start, end int) {
	if b.anchor <= b.cursor {
		return b.anchor, b.cursor
	}
	return b.cursor, b.anchor
}

// HasSelection reports whether a non-empty range is selected.
func (b *Buffer) HasSelection() bool {
	return b.anchor != b.cursor
}

// Slice returns text[start:end]. ok is false when the range is out of bounds.
func (b *Buffer) Slice(start, end int) (string, bool) {
	if start < 0 || end > len(b.text) || start > end {
		return "", false
	}
	return string(b.text[start:end]), true
}

// SelectedText returns the raw selected text.
func (b *Buffer) SelectedText() string {
	start, end := b.Selection()
	return string(b.text[start:end])
}

// Collapse drops the selection, keeping the cursor.
func (b *Buffer) Collapse() {
	b.anchor = b.cursor
}

// SelectAll selects the whole buffer.
func (b *Buffer) SelectAll() {
	b.anchor = 0
	b.cursor = len(b.text)
	b.ensureVisible()
}

// Select sets an explicit range with the cursor at end.
func (b *Buffer) Select(start, end int) {
	b.anchor = clamp(start, 0, len(b.text))
	b.cursor = clamp(end, 0, len(b.text))
	b.goal = -1
	b.ensureVisible()
}

// Insert replaces the selection (if any) with s.
func (b *Buffer) Insert(s string) {
	runes := []rune(s)
	start, end := b.Selection()
	next := make([]rune, 0, len(b.text)-(end-start)+len(runes))
	next = append(next, b.text[:start]...)
	next = append(next, runes...)
	next = append(next, b.text[end:]...)
	b.text = next
	b.cursor = start + len(runes)
	b.anchor = b.cursor
	b.goal = -1
	b.touch()
	b.ensureVisible()
}

// Backspace deletes the selection or the rune before the cursor.
func (b *Buffer) Backspace() bool {
	if b.HasSelection() {
		b.Insert("")
		return true
	}
	if b.cursor == 0 {
		return false
	}
	b.anchor = b.cursor - 1
	b.Insert("")
	return true
}

// Delete deletes the selection or the rune after the cursor.
func (b *Buffer) Delete() bool {
	if b.HasSelection() {
		b.Insert("")
		return true
	}
	if b.cursor >= len(b.text) {
		return false
	}
	b.anchor = b.cursor + 1
	b.Insert("")
	return true
}

// Motion names a cursor movement.
type Motion int

const (
	MoveLeft Motion = iota
	MoveRight
	MoveUp
	MoveDown
	MoveLineStart
	MoveLineEnd
	MoveWordLeft
	MoveWordRight
	MovePageUp
	MovePageDown
	MoveDocStart
	MoveDocEnd
)

// Move moves the cursor. With extend the anchor stays put and the selection grows.
func (b *Buffer) Move(m Motion, extend bool) {
	if !extend && b.HasSelection() && (m == MoveLeft || m == MoveRight) {
		start, end := b.Selection()
		if m == MoveLeft {
			b.cursor = start
		} else {
			b.cursor = end
		}
		b.anchor = b.cursor
		b.goal = -1
		b.ensureVisible()
		return
	}

	switch m {
	case MoveLeft:
		if b.cursor > 0 {
			b.cursor--
		}
		b.goal = -1
	case MoveRight:
		if b.cursor < len(b.text) {
			b.cursor++
		}
		b.goal = -1
	case MoveUp:
		b.moveVertical(-1)
	case MoveDown:
		b.moveVertical(1)
	case MovePageUp:
		b.moveVertical(-b.height)
	case MovePageDown:
		b.moveVertical(b.height)
	case MoveLineStart:
		caret := b.caret(b.cursor)
		b.cursor = b.OffsetAt(caret.Y, 0)
		b.goal = -1
	case MoveLineEnd:
		caret := b.caret(b.cursor)
		lines := b.layout()
		b.cursor = lines[caret.Y].end
		b.goal = -1
	case MoveWordLeft:
		b.cursor = b.wordLeft(b.cursor)
		b.goal = -1
	case MoveWordRight:
		b.cursor = b.wordRight(b.cursor)
		b.goal = -1
	case MoveDocStart:
		b.cursor = 0
		b.goal = -1
	case MoveDocEnd:
		b.cursor = len(b.text)
		b.goal = -1
	}
	if !extend {
		b.anchor = b.cursor
	}
	b.ensureVisible()
}

func (b *Buffer) moveVertical(rows int) {
	caret := b.caret(b.cursor)
	if b.goal < 0 {
		b.goal = caret.X
	}
	b.cursor = b.OffsetAt(caret.Y+rows, b.goal)
}

func (b *Buffer) wordLeft(pos int) int {
	for pos > 0 && unicode.IsSpace(b.text[pos-1]) {
		pos--
	}
	for pos > 0 && !unicode.IsSpace(b.text[pos-1]) {
		pos--
	}
	return pos
}

func (b *Buffer) wordRight(pos int) int {
	n := len(b.text)
	for pos < n && !unicode.IsSpace(b.text[pos]) {
		pos++
	}
	for pos < n && unicode.IsSpace(b.text[pos]) {
		pos++
	}
	return pos
}

// Caret returns the on-screen cell of offset relative to the viewport's top-left.
// ok is false when the offset is out of range or scrolled out of view.
func (b *Buffer) Caret(offset int) (geometry.Point, bool) {
	if offset < 0 || offset > len(b.text) {
		return geometry.Point{}, false
	}
	p := b.caret(offset)
	p.Y -= b.scroll
	if p.Y < 0 || p.Y >= b.height {
		return p, false
	}
	return p, true
}

// caret returns the absolute (unscrolled) cell of offset.
func (b *Buffer) caret(offset int) geometry.Point {
	lines := b.layout()
	for i, ln := range lines {
		if offset < ln.start || offset > ln.end {
			continue
		}
		// At a soft-wrap boundary the caret belongs to the continuation row.
		if offset == ln.end && i+1 < len(lines) && lines[i+1].start == ln.end {
			continue
		}
		return geometry.Point{X: runewidth.StringWidth(string(b.text[ln.start:offset])), Y: i}
	}
	last := lines[len(lines)-1]
	return geometry.Point{X: runewidth.StringWidth(string(b.text[last.start:last.end])), Y: len(lines) - 1}
}

// OffsetAt maps an absolute row/column to the nearest rune offset.
func (b *Buffer) OffsetAt(row, col int) int {
	lines := b.layout()
	row = clamp(row, 0, len(lines)-1)
	ln := lines[row]
	width := 0
	for i := ln.start; i < ln.end; i++ {
		w := runewidth.RuneWidth(b.text[i])
		if width+w > col {
			return i
		}
		width += w
	}
	return ln.end
}

// OffsetAtScreen maps a viewport-relative cell to an offset.
func (b *Buffer) OffsetAtScreen(x, y int) int {
	return b.OffsetAt(y+b.scroll, x)
}

// MoveTo places the cursor at offset, optionally extending the selection.
func (b *Buffer) MoveTo(offset int, extend bool) {
	b.cursor = clamp(offset, 0, len(b.text))
	if !extend {
		b.anchor = b.cursor
	}
	b.goal = -1
	b.ensureVisible()
}

// Rows returns the number of wrapped rows.
func (b *Buffer) Rows() int {
	return len(b.layout())
}

// VisibleLine describes one on-screen row.
type VisibleLine struct {
	Start, End int
	Text       string
}

// Visible returns the rows currently in view.
func (b *Buffer) Visible() []VisibleLine {
	lines := b.layout()
	out := make([]VisibleLine, 0, b.height)
	for i := b.scroll; i < len(lines) && i < b.scroll+b.height; i++ {
		ln := lines[i]
		out = append(out, VisibleLine{Start: ln.start, End: ln.end, Text: string(b.text[ln.start:ln.end])})
	}
	return out
}

// WordCount counts whitespace-separated words.
func (b *Buffer) WordCount() int {
	return len(strings.Fields(string(b.text)))
}

func (b *Buffer) touch() {
	b.revision++
	b.dirty = true
}

func (b *Buffer) layout() []visualLine {
	if !b.dirty && b.lines != nil {
		return b.lines
	}
	b.lines = wrap(b.text, b.width)
	b.dirty = false
	return b.lines
}

// wrap splits text into rows of at most width cells. Hard newlines end a row
// and are not part of it.
func wrap(text []rune, width int) []visualLine {
	var lines []visualLine
	start := 0
	cells := 0
	for i, r := range text {
		if r == '\n' {
			lines = append(lines, visualLine{start: start, end: i})
			start = i + 1
			cells = 0
			continue
		}
		w := runewidth.RuneWidth(r)
		if cells+w > width && i > start {
			lines = append(lines, visualLine{start: start, end: i})
			start = i
			cells = 0
		}
		cells += w
	}
	lines = append(lines, visualLine{start: start, end: len(text)})
	return lines
}

func (b *Buffer) ensureVisible() {
	row := b.caret(b.cursor).Y
	if row < b.scroll {
		b.scroll = row
	}
	if row >= b.scroll+b.height {
		b.scroll = row - b.height + 1
	}
	if b.scroll < 0 {
		b.scroll = 0
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
