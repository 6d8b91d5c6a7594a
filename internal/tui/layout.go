package tui

import "github.com/csheth/notable/internal/geometry"

// pageLayout splits the terminal into a header row, the editor pane, a
// status row and a footer row.
type pageLayout struct {
	windowWidth  int
	windowHeight int
	editor       geometry.Rect
	chatWidth    int
	diagramWidth int
}

const (
	headerRows = 1
	footerRows = 2
	sideMargin = 1
)

func newPageLayout() pageLayout {
	l := pageLayout{}
	l.Update(80, 24)
	return l
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height

	editorWidth := width - 2*sideMargin
	if editorWidth < minEditorWidth {
		editorWidth = minEditorWidth
	}
	editorHeight := height - headerRows - footerRows
	if editorHeight < minEditorHeight {
		editorHeight = minEditorHeight
	}
	l.editor = geometry.Rect{X: sideMargin, Y: headerRows, W: editorWidth, H: editorHeight}

	l.chatWidth = width * 2 / 5
	if l.chatWidth < 30 {
		l.chatWidth = 30
	}
	if l.chatWidth > 64 {
		l.chatWidth = 64
	}
	if l.chatWidth > width {
		l.chatWidth = width
	}

	l.diagramWidth = width - 8
	if l.diagramWidth > 100 {
		l.diagramWidth = 100
	}
	if l.diagramWidth < minEditorWidth {
		l.diagramWidth = minEditorWidth
	}
}

// editorSize is the container the overlay clamper works against.
func (l pageLayout) editorSize() geometry.Size {
	return geometry.Size{Width: l.editor.W, Height: l.editor.H}
}

// toEditor converts a screen cell to editor-pane coordinates. ok is false
// outside the pane.
func (l pageLayout) toEditor(x, y int) (geometry.Point, bool) {
	return geometry.Point{X: x - l.editor.X, Y: y - l.editor.Y}, l.editor.Contains(x, y)
}

// chatRect is the screen rectangle of the chat panel.
func (l pageLayout) chatRect() geometry.Rect {
	return geometry.Rect{
		X: l.windowWidth - l.chatWidth,
		Y: l.editor.Y,
		W: l.chatWidth,
		H: l.editor.H,
	}
}
