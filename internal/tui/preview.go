package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/csheth/notable/internal/geometry"
)

func (m *model) togglePreview() {
	m.preview = !m.preview
	m.toolbar.Dismiss()
	m.tracker.Clear()
	m.previewDrag = nil
	m.dragging = false
	if m.preview {
		m.previewScroll = 0
		m.renderPreview()
	}
}

// renderPreview renders the draft as markdown at the editor width. Both the
// styled rows and their plain text are kept; selections read the plain text.
func (m *model) renderPreview() {
	width := m.layout.editor.W
	content := m.buffer.Text()
	out, err := renderMarkdown(content, m.theme.Glamour, width)
	if err != nil {
		m.logger.Warn("preview render failed", zap.Error(err))
		out = content
	}
	out = strings.TrimRight(out, "\n")
	m.previewLines = strings.Split(out, "\n")
	m.previewPlain = make([]string, len(m.previewLines))
	for i, line := range m.previewLines {
		m.previewPlain[i] = strings.TrimRight(ansi.Strip(line), " ")
	}
	m.scrollPreview(0)
}

func renderMarkdown(content, style string, width int) (string, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(content)
}

func (m *model) scrollPreview(delta int) {
	maxScroll := len(m.previewLines) - m.layout.editor.H
	if maxScroll < 0 {
		maxScroll = 0
	}
	m.previewScroll += delta
	if m.previewScroll > maxScroll {
		m.previewScroll = maxScroll
	}
	if m.previewScroll < 0 {
		m.previewScroll = 0
	}
}

// previewSelection returns the plain text between two editor cells of the
// preview, end column exclusive, and the on-screen rectangle it covers.
func (m *model) previewSelection(from, to geometry.Point) (string, geometry.Rect) {
	if to.Y < from.Y || (to.Y == from.Y && to.X < from.X) {
		from, to = to, from
	}
	top, bottom := from.Y+m.previewScroll, to.Y+m.previewScroll
	if top >= len(m.previewPlain) {
		return "", geometry.Rect{}
	}
	if bottom >= len(m.previewPlain) {
		bottom = len(m.previewPlain) - 1
		to.X = ansi.StringWidth(m.previewPlain[bottom])
	}

	if top == bottom {
		text := ansi.Cut(m.previewPlain[top], from.X, to.X)
		return text, geometry.Rect{X: from.X, Y: from.Y, W: to.X - from.X, H: 1}
	}

	rows := make([]string, 0, bottom-top+1)
	for row := top; row <= bottom; row++ {
		line := m.previewPlain[row]
		switch row {
		case top:
			line = ansi.Cut(line, from.X, ansi.StringWidth(line))
		case bottom:
			line = ansi.Cut(line, 0, to.X)
		}
		rows = append(rows, strings.TrimSpace(line))
	}
	text := strings.Join(rows, "\n")
	return text, geometry.Rect{X: 0, Y: from.Y, W: m.layout.editor.W, H: bottom - top + 1}
}

// previewView returns the visible preview rows.
func (m *model) previewView() []string {
	end := m.previewScroll + m.layout.editor.H
	if end > len(m.previewLines) {
		end = len(m.previewLines)
	}
	if m.previewScroll >= end {
		return nil
	}
	return m.previewLines[m.previewScroll:end]
}
