package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/notable/internal/geometry"
	"github.com/csheth/notable/internal/selection"
	"github.com/csheth/notable/internal/toolbar"
)

const wheelStep = 3

// toolbarRect is the toolbar's screen rectangle, empty while hidden.
func (m *model) toolbarRect() geometry.Rect {
	r := m.toolbar.Bounds()
	if r.Empty() {
		return r
	}
	return r.Offset(m.layout.editor.X, m.layout.editor.Y)
}

// refreshHits rebuilds the clickable regions of the overlays.
func (m *model) refreshHits() {
	m.hits.Clear()
	rect := m.toolbarRect()
	if rect.Empty() {
		return
	}
	m.hits.Add(regionToolbar, rect, nil)
	if m.toolbar.Mode() != toolbar.ActionMenu {
		return
	}
	for _, item := range toolbarItems() {
		r := geometry.Rect{X: rect.X + 1 + item.x, Y: rect.Y + 1, W: item.width(), H: 1}
		m.hits.Add(regionAction, r, item.action)
	}
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.stage != stageEditor || m.helpVisible {
		return nil
	}
	if m.session.Diagram().Open {
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.session.CloseDiagram()
			m.focusEditor()
		}
		return nil
	}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.wheel(msg, -wheelStep)
		return nil
	case msg.Button == tea.MouseButtonWheelDown:
		m.wheel(msg, wheelStep)
		return nil
	}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		return m.press(msg.X, msg.Y)
	case tea.MouseActionMotion:
		m.drag(msg.X, msg.Y)
	case tea.MouseActionRelease:
		return m.release(msg.X, msg.Y)
	}
	return nil
}

func (m *model) press(x, y int) tea.Cmd {
	m.refreshHits()
	if region := m.hits.Test(x, y); region != nil {
		// Focus leaves the editor for the overlay; the blur resolves after
		// the overlay has claimed focus, so the toolbar stays.
		token := m.toolbar.Blur()
		m.toolbar.FocusOverlay()
		cmds := []tea.Cmd{deferBlur(token)}
		if region.ID == regionAction {
			if a, ok := region.Data.(toolbar.Action); ok {
				cmds = append(cmds, m.chooseAction(a))
			}
		}
		return tea.Batch(cmds...)
	}

	if m.session.ChatOpen() && m.layout.chatRect().Contains(x, y) {
		m.focus = focusChat
		token := m.toolbar.Blur()
		return tea.Batch(m.chatInput.Focus(), deferBlur(token))
	}

	p, inside := m.layout.toEditor(x, y)
	if !inside {
		token := m.toolbar.Blur()
		return tea.Batch(deferBlur(token), m.flush())
	}

	if m.focus != focusEditor {
		m.focusEditor()
	}
	m.toolbar.FocusEditor()
	if m.preview {
		m.previewDrag = &p
		return nil
	}
	m.buffer.MoveTo(m.buffer.OffsetAtScreen(p.X, p.Y), false)
	m.dragging = true
	return nil
}

func (m *model) drag(x, y int) {
	if !m.dragging || m.preview {
		return
	}
	p := m.clampToEditor(x, y)
	m.buffer.MoveTo(m.buffer.OffsetAtScreen(p.X, p.Y), true)
}

func (m *model) release(x, y int) tea.Cmd {
	p := m.clampToEditor(x, y)
	if m.preview {
		if m.previewDrag == nil {
			return nil
		}
		from := *m.previewDrag
		m.previewDrag = nil
		text, bounds := m.previewSelection(from, p)
		m.observe(selection.RichText{Text: text, Bounds: bounds})
		return nil
	}
	if !m.dragging {
		return nil
	}
	m.dragging = false
	m.buffer.MoveTo(m.buffer.OffsetAtScreen(p.X, p.Y), true)
	start, end := m.buffer.Selection()
	m.observe(selection.Pointer{Start: start, End: end, Release: p})
	return nil
}

// clampToEditor converts a screen cell to editor coordinates, pinned to the
// pane so drags that leave it still select to the edge.
func (m *model) clampToEditor(x, y int) geometry.Point {
	p, _ := m.layout.toEditor(x, y)
	e := m.layout.editor
	if p.X < 0 {
		p.X = 0
	}
	if p.X > e.W {
		p.X = e.W
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Y >= e.H {
		p.Y = e.H - 1
	}
	return p
}

func (m *model) wheel(msg tea.MouseMsg, delta int) {
	switch {
	case m.session.ChatOpen() && m.layout.chatRect().Contains(msg.X, msg.Y):
		m.chatScroll -= delta
		if m.chatScroll < 0 {
			m.chatScroll = 0
		}
	case m.preview:
		m.scrollPreview(delta)
	default:
		m.buffer.ScrollBy(delta)
	}
	m.repositionToolbar()
}

func deferBlur(token uint64) tea.Cmd {
	return func() tea.Msg {
		return blurMsg{token: token}
	}
}
