package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/notable/internal/autosave"
	"github.com/csheth/notable/internal/editor"
	"github.com/csheth/notable/internal/llm"
	"github.com/csheth/notable/internal/notes"
	"github.com/csheth/notable/internal/session"
	"github.com/csheth/notable/internal/toolbar"
)

const (
	editLabel      = "Edit › "
	editLabelWidth = 7
)

type toolbarItem struct {
	action toolbar.Action
	label  string
	x      int
}

func (i toolbarItem) width() int {
	// ToolbarItem pads one cell on each side.
	return runewidth.StringWidth(i.label) + 2
}

// toolbarItems lays the action menu out left to right, one separator cell
// between items. x is relative to the toolbar's inner left edge.
func toolbarItems() []toolbarItem {
	items := []toolbarItem{
		{action: toolbar.ActionAskAI, label: "Ask AI ^O"},
		{action: toolbar.ActionEdit, label: "Edit ^E"},
		{action: toolbar.ActionDiagram, label: "Diagram ^G"},
	}
	x := 0
	for i := range items {
		items[i].x = x
		x += items[i].width() + 1
	}
	return items
}

func (m *model) View() string {
	var screen string
	switch m.stage {
	case stageEditor:
		screen = m.viewEditor()
	default:
		screen = m.viewList()
	}
	if m.helpVisible {
		screen = dimBehind(screen, m.helpView(), m.layout.windowWidth, m.layout.windowHeight, m.theme.Dim.Render)
	}
	return screen
}

func (m *model) viewList() string {
	width := m.layout.windowWidth
	rows := []string{m.headerView("All notes")}

	height := m.layout.editor.H
	if len(m.notes) == 0 {
		rows = append(rows, m.theme.Helper.Render("  Nothing here yet."))
	}
	first := 0
	if m.listCursor >= height {
		first = m.listCursor - height + 1
	}
	for i := first; i < len(m.notes) && i < first+height; i++ {
		note := m.notes[i]
		title := notes.NormalizeTitle(note.Title)
		stamp := note.UpdatedAt.Local().Format("Jan 2 15:04")
		preview := notes.Preview(note.Content, listPreviewLen)
		line := fmt.Sprintf("%s  %s  %s", title, m.theme.Dim.Render(stamp), m.theme.Helper.Render(preview))
		line = truncate.StringWithTail(line, uint(max(width-4, 1)), "…")
		if i == m.listCursor {
			rows = append(rows, m.theme.ListCurrent.Render("▸ "+ansi.Strip(line)))
		} else {
			rows = append(rows, m.theme.ListItem.Render(line))
		}
	}
	for len(rows) < headerRows+height {
		rows = append(rows, "")
	}
	rows = append(rows, m.statusView(), m.footerView())
	return strings.Join(rows, "\n")
}

func (m *model) viewEditor() string {
	title := notes.NormalizeTitle(m.session.Note().Title)
	if m.preview {
		title += " (preview)"
	}
	rows := []string{m.headerView(title)}

	margin := strings.Repeat(" ", m.layout.editor.X)
	var body []string
	if m.preview {
		body = m.previewView()
	} else {
		body = m.editorRows()
	}
	for _, line := range body {
		rows = append(rows, margin+line)
	}
	for len(rows) < headerRows+m.layout.editor.H {
		rows = append(rows, "")
	}
	rows = append(rows, m.statusView(), m.footerView())
	screen := strings.Join(rows, "\n")

	if m.session.ChatOpen() {
		r := m.layout.chatRect()
		screen = placeOverlay(screen, m.chatView(), r.X, r.Y)
	}
	if r := m.toolbarRect(); !r.Empty() {
		screen = placeOverlay(screen, m.toolbarView(), r.X, r.Y)
	}
	if m.session.Diagram().Open {
		screen = dimBehind(screen, m.diagramView(), m.layout.windowWidth, m.layout.windowHeight, m.theme.Dim.Render)
	}
	return screen
}

func (m *model) headerView(title string) string {
	left := m.theme.Header.Render("Notable")
	right := ""
	if acct := m.config.Account; acct != nil && acct.Email != "" {
		right = m.theme.Helper.Render(acct.Email)
	} else {
		right = m.theme.Helper.Render("local")
	}
	middle := " " + m.theme.HeaderAccent.Render(title)
	gap := m.layout.windowWidth - lipgloss.Width(left) - lipgloss.Width(middle) - lipgloss.Width(right)
	if gap < 1 {
		return truncate.String(left+middle, uint(max(m.layout.windowWidth, 1)))
	}
	return left + middle + strings.Repeat(" ", gap) + right
}

// editorRows renders the visible buffer rows with the selection and caret.
func (m *model) editorRows() []string {
	start, end := m.buffer.Selection()
	cursor := m.buffer.Cursor()
	caret, caretVisible := m.buffer.Caret(cursor)
	showCursor := m.focus == focusEditor && caretVisible

	lines := m.buffer.Visible()
	out := make([]string, len(lines))
	for i, line := range lines {
		cursorHere := showCursor && caret.Y == i
		out[i] = m.renderLine(line, start, end, cursor, cursorHere)
	}
	return out
}

type cellClass int

const (
	cellPlain cellClass = iota
	cellSelected
	cellCursor
)

func (m *model) renderLine(line editor.VisibleLine, selStart, selEnd, cursor int, cursorHere bool) string {
	var (
		b     strings.Builder
		run   strings.Builder
		class = cellPlain
	)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		switch class {
		case cellSelected:
			b.WriteString(m.theme.Selection.Render(run.String()))
		case cellCursor:
			b.WriteString(m.theme.Cursor.Render(run.String()))
		default:
			b.WriteString(run.String())
		}
		run.Reset()
	}

	offset := line.Start
	for _, r := range line.Text {
		next := cellPlain
		switch {
		case cursorHere && offset == cursor:
			next = cellCursor
		case offset >= selStart && offset < selEnd:
			next = cellSelected
		}
		if next != class {
			flush()
			class = next
		}
		if r < 0x20 || r == 0x7f {
			r = ' '
		}
		run.WriteRune(r)
		offset++
	}
	flush()
	if cursorHere && cursor == line.End {
		b.WriteString(m.theme.Cursor.Render(" "))
	}
	return b.String()
}

func (m *model) toolbarView() string {
	spec := m.toolbar.Spec()
	style := m.theme.Toolbar.Width(max(spec.Width-2, 1)).Height(max(spec.Height-2, 1))

	if m.toolbar.Mode() == toolbar.InlineEditPrompt {
		return style.Render(m.theme.HeaderAccent.Render(editLabel) + m.instruction.View())
	}
	sep := m.theme.Dim.Render("│")
	parts := make([]string, 0, 5)
	for i, item := range toolbarItems() {
		if i > 0 {
			parts = append(parts, sep)
		}
		parts = append(parts, m.theme.ToolbarItem.Render(item.label))
	}
	return style.Render(strings.Join(parts, ""))
}

func (m *model) chatView() string {
	r := m.layout.chatRect()
	innerWidth := max(r.W-4, 8)
	innerHeight := max(r.H-2, 3)

	title := m.theme.PanelTitle.Render("AI Chat") + m.theme.Dim.Render("  esc close · ^Y copy")
	var lines []string
	for _, turn := range m.session.Transcript().Turns() {
		label := m.theme.UserTurn.Render("You")
		if turn.Role == llm.RoleAssistant {
			label = m.theme.AssistantTurn.Render("AI")
		}
		lines = append(lines, label)
		lines = append(lines, strings.Split(wrapText(turn.Text, innerWidth), "\n")...)
		lines = append(lines, "")
	}
	if kind, busy := m.session.Busy(); busy && kind == session.KindChat {
		lines = append(lines, m.spinner.View()+" "+m.theme.Helper.Render("Thinking…"))
	}

	room := innerHeight - 2
	scroll := min(m.chatScroll, max(len(lines)-room, 0))
	end := len(lines) - scroll
	start := max(end-room, 0)
	visible := lines[start:end]

	body := []string{title}
	body = append(body, visible...)
	for len(body) < innerHeight-1 {
		body = append(body, "")
	}
	body = append(body, m.chatInput.View())
	return m.theme.Panel.Width(r.W - 2).Height(innerHeight).Render(strings.Join(body, "\n"))
}

func (m *model) diagramView() string {
	d := m.session.Diagram()
	width := m.layout.diagramWidth
	inner := max(width-4, 8)
	maxRows := max(m.layout.windowHeight-6, 3)

	body := []string{m.theme.PanelTitle.Render("Diagram") + m.theme.Dim.Render("  esc close · c copy source")}
	switch {
	case d.Loading:
		body = append(body, m.spinner.View()+" "+m.theme.Helper.Render("Generating diagram…"))
	case d.Fallback:
		body = append(body, m.theme.Error.Render(d.Err), "")
		body = append(body, strings.Split(wrapText(d.Source, inner), "\n")...)
	case d.Err != "":
		body = append(body, m.theme.Error.Render(d.Err))
	default:
		body = append(body, strings.Split(strings.TrimRight(d.Rendered, "\n"), "\n")...)
	}
	if len(body) > maxRows {
		body = append(body[:maxRows-1], m.theme.Dim.Render("…"))
	}
	for i, line := range body {
		body[i] = ansi.Truncate(line, inner, "")
	}
	return m.theme.Panel.Width(width - 2).Render(strings.Join(body, "\n"))
}

func (m *model) statusView() string {
	var parts []string
	if m.stage == stageEditor {
		switch {
		case m.session.Sync().LastError() != nil:
			parts = append(parts, m.theme.Error.Render("✗ save failed"))
		case m.session.Sync().State() == autosave.Pending:
			parts = append(parts, m.theme.Pending.Render("● Editing"))
		default:
			parts = append(parts, m.theme.Saved.Render("✓ Saved"))
		}
	}
	if m.busy() {
		label := "Working…"
		if kind, ok := m.session.Busy(); ok {
			label = busyLabel(kind)
		}
		parts = append(parts, m.spinner.View()+" "+m.theme.Helper.Render(label))
	}
	switch {
	case m.errorMessage != "":
		parts = append(parts, m.theme.Error.Render(m.errorMessage))
	case m.infoMessage != "":
		parts = append(parts, m.theme.Info.Render(m.infoMessage))
	}
	left := strings.Join(parts, "  ")

	right := ""
	if m.stage == stageEditor {
		right = m.theme.Dim.Render(fmt.Sprintf("%d words", m.buffer.WordCount()))
	}
	gap := m.layout.windowWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return ansi.Truncate(left, max(m.layout.windowWidth, 1), "…")
	}
	return left + strings.Repeat(" ", gap) + right
}

func busyLabel(kind session.Kind) string {
	switch kind {
	case session.KindChat:
		return "Asking AI…"
	case session.KindEdit:
		return "Editing…"
	case session.KindDiagram:
		return "Drawing…"
	case session.KindLecture:
		return "Merging lecture…"
	default:
		return "Working…"
	}
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) footerView() string {
	if m.focus == focusPrompt {
		label := "Rename: "
		if m.promptKind == promptLecture {
			label = "Lecture: "
		}
		return m.theme.HeaderAccent.Render(label) + m.prompt.View()
	}
	var hints []keyHint
	switch {
	case m.stage == stageList:
		hints = []keyHint{{"↵", "open"}, {"n", "new"}, {"d", "delete"}, {"r", "refresh"}, {"q", "quit"}, {"F1", "help"}}
	case m.focus == focusChat:
		hints = []keyHint{{"↵", "send"}, {"^Y", "copy reply"}, {"PgUp/PgDn", "scroll"}, {"esc", "close"}}
	case m.focus == focusToolbar:
		hints = []keyHint{{"↵", "apply"}, {"esc", "cancel"}}
	default:
		hints = []keyHint{{"^S", "save"}, {"^P", "preview"}, {"^R", "rename"}, {"^L", "lecture"}, {"^X", "cancel AI"}, {"esc", "back"}, {"F1", "help"}}
	}
	cells := make([]string, 0, len(hints))
	for _, h := range hints {
		cells = append(cells, m.theme.Key.Render(h.Key)+" "+m.theme.KeyDesc.Render(h.Description))
	}
	return ansi.Truncate(strings.Join(cells, "  "), max(m.layout.windowWidth, 1), "")
}

func (m *model) helpView() string {
	hints := []keyHint{
		{"Shift+arrows", "Select text"},
		{"Mouse drag", "Select text"},
		{"^O", "Ask AI about the selection"},
		{"^E", "Edit the selection with AI"},
		{"^G", "Diagram the selection"},
		{"^P", "Toggle markdown preview"},
		{"^L", "Merge a lecture transcript"},
		{"^R", "Rename the note"},
		{"^N", "New note"},
		{"^S", "Save now"},
		{"^X", "Cancel the running AI request"},
		{"Esc", "Close overlay or go back"},
		{"^C", "Quit"},
	}
	rows := []string{m.theme.PanelTitle.Render("Keys")}
	for _, h := range hints {
		key := m.theme.Key.Render(fmt.Sprintf("%-12s", h.Key))
		rows = append(rows, key+" "+m.theme.KeyDesc.Render(h.Description))
	}
	rows = append(rows, "", m.theme.Dim.Render("F1 or Esc to close"))
	return m.theme.Panel.Render(strings.Join(rows, "\n"))
}

// wrapText word-wraps to width and hard-breaks words longer than a row.
func wrapText(text string, width int) string {
	return ansi.Hardwrap(wordwrap.String(text, width), width, true)
}
