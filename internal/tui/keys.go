package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/notable/internal/editor"
	"github.com/csheth/notable/internal/notes"
	"github.com/csheth/notable/internal/selection"
	"github.com/csheth/notable/internal/toolbar"
)

func (m *model) handleKey(key tea.KeyMsg) tea.Cmd {
	if key.Type == tea.KeyCtrlC {
		return m.quit()
	}
	if key.Type == tea.KeyF1 {
		m.helpVisible = !m.helpVisible
		return nil
	}
	if m.helpVisible && key.Type == tea.KeyEsc {
		m.helpVisible = false
		return nil
	}
	if m.stage == stageList {
		return m.handleListKey(key)
	}
	switch m.focus {
	case focusPrompt:
		return m.handlePromptKey(key)
	case focusToolbar:
		return m.handleInstructionKey(key)
	case focusChat:
		return m.handleChatKey(key)
	case focusDiagram:
		return m.handleDiagramKey(key)
	default:
		return m.handleEditorKey(key)
	}
}

func (m *model) handleListKey(key tea.KeyMsg) tea.Cmd {
	if m.confirmDelete != "" {
		id := m.confirmDelete
		m.confirmDelete = ""
		if key.String() == "y" {
			m.infoMessage = "Deleting…"
			return m.jobs.Start(jobKindDelete, deleteNoteJob(m.config.Store, id))
		}
		m.infoMessage = "Delete canceled."
		return nil
	}

	switch key.String() {
	case "up", "k":
		if m.listCursor > 0 {
			m.listCursor--
		}
	case "down", "j":
		if m.listCursor < len(m.notes)-1 {
			m.listCursor++
		}
	case "home", "g":
		m.listCursor = 0
	case "end", "G":
		if len(m.notes) > 0 {
			m.listCursor = len(m.notes) - 1
		}
	case "enter":
		if note, ok := m.currentListNote(); ok {
			m.infoMessage = "Opening…"
			return m.jobs.Start(jobKindOpen, openNoteJob(m.config.Store, note.ID))
		}
	case "n", "ctrl+n":
		m.infoMessage = "Creating note…"
		return m.jobs.Start(jobKindCreate, createNoteJob(m.config.Store, ""))
	case "d", "delete":
		if note, ok := m.currentListNote(); ok {
			m.confirmDelete = note.ID
			m.infoMessage = fmt.Sprintf("Delete %q? Press y to confirm.", notes.NormalizeTitle(note.Title))
		}
	case "r":
		return m.jobs.Start(jobKindList, listNotesJob(m.config.Store))
	case "q", "esc":
		return m.quit()
	}
	return nil
}

func (m *model) currentListNote() (notes.Note, bool) {
	if m.listCursor < 0 || m.listCursor >= len(m.notes) {
		return notes.Note{}, false
	}
	return m.notes[m.listCursor], true
}

func (m *model) handleEditorKey(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyEsc:
		if m.toolbar.Visible() {
			m.toolbar.Dismiss()
			return nil
		}
		if m.preview {
			m.preview = false
			return nil
		}
		return m.closeNote()
	case tea.KeyCtrlS:
		cmd := m.flush()
		if cmd == nil {
			m.infoMessage = "Nothing to save."
		}
		return cmd
	case tea.KeyCtrlP:
		m.togglePreview()
		return nil
	case tea.KeyCtrlR:
		return m.openPrompt(promptRename, m.session.Note().Title)
	case tea.KeyCtrlL:
		return m.openPrompt(promptLecture, "")
	case tea.KeyCtrlN:
		flush := m.flush()
		m.infoMessage = "Creating note…"
		return tea.Sequence(flush, m.jobs.Start(jobKindCreate, createNoteJob(m.config.Store, "")))
	case tea.KeyCtrlX:
		if _, busy := m.session.Busy(); busy {
			m.session.Cancel()
			m.infoMessage = "Canceled."
		}
		return nil
	case tea.KeyCtrlO:
		return m.chooseAction(toolbar.ActionAskAI)
	case tea.KeyCtrlE:
		return m.chooseAction(toolbar.ActionEdit)
	case tea.KeyCtrlG:
		return m.chooseAction(toolbar.ActionDiagram)
	}

	if m.preview {
		m.handlePreviewKey(key)
		return nil
	}

	rev := m.buffer.Revision()
	if !m.applyEditorKey(key) {
		return nil
	}
	start, end := m.buffer.Selection()
	m.observe(selection.Keyboard{Start: start, End: end})
	if m.buffer.Revision() == rev {
		m.repositionToolbar()
		return nil
	}
	gen := m.session.Edit(m.buffer.Text())
	return m.session.Sync().Schedule(gen)
}

// applyEditorKey edits or moves within the buffer. It reports whether the
// key was an editor key at all.
func (m *model) applyEditorKey(key tea.KeyMsg) bool {
	b := m.buffer
	switch key.Type {
	case tea.KeyRunes:
		b.Insert(string(key.Runes))
	case tea.KeySpace:
		b.Insert(" ")
	case tea.KeyEnter:
		b.Insert("\n")
	case tea.KeyTab:
		b.Insert(tabText)
	case tea.KeyBackspace:
		b.Backspace()
	case tea.KeyDelete:
		b.Delete()
	case tea.KeyCtrlA:
		b.SelectAll()
	case tea.KeyLeft, tea.KeyShiftLeft:
		b.Move(editor.MoveLeft, key.Type == tea.KeyShiftLeft)
	case tea.KeyRight, tea.KeyShiftRight:
		b.Move(editor.MoveRight, key.Type == tea.KeyShiftRight)
	case tea.KeyUp, tea.KeyShiftUp:
		b.Move(editor.MoveUp, key.Type == tea.KeyShiftUp)
	case tea.KeyDown, tea.KeyShiftDown:
		b.Move(editor.MoveDown, key.Type == tea.KeyShiftDown)
	case tea.KeyHome, tea.KeyShiftHome:
		b.Move(editor.MoveLineStart, key.Type == tea.KeyShiftHome)
	case tea.KeyEnd, tea.KeyShiftEnd:
		b.Move(editor.MoveLineEnd, key.Type == tea.KeyShiftEnd)
	case tea.KeyCtrlLeft, tea.KeyCtrlShiftLeft:
		b.Move(editor.MoveWordLeft, key.Type == tea.KeyCtrlShiftLeft)
	case tea.KeyCtrlRight, tea.KeyCtrlShiftRight:
		b.Move(editor.MoveWordRight, key.Type == tea.KeyCtrlShiftRight)
	case tea.KeyCtrlHome, tea.KeyCtrlShiftHome:
		b.Move(editor.MoveDocStart, key.Type == tea.KeyCtrlShiftHome)
	case tea.KeyCtrlEnd, tea.KeyCtrlShiftEnd:
		b.Move(editor.MoveDocEnd, key.Type == tea.KeyCtrlShiftEnd)
	case tea.KeyPgUp:
		b.Move(editor.MovePageUp, false)
	case tea.KeyPgDown:
		b.Move(editor.MovePageDown, false)
	default:
		return false
	}
	return true
}

func (m *model) handlePreviewKey(key tea.KeyMsg) {
	switch key.Type {
	case tea.KeyUp:
		m.scrollPreview(-1)
	case tea.KeyDown:
		m.scrollPreview(1)
	case tea.KeyPgUp:
		m.scrollPreview(-m.layout.editor.H)
	case tea.KeyPgDown:
		m.scrollPreview(m.layout.editor.H)
	}
}

func (m *model) handleInstructionKey(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyEsc:
		m.toolbar.Cancel()
		m.focusEditor()
		return nil
	case tea.KeyEnter:
		m.toolbar.SetInstruction(m.instruction.Value())
		intent, ok := m.toolbar.Submit()
		if !ok {
			m.infoMessage = "Describe the edit, or press Esc to cancel."
			return nil
		}
		m.instruction.SetValue("")
		m.focusEditor()
		return m.dispatch(intent)
	}
	var cmd tea.Cmd
	m.instruction, cmd = m.instruction.Update(key)
	m.toolbar.SetInstruction(m.instruction.Value())
	return cmd
}

func (m *model) handleChatKey(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyEsc:
		m.session.CloseChat()
		m.chatInput.SetValue("")
		m.focusEditor()
		return nil
	case tea.KeyEnter:
		call, ok := m.session.AskAI(m.chatInput.Value())
		if !ok {
			return nil
		}
		m.chatInput.SetValue("")
		m.chatScroll = 0
		return m.startCall(call)
	case tea.KeyCtrlY:
		return m.copyText("the reply", m.session.Transcript().LastReply())
	case tea.KeyPgUp:
		m.chatScroll += 5
		return nil
	case tea.KeyPgDown:
		m.chatScroll -= 5
		if m.chatScroll < 0 {
			m.chatScroll = 0
		}
		return nil
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(key)
	return cmd
}

func (m *model) handleDiagramKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "esc", "q":
		m.session.CloseDiagram()
		m.focusEditor()
	case "c", "ctrl+y":
		return m.copyText("the diagram source", m.session.Diagram().Source)
	}
	return nil
}

func (m *model) openPrompt(kind promptKind, value string) tea.Cmd {
	m.promptKind = kind
	m.focus = focusPrompt
	m.toolbar.Dismiss()
	switch kind {
	case promptRename:
		m.prompt.Placeholder = renamePlaceholder
	case promptLecture:
		m.prompt.Placeholder = lecturePlaceholder
	}
	m.prompt.SetValue(value)
	m.prompt.CursorEnd()
	return m.prompt.Focus()
}

func (m *model) handlePromptKey(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyEsc:
		m.promptKind = promptNone
		m.prompt.SetValue("")
		m.focusEditor()
		return nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.prompt.Value())
		kind := m.promptKind
		m.promptKind = promptNone
		m.prompt.SetValue("")
		m.focusEditor()
		return m.submitPrompt(kind, value)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(key)
	return cmd
}

func (m *model) submitPrompt(kind promptKind, value string) tea.Cmd {
	switch kind {
	case promptRename:
		save, ok := m.session.Rename(value)
		if !ok {
			return nil
		}
		m.infoMessage = fmt.Sprintf("Renamed to %q.", m.session.Note().Title)
		return m.startSave(save)
	case promptLecture:
		if value == "" {
			return nil
		}
		if m.config.Lectures == nil {
			m.errorMessage = "Lecture import is not configured."
			return nil
		}
		m.infoMessage = fmt.Sprintf("Loading %s…", value)
		return m.jobs.Start(jobKindLoad, loadLectureJob(m.config.Lectures, value))
	}
	return nil
}

// closeNote saves pending edits and returns to the note list.
func (m *model) closeNote() tea.Cmd {
	flush := m.flush()
	m.session.CloseChat()
	m.session.CloseDiagram()
	m.toolbar.Dismiss()
	m.tracker.Clear()
	m.stage = stageList
	m.preview = false
	m.infoMessage = "Saved. Pick a note or press n for a new one."
	return tea.Sequence(flush, m.jobs.Start(jobKindList, listNotesJob(m.config.Store)))
}
