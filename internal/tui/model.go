package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/notable/internal/apperr"
	"github.com/csheth/notable/internal/assist"
	"github.com/csheth/notable/internal/auth"
	"github.com/csheth/notable/internal/autosave"
	"github.com/csheth/notable/internal/config"
	"github.com/csheth/notable/internal/diagram"
	"github.com/csheth/notable/internal/editor"
	"github.com/csheth/notable/internal/geometry"
	"github.com/csheth/notable/internal/notes"
	"github.com/csheth/notable/internal/selection"
	"github.com/csheth/notable/internal/session"
	"github.com/csheth/notable/internal/toolbar"
	"github.com/csheth/notable/internal/watch"
)

// Config wires runtime options into the TUI program.
type Config struct {
	// Context bounds every background job; cancelling it aborts AI calls.
	Context  context.Context
	Store    notes.Store
	Assist   assist.Service
	Renderer diagram.Renderer
	Lectures LectureLoader
	Theme    Theme
	// Account is the signed-in identity shown in the header, nil when local.
	Account *auth.Session
	Editor  config.EditorConfig
	Logger  *zap.Logger
	// Changes reports database writes made by other processes.
	Changes <-chan watch.Event
	// NoteID opens a note directly instead of the note list.
	NoteID    string
	Clipboard func(string) error
}

// New returns a tea.Model ready to be mounted into a Program.
func New(cfg Config) tea.Model {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Theme.Name == "" {
		cfg.Theme = NewTheme("dark")
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = clipboard.WriteAll
	}

	spec := geometry.OverlaySpec{
		Width:   cfg.Editor.ToolbarWidth,
		Height:  cfg.Editor.ToolbarHeight,
		Padding: cfg.Editor.ToolbarPadding,
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		spec = geometry.OverlaySpec{Width: 36, Height: 3, Padding: 1}
	}

	deps := session.Deps{
		Store:    cfg.Store,
		Renderer: cfg.Renderer,
		Logger:   cfg.Logger,
		Window:   cfg.Editor.Debounce(),
	}
	if cfg.Assist != nil {
		deps.Chat = cfg.Assist
		deps.Editor = cfg.Assist
		deps.Diagrams = cfg.Assist
		deps.Lectures = cfg.Assist
	}

	instruction := textinput.New()
	instruction.Placeholder = editPlaceholder
	instruction.CharLimit = 280
	instruction.Prompt = ""

	chatInput := textinput.New()
	chatInput.Placeholder = chatPlaceholder
	chatInput.CharLimit = 1000

	prompt := textinput.New()
	prompt.CharLimit = 400

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &model{
		config:      cfg,
		theme:       cfg.Theme,
		logger:      cfg.Logger.Named("tui"),
		jobs:        newJobBus(cfg.Context, cfg.Logger),
		running:     map[string]jobSnapshot{},
		stage:       stageList,
		focus:       focusEditor,
		layout:      newPageLayout(),
		session:     session.New(cfg.Context, deps),
		buffer:      editor.New(""),
		toolbar:     toolbar.New(spec),
		hits:        geometry.NewHitMap(),
		instruction: instruction,
		chatInput:   chatInput,
		prompt:      prompt,
		spinner:     spin,
		infoMessage: "Loading notes…",
	}
	m.resize(80, 24)
	return m
}

type model struct {
	config Config
	theme  Theme
	logger *zap.Logger
	jobs   *jobBus

	running  map[string]jobSnapshot
	spinning bool

	stage  stage
	focus  focusArea
	layout pageLayout

	notes         []notes.Note
	listCursor    int
	confirmDelete string

	session *session.Session
	buffer  *editor.Buffer
	tracker selection.Tracker
	toolbar *toolbar.Controller
	hits    *geometry.HitMap

	instruction textinput.Model
	chatInput   textinput.Model
	prompt      textinput.Model
	promptKind  promptKind
	spinner     spinner.Model

	dragging    bool
	previewDrag *geometry.Point
	chatScroll  int

	preview       bool
	previewLines  []string
	previewPlain  []string
	previewScroll int

	infoMessage  string
	errorMessage string
	helpVisible  bool
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForChange(m.config.Changes)}
	if m.config.Store == nil {
		m.errorMessage = "No note store configured."
		return tea.Batch(cmds...)
	}
	if id := strings.TrimSpace(m.config.NoteID); id != "" {
		cmds = append(cmds, m.jobs.Start(jobKindOpen, openNoteJob(m.config.Store, id)))
	} else {
		cmds = append(cmds, m.jobs.Start(jobKindList, listNotesJob(m.config.Store)))
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
	case jobSignalMsg:
		m.running[msg.Snapshot.ID] = msg.Snapshot
		if !m.spinning {
			m.spinning = true
			cmd = m.spinner.Tick
		}
	case jobResultEnvelope:
		delete(m.running, msg.Snapshot.ID)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	case tea.MouseMsg:
		cmd = m.handleMouse(msg)
	case autosave.TickMsg:
		cmd = m.handleAutosaveTick(msg)
	case blurMsg:
		if m.toolbar.ResolveBlur(msg.token) {
			m.tracker.Clear()
		}
	case notesLoadedMsg:
		m.handleNotesLoaded(msg)
	case noteOpenedMsg:
		m.handleNoteOpened(msg)
	case noteDeletedMsg:
		cmd = m.handleNoteDeleted(msg)
	case noteReloadedMsg:
		m.handleNoteReloaded(msg)
	case saveDoneMsg:
		cmd = m.handleSaveDone(msg)
	case callDoneMsg:
		cmd = m.handleCallDone(msg)
	case lectureLoadedMsg:
		cmd = m.handleLectureLoaded(msg)
	case copiedMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.errorMessage = ""
			m.infoMessage = fmt.Sprintf("Copied %s to the clipboard.", msg.what)
		}
	case externalChangeMsg:
		cmd = m.handleExternalChange()
	}
	m.syncFocus()
	return m, cmd
}

func (m *model) busy() bool {
	return len(m.running) > 0
}

func (m *model) resize(width, height int) {
	m.layout.Update(width, height)
	m.buffer.Resize(m.layout.editor.W, m.layout.editor.H)
	m.session.Resize(m.layout.diagramWidth - 4)

	m.chatInput.Width = m.layout.chatWidth - 8
	m.prompt.Width = width - 24
	if m.prompt.Width < 10 {
		m.prompt.Width = 10
	}
	m.instruction.Width = m.toolbar.Spec().Width - editLabelWidth - 4
	if m.instruction.Width < 4 {
		m.instruction.Width = 4
	}
	if m.preview {
		m.renderPreview()
	}
	m.repositionToolbar()
}

// syncFocus moves focus back to the editor when the overlay that held it
// has closed.
func (m *model) syncFocus() {
	switch m.focus {
	case focusToolbar:
		if m.toolbar.Mode() != toolbar.InlineEditPrompt {
			m.focusEditor()
		}
	case focusChat:
		if !m.session.ChatOpen() {
			m.focusEditor()
		}
	case focusDiagram:
		if !m.session.Diagram().Open {
			m.focusEditor()
		}
	}
}

func (m *model) focusEditor() {
	m.focus = focusEditor
	m.instruction.Blur()
	m.chatInput.Blur()
	m.prompt.Blur()
	m.toolbar.FocusEditor()
}

func (m *model) handleAutosaveTick(msg autosave.TickMsg) tea.Cmd {
	if msg.Key != m.session.Note().ID {
		return nil
	}
	save, ok := m.session.Tick(msg.Gen)
	if !ok {
		return nil
	}
	return m.startSave(save)
}

func (m *model) startSave(save session.Save) tea.Cmd {
	return m.jobs.Start(jobKindSave, persistJob(m.session, save))
}

// flush persists pending content immediately.
func (m *model) flush() tea.Cmd {
	save, ok := m.session.Flush()
	if !ok {
		return nil
	}
	return m.startSave(save)
}

func (m *model) startCall(call session.Call) tea.Cmd {
	return m.jobs.Start(callJobKind(call.Kind), callJob(call))
}

func (m *model) handleNotesLoaded(msg notesLoadedMsg) {
	if msg.err != nil {
		m.errorMessage = fmt.Sprintf("could not list notes: %s", apperr.MessageOf(msg.err))
		return
	}
	m.notes = msg.notes
	if m.listCursor >= len(m.notes) {
		m.listCursor = len(m.notes) - 1
	}
	if m.listCursor < 0 {
		m.listCursor = 0
	}
	if m.stage == stageList {
		m.errorMessage = ""
		if len(m.notes) == 0 {
			m.infoMessage = "No notes yet. Press n to create one."
		} else {
			m.infoMessage = fmt.Sprintf("%d note(s).", len(m.notes))
		}
	}
}

func (m *model) handleNoteOpened(msg noteOpenedMsg) {
	if msg.err != nil {
		m.errorMessage = fmt.Sprintf("could not open note: %s", apperr.MessageOf(msg.err))
		return
	}
	m.openNote(msg.note)
}

func (m *model) openNote(note notes.Note) {
	m.session.Open(note)
	m.buffer.SetText(note.Content)
	m.buffer.MoveTo(0, false)
	m.tracker.Clear()
	m.toolbar.Dismiss()
	m.stage = stageEditor
	m.preview = false
	m.previewScroll = 0
	m.chatScroll = 0
	m.focusEditor()
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Editing %q. Select text for AI actions.", notes.NormalizeTitle(note.Title))
}

// loadBuffer shows content that replaced the draft wholesale. The old
// selection no longer refers to anything, so overlays tied to it close.
func (m *model) loadBuffer(content string) {
	cursor := m.buffer.Cursor()
	m.buffer.SetText(content)
	m.buffer.MoveTo(cursor, false)
	m.tracker.Clear()
	m.toolbar.Dismiss()
	if m.preview {
		m.renderPreview()
	}
}

func (m *model) handleNoteDeleted(msg noteDeletedMsg) tea.Cmd {
	if msg.err != nil {
		m.errorMessage = fmt.Sprintf("delete failed: %s", apperr.MessageOf(msg.err))
		return nil
	}
	m.errorMessage = ""
	m.infoMessage = "Note deleted."
	return m.jobs.Start(jobKindList, listNotesJob(m.config.Store))
}

func (m *model) handleNoteReloaded(msg noteReloadedMsg) {
	if msg.err != nil {
		if apperr.Is(msg.err, apperr.CodeNotFound) && m.stage == stageEditor {
			m.errorMessage = "This note was deleted elsewhere."
		}
		return
	}
	if m.session.ExternalUpdate(msg.note) {
		m.loadBuffer(m.session.Content())
		m.infoMessage = "Note changed elsewhere; reloaded."
	}
}

func (m *model) handleSaveDone(msg saveDoneMsg) tea.Cmd {
	gen, rearm := m.session.Saved(msg.result)
	if msg.result.Err != nil {
		m.errorMessage = fmt.Sprintf("save failed: %s", apperr.MessageOf(msg.result.Err))
		return nil
	}
	if strings.HasPrefix(m.errorMessage, "save failed") {
		m.errorMessage = ""
	}
	if rearm {
		return m.session.Sync().Schedule(gen)
	}
	return nil
}

func (m *model) handleCallDone(msg callDoneMsg) tea.Cmd {
	res := msg.result
	save, ok := m.session.Resolve(res)
	if res.Err != nil && !errors.Is(res.Err, context.Canceled) {
		m.errorMessage = fmt.Sprintf("%s failed: %s", res.Kind, apperr.MessageOf(res.Err))
	}
	if !ok {
		if res.Err == nil && (res.Kind == session.KindChat || res.Kind == session.KindDiagram) {
			m.infoMessage = ""
		}
		return nil
	}
	m.loadBuffer(m.session.Content())
	m.errorMessage = ""
	if res.Kind == session.KindLecture {
		m.infoMessage = "Lecture merged into the note."
	} else {
		m.infoMessage = "Edit applied."
	}
	return m.startSave(save)
}

func (m *model) handleLectureLoaded(msg lectureLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.errorMessage = fmt.Sprintf("could not load lecture: %s", apperr.MessageOf(msg.err))
		return nil
	}
	call, ok := m.session.ProcessLecture(msg.text)
	if !ok {
		m.errorMessage = "AI features are not configured."
		return nil
	}
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Merging %s into the note…", msg.source)
	return m.startCall(call)
}

func (m *model) handleExternalChange() tea.Cmd {
	cmds := []tea.Cmd{waitForChange(m.config.Changes)}
	if m.config.Store == nil {
		return tea.Batch(cmds...)
	}
	switch {
	case m.stage == stageEditor && m.session.Note().ID != "":
		cmds = append(cmds, m.jobs.Start(jobKindReload, reloadNoteJob(m.config.Store, m.session.Note().ID)))
	case m.stage == stageList:
		cmds = append(cmds, m.jobs.Start(jobKindList, listNotesJob(m.config.Store)))
	}
	return tea.Batch(cmds...)
}

// observe feeds a selection event through the tracker into the toolbar.
func (m *model) observe(payload selection.Payload) selection.Result {
	ev := selection.Event{Revision: m.buffer.Revision(), Payload: payload}
	res := m.tracker.Observe(ev, m.buffer)
	m.toolbar.Observe(res, m.layout.editorSize())
	return res
}

// repositionToolbar re-clamps the toolbar after a resize or scroll.
func (m *model) repositionToolbar() {
	if !m.toolbar.Visible() {
		return
	}
	sel, ok := m.tracker.Current()
	if !ok {
		sel = m.toolbar.Selection()
	}
	if sel.Source == selection.SourceRichText {
		m.toolbar.Reposition(sel.Anchor, m.layout.editorSize())
		return
	}
	anchor, _ := m.buffer.Caret(sel.End)
	m.toolbar.Reposition(anchor, m.layout.editorSize())
}

// chooseAction runs a toolbar action. Edit opens the instruction prompt;
// the others dispatch straight away.
func (m *model) chooseAction(a toolbar.Action) tea.Cmd {
	intent, ok := m.toolbar.Choose(a)
	if m.toolbar.Mode() == toolbar.InlineEditPrompt {
		m.focus = focusToolbar
		m.toolbar.FocusOverlay()
		m.instruction.SetValue("")
		return m.instruction.Focus()
	}
	if !ok {
		return nil
	}
	return m.dispatch(intent)
}

func (m *model) dispatch(intent toolbar.Intent) tea.Cmd {
	var (
		call session.Call
		ok   bool
	)
	switch intent.Action {
	case toolbar.ActionAskAI:
		call, ok = m.session.AskAI(intent.Text)
		if ok {
			m.focus = focusChat
			m.chatScroll = 0
			m.infoMessage = "Asking AI…"
		}
	case toolbar.ActionEdit:
		call, ok = m.session.InlineEdit(intent.Instruction, intent.Text)
		if ok {
			m.infoMessage = "Applying edit…"
		}
	case toolbar.ActionDiagram:
		call, ok = m.session.GenerateDiagram(intent.Text)
		if ok {
			m.focus = focusDiagram
			m.infoMessage = "Generating diagram…"
		}
	}
	if !ok {
		m.errorMessage = "AI features are not configured."
		return nil
	}
	m.errorMessage = ""
	cmds := []tea.Cmd{m.startCall(call)}
	if m.focus == focusChat {
		cmds = append(cmds, m.chatInput.Focus())
	}
	return tea.Batch(cmds...)
}

func (m *model) copyText(what, text string) tea.Cmd {
	if strings.TrimSpace(text) == "" {
		m.infoMessage = "Nothing to copy."
		return nil
	}
	return m.jobs.Start(jobKindCopy, copyJob(m.config.Clipboard, what, text))
}

func (m *model) quit() tea.Cmd {
	m.session.Cancel()
	if save := m.flush(); save != nil {
		return tea.Sequence(save, tea.Quit)
	}
	return tea.Quit
}
