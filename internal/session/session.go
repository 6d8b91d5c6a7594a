// Package session orchestrates one open note: debounced content sync, the
// chat transcript, inline edits, diagrams and lecture merges.
//
// The session never blocks. Every collaborator call is returned as a Call
// for the caller to run off the UI loop; its Result comes back through
// Resolve, where results of superseded tickets are dropped. Persistence is
// returned as a Save, run through Persist and reported back through Saved.
package session

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/csheth/notable/internal/assist"
	"github.com/csheth/notable/internal/autosave"
	"github.com/csheth/notable/internal/diagram"
	"github.com/csheth/notable/internal/llm"
	"github.com/csheth/notable/internal/notes"
)

const (
	// ChatFailureNotice is appended when the chat collaborator fails.
	ChatFailureNotice = "Sorry, I encountered an error processing your request."
	// DiagramFailureNotice is shown when diagram generation fails.
	DiagramFailureNotice = "Failed to generate diagram. Please try again."
	// DiagramFallbackNotice precedes the raw source when rendering fails.
	DiagramFallbackNotice = "Unable to render this diagram. Raw source:"
)

// Deps are the session's collaborators.
type Deps struct {
	Store    notes.Store
	Chat     assist.ChatService
	Editor   assist.TextEditor
	Diagrams assist.DiagramGenerator
	Lectures assist.LectureProcessor
	Renderer diagram.Renderer
	Logger   *zap.Logger
	// Window is the autosave quiet period; zero uses autosave.DefaultWindow.
	Window time.Duration
	Now    func() time.Time
}

// DiagramView is the state of the diagram overlay.
type DiagramView struct {
	Open     bool
	Loading  bool
	Source   string
	Rendered string
	// Err is a user-facing message: the generation failure notice, or the
	// fallback notice when Fallback is set.
	Err      string
	Fallback bool
}

// Call is a collaborator request issued by the session.
type Call struct {
	Ticket Ticket
	Kind   Kind
	ctx    context.Context
	run    func(ctx context.Context) (string, error)
}

// Run performs the request. It is safe to call from any goroutine and does
// not touch session state.
func (c Call) Run() Result {
	text, err := c.run(c.ctx)
	return Result{Ticket: c.Ticket, Kind: c.Kind, Text: text, Err: err}
}

// Context returns the request's context, cancelled when the call is superseded.
func (c Call) Context() context.Context {
	return c.ctx
}

// Result is the outcome of a Call.
type Result struct {
	Ticket Ticket
	Kind   Kind
	Text   string
	Err    error
}

// Save is a pending persistence request.
type Save struct {
	NoteID string
	Gen    uint64
	Patch  notes.Patch
}

// SaveResult is the outcome of a Save.
type SaveResult struct {
	Save
	Note notes.Note
	Err  error
}

// Session is the edit session for one note. It is driven from a single
// goroutine.
type Session struct {
	deps   Deps
	base   context.Context
	logger *zap.Logger

	note notes.Note
	sync *autosave.Sync

	chatOpen   bool
	transcript Transcript
	diagram    DiagramView
	width      int

	slot slot
}

// New returns a session with no open note. ctx bounds every collaborator call.
func New(ctx context.Context, deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Session{
		deps:   deps,
		base:   ctx,
		logger: deps.Logger.Named("session"),
		sync:   autosave.New("", "", deps.Window),
		width:  80,
	}
}

// Open makes note the edited note, discarding chat and diagram state.
func (s *Session) Open(note notes.Note) {
	s.slot.abort()
	s.note = note
	s.sync = autosave.New(note.ID, note.Content, s.deps.Window)
	s.closeChat()
	s.diagram = DiagramView{}
}

// Note returns the open note with the displayed content.
func (s *Session) Note() notes.Note {
	n := s.note
	n.Content = s.sync.Display()
	return n
}

// Content returns the displayed content.
func (s *Session) Content() string { return s.sync.Display() }

// Sync exposes the content buffer.
func (s *Session) Sync() *autosave.Sync { return s.sync }

// Busy reports the kind of the in-flight action, if any.
func (s *Session) Busy() (Kind, bool) { return s.slot.busy() }

// Edit records typed content and returns the generation to schedule.
func (s *Session) Edit(value string) uint64 {
	return s.sync.Edit(value)
}

// Tick handles an elapsed debounce window.
func (s *Session) Tick(gen uint64) (Save, bool) {
	value, ok := s.sync.Fire(gen)
	if !ok {
		return Save{}, false
	}
	return s.contentSave(value, gen), true
}

// Flush returns the pending content for immediate persistence, used on blur
// and close.
func (s *Session) Flush() (Save, bool) {
	value, gen, ok := s.sync.Flush()
	if !ok {
		return Save{}, false
	}
	return s.contentSave(value, gen), true
}

// Rename sets the title. It is persisted immediately.
func (s *Session) Rename(title string) (Save, bool) {
	if s.note.ID == "" {
		return Save{}, false
	}
	title = notes.NormalizeTitle(title)
	if title == s.note.Title {
		return Save{}, false
	}
	s.note.Title = title
	return Save{NoteID: s.note.ID, Patch: notes.TitlePatch(title)}, true
}

func (s *Session) contentSave(value string, gen uint64) Save {
	return Save{NoteID: s.note.ID, Gen: gen, Patch: notes.ContentPatch(value)}
}

// Persist writes save through the store. It does not touch session state.
func (s *Session) Persist(ctx context.Context, save Save) SaveResult {
	note, err := s.deps.Store.Update(ctx, save.NoteID, save.Patch)
	return SaveResult{Save: save, Note: note, Err: err}
}

// Saved records a persistence outcome. Failures are logged and never roll
// back the display. When the confirmed value no longer matches the draft,
// Saved returns a generation to re-arm the debounce with.
func (s *Session) Saved(res SaveResult) (uint64, bool) {
	if res.NoteID != s.note.ID {
		return 0, false
	}
	if res.Err != nil {
		s.logger.Warn("save failed",
			zap.String("note", res.NoteID),
			zap.Uint64("gen", res.Gen),
			zap.Error(res.Err),
		)
		if res.Patch.Content != nil {
			s.sync.Fail(res.Gen, res.Err)
		}
		return 0, false
	}
	if !res.Note.UpdatedAt.IsZero() {
		s.note.UpdatedAt = res.Note.UpdatedAt
	}
	if res.Patch.Content == nil {
		return 0, false
	}
	return s.sync.Confirm(res.Gen, *res.Patch.Content)
}

// ExternalUpdate applies a stored copy changed elsewhere. It is applied only
// when no local edit is pending, and replaces the display immediately.
func (s *Session) ExternalUpdate(note notes.Note) bool {
	if note.ID != s.note.ID || s.sync.State() == autosave.Pending {
		return false
	}
	changed := note.Content != s.sync.Display() || note.Title != s.note.Title
	s.note.Title = note.Title
	s.note.UpdatedAt = note.UpdatedAt
	if note.Content != s.sync.Display() {
		s.sync.Resync(note.Content)
	}
	return changed
}

// ChatOpen reports whether the chat overlay is open.
func (s *Session) ChatOpen() bool { return s.chatOpen }

// Transcript returns the chat transcript.
func (s *Session) Transcript() *Transcript { return &s.transcript }

// Diagram returns the diagram overlay state.
func (s *Session) Diagram() DiagramView { return s.diagram }

// AskAI opens the chat overlay with text as a user turn and asks the chat
// collaborator. Blank text is ignored. Follow-ups use the same path.
func (s *Session) AskAI(text string) (Call, bool) {
	text = strings.TrimSpace(text)
	if text == "" || s.deps.Chat == nil {
		return Call{}, false
	}
	history := s.transcript.History()
	s.transcript.append(llm.RoleUser, text, s.deps.Now())
	s.chatOpen = true

	chat := s.deps.Chat
	return s.issue(KindChat, func(ctx context.Context) (string, error) {
		return chat.Send(ctx, history, text)
	}), true
}

// InlineEdit asks the text-edit collaborator to apply instruction to
// selected within the whole document.
func (s *Session) InlineEdit(instruction, selected string) (Call, bool) {
	if strings.TrimSpace(instruction) == "" || strings.TrimSpace(selected) == "" || s.deps.Editor == nil {
		return Call{}, false
	}
	req := assist.EditRequest{
		WholeDocument: s.sync.Display(),
		SelectedPart:  selected,
		Instruction:   strings.TrimSpace(instruction),
	}
	editor := s.deps.Editor
	return s.issue(KindEdit, func(ctx context.Context) (string, error) {
		return editor.Edit(ctx, req)
	}), true
}

// GenerateDiagram opens the diagram overlay in its loading state and asks the
// generator for source describing text. Blank text is ignored.
func (s *Session) GenerateDiagram(text string) (Call, bool) {
	text = strings.TrimSpace(text)
	if text == "" || s.deps.Diagrams == nil {
		return Call{}, false
	}
	s.diagram = DiagramView{Open: true, Loading: true}
	gen := s.deps.Diagrams
	return s.issue(KindDiagram, func(ctx context.Context) (string, error) {
		return gen.Generate(ctx, text)
	}), true
}

// ProcessLecture merges lecture content into the note.
func (s *Session) ProcessLecture(lecture string) (Call, bool) {
	if strings.TrimSpace(lecture) == "" || s.deps.Lectures == nil {
		return Call{}, false
	}
	req := assist.LectureRequest{
		NoteID:         s.note.ID,
		CurrentContent: s.sync.Display(),
		LectureContent: lecture,
	}
	proc := s.deps.Lectures
	return s.issue(KindLecture, func(ctx context.Context) (string, error) {
		return proc.Process(ctx, req)
	}), true
}

func (s *Session) issue(kind Kind, run func(ctx context.Context) (string, error)) Call {
	ticket, ctx := s.slot.issue(s.base, kind)
	s.logger.Debug("dispatch", zap.Stringer("kind", kind), zap.Uint64("ticket", uint64(ticket)))
	return Call{Ticket: ticket, Kind: kind, ctx: ctx, run: run}
}

// Resolve applies a call result. Stale results are ignored. A successful
// edit or lecture merge returns the Save that persists the new content.
func (s *Session) Resolve(res Result) (Save, bool) {
	if !s.slot.settle(res.Ticket) {
		s.logger.Debug("stale result dropped", zap.Stringer("kind", res.Kind), zap.Uint64("ticket", uint64(res.Ticket)))
		return Save{}, false
	}

	switch res.Kind {
	case KindChat:
		if res.Err != nil {
			s.logger.Warn("chat failed", zap.Error(res.Err))
			s.transcript.append(llm.RoleAssistant, ChatFailureNotice, s.deps.Now())
			return Save{}, false
		}
		s.transcript.append(llm.RoleAssistant, res.Text, s.deps.Now())

	case KindEdit, KindLecture:
		if res.Err != nil {
			s.logger.Warn(res.Kind.String()+" failed", zap.String("note", s.note.ID), zap.Error(res.Err))
			return Save{}, false
		}
		gen := s.sync.Replace(res.Text)
		return s.contentSave(res.Text, gen), true

	case KindDiagram:
		s.diagram.Loading = false
		if res.Err != nil {
			s.logger.Warn("diagram generation failed", zap.Error(res.Err))
			s.diagram.Err = DiagramFailureNotice
			return Save{}, false
		}
		s.diagram.Source = res.Text
		s.renderDiagram()
	}
	return Save{}, false
}

// Resize sets the width diagrams are rendered at and redraws an open diagram.
func (s *Session) Resize(width int) {
	if width <= 0 || width == s.width {
		return
	}
	s.width = width
	if s.diagram.Open && s.diagram.Source != "" {
		s.renderDiagram()
	}
}

func (s *Session) renderDiagram() {
	s.diagram.Rendered = ""
	s.diagram.Err = ""
	s.diagram.Fallback = false
	if s.deps.Renderer == nil {
		s.diagram.Rendered = s.diagram.Source
		return
	}
	out, err := s.deps.Renderer.Render(s.diagram.Source, s.width)
	if err != nil {
		s.logger.Info("diagram render failed", zap.Error(err))
		s.diagram.Fallback = true
		s.diagram.Err = DiagramFallbackNotice
		return
	}
	s.diagram.Rendered = out
}

// CloseChat closes the chat overlay and discards the transcript. An
// in-flight chat request is cancelled.
func (s *Session) CloseChat() {
	s.slot.abortKind(KindChat)
	s.closeChat()
}

func (s *Session) closeChat() {
	s.chatOpen = false
	s.transcript.reset()
}

// CloseDiagram closes the diagram overlay, cancelling generation in flight.
func (s *Session) CloseDiagram() {
	s.slot.abortKind(KindDiagram)
	s.diagram = DiagramView{}
}

// Cancel aborts whatever action is in flight.
func (s *Session) Cancel() {
	kind, busy := s.slot.busy()
	if !busy {
		return
	}
	s.slot.abort()
	if kind == KindDiagram {
		s.diagram.Loading = false
		s.diagram.Err = DiagramFailureNotice
	}
}
