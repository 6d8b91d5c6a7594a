package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/notable/internal/lecture"
	"github.com/csheth/notable/internal/notes"
	"github.com/csheth/notable/internal/session"
	"github.com/csheth/notable/internal/watch"
)

const storeTimeout = 10 * time.Second

// LectureLoader reads a lecture transcript from a file or URL.
type LectureLoader interface {
	Load(ctx context.Context, source string) (lecture.Transcript, error)
}

func listNotesJob(store notes.Store) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()
		list, err := store.List(ctx)
		return notesLoadedMsg{notes: list, err: err}, err
	}
}

func openNoteJob(store notes.Store, id string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()
		note, err := store.Get(ctx, id)
		return noteOpenedMsg{note: note, err: err}, err
	}
}

func createNoteJob(store notes.Store, title string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()
		note, err := store.Create(ctx, title, "")
		return noteOpenedMsg{note: note, err: err}, err
	}
}

func deleteNoteJob(store notes.Store, id string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()
		err := store.Delete(ctx, id)
		return noteDeletedMsg{id: id, err: err}, err
	}
}

func reloadNoteJob(store notes.Store, id string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()
		note, err := store.Get(ctx, id)
		return noteReloadedMsg{note: note, err: err}, err
	}
}

func persistJob(sess *session.Session, save session.Save) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()
		res := sess.Persist(ctx, save)
		return saveDoneMsg{result: res}, res.Err
	}
}

// callJob runs a session call under its own context, which the session
// cancels when the call is superseded.
func callJob(call session.Call) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		res := call.Run()
		return callDoneMsg{result: res}, res.Err
	}
}

func loadLectureJob(loader LectureLoader, source string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		transcript, err := loader.Load(ctx, source)
		if err != nil {
			return lectureLoadedMsg{source: source, err: err}, err
		}
		text := lecture.Condense(transcript.Text, lecture.DefaultBudget)
		return lectureLoadedMsg{source: source, text: text}, nil
	}
}

func copyJob(write func(string) error, what, text string) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		err := write(text)
		return copiedMsg{what: what, err: err}, err
	}
}

func callJobKind(kind session.Kind) jobKind {
	switch kind {
	case session.KindChat:
		return jobKindChat
	case session.KindEdit:
		return jobKindEdit
	case session.KindDiagram:
		return jobKindDiagram
	default:
		return jobKindLecture
	}
}

// waitForChange blocks until the watcher reports a change. A closed channel
// ends the subscription.
func waitForChange(events <-chan watch.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return externalChangeMsg{}
	}
}
