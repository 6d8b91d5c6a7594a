package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/csheth/notable/internal/lecture"
	"github.com/csheth/notable/internal/notes"
	"github.com/csheth/notable/internal/session"
	"github.com/csheth/notable/internal/watch"
)

type fakeLoader struct {
	text string
	err  error
}

func (f fakeLoader) Load(_ context.Context, source string) (lecture.Transcript, error) {
	if f.err != nil {
		return lecture.Transcript{}, f.err
	}
	return lecture.Transcript{Source: source, Text: f.text}, nil
}

func TestWaitForChange(t *testing.T) {
	if cmd := waitForChange(nil); cmd != nil {
		t.Fatal("a nil channel should not subscribe")
	}

	events := make(chan watch.Event, 1)
	events <- watch.Event{}
	if msg := waitForChange(events)(); msg != (externalChangeMsg{}) {
		t.Fatalf("expected externalChangeMsg, got %T", msg)
	}

	close(events)
	if msg := waitForChange(events)(); msg != nil {
		t.Fatalf("a closed channel should end the subscription, got %T", msg)
	}
}

func TestCallJobKind(t *testing.T) {
	cases := map[session.Kind]jobKind{
		session.KindChat:    jobKindChat,
		session.KindEdit:    jobKindEdit,
		session.KindDiagram: jobKindDiagram,
		session.KindLecture: jobKindLecture,
	}
	for kind, want := range cases {
		if got := callJobKind(kind); got != want {
			t.Fatalf("%v: got %q want %q", kind, got, want)
		}
	}
}

func TestLoadLectureJob(t *testing.T) {
	msg, err := loadLectureJob(fakeLoader{text: "  cells divide  "}, "talk.txt")(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded := msg.(lectureLoadedMsg)
	if loaded.source != "talk.txt" || strings.TrimSpace(loaded.text) != "cells divide" {
		t.Fatalf("unexpected message: %+v", loaded)
	}

	boom := errors.New("not found")
	msg, err = loadLectureJob(fakeLoader{err: boom}, "missing.txt")(context.Background())
	if !errors.Is(err, boom) || msg.(lectureLoadedMsg).err == nil {
		t.Fatalf("expected the loader error, got %v", err)
	}
}

func TestStoreJobs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	msg, err := createNoteJob(store, "")(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created := msg.(noteOpenedMsg).note
	if created.Title != notes.DefaultTitle {
		t.Fatalf("blank titles should default, got %q", created.Title)
	}

	msg, _ = listNotesJob(store)(ctx)
	if list := msg.(notesLoadedMsg).notes; len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	if _, err := deleteNoteJob(store, created.ID)(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	msg, err = reloadNoteJob(store, created.ID)(ctx)
	if err == nil || msg.(noteReloadedMsg).err == nil {
		t.Fatal("reloading a deleted note should fail")
	}
}

func TestPersistJob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	note, err := store.Create(ctx, "Cells", "v1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	sess := session.New(ctx, session.Deps{Store: store})
	sess.Open(note)
	sess.Edit("v2")
	save, ok := sess.Flush()
	if !ok {
		t.Fatal("expected a pending save")
	}

	msg, err := persistJob(sess, save)(ctx)
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if got := msg.(saveDoneMsg).result.Note.Content; got != "v2" {
		t.Fatalf("stored content mismatch: %q", got)
	}
}

func TestCopyJob(t *testing.T) {
	var copied string
	msg, err := copyJob(func(s string) error { copied = s; return nil }, "the reply", "text")(context.Background())
	if err != nil || copied != "text" {
		t.Fatalf("copy failed: %v %q", err, copied)
	}
	if msg.(copiedMsg).what != "the reply" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}
