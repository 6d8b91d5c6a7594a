package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/csheth/notable/internal/notes"
)

// runApp runs the CLI against a temp home and database and returns stdout.
func runApp(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newCLIApp()
	app.Writer = &out
	app.ErrWriter = &out
	full := append([]string{"notable", "--db", dbPath}, args...)
	err := app.RunContext(context.Background(), full)
	return out.String(), err
}

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("NOTABLE_HOME", home)
	t.Setenv("NOTABLE_BACKEND_URL", "")
	return filepath.Join(home, "notes.db")
}

func TestNotesListEmpty(t *testing.T) {
	dbPath := setupHome(t)
	out, err := runApp(t, dbPath, "notes", "list")
	if err != nil {
		t.Fatalf("notes list: %v", err)
	}
	if !strings.Contains(out, "no notes yet") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestArchiveRestoreThenListAndExport(t *testing.T) {
	dbPath := setupHome(t)
	archive := filepath.Join(t.TempDir(), "backup.json")
	stamp := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	err := notes.SaveArchive(archive, []notes.Note{{
		ID:        "01HZXNOTE0000000000000000A",
		Title:     "Cell biology",
		Content:   "Mitochondria make ATP.",
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}})
	if err != nil {
		t.Fatalf("save archive: %v", err)
	}

	out, err := runApp(t, dbPath, "archive", "restore", archive)
	if err != nil {
		t.Fatalf("archive restore: %v", err)
	}
	if !strings.Contains(out, "1 note(s)") {
		t.Fatalf("unexpected restore output: %q", out)
	}

	out, err = runApp(t, dbPath, "notes", "list")
	if err != nil {
		t.Fatalf("notes list: %v", err)
	}
	if !strings.Contains(out, "Cell biology") {
		t.Fatalf("restored note missing from list: %q", out)
	}

	out, err = runApp(t, dbPath, "export", "--out", "-", "01HZXNOTE0000000000000000A")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "Mitochondria make ATP.") {
		t.Fatalf("export missing content: %q", out)
	}
}

func TestMissingArgumentIsAnError(t *testing.T) {
	dbPath := setupHome(t)
	if _, err := runApp(t, dbPath, "notes", "rm"); err == nil {
		t.Fatal("rm without an id should fail")
	}
	if _, err := runApp(t, dbPath, "lecture", "only-an-id"); err == nil {
		t.Fatal("lecture without sources should fail")
	}
}

func TestLoginRequiresBackend(t *testing.T) {
	dbPath := setupHome(t)
	_, err := runApp(t, dbPath, "login", "--email", "a@b.c", "--password", "pw")
	if err == nil || !strings.Contains(err.Error(), "no server configured") {
		t.Fatalf("expected a missing backend error, got %v", err)
	}
}
