package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func appendTo(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString(text)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "notable.db")
	appendTo(t, dbPath, "")

	w, err := New(dbPath, 50*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		appendTo(t, dbPath+"-wal", "x")
	}

	select {
	case ev := <-w.Events():
		assert.False(t, ev.At.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change event")
	}

	select {
	case <-w.Events():
		t.Fatal("burst should produce a single event")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "notable.db")

	w, err := New(dbPath, 20*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	appendTo(t, filepath.Join(dir, "token.json"), "{}")

	select {
	case <-w.Events():
		t.Fatal("unrelated file should not produce an event")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestCloseEndsEvents(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "notable.db")
	w, err := New(dbPath, 0, nil)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Events()
	assert.False(t, ok)
}

func TestMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "notable.db"), 0, nil)
	assert.Error(t, err)
}
