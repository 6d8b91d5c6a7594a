package notes

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/notable/internal/apperr"
	"github.com/csheth/notable/internal/db"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	conn, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewSQLStore(conn, LocalOwner)
}

func TestCreateDefaultsTitle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	note, err := store.Create(ctx, "   ", "Start writing your thoughts...")
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, note.Title)
	assert.Len(t, note.ID, 26, "ULID")
	assert.Equal(t, LocalOwner, note.OwnerID)

	got, err := store.Get(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, note, got)
}

func TestUpdateAppliesPatchFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	clock := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	note, err := store.Create(ctx, "Lecture 1", "hello world")
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	updated, err := store.Update(ctx, note.ID, ContentPatch("HELLO world"))
	require.NoError(t, err)
	assert.Equal(t, "HELLO world", updated.Content)
	assert.Equal(t, "Lecture 1", updated.Title, "nil title is untouched")
	assert.Equal(t, clock, updated.UpdatedAt)
	assert.Equal(t, note.CreatedAt, updated.CreatedAt)

	updated, err = store.Update(ctx, note.ID, TitlePatch("Renamed"))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "HELLO world", updated.Content)

	_, err = store.Update(ctx, "missing", ContentPatch("x"))
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestListOrdersByUpdatedAndScopesOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	clock := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { clock = clock.Add(time.Second); return clock }

	first, err := store.Create(ctx, "first", "")
	require.NoError(t, err)
	second, err := store.Create(ctx, "second", "")
	require.NoError(t, err)
	_, err = store.Update(ctx, first.ID, ContentPatch("touched"))
	require.NoError(t, err)

	other := store.ForOwner("someone-else")
	_, err = other.Create(ctx, "not mine", "")
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	_, err = other.Get(ctx, first.ID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound), "owners cannot read each other's notes")
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	note, err := store.Create(ctx, "gone", "")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, note.ID))
	err = store.Delete(ctx, note.ID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestArchiveRoundTripAndRestore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a, err := store.Create(ctx, "Alpha", "alpha body")
	require.NoError(t, err)
	b, err := store.Create(ctx, "Beta", "beta body")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "backup", "notes.json")
	list, err := store.List(ctx)
	require.NoError(t, err)
	require.NoError(t, SaveArchive(path, list))

	loaded, err := LoadArchive(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	fresh := newTestStore(t)
	n, err := Restore(ctx, fresh, loaded)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := fresh.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Content, got.Content)
	got, err = fresh.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Title, got.Title)
}

func TestLoadArchiveSkipsUnknownEntriesAndRejectsNewerVersions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.json")
	body := `[
  {"entryType":"archive","version":1,"count":1},
  {"entryType":"conversation","messages":[]},
  {"id":"01J","title":"Legacy","content":"no entry type"}
]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	loaded, err := LoadArchive(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Legacy", loaded[0].Title)

	require.NoError(t, os.WriteFile(path, []byte(`[{"entryType":"archive","version":9}]`), 0o644))
	_, err = LoadArchive(path)
	assert.Error(t, err)

	_, err = LoadArchive(filepath.Join(dir, "missing.json"))
	assert.True(t, IsMissing(err))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "first line", Preview("\n\n  first line  \nsecond", 40))
	assert.Equal(t, "abcd…", Preview("abcdefghij", 5))
	assert.Equal(t, "", Preview("   \n ", 10))
}
