package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMigratesToCurrentVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "notable.db")
	conn, err := Open(path)
	require.NoError(t, err)
	defer conn.Close()

	version, err := userVersion(conn)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)

	for _, table := range []string{"notes", "users"} {
		var name string
		err := conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notable.db")
	first, err := Open(path)
	require.NoError(t, err)
	_, err = first.Exec("INSERT INTO notes(id, owner_id, title, content, created_at, updated_at) VALUES('a','local','t','c',1,1)")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	var count int
	require.NoError(t, second.QueryRow("SELECT COUNT(*) FROM notes").Scan(&count))
	assert.Equal(t, 1, count)
}
