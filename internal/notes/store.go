package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/csheth/notable/internal/apperr"
)

// SQLStore keeps notes in SQLite, scoped to one owner.
type SQLStore struct {
	db    *sql.DB
	owner string
	now   func() time.Time
}

// NewSQLStore returns a store for owner over an opened database.
func NewSQLStore(db *sql.DB, owner string) *SQLStore {
	if owner == "" {
		owner = LocalOwner
	}
	return &SQLStore{db: db, owner: owner, now: time.Now}
}

// ForOwner returns a view of the same database scoped to another owner.
func (s *SQLStore) ForOwner(owner string) *SQLStore {
	return &SQLStore{db: s.db, owner: owner, now: s.now}
}

// Owner returns the owner the store is scoped to.
func (s *SQLStore) Owner() string {
	return s.owner
}

// Create inserts a new note.
func (s *SQLStore) Create(ctx context.Context, title, content string) (Note, error) {
	now := s.stamp()
	note := Note{
		ID:        newID(now),
		Title:     NormalizeTitle(title),
		Content:   content,
		OwnerID:   s.owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes(id, owner_id, title, content, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)`,
		note.ID, note.OwnerID, note.Title, note.Content, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return Note{}, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

// Update applies patch to the note with id.
func (s *SQLStore) Update(ctx context.Context, id string, patch Patch) (Note, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Note{}, err
	}
	defer tx.Rollback()

	note, err := s.get(ctx, tx, id)
	if err != nil {
		return Note{}, err
	}
	if patch.Empty() {
		return note, nil
	}
	if patch.Title != nil {
		note.Title = NormalizeTitle(*patch.Title)
	}
	if patch.Content != nil {
		note.Content = *patch.Content
	}
	note.UpdatedAt = s.stamp()

	_, err = tx.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		note.Title, note.Content, note.UpdatedAt.UnixMilli(), note.ID, s.owner)
	if err != nil {
		return Note{}, fmt.Errorf("update note: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Note{}, err
	}
	return note, nil
}

// Delete removes the note with id.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND owner_id = ?`, id, s.owner)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("note", id)
	}
	return nil
}

// List returns the owner's notes, most recently updated first.
func (s *SQLStore) List(ctx context.Context) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, title, content, created_at, updated_at FROM notes WHERE owner_id = ? ORDER BY updated_at DESC, id DESC`,
		s.owner)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, note)
	}
	return out, rows.Err()
}

// Get returns the note with id.
func (s *SQLStore) Get(ctx context.Context, id string) (Note, error) {
	return s.get(ctx, s.db, id)
}

// Put inserts or replaces a note verbatim, keeping its id and timestamps.
// Restoring an archive uses it.
func (s *SQLStore) Put(ctx context.Context, note Note) error {
	if note.ID == "" {
		return apperr.Invalid("note id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes(id, owner_id, title, content, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, content = excluded.content, updated_at = excluded.updated_at
		 WHERE notes.owner_id = excluded.owner_id`,
		note.ID, s.owner, NormalizeTitle(note.Title), note.Content, note.CreatedAt.UnixMilli(), note.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("put note: %w", err)
	}
	return nil
}

// stamp returns the current time at the precision the table stores.
func (s *SQLStore) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) get(ctx context.Context, q queryer, id string) (Note, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, owner_id, title, content, created_at, updated_at FROM notes WHERE id = ? AND owner_id = ?`,
		id, s.owner)
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, apperr.NotFound("note", id)
	}
	return note, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (Note, error) {
	var (
		note             Note
		created, updated int64
	)
	if err := row.Scan(&note.ID, &note.OwnerID, &note.Title, &note.Content, &created, &updated); err != nil {
		return Note{}, err
	}
	note.CreatedAt = time.UnixMilli(created).UTC()
	note.UpdatedAt = time.UnixMilli(updated).UTC()
	return note, nil
}
