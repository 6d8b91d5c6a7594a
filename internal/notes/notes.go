package notes

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultTitle names notes created without a title.
const DefaultTitle = "Untitled Note"

// LocalOwner owns notes created by the standalone editor.
const LocalOwner = "local"

// Note is a stored note.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil
}

// ContentPatch returns a patch that only replaces the content.
func ContentPatch(content string) Patch {
	return Patch{Content: &content}
}

// TitlePatch returns a patch that only replaces the title.
func TitlePatch(title string) Patch {
	return Patch{Title: &title}
}

// Store is the note-storage collaborator.
type Store interface {
	Create(ctx context.Context, title, content string) (Note, error)
	Update(ctx context.Context, id string, patch Patch) (Note, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Note, error)
	Get(ctx context.Context, id string) (Note, error)
}

// NormalizeTitle trims a title and falls back to DefaultTitle.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle
	}
	return title
}

// Preview returns the first non-empty line of content, truncated to limit runes.
func Preview(content string, limit int) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runes := []rune(line)
		if limit > 0 && len(runes) > limit {
			return strings.TrimSpace(string(runes[:limit-1])) + "…"
		}
		return line
	}
	return ""
}

func newID(now time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}
