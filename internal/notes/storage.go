package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	entryTypeHeader = "archive"
	entryTypeNote   = "note"

	archiveVersion = 1
)

type entryHeader struct {
	EntryType string `json:"entryType"`
}

type archiveHeader struct {
	EntryType  string    `json:"entryType"`
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	Count      int       `json:"count"`
}

type archivedNote struct {
	EntryType string `json:"entryType"`
	Note
}

// SaveArchive writes notes to a JSON archive file, replacing it.
func SaveArchive(path string, notes []Note) error {
	entries := make([]json.RawMessage, 0, len(notes)+1)
	header, err := json.Marshal(archiveHeader{
		EntryType:  entryTypeHeader,
		Version:    archiveVersion,
		ExportedAt: time.Now().UTC(),
		Count:      len(notes),
	})
	if err != nil {
		return err
	}
	entries = append(entries, header)
	for _, note := range notes {
		raw, err := json.Marshal(archivedNote{EntryType: entryTypeNote, Note: note})
		if err != nil {
			return err
		}
		entries = append(entries, raw)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeEntries(path, entries)
}

// LoadArchive reads every note from an archive. Entries of unknown type are skipped.
func LoadArchive(path string) ([]Note, error) {
	entries, err := loadEntries(path)
	if err != nil {
		return nil, err
	}

	notes := make([]Note, 0, len(entries))
	for _, raw := range entries {
		entryType, err := detectEntryType(raw)
		if err != nil {
			return nil, err
		}
		if entryType == entryTypeHeader {
			var header archiveHeader
			if err := json.Unmarshal(raw, &header); err != nil {
				return nil, err
			}
			if header.Version > archiveVersion {
				return nil, fmt.Errorf("archive version %d is newer than supported version %d", header.Version, archiveVersion)
			}
			continue
		}
		if entryType != entryTypeNote {
			continue
		}
		var entry archivedNote
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, err
		}
		notes = append(notes, entry.Note)
	}
	return notes, nil
}

// Restore writes archived notes into store, keeping their ids. It returns
// how many notes were written.
func Restore(ctx context.Context, store *SQLStore, archived []Note) (int, error) {
	count := 0
	for _, note := range archived {
		if note.ID == "" {
			continue
		}
		if note.CreatedAt.IsZero() {
			note.CreatedAt = time.Now().UTC()
		}
		if note.UpdatedAt.IsZero() {
			note.UpdatedAt = note.CreatedAt
		}
		if err := store.Put(ctx, note); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func writeEntries(path string, entries []json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func loadEntries(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func detectEntryType(raw json.RawMessage) (string, error) {
	var header entryHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return "", err
	}
	if header.EntryType == "" {
		return entryTypeNote, nil
	}
	return header.EntryType, nil
}

// IsMissing reports whether err means the archive file does not exist.
func IsMissing(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
