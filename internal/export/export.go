// Package export writes notes out as Markdown or standalone HTML and builds
// share links.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/csheth/notable/internal/apperr"
	"github.com/csheth/notable/internal/notes"
)

// Format is an export file format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

const maxSlugLen = 60

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; }
pre { background: #f4f4f4; padding: .75rem; overflow-x: auto; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: .25rem .5rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{.Body}}
<footer><small>Last updated {{.Updated}}</small></footer>
</body>
</html>
`))

// ParseFormat accepts "md", "markdown" or "html".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", apperr.Invalid(fmt.Sprintf("unknown export format %q", s))
	}
}

// Markdown renders note as a Markdown document with its title as a heading.
func Markdown(note notes.Note) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(notes.NormalizeTitle(note.Title))
	b.WriteString("\n\n")
	content := strings.TrimRight(note.Content, "\n")
	if content != "" {
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders note as a standalone HTML page.
func HTML(note notes.Note) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(note.Content), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	updated := ""
	if !note.UpdatedAt.IsZero() {
		updated = note.UpdatedAt.Format("2006-01-02 15:04")
	}
	var page bytes.Buffer
	err := pageTmpl.Execute(&page, struct {
		Title   string
		Body    template.HTML
		Updated string
	}{
		Title:   notes.NormalizeTitle(note.Title),
		Body:    template.HTML(body.String()),
		Updated: updated,
	})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return page.String(), nil
}

// Write renders note in format to w.
func Write(w io.Writer, note notes.Note, format Format) error {
	var out string
	switch format {
	case FormatHTML:
		rendered, err := HTML(note)
		if err != nil {
			return err
		}
		out = rendered
	default:
		out = Markdown(note)
	}
	_, err := io.WriteString(w, out)
	return err
}

// WriteFile renders note into dir using Filename and returns the path written.
func WriteFile(dir string, note notes.Note, format Format) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, Filename(note, format))
	var buf bytes.Buffer
	if err := Write(&buf, note, format); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Filename returns a file name derived from the note title.
func Filename(note notes.Note, format Format) string {
	slug := Slug(note.Title)
	if slug == "" {
		slug = "note"
		if note.ID != "" {
			slug += "-" + strings.ToLower(note.ID)
		}
	}
	return slug + "." + string(format)
}

// Slug lowercases title and joins its letters and digits with hyphens.
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(truncate(slug, maxSlugLen), "-")
	}
	return slug
}

// truncate cuts s to at most limit bytes on a rune boundary.
func truncate(s string, limit int) string {
	cut := 0
	for i := range s {
		if i > limit {
			break
		}
		cut = i
	}
	if len(s) <= limit {
		return s
	}
	return s[:cut]
}

// ShareLink returns the public URL for the note with id.
func ShareLink(base, id string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return base + "/share/" + url.PathEscape(id)
}
