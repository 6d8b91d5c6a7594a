// Package lecture loads lecture transcripts from files, PDFs and URLs and
// condenses them before they are merged into a note.
package lecture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/csheth/notable/internal/apperr"
)

// Format is the detected transcript format.
type Format string

const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
)

// Transcript is a loaded lecture.
type Transcript struct {
	Source string
	Format Format
	Text   string
}

var pdfWhitespace = regexp.MustCompile(`[ \t]+`)

// Loader reads transcripts. Remote sources go through an on-disk cache.
type Loader struct {
	client *http.Client
	cache  *downloadCache
}

// NewLoader returns a loader; a nil client uses a default with a timeout.
func NewLoader(client *http.Client) *Loader {
	return &Loader{client: client}
}

// Load reads source, which is a local path or an http(s) URL.
func (l *Loader) Load(ctx context.Context, source string) (Transcript, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return Transcript{}, apperr.Invalid("lecture source is required")
	}

	path, contentType := source, ""
	if isURL(source) {
		if l.cache == nil {
			cache, err := newDownloadCache(l.client)
			if err != nil {
				return Transcript{}, err
			}
			l.cache = cache
		}
		fetched, err := l.cache.Fetch(ctx, source)
		if err != nil {
			return Transcript{}, fmt.Errorf("fetch lecture: %w", err)
		}
		path, contentType = fetched.Path, fetched.ContentType
	}

	format, err := detectFormat(path, contentType)
	if err != nil {
		return Transcript{}, err
	}
	var text string
	if format == FormatPDF {
		text, err = pdfText(path)
	} else {
		text, err = plainText(path)
	}
	if err != nil {
		return Transcript{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Transcript{}, apperr.Invalid("lecture transcript is empty")
	}
	return Transcript{Source: source, Format: format, Text: text}, nil
}

func isURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func detectFormat(path, contentType string) (Format, error) {
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return FormatPDF, nil
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return FormatPDF, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperr.NotFound("lecture file", path)
		}
		return "", err
	}
	defer f.Close()
	head := make([]byte, 5)
	n, _ := io.ReadFull(f, head)
	if bytes.Equal(head[:n], []byte("%PDF-")) {
		return FormatPDF, nil
	}
	return FormatText, nil
}

func plainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", apperr.Invalid("lecture transcript is not UTF-8 text")
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.TrimSpace(text), nil
}

func pdfText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}
	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	return strings.TrimSpace(pdfWhitespace.ReplaceAllString(builder.String(), " ")), nil
}
