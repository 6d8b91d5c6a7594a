package lecture

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/notable/internal/apperr"
)

func TestLoadTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "week1.md")
	require.NoError(t, os.WriteFile(path, []byte("# Week 1\r\nMitosis\r\n"), 0o644))

	got, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, FormatText, got.Format)
	assert.Equal(t, "# Week 1\nMitosis", got.Text)
}

func TestLoadErrors(t *testing.T) {
	loader := NewLoader(nil)
	ctx := context.Background()

	_, err := loader.Load(ctx, "  ")
	assert.True(t, apperr.Is(err, apperr.CodeInvalid))

	_, err = loader.Load(ctx, filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte(" \n "), 0o644))
	_, err = loader.Load(ctx, empty)
	assert.True(t, apperr.Is(err, apperr.CodeInvalid))

	binary := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(binary, []byte{0xff, 0xfe, 0x00, 0x41}, 0o644))
	_, err = loader.Load(ctx, binary)
	assert.True(t, apperr.Is(err, apperr.CodeInvalid))
}

func TestLoadURL(t *testing.T) {
	t.Setenv(cacheEnvVar, t.TempDir())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("Remote lecture"))
	}))
	t.Cleanup(server.Close)

	got, err := NewLoader(server.Client()).Load(context.Background(), server.URL+"/lecture")
	require.NoError(t, err)
	assert.Equal(t, "Remote lecture", got.Text)
	assert.Equal(t, server.URL+"/lecture", got.Source)
}

func TestDetectFormat(t *testing.T) {
	dir := t.TempDir()
	sniffed := filepath.Join(dir, "download")
	require.NoError(t, os.WriteFile(sniffed, []byte("%PDF-1.7\n..."), 0o644))
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hi"), 0o644))

	cases := []struct {
		path, contentType string
		want              Format
	}{
		{sniffed, "", FormatPDF},
		{text, "", FormatText},
		{text, "application/pdf", FormatPDF},
		{filepath.Join(dir, "slides.PDF"), "", FormatPDF},
	}
	for _, tc := range cases {
		got, err := detectFormat(tc.path, tc.contentType)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.path)
	}
}

func TestCondenseStripsCuesFillerAndDuplicates(t *testing.T) {
	raw := "WEBVTT\n\n" +
		"1\n00:00:01.000 --> 00:00:04.000\nToday we cover mitosis.\n\n" +
		"2\n00:00:05.000 --> 00:00:08.000\nToday   we cover mitosis.\n\n" +
		"[00:09] Um.\n\n" +
		"[00:10] Cells divide into two daughter cells.\n"

	assert.Equal(t, "Today we cover mitosis.\n\nCells divide into two daughter cells.", Condense(raw, 0))
}

func TestCondenseClipsToBudget(t *testing.T) {
	assert.Equal(t, "aaaa\n\nb", Condense("aaaa\n\nbbbb", 7))
	assert.Equal(t, "aa", Condense("aaaa", 2))
}
