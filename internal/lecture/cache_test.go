package lecture

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func TestDownloadCacheReusesFreshFile(t *testing.T) {
	t.Setenv(cacheEnvVar, t.TempDir())

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Etag", `"v1"`)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Today we cover mitosis."))
	}))
	t.Cleanup(server.Close)

	cache, err := newDownloadCache(server.Client())
	if err != nil {
		t.Fatalf("newDownloadCache: %v", err)
	}
	ctx := context.Background()

	first, err := cache.Fetch(ctx, server.URL+"/week1.txt")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.HasPrefix(first.ContentType, "text/plain") {
		t.Fatalf("content type not recorded: %q", first.ContentType)
	}
	second, err := cache.Fetch(ctx, server.URL+"/week1.txt")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if first.Path != second.Path {
		t.Fatalf("paths differ: %s vs %s", first.Path, second.Path)
	}
	if second.ContentType != first.ContentType {
		t.Fatalf("content type lost on cache hit: %q", second.ContentType)
	}
	if hits != 1 {
		t.Fatalf("expected single download, got %d hits", hits)
	}
}

func TestDownloadCacheRevalidatesStaleFile(t *testing.T) {
	t.Setenv(cacheEnvVar, t.TempDir())

	var conditional int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v2"` {
			conditional++
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Etag", `"v2"`)
		_, _ = w.Write([]byte("lecture body"))
	}))
	t.Cleanup(server.Close)

	cache, err := newDownloadCache(server.Client())
	if err != nil {
		t.Fatalf("newDownloadCache: %v", err)
	}
	ctx := context.Background()

	got, err := cache.Fetch(ctx, server.URL+"/week2.txt")
	if err != nil {
		t.Fatalf("initial fetch: %v", err)
	}
	old := time.Now().Add(-(cacheTTL + time.Hour))
	if err := os.Chtimes(got.Path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if _, err := cache.Fetch(ctx, server.URL+"/week2.txt"); err != nil {
		t.Fatalf("conditional fetch: %v", err)
	}
	if conditional != 1 {
		t.Fatalf("expected one conditional request, got %d", conditional)
	}
	info, err := os.Stat(got.Path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if time.Since(info.ModTime()) > time.Minute {
		t.Fatalf("revalidated file should be fresh again, mtime %s", info.ModTime())
	}
}

func TestDownloadCacheResumesPartialDownload(t *testing.T) {
	t.Setenv(cacheEnvVar, t.TempDir())

	var rangeHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rangeHeader = r.Header.Get("Range")
		w.Header().Set("Etag", `"resume"`)
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte("world"))
	}))
	t.Cleanup(server.Close)

	cache, err := newDownloadCache(server.Client())
	if err != nil {
		t.Fatalf("newDownloadCache: %v", err)
	}
	rawURL := server.URL + "/week3.txt"
	p := cache.pathsFor(cacheKey(rawURL))
	if err := os.WriteFile(p.partial, []byte("hello "), 0o644); err != nil {
		t.Fatalf("write partial: %v", err)
	}
	if err := writeMeta(p.meta, cacheMeta{ETag: `"resume"`}); err != nil {
		t.Fatalf("write meta: %v", err)
	}

	got, err := cache.Fetch(context.Background(), rawURL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	data, err := os.ReadFile(got.Path)
	if err != nil {
		t.Fatalf("read cached file: %v", err)
	}
	if string(data) != "hello world" {
		t.Fatalf("resume failed, got %q", string(data))
	}
	if rangeHeader != fmt.Sprintf("bytes=%d-", len("hello ")) {
		t.Fatalf("expected range header, got %q", rangeHeader)
	}
	if _, err := os.Stat(p.partial); !os.IsNotExist(err) {
		t.Fatalf("partial file should be removed, err=%v", err)
	}
}

func TestDownloadCacheServesStaleCopyWhenOffline(t *testing.T) {
	t.Setenv(cacheEnvVar, t.TempDir())

	up := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !up {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("cached lecture"))
	}))
	t.Cleanup(server.Close)

	cache, err := newDownloadCache(server.Client())
	if err != nil {
		t.Fatalf("newDownloadCache: %v", err)
	}
	got, err := cache.Fetch(context.Background(), server.URL+"/week4.txt")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	old := time.Now().Add(-(cacheTTL + time.Hour))
	if err := os.Chtimes(got.Path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	up = false
	again, err := cache.Fetch(context.Background(), server.URL+"/week4.txt")
	if err != nil {
		t.Fatalf("expected stale copy, got %v", err)
	}
	if again.Path != got.Path {
		t.Fatalf("unexpected path %s", again.Path)
	}
}

func TestCacheKeyKeepsExtension(t *testing.T) {
	t.Parallel()
	key := cacheKey("https://example.com/slides/week1.PDF?dl=1")
	if !strings.HasSuffix(key, ".pdf") {
		t.Fatalf("expected .pdf suffix, got %q", key)
	}
	if strings.Contains(key, "/") {
		t.Fatalf("cache key should be a flat file name, got %q", key)
	}
}
