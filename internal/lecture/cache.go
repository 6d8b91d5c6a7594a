package lecture

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	cacheEnvVar        = "NOTABLE_CACHE_DIR"
	cacheSubdir        = "notable/lectures"
	cacheTTL           = 24 * time.Hour
	partialSuffix      = ".part"
	metaSuffix         = ".meta"
	defaultHTTPTimeout = 90 * time.Second
)

// downloadCache keeps remote transcripts on disk and revalidates them with
// conditional requests once they are older than cacheTTL. Interrupted
// downloads resume with a Range request.
type downloadCache struct {
	dir    string
	client *http.Client
}

type cachedFile struct {
	Path        string
	ContentType string
}

type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"lastModified"`
	ContentType  string    `json:"contentType"`
	CachedAt     time.Time `json:"cachedAt"`
	Size         int64     `json:"size"`
}

type cachePaths struct {
	body, meta, partial string
}

func newDownloadCache(client *http.Client) (*downloadCache, error) {
	dir := os.Getenv(cacheEnvVar)
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(os.TempDir(), "notable-cache")
		}
		dir = filepath.Join(base, cacheSubdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &downloadCache{dir: dir, client: client}, nil
}

// Fetch returns a local copy of rawURL, downloading or revalidating as needed.
// A stale copy is served when revalidation fails.
func (c *downloadCache) Fetch(ctx context.Context, rawURL string) (cachedFile, error) {
	p := c.pathsFor(cacheKey(rawURL))
	meta, _ := readMeta(p.meta)

	info, statErr := os.Stat(p.body)
	haveBody := statErr == nil && info.Size() > 0
	if haveBody && time.Since(info.ModTime()) < cacheTTL {
		return cachedFile{Path: p.body, ContentType: meta.ContentType}, nil
	}

	fetched, err := c.download(ctx, rawURL, p, meta, haveBody)
	if err == nil {
		return fetched, nil
	}
	if haveBody {
		return cachedFile{Path: p.body, ContentType: meta.ContentType}, nil
	}
	return cachedFile{}, err
}

func (c *downloadCache) download(ctx context.Context, rawURL string, p cachePaths, meta cacheMeta, haveBody bool) (cachedFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return cachedFile{}, err
	}
	if haveBody {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	var resumeFrom int64
	if info, err := os.Stat(p.partial); err == nil && info.Size() > 0 {
		resumeFrom = info.Size()
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", resumeFrom))
		if validator := firstNonEmpty(meta.ETag, meta.LastModified); validator != "" {
			req.Header.Set("If-Range", validator)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return cachedFile{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if !haveBody {
			return c.download(ctx, rawURL, p, cacheMeta{}, false)
		}
		now := time.Now()
		_ = os.Chtimes(p.body, now, now)
		meta.CachedAt = now.UTC()
		_ = writeMeta(p.meta, meta)
		return cachedFile{Path: p.body, ContentType: meta.ContentType}, nil
	case http.StatusOK:
		return c.store(resp, p, false)
	case http.StatusPartialContent:
		return c.store(resp, p, resumeFrom > 0)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return cachedFile{}, fmt.Errorf("lecture download failed: %s (%s)", resp.Status, strings.TrimSpace(string(body)))
	}
}

func (c *downloadCache) store(resp *http.Response, p cachePaths, appendPartial bool) (cachedFile, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendPartial {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(p.partial, flags, 0o644)
	if err != nil {
		return cachedFile{}, err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return cachedFile{}, err
	}
	if err := file.Close(); err != nil {
		return cachedFile{}, err
	}
	if err := os.Rename(p.partial, p.body); err != nil {
		return cachedFile{}, err
	}

	meta := cacheMeta{
		URL:          resp.Request.URL.String(),
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
		ContentType:  resp.Header.Get("Content-Type"),
		CachedAt:     time.Now().UTC(),
	}
	if info, err := os.Stat(p.body); err == nil {
		meta.Size = info.Size()
	}
	if err := writeMeta(p.meta, meta); err != nil {
		return cachedFile{}, err
	}
	return cachedFile{Path: p.body, ContentType: meta.ContentType}, nil
}

func (c *downloadCache) pathsFor(key string) cachePaths {
	body := filepath.Join(c.dir, key)
	return cachePaths{body: body, meta: body + metaSuffix, partial: body + partialSuffix}
}

// cacheKey hashes the URL and keeps its extension so the loader can sniff
// the format from the cached path.
func cacheKey(rawURL string) string {
	sum := sha1.Sum([]byte(rawURL))
	key := hex.EncodeToString(sum[:])
	if u, err := url.Parse(rawURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); ext != "" && len(ext) <= 5 {
			key += ext
		}
	}
	return key
}

func readMeta(path string) (cacheMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cacheMeta{}, err
	}
	var meta cacheMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheMeta{}, err
	}
	return meta, nil
}

func writeMeta(path string, meta cacheMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
