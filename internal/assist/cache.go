package assist

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/patrickmn/go-cache"
)

// CachedDiagrams remembers generated diagrams by the text they describe.
type CachedDiagrams struct {
	next  DiagramGenerator
	cache *cache.Cache
}

// NewCachedDiagrams caches next's results for ttl.
func NewCachedDiagrams(next DiagramGenerator, ttl time.Duration) *CachedDiagrams {
	return &CachedDiagrams{
		next:  next,
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (c *CachedDiagrams) Generate(ctx context.Context, text string) (string, error) {
	key := diagramKey(text)
	if x, found := c.cache.Get(key); found {
		return x.(string), nil
	}
	source, err := c.next.Generate(ctx, text)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, source, cache.DefaultExpiration)
	return source, nil
}

// Len reports how many diagrams are cached.
func (c *CachedDiagrams) Len() int {
	return c.cache.ItemCount()
}

func diagramKey(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(strings.TrimSpace(text)), 16)
}

type cachedService struct {
	Service
	diagrams *CachedDiagrams
}

func (s cachedService) Generate(ctx context.Context, text string) (string, error) {
	return s.diagrams.Generate(ctx, text)
}

// WithDiagramCache returns svc with diagram generation cached for ttl.
func WithDiagramCache(svc Service, ttl time.Duration) Service {
	return cachedService{Service: svc, diagrams: NewCachedDiagrams(svc, ttl)}
}
