package rag

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/entity"
)

// Searcher is the lookup the cache decorates.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) []entity.SimilarSpec
}

type cacheKey struct {
	query string
	limit int
}

// CachedSearcher memoizes non-empty search results in a bounded LRU.
// Empty results are never cached so a recovered backend is picked up immediately.
type CachedSearcher struct {
	next   Searcher
	cache  *lru.Cache[cacheKey, []entity.SimilarSpec]
	logger *zap.Logger
}

func NewCachedSearcher(next Searcher, size int, logger *zap.Logger) (*CachedSearcher, error) {
	cache, err := lru.New[cacheKey, []entity.SimilarSpec](size)
	if err != nil {
		return nil, fmt.Errorf("create search cache: %w", err)
	}

	return &CachedSearcher{
		next:   next,
		cache:  cache,
		logger: logger,
	}, nil
}

func (c *CachedSearcher) Search(ctx context.Context, query string, limit int) []entity.SimilarSpec {
	key := cacheKey{query: query, limit: limit}
	if hit, ok := c.cache.Get(key); ok {
		return copySpecs(hit)
	}

	results := c.next.Search(ctx, query, limit)
	if len(results) > 0 {
		c.cache.Add(key, copySpecs(results))
	}
	return results
}

func (c *CachedSearcher) Len() int {
	return c.cache.Len()
}

// copySpecs copies the slice; element maps and slices are treated as read-only.
func copySpecs(in []entity.SimilarSpec) []entity.SimilarSpec {
	return append([]entity.SimilarSpec(nil), in...)
}
