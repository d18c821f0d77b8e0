package history

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheTTL bounds how long a cached entry is served.
const cacheTTL = 7 * 24 * time.Hour

// RepoHasher resolves the HEAD commit of a clone.
type RepoHasher interface {
	GetRepoHash(ctx context.Context, repoPath string) (string, error)
}

// CachedAnalyzer serves repository metrics from a CacheStore, keyed on the
// clone's HEAD commit, and falls back to the wrapped Analyzer on a miss.
type CachedAnalyzer struct {
	analyzer *Analyzer
	hasher   RepoHasher
	store    contract.CacheStore
}

// NewCachedAnalyzer wraps analyzer with store. A nil store disables caching.
func NewCachedAnalyzer(analyzer *Analyzer, hasher RepoHasher, store contract.CacheStore) *CachedAnalyzer {
	return &CachedAnalyzer{analyzer: analyzer, hasher: hasher, store: store}
}

// Analyze returns cached metrics when a fresh entry exists for the clone's
// current HEAD, and computes and stores them otherwise.
func (c *CachedAnalyzer) Analyze(ctx context.Context, clonePath, branch string, explorationLimit int) (schema.RepositoryMetrics, error) {
	if c.store == nil {
		// Fallback to direct computation
		return c.analyzer.Analyze(ctx, clonePath, branch, explorationLimit)
	}

	key, ok := c.generateCacheKey(ctx, clonePath, branch, explorationLimit)
	if !ok {
		return c.analyzer.Analyze(ctx, clonePath, branch, explorationLimit)
	}

	// Check for cache hit
	if result, hit := checkCacheHit(c.store, key); hit {
		return result, nil
	}

	// Cache miss: compute and store
	return c.computeAndStore(ctx, clonePath, branch, explorationLimit, key)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) (schema.RepositoryMetrics, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return schema.RepositoryMetrics{}, false // Cache miss
	}

	// Validate version and staleness
	if version == currentCacheVersion && time.Since(time.Unix(ts, 0)) <= cacheTTL {
		var result schema.RepositoryMetrics
		if err := json.Unmarshal(data, &result); err == nil {
			return result, true // Cache hit
		}
	}

	return schema.RepositoryMetrics{}, false // Cache miss (stale or version mismatch)
}

// computeAndStore computes the result and stores it in cache
func (c *CachedAnalyzer) computeAndStore(ctx context.Context, clonePath, branch string, explorationLimit int, key string) (schema.RepositoryMetrics, error) {
	result, err := c.analyzer.Analyze(ctx, clonePath, branch, explorationLimit)
	if err != nil {
		return schema.RepositoryMetrics{}, err
	}

	if data, err := json.Marshal(result); err == nil {
		_ = c.store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}

	return result, nil
}

// generateCacheKey creates a unique key based on analysis parameters. The
// second return value is false when HEAD cannot be resolved, in which case
// the result must not be cached.
func (c *CachedAnalyzer) generateCacheKey(ctx context.Context, clonePath, branch string, explorationLimit int) (string, bool) {
	repoHash, err := c.hasher.GetRepoHash(ctx, clonePath)
	if err != nil || repoHash == "" {
		return "", false
	}

	key := fmt.Sprintf("%s:%s:%d:%s", clonePath, branch, explorationLimit, repoHash)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key))), true
}
