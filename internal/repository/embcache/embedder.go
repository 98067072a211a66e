package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/db"
	"github.com/kailas-cloud/reportdex/internal/domain"
)

const cacheKeyPrefix = "reportdex:emb_cache:"

// Cache tiers, used as the "tier" metric label.
const (
	tierMemory = "memory"
	tierRedis  = "redis"
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Options configures the cache tiers.
type Options struct {
	// MemorySize is the in-process LRU capacity. Zero disables the tier.
	MemorySize int
	// TTL bounds Redis entries. Zero keeps them forever.
	TTL time.Duration
}

// CachedEmbedder caches embeddings in an in-process LRU backed by a key-value store.
// Repeated searches for the same text skip the provider.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	memory     *lru.Cache[string, []float32]
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. s may be nil for a memory-only cache.
// cacheTotal is a counter vec with labels "tier" and "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Embedder,
	s store,
	opts Options,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) (*CachedEmbedder, error) {
	c := &CachedEmbedder{
		inner:      inner,
		store:      s,
		ttl:        opts.TTL,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
	if opts.MemorySize > 0 {
		m, err := lru.New[string, []float32](opts.MemorySize)
		if err != nil {
			return nil, fmt.Errorf("create lru: %w", err)
		}
		c.memory = m
	}
	return c, nil
}

// Embed returns a cached embedding or calls the inner embedder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
// Cache miss: full EmbeddingResult from inner.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if c.memory != nil {
		if vec, ok := c.memory.Get(key); ok {
			c.incCache(tierMemory, "hit")
			return domain.EmbeddingResult{Embedding: vec}, nil
		}
		c.incCache(tierMemory, "miss")
	}

	if c.store != nil {
		if vec, ok := c.getFromStore(ctx, key); ok {
			c.incCache(tierRedis, "hit")
			c.putToMemory(key, vec)
			return domain.EmbeddingResult{Embedding: vec}, nil
		}
		c.incCache(tierRedis, "miss")
	}

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	if len(result.Embedding) == 0 {
		return result, nil
	}

	c.putToMemory(key, result.Embedding)
	c.putToStore(ctx, key, result.Embedding)
	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (c *CachedEmbedder) incCache(tier, result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(tier, result).Inc()
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) getFromStore(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec := db.DecodeVector(string(data))
	if vec == nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Int("bytes", len(data)))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) putToMemory(key string, vec []float32) {
	if c.memory != nil {
		c.memory.Add(key, vec)
	}
}

func (c *CachedEmbedder) putToStore(ctx context.Context, key string, vec []float32) {
	if c.store == nil {
		return
	}
	data := []byte(db.EncodeVector(vec))
	var err error
	if c.ttl > 0 {
		err = c.store.SetWithTTL(ctx, key, data, c.ttl)
	} else {
		err = c.store.Set(ctx, key, data)
	}
	if err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}
