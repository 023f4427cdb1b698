// Package querycache memoizes AI-derived structured queries by media
// digest, bounding the cost of repeat uploads of identical files.
package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/webntricks/unisearch/internal/db"
	"github.com/webntricks/unisearch/internal/domain/query"
	"github.com/webntricks/unisearch/internal/metrics"
)

const (
	// TTLVoice bounds voice-derived entries.
	TTLVoice = 24 * time.Hour
	// TTLImage bounds image-derived entries.
	TTLImage = 7 * 24 * time.Hour
)

// Digest returns the content-addressed cache key for uploaded media.
func Digest(media []byte) string {
	sum := sha256.Sum256(media)
	return hex.EncodeToString(sum[:])
}

// Cache stores structured queries in a TTL key-value store. Concurrent
// misses for the same digest race benignly; either write is equivalent.
type Cache struct {
	store  db.Store
	prefix string
	logger *zap.Logger
}

// New creates a query cache. prefix namespaces keys in a shared store.
func New(store db.Store, prefix string, logger *zap.Logger) *Cache {
	return &Cache{store: store, prefix: prefix, logger: logger}
}

// Get returns the cached structured query for digest, or false on a miss.
// Store failures count as misses; the caller re-derives the query.
func (c *Cache) Get(ctx context.Context, digest string) (query.StructuredQuery, bool) {
	raw, err := c.store.Get(ctx, c.prefix+digest)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("query cache read failed", zap.Error(err))
		}
		metrics.QueryCacheTotal.WithLabelValues("miss").Inc()
		return query.StructuredQuery{}, false
	}

	var q query.StructuredQuery
	if err := json.Unmarshal(raw, &q); err != nil {
		c.logger.Warn("query cache entry corrupt", zap.String("digest", digest), zap.Error(err))
		metrics.QueryCacheTotal.WithLabelValues("miss").Inc()
		return query.StructuredQuery{}, false
	}

	metrics.QueryCacheTotal.WithLabelValues("hit").Inc()
	return q, true
}

// Put stores the structured query under digest for ttl.
func (c *Cache) Put(ctx context.Context, digest string, q query.StructuredQuery, ttl time.Duration) error {
	raw, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}
	if err := c.store.SetWithTTL(ctx, c.prefix+digest, raw, ttl); err != nil {
		return fmt.Errorf("store query: %w", err)
	}
	return nil
}
