// Package memory implements db.Store with an in-process expirable LRU,
// used when no Redis address is configured.
package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/webntricks/unisearch/internal/db"
)

var _ db.Store = (*Store)(nil)

type entry struct {
	value   []byte
	expires time.Time
}

// Store is an in-memory db.Store. The LRU evicts at maxTTL; shorter per-key
// TTLs are enforced by the deadline stored with each entry.
type Store struct {
	lru *expirable.LRU[string, entry]
}

// NewStore creates an in-memory store holding up to size entries for at most
// maxTTL.
func NewStore(size int, maxTTL time.Duration) *Store {
	return &Store{lru: expirable.NewLRU[string, entry](size, nil, maxTTL)}
}

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := s.lru.Get(key)
	if !ok || time.Now().After(e.expires) {
		return nil, db.ErrKeyNotFound
	}
	return e.value, nil
}

// SetWithTTL stores a value with an expiration.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.lru.Add(key, entry{value: value, expires: time.Now().Add(ttl)})
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}
