// Package db defines the key-value store contract backing the query cache.
package db

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound signals a missing or expired key.
var ErrKeyNotFound = errors.New("key not found")

// Store is a key-value store with per-key expiration.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close()
}
