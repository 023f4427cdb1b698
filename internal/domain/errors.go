package domain

import "errors"

var (
	// ErrNotConfigured signals missing search backend credentials.
	// Indexing and search are silently disabled, never fatal.
	ErrNotConfigured = errors.New("search backend not configured")
	// ErrBackendUnavailable signals a network failure, timeout, or
	// non-success response from the index engine.
	ErrBackendUnavailable = errors.New("search backend unavailable")
	// ErrSchemaMismatch signals that the live collection schema diverged
	// from the canonical one.
	ErrSchemaMismatch = errors.New("collection schema mismatch")
	// ErrInvalidQuery signals a malformed structured query.
	ErrInvalidQuery = errors.New("invalid structured query")
	// ErrNotFound signals a missing resource (collection or document).
	ErrNotFound = errors.New("not found")
	// ErrRepositoryUnavailable signals that the content repository offers
	// no query capability for fallback search.
	ErrRepositoryUnavailable = errors.New("content repository unavailable")
)
