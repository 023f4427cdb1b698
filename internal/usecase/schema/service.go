// Package schema reconciles the canonical collection schema against the
// remote index.
package schema

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/webntricks/unisearch/internal/domain"
	domschema "github.com/webntricks/unisearch/internal/domain/schema"
)

// Service ensures the remote collection matches the canonical schema.
// Ensure is memoized per process until Reset is called on a configuration
// change; backend failures leave the service not ready and are never fatal.
type Service struct {
	backend   Backend
	canonical domschema.Collection
	logger    *zap.Logger

	mu    sync.Mutex
	ready bool
}

// New creates a schema service for the named collection.
func New(backend Backend, collectionName string, logger *zap.Logger) *Service {
	return &Service{
		backend:   backend,
		canonical: domschema.Canonical(collectionName),
		logger:    logger,
	}
}

// Ready reports whether the remote schema is known to match.
func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Reset drops the memoized readiness, forcing the next Ensure to re-check.
func (s *Service) Reset() {
	s.mu.Lock()
	s.ready = false
	s.mu.Unlock()
}

// Ensure reconciles the remote collection: a matching live schema marks the
// service ready; a mismatch forces migration (delete + recreate); an absent
// collection is created directly.
func (s *Service) Ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	live, err := s.backend.RetrieveCollection(ctx)
	switch {
	case err == nil:
		if s.canonical.Matches(live) {
			s.ready = true
			return nil
		}
		s.logger.Info("collection schema mismatch, migrating",
			zap.String("collection", s.canonical.Name))
		if err := s.migrate(ctx); err != nil {
			return err
		}
	case errors.Is(err, domain.ErrNotFound):
		if err := s.create(ctx); err != nil {
			return err
		}
	default:
		s.logger.Error("failed to inspect collection", zap.Error(err))
		return fmt.Errorf("retrieve collection: %w", err)
	}

	s.ready = true
	return nil
}

func (s *Service) migrate(ctx context.Context) error {
	if err := s.backend.DeleteCollection(ctx); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Error("failed to delete mismatched collection", zap.Error(err))
		return fmt.Errorf("%w: delete collection: %w", domain.ErrSchemaMismatch, err)
	}
	return s.create(ctx)
}

func (s *Service) create(ctx context.Context) error {
	if err := s.backend.CreateCollection(ctx, s.canonical); err != nil {
		s.logger.Error("failed to create collection", zap.Error(err))
		return fmt.Errorf("create collection: %w", err)
	}
	s.logger.Info("collection schema ready", zap.String("collection", s.canonical.Name))
	return nil
}
