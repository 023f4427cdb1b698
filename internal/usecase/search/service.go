package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/webntricks/unisearch/internal/domain"
	"github.com/webntricks/unisearch/internal/domain/query"
	domsearch "github.com/webntricks/unisearch/internal/domain/search"
	"github.com/webntricks/unisearch/internal/metrics"
)

// Service executes structured queries against the index, degrading to the
// repository fallback when the index cannot answer.
type Service struct {
	index    IndexSearcher
	schema   SchemaReadier
	types    TypeSource
	fallback *Fallback
	logger   *zap.Logger
}

// New creates the search executor. fallback may be nil to disable
// degraded search.
func New(index IndexSearcher, schema SchemaReadier, types TypeSource, fallback *Fallback, logger *zap.Logger) *Service {
	return &Service{
		index:    index,
		schema:   schema,
		types:    types,
		fallback: fallback,
		logger:   logger,
	}
}

// Run validates, translates and executes one structured query. Index
// unavailability is absorbed by the fallback; only invalid queries and a
// dead fallback surface as errors.
func (s *Service) Run(ctx context.Context, q query.StructuredQuery) (domsearch.Results, error) {
	q.Normalize()
	if err := q.Validate(); err != nil {
		return domsearch.Results{}, err
	}

	if err := s.schema.Ensure(ctx); err != nil {
		s.logger.Warn("index not ready, degrading to fallback", zap.Error(err))
		return s.degrade(ctx, q)
	}

	params := Translate(q, s.types.Types())

	start := time.Now()
	results, err := s.index.Search(ctx, params)
	metrics.SearchDuration.WithLabelValues("index").Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, domain.ErrBackendUnavailable) || errors.Is(err, domain.ErrNotConfigured) {
			s.logger.Warn("index search failed, degrading to fallback", zap.Error(err))
			metrics.SearchRequestsTotal.WithLabelValues("index", "error").Inc()
			return s.degrade(ctx, q)
		}
		metrics.SearchRequestsTotal.WithLabelValues("index", "error").Inc()
		return domsearch.Results{}, fmt.Errorf("index search: %w", err)
	}

	metrics.SearchRequestsTotal.WithLabelValues("index", "success").Inc()
	return results, nil
}

func (s *Service) degrade(ctx context.Context, q query.StructuredQuery) (domsearch.Results, error) {
	if s.fallback == nil {
		metrics.SearchRequestsTotal.WithLabelValues("fallback", "error").Inc()
		return domsearch.Results{}, domain.ErrRepositoryUnavailable
	}

	start := time.Now()
	results, err := s.fallback.Basic(ctx, q)
	metrics.SearchDuration.WithLabelValues("fallback").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("fallback", "error").Inc()
		if errors.Is(err, domain.ErrRepositoryUnavailable) {
			return domsearch.Results{}, err
		}
		return domsearch.Results{}, fmt.Errorf("fallback search: %w", err)
	}

	metrics.SearchRequestsTotal.WithLabelValues("fallback", "success").Inc()
	return results, nil
}
