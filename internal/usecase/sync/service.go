// Package sync keeps the external index consistent with the content catalog.
// It reacts to lifecycle events with per-item upserts and deletes, and runs
// debounced full resyncs after configuration changes. Index writes are
// idempotent upserts keyed by stable ID, so live events and scheduled
// backfills may run concurrently without locking.
package sync

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/webntricks/unisearch/internal/builder"
	"github.com/webntricks/unisearch/internal/domain"
	domsearch "github.com/webntricks/unisearch/internal/domain/search"
	"github.com/webntricks/unisearch/internal/metrics"
)

const resyncKey = "resync"

// Options configures the synchronizer.
type Options struct {
	Types       []string // indexable entity types
	PageSize    int      // resync pagination, default 100
	BatchSize   int      // bulk import batch, default 40
	ResyncDelay time.Duration
	Clock       Clock // nil for real time
}

// Service is the content lifecycle synchronizer.
type Service struct {
	index     Indexer
	schema    SchemaEnsurer
	source    EntitySource
	logger    *zap.Logger
	scheduler *Scheduler
	pageSize  int
	batchSize int

	mu    sync.RWMutex
	types []string
}

// New creates a synchronizer.
func New(index Indexer, schema SchemaEnsurer, source EntitySource, opts Options, logger *zap.Logger) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 40
	}
	if opts.ResyncDelay <= 0 {
		opts.ResyncDelay = 5 * time.Second
	}

	s := &Service{
		index:     index,
		schema:    schema,
		source:    source,
		logger:    logger,
		pageSize:  opts.PageSize,
		batchSize: opts.BatchSize,
		types:     opts.Types,
	}
	s.scheduler = NewScheduler(opts.ResyncDelay, opts.Clock, s.runScheduled)
	return s
}

// Types returns the currently indexable entity types.
func (s *Service) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.types))
	copy(out, s.types)
	return out
}

// OnCreated indexes a newly created entity if eligible.
func (s *Service) OnCreated(ctx context.Context, e domain.ContentEntity) { s.apply(ctx, e) }

// OnUpdated re-indexes a changed entity, or removes it if no longer eligible.
func (s *Service) OnUpdated(ctx context.Context, e domain.ContentEntity) { s.apply(ctx, e) }

// OnDeleted removes a deleted entity from the index.
func (s *Service) OnDeleted(ctx context.Context, id int64) { s.delete(ctx, id) }

// OnTrashed removes a trashed entity from the index.
func (s *Service) OnTrashed(ctx context.Context, id int64) { s.delete(ctx, id) }

// OnUntrashed re-runs the create/update logic for a restored entity.
func (s *Service) OnUntrashed(ctx context.Context, e domain.ContentEntity) { s.apply(ctx, e) }

// OnStatusChanged reacts to a publication status transition.
func (s *Service) OnStatusChanged(ctx context.Context, e domain.ContentEntity) { s.apply(ctx, e) }

// OnTypesChanged applies a new indexable type configuration: documents of
// removed types are dropped with one bulk filtered delete per type, and a
// debounced full resync is scheduled to pick up added types.
func (s *Service) OnTypesChanged(ctx context.Context, newTypes []string) {
	s.mu.Lock()
	removed := difference(s.types, newTypes)
	s.types = append([]string(nil), newTypes...)
	s.mu.Unlock()

	for _, t := range removed {
		filter := domsearch.ListClause("type", []string{t})
		if err := s.index.DeleteByFilter(ctx, filter); err != nil && !softIndexError(err) {
			s.logger.Error("bulk delete of removed type failed",
				zap.String("type", t), zap.Error(err))
			metrics.IndexOpsTotal.WithLabelValues("delete_by_filter", "error").Inc()
			continue
		}
		metrics.IndexOpsTotal.WithLabelValues("delete_by_filter", "success").Inc()
	}

	s.OnConfigChanged()
}

// OnConfigChanged resets the schema memo and schedules one coalesced resync.
func (s *Service) OnConfigChanged() {
	s.schema.Reset()
	s.scheduler.Schedule(resyncKey)
}

// apply decides upsert vs delete for one entity. Failures are logged and
// never propagate to the triggering content mutation.
func (s *Service) apply(ctx context.Context, e domain.ContentEntity) {
	if !e.Published() || !s.indexable(e.Type) {
		s.delete(ctx, e.ID)
		return
	}

	doc, ok := builder.Build(e)
	if !ok {
		// Unlinkable documents are not indexed; drop any stale copy.
		s.delete(ctx, e.ID)
		return
	}

	if err := s.schema.Ensure(ctx); err != nil {
		s.logger.Warn("skipping upsert, schema not ready", zap.Error(err))
		return
	}

	if err := s.index.Upsert(ctx, doc); err != nil {
		if !softIndexError(err) {
			s.logger.Error("upsert failed", zap.String("id", doc.ID), zap.Error(err))
		}
		metrics.IndexOpsTotal.WithLabelValues("upsert", "error").Inc()
		return
	}
	metrics.IndexOpsTotal.WithLabelValues("upsert", "success").Inc()
}

func (s *Service) delete(ctx context.Context, id int64) {
	err := s.index.Delete(ctx, strconv.FormatInt(id, 10))
	switch {
	case err == nil, errors.Is(err, domain.ErrNotFound):
		metrics.IndexOpsTotal.WithLabelValues("delete", "success").Inc()
	case softIndexError(err):
		metrics.IndexOpsTotal.WithLabelValues("delete", "error").Inc()
	default:
		s.logger.Error("delete failed", zap.Int64("id", id), zap.Error(err))
		metrics.IndexOpsTotal.WithLabelValues("delete", "error").Inc()
	}
}

func (s *Service) indexable(entityType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.types {
		if t == entityType {
			return true
		}
	}
	return false
}

func (s *Service) runScheduled(string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := s.Resync(ctx); err != nil {
		s.logger.Error("scheduled resync failed", zap.Error(err))
		metrics.ResyncRunsTotal.WithLabelValues("error").Inc()
		return
	}
	metrics.ResyncRunsTotal.WithLabelValues("success").Inc()
}

// softIndexError reports failures expected while the backend is missing or
// unreachable; they are counted but not logged as errors.
func softIndexError(err error) bool {
	return errors.Is(err, domain.ErrNotConfigured) || errors.Is(err, domain.ErrBackendUnavailable)
}

func difference(old, updated []string) []string {
	keep := make(map[string]bool, len(updated))
	for _, t := range updated {
		keep[t] = true
	}
	var removed []string
	for _, t := range old {
		if !keep[t] {
			removed = append(removed, t)
		}
	}
	return removed
}
