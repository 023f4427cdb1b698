package sync

import (
	"context"
	"fmt"

	"github.com/webntricks/unisearch/internal/builder"
	"github.com/webntricks/unisearch/internal/domain"
	"github.com/webntricks/unisearch/internal/domain/document"
	"github.com/webntricks/unisearch/internal/metrics"
)

// Resync walks every published entity of the indexable types and upserts
// its document, page by page. Entities that no longer produce a document
// are skipped; stale index entries are left to per-item deletes. Returns
// the number of documents written.
func (s *Service) Resync(ctx context.Context) (int, error) {
	return s.walk(ctx, func(ctx context.Context, doc document.Document) error {
		if err := s.index.Upsert(ctx, doc); err != nil {
			metrics.IndexOpsTotal.WithLabelValues("upsert", "error").Inc()
			return err
		}
		metrics.IndexOpsTotal.WithLabelValues("upsert", "success").Inc()
		return nil
	}, nil)
}

// Backfill streams the catalog into the index using bulk imports,
// batchSize documents per request. progress, if non-nil, is called with
// the running total after every flushed batch. Returns the number of
// documents imported.
func (s *Service) Backfill(ctx context.Context, progress func(total int)) (int, error) {
	batch := make([]document.Document, 0, s.batchSize)
	total := 0

	flush := func(ctx context.Context) error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.index.Import(ctx, batch); err != nil {
			metrics.IndexOpsTotal.WithLabelValues("import", "error").Inc()
			return fmt.Errorf("import batch: %w", err)
		}
		metrics.IndexOpsTotal.WithLabelValues("import", "success").Inc()
		total += len(batch)
		batch = batch[:0]
		if progress != nil {
			progress(total)
		}
		return nil
	}

	_, err := s.walk(ctx, func(ctx context.Context, doc document.Document) error {
		batch = append(batch, doc)
		if len(batch) == s.batchSize {
			return flush(ctx)
		}
		return nil
	}, flush)
	if err != nil {
		return total, err
	}
	return total, nil
}

// walk pages through the published catalog, builds each document and hands
// it to emit. finish, if non-nil, runs once after the last page.
func (s *Service) walk(ctx context.Context, emit func(context.Context, document.Document) error, finish func(context.Context) error) (int, error) {
	if err := s.schema.Ensure(ctx); err != nil {
		return 0, fmt.Errorf("ensure schema: %w", err)
	}

	types := s.Types()
	count := 0
	for page := 1; ; page++ {
		entities, err := s.source.EntityPage(ctx, types, domain.StatusPublished, page, s.pageSize)
		if err != nil {
			return count, fmt.Errorf("page %d: %w", page, err)
		}

		for _, e := range entities {
			doc, ok := builder.Build(e)
			if !ok {
				continue
			}
			if err := emit(ctx, doc); err != nil {
				return count, err
			}
			count++
		}

		if len(entities) < s.pageSize {
			break
		}
	}

	if finish != nil {
		if err := finish(ctx); err != nil {
			return count, err
		}
	}
	return count, nil
}
