package sync

import (
	"context"
	"time"

	"github.com/webntricks/unisearch/internal/domain"
	"github.com/webntricks/unisearch/internal/domain/document"
)

// Indexer is the document-write slice of the index engine API.
type Indexer interface {
	Upsert(ctx context.Context, doc document.Document) error
	Delete(ctx context.Context, id string) error
	DeleteByFilter(ctx context.Context, filter string) error
	Import(ctx context.Context, docs []document.Document) error
}

// SchemaEnsurer reconciles the collection schema before writes.
type SchemaEnsurer interface {
	Ensure(ctx context.Context) error
	Reset()
}

// EntitySource enumerates catalog entities for backfill.
type EntitySource interface {
	EntityPage(ctx context.Context, types []string, status domain.EntityStatus, page, perPage int) ([]domain.ContentEntity, error)
}

// Clock abstracts timer creation so the coalescing scheduler is testable.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}
