// Package content defines the contract to the content repository that owns
// the catalog. The core only reads it.
package content

import (
	"context"

	"github.com/webntricks/unisearch/internal/domain"
)

// TextQuery is the repository-native approximation of a structured query,
// used by fallback search. Taxonomy filters are pre-folded into the generic
// category/tag buckets.
type TextQuery struct {
	Text       string
	Types      []string
	Categories []string
	Tags       []string
	PriceMin   *float64
	PriceMax   *float64
	Limit      int
	Page       int
}

// Repository enumerates and resolves catalog entities.
type Repository interface {
	// EntityPage returns one ID-ordered page of entities matching the given
	// types and status. A short page signals the end of the catalog.
	EntityPage(ctx context.Context, types []string, status domain.EntityStatus, page, perPage int) ([]domain.ContentEntity, error)
	Entity(ctx context.Context, id int64) (domain.ContentEntity, error)
	Ping(ctx context.Context) error
}

// Searcher is the repository's native text match, used when the index is
// unreachable. Implementations return the matching page and the total count.
type Searcher interface {
	TextSearch(ctx context.Context, q TextQuery) ([]domain.ContentEntity, int, error)
}
