package search

import (
	"context"

	domsearch "github.com/webntricks/unisearch/internal/domain/search"
)

// IndexSearcher is the query slice of the index engine API.
type IndexSearcher interface {
	Search(ctx context.Context, p domsearch.Params) (domsearch.Results, error)
}

// SchemaReadier guarantees the collection exists before queries run.
type SchemaReadier interface {
	Ensure(ctx context.Context) error
}

// TypeSource exposes the currently indexable entity types, used to scope
// queries that carry no explicit type filter.
type TypeSource interface {
	Types() []string
}
