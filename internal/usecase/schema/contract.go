package schema

import (
	"context"

	domschema "github.com/webntricks/unisearch/internal/domain/schema"
)

// Backend is the collection-management slice of the index engine API.
type Backend interface {
	RetrieveCollection(ctx context.Context) (domschema.Collection, error)
	CreateCollection(ctx context.Context, s domschema.Collection) error
	DeleteCollection(ctx context.Context) error
}
