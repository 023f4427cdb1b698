package health

import "context"

// IndexChecker checks index engine availability.
type IndexChecker interface {
	Health(ctx context.Context) error
}

// SchemaChecker reports whether the collection schema is reconciled.
type SchemaChecker interface {
	Ensure(ctx context.Context) error
}

// RepositoryPinger checks content repository availability.
type RepositoryPinger interface {
	Ping(ctx context.Context) error
}
