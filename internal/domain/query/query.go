// Package query defines the structured query form produced uniformly from
// every input modality (typed text, transcribed voice, analyzed image).
package query

import (
	"fmt"

	"github.com/webntricks/unisearch/internal/domain"
)

const (
	// DefaultLimit is the page size used when the query specifies none.
	DefaultLimit = 24
	// MaxLimit caps the page size.
	MaxLimit = 100
)

// Order is a sort direction.
type Order string

const (
	// Asc sorts ascending.
	Asc Order = "asc"
	// Desc sorts descending.
	Desc Order = "desc"
)

// SortSpec is one sort instruction. Only the first one is honored by the
// translator.
type SortSpec struct {
	Field string `json:"field"`
	Order Order  `json:"order,omitempty"`
}

// RangeFilter bounds a numeric field. Both boundaries may coexist.
type RangeFilter struct {
	GTE *float64 `json:"gte,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
}

// Filters narrows a query by type, taxonomy, numeric ranges, and SKU.
type Filters struct {
	Types      []string            `json:"types,omitempty"`
	Taxonomy   map[string][]string `json:"taxonomy,omitempty"`
	Price      *RangeFilter        `json:"price,omitempty"`
	Popularity *RangeFilter        `json:"popularity,omitempty"`
	Timestamp  *RangeFilter        `json:"timestamp,omitempty"`
	SKU        []string            `json:"sku,omitempty"`
}

// StructuredQuery is the normalized query contract.
type StructuredQuery struct {
	Query    string     `json:"query"`
	Synonyms []string   `json:"synonyms,omitempty"`
	Filters  Filters    `json:"filters,omitempty"`
	Sort     []SortSpec `json:"sort,omitempty"`
	Limit    int        `json:"limit,omitempty"`
	Page     int        `json:"page,omitempty"`
}

// Normalize clamps paging to sane bounds.
func (q *StructuredQuery) Normalize() {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Page <= 0 {
		q.Page = 1
	}
}

// Validate rejects malformed queries at the translation boundary.
// All failures wrap domain.ErrInvalidQuery.
func (q StructuredQuery) Validate() error {
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit", domain.ErrInvalidQuery)
	}
	if q.Page < 0 {
		return fmt.Errorf("%w: negative page", domain.ErrInvalidQuery)
	}
	for key, vals := range q.Filters.Taxonomy {
		if key == "" {
			return fmt.Errorf("%w: empty taxonomy key", domain.ErrInvalidQuery)
		}
		if len(vals) == 0 {
			return fmt.Errorf("%w: taxonomy %q has no values", domain.ErrInvalidQuery, key)
		}
	}
	for _, r := range []*RangeFilter{q.Filters.Price, q.Filters.Popularity, q.Filters.Timestamp} {
		if r == nil {
			continue
		}
		if r.GTE == nil && r.LTE == nil {
			return fmt.Errorf("%w: range filter without boundaries", domain.ErrInvalidQuery)
		}
		if r.GTE != nil && r.LTE != nil && *r.GTE > *r.LTE {
			return fmt.Errorf("%w: range lower bound exceeds upper bound", domain.ErrInvalidQuery)
		}
	}
	return nil
}
