package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/webntricks/unisearch/internal/builder"
	"github.com/webntricks/unisearch/internal/content"
	"github.com/webntricks/unisearch/internal/domain"
	"github.com/webntricks/unisearch/internal/domain/query"
	domsearch "github.com/webntricks/unisearch/internal/domain/search"
)

// Fallback answers queries from the content repository's native text match
// when the index is unreachable. Results carry the same hit shape but are
// always tagged degraded.
type Fallback struct {
	repo   content.Searcher
	types  TypeSource
	logger *zap.Logger
}

// NewFallback creates a repository-backed fallback. repo may be nil when
// the repository offers no text match at all.
func NewFallback(repo content.Searcher, types TypeSource, logger *zap.Logger) *Fallback {
	return &Fallback{repo: repo, types: types, logger: logger}
}

// Basic runs a structured query against the repository. Facet filters are
// approximated by folding taxonomy aliases into the generic category and
// tag buckets; popularity ranking is approximated from engagement counters.
func (f *Fallback) Basic(ctx context.Context, q query.StructuredQuery) (domsearch.Results, error) {
	if f.repo == nil {
		return domsearch.Results{}, domain.ErrRepositoryUnavailable
	}

	tq := content.TextQuery{
		Text:  q.Query,
		Types: q.Filters.Types,
		Limit: q.Limit,
		Page:  q.Page,
	}
	if len(tq.Types) == 0 {
		tq.Types = f.types.Types()
	}
	if q.Filters.Price != nil {
		tq.PriceMin = q.Filters.Price.GTE
		tq.PriceMax = q.Filters.Price.LTE
	}
	for key, vals := range q.Filters.Taxonomy {
		switch key {
		case "categories", "product_category", "product_cat":
			tq.Categories = append(tq.Categories, vals...)
		case "tags", "brand", "product_brand":
			tq.Tags = append(tq.Tags, vals...)
		default:
			f.logger.Debug("taxonomy bucket has no repository equivalent, folding into tags",
				zap.String("taxonomy", key))
			tq.Tags = append(tq.Tags, vals...)
		}
	}

	entities, found, err := f.repo.TextSearch(ctx, tq)
	if err != nil {
		return domsearch.Results{}, err
	}

	hits := make([]domsearch.Hit, 0, len(entities))
	for _, e := range entities {
		doc, ok := builder.Build(e)
		if !ok {
			continue
		}
		// Engagement counters only; the rating term needs index-side data.
		doc.Popularity = engagementScore(e)
		hits = append(hits, domsearch.Hit{Document: doc})
	}

	return domsearch.Results{
		Hits:     hits,
		Found:    found,
		Page:     q.Page,
		Fallback: true,
	}, nil
}

func engagementScore(e domain.ContentEntity) float64 {
	if e.Commerce == nil {
		return 0
	}
	return max(0, float64(e.Commerce.Sales)) + max(0, float64(e.Commerce.Reviews))
}
