package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/webntricks/unisearch/internal/content"
	"github.com/webntricks/unisearch/internal/domain"
	"github.com/webntricks/unisearch/internal/domain/query"
	domsearch "github.com/webntricks/unisearch/internal/domain/search"
)

type fakeIndex struct {
	params  []domsearch.Params
	results domsearch.Results
	err     error
}

func (f *fakeIndex) Search(_ context.Context, p domsearch.Params) (domsearch.Results, error) {
	f.params = append(f.params, p)
	return f.results, f.err
}

type fakeReadier struct{ err error }

func (f fakeReadier) Ensure(context.Context) error { return f.err }

type fixedTypes []string

func (t fixedTypes) Types() []string { return t }

type fakeRepo struct {
	queries  []content.TextQuery
	entities []domain.ContentEntity
	found    int
	err      error
}

func (f *fakeRepo) TextSearch(_ context.Context, q content.TextQuery) ([]domain.ContentEntity, int, error) {
	f.queries = append(f.queries, q)
	return f.entities, f.found, f.err
}

func product(id int64, title string, sales, reviews int, rating float64) domain.ContentEntity {
	return domain.ContentEntity{
		ID:        id,
		Type:      "product",
		Status:    domain.StatusPublished,
		Title:     title,
		Body:      "body",
		Permalink: "https://example.test/?p=1",
		Commerce:  &domain.Commerce{Sales: sales, Reviews: reviews, Rating: rating},
		UpdatedAt: time.Unix(1700000000, 0),
	}
}

func TestRunReturnsIndexResults(t *testing.T) {
	index := &fakeIndex{results: domsearch.Results{Found: 1, Page: 1}}
	svc := New(index, fakeReadier{}, fixedTypes{"product"}, nil, zap.NewNop())

	got, err := svc.Run(context.Background(), query.StructuredQuery{Query: "lamp"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got.Fallback {
		t.Error("index results must not be tagged fallback")
	}
	if len(index.params) != 1 {
		t.Fatalf("expected one index call, got %d", len(index.params))
	}
	if index.params[0].PerPage != query.DefaultLimit {
		t.Errorf("expected normalized limit %d, got %d", query.DefaultLimit, index.params[0].PerPage)
	}
}

func TestRunRejectsInvalidQuery(t *testing.T) {
	svc := New(&fakeIndex{}, fakeReadier{}, fixedTypes{}, nil, zap.NewNop())

	lo, hi := 50.0, 10.0
	_, err := svc.Run(context.Background(), query.StructuredQuery{
		Filters: query.Filters{Price: &query.RangeFilter{GTE: &lo, LTE: &hi}},
	})
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestRunDegradesWhenBackendDown(t *testing.T) {
	index := &fakeIndex{err: domain.ErrBackendUnavailable}
	repo := &fakeRepo{entities: []domain.ContentEntity{product(42, "Red Lamp", 10, 5, 4.0)}, found: 1}
	fb := NewFallback(repo, fixedTypes{"product"}, zap.NewNop())
	svc := New(index, fakeReadier{}, fixedTypes{"product"}, fb, zap.NewNop())

	got, err := svc.Run(context.Background(), query.StructuredQuery{Query: "lamp"})
	if err != nil {
		t.Fatalf("degraded search must not raise: %v", err)
	}
	if !got.Fallback {
		t.Error("degraded results must be tagged fallback")
	}
	if len(got.Hits) != 1 || got.Hits[0].Document.ID != "42" {
		t.Fatalf("unexpected hits %+v", got.Hits)
	}
	// Engagement counters only, never the full weighted score.
	if got.Hits[0].Document.Popularity != 15 {
		t.Errorf("expected popularity 15, got %v", got.Hits[0].Document.Popularity)
	}
}

func TestRunDegradesWhenSchemaNotReady(t *testing.T) {
	index := &fakeIndex{}
	repo := &fakeRepo{}
	fb := NewFallback(repo, fixedTypes{"product"}, zap.NewNop())
	svc := New(index, fakeReadier{err: domain.ErrBackendUnavailable}, fixedTypes{"product"}, fb, zap.NewNop())

	got, err := svc.Run(context.Background(), query.StructuredQuery{Query: "lamp"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !got.Fallback {
		t.Error("expected fallback results")
	}
	if len(index.params) != 0 {
		t.Error("index must not be queried when schema is not ready")
	}
}

func TestRunUnavailableWithoutFallback(t *testing.T) {
	index := &fakeIndex{err: domain.ErrBackendUnavailable}
	svc := New(index, fakeReadier{}, fixedTypes{"product"}, nil, zap.NewNop())

	_, err := svc.Run(context.Background(), query.StructuredQuery{Query: "lamp"})
	if !errors.Is(err, domain.ErrRepositoryUnavailable) {
		t.Fatalf("expected ErrRepositoryUnavailable, got %v", err)
	}
}

func TestFallbackFoldsTaxonomyAliases(t *testing.T) {
	repo := &fakeRepo{}
	fb := NewFallback(repo, fixedTypes{"product"}, zap.NewNop())

	q := query.StructuredQuery{
		Query: "lamp",
		Filters: query.Filters{
			Taxonomy: map[string][]string{
				"product_category": {"lighting"},
				"brand":            {"lumina"},
			},
		},
		Limit: 24,
		Page:  1,
	}
	if _, err := fb.Basic(context.Background(), q); err != nil {
		t.Fatalf("basic: %v", err)
	}

	sent := repo.queries[0]
	if len(sent.Categories) != 1 || sent.Categories[0] != "lighting" {
		t.Errorf("product_category must fold into categories, got %v", sent.Categories)
	}
	if len(sent.Tags) != 1 || sent.Tags[0] != "lumina" {
		t.Errorf("brand must fold into tags, got %v", sent.Tags)
	}
	if len(sent.Types) != 1 || sent.Types[0] != "product" {
		t.Errorf("unscoped fallback must use configured types, got %v", sent.Types)
	}
}

func TestFallbackWithoutRepository(t *testing.T) {
	fb := NewFallback(nil, fixedTypes{}, zap.NewNop())

	_, err := fb.Basic(context.Background(), query.StructuredQuery{Query: "lamp", Limit: 24, Page: 1})
	if !errors.Is(err, domain.ErrRepositoryUnavailable) {
		t.Fatalf("expected ErrRepositoryUnavailable, got %v", err)
	}
}
