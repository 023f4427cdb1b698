package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/webntricks/unisearch/internal/content"
	"github.com/webntricks/unisearch/internal/domain"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedEntity(t *testing.T, s *Store, id int64, typ, title string, status domain.EntityStatus) domain.ContentEntity {
	t.Helper()
	e := domain.ContentEntity{
		ID:        id,
		Type:      typ,
		Status:    status,
		Title:     title,
		Body:      "Body about " + title,
		Permalink: "https://shop.example/p",
		Terms: []domain.TaxonomyTerm{
			{Taxonomy: "category", Slug: "lighting", Hierarchical: true},
			{Taxonomy: "post_tag", Slug: "sale"},
		},
		Commerce:  &domain.Commerce{SKU: "SKU", Price: 10, Sales: int(id), Reviews: 1},
		CreatedAt: time.Unix(1700000000, 0),
		UpdatedAt: time.Unix(1700000100, 0),
	}
	if err := s.SaveEntity(context.Background(), e); err != nil {
		t.Fatalf("save entity %d: %v", id, err)
	}
	return e
}

func TestEntityRoundtrip(t *testing.T) {
	s := openStore(t)
	seedEntity(t, s, 42, "product", "Red Lamp", domain.StatusPublished)

	e, err := s.Entity(context.Background(), 42)
	if err != nil {
		t.Fatalf("entity: %v", err)
	}
	if e.Title != "Red Lamp" || e.Type != "product" {
		t.Errorf("entity = %+v", e)
	}
	if len(e.Terms) != 2 {
		t.Errorf("terms = %v", e.Terms)
	}
	if e.Commerce == nil || e.Commerce.SKU != "SKU" {
		t.Errorf("commerce = %+v", e.Commerce)
	}
}

func TestEntityNotFound(t *testing.T) {
	s := openStore(t)

	_, err := s.Entity(context.Background(), 7)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEntityPagePagination(t *testing.T) {
	s := openStore(t)
	for i := int64(1); i <= 5; i++ {
		seedEntity(t, s, i, "product", "Item", domain.StatusPublished)
	}
	seedEntity(t, s, 6, "product", "Draft", domain.StatusDraft)
	seedEntity(t, s, 7, "page", "Other type", domain.StatusPublished)

	page1, err := s.EntityPage(context.Background(), []string{"product"}, domain.StatusPublished, 1, 3)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page1) != 3 || page1[0].ID != 1 {
		t.Errorf("page 1 = %d entities, first id %v", len(page1), page1)
	}

	page2, err := s.EntityPage(context.Background(), []string{"product"}, domain.StatusPublished, 2, 3)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2) != 2 {
		t.Errorf("page 2 has %d entities, want 2 (short page ends pagination)", len(page2))
	}
}

func TestTextSearch(t *testing.T) {
	s := openStore(t)
	seedEntity(t, s, 1, "product", "Red Lamp", domain.StatusPublished)
	seedEntity(t, s, 2, "product", "Blue Chair", domain.StatusPublished)
	seedEntity(t, s, 3, "product", "Red Rug", domain.StatusDraft)

	hits, found, err := s.TextSearch(context.Background(), content.TextQuery{Text: "Red"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if found != 1 || len(hits) != 1 || hits[0].ID != 1 {
		t.Errorf("found=%d hits=%v, want only published Red Lamp", found, hits)
	}
}

func TestTextSearchFilters(t *testing.T) {
	s := openStore(t)
	seedEntity(t, s, 1, "product", "Lamp", domain.StatusPublished)
	seedEntity(t, s, 2, "post", "Lamp story", domain.StatusPublished)

	min := 5.0
	hits, _, err := s.TextSearch(context.Background(), content.TextQuery{
		Text:       "Lamp",
		Types:      []string{"product"},
		Categories: []string{"lighting"},
		PriceMin:   &min,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != 1 {
		t.Errorf("hits = %v, want only the product", hits)
	}
}

func TestTextSearchOrdersByEngagement(t *testing.T) {
	s := openStore(t)
	seedEntity(t, s, 1, "product", "Lamp", domain.StatusPublished) // sales=1
	seedEntity(t, s, 9, "product", "Lamp", domain.StatusPublished) // sales=9

	hits, _, err := s.TextSearch(context.Background(), content.TextQuery{Text: "Lamp"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 || hits[0].ID != 9 {
		t.Errorf("hits = %v, want engagement-first ordering", hits)
	}
}
