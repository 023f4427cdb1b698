package search

import (
	"testing"

	"github.com/webntricks/unisearch/internal/domain/query"
)

func f64(v float64) *float64 { return &v }

func TestTranslateTypeFilter(t *testing.T) {
	q := query.StructuredQuery{
		Query:   "lamp",
		Filters: query.Filters{Types: []string{"product"}},
		Limit:   24,
		Page:    1,
	}

	p := Translate(q, []string{"post", "page", "product"})

	if p.FilterBy != `type:=["product"]` {
		t.Errorf("unexpected filter %q", p.FilterBy)
	}
	if p.Query != "lamp" {
		t.Errorf("unexpected query %q", p.Query)
	}
}

func TestTranslateDefaultsToConfiguredTypes(t *testing.T) {
	q := query.StructuredQuery{Query: "lamp", Limit: 24, Page: 1}

	p := Translate(q, []string{"post", "product"})

	if p.FilterBy != `type:=["post","product"]` {
		t.Errorf("unscoped query must be restricted to configured types, got %q", p.FilterBy)
	}
}

func TestTranslateEmptyQueryMatchesAll(t *testing.T) {
	p := Translate(query.StructuredQuery{Query: "  ", Limit: 24, Page: 1}, nil)
	if p.Query != "*" {
		t.Errorf("expected wildcard, got %q", p.Query)
	}
}

func TestTranslateFilterExpression(t *testing.T) {
	q := query.StructuredQuery{
		Query: "lamp",
		Filters: query.Filters{
			Types: []string{"product"},
			Taxonomy: map[string][]string{
				"brand":      {"lumina"},
				"categories": {"lighting", "decor"},
			},
			SKU:   []string{"LAMP-01"},
			Price: &query.RangeFilter{GTE: f64(10), LTE: f64(99.5)},
		},
		Limit: 24,
		Page:  1,
	}

	p := Translate(q, nil)

	want := `type:=["product"] && brand:=["lumina"] && categories:=["lighting","decor"]` +
		` && sku:=["LAMP-01"] && price:>=10 && price:<=99.5`
	if p.FilterBy != want {
		t.Errorf("filter mismatch:\n got %s\nwant %s", p.FilterBy, want)
	}
}

func TestTranslateEscapesFilterValues(t *testing.T) {
	q := query.StructuredQuery{
		Filters: query.Filters{Types: []string{`pro"duct`}},
		Limit:   24,
		Page:    1,
	}

	p := Translate(q, nil)

	if p.FilterBy != `type:=["pro\"duct"]` {
		t.Errorf("unexpected filter %q", p.FilterBy)
	}
}

func TestTranslateSanitizesTaxonomyKeys(t *testing.T) {
	q := query.StructuredQuery{
		Filters: query.Filters{
			Taxonomy: map[string][]string{"product-cat && x:1": {"lighting"}},
		},
		Limit: 24,
		Page:  1,
	}

	p := Translate(q, nil)

	if p.FilterBy != `product-catx1:=["lighting"]` {
		t.Errorf("taxonomy key must be sanitized, got %q", p.FilterBy)
	}
}

func TestTranslateSort(t *testing.T) {
	tests := []struct {
		name string
		sort []query.SortSpec
		want string
	}{
		{"none", nil, ""},
		{"first only", []query.SortSpec{{Field: "price", Order: query.Asc}, {Field: "popularity"}}, "price:asc"},
		{"default order desc", []query.SortSpec{{Field: "popularity"}}, "popularity:desc"},
		{"field sanitized", []query.SortSpec{{Field: "price; drop--", Order: query.Asc}}, "pricedrop:asc"},
		{"empty field defaults", []query.SortSpec{{Field: "$$$"}}, "popularity:desc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Translate(query.StructuredQuery{Sort: tt.sort, Limit: 24, Page: 1}, nil)
			if p.SortBy != tt.want {
				t.Errorf("got %q, want %q", p.SortBy, tt.want)
			}
		})
	}
}

func TestTranslatePaging(t *testing.T) {
	p := Translate(query.StructuredQuery{Limit: 48, Page: 3}, nil)
	if p.PerPage != 48 || p.Page != 3 {
		t.Errorf("unexpected paging per_page=%d page=%d", p.PerPage, p.Page)
	}
}
