// Package search translates structured queries into the index engine's
// wire grammar, executes them, and degrades to repository-backed search
// when the index is unreachable.
package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/webntricks/unisearch/internal/domain/query"
	domsearch "github.com/webntricks/unisearch/internal/domain/search"
)

const (
	// queryBy is the fixed full-text field set searched on every request.
	queryBy = "title,content,excerpt,tags,categories,product_category,brand,sku"
	// highlightFields limits highlighting to the snippet-bearing fields.
	highlightFields = "excerpt,content"
)

// Translate renders a structured query into index engine parameters.
// defaultTypes scopes queries that carry no explicit type filter, so an
// unscoped query never matches documents of non-indexable types.
func Translate(q query.StructuredQuery, defaultTypes []string) domsearch.Params {
	return domsearch.Params{
		Query:     queryText(q.Query),
		QueryBy:   queryBy,
		FilterBy:  filterExpression(q.Filters, defaultTypes),
		SortBy:    sortExpression(q.Sort),
		Highlight: highlightFields,
		Page:      q.Page,
		PerPage:   q.Limit,
	}
}

func queryText(q string) string {
	if strings.TrimSpace(q) == "" {
		return "*"
	}
	return q
}

func filterExpression(f query.Filters, defaultTypes []string) string {
	var parts []string

	types := f.Types
	if len(types) == 0 {
		types = defaultTypes
	}
	if len(types) > 0 {
		parts = append(parts, domsearch.ListClause("type", types))
	}

	// Map order is random; sort keys so identical queries render
	// identical expressions.
	taxKeys := make([]string, 0, len(f.Taxonomy))
	for k := range f.Taxonomy {
		taxKeys = append(taxKeys, k)
	}
	sort.Strings(taxKeys)
	for _, k := range taxKeys {
		field := sanitizeTaxonomyKey(k)
		if vals := f.Taxonomy[k]; field != "" && len(vals) > 0 {
			parts = append(parts, domsearch.ListClause(field, vals))
		}
	}

	if len(f.SKU) > 0 {
		parts = append(parts, domsearch.ListClause("sku", f.SKU))
	}

	parts = append(parts, rangeClauses("price", f.Price)...)
	parts = append(parts, rangeClauses("popularity", f.Popularity)...)
	parts = append(parts, rangeClauses("timestamp", f.Timestamp)...)

	return strings.Join(parts, " && ")
}

func rangeClauses(field string, r *query.RangeFilter) []string {
	if r == nil {
		return nil
	}
	var parts []string
	if r.GTE != nil {
		parts = append(parts, fmt.Sprintf("%s:>=%s", field, formatNumber(*r.GTE)))
	}
	if r.LTE != nil {
		parts = append(parts, fmt.Sprintf("%s:<=%s", field, formatNumber(*r.LTE)))
	}
	return parts
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// sortExpression honors only the first sort instruction. The field name is
// stripped to alphanumerics and underscores; order defaults to descending.
func sortExpression(specs []query.SortSpec) string {
	if len(specs) == 0 {
		return ""
	}
	field := sanitizeField(specs[0].Field)
	if field == "" {
		field = "popularity"
	}
	order := "desc"
	if specs[0].Order == query.Asc {
		order = "asc"
	}
	return field + ":" + order
}

// sanitizeTaxonomyKey permits hyphens as well, since taxonomy names may
// carry them; everything else is stripped before the key reaches the
// filter grammar.
func sanitizeTaxonomyKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func sanitizeField(field string) string {
	var b strings.Builder
	for _, r := range field {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
