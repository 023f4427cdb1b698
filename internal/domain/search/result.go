// Package search defines the hit shape shared by the index executor and the
// repository-backed fallback.
package search

import "github.com/webntricks/unisearch/internal/domain/document"

// Highlight is one highlighted snippet on a hit.
type Highlight struct {
	Field   string `json:"field"`
	Snippet string `json:"snippet"`
}

// Hit is one ranked search result.
type Hit struct {
	Document   document.Document `json:"document"`
	Highlights []Highlight       `json:"highlights,omitempty"`
}

// Results is one page of ranked hits. Fallback marks degraded results
// sourced from the content repository instead of the index.
type Results struct {
	Hits     []Hit `json:"hits"`
	Found    int   `json:"found"`
	Page     int   `json:"page"`
	Fallback bool  `json:"fallback,omitempty"`
}

// Params is a translated query ready for the index engine's wire grammar.
type Params struct {
	Query     string
	QueryBy   string
	FilterBy  string
	SortBy    string
	Highlight string
	Page      int
	PerPage   int
}
