// Package schema holds the versioned collection schema, the one source of
// truth for what an indexed document must contain.
package schema

// Field describes one collection field.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Facet    bool   `json:"facet,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

// Collection is a collection schema: field list plus default sort field.
type Collection struct {
	Name                string  `json:"name"`
	Fields              []Field `json:"fields"`
	DefaultSortingField string  `json:"default_sorting_field,omitempty"`
}

// Canonical returns the schema every indexed document must conform to.
func Canonical(name string) Collection {
	return Collection{
		Name: name,
		Fields: []Field{
			{Name: "title", Type: "string"},
			{Name: "content", Type: "string"},
			{Name: "excerpt", Type: "string", Optional: true},
			{Name: "permalink", Type: "string", Optional: true},
			{Name: "image", Type: "string", Optional: true},
			{Name: "type", Type: "string", Facet: true},
			{Name: "categories", Type: "string[]", Facet: true},
			{Name: "tags", Type: "string[]", Facet: true},
			{Name: "product_category", Type: "string[]", Facet: true},
			{Name: "brand", Type: "string[]", Facet: true},
			{Name: "sku", Type: "string", Optional: true},
			{Name: "price", Type: "float", Optional: true},
			{Name: "popularity", Type: "float"},
			{Name: "timestamp", Type: "int64"},
			{Name: "author", Type: "string", Optional: true},
		},
		DefaultSortingField: "popularity",
	}
}

// Matches reports whether the live schema can serve the canonical one:
// every canonical field name must be present and the default sort field must
// match. Extra live fields are tolerated.
func (c Collection) Matches(live Collection) bool {
	if live.DefaultSortingField != c.DefaultSortingField {
		return false
	}
	names := make(map[string]bool, len(live.Fields))
	for _, f := range live.Fields {
		names[f.Name] = true
	}
	for _, f := range c.Fields {
		if !names[f.Name] {
			return false
		}
	}
	return true
}
