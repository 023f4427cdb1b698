// Package builder maps one content entity to its canonical indexed document.
// The mapping is pure: identical entity state always yields an identical
// document.
package builder

import (
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/webntricks/unisearch/internal/domain"
	"github.com/webntricks/unisearch/internal/domain/document"
)

// ExcerptWords is how many leading words of the cleaned content form the
// excerpt when the entity carries no explicit one.
const ExcerptWords = 40

// Taxonomy names routed into dedicated facet buckets instead of the generic
// categories/tags split.
const (
	taxProductCategory = "product_cat"
	taxBrand           = "product_brand"
)

var stripPolicy = bluemonday.StrictPolicy()

// Build maps an entity to a Document. ok is false when the entity resolves
// no permalink: unlinkable documents are not indexed.
func Build(e domain.ContentEntity) (document.Document, bool) {
	if e.Permalink == "" {
		return document.Document{}, false
	}

	content := CleanMarkup(e.Body)

	excerpt := CleanMarkup(e.Excerpt)
	if excerpt == "" {
		excerpt = firstWords(content, ExcerptWords)
	}

	doc := document.Document{
		ID:              strconv.FormatInt(e.ID, 10),
		Title:           e.Title,
		Content:         content,
		Excerpt:         excerpt,
		Permalink:       e.Permalink,
		Image:           e.ThumbnailURL,
		Type:            e.Type,
		Categories:      []string{},
		Tags:            []string{},
		ProductCategory: []string{},
		Brand:           []string{},
		Timestamp:       timestamp(e),
		Author:          e.Author,
	}

	for _, t := range e.Terms {
		switch {
		case t.Taxonomy == taxProductCategory:
			doc.ProductCategory = append(doc.ProductCategory, t.Slug)
		case t.Taxonomy == taxBrand:
			doc.Brand = append(doc.Brand, t.Slug)
		case t.Hierarchical:
			doc.Categories = append(doc.Categories, t.Slug)
		default:
			doc.Tags = append(doc.Tags, t.Slug)
		}
	}

	if c := e.Commerce; c != nil {
		doc.SKU = c.SKU
		doc.Price = c.Price
		doc.Popularity = document.Popularity(c.Sales, c.Reviews, c.Rating)
		if doc.Image == "" {
			doc.Image = c.ImageURL
		}
	}

	return doc, true
}

// CleanMarkup strips HTML tags, unescapes entities, and collapses
// whitespace.
func CleanMarkup(s string) string {
	if s == "" {
		return ""
	}
	stripped := html.UnescapeString(stripPolicy.Sanitize(s))
	return strings.Join(strings.Fields(stripped), " ")
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ")
}

func timestamp(e domain.ContentEntity) int64 {
	if !e.UpdatedAt.IsZero() {
		return e.UpdatedAt.Unix()
	}
	if !e.CreatedAt.IsZero() {
		return e.CreatedAt.Unix()
	}
	return 0
}
