package domain

import "time"

// EntityStatus is the publication status of a catalog entity.
type EntityStatus string

const (
	// StatusPublished marks an entity visible to the public site.
	StatusPublished EntityStatus = "published"
	// StatusDraft marks an unpublished entity.
	StatusDraft EntityStatus = "draft"
	// StatusTrash marks an entity moved to trash.
	StatusTrash EntityStatus = "trash"
)

// TaxonomyTerm is one taxonomy assignment on a content entity.
type TaxonomyTerm struct {
	Taxonomy     string
	Slug         string
	Hierarchical bool
}

// Commerce holds the optional commerce attributes of a catalog item.
type Commerce struct {
	SKU      string
	Price    float64
	Sales    int
	Reviews  int
	Rating   float64
	ImageURL string
}

// ContentEntity is one item of the external content catalog. The core only
// reads it; the content repository owns and mutates it.
type ContentEntity struct {
	ID           int64
	Type         string
	Status       EntityStatus
	Title        string
	Body         string
	Excerpt      string
	Author       string
	Permalink    string
	ThumbnailURL string
	Terms        []TaxonomyTerm
	Commerce     *Commerce
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Published reports whether the entity is publicly visible.
func (e ContentEntity) Published() bool {
	return e.Status == StatusPublished
}
