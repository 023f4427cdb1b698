// Package document defines the canonical denormalized record indexed by the
// search engine. At most one document exists per ID; absence means "not
// currently indexed".
package document

// Document is the canonical indexed representation of one content entity.
// The ID is the stable string form of the entity ID.
type Document struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Excerpt         string   `json:"excerpt"`
	Permalink       string   `json:"permalink"`
	Image           string   `json:"image,omitempty"`
	Type            string   `json:"type"`
	Categories      []string `json:"categories"`
	Tags            []string `json:"tags"`
	ProductCategory []string `json:"product_category"`
	Brand           []string `json:"brand"`
	SKU             string   `json:"sku,omitempty"`
	Price           float64  `json:"price"`
	Popularity      float64  `json:"popularity"`
	Timestamp       int64    `json:"timestamp"`
	Author          string   `json:"author,omitempty"`
}

// Popularity computes the ranking score from commerce engagement counters.
// The rating weight (/5) is a long-standing product choice; keep it as is.
func Popularity(sales, reviews int, rating float64) float64 {
	return max(0, float64(sales)) + max(0, float64(reviews)) + max(0, rating)/5
}
