package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Category classifies an article into one of the fixed feed sections.
type Category string

const (
	CategoryScience    Category = "science"
	CategoryNature     Category = "nature"
	CategorySports     Category = "sports"
	CategoryArts       Category = "arts"
	CategoryEducation  Category = "education"
	CategoryTechnology Category = "technology"
	CategoryAnimals    Category = "animals"
	CategoryPositive   Category = "positive"
)

// AllCategories returns every valid category in canonical order.
func AllCategories() []Category {
	return []Category{
		CategoryScience,
		CategoryNature,
		CategorySports,
		CategoryArts,
		CategoryEducation,
		CategoryTechnology,
		CategoryAnimals,
		CategoryPositive,
	}
}

// ParseCategory validates a raw string against the closed category set.
func ParseCategory(raw string) (Category, bool) {
	for _, c := range AllCategories() {
		if raw == string(c) {
			return c, true
		}
	}
	return "", false
}

// Article is a normalized news item produced by the feed parser.
// URL is the canonical form (lowercased host, query/fragment stripped) and
// URLHash is its SHA-256 hex digest, the deduplication identity.
type Article struct {
	URL         string     `json:"url"`
	URLHash     string     `json:"-"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Source      string     `json:"source"`
	Category    Category   `json:"category"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// DedupHash derives the stable article identity: SHA-256 of the canonical URL
// when present, otherwise of "source:title".
func (a Article) DedupHash() string {
	content := a.URL
	if content == "" {
		content = a.Source + ":" + a.Title
	}
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
