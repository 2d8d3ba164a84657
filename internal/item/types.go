// Package item defines the unified content record (memory or task) and
// its SQLite-backed store.
package item

import "time"

// Kind classifies a content item.
type Kind string

const (
	KindMemory Kind = "memory"
	KindTask   Kind = "task"
)

// ValidKind returns true if k is a recognised item kind.
func ValidKind(k Kind) bool {
	return k == KindMemory || k == KindTask
}

// Item is a single content record. Memories and tasks share this shape;
// the relationship engine treats both uniformly.
type Item struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags,omitempty"`
	Project    string    `json:"project,omitempty"`
	Category   string    `json:"category,omitempty"`
	RelatedIDs []string  `json:"related_ids,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasTag reports whether the item carries the given tag exactly.
func (it Item) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// RelatedTo reports whether the item declares an explicit relation to id.
func (it Item) RelatedTo(id string) bool {
	for _, r := range it.RelatedIDs {
		if r == id {
			return true
		}
	}
	return false
}

// Filter narrows a List query. Zero values match everything.
type Filter struct {
	Kind    Kind
	Project string
	Tag     string
}
