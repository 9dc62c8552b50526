package domain

import "time"

// Tag is a label documents can be filed under. Names are unique and
// case-sensitive ("Reports" and "reports" are distinct tags).
// UsageCount is a denormalized cache of the live association count; it is
// re-derived from document_tags on every association change and must never be
// treated as authoritative.
type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	UsageCount  int64     `json:"usage_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// DocumentTag is the many-to-many association between documents and tags.
// Rows are created and destroyed only through the store's attach/detach/replace
// operations so the usage counter stays in step.
type DocumentTag struct {
	DocumentID string    `json:"document_id"`
	TagID      string    `json:"tag_id"`
	CreatedAt  time.Time `json:"created_at"`
}
