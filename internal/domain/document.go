package domain

import "time"

// Document represents a stored file's metadata. The file bytes themselves live
// in external storage; StoragePath points at them. Documents are multi-tenant:
// every document has exactly one owner and is either public or private.
type Document struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	FileName      string     `json:"file_name"`
	StoragePath   string     `json:"-"`
	Size          int64      `json:"size"`
	ContentType   string     `json:"content_type"`
	ContentHash   string     `json:"content_hash,omitempty"` // hex SHA-256, used for duplicate detection
	IsPublic      bool       `json:"is_public"`
	ViewCount     int64      `json:"view_count"`
	DownloadCount int64      `json:"download_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"-"` // soft delete; deleted documents are invisible everywhere
}

// IsDeleted reports whether the document has been soft-deleted.
func (d *Document) IsDeleted() bool {
	return d.DeletedAt != nil
}

// Touch updates the UpdatedAt timestamp.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UTC()
}

// DocumentSummary is the row shape returned by search: document fields plus the
// document's tags, without the storage pointer.
type DocumentSummary struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	FileName      string    `json:"file_name"`
	Size          int64     `json:"size"`
	ContentType   string    `json:"content_type"`
	IsPublic      bool      `json:"is_public"`
	ViewCount     int64     `json:"view_count"`
	DownloadCount int64     `json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
	Tags          []*Tag    `json:"tags"`
}
