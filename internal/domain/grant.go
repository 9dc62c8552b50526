package domain

import "time"

// PermissionGrant gives a non-owner a bounded capability on a document.
// At most one grant exists per (document, grantee) pair; re-granting replaces
// the level. Ownership is never stored as a grant — it is derived from the
// document's OwnerID and always implies admin-equivalent access.
type PermissionGrant struct {
	DocumentID string     `json:"document_id"`
	GranteeID  string     `json:"grantee_id"`
	Level      GrantLevel `json:"level"`
	GrantedBy  string     `json:"granted_by"`
	CreatedAt  time.Time  `json:"created_at"`
}

// GrantLevel defines the capability granted on a document.
// Levels are ordered: read < write < admin, and a higher level implies
// every lower one.
type GrantLevel int

const (
	// LevelRead allows viewing and downloading the document.
	LevelRead GrantLevel = iota
	// LevelWrite allows updating document metadata and tags.
	LevelWrite
	// LevelAdmin allows granting access and managing share links.
	LevelAdmin
)

// String returns the string representation of the grant level.
func (l GrantLevel) String() string {
	switch l {
	case LevelRead:
		return "read"
	case LevelWrite:
		return "write"
	case LevelAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// ParseGrantLevel converts a string to a GrantLevel.
func ParseGrantLevel(s string) (GrantLevel, bool) {
	switch s {
	case "read":
		return LevelRead, true
	case "write":
		return LevelWrite, true
	case "admin":
		return LevelAdmin, true
	default:
		return LevelRead, false
	}
}

// CanRead returns true if the level allows reading.
func (l GrantLevel) CanRead() bool {
	return l >= LevelRead
}

// CanWrite returns true if the level allows writing.
func (l GrantLevel) CanWrite() bool {
	return l >= LevelWrite
}

// CanAdmin returns true if the level allows administration.
func (l GrantLevel) CanAdmin() bool {
	return l >= LevelAdmin
}
