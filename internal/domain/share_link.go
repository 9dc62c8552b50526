package domain

import "time"

// ShareLink is a bearer token granting anonymous, bounded access to exactly
// one document. A link is created once and only mutated by download-count
// increments; it is removed only by explicit revocation. Expiry and exhaustion
// are terminal for redemption but the row persists until deleted.
type ShareLink struct {
	ID            string     `json:"id"`
	Token         string     `json:"token"`
	DocumentID    string     `json:"document_id"`
	CreatedBy     string     `json:"created_by"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"` // nil means valid indefinitely
	PasswordHash  string     `json:"-"`
	DownloadLimit *int64     `json:"download_limit,omitempty"` // nil means unlimited
	DownloadCount int64      `json:"download_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

// HasPassword reports whether redemption requires a password.
func (l *ShareLink) HasPassword() bool {
	return l.PasswordHash != ""
}

// IsExpired reports whether the link's expiry has passed at the given instant.
func (l *ShareLink) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// IsExhausted reports whether the download ceiling has been reached.
func (l *ShareLink) IsExhausted() bool {
	return l.DownloadLimit != nil && l.DownloadCount >= *l.DownloadLimit
}

// ExpiryPolicy selects a share link's lifetime. It is resolved to an absolute
// timestamp once, at creation time.
type ExpiryPolicy string

const (
	ExpiryNever  ExpiryPolicy = "never"
	ExpiryOneDay ExpiryPolicy = "1d"
	ExpiryWeek   ExpiryPolicy = "7d"
	ExpiryMonth  ExpiryPolicy = "30d"
)

// ParseExpiryPolicy converts a string to an ExpiryPolicy.
func ParseExpiryPolicy(s string) (ExpiryPolicy, bool) {
	switch ExpiryPolicy(s) {
	case ExpiryNever, ExpiryOneDay, ExpiryWeek, ExpiryMonth:
		return ExpiryPolicy(s), true
	default:
		return ExpiryNever, false
	}
}

// Resolve returns the absolute expiry for the policy, anchored at now.
// ExpiryNever resolves to nil.
func (p ExpiryPolicy) Resolve(now time.Time) *time.Time {
	var d time.Duration
	switch p {
	case ExpiryOneDay:
		d = 24 * time.Hour
	case ExpiryWeek:
		d = 7 * 24 * time.Hour
	case ExpiryMonth:
		d = 30 * 24 * time.Hour
	default:
		return nil
	}
	t := now.Add(d)
	return &t
}
