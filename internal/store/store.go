// Package store defines the persistence interface for the DocVault server.
// The SQLite implementation lives in the sqlite subpackage; services depend on
// this interface so tests can substitute doubles.
package store

import (
	"context"

	"github.com/docvaultapp/docvault-server/internal/domain"
)

// TagChange reports what a replace operation actually did.
type TagChange struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// Store is the single source of truth for documents, tags, grants, and share
// links. No implementation may hold per-request state; every call hits the
// underlying engine.
type Store interface {
	DocumentStore
	TagStore
	GrantStore
	ShareLinkStore
	SearchStore

	Close() error
}

// DocumentStore persists document metadata.
type DocumentStore interface {
	// CreateDocument inserts a document and attaches the given tags in one
	// transaction. Either everything is applied or nothing is.
	CreateDocument(ctx context.Context, doc *domain.Document, tagIDs []string) error

	// GetDocument returns a document by ID. Soft-deleted documents are
	// reported as ErrNotFound.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByHash returns the active document with the given content
	// hash, for duplicate detection at ingestion.
	GetDocumentByHash(ctx context.Context, hash string) (*domain.Document, error)

	// UpdateDocument persists mutable metadata fields (title, description,
	// visibility).
	UpdateDocument(ctx context.Context, doc *domain.Document) error

	// SoftDeleteDocument marks the document deleted, removes every tag
	// association (recomputing usage counts), and deletes its share links,
	// all in one transaction.
	SoftDeleteDocument(ctx context.Context, id string) error

	// IncrementViewCount bumps the view counter.
	IncrementViewCount(ctx context.Context, id string) error

	// IncrementDownloadCount bumps the download counter.
	IncrementDownloadCount(ctx context.Context, id string) error
}

// TagStore persists tags and document-tag associations, and owns the
// denormalized usage counter.
type TagStore interface {
	CreateTag(ctx context.Context, t *domain.Tag) error
	GetTagByID(ctx context.Context, id string) (*domain.Tag, error)
	GetTagByName(ctx context.Context, name string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	UpdateTag(ctx context.Context, t *domain.Tag) error

	// DeleteTag removes the tag and all of its associations in one
	// transaction.
	DeleteTag(ctx context.Context, id string) error

	// AttachTags associates tags with a document. Already-present tags are
	// skipped, as are tags whose insert fails; the returned count reflects
	// only rows actually added. Usage counts are recomputed per affected tag.
	AttachTags(ctx context.Context, documentID string, tagIDs []string) (int, error)

	// DetachTags removes associations symmetrically to AttachTags.
	DetachTags(ctx context.Context, documentID string, tagIDs []string) (int, error)

	// ReplaceTags reconciles the document's tag set to exactly tagIDs,
	// touching only the symmetric difference, in one transaction.
	ReplaceTags(ctx context.Context, documentID string, tagIDs []string) (TagChange, error)

	// DetachAllTags removes every association for the document and recomputes
	// usage for each affected tag. Used on document deletion.
	DetachAllTags(ctx context.Context, documentID string) error

	// TagsForDocuments returns each requested document's tags ordered by
	// name, in one batched query. Every requested ID is present in the
	// result, mapped to an empty slice when the document has no tags.
	TagsForDocuments(ctx context.Context, documentIDs []string) (map[string][]*domain.Tag, error)

	// ResyncTagCounts re-derives every tag's usage count from the association
	// table. Returns the number of tags whose stored count was corrected.
	ResyncTagCounts(ctx context.Context) (int, error)
}

// GrantStore persists permission grants.
type GrantStore interface {
	// UpsertGrant creates the grant or, if one already exists for the
	// (document, grantee) pair, replaces its level.
	UpsertGrant(ctx context.Context, g *domain.PermissionGrant) error

	// GetGrant returns the grant for (document, grantee), or ErrNotFound.
	GetGrant(ctx context.Context, documentID, granteeID string) (*domain.PermissionGrant, error)

	ListGrantsForDocument(ctx context.Context, documentID string) ([]*domain.PermissionGrant, error)
	DeleteGrant(ctx context.Context, documentID, granteeID string) error
}

// ShareLinkStore persists share links. It is the only component that touches
// share link rows.
type ShareLinkStore interface {
	// CreateShareLink inserts the link. A token collision is reported as
	// ErrAlreadyExists, never silently overwritten.
	CreateShareLink(ctx context.Context, l *domain.ShareLink) error

	GetShareLinkByID(ctx context.Context, id string) (*domain.ShareLink, error)
	GetShareLinkByToken(ctx context.Context, token string) (*domain.ShareLink, error)
	ListShareLinksForDocument(ctx context.Context, documentID string) ([]*domain.ShareLink, error)
	DeleteShareLink(ctx context.Context, id string) error

	// ConsumeShareLink atomically increments the link's download count if it
	// is still below the ceiling, and bumps the document's download counter
	// in the same transaction. Returns false when the ceiling was already
	// reached, so concurrent redemptions can never overshoot it.
	ConsumeShareLink(ctx context.Context, id string) (bool, error)
}

// SearchStore runs the access-aware search and facet queries.
type SearchStore interface {
	// SearchDocuments returns one page plus the distinct total for the whole
	// filtered set, both computed from the identical predicate set.
	// requesterID may be empty for an anonymous search. includeGranted widens
	// the implicit visibility predicate to documents the requester holds a
	// read grant on.
	SearchDocuments(ctx context.Context, c domain.SearchCriteria, requesterID string, includeGranted bool) (*domain.SearchResult, error)

	// FacetDocuments computes type/tag/creator breakdowns over the same base
	// predicates as SearchDocuments, ignoring the criteria's own tag and type
	// filters (those are the dimensions being broken out).
	FacetDocuments(ctx context.Context, c domain.SearchCriteria, requesterID string, includeGranted bool, topN int) (*domain.Facets, error)
}
