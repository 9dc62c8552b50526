package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docvaultapp/docvault-server/internal/domain"
	domainerrors "github.com/docvaultapp/docvault-server/internal/errors"
	"github.com/docvaultapp/docvault-server/internal/id"
	"github.com/docvaultapp/docvault-server/internal/store"
)

// DocumentService orchestrates document lifecycle and grant management.
type DocumentService struct {
	store  store.Store
	access *AccessService
	logger *slog.Logger
}

// NewDocumentService creates a new document service.
func NewDocumentService(store store.Store, access *AccessService, logger *slog.Logger) *DocumentService {
	return &DocumentService{
		store:  store,
		access: access,
		logger: logger,
	}
}

// CreateDocumentParams holds the metadata for a new document.
type CreateDocumentParams struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=2000"`
	FileName    string `json:"fileName" validate:"required,min=1,max=255"`
	StoragePath string `json:"storagePath" validate:"required"`
	Size        int64  `json:"size" validate:"gte=0"`
	ContentType string `json:"contentType" validate:"required"`
	ContentHash string `json:"contentHash" validate:"required"`
	IsPublic    bool   `json:"isPublic"`
	// TagIDs are attached at creation time. Unknown IDs are skipped.
	TagIDs []string `json:"tagIds" validate:"max=32,dive,required"`
}

// CreateDocument registers a new document owned by ownerID.
// A duplicate content hash from the same owner is rejected as a conflict.
func (s *DocumentService) CreateDocument(ctx context.Context, ownerID string, params CreateDocumentParams) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	existing, err := s.store.GetDocumentByHash(ctx, params.ContentHash)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check duplicate hash: %w", err)
	}
	if existing != nil {
		return nil, domainerrors.Conflictf("document with identical content already exists: %s", existing.ID).
			WithDetails(map[string]string{"existingId": existing.ID})
	}

	docID, err := id.Generate("doc")
	if err != nil {
		return nil, fmt.Errorf("generate document ID: %w", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          docID,
		OwnerID:     ownerID,
		Title:       params.Title,
		Description: params.Description,
		FileName:    params.FileName,
		StoragePath: params.StoragePath,
		Size:        params.Size,
		ContentType: params.ContentType,
		ContentHash: params.ContentHash,
		IsPublic:    params.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateDocument(ctx, doc, params.TagIDs); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	s.logger.Info("document created",
		"document_id", doc.ID,
		"owner_id", ownerID,
		"is_public", doc.IsPublic,
		"tags", len(params.TagIDs),
	)

	return doc, nil
}

// GetDocument returns a document the requester may read and records the view.
func (s *DocumentService) GetDocument(ctx context.Context, documentID, requesterID string) (*domain.Document, domain.AccessDecision, error) {
	doc, decision, err := s.access.EvaluateByID(ctx, documentID, requesterID)
	if err != nil {
		return nil, domain.AccessDecision{}, err
	}
	if !decision.CanRead {
		// Hide existence from requesters without read access.
		return nil, domain.AccessDecision{}, domainerrors.NotFoundf("document %s not found", documentID)
	}

	if err := s.store.IncrementViewCount(ctx, documentID); err != nil {
		s.logger.Warn("failed to record document view", "document_id", documentID, "error", err)
	} else {
		doc.ViewCount++
	}

	return doc, decision, nil
}

// UpdateDocumentParams holds mutable document metadata. Nil fields are unchanged.
type UpdateDocumentParams struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsPublic    *bool   `json:"isPublic"`
}

// UpdateDocument applies metadata changes. Requires write access.
func (s *DocumentService) UpdateDocument(ctx context.Context, documentID, requesterID string, params UpdateDocumentParams) (*domain.Document, error) {
	doc, decision, err := s.access.EvaluateByID(ctx, documentID, requesterID)
	if err != nil {
		return nil, err
	}
	if !decision.CanRead {
		return nil, domainerrors.NotFoundf("document %s not found", documentID)
	}
	if !decision.CanWrite {
		return nil, domainerrors.Forbidden("write access required")
	}

	if params.Title != nil {
		doc.Title = *params.Title
	}
	if params.Description != nil {
		doc.Description = *params.Description
	}
	if params.IsPublic != nil {
		doc.IsPublic = *params.IsPublic
	}
	doc.Touch()

	if err := s.store.UpdateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}

	s.logger.Info("document updated", "document_id", documentID, "requester_id", requesterID)
	return doc, nil
}

// DeleteDocument soft-deletes a document. Requires admin access.
// Tag associations and share links are removed; tag counts are recomputed.
func (s *DocumentService) DeleteDocument(ctx context.Context, documentID, requesterID string) error {
	_, decision, err := s.access.EvaluateByID(ctx, documentID, requesterID)
	if err != nil {
		return err
	}
	if !decision.CanRead {
		return domainerrors.NotFoundf("document %s not found", documentID)
	}
	if !decision.CanAdmin {
		return domainerrors.Forbidden("admin access required")
	}

	if err := s.store.SoftDeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	s.logger.Info("document deleted", "document_id", documentID, "requester_id", requesterID)
	return nil
}

// RecordDownload bumps the download counter for a readable document.
func (s *DocumentService) RecordDownload(ctx context.Context, documentID, requesterID string) (*domain.Document, error) {
	doc, decision, err := s.access.EvaluateByID(ctx, documentID, requesterID)
	if err != nil {
		return nil, err
	}
	if !decision.CanRead {
		return nil, domainerrors.NotFoundf("document %s not found", documentID)
	}

	if err := s.store.IncrementDownloadCount(ctx, documentID); err != nil {
		return nil, fmt.Errorf("record download: %w", err)
	}
	doc.DownloadCount++

	return doc, nil
}

// GrantAccess creates or updates a permission grant on a document.
// Only the owner or an admin grantee can manage grants.
func (s *DocumentService) GrantAccess(ctx context.Context, documentID, requesterID, granteeID string, level domain.GrantLevel) (*domain.PermissionGrant, error) {
	doc, decision, err := s.access.EvaluateByID(ctx, documentID, requesterID)
	if err != nil {
		return nil, err
	}
	if !decision.CanAdmin {
		return nil, domainerrors.Forbidden("only the owner or an admin can manage grants")
	}
	if granteeID == doc.OwnerID {
		return nil, domainerrors.InvalidCriteria("cannot grant access to the document owner")
	}

	grant := &domain.PermissionGrant{
		DocumentID: documentID,
		GranteeID:  granteeID,
		Level:      level,
		GrantedBy:  requesterID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.UpsertGrant(ctx, grant); err != nil {
		return nil, fmt.Errorf("upsert grant: %w", err)
	}

	s.logger.Info("access granted",
		"document_id", documentID,
		"grantee_id", granteeID,
		"level", level.String(),
		"granted_by", requesterID,
	)

	return grant, nil
}

// ListGrants returns all grants on a document. Requires admin access.
func (s *DocumentService) ListGrants(ctx context.Context, documentID, requesterID string) ([]*domain.PermissionGrant, error) {
	_, decision, err := s.access.EvaluateByID(ctx, documentID, requesterID)
	if err != nil {
		return nil, err
	}
	if !decision.CanAdmin {
		return nil, domainerrors.Forbidden("only the owner or an admin can list grants")
	}

	grants, err := s.store.ListGrantsForDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	return grants, nil
}

// RevokeAccess removes a grant. Requires admin access.
func (s *DocumentService) RevokeAccess(ctx context.Context, documentID, requesterID, granteeID string) error {
	_, decision, err := s.access.EvaluateByID(ctx, documentID, requesterID)
	if err != nil {
		return err
	}
	if !decision.CanAdmin {
		return domainerrors.Forbidden("only the owner or an admin can revoke grants")
	}

	if err := s.store.DeleteGrant(ctx, documentID, granteeID); err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}

	s.logger.Info("access revoked",
		"document_id", documentID,
		"grantee_id", granteeID,
		"revoked_by", requesterID,
	)
	return nil
}
