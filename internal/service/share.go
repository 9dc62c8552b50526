package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docvaultapp/docvault-server/internal/auth"
	"github.com/docvaultapp/docvault-server/internal/domain"
	domainerrors "github.com/docvaultapp/docvault-server/internal/errors"
	"github.com/docvaultapp/docvault-server/internal/id"
	"github.com/docvaultapp/docvault-server/internal/store"
)

// ShareService manages tokenized share links for documents.
type ShareService struct {
	store  store.Store
	access *AccessService
	logger *slog.Logger
}

// NewShareService creates a new share service.
func NewShareService(store store.Store, access *AccessService, logger *slog.Logger) *ShareService {
	return &ShareService{
		store:  store,
		access: access,
		logger: logger,
	}
}

// CreateShareLinkParams holds the options for a new share link.
type CreateShareLinkParams struct {
	// Expiry is one of "never", "1d", "7d", "30d".
	Expiry string `json:"expiry" validate:"omitempty,oneof=never 1d 7d 30d"`
	// Password, when set, must be presented at redemption time.
	Password string `json:"password" validate:"omitempty,min=4,max=128"`
	// DownloadLimit caps redemptions. Nil means unlimited.
	DownloadLimit *int64 `json:"downloadLimit" validate:"omitempty,gt=0"`
}

// CreateShareLink issues a new share link for a document the requester
// administers. The token never encodes document or creator identity.
func (s *ShareService) CreateShareLink(ctx context.Context, documentID, requesterID string, params CreateShareLinkParams) (*domain.ShareLink, error) {
	_, decision, err := s.access.EvaluateByID(ctx, documentID, requesterID)
	if err != nil {
		return nil, err
	}
	if !decision.CanRead {
		return nil, domainerrors.NotFoundf("document %s not found", documentID)
	}
	if !decision.CanAdmin {
		return nil, domainerrors.Forbidden("only the owner or an admin can create share links")
	}

	policy := domain.ExpiryNever
	if params.Expiry != "" {
		p, ok := domain.ParseExpiryPolicy(params.Expiry)
		if !ok {
			return nil, domainerrors.InvalidCriteriaf("invalid expiry policy %q", params.Expiry)
		}
		policy = p
	}

	var passwordHash string
	if params.Password != "" {
		passwordHash, err = auth.HashPassword(params.Password)
		if err != nil {
			return nil, fmt.Errorf("hash share password: %w", err)
		}
	}

	linkID, err := id.Generate("shl")
	if err != nil {
		return nil, fmt.Errorf("generate share link ID: %w", err)
	}
	token, err := id.GenerateShareToken()
	if err != nil {
		return nil, fmt.Errorf("generate share token: %w", err)
	}

	now := time.Now().UTC()
	link := &domain.ShareLink{
		ID:            linkID,
		Token:         token,
		DocumentID:    documentID,
		CreatedBy:     requesterID,
		ExpiresAt:     policy.Resolve(now),
		PasswordHash:  passwordHash,
		DownloadLimit: params.DownloadLimit,
		CreatedAt:     now,
	}

	if err := s.store.CreateShareLink(ctx, link); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// 192-bit tokens should never collide; treat it as transient.
			return nil, domainerrors.Conflict("share token collision, retry")
		}
		return nil, fmt.Errorf("create share link: %w", err)
	}

	s.logger.Info("share link created",
		"link_id", link.ID,
		"document_id", documentID,
		"created_by", requesterID,
		"expiry", string(policy),
		"has_password", link.HasPassword(),
		"has_limit", link.DownloadLimit != nil,
	)

	return link, nil
}

// RedeemShareLink resolves a token to its document, enforcing expiry,
// download limits, and password protection in that order. A successful
// redemption atomically consumes one download.
func (s *ShareService) RedeemShareLink(ctx context.Context, token, password string) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	link, err := s.store.GetShareLinkByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("share link not found")
		}
		return nil, fmt.Errorf("get share link: %w", err)
	}

	now := time.Now().UTC()
	if link.IsExpired(now) {
		return nil, domainerrors.ErrLinkExpired
	}
	if link.IsExhausted() {
		return nil, domainerrors.ErrLinkExhausted
	}

	if link.HasPassword() {
		if password == "" {
			return nil, domainerrors.ErrPasswordRequired
		}
		ok, err := auth.VerifyPassword(link.PasswordHash, password)
		if err != nil {
			return nil, fmt.Errorf("verify share password: %w", err)
		}
		if !ok {
			return nil, domainerrors.ErrPasswordMismatch
		}
	}

	doc, err := s.store.GetDocument(ctx, link.DocumentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The document was deleted after the link was issued.
			return nil, domainerrors.NotFound("share link not found")
		}
		return nil, fmt.Errorf("get shared document: %w", err)
	}

	consumed, err := s.store.ConsumeShareLink(ctx, link.ID)
	if err != nil {
		return nil, fmt.Errorf("consume share link: %w", err)
	}
	if !consumed {
		// A concurrent redemption took the last slot.
		return nil, domainerrors.ErrLinkExhausted
	}

	s.logger.Info("share link redeemed", "link_id", link.ID, "document_id", doc.ID)
	return doc, nil
}

// InspectShareLink returns the redemption requirements for a token without
// consuming it, so clients can prompt for a password up front.
func (s *ShareService) InspectShareLink(ctx context.Context, token string) (*domain.ShareLink, error) {
	link, err := s.store.GetShareLinkByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("share link not found")
		}
		return nil, fmt.Errorf("get share link: %w", err)
	}

	if link.IsExpired(time.Now().UTC()) {
		return nil, domainerrors.ErrLinkExpired
	}
	return link, nil
}

// ListShareLinks returns the share links for a document. Requires admin access.
func (s *ShareService) ListShareLinks(ctx context.Context, documentID, requesterID string) ([]*domain.ShareLink, error) {
	_, decision, err := s.access.EvaluateByID(ctx, documentID, requesterID)
	if err != nil {
		return nil, err
	}
	if !decision.CanAdmin {
		return nil, domainerrors.Forbidden("only the owner or an admin can list share links")
	}

	links, err := s.store.ListShareLinksForDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list share links: %w", err)
	}
	return links, nil
}

// RevokeShareLink deletes a share link. The link creator or a document
// admin can revoke it.
func (s *ShareService) RevokeShareLink(ctx context.Context, linkID, requesterID string) error {
	link, err := s.store.GetShareLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("share link not found")
		}
		return fmt.Errorf("get share link: %w", err)
	}

	if link.CreatedBy != requesterID {
		_, decision, err := s.access.EvaluateByID(ctx, link.DocumentID, requesterID)
		if err != nil {
			return err
		}
		if !decision.CanAdmin {
			return domainerrors.Forbidden("only the link creator or a document admin can revoke it")
		}
	}

	if err := s.store.DeleteShareLink(ctx, linkID); err != nil {
		return fmt.Errorf("delete share link: %w", err)
	}

	s.logger.Info("share link revoked", "link_id", linkID, "requester_id", requesterID)
	return nil
}
