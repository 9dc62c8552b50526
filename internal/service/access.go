// Package service provides business logic layer for managing documents, tags, sharing, and search.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/docvaultapp/docvault-server/internal/domain"
	"github.com/docvaultapp/docvault-server/internal/store"
)

// AccessService resolves what a requester may do with a document.
// All permission checks in the other services go through here so the
// rules live in exactly one place.
type AccessService struct {
	store  store.Store
	logger *slog.Logger
}

// NewAccessService creates a new access service.
func NewAccessService(store store.Store, logger *slog.Logger) *AccessService {
	return &AccessService{
		store:  store,
		logger: logger,
	}
}

// Evaluate computes the access decision for a requester against a document.
// A missing grant is not an error; it just means no granted capabilities.
func (s *AccessService) Evaluate(ctx context.Context, doc *domain.Document, requesterID string) (domain.AccessDecision, error) {
	if doc == nil || doc.IsDeleted() {
		return domain.AccessDecision{}, nil
	}

	var grant *domain.PermissionGrant
	if requesterID != "" && requesterID != doc.OwnerID {
		g, err := s.store.GetGrant(ctx, doc.ID, requesterID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return domain.AccessDecision{}, fmt.Errorf("get grant: %w", err)
		}
		grant = g
	}

	return domain.EvaluateAccess(doc, requesterID, grant), nil
}

// EvaluateByID loads the document and computes the access decision.
func (s *AccessService) EvaluateByID(ctx context.Context, documentID, requesterID string) (*domain.Document, domain.AccessDecision, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, domain.AccessDecision{}, err
	}

	decision, err := s.Evaluate(ctx, doc, requesterID)
	if err != nil {
		return nil, domain.AccessDecision{}, err
	}
	return doc, decision, nil
}
