package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/docvaultapp/docvault-server/internal/domain"
	domainerrors "github.com/docvaultapp/docvault-server/internal/errors"
	"github.com/docvaultapp/docvault-server/internal/store"
)

// SearchService runs access-aware document searches and facet aggregation.
type SearchService struct {
	store store.Store
	// includeGranted widens the implicit visibility scope to documents
	// shared with the requester through permission grants.
	includeGranted bool
	facetTopN      int
	logger         *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store store.Store, includeGranted bool, facetTopN int, logger *slog.Logger) *SearchService {
	if facetTopN <= 0 {
		facetTopN = 10
	}
	return &SearchService{
		store:          store,
		includeGranted: includeGranted,
		facetTopN:      facetTopN,
		logger:         logger,
	}
}

// Search returns one page of documents matching the criteria, restricted
// to what the requester is allowed to see. An anonymous requester (empty
// requesterID) sees only public documents.
func (s *SearchService) Search(ctx context.Context, criteria domain.SearchCriteria, requesterID string) (*domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := validateCriteria(criteria, requesterID); err != nil {
		return nil, err
	}

	result, err := s.store.SearchDocuments(ctx, criteria, requesterID, s.includeGranted)
	if err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			return nil, domainerrors.InvalidCriteria(err.Error())
		}
		return nil, fmt.Errorf("search documents: %w", err)
	}

	return result, nil
}

// Facets aggregates counts over the full filtered document set, ignoring
// pagination. Visibility rules match Search exactly.
func (s *SearchService) Facets(ctx context.Context, criteria domain.SearchCriteria, requesterID string) (*domain.Facets, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := validateCriteria(criteria, requesterID); err != nil {
		return nil, err
	}

	facets, err := s.store.FacetDocuments(ctx, criteria, requesterID, s.includeGranted, s.facetTopN)
	if err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			return nil, domainerrors.InvalidCriteria(err.Error())
		}
		return nil, fmt.Errorf("facet documents: %w", err)
	}

	return facets, nil
}

// SearchWithFacets runs a search and its facet aggregation together.
// A facet failure degrades to empty facets rather than failing the search.
func (s *SearchService) SearchWithFacets(ctx context.Context, criteria domain.SearchCriteria, requesterID string) (*domain.SearchResult, *domain.Facets, error) {
	result, err := s.Search(ctx, criteria, requesterID)
	if err != nil {
		return nil, nil, err
	}

	facets, err := s.Facets(ctx, criteria, requesterID)
	if err != nil {
		s.logger.Warn("facet aggregation failed, returning empty facets", "error", err)
		facets = domain.EmptyFacets()
	}

	return result, facets, nil
}

// validateCriteria rejects combinations that cannot produce a meaningful
// result before touching the store.
func validateCriteria(criteria domain.SearchCriteria, requesterID string) error {
	if criteria.MatchAll && len(criteria.TagIDs) == 0 {
		return domainerrors.InvalidCriteria("matchAll requires at least one tag")
	}
	if criteria.Visibility == domain.VisibilityPrivate && requesterID == "" {
		return domainerrors.InvalidCriteria("private visibility requires authentication")
	}
	if criteria.CreatedAfter != nil && criteria.CreatedBefore != nil && criteria.CreatedAfter.After(*criteria.CreatedBefore) {
		return domainerrors.InvalidCriteria("createdAfter must not be later than createdBefore")
	}
	return nil
}
