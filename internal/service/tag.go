package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/docvaultapp/docvault-server/internal/domain"
	domainerrors "github.com/docvaultapp/docvault-server/internal/errors"
	"github.com/docvaultapp/docvault-server/internal/id"
	"github.com/docvaultapp/docvault-server/internal/store"
)

// TagService manages tags and their associations with documents.
type TagService struct {
	store  store.Store
	access *AccessService
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, access *AccessService, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		access: access,
		logger: logger,
	}
}

// CreateTagParams holds the fields for a new tag.
type CreateTagParams struct {
	Name        string `json:"name" validate:"required,min=1,max=64"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Description string `json:"description" validate:"max=500"`
}

// CreateTag creates a tag. Names are unique and matched exactly.
func (s *TagService) CreateTag(ctx context.Context, creatorID string, params CreateTagParams) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domainerrors.InvalidCriteria("tag name cannot be empty")
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, fmt.Errorf("generate tag ID: %w", err)
	}

	now := time.Now().UTC()
	tag := &domain.Tag{
		ID:          tagID,
		Name:        name,
		Color:       params.Color,
		Description: params.Description,
		CreatedBy:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("tag %q already exists", name)
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}

	s.logger.Info("tag created", "tag_id", tag.ID, "name", name, "created_by", creatorID)
	return tag, nil
}

// GetTag returns a tag by ID.
func (s *TagService) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	return s.store.GetTagByID(ctx, tagID)
}

// ListTags returns all tags ordered by usage.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx)
}

// UpdateTagParams holds mutable tag fields. Nil fields are unchanged.
type UpdateTagParams struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=64"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// UpdateTag applies tag changes. Only the tag creator can update it.
func (s *TagService) UpdateTag(ctx context.Context, tagID, requesterID string, params UpdateTagParams) (*domain.Tag, error) {
	tag, err := s.store.GetTagByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if tag.CreatedBy != requesterID {
		return nil, domainerrors.Forbidden("only the tag creator can update it")
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, domainerrors.InvalidCriteria("tag name cannot be empty")
		}
		tag.Name = name
	}
	if params.Color != nil {
		tag.Color = *params.Color
	}
	if params.Description != nil {
		tag.Description = *params.Description
	}
	tag.Touch()

	if err := s.store.UpdateTag(ctx, tag); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("tag %q already exists", tag.Name)
		}
		return nil, fmt.Errorf("update tag: %w", err)
	}

	return tag, nil
}

// DeleteTag removes a tag and all its document associations.
func (s *TagService) DeleteTag(ctx context.Context, tagID, requesterID string) error {
	tag, err := s.store.GetTagByID(ctx, tagID)
	if err != nil {
		return err
	}
	if tag.CreatedBy != requesterID {
		return domainerrors.Forbidden("only the tag creator can delete it")
	}

	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	s.logger.Info("tag deleted", "tag_id", tagID, "name", tag.Name, "requester_id", requesterID)
	return nil
}

// AttachTags associates tags with a document. Requires write access.
// Already-attached and unknown tags are skipped; the count of new
// associations is returned.
func (s *TagService) AttachTags(ctx context.Context, documentID, requesterID string, tagIDs []string) (int, error) {
	if err := s.requireWrite(ctx, documentID, requesterID); err != nil {
		return 0, err
	}

	added, err := s.store.AttachTags(ctx, documentID, tagIDs)
	if err != nil {
		return 0, fmt.Errorf("attach tags: %w", err)
	}

	s.logger.Info("tags attached", "document_id", documentID, "requested", len(tagIDs), "added", added)
	return added, nil
}

// DetachTags removes tag associations from a document. Requires write access.
// Missing associations are skipped; the count of removals is returned.
func (s *TagService) DetachTags(ctx context.Context, documentID, requesterID string, tagIDs []string) (int, error) {
	if err := s.requireWrite(ctx, documentID, requesterID); err != nil {
		return 0, err
	}

	removed, err := s.store.DetachTags(ctx, documentID, tagIDs)
	if err != nil {
		return 0, fmt.Errorf("detach tags: %w", err)
	}

	s.logger.Info("tags detached", "document_id", documentID, "requested", len(tagIDs), "removed", removed)
	return removed, nil
}

// ReplaceTags sets the document's tag set to exactly tagIDs in one
// transaction, touching only the difference. Requires write access.
func (s *TagService) ReplaceTags(ctx context.Context, documentID, requesterID string, tagIDs []string) (store.TagChange, error) {
	if err := s.requireWrite(ctx, documentID, requesterID); err != nil {
		return store.TagChange{}, err
	}

	change, err := s.store.ReplaceTags(ctx, documentID, tagIDs)
	if err != nil {
		return store.TagChange{}, fmt.Errorf("replace tags: %w", err)
	}

	s.logger.Info("tags replaced",
		"document_id", documentID,
		"added", change.Added,
		"removed", change.Removed,
	)
	return change, nil
}

// TagsForDocument returns the tags attached to a document the requester can read.
func (s *TagService) TagsForDocument(ctx context.Context, documentID, requesterID string) ([]*domain.Tag, error) {
	_, decision, err := s.access.EvaluateByID(ctx, documentID, requesterID)
	if err != nil {
		return nil, err
	}
	if !decision.CanRead {
		return nil, domainerrors.NotFoundf("document %s not found", documentID)
	}

	byDoc, err := s.store.TagsForDocuments(ctx, []string{documentID})
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	return byDoc[documentID], nil
}

// ResyncTagCounts recomputes every tag's usage count from the join table
// and returns how many were corrected. Intended for maintenance runs.
func (s *TagService) ResyncTagCounts(ctx context.Context) (int, error) {
	corrected, err := s.store.ResyncTagCounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("resync tag counts: %w", err)
	}
	if corrected > 0 {
		s.logger.Warn("tag usage counts drifted", "corrected", corrected)
	}
	return corrected, nil
}

func (s *TagService) requireWrite(ctx context.Context, documentID, requesterID string) error {
	_, decision, err := s.access.EvaluateByID(ctx, documentID, requesterID)
	if err != nil {
		return err
	}
	if !decision.CanRead {
		return domainerrors.NotFoundf("document %s not found", documentID)
	}
	if !decision.CanWrite {
		return domainerrors.Forbidden("write access required")
	}
	return nil
}
