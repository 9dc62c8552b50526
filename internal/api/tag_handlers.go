package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docvaultapp/docvault-server/internal/http/response"
	"github.com/docvaultapp/docvault-server/internal/service"
)

// TagIDsRequest carries a set of tag IDs for attach, detach, and replace.
// An empty set is valid for replace, which clears all associations.
type TagIDsRequest struct {
	TagIDs []string `json:"tagIds" validate:"max=32,dive,required"`
}

// handleListTags returns all tags ordered by usage.
func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tagService.ListTags(r.Context())
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}
	response.Success(w, tags, s.logger)
}

// handleCreateTag creates a new tag.
func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	var params service.CreateTagParams
	if err := json.UnmarshalRead(r.Body, &params); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(params); err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	tag, err := s.tagService.CreateTag(ctx, userID, params)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.Created(w, tag, s.logger)
}

// handleGetTag returns a tag by ID.
func (s *Server) handleGetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := s.tagService.GetTag(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}
	response.Success(w, tag, s.logger)
}

// handleUpdateTag updates a tag.
func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	var params service.UpdateTagParams
	if err := json.UnmarshalRead(r.Body, &params); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(params); err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	tag, err := s.tagService.UpdateTag(ctx, id, userID, params)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.Success(w, tag, s.logger)
}

// handleDeleteTag deletes a tag and its document associations.
func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if err := s.tagService.DeleteTag(ctx, id, userID); err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleResyncTagCounts recomputes tag usage counts from the join table.
func (s *Server) handleResyncTagCounts(w http.ResponseWriter, r *http.Request) {
	corrected, err := s.tagService.ResyncTagCounts(r.Context())
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}
	response.Success(w, map[string]int{"corrected": corrected}, s.logger)
}

// handleGetDocumentTags returns the tags attached to a document.
func (s *Server) handleGetDocumentTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	tags, err := s.tagService.TagsForDocument(ctx, id, userID)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}
	response.Success(w, tags, s.logger)
}

// handleAttachTags adds tag associations to a document.
func (s *Server) handleAttachTags(w http.ResponseWriter, r *http.Request) {
	s.handleTagMutation(w, r, func(documentID, userID string, tagIDs []string) (any, error) {
		added, err := s.tagService.AttachTags(r.Context(), documentID, userID, tagIDs)
		return map[string]int{"added": added}, err
	})
}

// handleDetachTags removes tag associations from a document.
func (s *Server) handleDetachTags(w http.ResponseWriter, r *http.Request) {
	s.handleTagMutation(w, r, func(documentID, userID string, tagIDs []string) (any, error) {
		removed, err := s.tagService.DetachTags(r.Context(), documentID, userID, tagIDs)
		return map[string]int{"removed": removed}, err
	})
}

// handleReplaceTags sets a document's tag set to exactly the given IDs.
func (s *Server) handleReplaceTags(w http.ResponseWriter, r *http.Request) {
	s.handleTagMutation(w, r, func(documentID, userID string, tagIDs []string) (any, error) {
		change, err := s.tagService.ReplaceTags(r.Context(), documentID, userID, tagIDs)
		if err != nil {
			return nil, err
		}
		return map[string]int{"added": change.Added, "removed": change.Removed}, nil
	})
}

// handleTagMutation decodes the shared tag ID request body and dispatches.
func (s *Server) handleTagMutation(w http.ResponseWriter, r *http.Request, fn func(documentID, userID string, tagIDs []string) (any, error)) {
	userID := getUserID(r.Context())
	id := chi.URLParam(r, "id")

	var req TagIDsRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	result, err := fn(id, userID, req.TagIDs)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}
