package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docvaultapp/docvault-server/internal/domain"
	"github.com/docvaultapp/docvault-server/internal/http/response"
)

// GrantRequest carries the grantee and capability level for a grant.
type GrantRequest struct {
	GranteeID string `json:"granteeId" validate:"required"`
	Level     string `json:"level" validate:"required,oneof=read write admin"`
}

// handleListGrants returns all grants on a document.
func (s *Server) handleListGrants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	grants, err := s.documentService.ListGrants(ctx, id, userID)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.Success(w, grants, s.logger)
}

// handleGrantAccess creates or updates a permission grant.
func (s *Server) handleGrantAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	var req GrantRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	level, ok := domain.ParseGrantLevel(req.Level)
	if !ok {
		response.BadRequest(w, "Invalid grant level", s.logger)
		return
	}

	grant, err := s.documentService.GrantAccess(ctx, id, userID, req.GranteeID, level)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.Success(w, grant, s.logger)
}

// handleRevokeAccess removes a grant from a document.
func (s *Server) handleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")
	granteeID := chi.URLParam(r, "granteeID")

	if err := s.documentService.RevokeAccess(ctx, id, userID, granteeID); err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
