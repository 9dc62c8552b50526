package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docvaultapp/docvault-server/internal/domain"
	"github.com/docvaultapp/docvault-server/internal/http/response"
	"github.com/docvaultapp/docvault-server/internal/service"
)

// DocumentResponse carries a document plus the requester's capabilities.
type DocumentResponse struct {
	Document *domain.Document      `json:"document"`
	Access   domain.AccessDecision `json:"access"`
}

// handleCreateDocument registers a new document for the authenticated user.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	var params service.CreateDocumentParams
	if err := json.UnmarshalRead(r.Body, &params); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(params); err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	doc, err := s.documentService.CreateDocument(ctx, userID, params)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.Created(w, doc, s.logger)
}

// handleGetDocument returns a document the requester can read.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	doc, decision, err := s.documentService.GetDocument(ctx, id, userID)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.Success(w, DocumentResponse{Document: doc, Access: decision}, s.logger)
}

// handleUpdateDocument applies metadata changes to a document.
func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	var params service.UpdateDocumentParams
	if err := json.UnmarshalRead(r.Body, &params); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(params); err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	doc, err := s.documentService.UpdateDocument(ctx, id, userID, params)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.Success(w, doc, s.logger)
}

// handleDeleteDocument soft-deletes a document.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if err := s.documentService.DeleteDocument(ctx, id, userID); err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleDownloadDocument records a download and returns the document metadata.
func (s *Server) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	doc, err := s.documentService.RecordDownload(ctx, id, userID)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.Success(w, doc, s.logger)
}
