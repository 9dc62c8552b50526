package api

import (
	"encoding/json/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/docvaultapp/docvault-server/internal/domain"
	"github.com/docvaultapp/docvault-server/internal/http/response"
	"github.com/docvaultapp/docvault-server/internal/service"
)

// ShareLinkResponse is the owner-facing view of a share link.
type ShareLinkResponse struct {
	ID            string     `json:"id"`
	Token         string     `json:"token"`
	DocumentID    string     `json:"documentId"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	HasPassword   bool       `json:"hasPassword"`
	DownloadLimit *int64     `json:"downloadLimit,omitempty"`
	DownloadCount int64      `json:"downloadCount"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func newShareLinkResponse(link *domain.ShareLink) ShareLinkResponse {
	return ShareLinkResponse{
		ID:            link.ID,
		Token:         link.Token,
		DocumentID:    link.DocumentID,
		ExpiresAt:     link.ExpiresAt,
		HasPassword:   link.HasPassword(),
		DownloadLimit: link.DownloadLimit,
		DownloadCount: link.DownloadCount,
		CreatedAt:     link.CreatedAt,
	}
}

// handleCreateShareLink issues a share link for a document.
func (s *Server) handleCreateShareLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	var params service.CreateShareLinkParams
	if err := json.UnmarshalRead(r.Body, &params); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(params); err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	link, err := s.shareService.CreateShareLink(ctx, id, userID, params)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.Created(w, newShareLinkResponse(link), s.logger)
}

// handleListShareLinks returns the share links for a document.
func (s *Server) handleListShareLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	links, err := s.shareService.ListShareLinks(ctx, id, userID)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	out := make([]ShareLinkResponse, 0, len(links))
	for _, link := range links {
		out = append(out, newShareLinkResponse(link))
	}
	response.Success(w, out, s.logger)
}

// handleRevokeShareLink deletes a share link.
func (s *Server) handleRevokeShareLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if err := s.shareService.RevokeShareLink(ctx, id, userID); err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// InspectShareLinkResponse tells an anonymous client what redemption needs.
// It deliberately reveals nothing about the document itself.
type InspectShareLinkResponse struct {
	RequiresPassword bool       `json:"requiresPassword"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
}

// handleInspectShareLink reports redemption requirements for a token.
func (s *Server) handleInspectShareLink(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	link, err := s.shareService.InspectShareLink(r.Context(), token)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.Success(w, InspectShareLinkResponse{
		RequiresPassword: link.HasPassword(),
		ExpiresAt:        link.ExpiresAt,
	}, s.logger)
}

// RedeemShareLinkRequest carries the optional password for redemption.
type RedeemShareLinkRequest struct {
	Password string `json:"password"`
}

// RedeemShareLinkResponse is the anonymous-facing view of a shared document.
type RedeemShareLinkResponse struct {
	DocumentID  string `json:"documentId"`
	Title       string `json:"title"`
	FileName    string `json:"fileName"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// handleRedeemShareLink resolves a token to its document, consuming one
// download on success.
func (s *Server) handleRedeemShareLink(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req RedeemShareLinkRequest
	if r.ContentLength > 0 {
		if err := json.UnmarshalRead(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid request body", s.logger)
			return
		}
	}

	doc, err := s.shareService.RedeemShareLink(r.Context(), token, req.Password)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.Success(w, RedeemShareLinkResponse{
		DocumentID:  doc.ID,
		Title:       doc.Title,
		FileName:    doc.FileName,
		Size:        doc.Size,
		ContentType: doc.ContentType,
	}, s.logger)
}
