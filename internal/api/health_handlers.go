package api

import (
	"net/http"

	"github.com/docvaultapp/docvault-server/internal/http/response"
)

// handleHealthCheck returns basic service health.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "ok"}, s.logger)
}
