// Package api provides the HTTP API server and handlers for the DocVault application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/docvaultapp/docvault-server/internal/auth"
	"github.com/docvaultapp/docvault-server/internal/config"
	"github.com/docvaultapp/docvault-server/internal/ratelimit"
	"github.com/docvaultapp/docvault-server/internal/service"
	"github.com/docvaultapp/docvault-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	documentService *service.DocumentService
	tagService      *service.TagService
	searchService   *service.SearchService
	shareService    *service.ShareService
	tokens          *auth.TokenService
	validator       *validation.Validator
	redeemLimiter   *ratelimit.KeyedRateLimiter
	router          *chi.Mux
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	documentService *service.DocumentService,
	tagService *service.TagService,
	searchService *service.SearchService,
	shareService *service.ShareService,
	tokens *auth.TokenService,
	cfg *config.Config,
	logger *slog.Logger,
) *Server {
	s := &Server{
		documentService: documentService,
		tagService:      tagService,
		searchService:   searchService,
		shareService:    shareService,
		tokens:          tokens,
		validator:       validation.New(),
		redeemLimiter:   ratelimit.New(cfg.RateLimit.RedeemRPS, cfg.RateLimit.RedeemBurst),
		router:          chi.NewRouter(),
		logger:          logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Search (auth optional: anonymous requesters see public documents).
		r.Group(func(r chi.Router) {
			r.Use(s.optionalAuth)
			r.Get("/search", s.handleSearch)
			r.Get("/search/facets", s.handleSearchFacets)
		})

		// Documents (require auth).
		r.Route("/documents", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateDocument)
			r.Get("/{id}", s.handleGetDocument)
			r.Patch("/{id}", s.handleUpdateDocument)
			r.Delete("/{id}", s.handleDeleteDocument)
			r.Post("/{id}/download", s.handleDownloadDocument)

			// Tag associations.
			r.Get("/{id}/tags", s.handleGetDocumentTags)
			r.Post("/{id}/tags", s.handleAttachTags)
			r.Put("/{id}/tags", s.handleReplaceTags)
			r.Delete("/{id}/tags", s.handleDetachTags)

			// Permission grants.
			r.Get("/{id}/grants", s.handleListGrants)
			r.Put("/{id}/grants", s.handleGrantAccess)
			r.Delete("/{id}/grants/{granteeID}", s.handleRevokeAccess)

			// Share links.
			r.Post("/{id}/links", s.handleCreateShareLink)
			r.Get("/{id}/links", s.handleListShareLinks)
		})

		// Tags (require auth).
		r.Route("/tags", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListTags)
			r.Post("/", s.handleCreateTag)
			r.Post("/resync", s.handleResyncTagCounts)
			r.Get("/{id}", s.handleGetTag)
			r.Patch("/{id}", s.handleUpdateTag)
			r.Delete("/{id}", s.handleDeleteTag)
		})

		// Share link revocation (require auth).
		r.Route("/links", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Delete("/{id}", s.handleRevokeShareLink)
		})

		// Public share link redemption (rate limited by client IP).
		r.Route("/shared/{token}", func(r chi.Router) {
			r.Use(s.rateLimitRedemption)
			r.Get("/", s.handleInspectShareLink)
			r.Post("/redeem", s.handleRedeemShareLink)
		})
	})
}
