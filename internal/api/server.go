// Package api provides the HTTP API server and handlers for the campus board.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/campuswall/campuswall-server/internal/config"
	"github.com/campuswall/campuswall-server/internal/ratelimit"
	"github.com/campuswall/campuswall-server/internal/search"
	"github.com/campuswall/campuswall-server/internal/sse"
	"github.com/campuswall/campuswall-server/internal/store"
)

// apiVersion reported in the OpenAPI document.
const apiVersion = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	board       *store.Store
	services    *Services
	searchIndex *search.Index
	sseManager  *sse.Manager
	sseHandler  *sse.Handler
	router      *chi.Mux
	api         huma.API
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// searchIndex may be nil; the search endpoint then reports unavailable.
func NewServer(
	cfg *config.Config,
	board *store.Store,
	services *Services,
	searchIndex *search.Index,
	sseManager *sse.Manager,
	logger *slog.Logger,
) *Server {
	s := &Server{
		board:       board,
		services:    services,
		searchIndex: searchIndex,
		sseManager:  sseManager,
		router:      chi.NewRouter(),
		logger:      logger,
	}
	s.sseHandler = sse.NewHandler(sseManager, streamIdentity(services.Auth), logger)

	s.setupMiddleware(cfg)

	humaConfig := huma.DefaultConfig(cfg.Server.Name+" API", apiVersion)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerPostRoutes()
	s.registerProfileRoutes()
	s.registerAdminRoutes()

	// The live stream speaks raw SSE, outside the OpenAPI surface.
	s.router.Get("/api/v1/feed/stream", s.sseHandler.ServeHTTP)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(cfg *config.Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(authMiddleware(s.services.Auth))

	s.router.Use(s.rateLimitAuthRoutes(
		ratelimit.PerMinute(cfg.Limits.AuthPerMinute, cfg.Limits.Burst)))
	s.router.Use(s.rateLimitVotes(
		ratelimit.PerMinute(cfg.Limits.VotesPerMinute, cfg.Limits.Burst)))
}
