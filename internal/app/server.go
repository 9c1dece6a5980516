package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/LegalScan/internal/api/handlers"
	"github.com/markdave123-py/LegalScan/internal/config"
	objectclient "github.com/markdave123-py/LegalScan/internal/core/object-client"
	"github.com/markdave123-py/LegalScan/internal/logging"
)

// ServerDeps are the handlers the router mounts. Vault may be nil.
type ServerDeps struct {
	Scan      *handlers.ScanHandler
	Chat      *handlers.ChatHandler
	Audio     *handlers.AudioHandler
	Vault     *handlers.VaultHandler
	ChatModel handlers.ActiveModel
	ScanModel handlers.ActiveModel
}

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

var baseEndpoints = []string{
	"POST /api/scan",
	"POST /api/chat",
	"POST /api/generate-audio",
	"GET /api/health",
}

var vaultEndpoints = []string{
	"POST /api/vault/documents",
	"GET /api/vault/documents",
	"DELETE /api/vault/documents/{id}",
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, deps ServerDeps, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewRouter(cfg, deps),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logging.Component(logger, "http"),
	}
}

// NewRouter returns the chi router for deps.
func NewRouter(cfg *config.Config, deps ServerDeps) http.Handler {
	endpoints := append([]string(nil), baseEndpoints...)
	if deps.Vault != nil {
		endpoints = append(endpoints, vaultEndpoints...)
	}
	health := handlers.NewHealthHandler(cfg.ChatAPIKey != "", cfg.ScanAPIKey != "", deps.ChatModel, deps.ScanModel, endpoints)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	// persisted narration audio
	audio := http.StripPrefix(objectclient.AudioRoute, http.FileServer(http.Dir(cfg.AudioDir)))
	r.Handle(objectclient.AudioRoute+"/*", audio)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", health.Health)
		api.Post("/scan", deps.Scan.Scan)
		api.Post("/chat", deps.Chat.Chat)
		api.Post("/generate-audio", deps.Audio.GenerateAudio)

		if deps.Vault != nil {
			api.Route("/vault/documents", func(v chi.Router) {
				v.Post("/", deps.Vault.Archive)
				v.Get("/", deps.Vault.List)
				v.Delete("/{id}", deps.Vault.Delete)
			})
		}
	})

	return r
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
