// Package server provides the HTTP server and routing for the tracker.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"stockfolio/internal/quote"
	"stockfolio/internal/refresh"
)

// Config holds server configuration.
type Config struct {
	Log            zerolog.Logger
	Manager        *refresh.Manager
	Normalizer     *quote.Normalizer
	Poller         *refresh.Poller
	Port           string
	RequestTimeout time.Duration
}

// Server represents the HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	h := NewHandler(cfg.Manager, cfg.Normalizer, cfg.Poller, cfg.RequestTimeout, cfg.Log)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/quote", h.HandleQuote)
		r.Get("/holdings", h.HandleListHoldings)
		r.Post("/holdings", h.HandleAddHolding)
		r.Delete("/holdings/{id}", h.HandleRemoveHolding)
		r.Get("/portfolio", h.HandlePortfolio)
		r.Post("/refresh", h.HandleRefresh)
		r.Get("/export", h.HandleExport)
		r.Post("/import", h.HandleImport)
	})

	return &Server{
		router: r,
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      20 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: cfg.Log.With().Str("component", "server").Logger(),
	}
}

// Router exposes the mux, mainly for tests.
func (s *Server) Router() http.Handler { return s.router }

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("server listening")
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
