// Package api exposes the insights engine over HTTP. Callers either post
// records directly or ask for insights over records already imported for
// an owner.
package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/datsun80zx/jobinsights/internal/config"
	"github.com/datsun80zx/jobinsights/internal/insights"
	"github.com/datsun80zx/jobinsights/internal/store"
)

// Dependencies are the collaborators the handlers need. Store may be nil,
// in which case the owner routes are not mounted.
type Dependencies struct {
	Engine *insights.Engine
	Store  store.Store
}

type Server struct {
	router *chi.Mux
	logger *zap.Logger
	server *http.Server
	cfg    config.ServerConfig
}

// NewServer wires middleware and routes
func NewServer(cfg config.ServerConfig, storeCfg config.StoreConfig, deps Dependencies, logger *zap.Logger) *Server {
	h := &Handler{
		engine:       deps.Engine,
		store:        deps.Store,
		logger:       logger,
		maxBodyBytes: cfg.MaxBodyBytes,
		queryTimeout: time.Duration(storeCfg.QueryTimeoutSec) * time.Second,
	}

	router := chi.NewRouter()

	router.Use(requestID)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	router.Get("/health", h.Health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(cfg.RequestsPerSecond, cfg.Burst))

		r.Post("/insights/portfolio", h.PortfolioInsights)
		r.Post("/insights/job", h.JobInsights)

		if deps.Store != nil {
			r.Get("/owners/{owner}/insights", h.OwnerPortfolioInsights)
			r.Get("/owners/{owner}/jobs/{job}/insights", h.OwnerJobInsights)
		}
	})

	return &Server{
		router: router,
		logger: logger,
		cfg:    cfg,
		server: &http.Server{
			Addr:              ":" + strconv.Itoa(cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the root http.Handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until SIGINT/SIGTERM or ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		s.logger.Info("starting server", zap.String("addr", s.server.Addr))
		serverErrors <- s.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-shutdown:
	case <-ctx.Done():
	}

	s.logger.Info("shutdown initiated")

	timeout := time.Duration(s.cfg.ShutdownTimeoutSec) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("graceful shutdown failed", zap.Error(err))
		return s.server.Close()
	}
	return nil
}
