// Package ui provides the web interface for browsing and correcting
// income share records.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/incomeshare/internal/metrics"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
	"github.com/leapstack-labs/incomeshare/internal/ui/router"
	"github.com/leapstack-labs/incomeshare/pkg/core"
	"golang.org/x/sync/errgroup"
)

// Server is the main UI server.
type Server struct {
	store          core.EntityStore
	sessionStore   *sessions.CookieStore
	port           int
	dev            bool
	baselinePeriod int
	logger         *slog.Logger
}

// Config holds configuration for the UI server.
type Config struct {
	Store          core.EntityStore
	Port           int
	Dev            bool
	SessionSecret  string
	BaselinePeriod int
	Logger         *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		store:          cfg.Store,
		sessionStore:   sessionStore,
		port:           cfg.Port,
		dev:            cfg.Dev,
		baselinePeriod: cfg.BaselinePeriod,
		logger:         logger,
	}
}

// Handler builds the routed handler with the middleware stack.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
		metrics.Middleware,
	)

	env := common.Env{
		Store:          s.store,
		Sessions:       s.sessionStore,
		Logger:         s.logger,
		IsDev:          s.dev,
		BaselinePeriod: s.baselinePeriod,
	}
	if err := router.SetupRoutes(r, env); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev reports whether the hot reload endpoints are mounted.
func (s *Server) IsDev() bool {
	return s.dev
}
