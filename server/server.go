package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/proptrans/config"
	"github.com/minios-linux/proptrans/translate"
)

// Server serves the translation endpoint, the upload form and /health.
type Server struct {
	cfg     *config.Server
	logger  *slog.Logger
	handler http.Handler
}

// New wires routes and middleware around tr.
func New(cfg *config.Server, tr translate.Translator, logger *slog.Logger, version string) *Server {
	translateHandler := NewHandler(tr, logger, cfg.Translate)

	mux := http.NewServeMux()
	mux.Handle("/translate", translateHandler)
	// GET / shows the form; every other method on / reaches the
	// translate handler, which answers non-POST with its own 405.
	mux.Handle("/{$}", translateHandler)
	mux.Handle("GET /{$}", indexHandler(version))
	mux.Handle("GET /health", healthHandler(version))

	chain := Chain(
		RequestID,
		Logger(logger),
		Recovery(logger),
	)

	return &Server{
		cfg:     cfg,
		logger:  logger,
		handler: chain(mux),
	}
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.HTTP.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.HTTP.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
		IdleTimeout:  s.cfg.HTTP.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server started", slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server", slog.Duration("timeout", s.cfg.HTTP.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
