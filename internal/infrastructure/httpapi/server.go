package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// NewRouter builds the chi router with the standard middleware stack.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	h.RegisterRoutes(r)
	return r
}

// Server runs the API until its context is cancelled.
type Server struct {
	srv             *http.Server
	logger          ports.Logger
	shutdownTimeout time.Duration
}

// NewServer prepares an http.Server for addr.
func NewServer(addr string, readHeaderTimeout time.Duration, h *Handler) *Server {
	if addr == "" {
		addr = domain.DefaultServerAddr
	}
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = domain.DefaultReadHeaderTimeout
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(h),
			ReadHeaderTimeout: readHeaderTimeout,
			IdleTimeout:       120 * time.Second,
		},
		logger:          h.Logger,
		shutdownTimeout: domain.DefaultShutdownTimeout,
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		s.info("server listening", map[string]interface{}{"addr": s.srv.Addr})
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return goerr.Wrap(err, "server failed", goerr.V("addr", s.srv.Addr))
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		s.info("shutting down gracefully", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return goerr.Wrap(err, "server forced to shutdown")
		}
		return nil
	})

	return eg.Wait()
}

func (s *Server) info(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, fields)
	}
}
