// Package server exposes log analysis over HTTP.
//
// Each POST to /api/v1/analyze is an independent run: the request body is read
// as a log stream, analyzed with fresh statistics and answered with a report.
// Nothing is kept between requests.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/ccollicutt/logtriage/pkg/config"
	"github.com/ccollicutt/logtriage/pkg/webhook"
)

// Defaults for the HTTP service.
const (
	DefaultAddr          = ":8080"
	DefaultBodyLimit     = "64M"
	DefaultShutdownGrace = 5 * time.Second
)

// RunIDHeader carries the report run ID on analysis responses, matching the
// header webhooks send.
const RunIDHeader = webhook.RunIDHeader

// Server is the HTTP analysis service.
type Server struct {
	echo      *echo.Echo
	base      *config.Config
	logger    *zap.Logger
	webhooks  *webhook.Client
	bodyLimit string
	version   string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for requests and analysis runs.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfig sets the configuration that query parameters are applied over.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.base = cfg
		}
	}
}

// WithBodyLimit caps request bodies, e.g. "64M".
func WithBodyLimit(limit string) Option {
	return func(s *Server) {
		if limit != "" {
			s.bodyLimit = limit
		}
	}
}

// WithVersion sets the version reported by the health check.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// New creates a Server with its routes registered.
func New(opts ...Option) *Server {
	s := &Server{
		base:      config.DefaultConfig(),
		logger:    zap.NewNop(),
		webhooks:  webhook.NewClient(),
		bodyLimit: DefaultBodyLimit,
		version:   "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = goccyJSONSerializer{}
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(s.bodyLimit))
	e.Use(middleware.Decompress())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogMethod:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))

	s.echo = e
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.echo.Group("/api")
	api.GET("/health", s.handleHealth)

	v1 := api.Group("/v1")
	v1.POST("/analyze", s.handleAnalyze)
	v1.GET("/formats", s.handleFormats)
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownGrace)
	defer cancel()
	s.logger.Info("shutting down")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
