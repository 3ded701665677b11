// Package server exposes the matching engine over HTTP.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/engine"
	"github.com/spigell/job-matcher/internal/filtering"
)

const (
	appName = "Job Matcher API"

	defaultListen       = ":8080"
	defaultBodyLimit    = 10 << 20
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
)

// Matcher runs one match request.
type Matcher interface {
	Match(ctx context.Context, req *engine.Request) (*engine.Response, error)
}

// Config holds the HTTP listener settings.
type Config struct {
	Listen       string
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Info is reported by the health endpoint.
type Info struct {
	Version   string             `json:"version"`
	AI        string             `json:"ai"`
	Providers []string           `json:"providers"`
	Filters   []filtering.Status `json:"filters,omitempty"`
}

type Server struct {
	app     *fiber.App
	cfg     Config
	matcher Matcher
	info    Info
	logger  *zap.Logger
}

func New(cfg Config, matcher Matcher, info Info, logger *zap.Logger) *Server {
	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = defaultBodyLimit
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if info.Providers == nil {
		info.Providers = []string{}
	}

	s := &Server{
		cfg:     cfg,
		matcher: matcher,
		info:    info,
		logger:  logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               appName,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	s.routes()

	return s
}

func (s *Server) routes() {
	s.app.Use(recover.New())
	s.app.Use(requestLogger(s.logger))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID, X-Request-ID",
	}))

	api := s.app.Group("/api/v1")
	api.Get("/health", s.handleHealth)
	api.Post("/jobs/match", s.handleMatch)

	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	s.app.Get("/", s.handleRoot)
}

// App exposes the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("listen", s.cfg.Listen))
		errCh <- s.app.Listen(s.cfg.Listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()

	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}

	return <-errCh
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": appName,
		"version": s.info.Version,
		"endpoints": []string{
			"POST /api/v1/jobs/match",
			"GET /api/v1/health",
			"GET /metrics",
		},
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"time":      time.Now().UTC(),
		"version":   s.info.Version,
		"ai":        s.info.AI,
		"providers": s.info.Providers,
		"filters":   s.info.Filters,
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
