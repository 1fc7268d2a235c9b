// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/lectern/internal/analytics"
	"github.com/stwalsh4118/lectern/internal/api"
	"github.com/stwalsh4118/lectern/internal/config"
	"github.com/stwalsh4118/lectern/internal/course"
	"github.com/stwalsh4118/lectern/internal/db"
	"github.com/stwalsh4118/lectern/internal/logger"
	"github.com/stwalsh4118/lectern/internal/middleware"
)

//go:embed web/templates/*.html
var templateFS embed.FS

// Server represents the HTTP server
type Server struct {
	config    *config.Config
	db        *db.DB
	repos     *db.Repositories
	scanner   *course.Scanner
	analytics *analytics.Service
	router    *gin.Engine
	server    *http.Server
	listener  net.Listener
}

// New creates a new server instance serving the given content root.
func New(cfg *config.Config, database *db.DB, contentRoot string) *Server {
	repos := db.NewRepositories(database)
	scanner := course.NewScanner(contentRoot)

	return &Server{
		config:    cfg,
		db:        database,
		repos:     repos,
		scanner:   scanner,
		analytics: analytics.NewService(repos, scanner),
	}
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	s.router.Use(middleware.RequestLogger())
	s.router.Use(gin.Recovery())
	s.router.Use(cors.Default())

	s.router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "web/templates/*.html")))

	// Course files (videos, documents) are served straight from the content
	// root; the browser's video element handles playback.
	s.router.StaticFS("/static", http.Dir(s.scanner.Root()))

	api.SetupPageRoutes(s.router, s.scanner, s.repos)

	apiGroup := s.router.Group("/api")
	api.SetupHealthRoutes(apiGroup, s.db)
	api.SetupProgressRoutes(apiGroup, s.repos)
	api.SetupSettingsRoutes(apiGroup, s.repos)
	api.SetupAnalyticsRoutes(apiGroup, s.analytics)
}

// Listen binds the configured address without serving yet. Splitting the bind
// from Serve lets the desktop shell detect port conflicts synchronously.
func (s *Server) Listen() error {
	s.setupRouter()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	return nil
}

// Serve blocks serving on the bound listener until Shutdown or failure.
func (s *Server) Serve() error {
	if s.listener == nil {
		return fmt.Errorf("server is not listening")
	}

	logger.Log.Info().
		Str("addr", s.listener.Addr().String()).
		Str("content_root", s.scanner.Root()).
		Msg("Starting HTTP server")

	if err := s.server.Serve(s.listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Start binds and serves in one call, for the headless entrypoint.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Addr returns the bound address, or "" before Listen.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the browsable base URL, or "" before Listen.
func (s *Server) URL() string {
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}
