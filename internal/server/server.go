// Package server is the local appointment portal. It serves every route
// of the route table behind the navigation guard and exposes the session
// store over a small JSON API.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/clinicgate/clinicgate/internal/config"
	"github.com/clinicgate/clinicgate/internal/router"
	"github.com/clinicgate/clinicgate/internal/session"
)

// SessionStore is the session store as the portal uses it
type SessionStore interface {
	router.SessionReader
	Login(ctx context.Context, username, password string) session.Result
	Register(ctx context.Context, payload map[string]any) session.Result
	Logout(ctx context.Context) session.Result
	Close() error
}

// Server represents the HTTP server
type Server struct {
	router  *gin.Engine
	config  *config.Config
	logger  zerolog.Logger
	store   SessionStore
	table   *router.Table
	guard   *router.Guard
	version string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, store SessionStore, table *router.Table, version string) *Server {
	server := &Server{
		config:  cfg,
		logger:  zlog,
		store:   store,
		table:   table,
		guard:   router.NewGuard(store, zlog),
		version: version,
	}

	// Setup router
	server.setupRouter()

	return server
}

// Handler returns the configured gin engine
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	// Set Gin mode based on environment
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// CORS middleware
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.HTTP.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	s.router.GET("/health", s.healthCheck)

	// Session API
	api := s.router.Group("/api/session")
	{
		api.GET("", s.getSession)
		api.POST("/login", s.login)
		api.POST("/register", s.register)
		api.POST("/logout", s.logout)
	}

	// Pages, each behind the guard
	for _, route := range s.table.Routes() {
		if route.Redirect != "" {
			s.router.GET(route.Path, staticRedirect(route.Redirect))
			continue
		}
		s.router.GET(route.Path, GuardMiddleware(s.guard, route, s.logger), s.page)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
	})
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "clinicgate-portal",
		"version":   s.version,
	})
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM
func (s *Server) Start() error {
	addr := s.config.HTTP.Addr

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second, // login waits on the upstream API
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	case err := <-errChan:
		s.logger.Error().Err(err).Msg("HTTP server error")
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Error closing session store")
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
