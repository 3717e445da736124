// Package http provides the HTTP server exposing the key service using the
// Gin web framework, with structured logging (slog) and graceful shutdown.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/allisson/aegis/internal/config"
	keysHTTP "github.com/allisson/aegis/internal/keys/http"
	"github.com/allisson/aegis/internal/metrics"
)

// Server represents the HTTP server.
type Server struct {
	server *http.Server
	logger *slog.Logger
	router *gin.Engine
}

// NewServer creates a new HTTP server with all routes and middleware configured.
func NewServer(
	cfg *config.Config,
	keyHandler *keysHTTP.KeyHandler,
	metricsProvider *metrics.Provider,
	logger *slog.Logger,
) *Server {
	// Create Gin engine without default middleware
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(LoggingMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.RateLimitEnabled {
		router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	}

	// Operational endpoints
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metricsProvider.Handler()))

	// Key service endpoints
	v1 := router.Group("/v1")
	v1.POST("/dbs/:uuid/init", keyHandler.InitHandler)
	v1.POST("/dbs/:uuid/open", keyHandler.OpenHandler)
	v1.POST("/dbs/:uuid/encrypt", keyHandler.EncryptHandler)
	v1.POST("/dbs/:uuid/decrypt", keyHandler.DecryptHandler)

	return &Server{
		logger: logger,
		router: router,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Router returns the underlying Gin engine, used by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start begins serving requests. It blocks until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("http server starting", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.server.Shutdown(ctx)
}
