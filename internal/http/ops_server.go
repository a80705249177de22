package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/studentsync/tokenizer/internal/metrics"
)

// OpsServerConfig carries the settings for the operational HTTP server.
type OpsServerConfig struct {
	Host             string
	Port             int
	Namespace        string
	CORSEnabled      bool
	CORSAllowOrigins string
}

// OpsServer serves Prometheus metrics and health endpoints.
type OpsServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewOpsServer creates an OpsServer exposing /metrics, /health and /ready.
// When metricsProvider is nil the /metrics route is not registered.
func NewOpsServer(
	cfg OpsServerConfig,
	logger *slog.Logger,
	metricsProvider *metrics.Provider,
) *OpsServer {
	router := gin.New()
	router.Use(requestid.New())
	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.Namespace))
		router.GET("/metrics", gin.WrapH(metricsProvider.Handler()))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		select {
		case <-c.Request.Context().Done():
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		default:
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
		}
	})

	return &OpsServer{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *OpsServer) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the operational HTTP server.
func (s *OpsServer) Start(ctx context.Context) error {
	s.logger.Info("starting ops server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start ops server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the operational HTTP server.
func (s *OpsServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down ops server")
	return s.server.Shutdown(ctx)
}
