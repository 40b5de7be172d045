// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mbd888/riskscore/internal/audit"
	"github.com/mbd888/riskscore/internal/config"
	"github.com/mbd888/riskscore/internal/health"
	"github.com/mbd888/riskscore/internal/idgen"
	"github.com/mbd888/riskscore/internal/logging"
	"github.com/mbd888/riskscore/internal/metrics"
	"github.com/mbd888/riskscore/internal/model"
	"github.com/mbd888/riskscore/internal/ratelimit"
	"github.com/mbd888/riskscore/internal/scoring"
	"github.com/mbd888/riskscore/internal/security"
	"github.com/mbd888/riskscore/internal/traces"
	"github.com/mbd888/riskscore/internal/validation"
)

// Version is the service version reported by the info and health endpoints.
const Version = "0.1.0"

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg            *config.Config
	predictor      model.Predictor
	trail          *audit.Trail
	scoringSvc     *scoring.Service
	healthReg      *health.Registry
	rateLimiter    *ratelimit.Limiter
	router         *gin.Engine
	httpSrv        *http.Server
	logger         *slog.Logger
	tracerShutdown func(context.Context) error
	startTime      time.Time

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithPredictor sets a custom predictor (for testing)
func WithPredictor(p model.Predictor) Option {
	return func(s *Server) {
		s.predictor = p
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:       cfg,
		logger:    logging.New(cfg.LogLevel, "json"),
		startTime: time.Now(),
	}

	// Apply options first (may set predictor/logger)
	for _, opt := range opts {
		opt(s)
	}

	// Context for initialization
	ctx := context.Background()

	// Load the predictor artifact if one wasn't injected. A load failure is
	// fatal: the service never accepts scoring traffic without a model.
	if s.predictor == nil {
		p, err := model.Load(cfg.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load model: %w", err)
		}
		s.predictor = p
		s.logger.Info("model loaded",
			"path", cfg.ModelPath,
			"version", cfg.ModelVersion,
		)
	}

	// Bounded in-memory audit trail
	s.trail = audit.NewTrail(cfg.AuditCapacity)
	s.logger.Info("audit trail enabled", "capacity", cfg.AuditCapacity)

	// Scoring pipeline
	s.scoringSvc = scoring.NewService(s.predictor, s.trail, cfg.ModelVersion, cfg.Env)

	// Health checkers
	s.healthReg = health.NewRegistry()
	s.healthReg.Register("model", func(ctx context.Context) health.Status {
		if !s.scoringSvc.Ready() {
			return health.Status{Name: "model", Healthy: false, Detail: "not loaded"}
		}
		return health.Status{Name: "model", Healthy: true}
	})
	s.healthReg.Register("audit", func(ctx context.Context) health.Status {
		return health.Status{Name: "audit", Healthy: true, Detail: fmt.Sprintf("%d entries", s.trail.Size())}
	})

	// Tracing (no-op unless an OTLP endpoint is configured)
	shutdown, err := traces.Init(ctx, cfg.OTLPEndpoint, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	s.tracerShutdown = shutdown

	// Configure gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.healthy.Store(true)

	return s, nil
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS (allow all origins for demo - restrict in production)
	s.router.Use(security.CORSMiddleware([]string{"*"}))

	// Request size limit
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	// Rate limiting
	limiterCfg := ratelimit.DefaultConfig()
	limiterCfg.RequestsPerMinute = s.cfg.RateLimitRPM
	s.rateLimiter = ratelimit.New(limiterCfg)
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Correlation ID
	s.router.Use(s.correlationIDMiddleware())

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) correlationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for existing correlation ID (from upstream gateway, etc.)
		correlationID := c.GetHeader("X-Correlation-ID")
		if correlationID == "" {
			correlationID = idgen.New()
		}

		// Add to context
		ctx := logging.WithCorrelationID(c.Request.Context(), correlationID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

		// Set response header
		c.Header("X-Correlation-ID", correlationID)

		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())

		// Log level based on status code
		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// Health & metrics endpoints
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/health/live", s.livenessHandler)
	s.router.GET("/health/ready", s.readinessHandler)
	s.router.GET("/ready", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	// Service info
	s.router.GET("/", s.infoHandler)

	// V1 API group
	v1 := s.router.Group("/v1")
	scoring.NewHandler(s.scoringSvc).RegisterRoutes(v1)
	audit.NewHandler(s.trail).RegisterRoutes(v1)
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	healthy, statuses := s.healthReg.CheckAll(ctx)

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":         status,
		"model_loaded":   s.scoringSvc.Ready(),
		"model_version":  s.cfg.ModelVersion,
		"environment":    s.cfg.Env,
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"checks":         statuses,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() || !s.scoringSvc.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) infoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":          "riskscore",
		"description":   "Real-time transaction fraud risk scoring",
		"version":       Version,
		"model_version": s.cfg.ModelVersion,
		"endpoints": gin.H{
			"score":   "POST /v1/score",
			"audit":   "GET /v1/audit-logs",
			"health":  "GET /health",
			"metrics": "GET /metrics",
		},
	})
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Run starts the HTTP server with graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to catch server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.logger.Info("starting server",
			"port", s.cfg.Port,
			"env", s.cfg.Env,
			"model_version", s.cfg.ModelVersion,
		)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.logger.Info("rate limiter stopped")
	}

	// Flush traces
	if s.tracerShutdown != nil {
		if err := s.tracerShutdown(ctx); err != nil {
			s.logger.Error("tracer shutdown error", "error", err)
		}
	}

	s.logger.Info("server stopped", "audit_entries", s.trail.Appended())
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}
