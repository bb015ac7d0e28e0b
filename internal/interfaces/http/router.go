// Package http assembles the gin engine and server for the ClauseWise API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ClauseWise/internal/interfaces/http/handlers"
	"github.com/turtacn/ClauseWise/internal/interfaces/http/middleware"
	"github.com/turtacn/ClauseWise/internal/interfaces/http/response"
	"github.com/turtacn/ClauseWise/pkg/errors"
)

// RouterConfig aggregates the handlers and middleware settings needed to
// build the route tree. Nil handlers leave their routes unregistered.
type RouterConfig struct {
	// Handlers
	AnalysisHandler *handlers.AnalysisHandler
	ReportHandler   *handlers.ReportHandler
	HealthHandler   *handlers.HealthHandler

	// Middleware
	CORS    middleware.CORSConfig
	Logging middleware.LoggingConfig
	// RateLimit is nil when rate limiting is disabled.
	RateLimit *middleware.RateLimitConfig
	APIKeys   []string
	// MaxBodySize caps request bodies in bytes; 0 means unlimited.
	MaxBodySize int64

	// Infrastructure
	Logger         logging.Logger
	Metrics        *prometheus.AnalysisMetrics
	MetricsHandler http.Handler
	// MetricsPath defaults to /metrics.
	MetricsPath string
}

// NewRouter builds the engine. Global middleware runs in the order request
// id, access log, recovery, metrics, CORS; the API group adds the rate
// limit, the API key check and the body cap.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogging(cfg.Logger.Named("http"), cfg.Logging),
		middleware.Recovery(cfg.Logger),
		middleware.Metrics(cfg.Metrics),
		middleware.CORS(cfg.CORS),
	)
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, errors.NotFound("route not found"))
	})

	registerHealthRoutes(r, cfg.HealthHandler)
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	if cfg.RateLimit != nil {
		api.Use(middleware.RateLimit(*cfg.RateLimit))
	}
	api.Use(middleware.APIKey(cfg.APIKeys))
	if cfg.MaxBodySize > 0 {
		api.Use(func(c *gin.Context) {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.MaxBodySize)
			c.Next()
		})
	}

	registerAnalysisRoutes(api, cfg.AnalysisHandler)
	registerReportRoutes(api, cfg.ReportHandler)
	return r
}

func registerHealthRoutes(r gin.IRouter, h *handlers.HealthHandler) {
	if h == nil {
		return
	}
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
}

// registerAnalysisRoutes mounts the stateless analysis endpoints.
func registerAnalysisRoutes(r gin.IRouter, h *handlers.AnalysisHandler) {
	if h == nil {
		return
	}
	r.POST("/analyze", h.Analyze)
	r.POST("/documents", h.Upload)
	r.POST("/segment", h.Segment)
	r.POST("/classify", h.Classify)
	r.POST("/classify/clause", h.ClassifyClause)
	r.POST("/simplify", h.Simplify)
	r.POST("/simplify/clause", h.SimplifyClause)
	r.POST("/entities", h.Entities)
	r.POST("/summarize", h.Summarize)
	r.POST("/stats", h.Stats)
	r.POST("/clauses", h.Clauses)
	r.POST("/clauses/structure", h.Structure)
}

// registerReportRoutes mounts stored reports and clause search.
func registerReportRoutes(r gin.IRouter, h *handlers.ReportHandler) {
	if h == nil {
		return
	}
	reports := r.Group("/reports")
	reports.POST("", h.Submit)
	reports.GET("", h.List)
	reports.GET("/:id", h.Get)
	reports.DELETE("/:id", h.Delete)

	r.GET("/clauses/search", h.SearchClauses)
}

//Personal.AI order the ending
