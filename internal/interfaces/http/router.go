// Package http wires the gin route tree and the HTTP server around the
// assistant pipeline.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/DrugRx-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/DrugRx-Intelligence/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for the
// complete route tree.
type RouterConfig struct {
	ChatHandler   *handlers.ChatHandler
	HealthHandler *handlers.HealthHandler
	AudioHandler  *handlers.AudioHandler
	StatsHandler  *handlers.StatsHandler

	CORS    middleware.CORSConfig
	Logging middleware.LoggingConfig

	Logger     logging.Logger
	Collector  prometheus.MetricsCollector
	AppMetrics *prometheus.AppMetrics

	// Mode is the gin mode: debug, release, or test.
	Mode string
}

// NewRouter constructs the route tree: global middleware, public probes, the
// metrics endpoint, and the versioned API group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	switch cfg.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	}
	if cfg.AppMetrics != nil {
		r.Use(middleware.RequestMetrics(cfg.AppMetrics))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Collector != nil {
		r.GET("/metrics", gin.WrapH(cfg.Collector.Handler()))
	}

	api := r.Group("/api/v1")
	{
		if cfg.ChatHandler != nil {
			api.POST("/chat", cfg.ChatHandler.Chat)
			api.GET("/cache", cfg.ChatHandler.CacheSizes)
			api.POST("/cache/reset", cfg.ChatHandler.ResetCache)
		}
		if cfg.AudioHandler != nil {
			api.POST("/generate-audio", cfg.AudioHandler.Generate)
		}
		if cfg.StatsHandler != nil {
			api.GET("/stats", cfg.StatsHandler.Stats)
			api.GET("/schema", cfg.StatsHandler.Schema)
		}
	}

	return r
}
