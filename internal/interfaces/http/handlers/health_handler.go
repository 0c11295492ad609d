package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	store   HealthChecker
	log     logging.Logger
	timeout time.Duration
}

// NewHealthHandler builds the health handler.  store may be nil, in which
// case readiness reports only process liveness.
func NewHealthHandler(store HealthChecker, log logging.Logger) *HealthHandler {
	return &HealthHandler{store: store, log: log, timeout: 5 * time.Second}
}

// Liveness handles GET /healthz.  It answers as long as the process serves
// requests.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz.  The knowledge store being down degrades the
// answer quality but does not stop the pipeline, so an unreachable store is
// reported as degraded rather than failing the probe.
func (h *HealthHandler) Readiness(c *gin.Context) {
	status := "ok"
	storeStatus := "ok"

	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		if err := h.store.HealthCheck(ctx); err != nil {
			h.log.Warn("knowledge store health check failed", logging.Err(err))
			status = "degraded"
			storeStatus = "unavailable"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"components": gin.H{
			"knowledge_store": storeStatus,
		},
	})
}
