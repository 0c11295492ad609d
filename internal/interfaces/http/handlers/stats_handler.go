package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/DrugRx-Intelligence/internal/domain/drug"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// StatsHandler exposes the rolling runtime statistics and the knowledge-store
// schema summary for operational inspection.
type StatsHandler struct {
	stats *prometheus.RuntimeStats
	repo  drug.Repository
	log   logging.Logger
}

// NewStatsHandler builds the stats handler.  repo may be nil when no store is
// configured.
func NewStatsHandler(stats *prometheus.RuntimeStats, repo drug.Repository, log logging.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, repo: repo, log: log}
}

// Stats handles GET /api/v1/stats.
func (h *StatsHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats.Stats())
}

// Schema handles GET /api/v1/schema.
func (h *StatsHandler) Schema(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusOK, gin.H{"available": false})
		return
	}

	summary, err := h.repo.SchemaSummary(c.Request.Context())
	if err != nil {
		h.log.Warn("schema summary failed", logging.Err(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
