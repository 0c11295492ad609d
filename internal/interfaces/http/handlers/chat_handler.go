package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/DrugRx-Intelligence/internal/application/assistant"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
)

// ChatHandler serves the conversational endpoint.
type ChatHandler struct {
	service *assistant.Service
	log     logging.Logger
}

// NewChatHandler builds the chat handler.
func NewChatHandler(service *assistant.Service, log logging.Logger) *ChatHandler {
	return &ChatHandler{service: service, log: log}
}

// Chat handles POST /api/v1/chat.  The pipeline never surfaces dependency
// failures as HTTP errors; degraded answers still return 200 with the
// degraded flag set.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req assistant.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	req.DrugList = trimmedList(req.DrugList)
	resp := h.service.Chat(c.Request.Context(), req)
	c.JSON(http.StatusOK, resp)
}

// CacheSizes handles GET /api/v1/cache.
func (h *ChatHandler) CacheSizes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"caches": h.service.CacheSizes()})
}

// ResetCache handles POST /api/v1/cache/reset.
func (h *ChatHandler) ResetCache(c *gin.Context) {
	h.service.ResetCache()
	h.log.Info("lookup cache reset",
		logging.String("remote_addr", c.ClientIP()))
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func trimmedList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
