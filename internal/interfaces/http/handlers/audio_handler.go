package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/tts"
	"github.com/turtacn/DrugRx-Intelligence/pkg/errors"
)

// AudioHandler relays answer text to the speech synthesis service.
type AudioHandler struct {
	synth tts.Synthesizer
	log   logging.Logger
}

// NewAudioHandler builds the audio handler.
func NewAudioHandler(synth tts.Synthesizer, log logging.Logger) *AudioHandler {
	return &AudioHandler{synth: synth, log: log}
}

type audioRequest struct {
	Text string `json:"text"`
}

// Generate handles POST /api/v1/generate-audio, returning the synthesized
// speech as an MPEG audio body.
func (h *AudioHandler) Generate(c *gin.Context) {
	if !h.synth.Enabled() {
		writeError(c, errors.New(errors.ErrCodeServiceUnavailable, "speech synthesis is not configured"))
		return
	}

	var req audioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeBadRequest(c, "text is required")
		return
	}

	audio, err := h.synth.Synthesize(c.Request.Context(), req.Text)
	if err != nil {
		h.log.Warn("speech synthesis failed", logging.Err(err))
		writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "audio/mpeg", audio)
}
