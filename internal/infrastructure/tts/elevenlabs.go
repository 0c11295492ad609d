// Package tts relays answer text to the ElevenLabs speech synthesis API and
// returns the rendered audio.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/turtacn/DrugRx-Intelligence/internal/config"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DrugRx-Intelligence/pkg/errors"
)

const defaultModelID = "eleven_multilingual_v2"

// Synthesizer renders text to spoken audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Enabled() bool
}

type elevenLabsClient struct {
	apiKey  string
	voiceID string
	baseURL string
	client  *http.Client
	log     logging.Logger
}

// NewSynthesizer builds the ElevenLabs-backed synthesizer.  With no API key
// configured it returns a disabled synthesizer that rejects every call, so
// the rest of the system does not need to special-case missing credentials.
func NewSynthesizer(cfg config.TTSConfig, log logging.Logger) Synthesizer {
	if cfg.APIKey == "" {
		return &disabledSynthesizer{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &elevenLabsClient{
		apiKey:  cfg.APIKey,
		voiceID: cfg.VoiceID,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type synthesisRequest struct {
	Text          string         `json:"text"`
	ModelID       string         `json:"model_id"`
	VoiceSettings map[string]any `json:"voice_settings,omitempty"`
}

func (c *elevenLabsClient) Enabled() bool { return true }

func (c *elevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.ErrCodeValidation, "text is required")
	}

	body, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: defaultModelID,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode synthesis request")
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build synthesis request")
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "speech synthesis request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("speech synthesis returned error status", logging.Int("status", resp.StatusCode))
		return nil, errors.New(errors.ErrCodeServiceUnavailable,
			fmt.Sprintf("speech synthesis returned status %d", resp.StatusCode))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to read synthesis response")
	}
	return audio, nil
}

type disabledSynthesizer struct{}

func (disabledSynthesizer) Enabled() bool { return false }

func (disabledSynthesizer) Synthesize(context.Context, string) ([]byte, error) {
	return nil, errors.New(errors.ErrCodeServiceUnavailable, "speech synthesis is not configured")
}
