// Package llm talks to an OpenAI-compatible chat completion endpoint.  The
// rest of the system depends only on the Client interface, so tests and
// degraded deployments can swap in fakes.
package llm

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

// Message is one turn of a chat completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client generates completions from a conversation.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type httpClient struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	log         logging.Logger
}

// NewClient builds the HTTP-backed client from configuration.
func NewClient(cfg config.LLMConfig, log logging.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.ErrCodeValidation, "llm api key is required")
	}
	if cfg.Endpoint == "" || cfg.Model == "" {
		return nil, errors.New(errors.ErrCodeValidation, "llm endpoint and model are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &httpClient{
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: timeout},
		log:         log,
	}, nil
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func (c *httpClient) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode completion request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to build completion request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("language service unreachable", logging.Err(err))
		return "", errors.Wrap(err, errors.ErrCodeLLMUnavailable, "language service request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeLLMUnavailable, "failed to read completion response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := errors.ErrCodeLLMUnavailable
		if isRateLimitResponse(resp.StatusCode, raw) {
			code = errors.ErrCodeRateLimited
		}
		c.log.Warn("language service returned error status",
			logging.Int("status", resp.StatusCode),
			logging.String("model", c.model),
			logging.Duration("elapsed", time.Since(start)))
		return "", errors.New(code, fmt.Sprintf("language service returned status %d", resp.StatusCode))
	}

	var envelope completionResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeLLMMalformed, "failed to decode completion response")
	}
	if envelope.Error != nil {
		code := errors.ErrCodeLLMUnavailable
		if isRateLimitMessage(envelope.Error.Message) {
			code = errors.ErrCodeRateLimited
		}
		return "", errors.New(code, envelope.Error.Message)
	}
	if len(envelope.Choices) == 0 || strings.TrimSpace(envelope.Choices[0].Message.Content) == "" {
		return "", errors.New(errors.ErrCodeLLMEmpty, "completion response carried no content")
	}

	c.log.Debug("completion finished",
		logging.String("model", c.model),
		logging.Duration("elapsed", time.Since(start)))
	return envelope.Choices[0].Message.Content, nil
}

func isRateLimitResponse(status int, body []byte) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return isRateLimitMessage(string(body))
}

func isRateLimitMessage(msg string) bool {
	lowered := strings.ToLower(msg)
	for _, marker := range []string{"rate limit", "quota", "resource_exhausted", "too many requests"} {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// StripCodeFence removes a surrounding Markdown code fence from a model
// response, which models frequently add around JSON output.
func StripCodeFence(s string) string {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}
