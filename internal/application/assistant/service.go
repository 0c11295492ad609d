package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DrugRx-Intelligence/internal/intelligence/llm"
	"github.com/turtacn/DrugRx-Intelligence/pkg/errors"
)

// ChatRequest is one user turn entering the pipeline.
type ChatRequest struct {
	Message  string        `json:"message"`
	History  []llm.Message `json:"history"`
	Language string        `json:"language"`
	UserName string        `json:"userName"`
	DrugList []string      `json:"drugList"`
}

// ChatResponse is the pipeline's answer: one or more chat bubbles plus the
// canonical emotion driving the persona's expression.
type ChatResponse struct {
	Messages []string `json:"messages"`
	Emotion  Emotion  `json:"emotion"`
	Metadata Metadata `json:"metadata"`
	Degraded bool     `json:"degraded,omitempty"`
}

// RequestObservation is the per-request measurement handed to the metrics
// collaborator, fire and forget.
type RequestObservation struct {
	ResponseTime         time.Duration
	DBAttempted          int
	DBSuccessful         int
	LLMAttempted         int
	LLMSuccessful        int
	InteractionsFoundDB  int
	InteractionsFoundLLM int
	Degraded             bool
	RateLimited          bool
	Emotion              Emotion
}

// Metrics receives one observation per completed request.
type Metrics interface {
	ObserveRequest(obs RequestObservation)
}

// NopMetrics discards observations.
type NopMetrics struct{}

func (NopMetrics) ObserveRequest(RequestObservation) {}

// Fixed replies for requests the pipeline answers without generation.
const (
	emptyMessageReplyEN = "I'd love to help! Please tell me the name of the medicine you're curious about."
	emptyMessageReplyID = "Aku siap membantu! Sebutkan dulu nama obat yang ingin kamu tanyakan ya."

	degradedRateLimitEN = "I'm sorry, my knowledge service is temporarily unavailable because of high demand. Please try again in a moment."
	degradedRateLimitID = "Maaf, layanan pengetahuanku sedang tidak tersedia sementara karena permintaan yang tinggi. Coba lagi sebentar ya."

	degradedConnectEN = "I'm sorry, I'm having trouble connecting to my knowledge service right now. Please try again shortly."
	degradedConnectID = "Maaf, aku sedang kesulitan terhubung ke layanan pengetahuanku. Coba lagi sebentar ya."
)

// Service orchestrates one chat turn end to end.
type Service struct {
	assembler *Assembler
	client    llm.Client
	cache     *LookupCache
	metrics   Metrics
	log       logging.Logger
}

func NewService(assembler *Assembler, client llm.Client, cache *LookupCache, metrics Metrics, log logging.Logger) *Service {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Service{
		assembler: assembler,
		client:    client,
		cache:     cache,
		metrics:   metrics,
		log:       log,
	}
}

// Chat runs the full pipeline for one request: evidence assembly, answer
// generation, and post-processing.  Dependency failures degrade the evidence;
// only a failed generation call is surfaced, as a fixed apology with a
// concerned emotion rather than an error.
func (s *Service) Chat(ctx context.Context, req ChatRequest) *ChatResponse {
	start := time.Now()

	if strings.TrimSpace(req.Message) == "" && len(req.DrugList) == 0 {
		resp := &ChatResponse{
			Messages: []string{localize(req.Language, emptyMessageReplyEN, emptyMessageReplyID)},
			Emotion:  EmotionCurious,
		}
		s.observe(start, resp, false)
		return resp
	}

	bundle := s.assembler.Assemble(ctx, req.Message, req.DrugList)

	question := req.Message
	if strings.TrimSpace(question) == "" {
		question = "Please tell me about these medicines: " + strings.Join(req.DrugList, ", ")
	}

	messages := llm.BuildAnswerMessages(req.Language, req.UserName, req.History, bundle.Render(), question)
	bundle.Metadata.LLMAttempted++
	generated, err := s.client.Complete(ctx, messages)
	if err != nil {
		s.log.Warn("answer generation failed, returning degraded reply",
			logging.Err(err),
			logging.Bool("rate_limited", errors.IsRateLimited(err)))
		resp := s.degradedResponse(req.Language, err, bundle)
		s.observe(start, resp, errors.IsRateLimited(err))
		return resp
	}
	bundle.Metadata.LLMSuccessful++

	chatMessages, emotion := PostProcess(generated, bundle)
	resp := &ChatResponse{
		Messages: chatMessages,
		Emotion:  emotion,
		Metadata: bundle.Metadata,
	}
	s.observe(start, resp, false)
	return resp
}

// ResetCache clears the process-wide lookup cache.
func (s *Service) ResetCache() {
	s.cache.Reset()
}

// CacheSizes reports per-map lookup cache entry counts.
func (s *Service) CacheSizes() map[string]int {
	return s.cache.Sizes()
}

func (s *Service) degradedResponse(language string, err error, bundle *EvidenceBundle) *ChatResponse {
	var message string
	if errors.IsRateLimited(err) {
		message = localize(language, degradedRateLimitEN, degradedRateLimitID)
	} else {
		message = localize(language, degradedConnectEN, degradedConnectID)
	}
	return &ChatResponse{
		Messages: []string{message},
		Emotion:  EmotionConcerned,
		Metadata: bundle.Metadata,
		Degraded: true,
	}
}

func (s *Service) observe(start time.Time, resp *ChatResponse, rateLimited bool) {
	s.metrics.ObserveRequest(RequestObservation{
		ResponseTime:         time.Since(start),
		DBAttempted:          resp.Metadata.DBAttempted,
		DBSuccessful:         resp.Metadata.DBSuccessful,
		LLMAttempted:         resp.Metadata.LLMAttempted,
		LLMSuccessful:        resp.Metadata.LLMSuccessful,
		InteractionsFoundDB:  resp.Metadata.InteractionsFoundDB,
		InteractionsFoundLLM: resp.Metadata.InteractionsFoundLLM,
		Degraded:             resp.Degraded,
		RateLimited:          rateLimited,
		Emotion:              resp.Emotion,
	})
}

func localize(language, english, indonesian string) string {
	if strings.EqualFold(strings.TrimSpace(language), llm.LanguageIndonesian) {
		return indonesian
	}
	return english
}
