package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/DrugRx-Intelligence/internal/application/assistant"
	"github.com/turtacn/DrugRx-Intelligence/internal/config"
	"github.com/turtacn/DrugRx-Intelligence/internal/domain/drug"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/tts"
	"github.com/turtacn/DrugRx-Intelligence/internal/intelligence/llm"
	"github.com/turtacn/DrugRx-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/DrugRx-Intelligence/internal/interfaces/http/middleware"
)

// queueLLM replays canned completions in order.
type queueLLM struct {
	replies []string
}

func (q *queueLLM) Complete(context.Context, []llm.Message) (string, error) {
	if len(q.replies) == 0 {
		return "[neutral] I have nothing more to add.", nil
	}
	reply := q.replies[0]
	q.replies = q.replies[1:]
	return reply, nil
}

// emptyRepo is a reachable store with no data.
type emptyRepo struct{}

func (emptyRepo) FindByName(context.Context, string) (*drug.Record, error) { return nil, nil }
func (emptyRepo) SearchByKeyword(context.Context, string) ([]drug.Record, error) {
	return nil, nil
}
func (emptyRepo) FindInteractions(context.Context, []string) ([]drug.Interaction, error) {
	return nil, nil
}
func (emptyRepo) ImportInteractions(context.Context, []drug.InteractionRow) (int, error) {
	return 0, nil
}
func (emptyRepo) SchemaSummary(context.Context) (*drug.SchemaSummary, error) {
	return &drug.SchemaSummary{Labels: []string{"Drug"}}, nil
}
func (emptyRepo) HealthCheck(context.Context) error { return nil }

func newTestRouter(t *testing.T, client llm.Client) *gin.Engine {
	t.Helper()
	log := logging.NewNopLogger()
	repo := emptyRepo{}
	cache := assistant.NewLookupCache()

	assembler := assistant.NewAssembler(
		assistant.NewExtractor(client, log),
		assistant.NewDrugResolver(repo, cache, log),
		assistant.NewIngredientResolver(client, repo, cache, log),
		assistant.NewInteractionChecker(repo, cache, log),
		log,
	)
	service := assistant.NewService(assembler, client, cache, assistant.NopMetrics{}, log)

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "drugrx"}, log)
	require.NoError(t, err)
	stats := prometheus.NewRuntimeStats()

	return NewRouter(RouterConfig{
		ChatHandler:   handlers.NewChatHandler(service, log),
		HealthHandler: handlers.NewHealthHandler(repo, log),
		AudioHandler:  handlers.NewAudioHandler(tts.NewSynthesizer(config.TTSConfig{}, log), log),
		StatsHandler:  handlers.NewStatsHandler(stats, repo, log),
		CORS:          middleware.DefaultCORSConfig(),
		Logging:       middleware.DefaultLoggingConfig(),
		Logger:        log,
		Collector:     collector,
		AppMetrics:    prometheus.NewAppMetrics(collector),
		Mode:          gin.TestMode,
	})
}

func TestChatEndpoint(t *testing.T) {
	client := &queueLLM{replies: []string{
		`{"drugs_mentioned": [], "intent": "general_question", "query_context": "greeting"}`,
		"[happy] Hello! How can I help you with your medicines today?",
	}}
	router := newTestRouter(t, client)

	body, _ := json.Marshal(assistant.ChatRequest{Message: "hi Karin"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))

	var resp assistant.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Messages)
	assert.Equal(t, assistant.EmotionHappy, resp.Emotion)
	assert.False(t, resp.Degraded)
}

func TestChatEndpointRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(t, &queueLLM{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "COMMON_005")
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, &queueLLM{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "knowledge_store")
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, &queueLLM{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCacheEndpoints(t *testing.T) {
	router := newTestRouter(t, &queueLLM{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "caches")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/reset", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reset")
}

func TestStatsAndSchemaEndpoints(t *testing.T) {
	router := newTestRouter(t, &queueLLM{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "total_requests")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/schema", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Drug")
}

func TestAudioEndpointUnconfigured(t *testing.T) {
	router := newTestRouter(t, &queueLLM{})

	body := []byte(`{"text": "Warfarin interacts with ibuprofen."}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate-audio", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, &queueLLM{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.Header.Set("Origin", "https://app.example.com")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
