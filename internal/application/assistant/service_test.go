package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/DrugRx-Intelligence/internal/domain/drug"
	"github.com/turtacn/DrugRx-Intelligence/internal/intelligence/llm"
	"github.com/turtacn/DrugRx-Intelligence/pkg/errors"
)

func newService(client llm.Client, repo drug.Repository, metrics Metrics) (*Service, *LookupCache) {
	cache := NewLookupCache()
	assembler := NewAssembler(
		NewExtractor(client, nopLog()),
		NewDrugResolver(repo, cache, nopLog()),
		NewIngredientResolver(client, repo, cache, nopLog()),
		NewInteractionChecker(repo, cache, nopLog()),
		nopLog(),
	)
	return NewService(assembler, client, cache, metrics, nopLog()), cache
}

func TestChatEmptyMessage(t *testing.T) {
	client := &fakeLLM{}
	metrics := &fakeMetrics{}
	svc, _ := newService(client, &fakeRepo{}, metrics)

	resp := svc.Chat(context.Background(), ChatRequest{Message: "   "})

	require.Len(t, resp.Messages, 1)
	assert.Equal(t, emptyMessageReplyEN, resp.Messages[0])
	assert.Equal(t, EmotionCurious, resp.Emotion)
	assert.Zero(t, client.calls, "no dependency calls for an empty message")
	assert.Len(t, metrics.observations, 1)
}

func TestChatEmptyMessageIndonesian(t *testing.T) {
	svc, _ := newService(&fakeLLM{}, &fakeRepo{}, nil)

	resp := svc.Chat(context.Background(), ChatRequest{Message: "", Language: "id"})
	assert.Equal(t, emptyMessageReplyID, resp.Messages[0])
	assert.Equal(t, EmotionCurious, resp.Emotion)
}

func TestChatHappyPath(t *testing.T) {
	responses := []string{
		`{"drugs_mentioned":["Warfarin","Ibuprofen"],"intent":"asking_about_interactions"}`,
		"[concerned]: These two can interact. || Please check with your doctor before combining them.",
	}
	i := 0
	client := &fakeLLM{completeFn: func(ctx context.Context, _ []llm.Message) (string, error) {
		out := responses[i]
		i++
		return out, nil
	}}
	repo := fixedRepo(
		[]drug.Record{{ID: "DB00682", Name: "Warfarin"}, {ID: "DB01050", Name: "Ibuprofen"}},
		[]drug.Interaction{{DrugA: "Warfarin", DrugB: "Ibuprofen", Description: "Bleeding risk."}},
	)
	metrics := &fakeMetrics{}
	svc, _ := newService(client, repo, metrics)

	resp := svc.Chat(context.Background(), ChatRequest{Message: "warfarin and ibuprofen together?", UserName: "Sam"})

	require.Len(t, resp.Messages, 2)
	assert.Equal(t, EmotionConcerned, resp.Emotion)
	assert.Equal(t, "These two can interact.", resp.Messages[0])
	assert.Contains(t, resp.Messages[1], noteVerified)
	assert.False(t, resp.Degraded)

	require.Len(t, metrics.observations, 1)
	obs := metrics.observations[0]
	assert.Equal(t, 1, obs.DBAttempted)
	assert.Equal(t, 1, obs.DBSuccessful)
	assert.Equal(t, 2, obs.LLMAttempted)
	assert.Equal(t, 2, obs.LLMSuccessful)
	assert.Equal(t, 2, obs.InteractionsFoundDB)
	assert.Equal(t, EmotionConcerned, obs.Emotion)
}

func TestChatGenerationRateLimited(t *testing.T) {
	calls := 0
	client := &fakeLLM{completeFn: func(ctx context.Context, _ []llm.Message) (string, error) {
		calls++
		if calls == 1 {
			return `{"drugs_mentioned":[],"intent":"general_question"}`, nil
		}
		return "", errors.New(errors.ErrCodeRateLimited, "quota exceeded")
	}}
	svc, _ := newService(client, &fakeRepo{}, nil)

	resp := svc.Chat(context.Background(), ChatRequest{Message: "hello"})

	assert.True(t, resp.Degraded)
	assert.Equal(t, EmotionConcerned, resp.Emotion)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, degradedRateLimitEN, resp.Messages[0])
	assert.NotEqual(t, degradedConnectEN, resp.Messages[0])
}

func TestChatGenerationConnectivityFailure(t *testing.T) {
	calls := 0
	client := &fakeLLM{completeFn: func(ctx context.Context, _ []llm.Message) (string, error) {
		calls++
		if calls == 1 {
			return `{"drugs_mentioned":[],"intent":"general_question"}`, nil
		}
		return "", errors.New(errors.ErrCodeLLMUnavailable, "connection refused")
	}}
	metrics := &fakeMetrics{}
	svc, _ := newService(client, &fakeRepo{}, metrics)

	resp := svc.Chat(context.Background(), ChatRequest{Message: "hi", Language: "id"})

	assert.True(t, resp.Degraded)
	assert.Equal(t, EmotionConcerned, resp.Emotion)
	assert.Equal(t, degradedConnectID, resp.Messages[0])

	require.Len(t, metrics.observations, 1)
	assert.True(t, metrics.observations[0].Degraded)
}

func TestChatCallerDrugListOnly(t *testing.T) {
	responses := []string{"[neutral]: Both are in my records."}
	i := 0
	client := &fakeLLM{completeFn: func(ctx context.Context, _ []llm.Message) (string, error) {
		out := responses[i]
		i++
		return out, nil
	}}
	repo := fixedRepo([]drug.Record{{ID: "1", Name: "Warfarin"}, {ID: "2", Name: "Aspirin"}}, nil)
	svc, _ := newService(client, repo, nil)

	resp := svc.Chat(context.Background(), ChatRequest{DrugList: []string{"Warfarin", "Aspirin"}})

	assert.Equal(t, EmotionNeutral, resp.Emotion)
	assert.Equal(t, []string{"Warfarin", "Aspirin"}, resp.Metadata.FoundDrugs)
	assert.Equal(t, 1, client.calls, "only the generation call, no extraction without a message")
}

func TestResetCache(t *testing.T) {
	svc, cache := newService(&fakeLLM{}, &fakeRepo{}, nil)
	cache.SetDrug("aspirin", drug.Record{Name: "Aspirin"})

	svc.ResetCache()
	assert.Equal(t, 0, svc.CacheSizes()["drugs"])
}
