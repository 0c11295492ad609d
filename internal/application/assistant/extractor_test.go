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

func TestExtract(t *testing.T) {
	t.Run("parses structured output", func(t *testing.T) {
		client := &fakeLLM{completeFn: func(ctx context.Context, _ []llm.Message) (string, error) {
			return `{"drugs_mentioned":["Warfarin","Aspirin"],"intent":"asking_about_interactions","query_context":"safety of combining"}`, nil
		}}
		e := NewExtractor(client, nopLog())

		result, ok := e.Extract(context.Background(), "can I take warfarin with aspirin?")
		assert.True(t, ok)
		assert.Equal(t, []string{"warfarin", "aspirin"}, result.DrugsMentioned)
		assert.Equal(t, drug.IntentInteractions, result.Intent)
		assert.Equal(t, "safety of combining", result.QueryContext)
	})

	t.Run("strips code fences", func(t *testing.T) {
		client := &fakeLLM{completeFn: func(ctx context.Context, _ []llm.Message) (string, error) {
			return "```json\n{\"drugs_mentioned\":[\"Ibuprofen\"],\"intent\":\"checking_safety\"}\n```", nil
		}}
		e := NewExtractor(client, nopLog())

		result, ok := e.Extract(context.Background(), "is ibuprofen safe?")
		assert.True(t, ok)
		assert.Equal(t, []string{"ibuprofen"}, result.DrugsMentioned)
		assert.Equal(t, drug.IntentSafety, result.Intent)
	})

	t.Run("canonicalizes synonym pairs to one entry", func(t *testing.T) {
		client := &fakeLLM{completeFn: func(ctx context.Context, _ []llm.Message) (string, error) {
			return `{"drugs_mentioned":["Paracetamol","Acetaminophen"],"intent":"general_question"}`, nil
		}}
		e := NewExtractor(client, nopLog())

		result, _ := e.Extract(context.Background(), "paracetamol or acetaminophen?")
		assert.Equal(t, []string{"acetaminophen"}, result.DrugsMentioned)
	})

	t.Run("malformed payload degrades to empty", func(t *testing.T) {
		client := &fakeLLM{completeFn: func(ctx context.Context, _ []llm.Message) (string, error) {
			return "I think you mean warfarin and aspirin!", nil
		}}
		e := NewExtractor(client, nopLog())

		result, ok := e.Extract(context.Background(), "whatever")
		assert.True(t, ok, "the call itself succeeded")
		assert.Empty(t, result.DrugsMentioned)
		assert.Equal(t, drug.IntentGeneral, result.Intent)
	})

	t.Run("upstream failure degrades to empty", func(t *testing.T) {
		client := &fakeLLM{completeFn: func(ctx context.Context, _ []llm.Message) (string, error) {
			return "", errors.New(errors.ErrCodeRateLimited, "quota exceeded")
		}}
		e := NewExtractor(client, nopLog())

		result, ok := e.Extract(context.Background(), "whatever")
		assert.False(t, ok)
		assert.Empty(t, result.DrugsMentioned)
		assert.Equal(t, drug.IntentGeneral, result.Intent)
	})

	t.Run("unknown intent falls back to general_question", func(t *testing.T) {
		client := &fakeLLM{completeFn: func(ctx context.Context, _ []llm.Message) (string, error) {
			return `{"drugs_mentioned":[],"intent":"something_new"}`, nil
		}}
		e := NewExtractor(client, nopLog())

		result, _ := e.Extract(context.Background(), "hello")
		assert.Equal(t, drug.IntentGeneral, result.Intent)
	})

	t.Run("prompt carries the user message", func(t *testing.T) {
		client := &fakeLLM{completeFn: func(ctx context.Context, _ []llm.Message) (string, error) {
			return `{"drugs_mentioned":[]}`, nil
		}}
		e := NewExtractor(client, nopLog())

		_, _ = e.Extract(context.Background(), "does omeprazole clash with anything?")
		require.Len(t, client.lastInput, 1)
		assert.Contains(t, client.lastInput[0].Content, "omeprazole")
	})
}
