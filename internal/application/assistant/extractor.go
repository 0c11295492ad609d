package assistant

import (
	"context"
	"encoding/json"

	"github.com/turtacn/DrugRx-Intelligence/internal/domain/drug"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DrugRx-Intelligence/internal/intelligence/llm"
)

// Extractor pulls candidate drug names and user intent out of free text.
// Extraction never fails: any upstream error or malformed payload degrades to
// an empty result with general_question intent.  The returned flag reports
// whether the language service call itself succeeded, for metrics.
type Extractor interface {
	Extract(ctx context.Context, message string) (drug.ExtractionResult, bool)
}

type llmExtractor struct {
	client llm.Client
	log    logging.Logger
}

// NewExtractor builds the language-service-backed extractor.
func NewExtractor(client llm.Client, log logging.Logger) Extractor {
	return &llmExtractor{client: client, log: log}
}

// extractionPayload is the untrusted shape the language service is asked to
// produce.  Anything that does not unmarshal into it degrades to empty.
type extractionPayload struct {
	DrugsMentioned []string `json:"drugs_mentioned"`
	Intent         string   `json:"intent"`
	QueryContext   string   `json:"query_context"`
}

func (e *llmExtractor) Extract(ctx context.Context, message string) (drug.ExtractionResult, bool) {
	prompt := llm.BuildExtractionPrompt(message)
	out, err := e.client.Complete(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	if err != nil {
		e.log.Warn("entity extraction call failed, degrading to empty", logging.Err(err))
		return drug.EmptyExtraction(), false
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(llm.StripCodeFence(out)), &payload); err != nil {
		e.log.Warn("entity extraction returned malformed payload, degrading to empty", logging.Err(err))
		return drug.EmptyExtraction(), true
	}

	return drug.ExtractionResult{
		DrugsMentioned: drug.CanonicalSet(payload.DrugsMentioned),
		Intent:         drug.ParseIntent(payload.Intent),
		QueryContext:   payload.QueryContext,
	}, true
}
