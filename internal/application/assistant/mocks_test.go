package assistant

import (
	"context"

	"github.com/turtacn/DrugRx-Intelligence/internal/domain/drug"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DrugRx-Intelligence/internal/intelligence/llm"
)

// fakeLLM implements llm.Client with a pluggable function and call counter.
type fakeLLM struct {
	completeFn func(ctx context.Context, messages []llm.Message) (string, error)
	calls      int
	lastInput  []llm.Message
}

func (f *fakeLLM) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	f.calls++
	f.lastInput = messages
	if f.completeFn == nil {
		return "", nil
	}
	return f.completeFn(ctx, messages)
}

// fakeRepo implements drug.Repository with pluggable functions and per-method
// call counters.
type fakeRepo struct {
	findByNameFn       func(ctx context.Context, name string) (*drug.Record, error)
	searchFn           func(ctx context.Context, keyword string) ([]drug.Record, error)
	findInteractionsFn func(ctx context.Context, names []string) ([]drug.Interaction, error)

	findByNameCalls       int
	searchCalls           int
	findInteractionsCalls int
}

func (f *fakeRepo) FindByName(ctx context.Context, name string) (*drug.Record, error) {
	f.findByNameCalls++
	if f.findByNameFn == nil {
		return nil, nil
	}
	return f.findByNameFn(ctx, name)
}

func (f *fakeRepo) SearchByKeyword(ctx context.Context, keyword string) ([]drug.Record, error) {
	f.searchCalls++
	if f.searchFn == nil {
		return nil, nil
	}
	return f.searchFn(ctx, keyword)
}

func (f *fakeRepo) FindInteractions(ctx context.Context, names []string) ([]drug.Interaction, error) {
	f.findInteractionsCalls++
	if f.findInteractionsFn == nil {
		return nil, nil
	}
	return f.findInteractionsFn(ctx, names)
}

func (f *fakeRepo) ImportInteractions(ctx context.Context, rows []drug.InteractionRow) (int, error) {
	return 0, nil
}

func (f *fakeRepo) SchemaSummary(ctx context.Context) (*drug.SchemaSummary, error) {
	return nil, nil
}

func (f *fakeRepo) HealthCheck(ctx context.Context) error {
	return nil
}

// fakeMetrics records observations for assertions.
type fakeMetrics struct {
	observations []RequestObservation
}

func (f *fakeMetrics) ObserveRequest(obs RequestObservation) {
	f.observations = append(f.observations, obs)
}

// fixedRepo returns a repo whose store holds the given records and
// interactions, matched the way the real gateway matches.
func fixedRepo(records []drug.Record, interactions []drug.Interaction) *fakeRepo {
	return &fakeRepo{
		findByNameFn: func(ctx context.Context, name string) (*drug.Record, error) {
			for _, rec := range records {
				if drug.NormalizeName(rec.Name) == drug.NormalizeName(name) {
					r := rec
					return &r, nil
				}
			}
			return nil, nil
		},
		findInteractionsFn: func(ctx context.Context, names []string) ([]drug.Interaction, error) {
			present := map[string]bool{}
			for _, n := range names {
				present[drug.NormalizeName(n)] = true
			}
			var out []drug.Interaction
			for _, it := range interactions {
				if present[drug.NormalizeName(it.DrugA)] && present[drug.NormalizeName(it.DrugB)] {
					out = append(out, it)
				}
			}
			return drug.DedupeInteractions(out), nil
		},
	}
}

func nopLog() logging.Logger {
	return logging.NewNopLogger()
}
