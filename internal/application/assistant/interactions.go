package assistant

import (
	"context"

	"github.com/turtacn/DrugRx-Intelligence/internal/domain/drug"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
)

// InteractionChecker finds documented interactions among a set of resolved
// drug records, cache-first and deduplicated by unordered pair.
type InteractionChecker struct {
	repo  drug.Repository
	cache *LookupCache
	log   logging.Logger
}

func NewInteractionChecker(repo drug.Repository, cache *LookupCache, log logging.Logger) *InteractionChecker {
	return &InteractionChecker{repo: repo, cache: cache, log: log}
}

// Check returns all pairwise interactions among the given records.  Fewer
// than two records short-circuits without a store call.  The returned flag is
// false when a store round-trip failed; a cache hit never fails.
func (c *InteractionChecker) Check(ctx context.Context, records []drug.Record) ([]drug.Interaction, bool) {
	if len(records) < 2 {
		return nil, true
	}

	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.Name)
	}
	key := drug.InteractionSetKey(names)

	if cached, ok := c.cache.GetInteractions(key); ok {
		return cached, true
	}

	interactions, err := c.repo.FindInteractions(ctx, names)
	if err != nil {
		c.log.Warn("interaction lookup failed, degrading to empty", logging.Err(err))
		return nil, false
	}

	// An empty set is still knowledge worth keeping.
	c.cache.SetInteractions(key, interactions)
	return interactions, true
}
