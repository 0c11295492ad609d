package assistant

import (
	"context"
	"encoding/json"

	"github.com/turtacn/DrugRx-Intelligence/internal/domain/drug"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DrugRx-Intelligence/internal/intelligence/llm"
)

// Resolution is the outcome of resolving candidate names against the store.
type Resolution struct {
	Found    []drug.Record
	NotFound []string

	// StoreAttempted reports whether any store round-trip was made;
	// StoreHealthy is false when at least one of those round-trips failed.
	StoreAttempted bool
	StoreHealthy   bool
}

// DrugResolver resolves candidate names cache-first, then by exact match,
// then by keyword search, accepting every keyword match.
type DrugResolver struct {
	repo  drug.Repository
	cache *LookupCache
	log   logging.Logger
}

func NewDrugResolver(repo drug.Repository, cache *LookupCache, log logging.Logger) *DrugResolver {
	return &DrugResolver{repo: repo, cache: cache, log: log}
}

// Resolve processes names in input order; found records keep that order, with
// keyword matches appended in store order.  Store failures degrade the
// affected name to not-found rather than aborting.
func (r *DrugResolver) Resolve(ctx context.Context, names []string) Resolution {
	res := Resolution{StoreHealthy: true}

	for _, name := range names {
		if matches, ok := r.cache.GetDrugMatches(name); ok {
			res.Found = append(res.Found, matches...)
			continue
		}

		res.StoreAttempted = true
		rec, err := r.repo.FindByName(ctx, name)
		if err != nil {
			r.log.Warn("exact lookup failed, treating as not found",
				logging.String("name", name), logging.Err(err))
			res.StoreHealthy = false
			res.NotFound = append(res.NotFound, name)
			continue
		}
		if rec != nil {
			r.cache.SetDrug(name, *rec)
			res.Found = append(res.Found, *rec)
			continue
		}

		matches, err := r.repo.SearchByKeyword(ctx, name)
		if err != nil {
			r.log.Warn("keyword search failed, treating as not found",
				logging.String("name", name), logging.Err(err))
			res.StoreHealthy = false
			res.NotFound = append(res.NotFound, name)
			continue
		}
		if len(matches) == 0 {
			res.NotFound = append(res.NotFound, name)
			continue
		}
		for _, m := range matches {
			r.cache.SetDrug(m.Name, m)
			res.Found = append(res.Found, m)
		}
		// Map the query token to the whole match list, so the next request
		// for the same token resolves to the same set of records.
		r.cache.SetDrugMatches(name, matches)
	}

	return res
}

// IngredientResolution is the outcome of the brand fallback path.
type IngredientResolution struct {
	// Brands maps each reclassified name to its ingredient list.  A name
	// present here is resolved-via-brand and must not be reported as
	// unresolved, even when none of its ingredients exist in the store.
	Brands map[string][]string

	// ResolvedIngredients are ingredient names that also resolved in the
	// store, picking up database identifiers.
	ResolvedIngredients []drug.Record

	// TrueNotFound are names the language service could not break down.
	TrueNotFound []string

	LLMAttempted  int
	LLMSuccessful int
}

// IngredientResolver handles names the store cannot resolve at all: it asks
// the language service for a generic-ingredient breakdown, treating the name
// as a brand, then re-resolves those ingredients against the store using
// exact and cached lookups only.
type IngredientResolver struct {
	client llm.Client
	repo   drug.Repository
	cache  *LookupCache
	log    logging.Logger
}

func NewIngredientResolver(client llm.Client, repo drug.Repository, cache *LookupCache, log logging.Logger) *IngredientResolver {
	return &IngredientResolver{client: client, repo: repo, cache: cache, log: log}
}

func (r *IngredientResolver) Resolve(ctx context.Context, notFound []string) IngredientResolution {
	res := IngredientResolution{Brands: map[string][]string{}}
	if len(notFound) == 0 {
		return res
	}

	var uncached []string
	for _, name := range notFound {
		if ingredients, ok := r.cache.GetIngredients(name); ok {
			if len(ingredients) > 0 {
				res.Brands[name] = ingredients
			} else {
				res.TrueNotFound = append(res.TrueNotFound, name)
			}
			continue
		}
		uncached = append(uncached, name)
	}

	if len(uncached) > 0 {
		res.LLMAttempted = 1
		breakdowns, err := r.breakDown(ctx, uncached)
		if err != nil {
			r.log.Warn("ingredient breakdown failed, names stay unresolved", logging.Err(err))
			res.TrueNotFound = append(res.TrueNotFound, uncached...)
		} else {
			res.LLMSuccessful = 1
			for _, name := range uncached {
				ingredients := drug.CanonicalSet(breakdowns[drug.NormalizeName(name)])
				r.cache.SetIngredients(name, ingredients)
				if len(ingredients) > 0 {
					res.Brands[name] = ingredients
				} else {
					res.TrueNotFound = append(res.TrueNotFound, name)
				}
			}
		}
	}

	// Exact and cached lookups only: the keyword fallback stays off here to
	// avoid compounding two fuzzy steps.
	seen := map[string]struct{}{}
	for _, name := range notFound {
		for _, ingredient := range res.Brands[name] {
			key := drug.NormalizeName(ingredient)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			if rec, ok := r.cache.GetDrug(ingredient); ok {
				res.ResolvedIngredients = append(res.ResolvedIngredients, rec)
				continue
			}
			rec, err := r.repo.FindByName(ctx, ingredient)
			if err != nil {
				r.log.Warn("ingredient re-resolution failed",
					logging.String("ingredient", ingredient), logging.Err(err))
				continue
			}
			if rec != nil {
				r.cache.SetDrug(ingredient, *rec)
				res.ResolvedIngredients = append(res.ResolvedIngredients, *rec)
			}
		}
	}

	return res
}

func (r *IngredientResolver) breakDown(ctx context.Context, names []string) (map[string][]string, error) {
	prompt := llm.BuildIngredientPrompt(names)
	out, err := r.client.Complete(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	if err != nil {
		return nil, err
	}

	var payload map[string][]string
	if err := json.Unmarshal([]byte(llm.StripCodeFence(out)), &payload); err != nil {
		return nil, err
	}

	normalized := make(map[string][]string, len(payload))
	for name, ingredients := range payload {
		normalized[drug.NormalizeName(name)] = ingredients
	}
	return normalized, nil
}
