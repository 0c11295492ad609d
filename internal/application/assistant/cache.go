// Package assistant implements the question-answering pipeline: entity
// extraction, drug resolution with fuzzy and brand fallbacks, pairwise
// interaction checking, evidence assembly, answer generation, and response
// post-processing.
package assistant

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/turtacn/DrugRx-Intelligence/internal/domain/drug"
)

// LookupCache memoizes the three lookup kinds for the process lifetime:
// resolved drug records, brand ingredient breakdowns, and interaction sets.
// The three maps are independent; an entry in one implies nothing about the
// others.  Entries never expire and are cleared only by Reset.  Concurrent
// writers to one key are last-write-wins, which is safe because lookups for
// the same key always converge to the same value.
type LookupCache struct {
	drugs        *gocache.Cache
	ingredients  *gocache.Cache
	interactions *gocache.Cache

	observer CacheObserver
}

// CacheObserver receives one call per cache lookup.  cache is the map name:
// "drugs", "ingredients", or "interactions".
type CacheObserver interface {
	RecordCacheLookup(cache string, hit bool)
}

// NewLookupCache creates an empty cache.
func NewLookupCache() *LookupCache {
	return &LookupCache{
		drugs:        gocache.New(gocache.NoExpiration, 0),
		ingredients:  gocache.New(gocache.NoExpiration, 0),
		interactions: gocache.New(gocache.NoExpiration, 0),
	}
}

// SetObserver attaches a lookup observer.  Call before the cache is shared
// across goroutines.
func (c *LookupCache) SetObserver(observer CacheObserver) {
	c.observer = observer
}

func (c *LookupCache) observe(cache string, hit bool) {
	if c.observer != nil {
		c.observer.RecordCacheLookup(cache, hit)
	}
}

// GetDrug returns the first cached record for a normalized drug name.
func (c *LookupCache) GetDrug(name string) (drug.Record, bool) {
	matches, ok := c.GetDrugMatches(name)
	if !ok {
		return drug.Record{}, false
	}
	return matches[0], true
}

// GetDrugMatches returns every cached record for a normalized drug name.
// Exact lookups store a single record; keyword tokens store the complete
// match list, so repeat resolutions of the same token yield the same set.
func (c *LookupCache) GetDrugMatches(name string) ([]drug.Record, bool) {
	raw, ok := c.drugs.Get(drug.NormalizeName(name))
	c.observe("drugs", ok)
	if !ok {
		return nil, false
	}
	matches, ok := raw.([]drug.Record)
	if !ok || len(matches) == 0 {
		return nil, false
	}
	return matches, true
}

// SetDrug caches a single resolved record under its normalized name.
func (c *LookupCache) SetDrug(name string, rec drug.Record) {
	c.SetDrugMatches(name, []drug.Record{rec})
}

// SetDrugMatches caches the full resolution result for a query name.
func (c *LookupCache) SetDrugMatches(name string, matches []drug.Record) {
	c.drugs.Set(drug.NormalizeName(name), matches, gocache.NoExpiration)
}

// GetIngredients returns the cached ingredient breakdown for a brand name.
func (c *LookupCache) GetIngredients(name string) ([]string, bool) {
	raw, ok := c.ingredients.Get(drug.NormalizeName(name))
	c.observe("ingredients", ok)
	if !ok {
		return nil, false
	}
	list, ok := raw.([]string)
	return list, ok
}

// SetIngredients caches a brand's ingredient breakdown.
func (c *LookupCache) SetIngredients(name string, ingredients []string) {
	c.ingredients.Set(drug.NormalizeName(name), ingredients, gocache.NoExpiration)
}

// GetInteractions returns the cached interaction set for a set key built with
// drug.InteractionSetKey.
func (c *LookupCache) GetInteractions(key string) ([]drug.Interaction, bool) {
	raw, ok := c.interactions.Get(key)
	c.observe("interactions", ok)
	if !ok {
		return nil, false
	}
	list, ok := raw.([]drug.Interaction)
	return list, ok
}

// SetInteractions caches an interaction set under its set key.
func (c *LookupCache) SetInteractions(key string, interactions []drug.Interaction) {
	c.interactions.Set(key, interactions, gocache.NoExpiration)
}

// Reset drops every entry from all three maps.
func (c *LookupCache) Reset() {
	c.drugs.Flush()
	c.ingredients.Flush()
	c.interactions.Flush()
}

// Sizes reports the entry count per map, for diagnostics.
func (c *LookupCache) Sizes() map[string]int {
	return map[string]int{
		"drugs":        c.drugs.ItemCount(),
		"ingredients":  c.ingredients.ItemCount(),
		"interactions": c.interactions.ItemCount(),
	}
}
