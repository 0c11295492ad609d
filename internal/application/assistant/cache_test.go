package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/DrugRx-Intelligence/internal/domain/drug"
)

func TestLookupCacheDrugs(t *testing.T) {
	c := NewLookupCache()

	_, ok := c.GetDrug("aspirin")
	assert.False(t, ok)

	c.SetDrug("  Aspirin ", drug.Record{ID: "DB00945", Name: "Aspirin"})

	rec, ok := c.GetDrug("ASPIRIN")
	require.True(t, ok)
	assert.Equal(t, "DB00945", rec.ID)
}

func TestLookupCacheDrugMatchLists(t *testing.T) {
	c := NewLookupCache()
	c.SetDrugMatches("aspirin", []drug.Record{
		{ID: "DB00945", Name: "Aspirin"},
		{ID: "-", Name: "Aspirin 100mg Tablets"},
	})

	matches, ok := c.GetDrugMatches("ASPIRIN")
	require.True(t, ok)
	assert.Len(t, matches, 2)

	rec, ok := c.GetDrug("aspirin")
	require.True(t, ok)
	assert.Equal(t, "DB00945", rec.ID, "single lookup yields the first match")
}

func TestLookupCacheMapsAreIndependent(t *testing.T) {
	c := NewLookupCache()
	c.SetIngredients("panadol", []string{"acetaminophen"})

	_, ok := c.GetDrug("panadol")
	assert.False(t, ok, "ingredient entry must not imply a drug entry")

	ingredients, ok := c.GetIngredients("Panadol")
	require.True(t, ok)
	assert.Equal(t, []string{"acetaminophen"}, ingredients)
}

func TestLookupCacheInteractions(t *testing.T) {
	c := NewLookupCache()
	key := drug.InteractionSetKey([]string{"warfarin", "aspirin"})

	_, ok := c.GetInteractions(key)
	assert.False(t, ok)

	c.SetInteractions(key, []drug.Interaction{{DrugA: "Aspirin", DrugB: "Warfarin"}})

	got, ok := c.GetInteractions(drug.InteractionSetKey([]string{"Aspirin", "Warfarin"}))
	require.True(t, ok)
	assert.Len(t, got, 1)
}

func TestLookupCacheReset(t *testing.T) {
	c := NewLookupCache()
	c.SetDrug("aspirin", drug.Record{Name: "Aspirin"})
	c.SetIngredients("panadol", []string{"acetaminophen"})
	c.SetInteractions("a|b", nil)

	assert.Equal(t, map[string]int{"drugs": 1, "ingredients": 1, "interactions": 1}, c.Sizes())

	c.Reset()
	assert.Equal(t, map[string]int{"drugs": 0, "ingredients": 0, "interactions": 0}, c.Sizes())
}

type countingObserver struct {
	hits   int
	misses int
}

func (o *countingObserver) RecordCacheLookup(_ string, hit bool) {
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func TestLookupCacheObserver(t *testing.T) {
	c := NewLookupCache()
	obs := &countingObserver{}
	c.SetObserver(obs)

	c.GetDrug("aspirin")
	c.SetDrug("aspirin", drug.Record{Name: "Aspirin"})
	c.GetDrug("aspirin")
	c.GetIngredients("panadol")

	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 2, obs.misses)
}
