// Package drug defines the core entities of the drug-interaction domain:
// resolved drug records, pairwise interaction records, and the normalization
// rules that give both their identity.
package drug

import (
	"sort"
	"strings"
)

// IDUnknown is the placeholder used when the knowledge store holds no
// identifier for a drug node.
const IDUnknown = "-"

// Record is a resolved drug entity from the knowledge store.  Identity is by
// normalized name; the store is the source of truth for ID.  Records are
// created transiently per resolution and never mutated afterwards.
type Record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HasID reports whether the store supplied a real identifier for the record.
func (r Record) HasID() bool {
	return r.ID != "" && r.ID != IDUnknown
}

// Interaction is a documented relationship between two drug records with a
// free-text description of the clinical effect.  Identity for deduplication
// is the unordered pair of participant names.
type Interaction struct {
	DrugA       string `json:"drug_a"`
	IDA         string `json:"id_a"`
	DrugB       string `json:"drug_b"`
	IDB         string `json:"id_b"`
	Description string `json:"description"`
}

// PairKey returns the deduplication key for the interaction: the two
// normalized participant names sorted and joined, so A↔B and B↔A produce the
// same key.
func (i Interaction) PairKey() string {
	a, b := NormalizeName(i.DrugA), NormalizeName(i.DrugB)
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// NormalizeName trims and case-folds a drug name.  All cache keys and
// identity comparisons go through this.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// synonyms maps known alternate spellings of the same generic compound onto
// one canonical form.  Versioned data: extend here, not at call sites.
var synonyms = map[string]string{
	"paracetamol":         "acetaminophen",
	"parasetamol":         "acetaminophen",
	"salbutamol":          "albuterol",
	"adrenaline":          "epinephrine",
	"glyceryl trinitrate": "nitroglycerin",
}

// CanonicalName maps a drug name onto its canonical spelling if it is a known
// synonym, preserving the normalized form otherwise.
func CanonicalName(name string) string {
	n := NormalizeName(name)
	if canon, ok := synonyms[n]; ok {
		return canon
	}
	return n
}

// CanonicalSet canonicalizes every name in the input, deduplicating
// case-insensitively while preserving first-occurrence order.
func CanonicalSet(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		canon := CanonicalName(name)
		if canon == "" {
			continue
		}
		if _, dup := seen[canon]; dup {
			continue
		}
		seen[canon] = struct{}{}
		out = append(out, canon)
	}
	return out
}

// InteractionSetKey builds the cache key for an interaction lookup over the
// given drug names: lowercased, sorted, joined.  Stable across call order so
// {A,B} and {B,A} share one cache entry.
func InteractionSetKey(names []string) string {
	normalized := make([]string, 0, len(names))
	for _, n := range names {
		normalized = append(normalized, NormalizeName(n))
	}
	sort.Strings(normalized)
	return strings.Join(normalized, "|")
}

// DedupeInteractions removes records describing the same unordered name pair,
// keeping the first occurrence.  The returned slice never contains two
// records with equal PairKey.
func DedupeInteractions(interactions []Interaction) []Interaction {
	seen := make(map[string]struct{}, len(interactions))
	out := make([]Interaction, 0, len(interactions))
	for _, it := range interactions {
		key := it.PairKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Intent classifies what the user is asking for.
type Intent string

const (
	IntentInteractions Intent = "asking_about_interactions"
	IntentSideEffects  Intent = "asking_about_side_effects"
	IntentDosage       Intent = "asking_about_dosage"
	IntentSafety       Intent = "checking_safety"
	IntentGeneral      Intent = "general_question"
)

// ParseIntent maps a free-form intent string onto the closed Intent set,
// falling back to IntentGeneral for anything unrecognised.
func ParseIntent(s string) Intent {
	switch Intent(strings.TrimSpace(strings.ToLower(s))) {
	case IntentInteractions, IntentSideEffects, IntentDosage, IntentSafety, IntentGeneral:
		return Intent(strings.TrimSpace(strings.ToLower(s)))
	default:
		return IntentGeneral
	}
}

// ExtractionResult is the outcome of pulling drug mentions out of free text.
// Produced fresh per request, never persisted.
type ExtractionResult struct {
	DrugsMentioned []string `json:"drugs_mentioned"`
	Intent         Intent   `json:"intent"`
	QueryContext   string   `json:"query_context"`
}

// EmptyExtraction is the degraded extraction outcome: nothing found, general
// question.  Returned whenever the language service fails or produces
// malformed output.
func EmptyExtraction() ExtractionResult {
	return ExtractionResult{
		DrugsMentioned: []string{},
		Intent:         IntentGeneral,
	}
}
