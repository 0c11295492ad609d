package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/DrugRx-Intelligence/internal/domain/drug"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
)

// Metadata is the machine-readable part of an evidence bundle.  Counts are
// monotonic within one request; the struct is immutable once its bundle is
// returned.
type Metadata struct {
	FoundDrugs             []string           `json:"found_drugs"`
	NotFoundDrugs          []string           `json:"not_found_drugs"`
	IngredientFoundDrugs   []string           `json:"ingredient_found_drugs"`
	IngredientInteractions []drug.Interaction `json:"ingredient_interactions"`

	// InteractionsFoundDB counts drugs verified directly in the store;
	// InteractionsFoundLLM counts names resolved through the brand path.
	InteractionsFoundDB   int `json:"interactions_found_db"`
	InteractionsFoundLLM  int `json:"interactions_found_llm"`
	DatabaseVerifications int `json:"database_verifications"`

	DBAttempted   int `json:"db_attempted"`
	DBSuccessful  int `json:"db_successful"`
	LLMAttempted  int `json:"llm_attempted"`
	LLMSuccessful int `json:"llm_successful"`
}

// EvidenceBundle is the ordered evidence context handed to answer generation.
type EvidenceBundle struct {
	Sections   []string
	Extraction drug.ExtractionResult
	Metadata   Metadata
}

// Empty reports whether the bundle carries no evidence sections.
func (b *EvidenceBundle) Empty() bool {
	return len(b.Sections) == 0
}

// Render joins the sections into the evidence text for the generation prompt.
func (b *EvidenceBundle) Render() string {
	return strings.Join(b.Sections, "\n\n")
}

// Assembler runs extraction, resolution, the brand fallback, and interaction
// checking, and merges everything into one evidence bundle.
type Assembler struct {
	extractor          Extractor
	drugResolver       *DrugResolver
	ingredientResolver *IngredientResolver
	checker            *InteractionChecker
	log                logging.Logger
}

func NewAssembler(
	extractor Extractor,
	drugResolver *DrugResolver,
	ingredientResolver *IngredientResolver,
	checker *InteractionChecker,
	log logging.Logger,
) *Assembler {
	return &Assembler{
		extractor:          extractor,
		drugResolver:       drugResolver,
		ingredientResolver: ingredientResolver,
		checker:            checker,
		log:                log,
	}
}

// Assemble builds the evidence bundle for one request.  callerDrugs is an
// optional explicit list unioned with extracted names before resolution.
// When no candidates survive, it returns an empty bundle without touching the
// store or the ingredient path.
func (a *Assembler) Assemble(ctx context.Context, message string, callerDrugs []string) *EvidenceBundle {
	bundle := &EvidenceBundle{}
	meta := &bundle.Metadata

	if strings.TrimSpace(message) != "" {
		meta.LLMAttempted++
		extraction, ok := a.extractor.Extract(ctx, message)
		if ok {
			meta.LLMSuccessful++
		}
		bundle.Extraction = extraction
	} else {
		bundle.Extraction = drug.EmptyExtraction()
	}

	candidates := drug.CanonicalSet(append(append([]string{}, bundle.Extraction.DrugsMentioned...), callerDrugs...))
	if len(candidates) == 0 {
		return bundle
	}

	resolution := a.drugResolver.Resolve(ctx, candidates)
	storeHealthy := resolution.StoreHealthy
	if resolution.StoreAttempted {
		meta.DBAttempted = 1
	}

	var ingredients IngredientResolution
	ingredients.Brands = map[string][]string{}
	if len(resolution.NotFound) > 0 {
		ingredients = a.ingredientResolver.Resolve(ctx, resolution.NotFound)
		meta.LLMAttempted += ingredients.LLMAttempted
		meta.LLMSuccessful += ingredients.LLMSuccessful
	}

	directInteractions, directOK := a.checker.Check(ctx, resolution.Found)
	storeHealthy = storeHealthy && directOK

	var ingredientDerived []drug.Interaction
	if len(ingredients.ResolvedIngredients) > 0 {
		union := mergeRecords(resolution.Found, ingredients.ResolvedIngredients)
		combined, combinedOK := a.checker.Check(ctx, union)
		storeHealthy = storeHealthy && combinedOK

		known := map[string]struct{}{}
		for _, it := range directInteractions {
			known[it.PairKey()] = struct{}{}
		}
		for _, it := range combined {
			if _, dup := known[it.PairKey()]; !dup {
				ingredientDerived = append(ingredientDerived, it)
			}
		}
	}

	if meta.DBAttempted == 1 && storeHealthy {
		meta.DBSuccessful = 1
	}

	meta.FoundDrugs = recordNames(resolution.Found)
	meta.NotFoundDrugs = ingredients.TrueNotFound
	meta.IngredientFoundDrugs = recordNames(ingredients.ResolvedIngredients)
	meta.IngredientInteractions = ingredientDerived
	meta.InteractionsFoundDB = len(meta.FoundDrugs)
	meta.InteractionsFoundLLM = len(ingredients.Brands)
	meta.DatabaseVerifications = len(directInteractions) + len(ingredientDerived)

	bundle.Sections = buildSections(resolution.Found, ingredients, directInteractions, ingredientDerived, meta.NotFoundDrugs, bundle.Extraction)
	return bundle
}

func mergeRecords(a, b []drug.Record) []drug.Record {
	seen := map[string]struct{}{}
	out := make([]drug.Record, 0, len(a)+len(b))
	for _, rec := range append(append([]drug.Record{}, a...), b...) {
		key := drug.NormalizeName(rec.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func recordNames(records []drug.Record) []string {
	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.Name)
	}
	return names
}

// buildSections emits evidence in a fixed order so context size and content
// are reproducible for identical inputs given a warm cache.
func buildSections(
	found []drug.Record,
	ingredients IngredientResolution,
	direct []drug.Interaction,
	derived []drug.Interaction,
	notFound []string,
	extraction drug.ExtractionResult,
) []string {
	var sections []string

	if len(found) > 0 {
		var sb strings.Builder
		sb.WriteString("Verified drugs (present in the interaction database):\n")
		for _, rec := range found {
			id := rec.ID
			if !rec.HasID() {
				id = drug.IDUnknown
			}
			fmt.Fprintf(&sb, "- %s (ID: %s)\n", rec.Name, id)
		}
		sections = append(sections, strings.TrimRight(sb.String(), "\n"))
	}

	if len(ingredients.Brands) > 0 {
		var sb strings.Builder
		sb.WriteString("Brand/ingredient analysis:\n")
		for _, brand := range sortedKeys(ingredients.Brands) {
			fmt.Fprintf(&sb, "- %s contains: %s\n", brand, strings.Join(ingredients.Brands[brand], ", "))
		}
		sections = append(sections, strings.TrimRight(sb.String(), "\n"))
	}

	if len(direct) > 0 {
		sections = append(sections, renderInteractions("Documented interactions:", direct))
	}

	if len(derived) > 0 {
		sections = append(sections, renderInteractions("Ingredient-derived interactions:", derived))
	}

	if len(notFound) > 0 {
		sections = append(sections, "Not found in the interaction database: "+strings.Join(notFound, ", "))
	}

	note := "User intent: " + string(extraction.Intent)
	if extraction.QueryContext != "" {
		note += " - " + extraction.QueryContext
	}
	sections = append(sections, note)

	return sections
}

func renderInteractions(header string, interactions []drug.Interaction) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	for _, it := range interactions {
		fmt.Fprintf(&sb, "- %s + %s: %s\n", it.DrugA, it.DrugB, it.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
