package drug

import "context"

// InteractionRow is one record of a bulk interaction import: two drug names
// and the description of their combined effect.
type InteractionRow struct {
	DrugA       string
	DrugB       string
	Description string
}

// SchemaSummary describes the shape of the knowledge store for diagnostics:
// labels, relationship types, and sample property keys per label.
type SchemaSummary struct {
	Labels            []string            `json:"labels"`
	RelationshipTypes []string            `json:"relationship_types"`
	PropertyKeys      map[string][]string `json:"property_keys"`
	NodeCount         int64               `json:"node_count"`
}

// Repository is the knowledge-store contract for drug lookup and interaction
// retrieval.  Implementations match names case-insensitively and must cope
// with heterogeneous node schemas (differing property names for the drug name
// and identifier).  Read methods return empty results for no-match; they
// return an error only for store-level failures, which callers degrade to
// empty rather than propagating to the user.
type Repository interface {
	// FindByName resolves a drug by exact case-insensitive name match.
	// Returns (nil, nil) when no node matches.
	FindByName(ctx context.Context, name string) (*Record, error)

	// SearchByKeyword resolves drugs whose stored name contains the keyword,
	// case-insensitively in both directions (stored name contains keyword, or
	// keyword contains stored name).  Returns every match.
	SearchByKeyword(ctx context.Context, keyword string) ([]Record, error)

	// FindInteractions returns documented interactions among any pair of the
	// given drug names, matched by containment the same way SearchByKeyword
	// matches, deduplicated by unordered pair.
	FindInteractions(ctx context.Context, names []string) ([]Interaction, error)

	// ImportInteractions merges the given rows into the store, creating drug
	// nodes and interaction relationships as needed.  Returns the number of
	// rows written.
	ImportInteractions(ctx context.Context, rows []InteractionRow) (int, error)

	// SchemaSummary introspects the store's labels, relationship types and
	// property keys.
	SchemaSummary(ctx context.Context) (*SchemaSummary, error)

	// HealthCheck verifies store connectivity.
	HealthCheck(ctx context.Context) error
}
