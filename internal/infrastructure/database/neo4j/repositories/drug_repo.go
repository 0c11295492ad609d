// Package repositories implements the knowledge-store contracts on top of the
// Neo4j driver wrapper.
package repositories

import (
	"context"
	"strconv"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/turtacn/DrugRx-Intelligence/internal/domain/drug"
	infraNeo4j "github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DrugRx-Intelligence/pkg/errors"
)

// Graph data imported from heterogeneous sources stores the drug name and
// identifier under differing property names.  Every read query coalesces over
// the known variants instead of assuming one schema.
const (
	nameExpr = "COALESCE(%s.name, %s.Name, %s.drugName)"
	idExpr   = "COALESCE(%s.ID, %s.id, %s.drugId, %s.Id, '-')"
)

func coalesceName(alias string) string {
	return strings.NewReplacer("%s", alias).Replace(nameExpr)
}

func coalesceID(alias string) string {
	return strings.NewReplacer("%s", alias).Replace(idExpr)
}

type neo4jDrugRepo struct {
	driver infraNeo4j.DriverInterface
	log    logging.Logger
}

// NewDrugRepository builds the Neo4j-backed drug repository.
func NewDrugRepository(d infraNeo4j.DriverInterface, log logging.Logger) drug.Repository {
	return &neo4jDrugRepo{
		driver: d,
		log:    log,
	}
}

func (r *neo4jDrugRepo) FindByName(ctx context.Context, name string) (*drug.Record, error) {
	cypher := `
		MATCH (d)
		WHERE toLower(` + coalesceName("d") + `) = toLower($name)
		RETURN ` + coalesceID("d") + ` AS id, ` + coalesceName("d") + ` AS name
		LIMIT 1`

	result, err := r.driver.ExecuteRead(ctx, func(tx infraNeo4j.Transaction) (any, error) {
		res, err := tx.Run(ctx, cypher, map[string]any{"name": strings.TrimSpace(name)})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			return recordToDrug(res.Record()), nil
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "exact name lookup failed")
	}
	if result == nil {
		return nil, nil
	}
	rec := result.(drug.Record)
	return &rec, nil
}

func (r *neo4jDrugRepo) SearchByKeyword(ctx context.Context, keyword string) ([]drug.Record, error) {
	// Containment runs both directions so "aspirin 100mg tablets" in the
	// store still matches a query for "aspirin", and vice versa.
	cypher := `
		MATCH (d)
		WHERE ` + coalesceName("d") + ` IS NOT NULL
		WITH d, toLower(` + coalesceName("d") + `) AS dname
		WHERE dname CONTAINS toLower($keyword) OR toLower($keyword) CONTAINS dname
		RETURN ` + coalesceID("d") + ` AS id, ` + coalesceName("d") + ` AS name`

	result, err := r.driver.ExecuteRead(ctx, func(tx infraNeo4j.Transaction) (any, error) {
		res, err := tx.Run(ctx, cypher, map[string]any{"keyword": strings.TrimSpace(keyword)})
		if err != nil {
			return nil, err
		}
		return infraNeo4j.CollectRecords(ctx, res, func(rec *neo4j.Record) (drug.Record, error) {
			return recordToDrug(rec), nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "keyword search failed")
	}
	records, _ := result.([]drug.Record)
	return records, nil
}

func (r *neo4jDrugRepo) FindInteractions(ctx context.Context, names []string) ([]drug.Interaction, error) {
	if len(names) < 2 {
		return nil, nil
	}
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		lowered = append(lowered, drug.NormalizeName(n))
	}

	// Undirected match so stored direction does not matter; Go-side dedup
	// collapses the A→B / B→A double-report that produces.
	cypher := `
		MATCH (d1)-[r:INTERACTS_WITH]-(d2)
		WITH d1, d2, r,
			toLower(COALESCE(d1.name, d1.Name, d1.drugName, '')) AS n1,
			toLower(COALESCE(d2.name, d2.Name, d2.drugName, '')) AS n2
		WHERE any(q IN $names WHERE n1 CONTAINS q OR q CONTAINS n1)
		  AND any(q IN $names WHERE n2 CONTAINS q OR q CONTAINS n2)
		  AND n1 <> n2
		RETURN DISTINCT
			` + coalesceName("d1") + ` AS drug_a, ` + coalesceID("d1") + ` AS id_a,
			` + coalesceName("d2") + ` AS drug_b, ` + coalesceID("d2") + ` AS id_b,
			COALESCE(r.description, r.Description, r.interaction, '') AS description`

	result, err := r.driver.ExecuteRead(ctx, func(tx infraNeo4j.Transaction) (any, error) {
		res, err := tx.Run(ctx, cypher, map[string]any{"names": lowered})
		if err != nil {
			return nil, err
		}
		return infraNeo4j.CollectRecords(ctx, res, func(rec *neo4j.Record) (drug.Interaction, error) {
			return drug.Interaction{
				DrugA:       recordString(rec, "drug_a"),
				IDA:         recordString(rec, "id_a"),
				DrugB:       recordString(rec, "drug_b"),
				IDB:         recordString(rec, "id_b"),
				Description: recordString(rec, "description"),
			}, nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "interaction lookup failed")
	}
	interactions, _ := result.([]drug.Interaction)
	return drug.DedupeInteractions(interactions), nil
}

func (r *neo4jDrugRepo) ImportInteractions(ctx context.Context, rows []drug.InteractionRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	params := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		a, b := strings.TrimSpace(row.DrugA), strings.TrimSpace(row.DrugB)
		if a == "" || b == "" {
			continue
		}
		params = append(params, map[string]any{
			"drug_a":      a,
			"drug_b":      b,
			"description": strings.TrimSpace(row.Description),
		})
	}
	if len(params) == 0 {
		return 0, nil
	}

	cypher := `
		UNWIND $rows AS row
		MERGE (d1:Drug {name: row.drug_a})
		MERGE (d2:Drug {name: row.drug_b})
		MERGE (d1)-[r:INTERACTS_WITH]->(d2)
		SET r.description = row.description`

	_, err := r.driver.ExecuteWrite(ctx, func(tx infraNeo4j.Transaction) (any, error) {
		res, err := tx.Run(ctx, cypher, map[string]any{"rows": params})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeStoreImport, "interaction import failed")
	}
	r.log.Info("Imported interaction rows", logging.Int("count", len(params)))
	return len(params), nil
}

func (r *neo4jDrugRepo) SchemaSummary(ctx context.Context) (*drug.SchemaSummary, error) {
	summary := &drug.SchemaSummary{PropertyKeys: map[string][]string{}}

	result, err := r.driver.ExecuteRead(ctx, func(tx infraNeo4j.Transaction) (any, error) {
		res, err := tx.Run(ctx, "CALL db.labels() YIELD label RETURN label", nil)
		if err != nil {
			return nil, err
		}
		labels, err := infraNeo4j.CollectRecords(ctx, res, func(rec *neo4j.Record) (string, error) {
			return recordString(rec, "label"), nil
		})
		if err != nil {
			return nil, err
		}
		summary.Labels = labels

		res, err = tx.Run(ctx, "CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType", nil)
		if err != nil {
			return nil, err
		}
		relTypes, err := infraNeo4j.CollectRecords(ctx, res, func(rec *neo4j.Record) (string, error) {
			return recordString(rec, "relationshipType"), nil
		})
		if err != nil {
			return nil, err
		}
		summary.RelationshipTypes = relTypes

		res, err = tx.Run(ctx, `
			MATCH (n)
			UNWIND labels(n) AS label
			UNWIND keys(n) AS key
			RETURN label, collect(DISTINCT key) AS keys`, nil)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			rec := res.Record()
			label := recordString(rec, "label")
			if raw, ok := rec.Get("keys"); ok {
				if keys, ok := raw.([]any); ok {
					for _, k := range keys {
						if s, ok := k.(string); ok {
							summary.PropertyKeys[label] = append(summary.PropertyKeys[label], s)
						}
					}
				}
			}
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx, "MATCH (n) RETURN count(n) AS total", nil)
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			if raw, ok := res.Record().Get("total"); ok {
				if n, ok := raw.(int64); ok {
					summary.NodeCount = n
				}
			}
		}
		return summary, res.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "schema introspection failed")
	}
	return result.(*drug.SchemaSummary), nil
}

func (r *neo4jDrugRepo) HealthCheck(ctx context.Context) error {
	return r.driver.HealthCheck(ctx)
}

func recordToDrug(rec *neo4j.Record) drug.Record {
	return drug.Record{
		ID:   recordString(rec, "id"),
		Name: recordString(rec, "name"),
	}
}

// recordString reads a projected value as a string.  Numeric identifiers are
// stored as integers in some source datasets, so int64 values format through
// rather than collapsing to empty.
func recordString(rec *neo4j.Record, key string) string {
	raw, ok := rec.Get(key)
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}
