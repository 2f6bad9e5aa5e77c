// Package neo4j provides the Neo4j-backed graph store.
package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/recallkit/recall/internal/storage"
	"github.com/recallkit/recall/pkg/types"
)

// Store implements storage.GraphStore against a Neo4j instance.
//
// Entities are (:Entity) nodes keyed by name within a scope; relations are
// [:RELATES {name}] edges between them. MERGE keeps both idempotent.
type Store struct {
	driver neo4j.DriverWithContext
}

// Compile-time interface check.
var _ storage.GraphStore = (*Store)(nil)

// NewStore connects to Neo4j at uri with basic auth and verifies
// connectivity before returning.
func NewStore(ctx context.Context, uri, username, password string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j: failed to create driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: failed to verify connectivity: %w", err)
	}

	return &Store{driver: driver}, nil
}

// Close releases the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// UpsertRelations merges the given relations into the graph under scope.
func (s *Store) UpsertRelations(ctx context.Context, scope types.Scope, relations []types.Relation) error {
	if scope.IsZero() {
		return fmt.Errorf("%w: scope is required", storage.ErrInvalidInput)
	}

	if len(relations) == 0 {
		return nil
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, rel := range relations {
			if rel.Source == "" || rel.Target == "" || rel.Relationship == "" {
				continue
			}

			params := scopeParams(scope)
			params["source"] = rel.Source
			params["target"] = rel.Target
			params["relationship"] = rel.Relationship

			if _, err := tx.Run(ctx, upsertRelationCypher(scope), params); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("neo4j: failed to upsert relations: %w", err)
	}

	return nil
}

// RelatedEntities returns relations within scope touching any of the named
// entities (one hop).
func (s *Store) RelatedEntities(ctx context.Context, scope types.Scope, names []string, limit int) ([]types.Relation, error) {
	if scope.IsZero() {
		return nil, fmt.Errorf("%w: scope is required", storage.ErrInvalidInput)
	}

	if len(names) == 0 {
		return nil, nil
	}

	if limit < 1 {
		limit = 25
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	params := scopeParams(scope)
	params["names"] = names
	params["limit"] = limit

	query := `
		MATCH (a:Entity)-[r:RELATES]->(b:Entity)
		WHERE (a.name IN $names OR b.name IN $names)
		  AND ` + scopeMatch("a", scope) + `
		  AND ` + scopeMatch("b", scope) + `
		RETURN a.name AS source, r.name AS relationship, b.name AS target
		LIMIT $limit
	`

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: failed to query related entities: %w", err)
	}

	var relations []types.Relation
	for _, record := range records.([]*neo4j.Record) {
		relations = append(relations, types.Relation{
			Source:       stringValue(record, "source"),
			Relationship: stringValue(record, "relationship"),
			Target:       stringValue(record, "target"),
		})
	}

	return relations, nil
}

// DeleteByScope removes all graph data for a scope.
func (s *Store) DeleteByScope(ctx context.Context, scope types.Scope) error {
	if scope.IsZero() {
		return fmt.Errorf("%w: scope is required", storage.ErrInvalidInput)
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (n:Entity)
		WHERE ` + scopeMatch("n", scope) + `
		DETACH DELETE n
	`

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, scopeParams(scope))
	})
	if err != nil {
		return fmt.Errorf("neo4j: failed to delete graph data: %w", err)
	}

	return nil
}

// upsertRelationCypher builds the MERGE statement for one relation. Scope
// properties are stamped on both nodes so scoped deletes can find them.
func upsertRelationCypher(scope types.Scope) string {
	props := scopePropList(scope)
	return `
		MERGE (a:Entity {name: $source` + props + `})
		MERGE (b:Entity {name: $target` + props + `})
		MERGE (a)-[r:RELATES {name: $relationship}]->(b)
	`
}

// scopeMatch builds a predicate matching the node alias against every scope
// id that is set.
func scopeMatch(alias string, scope types.Scope) string {
	pred := ""
	and := func(clause string) {
		if pred != "" {
			pred += " AND "
		}
		pred += clause
	}

	if scope.UserID != "" {
		and(alias + ".user_id = $user_id")
	}
	if scope.AgentID != "" {
		and(alias + ".agent_id = $agent_id")
	}
	if scope.RunID != "" {
		and(alias + ".run_id = $run_id")
	}

	return pred
}

// scopePropList renders the scope ids as inline node properties
// (", user_id: $user_id" etc.) for MERGE patterns.
func scopePropList(scope types.Scope) string {
	props := ""
	if scope.UserID != "" {
		props += ", user_id: $user_id"
	}
	if scope.AgentID != "" {
		props += ", agent_id: $agent_id"
	}
	if scope.RunID != "" {
		props += ", run_id: $run_id"
	}
	return props
}

func scopeParams(scope types.Scope) map[string]any {
	params := make(map[string]any)
	if scope.UserID != "" {
		params["user_id"] = scope.UserID
	}
	if scope.AgentID != "" {
		params["agent_id"] = scope.AgentID
	}
	if scope.RunID != "" {
		params["run_id"] = scope.RunID
	}
	return params
}

func stringValue(record *neo4j.Record, key string) string {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
