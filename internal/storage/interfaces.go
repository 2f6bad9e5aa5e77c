// Package storage defines the store interfaces the memory facade composes.
//
// The interfaces are deliberately small: the vector store owns record
// persistence and similarity search, the graph store owns entity/relation
// data. Either can be swapped independently.
package storage

import (
	"context"

	"github.com/recallkit/recall/pkg/types"
)

// VectorStore provides CRUD and cosine-similarity search over memory records.
type VectorStore interface {
	// Insert persists a new memory record, embedding included.
	Insert(ctx context.Context, memory *types.Memory) error

	// Get retrieves a memory by ID.
	// Returns ErrNotFound if the memory doesn't exist.
	Get(ctx context.Context, id string) (*types.Memory, error)

	// List retrieves memories within a scope, newest first.
	List(ctx context.Context, scope types.Scope, opts ListOptions) ([]types.Memory, error)

	// UpdateContent overwrites a memory's text and embedding.
	// Returns ErrNotFound if the memory doesn't exist.
	UpdateContent(ctx context.Context, id string, content string, embedding []float32) error

	// Delete removes a memory by ID.
	// Returns ErrNotFound if the memory doesn't exist.
	Delete(ctx context.Context, id string) error

	// DeleteByScope removes every memory within a scope and returns the
	// number of records removed.
	DeleteByScope(ctx context.Context, scope types.Scope) (int, error)

	// Search returns the memories within scope nearest to the query vector,
	// ordered by descending cosine similarity. The similarity is written to
	// each result's Score field.
	Search(ctx context.Context, scope types.Scope, query []float32, opts SearchOptions) ([]types.Memory, error)

	// Close releases any resources held by the store.
	Close() error
}

// GraphStore provides entity/relation persistence for a scope.
// Implementations are optional; the facade runs without one.
type GraphStore interface {
	// UpsertRelations merges the given relations into the graph under scope.
	UpsertRelations(ctx context.Context, scope types.Scope, relations []types.Relation) error

	// RelatedEntities returns relations within scope touching any of the
	// named entities (one hop).
	RelatedEntities(ctx context.Context, scope types.Scope, names []string, limit int) ([]types.Relation, error)

	// DeleteByScope removes all graph data for a scope.
	DeleteByScope(ctx context.Context, scope types.Scope) error

	// Close releases the underlying driver.
	Close(ctx context.Context) error
}
