package types

import "time"

// Memory is a single stored fact. Records are partitioned by their owning
// scope (user/agent/run) and carry the embedding used for semantic search.
type Memory struct {
	ID        string                 `json:"id"`                   // Opaque UUID
	Content   string                 `json:"memory"`               // Extracted fact text
	UserID    string                 `json:"user_id,omitempty"`    // Owning user
	AgentID   string                 `json:"agent_id,omitempty"`   // Owning agent
	RunID     string                 `json:"run_id,omitempty"`     // Owning run
	Metadata  map[string]interface{} `json:"metadata,omitempty"`   // Arbitrary caller metadata
	Score     float64                `json:"score,omitempty"`      // Similarity score, search results only
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`

	// Embedding is never serialized to clients; it only travels between
	// the facade and the vector store.
	Embedding []float32 `json:"-"`
}

// Scope identifies the owner of a set of memories. At least one field must
// be set for any scoped operation.
type Scope struct {
	UserID  string `json:"user_id,omitempty"`
	AgentID string `json:"agent_id,omitempty"`
	RunID   string `json:"run_id,omitempty"`
}

// IsZero reports whether no scope field is set.
func (s Scope) IsZero() bool {
	return s.UserID == "" && s.AgentID == "" && s.RunID == ""
}

// Message is one turn of a conversation passed to add_memory as an
// alternative to raw text.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MemoryEvent describes what happened to a record during an add operation.
type MemoryEvent struct {
	ID     string `json:"id"`
	Memory string `json:"memory"`
	Event  string `json:"event"` // "ADD"
}

// Relation is a directed edge between two entities in the relation graph
// extracted from memory content.
type Relation struct {
	Source       string `json:"source"`
	Relationship string `json:"relationship"`
	Target       string `json:"target"`
}
