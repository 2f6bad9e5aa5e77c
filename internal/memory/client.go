// Package memory implements the memory facade behind the MCP tool surface.
//
// The facade owns no retrieval logic of its own: facts come from the LLM,
// similarity ranking from the vector store, relations from the graph store.
// It orchestrates those calls and enforces scope resolution and validation.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/recallkit/recall/internal/config"
	"github.com/recallkit/recall/internal/llm"
	"github.com/recallkit/recall/internal/storage"
	"github.com/recallkit/recall/pkg/types"
)

// ErrUnsupported is returned for operations that are deliberately disabled
// in self-hosted mode.
var ErrUnsupported = errors.New("operation not supported")

// Client is the memory facade. Construct with NewClient; the graph store
// may be nil, in which case relation handling is skipped entirely.
type Client struct {
	cfg      *config.Config
	store    storage.VectorStore
	graph    storage.GraphStore
	text     llm.TextGenerator
	embedder llm.EmbeddingGenerator

	// newID generates record ids; overridable in tests.
	newID func() string
}

// NewClient creates a memory facade over the given collaborators.
func NewClient(cfg *config.Config, store storage.VectorStore, graph storage.GraphStore, text llm.TextGenerator, embedder llm.EmbeddingGenerator) *Client {
	return &Client{
		cfg:      cfg,
		store:    store,
		graph:    graph,
		text:     text,
		embedder: embedder,
		newID:    uuid.NewString,
	}
}

// AddInput carries the arguments for Add. Exactly one of Text or Messages
// must be non-empty.
type AddInput struct {
	Text     string
	Messages []types.Message
	Scope    types.Scope
	Metadata map[string]interface{}
}

// SearchInput carries the arguments for Search.
type SearchInput struct {
	Query   string
	Scope   types.Scope
	Filters map[string]interface{}
	Limit   int
}

// SearchOutput is the search result set, with graph relations attached when
// the graph store is enabled.
type SearchOutput struct {
	Results   []types.Memory   `json:"results"`
	Relations []types.Relation `json:"relations,omitempty"` // nil when the graph store is disabled
}

// GetAllInput carries the arguments for GetAll.
type GetAllInput struct {
	Scope    types.Scope
	Filters  map[string]interface{}
	Page     int
	PageSize int
}

// Add distills the input into facts, embeds each one and stores the
// resulting records. With the graph store enabled it also merges extracted
// relations. Returns one event per created record.
func (c *Client) Add(ctx context.Context, input AddInput) ([]types.MemoryEvent, error) {
	content, err := flattenInput(input)
	if err != nil {
		return nil, err
	}

	scope := c.resolveScope(input.Scope, nil)

	facts, err := c.extractFacts(ctx, content)
	if err != nil {
		return nil, err
	}

	events := make([]types.MemoryEvent, 0, len(facts))
	for _, fact := range facts {
		embedding, err := c.embedder.Embed(ctx, fact)
		if err != nil {
			return nil, fmt.Errorf("failed to embed fact: %w", err)
		}

		record := &types.Memory{
			ID:        c.newID(),
			Content:   fact,
			UserID:    scope.UserID,
			AgentID:   scope.AgentID,
			RunID:     scope.RunID,
			Metadata:  input.Metadata,
			Embedding: embedding,
		}

		if err := c.store.Insert(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to store memory: %w", err)
		}

		events = append(events, types.MemoryEvent{
			ID:     record.ID,
			Memory: record.Content,
			Event:  "ADD",
		})
	}

	// Relation extraction is best effort: a graph failure must not lose the
	// records already stored above.
	if c.graph != nil && len(facts) > 0 {
		if err := c.addRelations(ctx, scope, content); err != nil {
			log.Printf("memory: relation extraction skipped: %v", err)
		}
	}

	return events, nil
}

// Search embeds the query and returns the nearest memories within scope.
func (c *Client) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", storage.ErrInvalidInput)
	}

	scope := c.resolveScope(input.Scope, input.Filters)

	embedding, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := c.store.Search(ctx, scope, embedding, storage.SearchOptions{Limit: input.Limit})
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []types.Memory{}
	}

	out := &SearchOutput{Results: results}

	if c.graph != nil {
		relations, err := c.queryRelations(ctx, scope, query)
		if err != nil {
			log.Printf("memory: graph lookup skipped: %v", err)
		} else {
			out.Relations = relations
		}
	}

	return out, nil
}

// GetAll lists memories within scope, sliced to the requested page.
func (c *Client) GetAll(ctx context.Context, input GetAllInput) ([]types.Memory, error) {
	scope := c.resolveScope(input.Scope, input.Filters)

	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	// The page window is pushed down to the store as limit/offset so deep
	// pages are never truncated by the list fetch bound.
	memories, err := c.store.List(ctx, scope, storage.ListOptions{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}
	if memories == nil {
		memories = []types.Memory{}
	}

	return memories, nil
}

// Get fetches exactly one record by id.
func (c *Client) Get(ctx context.Context, id string) (*types.Memory, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: memory_id is required", storage.ErrInvalidInput)
	}
	return c.store.Get(ctx, id)
}

// Update overwrites the stored text for one record and re-embeds it.
func (c *Client) Update(ctx context.Context, id, text string) (map[string]interface{}, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: memory_id is required", storage.ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", storage.ErrInvalidInput)
	}

	embedding, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}

	if err := c.store.UpdateContent(ctx, id, text, embedding); err != nil {
		return nil, err
	}

	return map[string]interface{}{"message": "Memory updated successfully!"}, nil
}

// Delete removes one record by id. Missing ids are an error, not a no-op.
func (c *Client) Delete(ctx context.Context, id string) (map[string]interface{}, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: memory_id is required", storage.ErrInvalidInput)
	}

	if err := c.store.Delete(ctx, id); err != nil {
		return nil, err
	}

	return map[string]interface{}{"message": "Memory deleted successfully!"}, nil
}

// DeleteAll bulk-deletes every record within scope, graph data included.
func (c *Client) DeleteAll(ctx context.Context, scope types.Scope) (map[string]interface{}, error) {
	scope = c.resolveScope(scope, nil)

	if _, err := c.store.DeleteByScope(ctx, scope); err != nil {
		return nil, err
	}

	if c.graph != nil {
		if err := c.graph.DeleteByScope(ctx, scope); err != nil {
			return nil, fmt.Errorf("failed to delete graph data: %w", err)
		}
	}

	return map[string]interface{}{"message": "Memories deleted successfully!"}, nil
}

// DeleteEntity cascade-deletes all records owned by the given entity.
// The scope must be explicit here: falling back to the default user id
// would silently wipe the wrong entity.
func (c *Client) DeleteEntity(ctx context.Context, scope types.Scope, appID string) (map[string]interface{}, error) {
	if appID != "" {
		return nil, fmt.Errorf("%w: unsupported_scope: app_id deletion requires the hosted platform", storage.ErrInvalidInput)
	}
	if scope.IsZero() {
		return nil, fmt.Errorf("%w: scope_missing: provide user_id, agent_id or run_id", storage.ErrInvalidInput)
	}

	return c.DeleteAll(ctx, scope)
}

// ListEntities is deliberately disabled in self-hosted mode.
func (c *Client) ListEntities(ctx context.Context) (interface{}, error) {
	return nil, fmt.Errorf("%w: list_entities is not available in self-hosted mode", ErrUnsupported)
}

// resolveScope fills in the effective scope: explicit fields win, then a
// user_id recovered from filters, then the configured default user id.
func (c *Client) resolveScope(scope types.Scope, filters map[string]interface{}) types.Scope {
	if !scope.IsZero() {
		return scope
	}

	if userID := ExtractUserID(filters); userID != "" {
		return types.Scope{UserID: userID}
	}

	return types.Scope{UserID: c.cfg.Memory.DefaultUserID}
}

// extractFacts runs the fact extraction prompt. When the model replies with
// something unparseable the raw content is kept as a single fact rather than
// dropping the add.
func (c *Client) extractFacts(ctx context.Context, content string) ([]string, error) {
	reply, err := c.text.Complete(ctx, llm.FactExtractionPrompt(content))
	if err != nil {
		return nil, fmt.Errorf("fact extraction failed: %w", err)
	}

	facts, err := llm.ParseFactResponse(reply)
	if err != nil {
		log.Printf("memory: unparseable fact response, storing raw content: %v", err)
		return []string{content}, nil
	}

	return facts, nil
}

func (c *Client) addRelations(ctx context.Context, scope types.Scope, content string) error {
	reply, err := c.text.Complete(ctx, llm.RelationExtractionPrompt(content))
	if err != nil {
		return err
	}

	relations, err := llm.ParseRelationResponse(reply)
	if err != nil {
		return err
	}

	if len(relations) == 0 {
		return nil
	}

	return c.graph.UpsertRelations(ctx, scope, relations)
}

// queryRelations extracts entity names from the query and returns their
// 1-hop neighborhood.
func (c *Client) queryRelations(ctx context.Context, scope types.Scope, query string) ([]types.Relation, error) {
	reply, err := c.text.Complete(ctx, llm.RelationExtractionPrompt(query))
	if err != nil {
		return nil, err
	}

	extracted, err := llm.ParseRelationResponse(reply)
	if err != nil {
		return nil, err
	}

	names := entityNames(extracted)
	if len(names) == 0 {
		return []types.Relation{}, nil
	}

	relations, err := c.graph.RelatedEntities(ctx, scope, names, 25)
	if err != nil {
		return nil, err
	}
	if relations == nil {
		relations = []types.Relation{}
	}

	return relations, nil
}

// flattenInput renders the add input as a single block of text.
func flattenInput(input AddInput) (string, error) {
	text := strings.TrimSpace(input.Text)

	if text == "" && len(input.Messages) == 0 {
		return "", fmt.Errorf("%w: either text or messages is required", storage.ErrInvalidInput)
	}

	if text != "" {
		return text, nil
	}

	var b strings.Builder
	for _, msg := range input.Messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		if msg.Role != "" {
			b.WriteString(msg.Role)
			b.WriteString(": ")
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	flattened := strings.TrimSpace(b.String())
	if flattened == "" {
		return "", fmt.Errorf("%w: messages contain no content", storage.ErrInvalidInput)
	}

	return flattened, nil
}

// entityNames collects the distinct entity names appearing in relations.
func entityNames(relations []types.Relation) []string {
	seen := make(map[string]bool)
	var names []string

	for _, r := range relations {
		for _, name := range []string{r.Source, r.Target} {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}

	return names
}
