package memory

import (
	"context"
	"sync"

	"github.com/recallkit/recall/internal/storage"
	"github.com/recallkit/recall/pkg/types"
)

// fakeVectorStore is an in-memory storage.VectorStore honoring scope filters.
type fakeVectorStore struct {
	mu       sync.Mutex
	records  map[string]types.Memory
	order    []string
	failWith error
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{records: make(map[string]types.Memory)}
}

func (s *fakeVectorStore) Insert(ctx context.Context, memory *types.Memory) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[memory.ID] = *memory
	s.order = append(s.order, memory.ID)
	return nil
}

func (s *fakeVectorStore) Get(ctx context.Context, id string) (*types.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &m, nil
}

func (s *fakeVectorStore) List(ctx context.Context, scope types.Scope, opts storage.ListOptions) ([]types.Memory, error) {
	opts.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		out     []types.Memory
		skipped int
	)
	for _, id := range s.order {
		m := s.records[id]
		if !matchesScope(m, scope) {
			continue
		}
		if skipped < opts.Offset {
			skipped++
			continue
		}
		out = append(out, m)
		if len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *fakeVectorStore) UpdateContent(ctx context.Context, id string, content string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.records[id]
	if !ok {
		return storage.ErrNotFound
	}
	m.Content = content
	m.Embedding = embedding
	s.records[id] = m
	return nil
}

func (s *fakeVectorStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *fakeVectorStore) DeleteByScope(ctx context.Context, scope types.Scope) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for id, m := range s.records {
		if matchesScope(m, scope) {
			delete(s.records, id)
			count++
		}
	}
	return count, nil
}

func (s *fakeVectorStore) Search(ctx context.Context, scope types.Scope, query []float32, opts storage.SearchOptions) ([]types.Memory, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	opts.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []types.Memory
	for _, id := range s.order {
		m, ok := s.records[id]
		if !ok || !matchesScope(m, scope) {
			continue
		}
		m.Score = 0.9
		out = append(out, m)
		if len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *fakeVectorStore) Close() error { return nil }

func matchesScope(m types.Memory, scope types.Scope) bool {
	if scope.UserID != "" && m.UserID != scope.UserID {
		return false
	}
	if scope.AgentID != "" && m.AgentID != scope.AgentID {
		return false
	}
	if scope.RunID != "" && m.RunID != scope.RunID {
		return false
	}
	return true
}

// fakeGraphStore records calls made against it.
type fakeGraphStore struct {
	upserted []types.Relation
	related  []types.Relation
	deleted  []types.Scope
	failWith error
}

func (g *fakeGraphStore) UpsertRelations(ctx context.Context, scope types.Scope, relations []types.Relation) error {
	if g.failWith != nil {
		return g.failWith
	}
	g.upserted = append(g.upserted, relations...)
	return nil
}

func (g *fakeGraphStore) RelatedEntities(ctx context.Context, scope types.Scope, names []string, limit int) ([]types.Relation, error) {
	if g.failWith != nil {
		return nil, g.failWith
	}
	return g.related, nil
}

func (g *fakeGraphStore) DeleteByScope(ctx context.Context, scope types.Scope) error {
	if g.failWith != nil {
		return g.failWith
	}
	g.deleted = append(g.deleted, scope)
	return nil
}

func (g *fakeGraphStore) Close(ctx context.Context) error { return nil }

// fakeTextGenerator replies with canned responses keyed by call order.
type fakeTextGenerator struct {
	replies []string
	calls   int
	err     error
}

func (f *fakeTextGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	reply := "{}"
	if f.calls < len(f.replies) {
		reply = f.replies[f.calls]
	}
	f.calls++
	return reply, nil
}

func (f *fakeTextGenerator) GetModel() string { return "fake-chat" }

// fakeEmbedder returns a fixed vector for every input.
type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedder) GetModel() string { return "fake-embed" }
