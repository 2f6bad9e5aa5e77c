package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recallkit/recall/internal/config"
	"github.com/recallkit/recall/internal/storage"
	"github.com/recallkit/recall/pkg/types"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = "sk-test"
	return cfg
}

func newTestClient(store *fakeVectorStore, graph storage.GraphStore, text *fakeTextGenerator) *Client {
	c := NewClient(testConfig(), store, graph, text, &fakeEmbedder{})
	n := 0
	c.newID = func() string {
		n++
		return "mem-" + string(rune('0'+n))
	}
	return c
}

func TestAddExtractsAndStoresFacts(t *testing.T) {
	store := newFakeVectorStore()
	text := &fakeTextGenerator{replies: []string{
		`{"facts": ["likes dark roast coffee", "works remotely"]}`,
	}}
	client := newTestClient(store, nil, text)

	events, err := client.Add(context.Background(), AddInput{
		Text:  "I love dark roast coffee and I work from home",
		Scope: types.Scope{UserID: "u1"},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "ADD", events[0].Event)
	assert.Equal(t, "likes dark roast coffee", events[0].Memory)

	stored, err := store.Get(context.Background(), events[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UserID)
	assert.NotEmpty(t, stored.Embedding)
}

func TestAddRoundTripThroughGet(t *testing.T) {
	store := newFakeVectorStore()
	text := &fakeTextGenerator{replies: []string{`{"facts": ["likes dark roast coffee"]}`}}
	client := newTestClient(store, nil, text)

	events, err := client.Add(context.Background(), AddInput{
		Text:  "likes dark roast coffee",
		Scope: types.Scope{UserID: "u1"},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)

	got, err := client.Get(context.Background(), events[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "likes dark roast coffee", got.Content)
}

func TestAddAcceptsMessages(t *testing.T) {
	store := newFakeVectorStore()
	text := &fakeTextGenerator{replies: []string{`{"facts": ["prefers tea"]}`}}
	client := newTestClient(store, nil, text)

	events, err := client.Add(context.Background(), AddInput{
		Messages: []types.Message{
			{Role: "user", Content: "Actually I prefer tea"},
			{Role: "assistant", Content: "Noted!"},
		},
		Scope: types.Scope{UserID: "u1"},
	})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestAddRequiresTextOrMessages(t *testing.T) {
	client := newTestClient(newFakeVectorStore(), nil, &fakeTextGenerator{})

	_, err := client.Add(context.Background(), AddInput{Scope: types.Scope{UserID: "u1"}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestAddFallsBackToRawTextOnUnparseableReply(t *testing.T) {
	store := newFakeVectorStore()
	text := &fakeTextGenerator{replies: []string{"sorry, no JSON today"}}
	client := newTestClient(store, nil, text)

	events, err := client.Add(context.Background(), AddInput{
		Text:  "remember this verbatim",
		Scope: types.Scope{UserID: "u1"},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "remember this verbatim", events[0].Memory)
}

func TestAddUsesDefaultScopeWhenMissing(t *testing.T) {
	store := newFakeVectorStore()
	text := &fakeTextGenerator{replies: []string{`{"facts": ["a fact"]}`}}
	client := newTestClient(store, nil, text)

	events, err := client.Add(context.Background(), AddInput{Text: "a fact"})
	require.NoError(t, err)
	require.Len(t, events, 1)

	stored, err := store.Get(context.Background(), events[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "recall-mcp", stored.UserID)
}

func TestAddMergesRelationsWhenGraphEnabled(t *testing.T) {
	store := newFakeVectorStore()
	graph := &fakeGraphStore{}
	text := &fakeTextGenerator{replies: []string{
		`{"facts": ["alice works at acme"]}`,
		`{"relations": [{"source":"alice","relationship":"works_at","target":"acme"}]}`,
	}}
	client := newTestClient(store, graph, text)

	_, err := client.Add(context.Background(), AddInput{
		Text:  "alice works at acme",
		Scope: types.Scope{UserID: "u1"},
	})
	require.NoError(t, err)

	require.Len(t, graph.upserted, 1)
	assert.Equal(t, "works_at", graph.upserted[0].Relationship)
}

func TestAddSurvivesGraphFailure(t *testing.T) {
	store := newFakeVectorStore()
	graph := &fakeGraphStore{failWith: errors.New("bolt connection refused")}
	text := &fakeTextGenerator{replies: []string{
		`{"facts": ["alice works at acme"]}`,
		`{"relations": [{"source":"alice","relationship":"works_at","target":"acme"}]}`,
	}}
	client := newTestClient(store, graph, text)

	events, err := client.Add(context.Background(), AddInput{
		Text:  "alice works at acme",
		Scope: types.Scope{UserID: "u1"},
	})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestSearchReturnsScopedResults(t *testing.T) {
	store := newFakeVectorStore()
	seed(t, store, "m1", "likes dark roast coffee", "u1")
	seed(t, store, "m2", "enjoys hiking", "u2")

	text := &fakeTextGenerator{}
	client := newTestClient(store, nil, text)

	out, err := client.Search(context.Background(), SearchInput{
		Query: "coffee preference",
		Scope: types.Scope{UserID: "u1"},
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "m1", out.Results[0].ID)
	assert.Greater(t, out.Results[0].Score, 0.0)
	assert.Nil(t, out.Relations)
}

func TestSearchRequiresQuery(t *testing.T) {
	client := newTestClient(newFakeVectorStore(), nil, &fakeTextGenerator{})

	_, err := client.Search(context.Background(), SearchInput{Scope: types.Scope{UserID: "u1"}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestSearchInfersScopeFromFilters(t *testing.T) {
	store := newFakeVectorStore()
	seed(t, store, "m1", "likes dark roast coffee", "filtered-user")

	client := newTestClient(store, nil, &fakeTextGenerator{})

	out, err := client.Search(context.Background(), SearchInput{
		Query: "coffee",
		Filters: map[string]interface{}{
			"user_id": map[string]interface{}{"eq": "filtered-user"},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "m1", out.Results[0].ID)
}

func TestSearchIncludesRelationsWhenGraphEnabled(t *testing.T) {
	store := newFakeVectorStore()
	seed(t, store, "m1", "alice works at acme", "u1")

	graph := &fakeGraphStore{related: []types.Relation{
		{Source: "alice", Relationship: "works_at", Target: "acme"},
	}}
	text := &fakeTextGenerator{replies: []string{
		`{"relations": [{"source":"alice","relationship":"knows","target":"bob"}]}`,
	}}
	client := newTestClient(store, graph, text)

	out, err := client.Search(context.Background(), SearchInput{
		Query: "where does alice work",
		Scope: types.Scope{UserID: "u1"},
	})
	require.NoError(t, err)
	require.Len(t, out.Relations, 1)
	assert.Equal(t, "acme", out.Relations[0].Target)
}

func TestGetAllPagination(t *testing.T) {
	store := newFakeVectorStore()
	for _, id := range []string{"m1", "m2", "m3", "m4", "m5"} {
		seed(t, store, id, "fact "+id, "u1")
	}

	client := newTestClient(store, nil, &fakeTextGenerator{})

	page1, err := client.GetAll(context.Background(), GetAllInput{
		Scope: types.Scope{UserID: "u1"}, Page: 1, PageSize: 2,
	})
	require.NoError(t, err)
	require.Len(t, page1, 2)

	page3, err := client.GetAll(context.Background(), GetAllInput{
		Scope: types.Scope{UserID: "u1"}, Page: 3, PageSize: 2,
	})
	require.NoError(t, err)
	require.Len(t, page3, 1)

	page4, err := client.GetAll(context.Background(), GetAllInput{
		Scope: types.Scope{UserID: "u1"}, Page: 4, PageSize: 2,
	})
	require.NoError(t, err)
	assert.Empty(t, page4)
}

func TestGetAllReachesPagesBeyondListBound(t *testing.T) {
	store := newFakeVectorStore()
	for i := 0; i < 1005; i++ {
		seed(t, store, fmt.Sprintf("m%04d", i), fmt.Sprintf("fact %d", i), "u1")
	}

	client := newTestClient(store, nil, &fakeTextGenerator{})

	// Page 101 covers records 1000..1004; a page*page_size prefetch capped
	// at the list bound would return nothing here.
	page, err := client.GetAll(context.Background(), GetAllInput{
		Scope: types.Scope{UserID: "u1"}, Page: 101, PageSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.Equal(t, "m1000", page[0].ID)

	beyond, err := client.GetAll(context.Background(), GetAllInput{
		Scope: types.Scope{UserID: "u1"}, Page: 102, PageSize: 10,
	})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestGetMissingIDReturnsNotFound(t *testing.T) {
	client := newTestClient(newFakeVectorStore(), nil, &fakeTextGenerator{})

	_, err := client.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateOverwritesText(t *testing.T) {
	store := newFakeVectorStore()
	seed(t, store, "m1", "old text", "u1")

	client := newTestClient(store, nil, &fakeTextGenerator{})

	result, err := client.Update(context.Background(), "m1", "new text")
	require.NoError(t, err)
	assert.Contains(t, result["message"], "updated")

	got, err := store.Get(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "new text", got.Content)
}

func TestDeleteMissingIDReturnsNotFound(t *testing.T) {
	client := newTestClient(newFakeVectorStore(), nil, &fakeTextGenerator{})

	_, err := client.Delete(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteEntityCascades(t *testing.T) {
	store := newFakeVectorStore()
	seed(t, store, "m1", "fact one", "victim")
	seed(t, store, "m2", "fact two", "victim")
	seed(t, store, "m3", "unrelated", "bystander")

	graph := &fakeGraphStore{}
	client := newTestClient(store, graph, &fakeTextGenerator{})

	result, err := client.DeleteEntity(context.Background(), types.Scope{UserID: "victim"}, "")
	require.NoError(t, err)
	assert.Contains(t, result["message"], "deleted")

	remaining, err := client.GetAll(context.Background(), GetAllInput{Scope: types.Scope{UserID: "victim"}})
	require.NoError(t, err)
	assert.Empty(t, remaining)

	others, err := client.GetAll(context.Background(), GetAllInput{Scope: types.Scope{UserID: "bystander"}})
	require.NoError(t, err)
	assert.Len(t, others, 1)

	require.Len(t, graph.deleted, 1)
	assert.Equal(t, "victim", graph.deleted[0].UserID)
}

func TestDeleteEntityRejectsEmptyScope(t *testing.T) {
	client := newTestClient(newFakeVectorStore(), nil, &fakeTextGenerator{})

	_, err := client.DeleteEntity(context.Background(), types.Scope{}, "")
	require.ErrorIs(t, err, storage.ErrInvalidInput)
	assert.Contains(t, err.Error(), "scope_missing")
}

func TestDeleteEntityRejectsAppID(t *testing.T) {
	client := newTestClient(newFakeVectorStore(), nil, &fakeTextGenerator{})

	_, err := client.DeleteEntity(context.Background(), types.Scope{UserID: "u1"}, "app-1")
	require.ErrorIs(t, err, storage.ErrInvalidInput)
	assert.Contains(t, err.Error(), "unsupported_scope")
}

func TestListEntitiesUnsupported(t *testing.T) {
	client := newTestClient(newFakeVectorStore(), nil, &fakeTextGenerator{})

	_, err := client.ListEntities(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
}

func seed(t *testing.T, store *fakeVectorStore, id, content, userID string) {
	t.Helper()
	err := store.Insert(context.Background(), &types.Memory{
		ID: id, Content: content, UserID: userID, Embedding: []float32{0.1},
	})
	require.NoError(t, err)
}
