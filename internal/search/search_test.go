package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairprog-ai/pairprog/pkg/types"
)

func seedMemoryIndex(t *testing.T) *MemoryIndex {
	t.Helper()
	ctx := context.Background()
	idx := NewMemoryIndex()

	docs := []Document{
		{ID: "1", Title: "goroutines", Content: "goroutines are lightweight threads managed by the runtime"},
		{ID: "2", Title: "channels", Content: "channels connect goroutines for communication"},
		{ID: "3", Title: "maps", Content: "maps are unordered key value collections"},
	}
	for _, d := range docs {
		require.NoError(t, idx.Add(ctx, d))
	}
	return idx
}

func TestMemoryIndexPagination(t *testing.T) {
	ctx := context.Background()
	idx := seedMemoryIndex(t)

	seen := make(map[string]bool)
	for offset := 0; offset < 2; offset++ {
		res, err := idx.Search(ctx, "goroutines", offset)
		require.NoError(t, err)
		assert.False(t, seen[res.Document.ID], "distinct result per offset")
		seen[res.Document.ID] = true
	}

	_, err := idx.Search(ctx, "goroutines", 2)
	assert.ErrorIs(t, err, ErrNoMoreResults)
}

func TestMemoryIndexRanking(t *testing.T) {
	ctx := context.Background()
	idx := seedMemoryIndex(t)

	res, err := idx.Search(ctx, "goroutines", 0)
	require.NoError(t, err)
	assert.Equal(t, "1", res.Document.ID, "doc with more term hits ranks first")
}

func TestMemoryIndexNoMatch(t *testing.T) {
	ctx := context.Background()
	idx := seedMemoryIndex(t)

	_, err := idx.Search(ctx, "kubernetes", 0)
	assert.ErrorIs(t, err, ErrNoMoreResults)
}

func TestMemoryIndexUpsert(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	require.NoError(t, idx.Add(ctx, Document{ID: "1", Title: "old", Content: "stale text"}))
	require.NoError(t, idx.Add(ctx, Document{ID: "1", Title: "new", Content: "fresh text"}))

	res, err := idx.Search(ctx, "fresh", 0)
	require.NoError(t, err)
	assert.Equal(t, "new", res.Document.Title)

	_, err = idx.Search(ctx, "stale", 0)
	assert.ErrorIs(t, err, ErrNoMoreResults)
}

// fakeTypesense serves just enough of the REST surface for the client.
func fakeTypesense(t *testing.T, docs []Document) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /collections/library", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.Header.Get("X-TYPESENSE-API-KEY"))
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /collections/library/documents", func(w http.ResponseWriter, r *http.Request) {
		var doc Document
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /collections/library/documents/search", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		offset := page - 1

		resp := typesenseSearchResponse{Found: len(docs)}
		if offset >= 0 && offset < len(docs) {
			resp.Hits = []typesenseHit{{Document: docs[offset], TextMatch: 1}}
		}
		json.NewEncoder(w).Encode(resp)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestTypesensePagination(t *testing.T) {
	ctx := context.Background()
	docs := []Document{
		{ID: "a", Title: "first"},
		{ID: "b", Title: "second"},
		{ID: "c", Title: "third"},
	}
	srv := fakeTypesense(t, docs)

	idx, err := NewTypesenseIndex(ctx, types.SearchConfig{
		URL:        srv.URL,
		APIKey:     "test-key",
		Collection: "library",
	})
	require.NoError(t, err)

	for i, want := range docs {
		res, err := idx.Search(ctx, "anything", i)
		require.NoError(t, err)
		assert.Equal(t, want.ID, res.Document.ID)
	}

	_, err = idx.Search(ctx, "anything", 3)
	assert.ErrorIs(t, err, ErrNoMoreResults)
}

func TestTypesenseAdd(t *testing.T) {
	ctx := context.Background()
	srv := fakeTypesense(t, nil)

	idx, err := NewTypesenseIndex(ctx, types.SearchConfig{
		URL:        srv.URL,
		APIKey:     "test-key",
		Collection: "library",
	})
	require.NoError(t, err)

	require.NoError(t, idx.Add(ctx, Document{ID: "x", Title: "t", Content: "c"}))
}

func TestTypesenseUnreachable(t *testing.T) {
	ctx := context.Background()

	_, err := NewTypesenseIndex(ctx, types.SearchConfig{
		URL:    "http://127.0.0.1:1", // nothing listens here
		APIKey: "k",
	})
	require.Error(t, err)
}
