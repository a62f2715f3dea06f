package objectstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairprog-ai/pairprog/pkg/types"
)

func newTestStore() *Store {
	return New(NewMemoryBackend(), NewMemoryBackend())
}

func TestStorePutGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	type rec struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}

	require.NoError(t, s.Put(ctx, "a/b", rec{Name: "x", N: 7}))

	var got rec
	found, err := s.GetJSON(ctx, "a/b", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec{Name: "x", N: 7}, got)
}

func TestStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	data, found, err := s.Get(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

func TestStoreRouting(t *testing.T) {
	ctx := context.Background()
	fast := NewMemoryBackend()
	durable := NewMemoryBackend()
	s := New(fast, durable)

	// Small record lands on the fast tier.
	require.NoError(t, s.Put(ctx, "small", map[string]int{"n": 1}))
	_, err := fast.Get(ctx, "small")
	assert.NoError(t, err)
	_, err = durable.Get(ctx, "small")
	assert.ErrorIs(t, err, ErrNotFound)

	// Document bytes land on the durable tier.
	require.NoError(t, s.Put(ctx, "doc", []byte("hello")))
	_, err = durable.Get(ctx, "doc")
	assert.NoError(t, err)
	_, err = fast.Get(ctx, "doc")
	assert.ErrorIs(t, err, ErrNotFound)

	// Oversized record is routed durable despite being a record.
	big := bytes.Repeat([]byte("x"), DefaultBlobThreshold+1)
	require.NoError(t, s.PutRecord(ctx, "big", string(big)))
	_, err = durable.Get(ctx, "big")
	assert.NoError(t, err)

	// Readers see one namespace regardless of tier.
	for _, key := range []string{"small", "doc", "big"} {
		_, found, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, found, key)
	}
}

func TestStoreRewriteChangesTier(t *testing.T) {
	ctx := context.Background()
	fast := NewMemoryBackend()
	durable := NewMemoryBackend()
	s := New(fast, durable)

	require.NoError(t, s.Put(ctx, "k", map[string]int{"n": 1}))
	require.NoError(t, s.Put(ctx, "k", []byte("now a document")))

	// The fast copy must not shadow the rewrite.
	data, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("now a document"), data)

	_, err = fast.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreSubIsolation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	alpha := s.Sub("alpha")
	beta := s.Sub("beta")

	require.NoError(t, alpha.Put(ctx, "k", []byte("a")))
	require.NoError(t, beta.Put(ctx, "k", []byte("b")))

	data, found, err := alpha.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("a"), data)

	data, _, err = beta.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), data)

	// The parent sees both under their namespaces.
	data, found, err = s.Get(ctx, "alpha/k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("a"), data)
	_, found, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreSubNested(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	inner := s.Sub("a").Sub("b")
	require.NoError(t, inner.Put(ctx, "k", []byte("v")))

	_, found, err := s.Get(ctx, "a/b/k")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestStoreDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))

	_, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting again is a no-op.
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "never-existed"))
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	require.NoError(t, s.Put(ctx, "session/a/messages", map[string]int{}))
	require.NoError(t, s.Put(ctx, "session/b/messages", []byte("doc")))
	require.NoError(t, s.Put(ctx, "other/k", []byte("x")))

	keys, err := s.List(ctx, "session/")
	require.NoError(t, err)
	assert.Equal(t, []string{"session/a/messages", "session/b/messages"}, keys)
}

func TestStoreListSegmentBoundary(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	require.NoError(t, s.Put(ctx, "session/a/messages", map[string]int{}))
	require.NoError(t, s.Put(ctx, "sessions/b/messages", []byte("sibling")))
	require.NoError(t, s.Put(ctx, "session", []byte("exact")))

	keys, err := s.List(ctx, "session/")
	require.NoError(t, err)
	assert.Equal(t, []string{"session", "session/a/messages"}, keys)
}

func TestStoreListSub(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	sub := s.Sub("ns")

	require.NoError(t, sub.Put(ctx, "x", []byte("1")))
	require.NoError(t, sub.Put(ctx, "y", map[string]int{}))

	keys, err := sub.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, keys)
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		segments []string
		want     string
	}{
		{[]string{"a", "b"}, "a/b"},
		{[]string{"/a/", "/b/"}, "a/b"},
		{[]string{"a//b", "c"}, "a/b/c"},
		{[]string{"", "k"}, "k"},
		{[]string{"", ""}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, joinPath(tt.segments...))
	}
}

func TestOpenLocalFallbacks(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, types.StoresConfig{Path: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	data, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v"), data)
	require.NoError(t, s.Ping(ctx))
}
