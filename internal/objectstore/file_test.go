package objectstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := NewFileBackend(t.TempDir())
	require.NoError(t, b.Ping(ctx))

	require.NoError(t, b.Put(ctx, "session/abc/messages", []byte(`[{"role":"user"}]`)))

	data, err := b.Get(ctx, "session/abc/messages")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"role":"user"}]`), data)
}

func TestFileBackendMissing(t *testing.T) {
	ctx := context.Background()
	b := NewFileBackend(t.TempDir())

	_, err := b.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, b.Delete(ctx, "absent"))
}

func TestFileBackendKeyVsChildDir(t *testing.T) {
	ctx := context.Background()
	b := NewFileBackend(t.TempDir())

	// A key and a longer key beneath it must coexist.
	require.NoError(t, b.Put(ctx, "a", []byte("1")))
	require.NoError(t, b.Put(ctx, "a/b", []byte("2")))

	data, err := b.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), data)

	data, err = b.Get(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), data)
}

func TestFileBackendList(t *testing.T) {
	ctx := context.Background()
	b := NewFileBackend(t.TempDir())

	require.NoError(t, b.Put(ctx, "x/1", []byte("a")))
	require.NoError(t, b.Put(ctx, "x/2", []byte("b")))
	require.NoError(t, b.Put(ctx, "y/1", []byte("c")))

	keys, err := b.List(ctx, "x/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x/1", "x/2"}, keys)
}

func TestFileBackendOverwrite(t *testing.T) {
	ctx := context.Background()
	b := NewFileBackend(t.TempDir())

	require.NoError(t, b.Put(ctx, "k", []byte("old")))
	require.NoError(t, b.Put(ctx, "k", []byte("new")))

	data, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}
