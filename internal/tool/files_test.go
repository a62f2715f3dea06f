package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenRead(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	write := NewWriteFileTool(dir)
	res, err := write.Execute(ctx, json.RawMessage(`{"path":"notes/a.txt","content":"hello"}`), &Context{})
	require.NoError(t, err)
	assert.True(t, res.Mechanical)

	read := NewReadFileTool(dir)
	res, err = read.Execute(ctx, json.RawMessage(`{"path":"notes/a.txt"}`), &Context{})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Output)
}

func TestReadMissingFile(t *testing.T) {
	ctx := context.Background()
	read := NewReadFileTool(t.TempDir())

	_, err := read.Execute(ctx, json.RawMessage(`{"path":"absent.txt"}`), &Context{})
	require.Error(t, err)
}

func TestPathEscapeRejected(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	read := NewReadFileTool(dir)
	_, err := read.Execute(ctx, json.RawMessage(`{"path":"../outside.txt"}`), &Context{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the working directory")

	write := NewWriteFileTool(dir)
	input := fmt.Sprintf(`{"path":%q,"content":"x"}`, filepath.Join(os.TempDir(), "escape.txt"))
	_, err = write.Execute(ctx, json.RawMessage(input), &Context{})
	require.Error(t, err)
}

func TestListFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	list := NewListFilesTool(dir)
	res, err := list.Execute(ctx, json.RawMessage(`{}`), &Context{})
	require.NoError(t, err)
	assert.Equal(t, "a.txt\nb.txt\nsub/", res.Output)
}
