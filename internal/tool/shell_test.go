package tool

import (
	"context"
	"encoding/json"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellEcho(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix shell test")
	}
	ctx := context.Background()
	sh := NewShellTool(t.TempDir())

	res, err := sh.Execute(ctx, json.RawMessage(`{"command":"echo hello"}`), &Context{})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Output)
	assert.Equal(t, 0, res.Metadata["exit"])
}

func TestShellNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix shell test")
	}
	ctx := context.Background()
	sh := NewShellTool(t.TempDir())

	res, err := sh.Execute(ctx, json.RawMessage(`{"command":"exit 3"}`), &Context{})
	require.NoError(t, err, "a failing command is a result, not an error")
	assert.Equal(t, 3, res.Metadata["exit"])
}

func TestShellWorkDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix shell test")
	}
	ctx := context.Background()
	dir := t.TempDir()
	sh := NewShellTool(dir)

	res, err := sh.Execute(ctx, json.RawMessage(`{"command":"pwd"}`), &Context{})
	require.NoError(t, err)
	// TempDir may resolve through symlinks; the leaf is stable.
	assert.Contains(t, res.Output, filepath.Base(dir))
}
