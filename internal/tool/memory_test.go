package tool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairprog-ai/pairprog/internal/objectstore"
)

func TestRememberRecall(t *testing.T) {
	ctx := context.Background()
	store := objectstore.New(objectstore.NewMemoryBackend(), objectstore.NewMemoryBackend()).Sub(memoryNamespace)

	remember := NewRememberTool(store)
	res, err := remember.Execute(ctx, json.RawMessage(`{"name":"editor","value":"the user prefers vim"}`), &Context{})
	require.NoError(t, err)
	assert.True(t, res.Mechanical)

	recall := NewRecallTool(store)
	res, err = recall.Execute(ctx, json.RawMessage(`{"name":"editor"}`), &Context{})
	require.NoError(t, err)
	assert.Equal(t, "the user prefers vim", res.Output)
}

func TestRecallUnknownName(t *testing.T) {
	ctx := context.Background()
	store := objectstore.New(objectstore.NewMemoryBackend(), objectstore.NewMemoryBackend()).Sub(memoryNamespace)

	recall := NewRecallTool(store)
	res, err := recall.Execute(ctx, json.RawMessage(`{"name":"never-set"}`), &Context{})
	require.NoError(t, err)
	assert.Contains(t, res.Output, "nothing remembered")
}

func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	root := objectstore.New(objectstore.NewMemoryBackend(), objectstore.NewMemoryBackend())
	store := root.Sub(taskNamespace)
	toolCtx := &Context{SessionID: "01TESTSESSION"}

	start := NewStartTaskTool(store)
	res, err := start.Execute(ctx, json.RawMessage(`{"description":"refactor the parser"}`), toolCtx)
	require.NoError(t, err)
	assert.True(t, res.Mechanical)

	complete := NewTaskCompleteTool(store)
	res, err = complete.Execute(ctx, json.RawMessage(`{"summary":"parser refactored"}`), toolCtx)
	require.NoError(t, err)
	assert.False(t, res.Mechanical, "completion hands control back to the user")

	var rec taskRecord
	found, err := store.GetJSON(ctx, "01TESTSESSION", &rec)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "refactor the parser", rec.Description)
	assert.Equal(t, "parser refactored", rec.Summary)
	assert.NotZero(t, rec.StartedAt)
	assert.NotZero(t, rec.FinishedAt)
}

func TestDefaultRegistryTools(t *testing.T) {
	store := objectstore.New(objectstore.NewMemoryBackend(), objectstore.NewMemoryBackend())
	r := newDefaultRegistryForTest(t, store)

	ids := r.IDs()
	for _, want := range []string{
		"shell", "read_file", "write_file", "list_files", "web_fetch",
		"remember", "recall", "store_document", "search_documents",
		StartTaskID, TaskCompleteID,
	} {
		assert.Contains(t, ids, want)
	}
}
