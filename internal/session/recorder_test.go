package session

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairprog-ai/pairprog/internal/objectstore"
	"github.com/pairprog-ai/pairprog/pkg/types"
)

func newTestRecorder() *Recorder {
	store := objectstore.New(objectstore.NewMemoryBackend(), objectstore.NewMemoryBackend())
	return NewRecorder(store)
}

func TestBeginOrdering(t *testing.T) {
	r := newTestRecorder()

	first := r.Begin()
	second := r.Begin()

	assert.NotEqual(t, first, second)
	assert.Less(t, first, second, "later session must sort after earlier")
}

func TestBeginOrderingBurst(t *testing.T) {
	r := newTestRecorder()

	ids := make([]string, 50)
	for i := range ids {
		ids[i] = r.Begin()
	}

	assert.True(t, sort.StringsAreSorted(ids), "burst of sessions must stay ordered")
}

func TestAppendLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := newTestRecorder()
	id := r.Begin()

	msgs := []types.Message{
		{Role: types.RoleUser, Content: "write a parser"},
		{Role: types.RoleAssistant, Content: "starting"},
		{Role: types.RoleTool, Content: "ok", ToolCallID: "call_1"},
	}
	for _, m := range msgs {
		require.NoError(t, r.AppendMessage(ctx, id, m))
	}
	require.NoError(t, r.AppendResponse(ctx, id, types.Response{Model: "gpt-4o", FinishReason: "stop"}))

	gotMsgs, gotResps, err := r.Load(ctx, id)
	require.NoError(t, err)
	require.Len(t, gotMsgs, 3)
	for i, m := range msgs {
		assert.Equal(t, m.Role, gotMsgs[i].Role)
		assert.Equal(t, m.Content, gotMsgs[i].Content)
	}
	require.Len(t, gotResps, 1)
	assert.Equal(t, "stop", gotResps[0].FinishReason)
}

func TestLoadEmptySession(t *testing.T) {
	ctx := context.Background()
	r := newTestRecorder()

	msgs, resps, err := r.Load(ctx, r.Begin())
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Empty(t, resps)
}

func TestListSessionsReverseChronological(t *testing.T) {
	ctx := context.Background()
	r := newTestRecorder()

	a := r.Begin()
	b := r.Begin()
	c := r.Begin()

	for _, id := range []string{a, b, c} {
		require.NoError(t, r.AppendMessage(ctx, id, types.Message{Role: types.RoleUser, Content: "hi"}))
	}

	ids, err := r.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{c, b, a}, ids)
}

func TestListSessionsDedup(t *testing.T) {
	ctx := context.Background()
	r := newTestRecorder()
	id := r.Begin()

	require.NoError(t, r.AppendMessage(ctx, id, types.Message{Role: types.RoleUser, Content: "hi"}))
	require.NoError(t, r.AppendResponse(ctx, id, types.Response{FinishReason: "stop"}))

	ids, err := r.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)
}
