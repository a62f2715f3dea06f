package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairprog-ai/pairprog/pkg/types"
)

func historyAssistant(budget int, msgs []types.Message) *Assistant {
	return &Assistant{tokenBudget: budget, messages: msgs}
}

func bigHistory(n int) []types.Message {
	msgs := []types.Message{{Role: types.RoleSystem, Content: "system prompt"}}
	filler := strings.Repeat("x", 400)
	for i := 0; i < n; i++ {
		msgs = append(msgs,
			types.Message{Role: types.RoleAssistant, ToolCalls: []types.ToolCall{
				{ID: "c", Name: "shell", Arguments: `{"command":"` + filler + `"}`},
			}},
			types.Message{Role: types.RoleTool, Content: filler, ToolCallID: "c", Name: "shell"},
		)
	}
	return msgs
}

func TestRequestMessagesNoBudgetPassthrough(t *testing.T) {
	msgs := bigHistory(10)
	a := historyAssistant(0, msgs)

	got := a.requestMessages()
	assert.Equal(t, len(msgs), len(got))
	assert.Equal(t, msgs[5], got[5])
}

func TestRequestMessagesUnderBudgetPassthrough(t *testing.T) {
	msgs := bigHistory(2)
	a := historyAssistant(1_000_000, msgs)

	got := a.requestMessages()
	assert.Equal(t, len(msgs), len(got))
}

func TestRequestMessagesElidesOldToolTraffic(t *testing.T) {
	msgs := bigHistory(20)
	full := estimateTokens(msgs)
	a := historyAssistant(full/2, msgs)

	got := a.requestMessages()

	assert.LessOrEqual(t, estimateTokens(got), full/2)
	assert.Equal(t, types.RoleSystem, got[0].Role, "system prompt survives")

	// The original history is untouched.
	assert.NotEqual(t, elidedMarker, a.messages[2].Content)

	// Recent messages keep their content.
	last := got[len(got)-1]
	assert.NotEqual(t, elidedMarker, last.Content)
}

func TestRequestMessagesElidedShapeStaysValid(t *testing.T) {
	msgs := bigHistory(20)
	full := estimateTokens(msgs)
	a := historyAssistant(full/2, msgs)

	got := a.requestMessages()
	for _, m := range got {
		if m.Role == types.RoleTool {
			require.NotEmpty(t, m.ToolCallID, "call linkage survives eliding")
		}
		for _, tc := range m.ToolCalls {
			require.NotEmpty(t, tc.Name)
		}
	}
}

func TestElide(t *testing.T) {
	m := elide(types.Message{
		Role:       types.RoleTool,
		Content:    "a very long tool output",
		ToolCallID: "call_1",
	})
	assert.Equal(t, elidedMarker, m.Content)
	assert.Equal(t, "call_1", m.ToolCallID)

	m = elide(types.Message{
		Role: types.RoleAssistant,
		ToolCalls: []types.ToolCall{
			{ID: "c", Name: "shell", Arguments: `{"command":"something long"}`},
		},
	})
	assert.Equal(t, `{}`, m.ToolCalls[0].Arguments)
	assert.Equal(t, "shell", m.ToolCalls[0].Name)
}
