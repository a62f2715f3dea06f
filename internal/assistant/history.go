package assistant

import "github.com/pairprog-ai/pairprog/pkg/types"

const (
	// elidedMarker replaces bulky content that has aged out of the
	// request window. The transcript on disk keeps the full text.
	elidedMarker = "(elided)"

	// recentKeep is how many trailing messages are never elided; the
	// model needs its immediate context intact.
	recentKeep = 8

	charsPerToken = 4
)

// requestMessages returns the history to send with the next model turn.
// When a token budget is set and the history exceeds it, older tool
// results and tool-call arguments are elided first; if that is not enough,
// the oldest non-system messages are dropped. The system prompt always
// survives.
func (a *Assistant) requestMessages() []types.Message {
	if a.tokenBudget <= 0 || estimateTokens(a.messages) <= a.tokenBudget {
		return a.messages
	}

	msgs := make([]types.Message, len(a.messages))
	copy(msgs, a.messages)

	cutoff := len(msgs) - recentKeep
	for i := 1; i < cutoff && estimateTokens(msgs) > a.tokenBudget; i++ {
		msgs[i] = elide(msgs[i])
	}

	// Still over: drop from the front, keeping the system prompt.
	for len(msgs) > recentKeep+1 && estimateTokens(msgs) > a.tokenBudget {
		msgs = append(msgs[:1], msgs[2:]...)
	}

	return msgs
}

// elide strips the bulky parts of an old message: tool result bodies and
// the serialized arguments of tool calls. Roles and call linkage survive
// so the transcript still parses as a valid exchange.
func elide(msg types.Message) types.Message {
	if msg.Role == types.RoleTool && msg.Content != "" {
		msg.Content = elidedMarker
	}
	if len(msg.ToolCalls) > 0 {
		calls := make([]types.ToolCall, len(msg.ToolCalls))
		copy(calls, msg.ToolCalls)
		for i := range calls {
			calls[i].Arguments = `{}`
		}
		msg.ToolCalls = calls
	}
	return msg
}

// estimateTokens approximates the token cost of a message list. Four
// characters per token is coarse but stable, which is all trimming needs.
func estimateTokens(msgs []types.Message) int {
	chars := 0
	for _, m := range msgs {
		chars += len(m.Content)
		for _, tc := range m.ToolCalls {
			chars += len(tc.Name) + len(tc.Arguments)
		}
	}
	return chars / charsPerToken
}
