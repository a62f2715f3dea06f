// Package types defines the wire and storage types shared between the
// internal packages and the CLI.
package types

import "encoding/json"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // serialized JSON object
}

// Message is one conversation entry in a session transcript.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	Name       string     `json:"name,omitempty"`       // tool name, for tool results
	ToolCallID string     `json:"toolCallId,omitempty"` // links a tool result to its call
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	Time       int64      `json:"time"` // unix milliseconds
}

// TokenUsage reports prompt and completion token counts for one API call.
type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// Response is the raw chat API result recorded for one model turn.
type Response struct {
	Model        string          `json:"model,omitempty"`
	FinishReason string          `json:"finishReason"`
	Payload      json.RawMessage `json:"payload"`
	Tokens       *TokenUsage     `json:"tokens,omitempty"`
	Time         int64           `json:"time"`
}

// Model describes a chat model in the catalog.
type Model struct {
	ID            string   `yaml:"id" json:"id"`
	Name          string   `yaml:"name" json:"name"`
	ProviderID    string   `yaml:"provider" json:"provider"`
	ContextWindow int      `yaml:"context_window" json:"contextWindow"`
	OutputTokens  int      `yaml:"output_tokens" json:"outputTokens"`
	Aliases       []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}
