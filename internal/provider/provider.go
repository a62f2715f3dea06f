// Package provider abstracts the chat completion API behind the eino model
// components.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/pairprog-ai/pairprog/pkg/types"
)

// Finish reasons the orchestrator branches on. Providers normalize their
// API's markers to these.
const (
	FinishStop      = "stop"
	FinishLength    = "length"
	FinishToolCalls = "tool_calls"
)

// Provider is one chat model backend.
type Provider interface {
	// ID returns the provider identifier.
	ID() string

	// Name returns the human-readable provider name.
	Name() string

	// ChatModel returns the underlying eino chat model.
	ChatModel() model.ToolCallingChatModel

	// Complete runs one model turn over the full message history.
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)
}

// CompletionRequest is one model turn's input.
type CompletionRequest struct {
	Messages    []*schema.Message
	Tools       []*schema.ToolInfo
	MaxTokens   int
	Temperature float64
}

// Completion is one model turn's result: either assistant content or tool
// call requests, plus the normalized finish reason.
type Completion struct {
	Message      *schema.Message
	FinishReason string
	Tokens       *types.TokenUsage
}

// ToolCalls returns the tool calls requested by this completion, converted
// to the wire type.
func (c *Completion) ToolCalls() []types.ToolCall {
	if c.Message == nil {
		return nil
	}
	calls := make([]types.ToolCall, 0, len(c.Message.ToolCalls))
	for _, tc := range c.Message.ToolCalls {
		calls = append(calls, types.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return calls
}

// Record converts the completion into the raw response shape the session
// recorder persists.
func (c *Completion) Record(modelID string) types.Response {
	payload, _ := json.Marshal(c.Message)
	return types.Response{
		Model:        modelID,
		FinishReason: c.FinishReason,
		Payload:      payload,
		Tokens:       c.Tokens,
		Time:         time.Now().UnixMilli(),
	}
}

// New creates a provider from configuration.
func New(ctx context.Context, cfg types.ProviderConfig) (Provider, error) {
	switch cfg.ID {
	case "", "openai":
		return NewOpenAIProvider(ctx, cfg)
	case "anthropic":
		return NewAnthropicProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.ID)
	}
}

// complete is the shared generate path: bind tools, run, normalize.
func complete(ctx context.Context, chatModel model.ToolCallingChatModel, req *CompletionRequest, opts ...model.Option) (*Completion, error) {
	if len(req.Tools) > 0 {
		var err error
		chatModel, err = chatModel.WithTools(req.Tools)
		if err != nil {
			return nil, fmt.Errorf("failed to bind tools: %w", err)
		}
	}

	msg, err := chatModel.Generate(ctx, req.Messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	return normalize(msg), nil
}

// normalize derives the finish reason and token usage from a raw message.
func normalize(msg *schema.Message) *Completion {
	c := &Completion{Message: msg, FinishReason: FinishStop}

	if len(msg.ToolCalls) > 0 {
		c.FinishReason = FinishToolCalls
	}

	if meta := msg.ResponseMeta; meta != nil {
		switch meta.FinishReason {
		case "tool_calls", "tool_use":
			c.FinishReason = FinishToolCalls
		case "length", "max_tokens":
			c.FinishReason = FinishLength
		case "stop", "end_turn", "stop_sequence", "":
			// keep the derived reason; tool calls win over "stop"
		default:
			if len(msg.ToolCalls) == 0 {
				c.FinishReason = meta.FinishReason
			}
		}

		if usage := meta.Usage; usage != nil {
			c.Tokens = &types.TokenUsage{
				Input:  usage.PromptTokens,
				Output: usage.CompletionTokens,
			}
		}
	}

	return c
}

// ToEinoMessages converts transcript messages to the eino request shape.
func ToEinoMessages(messages []types.Message) []*schema.Message {
	result := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		role := schema.Assistant
		switch msg.Role {
		case types.RoleUser:
			role = schema.User
		case types.RoleSystem:
			role = schema.System
		case types.RoleTool:
			role = schema.Tool
		}

		var toolCalls []schema.ToolCall
		for _, tc := range msg.ToolCalls {
			toolCalls = append(toolCalls, schema.ToolCall{
				ID: tc.ID,
				Function: schema.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}

		result = append(result, &schema.Message{
			Role:       role,
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
			ToolCalls:  toolCalls,
		})
	}
	return result
}
