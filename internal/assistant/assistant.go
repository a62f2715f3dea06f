// Package assistant drives the conversation: it sends history and tool
// specifications to the provider, executes requested tool calls, persists
// every exchange, and lets the task state machine decide when control goes
// back to the user.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/pairprog-ai/pairprog/internal/event"
	"github.com/pairprog-ai/pairprog/internal/logging"
	"github.com/pairprog-ai/pairprog/internal/objectstore"
	"github.com/pairprog-ai/pairprog/internal/provider"
	"github.com/pairprog-ai/pairprog/internal/session"
	"github.com/pairprog-ai/pairprog/internal/task"
	"github.com/pairprog-ai/pairprog/internal/tool"
	"github.com/pairprog-ai/pairprog/pkg/types"
)

// DefaultMaxAutoContinue caps consecutive model turns issued without new
// user input. Exceeding it is reported, not fatal.
const DefaultMaxAutoContinue = 8

const defaultSystemPrompt = `You are a pair programmer working alongside the user.
You can run shell commands, read and write files, search stored reference
documents, and fetch web pages through the provided tools. When you take on
work that needs several steps, call start_task first and task_complete when
you are done. Keep replies short and concrete.`

// Options configures an Assistant.
type Options struct {
	Provider provider.Provider
	Registry *tool.Registry
	Recorder *session.Recorder
	Bus      *event.Bus

	WorkDir      string
	ModelID      string
	SystemPrompt string
	MaxTokens    int

	// MaxAutoContinue caps unattended turns; zero means the default.
	MaxAutoContinue int
	// TokenBudget bounds the request history size; zero means the
	// model's context window should be assumed generous.
	TokenBudget int
}

// Assistant owns one conversation. It is the session's single writer; one
// Assistant must not be used from multiple goroutines at once.
type Assistant struct {
	provider provider.Provider
	registry *tool.Registry
	recorder *session.Recorder
	bus      *event.Bus
	log      zerolog.Logger

	workDir         string
	modelID         string
	maxTokens       int
	maxAutoContinue int
	tokenBudget     int

	sessionID string
	state     task.State
	messages  []types.Message
	degraded  bool
}

// New creates an assistant and begins its session.
func New(opts Options) *Assistant {
	maxAuto := opts.MaxAutoContinue
	if maxAuto <= 0 {
		maxAuto = DefaultMaxAutoContinue
	}
	systemPrompt := opts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	a := &Assistant{
		provider:        opts.Provider,
		registry:        opts.Registry,
		recorder:        opts.Recorder,
		bus:             opts.Bus,
		log:             logging.For("assistant"),
		workDir:         opts.WorkDir,
		modelID:         opts.ModelID,
		maxTokens:       opts.MaxTokens,
		maxAutoContinue: maxAuto,
		tokenBudget:     opts.TokenBudget,
		state:           task.Idle,
		messages: []types.Message{{
			Role:    types.RoleSystem,
			Content: systemPrompt,
			Time:    time.Now().UnixMilli(),
		}},
	}

	a.sessionID = a.recorder.Begin()
	a.publish(event.Event{Type: event.SessionCreated, Data: a.sessionID})
	return a
}

// SessionID returns the identifier of the conversation's session.
func (a *Assistant) SessionID() string { return a.sessionID }

// State returns the current task state.
func (a *Assistant) State() task.State { return a.state }

// Degraded reports whether a persistence failure has put the conversation
// in in-memory-only mode.
func (a *Assistant) Degraded() bool { return a.degraded }

// Send runs one user turn to completion: model turns and tool executions
// repeat until the task state machine yields control. The final assistant
// text is returned.
func (a *Assistant) Send(ctx context.Context, input string) (string, error) {
	userMsg := types.Message{
		Role:    types.RoleUser,
		Content: input,
		Time:    time.Now().UnixMilli(),
	}
	a.messages = append(a.messages, userMsg)
	a.persist(ctx, func() error {
		return a.recorder.AppendMessage(ctx, a.sessionID, userMsg)
	})

	a.transition(task.Signals{PendingInput: true})

	var lastContent string
	autoContinues := 0

	for {
		if err := ctx.Err(); err != nil {
			return lastContent, err
		}

		a.publish(event.Event{Type: event.TurnStarted, Data: a.sessionID})

		completion, err := a.completeWithRetry(ctx)
		if err != nil {
			return lastContent, err
		}

		a.persist(ctx, func() error {
			return a.recorder.AppendResponse(ctx, a.sessionID, completion.Record(a.modelID))
		})

		calls := completion.ToolCalls()
		assistantMsg := types.Message{
			Role:      types.RoleAssistant,
			Content:   completion.Message.Content,
			ToolCalls: calls,
			Time:      time.Now().UnixMilli(),
		}
		a.messages = append(a.messages, assistantMsg)
		a.persist(ctx, func() error {
			return a.recorder.AppendMessage(ctx, a.sessionID, assistantMsg)
		})
		if assistantMsg.Content != "" {
			lastContent = assistantMsg.Content
		}

		sig := task.Signals{
			Content:   completion.FinishReason != provider.FinishToolCalls && completion.Message.Content != "",
			ToolCalls: len(calls) > 0,
		}

		if len(calls) > 0 {
			if err := ctx.Err(); err != nil {
				return lastContent, err
			}
			mechanical := true
			for _, call := range calls {
				switch call.Name {
				case tool.StartTaskID:
					sig.TaskStarted = true
				case tool.TaskCompleteID:
					sig.TaskCompleted = true
				}

				result := a.runTool(ctx, call)
				if !result.Mechanical {
					mechanical = false
				}

				toolMsg := types.Message{
					Role:       types.RoleTool,
					Content:    result.Output,
					Name:       call.Name,
					ToolCallID: call.ID,
					Time:       time.Now().UnixMilli(),
				}
				a.messages = append(a.messages, toolMsg)
				a.persist(ctx, func() error {
					return a.recorder.AppendMessage(ctx, a.sessionID, toolMsg)
				})
			}
			sig.Mechanical = mechanical
		}

		a.transition(sig)
		a.publish(event.Event{Type: event.TurnCompleted, Data: a.sessionID})

		if !a.state.Continues() {
			return lastContent, nil
		}

		autoContinues++
		if autoContinues >= a.maxAutoContinue {
			a.log.Warn().
				Int("turns", autoContinues).
				Str("session", a.sessionID).
				Msg("auto-continue cap reached, yielding to user")
			a.publish(event.Event{Type: event.AutoContinueExceeded, Data: a.sessionID})
			return lastContent, nil
		}
	}
}

// runTool dispatches one tool call. Dispatch failures (unknown tool, bad
// arguments) become the tool result content so the model can self-correct;
// they never abort the conversation.
func (a *Assistant) runTool(ctx context.Context, call types.ToolCall) *tool.Result {
	a.publish(event.Event{Type: event.ToolStarted, Data: call.Name})
	defer a.publish(event.Event{Type: event.ToolCompleted, Data: call.Name})

	result, err := a.registry.Run(ctx, call.Name, json.RawMessage(call.Arguments), &tool.Context{
		SessionID: a.sessionID,
		CallID:    call.ID,
		WorkDir:   a.workDir,
	})
	if err != nil {
		var unknownErr *tool.UnknownToolError
		var argErr *tool.InvalidArgumentsError
		switch {
		case errors.As(err, &unknownErr), errors.As(err, &argErr):
			return &tool.Result{Title: call.Name, Output: err.Error()}
		default:
			return &tool.Result{Title: call.Name, Output: "tool error: " + err.Error()}
		}
	}
	return result
}

// completeWithRetry runs one model turn, retrying transient failures with
// exponential backoff.
func (a *Assistant) completeWithRetry(ctx context.Context) (*provider.Completion, error) {
	specs, err := a.registry.Specification(ctx)
	if err != nil {
		return nil, err
	}

	tools := make([]*schema.ToolInfo, 0, len(specs))
	for _, s := range specs {
		tools = append(tools, &schema.ToolInfo{
			Name:        s.Name,
			Desc:        s.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(tool.ParseJSONSchemaToParams(s.Parameters)),
		})
	}

	req := &provider.CompletionRequest{
		Messages:  provider.ToEinoMessages(a.requestMessages()),
		Tools:     tools,
		MaxTokens: a.maxTokens,
	}

	var completion *provider.Completion
	operation := func() error {
		var err error
		completion, err = a.provider.Complete(ctx, req)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(newRetryBackoff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("model turn failed: %w", err)
	}
	return completion, nil
}

func newRetryBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = time.Minute
	return b
}

// persist runs a recorder write. A failure is retried once after a short
// backoff; if it still fails the conversation continues in memory and the
// degradation is reported, loudly, exactly once per incident.
func (a *Assistant) persist(ctx context.Context, write func() error) {
	err := write()
	if err == nil {
		return
	}
	if objectstore.IsPersistError(err) {
		time.Sleep(persistRetryDelay)
		if err = write(); err == nil {
			return
		}
	}

	a.log.Error().Err(err).Str("session", a.sessionID).Msg("session write lost, continuing in memory")
	if !a.degraded {
		a.degraded = true
		a.publish(event.Event{Type: event.PersistenceDegraded, Data: a.sessionID})
	}
}

var persistRetryDelay = 200 * time.Millisecond

func (a *Assistant) transition(sig task.Signals) {
	next, err := task.Next(a.state, sig)
	if err != nil {
		// Unknown state is a programming error; reset rather than wedge.
		a.log.Error().Err(err).Msg("task transition failed")
		next = task.Idle
	}
	if next != a.state {
		a.log.Debug().
			Stringer("from", a.state).
			Stringer("to", next).
			Msg("task state changed")
		a.publish(event.Event{Type: event.TaskStateChanged, Data: next.String()})
	}
	a.state = next
}

func (a *Assistant) publish(e event.Event) {
	if a.bus != nil {
		a.bus.PublishSync(e)
	}
}
