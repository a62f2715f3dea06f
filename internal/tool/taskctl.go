package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pairprog-ai/pairprog/internal/objectstore"
)

// Tool IDs the orchestrator watches for task boundary signals.
const (
	StartTaskID    = "start_task"
	TaskCompleteID = "task_complete"
)

// taskRecord is what the task tools persist per session.
type taskRecord struct {
	Description string `json:"description"`
	Summary     string `json:"summary,omitempty"`
	StartedAt   int64  `json:"startedAt"`
	FinishedAt  int64  `json:"finishedAt,omitempty"`
}

// StartTaskTool marks the beginning of a multi-step task. Calling it is the
// model's explicit declaration that it is entering task execution.
type StartTaskTool struct {
	store *objectstore.Store
}

func NewStartTaskTool(store *objectstore.Store) *StartTaskTool {
	return &StartTaskTool{store: store}
}

func (t *StartTaskTool) ID() string { return StartTaskID }
func (t *StartTaskTool) Description() string {
	return "Declares the start of a multi-step task. Call this before beginning work that will take several tool calls, with a short description of the plan."
}

func (t *StartTaskTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"description": {
				"type": "string",
				"description": "A short description of the task being started"
			}
		},
		"required": ["description"]
	}`)
}

func (t *StartTaskTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	rec := taskRecord{
		Description: params.Description,
		StartedAt:   time.Now().UnixMilli(),
	}
	if toolCtx != nil && toolCtx.SessionID != "" {
		if err := t.store.PutRecord(ctx, toolCtx.SessionID, rec); err != nil {
			return nil, err
		}
	}

	return &Result{
		Title:      "Start task",
		Output:     "task started: " + params.Description,
		Mechanical: true,
	}, nil
}

// TaskCompleteTool marks the end of the active task.
type TaskCompleteTool struct {
	store *objectstore.Store
}

func NewTaskCompleteTool(store *objectstore.Store) *TaskCompleteTool {
	return &TaskCompleteTool{store: store}
}

func (t *TaskCompleteTool) ID() string { return TaskCompleteID }
func (t *TaskCompleteTool) Description() string {
	return "Declares the active task finished. Call this when the work is done, with a short summary of what was accomplished."
}

func (t *TaskCompleteTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"summary": {
				"type": "string",
				"description": "A short summary of what was accomplished"
			}
		},
		"required": ["summary"]
	}`)
}

func (t *TaskCompleteTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	if toolCtx != nil && toolCtx.SessionID != "" {
		var rec taskRecord
		if _, err := t.store.GetJSON(ctx, toolCtx.SessionID, &rec); err != nil {
			return nil, err
		}
		rec.Summary = params.Summary
		rec.FinishedAt = time.Now().UnixMilli()
		if err := t.store.PutRecord(ctx, toolCtx.SessionID, rec); err != nil {
			return nil, err
		}
	}

	return &Result{
		Title:  "Task complete",
		Output: "task complete: " + params.Summary,
	}, nil
}
