package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pairprog-ai/pairprog/internal/objectstore"
)

// RememberTool stores a named fact across turns and sessions.
type RememberTool struct {
	store *objectstore.Store
}

func NewRememberTool(store *objectstore.Store) *RememberTool {
	return &RememberTool{store: store}
}

func (t *RememberTool) ID() string { return "remember" }
func (t *RememberTool) Description() string {
	return "Remembers a value under a name so it can be recalled in later turns or sessions."
}

func (t *RememberTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"name": {
				"type": "string",
				"description": "The name to store the value under"
			},
			"value": {
				"type": "string",
				"description": "The value to remember"
			}
		},
		"required": ["name", "value"]
	}`)
}

func (t *RememberTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	if err := t.store.PutRecord(ctx, params.Name, params.Value); err != nil {
		return nil, err
	}

	return &Result{
		Title:      "Remember " + params.Name,
		Output:     fmt.Sprintf("remembered %q", params.Name),
		Mechanical: true,
	}, nil
}

// RecallTool retrieves a previously remembered value.
type RecallTool struct {
	store *objectstore.Store
}

func NewRecallTool(store *objectstore.Store) *RecallTool {
	return &RecallTool{store: store}
}

func (t *RecallTool) ID() string { return "recall" }
func (t *RecallTool) Description() string {
	return "Recalls a value previously stored with the remember tool."
}

func (t *RecallTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"name": {
				"type": "string",
				"description": "The name the value was stored under"
			}
		},
		"required": ["name"]
	}`)
}

func (t *RecallTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	var value string
	found, err := t.store.GetJSON(ctx, params.Name, &value)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Result{
			Title:  "Recall " + params.Name,
			Output: fmt.Sprintf("nothing remembered under %q", params.Name),
		}, nil
	}

	return &Result{
		Title:  "Recall " + params.Name,
		Output: value,
	}, nil
}
