package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pairprog-ai/pairprog/internal/library"
	"github.com/pairprog-ai/pairprog/internal/search"
)

// StoreDocumentTool adds reference material to the library. Either inline
// text or a URL to fetch.
type StoreDocumentTool struct {
	lib *library.Library
}

func NewStoreDocumentTool(lib *library.Library) *StoreDocumentTool {
	return &StoreDocumentTool{lib: lib}
}

func (t *StoreDocumentTool) ID() string { return "store_document" }
func (t *StoreDocumentTool) Description() string {
	return "Stores a document in the reference library and indexes it for search. " +
		"Provide either text with a title, or a url to fetch and store."
}

func (t *StoreDocumentTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"title": {
				"type": "string",
				"description": "Document title, required when providing text"
			},
			"text": {
				"type": "string",
				"description": "The document text to store"
			},
			"url": {
				"type": "string",
				"description": "A URL to fetch and store instead of inline text"
			}
		},
		"required": []
	}`)
}

func (t *StoreDocumentTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params struct {
		Title string `json:"title"`
		Text  string `json:"text"`
		URL   string `json:"url"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	switch {
	case params.URL != "":
		docID, title, chunks, err := t.lib.StoreURL(ctx, params.URL)
		if err != nil {
			return nil, err
		}
		return &Result{
			Title:      "Store " + title,
			Output:     fmt.Sprintf("stored %q as %s (%d chunks indexed)", title, docID, chunks),
			Mechanical: true,
		}, nil

	case params.Text != "":
		if params.Title == "" {
			return nil, fmt.Errorf("title is required when storing text")
		}
		docID, chunks, err := t.lib.StoreText(ctx, params.Title, params.Text)
		if err != nil {
			return nil, err
		}
		return &Result{
			Title:      "Store " + params.Title,
			Output:     fmt.Sprintf("stored %q as %s (%d chunks indexed)", params.Title, docID, chunks),
			Mechanical: true,
		}, nil

	default:
		return nil, fmt.Errorf("either text or url must be provided")
	}
}

// SearchDocumentsTool retrieves one ranked result per call; the model pages
// by incrementing offset until no more results remain.
type SearchDocumentsTool struct {
	lib *library.Library
}

func NewSearchDocumentsTool(lib *library.Library) *SearchDocumentsTool {
	return &SearchDocumentsTool{lib: lib}
}

func (t *SearchDocumentsTool) ID() string { return "search_documents" }
func (t *SearchDocumentsTool) Description() string {
	return "Searches the reference library and returns the single result at the given rank offset. " +
		"Call again with offset+1 for the next result; a 'no more results' reply means the list is exhausted."
}

func (t *SearchDocumentsTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "The search query"
			},
			"offset": {
				"type": "integer",
				"description": "Rank offset of the result to return, starting at 0"
			}
		},
		"required": ["query"]
	}`)
}

func (t *SearchDocumentsTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params struct {
		Query  string `json:"query"`
		Offset int    `json:"offset"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	res, err := t.lib.Search(ctx, params.Query, params.Offset)
	if errors.Is(err, search.ErrNoMoreResults) {
		return &Result{
			Title:  "Search " + params.Query,
			Output: fmt.Sprintf("no more results for %q at offset %d", params.Query, params.Offset),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	output := res.Document.Content
	if res.Snippet != "" {
		output = res.Snippet + "\n\n" + output
	}
	return &Result{
		Title:  "Search " + params.Query,
		Output: fmt.Sprintf("[%s] %s\n%s", res.Document.ID, res.Document.Title, output),
		Metadata: map[string]any{
			"id":     res.Document.ID,
			"offset": params.Offset,
		},
	}, nil
}
