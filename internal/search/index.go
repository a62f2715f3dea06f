// Package search defines the search index collaborator used by the document
// tools: full-text indexing plus one-result-at-a-time paginated retrieval.
package search

import (
	"context"
	"errors"
)

// ErrNoMoreResults signals that the offset is past the last ranked result.
// It is the pagination terminator, not a failure.
var ErrNoMoreResults = errors.New("no more results")

// Document is one indexable unit of text.
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Result is one ranked hit.
type Result struct {
	Document Document
	// Snippet is a highlighted fragment when the backend provides one,
	// otherwise empty.
	Snippet string
	Score   float64
}

// Index is a full-text search backend. Search returns the single result at
// the given rank offset, so callers page through hits by incrementing the
// offset until ErrNoMoreResults.
type Index interface {
	Add(ctx context.Context, doc Document) error
	Search(ctx context.Context, query string, offset int) (*Result, error)
}
