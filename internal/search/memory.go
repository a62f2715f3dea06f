package search

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryIndex is an in-process Index used when no search server is
// configured and throughout the tests. Ranking is term-frequency only.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs []Document
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

func (m *MemoryIndex) Add(ctx context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, d := range m.docs {
		if d.ID == doc.ID {
			m.docs[i] = doc
			return nil
		}
	}
	m.docs = append(m.docs, doc)
	return nil
}

func (m *MemoryIndex) Search(ctx context.Context, query string, offset int) (*Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	terms := strings.Fields(strings.ToLower(query))

	type scored struct {
		doc   Document
		score float64
	}
	var hits []scored
	for _, d := range m.docs {
		text := strings.ToLower(d.Title + " " + d.Content)
		var score float64
		for _, term := range terms {
			score += float64(strings.Count(text, term))
		}
		if score > 0 {
			hits = append(hits, scored{doc: d, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	if offset < 0 || offset >= len(hits) {
		return nil, ErrNoMoreResults
	}
	return &Result{Document: hits[offset].doc, Score: hits[offset].score}, nil
}
