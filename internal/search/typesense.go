package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pairprog-ai/pairprog/internal/logging"
	"github.com/pairprog-ai/pairprog/pkg/types"
)

const typesenseTimeout = 30 * time.Second

// TypesenseIndex talks to a Typesense server over its REST API.
type TypesenseIndex struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
	log        zerolog.Logger
}

// NewTypesenseIndex creates an index client and ensures the collection
// exists. An unreachable server is a configuration problem, reported as
// such so startup fails instead of limping.
func NewTypesenseIndex(ctx context.Context, cfg types.SearchConfig) (*TypesenseIndex, error) {
	collection := cfg.Collection
	if collection == "" {
		collection = "library"
	}

	idx := &TypesenseIndex{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: collection,
		client:     &http.Client{Timeout: typesenseTimeout},
		log:        logging.For("search"),
	}

	if err := idx.ensureCollection(ctx); err != nil {
		return nil, fmt.Errorf("typesense at %s: %w", cfg.URL, err)
	}
	return idx, nil
}

func (t *TypesenseIndex) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-TYPESENSE-API-KEY", t.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return t.client.Do(req)
}

func (t *TypesenseIndex) ensureCollection(ctx context.Context) error {
	resp, err := t.do(ctx, http.MethodGet, "/collections/"+url.PathEscape(t.collection), nil)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("collection check: status %d", resp.StatusCode)
	}

	schema := map[string]any{
		"name": t.collection,
		"fields": []map[string]any{
			{"name": "title", "type": "string"},
			{"name": "content", "type": "string"},
		},
	}
	resp, err = t.do(ctx, http.MethodPost, "/collections", schema)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		return fmt.Errorf("collection create: status %d", resp.StatusCode)
	}

	t.log.Debug().Str("collection", t.collection).Msg("collection ready")
	return nil
}

// Add upserts one document.
func (t *TypesenseIndex) Add(ctx context.Context, doc Document) error {
	path := "/collections/" + url.PathEscape(t.collection) + "/documents?action=upsert"
	resp, err := t.do(ctx, http.MethodPost, path, doc)
	if err != nil {
		return fmt.Errorf("index add: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("index add: status %d", resp.StatusCode)
	}
	return nil
}

type typesenseHit struct {
	Document  Document `json:"document"`
	Highlight struct {
		Content struct {
			Snippet string `json:"snippet"`
		} `json:"content"`
	} `json:"highlight"`
	TextMatch float64 `json:"text_match"`
}

type typesenseSearchResponse struct {
	Found int            `json:"found"`
	Hits  []typesenseHit `json:"hits"`
}

// Search returns the single hit at the given rank offset. Pagination is one
// result per page: page N+1 with per_page=1 is the result at offset N.
func (t *TypesenseIndex) Search(ctx context.Context, query string, offset int) (*Result, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("query_by", "title,content")
	q.Set("per_page", "1")
	q.Set("page", strconv.Itoa(offset+1))

	path := "/collections/" + url.PathEscape(t.collection) + "/documents/search?" + q.Encode()
	resp, err := t.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index search: status %d", resp.StatusCode)
	}

	var sr typesenseSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}
	if len(sr.Hits) == 0 || offset >= sr.Found {
		return nil, ErrNoMoreResults
	}

	hit := sr.Hits[0]
	return &Result{
		Document: hit.Document,
		Snippet:  hit.Highlight.Content.Snippet,
		Score:    hit.TextMatch,
	}, nil
}
