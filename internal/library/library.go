// Package library ingests reference material for the assistant: raw
// documents are archived in the durable store and their text is chunked
// into the search index for retrieval.
package library

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/pairprog-ai/pairprog/internal/logging"
	"github.com/pairprog-ai/pairprog/internal/objectstore"
	"github.com/pairprog-ai/pairprog/internal/search"
)

const (
	fetchTimeout = 30 * time.Second
	maxFetchSize = 5 * 1024 * 1024
)

// Library stores documents and makes them searchable.
type Library struct {
	store  *objectstore.Store
	index  search.Index
	client *http.Client
	log    zerolog.Logger

	chunkTokens   int
	overlapTokens int
}

// New creates a library over the given store namespace and search index.
func New(store *objectstore.Store, index search.Index) *Library {
	return &Library{
		store:         store,
		index:         index,
		client:        &http.Client{Timeout: fetchTimeout},
		log:           logging.For("library"),
		chunkTokens:   defaultChunkTokens,
		overlapTokens: defaultOverlapTokens,
	}
}

// StoreText archives a text document and indexes it in chunks. It returns
// the document identifier and the number of chunks indexed.
func (l *Library) StoreText(ctx context.Context, title, text string) (string, int, error) {
	docID := ulid.Make().String()

	if err := l.store.PutBlob(ctx, "raw/"+docID, []byte(text)); err != nil {
		return "", 0, err
	}

	chunks := chunkText(text, l.chunkTokens, l.overlapTokens)
	for i, chunk := range chunks {
		doc := search.Document{
			ID:      fmt.Sprintf("%s-%d", docID, i),
			Title:   title,
			Content: chunk,
		}
		if err := l.index.Add(ctx, doc); err != nil {
			return docID, i, fmt.Errorf("index chunk %d of %q: %w", i, title, err)
		}
	}

	l.log.Debug().Str("doc", docID).Str("title", title).Int("chunks", len(chunks)).Msg("document stored")
	return docID, len(chunks), nil
}

// StoreURL fetches a page, archives the raw body, and indexes its readable
// text. HTML is reduced to markdown first so markup noise stays out of the
// index. The page title (or the URL when none) is returned with the
// document identifier and chunk count.
func (l *Library) StoreURL(ctx context.Context, pageURL string) (string, string, int, error) {
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		return "", "", 0, fmt.Errorf("url must start with http:// or https://")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", 0, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", "", 0, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", 0, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return "", "", 0, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	title := pageURL
	text := string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		if t := htmlTitle(text); t != "" {
			title = t
		}
		text, err = htmlToMarkdown(text)
		if err != nil {
			return "", "", 0, fmt.Errorf("convert %s: %w", pageURL, err)
		}
	}

	docID, chunks, err := l.StoreText(ctx, title, text)
	if err != nil {
		return docID, title, chunks, err
	}

	// Keep the unconverted body too so the source can be re-processed.
	if err := l.store.PutBlob(ctx, "source/"+docID, body); err != nil {
		return docID, title, chunks, err
	}
	return docID, title, chunks, nil
}

// Raw returns the archived text of a stored document.
func (l *Library) Raw(ctx context.Context, docID string) ([]byte, bool, error) {
	return l.store.Get(ctx, "raw/"+docID)
}

// Search returns the single ranked result at the given offset, or
// search.ErrNoMoreResults when the offset is past the end.
func (l *Library) Search(ctx context.Context, query string, offset int) (*search.Result, error) {
	return l.index.Search(ctx, query, offset)
}

func htmlTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func htmlToMarkdown(html string) (string, error) {
	converter := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		HorizontalRule:   "---",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
		EmDelimiter:      "*",
	})
	converter.Remove("script", "style", "meta", "link")

	return converter.ConvertString(html)
}
