// Package session persists conversation transcripts. Every session gets a
// time-ordered identifier and two append-only sequences under it: the
// message history and the raw provider responses.
package session

import (
	"context"
	"crypto/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/pairprog-ai/pairprog/internal/logging"
	"github.com/pairprog-ai/pairprog/internal/objectstore"
	"github.com/pairprog-ai/pairprog/pkg/types"
)

// keyspace under the store.
const (
	sessionPrefix = "session"
	messagesKey   = "messages"
	responsesKey  = "responses"
)

// Recorder writes session transcripts through the object store. A session
// has a single writer: the orchestration loop that owns it. Recorder does
// not arbitrate concurrent appends to one session.
type Recorder struct {
	store *objectstore.Store
	log   zerolog.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewRecorder creates a recorder over the given store.
func NewRecorder(store *objectstore.Store) *Recorder {
	return &Recorder{
		store:   store,
		log:     logging.For("session"),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Begin issues a new session identifier. Identifiers sort lexicographically
// in creation order, including two sessions begun within the same
// millisecond.
func (r *Recorder) Begin() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(time.Now()), r.entropy).String()
	r.log.Debug().Str("session", id).Msg("session begun")
	return id
}

func messagesPath(sessionID string) string {
	return sessionPrefix + "/" + sessionID + "/" + messagesKey
}

func responsesPath(sessionID string) string {
	return sessionPrefix + "/" + sessionID + "/" + responsesKey
}

// AppendMessage appends one message to the session's history. The whole
// ordered list is rewritten; with a single writer per session that is safe
// and keeps loads a single read.
func (r *Recorder) AppendMessage(ctx context.Context, sessionID string, msg types.Message) error {
	var messages []types.Message
	if _, err := r.store.GetJSON(ctx, messagesPath(sessionID), &messages); err != nil {
		return err
	}
	messages = append(messages, msg)
	return r.store.PutRecord(ctx, messagesPath(sessionID), messages)
}

// AppendResponse appends one raw provider response to the session.
func (r *Recorder) AppendResponse(ctx context.Context, sessionID string, resp types.Response) error {
	var responses []types.Response
	if _, err := r.store.GetJSON(ctx, responsesPath(sessionID), &responses); err != nil {
		return err
	}
	responses = append(responses, resp)
	return r.store.PutRecord(ctx, responsesPath(sessionID), responses)
}

// Load returns the full message and response sequences for a session, in
// append order. A session that was begun but never written loads empty.
func (r *Recorder) Load(ctx context.Context, sessionID string) ([]types.Message, []types.Response, error) {
	var messages []types.Message
	if _, err := r.store.GetJSON(ctx, messagesPath(sessionID), &messages); err != nil {
		return nil, nil, err
	}

	var responses []types.Response
	if _, err := r.store.GetJSON(ctx, responsesPath(sessionID), &responses); err != nil {
		return nil, nil, err
	}

	return messages, responses, nil
}

// ListSessions returns all known session identifiers, most recent first.
func (r *Recorder) ListSessions(ctx context.Context) ([]string, error) {
	keys, err := r.store.List(ctx, sessionPrefix+"/")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, k := range keys {
		// session/<id>/messages or session/<id>/responses
		rest := k[len(sessionPrefix)+1:]
		for i := 0; i < len(rest); i++ {
			if rest[i] == '/' {
				seen[rest[:i]] = struct{}{}
				break
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}
