package objectstore

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pairprog-ai/pairprog/internal/logging"
	"github.com/pairprog-ai/pairprog/pkg/types"
)

// defaultBucket is used when the configuration names no bucket.
const defaultBucket = "pairprog"

// Store is a two-tier object store. Small records go to the fast backend,
// documents and large blobs to the durable one; readers never need to know
// which tier holds a value.
//
// A Store is a view over a key namespace. Sub derives narrower views that
// share the same backends, so a collaborator can be handed a store scoped to
// its own keys.
type Store struct {
	prefix        string
	fast          Backend
	durable       Backend
	blobThreshold int

	log zerolog.Logger
}

// New creates a store over the given backends with an empty namespace.
func New(fast, durable Backend) *Store {
	return &Store{
		fast:          fast,
		durable:       durable,
		blobThreshold: DefaultBlobThreshold,
		log:           logging.For("objectstore"),
	}
}

// Open builds a store from configuration and verifies both backends are
// reachable. Unconfigured backends fall back to local equivalents: an
// in-memory map for the fast tier and a directory tree for the durable one.
// Backend failures at open time are fatal and reported as *ConfigError.
func Open(ctx context.Context, cfg types.StoresConfig) (*Store, error) {
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = defaultBucket
	}

	var fast Backend
	if cfg.Fast.Addr != "" {
		fast = NewRedisBackend(cfg.Fast, bucket)
	} else {
		fast = NewMemoryBackend()
	}

	var durable Backend
	if cfg.Durable.Endpoint != "" {
		mb, err := NewMinioBackend(cfg.Durable, bucket)
		if err != nil {
			return nil, &ConfigError{Service: "minio", Err: err}
		}
		durable = mb
	} else {
		path := cfg.Path
		if path == "" {
			path = ".pairprog"
		}
		durable = NewFileBackend(filepath.Join(path, bucket))
	}

	for _, b := range []Backend{fast, durable} {
		if err := b.Ping(ctx); err != nil {
			return nil, &ConfigError{Service: b.Name(), Err: err}
		}
	}

	s := New(fast, durable)
	s.log.Debug().
		Str("fast", fast.Name()).
		Str("durable", durable.Name()).
		Str("bucket", bucket).
		Msg("object store open")
	return s, nil
}

// Sub returns a store scoped to the given namespace under this one.
func (s *Store) Sub(namespace string) *Store {
	sub := *s
	sub.prefix = joinPath(s.prefix, namespace)
	return &sub
}

// resolve maps a caller key to the backend key space.
func (s *Store) resolve(key string) string {
	return joinPath(s.prefix, key)
}

// joinPath joins key segments with "/", trimming stray separators and
// dropping empty segments so "a//b" and "/a/b/" name the same object.
func joinPath(segments ...string) string {
	var parts []string
	for _, seg := range segments {
		for _, p := range strings.Split(seg, "/") {
			if p != "" {
				parts = append(parts, p)
			}
		}
	}
	return strings.Join(parts, "/")
}

// Get returns the value stored at key. The fast tier is consulted first,
// then the durable one. Absence is not an error: found reports whether the
// key exists anywhere.
func (s *Store) Get(ctx context.Context, key string) (data []byte, found bool, err error) {
	k := s.resolve(key)

	for _, b := range []Backend{s.fast, s.durable} {
		data, err := b.Get(ctx, k)
		if err == nil {
			return data, true, nil
		}
		if err != ErrNotFound {
			return nil, false, &PersistError{Op: "get", Key: k, Err: err}
		}
	}
	return nil, false, nil
}

// GetJSON reads the value at key and unmarshals it into v.
func (s *Store) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	data, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, &PersistError{Op: "decode", Key: s.resolve(key), Err: err}
	}
	return true, nil
}

// Put stores value under key, routing by size and shape. Non-byte values
// are JSON-encoded and treated as records; []byte values are documents. A
// value over the blob threshold goes to the durable tier regardless. Callers
// see one namespace either way.
func (s *Store) Put(ctx context.Context, key string, value any) error {
	var data []byte
	var kind Kind

	switch v := value.(type) {
	case []byte:
		data, kind = v, KindDocument
	case string:
		data, kind = []byte(v), KindDocument
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return &PersistError{Op: "encode", Key: s.resolve(key), Err: err}
		}
		data, kind = encoded, KindRecord
	}

	return s.put(ctx, key, data, Descriptor{Kind: kind, Size: len(data)})
}

// PutRecord stores a JSON-encodable value on the fast tier unless it exceeds
// the blob threshold.
func (s *Store) PutRecord(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &PersistError{Op: "encode", Key: s.resolve(key), Err: err}
	}
	return s.put(ctx, key, data, Descriptor{Kind: KindRecord, Size: len(data)})
}

// PutBlob stores raw bytes on the durable tier unconditionally.
func (s *Store) PutBlob(ctx context.Context, key string, data []byte) error {
	return s.put(ctx, key, data, Descriptor{Kind: KindBlob, Size: len(data)})
}

func (s *Store) put(ctx context.Context, key string, data []byte, desc Descriptor) error {
	k := s.resolve(key)

	target := s.fast
	if desc.Durable(s.blobThreshold) {
		target = s.durable
	}

	if err := target.Put(ctx, k, data); err != nil {
		return &PersistError{Op: "put", Key: k, Err: err}
	}

	// A rewrite may change tiers; drop any stale copy on the other one.
	other := s.fast
	if target == s.fast {
		other = s.durable
	}
	if err := other.Delete(ctx, k); err != nil {
		s.log.Warn().Err(err).Str("key", k).Msg("stale copy not removed")
	}
	return nil
}

// Delete removes key from both tiers. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	k := s.resolve(key)

	for _, b := range []Backend{s.fast, s.durable} {
		if err := b.Delete(ctx, k); err != nil {
			return &PersistError{Op: "delete", Key: k, Err: err}
		}
	}
	return nil
}

// List enumerates keys under prefix across both tiers, relative to this
// store's namespace, sorted and deduplicated. The prefix names whole path
// segments: "session" matches "session/x" but not "sessions/x". Backends
// match by plain string prefix, so their results are re-filtered here on
// the segment boundary.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	p := s.resolve(prefix)

	seen := make(map[string]struct{})
	for _, b := range []Backend{s.fast, s.durable} {
		keys, err := b.List(ctx, p)
		if err != nil {
			return nil, &PersistError{Op: "list", Key: p, Err: err}
		}
		for _, k := range keys {
			if p != "" && k != p && !strings.HasPrefix(k, p+"/") {
				continue
			}
			if s.prefix != "" {
				k = strings.TrimPrefix(k, s.prefix+"/")
			}
			seen[k] = struct{}{}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Ping re-checks both backends. Used by health reporting after open.
func (s *Store) Ping(ctx context.Context) error {
	for _, b := range []Backend{s.fast, s.durable} {
		if err := b.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", b.Name(), err)
		}
	}
	return nil
}
