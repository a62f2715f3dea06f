package objectstore

import "context"

// Backend is one backing service of the object store. Keys handed to a
// backend are fully resolved (bucket and namespace prefixes applied).
type Backend interface {
	// Name identifies the backend in errors and logs.
	Name() string

	// Ping verifies connectivity. Called once at open time.
	Ping(ctx context.Context) error

	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores or overwrites a value. Last write wins.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes a value. Absent keys are not an error.
	Delete(ctx context.Context, key string) error

	// List enumerates keys under prefix. Order is not guaranteed.
	List(ctx context.Context, prefix string) ([]string, error)
}
