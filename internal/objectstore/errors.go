package objectstore

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by backends for absent keys. Store.Get folds it
// into the found flag; callers of the Store never see it for missing keys.
var ErrNotFound = errors.New("not found")

// ConfigError reports that a backing service was unreachable at open time.
// It is fatal: the caller should not retry.
type ConfigError struct {
	Service string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("object store: %s unreachable: %v", e.Service, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// PersistError reports a failed read or write after the store was opened.
// It is retryable; the orchestrator decides whether to retry or continue
// degraded.
type PersistError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("object store: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// IsPersistError reports whether err is (or wraps) a PersistError.
func IsPersistError(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}
