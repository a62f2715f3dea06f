package tool

import (
	"testing"

	"github.com/pairprog-ai/pairprog/internal/library"
	"github.com/pairprog-ai/pairprog/internal/objectstore"
	"github.com/pairprog-ai/pairprog/internal/search"
)

func newDefaultRegistryForTest(t *testing.T, store *objectstore.Store) *Registry {
	t.Helper()
	lib := library.New(store.Sub("library"), search.NewMemoryIndex())
	return DefaultRegistry(t.TempDir(), store, lib)
}
