package tool

import (
	"github.com/pairprog-ai/pairprog/internal/library"
	"github.com/pairprog-ai/pairprog/internal/objectstore"
)

// Store namespaces used by the built-in tools.
const (
	memoryNamespace = "memory"
	taskNamespace   = "task"
)

// DefaultRegistry creates a registry with all built-in tools wired to the
// given working directory, store, and library.
func DefaultRegistry(workDir string, store *objectstore.Store, lib *library.Library) *Registry {
	r := NewRegistry(store.Sub(SpecNamespace))

	r.Register(NewShellTool(workDir))
	r.Register(NewReadFileTool(workDir))
	r.Register(NewWriteFileTool(workDir))
	r.Register(NewListFilesTool(workDir))
	r.Register(NewWebFetchTool())

	r.Register(NewRememberTool(store.Sub(memoryNamespace)))
	r.Register(NewRecallTool(store.Sub(memoryNamespace)))

	r.Register(NewStoreDocumentTool(lib))
	r.Register(NewSearchDocumentsTool(lib))

	r.Register(NewStartTaskTool(store.Sub(taskNamespace)))
	r.Register(NewTaskCompleteTool(store.Sub(taskNamespace)))

	return r
}
