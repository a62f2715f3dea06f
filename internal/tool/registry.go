package tool

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/pairprog-ai/pairprog/internal/logging"
	"github.com/pairprog-ai/pairprog/internal/objectstore"
)

// specCacheKey is the fixed key the tool specification list is cached
// under, inside the registry's own store namespace.
const specCacheKey = "specification"

// SpecNamespace is the store sub-namespace holding registry data.
const SpecNamespace = "pptools"

// Registry manages tool registration and dispatch. Dispatch validates
// arguments against the tool's schema first, so shape errors surface at the
// boundary instead of deep inside an implementation.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	store *objectstore.Store
	log   zerolog.Logger
}

// NewRegistry creates an empty registry. The store namespace is used to
// cache the specification list across runs.
func NewRegistry(store *objectstore.Store) *Registry {
	return &Registry{
		tools: make(map[string]Tool),
		store: store,
		log:   logging.For("tool"),
	}
}

// Register adds a tool. Registering the same ID twice replaces the earlier
// tool and invalidates the cached specification.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tools[t.ID()] = t
	r.log.Debug().Str("tool", t.ID()).Msg("tool registered")
}

// Get retrieves a tool by ID.
func (r *Registry) Get(id string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[id]
	return t, ok
}

// IDs returns all registered tool IDs, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.tools))
	for id := range r.tools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Specification returns the descriptor list for every registered tool,
// deterministically ordered by name. The list is cached in the store under
// a fixed key so identical tool configurations are not recomputed; the
// cache is refreshed whenever the computed list differs.
func (r *Registry) Specification(ctx context.Context) ([]Spec, error) {
	r.mu.RLock()
	specs := make([]Spec, 0, len(r.tools))
	for _, t := range r.tools {
		specs = append(specs, Spec{
			Name:        t.ID(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	r.mu.RUnlock()

	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })

	if r.store != nil {
		computed, err := json.Marshal(specs)
		if err == nil {
			cached, found, _ := r.store.Get(ctx, specCacheKey)
			if !found || string(cached) != string(computed) {
				if err := r.store.PutRecord(ctx, specCacheKey, specs); err != nil {
					// Cache refresh failure is not worth failing the
					// request over.
					r.log.Warn().Err(err).Msg("spec cache not refreshed")
				}
			}
		}
	}

	return specs, nil
}

// Run dispatches a tool call. An unregistered name fails with
// *UnknownToolError and performs no side effects; arguments that do not
// match the tool's schema fail with *InvalidArgumentsError before the tool
// runs. A failure inside the tool itself is captured as the result output
// so the conversation can continue.
func (r *Registry) Run(ctx context.Context, name string, args json.RawMessage, toolCtx *Context) (*Result, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}

	if problems := validateArgs(t.Parameters(), args); len(problems) > 0 {
		return nil, &InvalidArgumentsError{Tool: name, Problems: problems}
	}

	result, err := t.Execute(ctx, args, toolCtx)
	if err != nil {
		r.log.Warn().Err(err).Str("tool", name).Msg("tool failed")
		return &Result{
			Title:  name + " failed",
			Output: "tool error: " + err.Error(),
		}, nil
	}
	return result, nil
}

// EinoTools returns eino-compatible wrappers for all registered tools.
func (r *Registry) EinoTools() []einotool.BaseTool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]einotool.BaseTool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, EinoTool(t))
	}
	return tools
}

// ToolInfos returns eino tool infos for all registered tools, ordered by
// name.
func (r *Registry) ToolInfos() []*schema.ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	infos := make([]*schema.ToolInfo, 0, len(names))
	for _, name := range names {
		t := r.tools[name]
		infos = append(infos, &schema.ToolInfo{
			Name:        t.ID(),
			Desc:        t.Description(),
			ParamsOneOf: schema.NewParamsOneOfByParams(ParseJSONSchemaToParams(t.Parameters())),
		})
	}
	return infos
}
