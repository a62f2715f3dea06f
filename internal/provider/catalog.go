package provider

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pairprog-ai/pairprog/pkg/types"
)

//go:embed models.yaml
var modelsYAML []byte

// Catalog is the embedded model catalog: context windows, output limits,
// and the aliases users type instead of dated model IDs.
type Catalog struct {
	models []types.Model
	index  map[string]types.Model
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	var doc struct {
		Models []types.Model `yaml:"models"`
	}
	if err := yaml.Unmarshal(modelsYAML, &doc); err != nil {
		return nil, fmt.Errorf("model catalog: %w", err)
	}

	c := &Catalog{
		models: doc.Models,
		index:  make(map[string]types.Model),
	}
	for _, m := range doc.Models {
		c.index[strings.ToLower(m.ID)] = m
		for _, alias := range m.Aliases {
			c.index[strings.ToLower(alias)] = m
		}
	}
	return c, nil
}

// Models returns every catalog entry.
func (c *Catalog) Models() []types.Model {
	return c.models
}

// Resolve finds a model by ID or alias, case-insensitively.
func (c *Catalog) Resolve(id string) (types.Model, bool) {
	m, ok := c.index[strings.ToLower(id)]
	return m, ok
}

// ContextWindow returns the model's context window in tokens, or fallback
// for models the catalog does not know.
func (c *Catalog) ContextWindow(id string, fallback int) int {
	if m, ok := c.Resolve(id); ok && m.ContextWindow > 0 {
		return m.ContextWindow
	}
	return fallback
}
