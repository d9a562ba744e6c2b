// Package envgen stores environment values in the parameter store of one
// deployment so that functions can read them at runtime by path.
package envgen

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/danpasecinic/stackwire/secret"
	"github.com/danpasecinic/stackwire/stack"
)

const ParameterType = "SSM::Parameter"

var ErrConflictingValue = errors.New("environment entry already stored with a different value")

type Entry struct {
	Name string
	Path string
}

type Generator struct {
	unit *stack.Unit
	id   stack.Identifier
}

func New(unit *stack.Unit, id stack.Identifier) *Generator {
	return &Generator{unit: unit, id: id}
}

// Path is where the entry called name is stored for this deployment.
func (g *Generator) Path(name string) string {
	return secret.ParameterPath(g.id, "env/"+name)
}

// GenerateEntries creates one parameter node per key, in key order, and
// returns the name/path pairs a consumer needs to look them up.
func (g *Generator) GenerateEntries(values map[string]string) ([]Entry, error) {
	keys := slices.Sorted(maps.Keys(values))
	entries := make([]Entry, 0, len(keys))

	for _, key := range keys {
		path := g.Path(key)
		nodeID := key + "Parameter"

		if existing, ok := g.unit.Node(nodeID); ok {
			if existing.Properties["value"] != values[key] {
				return nil, fmt.Errorf("environment entry %s in %s: %w", key, g.unit.Path(), ErrConflictingValue)
			}
		} else {
			_, err := g.unit.AddNode(nodeID, ParameterType, map[string]any{
				"name":  path,
				"value": values[key],
			})
			if err != nil {
				return nil, fmt.Errorf("environment entry %s: %w", key, err)
			}
		}

		entries = append(entries, Entry{Name: key, Path: path})
	}

	return entries, nil
}
