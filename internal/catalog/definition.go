// Package catalog turns a declarative backend definition into factories.
// Each resource becomes one construct node of a known kind, placed in the
// stack of its group.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownKind   = errors.New("unknown resource kind")
	ErrDuplicateName = errors.New("duplicate resource name")
	ErrUnknownToken  = errors.New("no resource provides token")
	ErrCircularUses  = errors.New("resources use each other")
)

// Definition is the document read from a backend definition file.
type Definition struct {
	Stacks    []string       `json:"stacks,omitempty" yaml:"stacks,omitempty"`
	Resources []Resource     `json:"resources" yaml:"resources"`
	Outputs   map[string]any `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

type Resource struct {
	Name        string            `json:"name" yaml:"name"`
	Kind        string            `json:"kind" yaml:"kind"`
	Group       string            `json:"group,omitempty" yaml:"group,omitempty"`
	Provides    string            `json:"provides,omitempty" yaml:"provides,omitempty"`
	Uses        []string          `json:"uses,omitempty" yaml:"uses,omitempty"`
	Secrets     []string          `json:"secrets,omitempty" yaml:"secrets,omitempty"`
	Environment map[string]string `json:"environment,omitempty" yaml:"environment,omitempty"`
	Properties  map[string]any    `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// GroupName is the configured group, or the default group of the kind.
func (r Resource) GroupName() string {
	if r.Group != "" {
		return r.Group
	}
	if k, ok := kinds[r.Kind]; ok {
		return k.group
	}
	return r.Name
}

func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks what can be checked without resolving: names are unique,
// kinds are known and every used token is provided.
func (d *Definition) Validate() error {
	names := make(map[string]bool, len(d.Resources))
	tokens := make(map[string]string)

	for _, r := range d.Resources {
		if r.Name == "" {
			return errors.New("resource name cannot be empty")
		}
		if names[r.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateName, r.Name)
		}
		names[r.Name] = true

		if _, ok := kinds[r.Kind]; !ok {
			return fmt.Errorf("%w: %q (resource %s)", ErrUnknownKind, r.Kind, r.Name)
		}
		if r.Provides != "" {
			tokens[r.Provides] = r.Name
		}
	}

	for _, r := range d.Resources {
		for _, token := range r.Uses {
			if _, ok := tokens[token]; !ok {
				return fmt.Errorf("%w: %q (used by %s)", ErrUnknownToken, token, r.Name)
			}
		}
	}
	return nil
}
