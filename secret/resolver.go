// Package secret resolves named backend secrets to references that resources
// can embed without ever seeing the secret value.
package secret

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/danpasecinic/stackwire/stack"
)

var ErrInvalidName = errors.New("invalid secret name")

const FetcherType = "Custom::SecretFetcher"

var validName = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)

// Paths are the two places a secret may be stored. The branch path wins when
// both exist.
type Paths struct {
	BranchSecretPath string
	SharedSecretPath string
}

// Value is the deploy-time reference to a secret.
type Value struct {
	Name      string
	Reference string
	Paths     Paths
}

type Resolver interface {
	Resolve(name string) (Value, error)
	ResolvePath(name string) (Paths, error)
}

// DefaultResolver creates one fetcher node per secret name in its unit.
type DefaultResolver struct {
	unit *stack.Unit
	id   stack.Identifier
}

func NewResolver(unit *stack.Unit, id stack.Identifier) *DefaultResolver {
	return &DefaultResolver{unit: unit, id: id}
}

func (r *DefaultResolver) ResolvePath(name string) (Paths, error) {
	if !validName.MatchString(name) {
		return Paths{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return Paths{
		BranchSecretPath: ParameterPath(r.id, name),
		SharedSecretPath: SharedParameterPath(r.id.Namespace, name),
	}, nil
}

func (r *DefaultResolver) Resolve(name string) (Value, error) {
	paths, err := r.ResolvePath(name)
	if err != nil {
		return Value{}, err
	}

	nodeID := "SecretFetcher-" + name
	if _, ok := r.unit.Node(nodeID); !ok {
		_, err := r.unit.AddNode(nodeID, FetcherType, map[string]any{
			"secretName":       name,
			"branchSecretPath": paths.BranchSecretPath,
			"sharedSecretPath": paths.SharedSecretPath,
			"branchSecretArn":  ParameterARN("", r.unit.Region(), r.unit.Account(), paths.BranchSecretPath),
		})
		if err != nil {
			return Value{}, fmt.Errorf("resolve secret %q: %w", name, err)
		}
	}

	return Value{
		Name:      name,
		Reference: fmt.Sprintf("${%s.%s.secretValue}", r.unit.Path(), nodeID),
		Paths:     paths,
	}, nil
}
