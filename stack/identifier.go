package stack

import (
	"fmt"
	"regexp"
	"strings"
)

type DeploymentType string

const (
	DeploymentSandbox    DeploymentType = "sandbox"
	DeploymentBranch     DeploymentType = "branch"
	DeploymentStandalone DeploymentType = "standalone"
)

func ParseDeploymentType(s string) (DeploymentType, error) {
	switch t := DeploymentType(strings.ToLower(strings.TrimSpace(s))); t {
	case DeploymentSandbox, DeploymentBranch, DeploymentStandalone:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDeploymentType, s)
	}
}

// Context keys read by IdentifierFor. They are normally set on the app unit
// and inherited by every unit below it.
const (
	ContextNamespace      = "stackwire-backend-namespace"
	ContextName           = "stackwire-backend-name"
	ContextDeploymentType = "stackwire-deployment-type"
)

// Identifier describes one deployment of a backend. For branch deployments
// Namespace is the app id and Name the branch; for sandboxes Namespace is the
// project and Name the developer.
type Identifier struct {
	Type      DeploymentType
	Namespace string
	Name      string
	Region    string
}

func (id Identifier) String() string {
	return fmt.Sprintf("%s/%s (%s)", id.Namespace, id.Name, id.Type)
}

func (id Identifier) Validate() error {
	if id.Namespace == "" {
		return fmt.Errorf("%w: namespace", ErrMissingIdentifier)
	}
	if id.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingIdentifier)
	}
	if _, err := ParseDeploymentType(string(id.Type)); err != nil {
		return err
	}
	return nil
}

// ContextOptions seeds an app unit so that IdentifierFor can derive id from
// any unit created below it.
func (id Identifier) ContextOptions() []UnitOption {
	opts := []UnitOption{
		WithContext(ContextNamespace, id.Namespace),
		WithContext(ContextName, id.Name),
		WithContext(ContextDeploymentType, string(id.Type)),
	}
	if id.Region != "" {
		opts = append(opts, WithRegion(id.Region))
	}
	return opts
}

// IdentifierFor derives the backend identifier from the context inherited by
// u. The region is the unit's own.
func IdentifierFor(u *Unit) (Identifier, error) {
	if u == nil {
		return Identifier{}, fmt.Errorf("%w: unit is nil", ErrMissingIdentifier)
	}

	namespace, ok := u.ContextValue(ContextNamespace)
	if !ok {
		return Identifier{}, fmt.Errorf("%w: %s not set on %s", ErrMissingIdentifier, ContextNamespace, u.Path())
	}
	name, ok := u.ContextValue(ContextName)
	if !ok {
		return Identifier{}, fmt.Errorf("%w: %s not set on %s", ErrMissingIdentifier, ContextName, u.Path())
	}
	rawType, ok := u.ContextValue(ContextDeploymentType)
	if !ok {
		return Identifier{}, fmt.Errorf("%w: %s not set on %s", ErrMissingIdentifier, ContextDeploymentType, u.Path())
	}
	deploymentType, err := ParseDeploymentType(rawType)
	if err != nil {
		return Identifier{}, err
	}

	return Identifier{
		Type:      deploymentType,
		Namespace: namespace,
		Name:      name,
		Region:    u.Region(),
	}, nil
}

var stackNameDisallowed = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// StackName is the physical name of the main unit for id.
func StackName(id Identifier) string {
	name := fmt.Sprintf("stackwire-%s-%s-%s", id.Namespace, id.Name, id.Type)
	name = stackNameDisallowed.ReplaceAllString(name, "")
	if len(name) > 128 {
		name = name[:128]
	}
	return name
}
