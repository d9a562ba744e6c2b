// Package validate holds the checks that factories run on their own input
// before creating any resource nodes.
package validate

import (
	"errors"
	"fmt"
	"regexp"
)

const maxResourceNameLength = 128

var ErrInvalidResourceName = errors.New("invalid resource name")

var resourceNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

type ResourceNameValidator interface {
	Validate(name string) error
}

// DefaultResourceNameValidator accepts names that start with a letter and
// contain only letters, digits and underscores.
type DefaultResourceNameValidator struct{}

func (DefaultResourceNameValidator) Validate(name string) error {
	if len(name) > maxResourceNameLength {
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidResourceName, name, maxResourceNameLength)
	}
	if !resourceNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q must match %s", ErrInvalidResourceName, name, resourceNamePattern)
	}
	return nil
}
