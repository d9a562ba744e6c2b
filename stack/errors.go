package stack

import "errors"

var (
	ErrNamingConflict        = errors.New("name is already in use")
	ErrEmptyName             = errors.New("name is empty")
	ErrMissingIdentifier     = errors.New("backend identifier is not available on unit")
	ErrInvalidDeploymentType = errors.New("invalid deployment type")
)
