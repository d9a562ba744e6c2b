package stackwire

import (
	"errors"
	"fmt"

	"github.com/danpasecinic/stackwire/internal/container"
	"github.com/danpasecinic/stackwire/internal/reflect"
)

// containerAdapter exposes the internal construct container to factories
// with root error codes and Factory-typed lookups.
type containerAdapter struct {
	internal *container.Container
}

func (a *containerAdapter) GetOrCompute(g Generator) (any, error) {
	instance, err := a.internal.GetOrCompute(g)
	if err == nil {
		return instance, nil
	}

	var e *Error
	switch {
	case errors.As(err, &e):
		return nil, err
	case errors.Is(err, container.ErrInvalidGenerator):
		return nil, errInvalidGenerator(err)
	case errors.Is(err, container.ErrCircularResolution):
		return nil, errCircularDependency(err)
	default:
		return nil, errGeneratorFailed(reflect.TypeName(g), err)
	}
}

func (a *containerAdapter) ConstructFactory(token string) (Factory, bool) {
	f, ok := a.internal.ConstructFactory(token)
	if !ok {
		return nil, false
	}
	factory, ok := f.(Factory)
	return factory, ok
}

func (a *containerAdapter) RegisterConstructFactory(token string, factory Factory) error {
	err := a.internal.RegisterConstructFactory(token, factory)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, container.ErrTokenConflict):
		return errTokenConflict(token, "", err)
	case errors.Is(err, container.ErrInvalidFactory):
		return errInvalidFactory("", reflect.TypeName(factory))
	default:
		return errInvalidConfig(fmt.Sprintf("cannot register token %q", token), err)
	}
}
