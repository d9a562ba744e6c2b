package stackwire

import (
	"fmt"
	"log/slog"

	"github.com/danpasecinic/stackwire/internal/container"
	"github.com/danpasecinic/stackwire/internal/reflect"
	"github.com/danpasecinic/stackwire/outputs"
	"github.com/danpasecinic/stackwire/validate"
)

type (
	Generator        = container.Generator
	GeneratorContext = container.GeneratorContext
)

// Factory produces one named resource of a backend. Factories are compared
// by identity, so they must be non-nil pointers to a type with at least one
// field. Instance may be called more
// than once when other factories look it up by token, and must return the
// same construct each time; resolving through the container guarantees that.
type Factory interface {
	Instance(ctx FactoryContext) (any, error)
}

// TokenProvider is implemented by factories that other factories may look
// up by capability. An empty token provides nothing.
type TokenProvider interface {
	Provides() string
}

type FactoryContext struct {
	Container             ConstructContainer
	OutputStorage         outputs.Storage
	ImportPathVerifier    validate.ImportPathVerifier
	ResourceNameValidator validate.ResourceNameValidator
	Logger                *slog.Logger
}

// ConstructContainer is the view of the construct container handed to
// factories. It is safe to call from inside Instance and Generate.
type ConstructContainer interface {
	GetOrCompute(g Generator) (any, error)
	ConstructFactory(token string) (Factory, bool)
	RegisterConstructFactory(token string, factory Factory) error
}

// GeneratorFunc adapts a function into a Generator. Keep the returned
// pointer to share the construct it produces.
type GeneratorFunc[T any] struct {
	group string
	fn    func(ctx GeneratorContext) (T, error)
}

func NewGenerator[T any](group string, fn func(ctx GeneratorContext) (T, error)) *GeneratorFunc[T] {
	return &GeneratorFunc[T]{group: group, fn: fn}
}

func (g *GeneratorFunc[T]) GroupName() string {
	return g.group
}

func (g *GeneratorFunc[T]) Generate(ctx GeneratorContext) (any, error) {
	return g.fn(ctx)
}

func GetOrCompute[T any](c ConstructContainer, g Generator) (T, error) {
	var zero T

	instance, err := c.GetOrCompute(g)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, errTypeMismatch(reflect.TypeName(g), reflect.TypeKey[T](), reflect.TypeKeyFromValue(instance))
	}
	return typed, nil
}

// LookupInstance resolves the instance of the factory bound to token. The
// boolean is false when no factory provides the token.
func LookupInstance[T any](ctx FactoryContext, token string) (T, bool, error) {
	var zero T

	factory, ok := ctx.Container.ConstructFactory(token)
	if !ok {
		return zero, false, nil
	}

	instance, err := factory.Instance(ctx)
	if err != nil {
		return zero, true, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, true, errTypeMismatch(token, reflect.TypeKey[T](), reflect.TypeKeyFromValue(instance))
	}
	return typed, true, nil
}

type FactoryOption func(*factoryConfig)

type factoryConfig struct {
	token          string
	resourceName   string
	definitionFile string
}

// WithToken makes the factory discoverable by other factories.
func WithToken(token string) FactoryOption {
	return func(cfg *factoryConfig) {
		cfg.token = token
	}
}

// WithResourceName validates name with the backend's resource name
// validator before the construct is produced.
func WithResourceName(name string) FactoryOption {
	return func(cfg *factoryConfig) {
		cfg.resourceName = name
	}
}

// WithDefinitionFile requires NewFactory to be called from a file matching
// pattern, either a path suffix such as "backend/data/resource.go" or a
// glob on the base name. The check runs when the factory is first used and
// follows the backend's ImportPathVerifier.
func WithDefinitionFile(pattern string) FactoryOption {
	return func(cfg *factoryConfig) {
		cfg.definitionFile = pattern
	}
}

// SingletonFactory is a Factory backed by one generator, so every call to
// Instance returns the same construct.
type SingletonFactory[T any] struct {
	generator *GeneratorFunc[T]
	config    factoryConfig
	callers   []string
}

func NewFactory[T any](group string, generate func(ctx GeneratorContext) (T, error), opts ...FactoryOption) *SingletonFactory[T] {
	f := &SingletonFactory[T]{generator: NewGenerator(group, generate)}
	for _, opt := range opts {
		opt(&f.config)
	}
	if f.config.definitionFile != "" {
		f.callers = validate.CallerFiles(1)
	}
	return f
}

func (f *SingletonFactory[T]) Provides() string {
	return f.config.token
}

func (f *SingletonFactory[T]) Generator() Generator {
	return f.generator
}

func (f *SingletonFactory[T]) Instance(ctx FactoryContext) (any, error) {
	return f.Get(ctx)
}

// Get is Instance with the construct's static type.
func (f *SingletonFactory[T]) Get(ctx FactoryContext) (T, error) {
	var zero T

	if f.config.definitionFile != "" && ctx.ImportPathVerifier != nil {
		err := ctx.ImportPathVerifier.Verify(
			f.callers, f.config.definitionFile,
			fmt.Sprintf("the %s factory must be declared in %s", f.generator.group, f.config.definitionFile),
		)
		if err != nil {
			return zero, err
		}
	}
	if f.config.resourceName != "" && ctx.ResourceNameValidator != nil {
		if err := ctx.ResourceNameValidator.Validate(f.config.resourceName); err != nil {
			return zero, err
		}
	}
	return GetOrCompute[T](ctx.Container, f.generator)
}
