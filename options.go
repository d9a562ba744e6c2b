package stackwire

import (
	"log/slog"

	"github.com/danpasecinic/stackwire/outputs"
	"github.com/danpasecinic/stackwire/stack"
	"github.com/danpasecinic/stackwire/validate"
)

type Option func(*backendConfig)

// WithRoot uses an existing unit as the backend's root stack. The unit must
// inherit the identifier context keys, see stack.Identifier.ContextOptions.
func WithRoot(root *stack.Unit) Option {
	return func(cfg *backendConfig) {
		cfg.root = root
	}
}

// WithIdentifier creates the root stack for id under a new app unit, or
// under the unit given with WithApp.
func WithIdentifier(id stack.Identifier) Option {
	return func(cfg *backendConfig) {
		cfg.identifier = &id
	}
}

func WithApp(app *stack.Unit) Option {
	return func(cfg *backendConfig) {
		cfg.app = app
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *backendConfig) {
		cfg.logger = logger
	}
}

func WithUnitFactory(factory stack.UnitFactory) Option {
	return func(cfg *backendConfig) {
		cfg.unitFactory = factory
	}
}

func WithAttribution(storage stack.AttributionStorage) Option {
	return func(cfg *backendConfig) {
		cfg.attribution = storage
	}
}

func WithLibraryVersion(version string) Option {
	return func(cfg *backendConfig) {
		cfg.libraryVersion = version
	}
}

func WithOutputStorage(storage outputs.Storage) Option {
	return func(cfg *backendConfig) {
		cfg.outputStorage = storage
	}
}

func WithImportPathVerifier(verifier validate.ImportPathVerifier) Option {
	return func(cfg *backendConfig) {
		cfg.importPathVerifier = verifier
	}
}

func WithResourceNameValidator(validator validate.ResourceNameValidator) Option {
	return func(cfg *backendConfig) {
		cfg.resourceNameValidator = validator
	}
}

func WithComputeObserver(hook ComputeHook) Option {
	return func(cfg *backendConfig) {
		cfg.onCompute = append(cfg.onCompute, hook)
	}
}

func WithFactoryObserver(hook FactoryHook) Option {
	return func(cfg *backendConfig) {
		cfg.onFactory = append(cfg.onFactory, hook)
	}
}

func WithTokenObserver(hook TokenHook) Option {
	return func(cfg *backendConfig) {
		cfg.onToken = append(cfg.onToken, hook)
	}
}

func WithStackObserver(hook StackHook) Option {
	return func(cfg *backendConfig) {
		cfg.onStack = append(cfg.onStack, hook)
	}
}

func WithOutputObserver(hook OutputHook) Option {
	return func(cfg *backendConfig) {
		cfg.onOutput = append(cfg.onOutput, hook)
	}
}
