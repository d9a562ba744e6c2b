package stackwire

import (
	"errors"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/danpasecinic/stackwire/internal/container"
	"github.com/danpasecinic/stackwire/internal/graph"
	"github.com/danpasecinic/stackwire/internal/reflect"
	"github.com/danpasecinic/stackwire/outputs"
	"github.com/danpasecinic/stackwire/stack"
	"github.com/danpasecinic/stackwire/validate"
)

// RootStackType is the attribution stack type of a backend's root stack.
const RootStackType = "root"

const platformOutputVersion = "1"

// Backend is one resolution session: the resources produced from a set of
// factories, together with the stacks, constructs and outputs they share.
type Backend struct {
	config *backendConfig

	root        *stack.Unit
	identifier  stack.Identifier
	resolver    *stack.NestedResolver
	internal    *container.Container
	constructs  *containerAdapter
	storage     outputs.Storage
	accumulator *outputs.Accumulator

	names     []string
	resources map[string]any
}

type backendConfig struct {
	logger                *slog.Logger
	root                  *stack.Unit
	app                   *stack.Unit
	identifier            *stack.Identifier
	unitFactory           stack.UnitFactory
	attribution           stack.AttributionStorage
	libraryVersion        string
	outputStorage         outputs.Storage
	importPathVerifier    validate.ImportPathVerifier
	resourceNameValidator validate.ResourceNameValidator

	onCompute []ComputeHook
	onFactory []FactoryHook
	onToken   []TokenHook
	onStack   []StackHook
	onOutput  []OutputHook
}

type entry struct {
	name    string
	factory Factory
}

// New resolves factories into a backend. Factories are invoked in name
// order; use NewFromModules to control the order.
func New(factories map[string]Factory, opts ...Option) (*Backend, error) {
	names := slices.Sorted(maps.Keys(factories))
	entries := make([]entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, entry{name: name, factory: factories[name]})
	}
	return build(entries, opts)
}

// NewFromModules resolves the factories declared by modules, in declaration
// order. A module's submodules come before its own factories.
func NewFromModules(modules []*Module, opts ...Option) (*Backend, error) {
	seen := make(map[string]string)
	var entries []entry
	for _, m := range modules {
		var err error
		entries, err = m.flatten(seen, entries)
		if err != nil {
			return nil, err
		}
	}
	return build(entries, opts)
}

func build(entries []entry, opts []Option) (*Backend, error) {
	cfg := &backendConfig{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.attribution == nil {
		cfg.attribution = stack.DescriptionAttribution{}
	}
	if cfg.importPathVerifier == nil {
		cfg.importPathVerifier = validate.NewImportPathVerifier()
	}
	if cfg.resourceNameValidator == nil {
		cfg.resourceNameValidator = validate.DefaultResourceNameValidator{}
	}

	b := &Backend{
		config:    cfg,
		resources: make(map[string]any, len(entries)),
	}

	if err := b.bootstrap(); err != nil {
		return nil, err
	}
	if err := b.collectTokens(entries); err != nil {
		return nil, err
	}
	if err := b.instantiateAll(entries); err != nil {
		return nil, err
	}

	cfg.logger.Debug(
		"backend resolved",
		"unit", b.root.Path(),
		"resources", len(b.names),
		"constructs", b.internal.Size(),
	)
	return b, nil
}

func (b *Backend) bootstrap() error {
	cfg := b.config

	root := cfg.root
	if root == nil {
		if cfg.identifier == nil {
			return errInvalidConfig("either WithRoot or WithIdentifier is required", nil)
		}
		app := cfg.app
		if app == nil {
			app = stack.NewDefaultApp(*cfg.identifier)
		}
		var err error
		root, err = stack.NewMainStackCreator(app, *cfg.identifier, cfg.unitFactory).GetOrCreateMainStack()
		if err != nil {
			return errBootstrapFailed("main stack", err)
		}
	}
	b.root = root

	if err := cfg.attribution.StoreAttributionMetadata(root, RootStackType, cfg.libraryVersion); err != nil {
		return errBootstrapFailed("attribution", err)
	}

	b.resolver = stack.NewNestedResolver(
		root, stack.ResolverConfig{
			UnitFactory:    cfg.unitFactory,
			Attribution:    cfg.attribution,
			LibraryVersion: cfg.libraryVersion,
			Logger:         cfg.logger,
		},
	)
	b.internal = container.New(
		&container.Config{
			Resolver:  b.resolver,
			Logger:    cfg.logger,
			OnCompute: b.observeCompute,
		},
	)
	b.constructs = &containerAdapter{internal: b.internal}

	b.storage = cfg.outputStorage
	if b.storage == nil {
		b.storage = outputs.NewUnitMetadataStorage(root)
	}
	b.accumulator = outputs.NewAccumulator(b.storage)

	id, err := stack.IdentifierFor(root)
	if err != nil {
		return errBootstrapFailed("identifier", err)
	}
	b.identifier = id

	err = b.storage.AddBackendOutputEntry(
		outputs.PlatformOutputKey, outputs.Entry{
			Version: platformOutputVersion,
			Payload: map[string]string{
				"deploymentType": string(id.Type),
				"region":         root.Region(),
			},
		},
	)
	if err != nil {
		return errBootstrapFailed("platform output", err)
	}

	if id.Type == stack.DeploymentBranch {
		if _, err := stack.LinkBranch(root, id); err != nil {
			return errBootstrapFailed("branch linker", err)
		}
	}

	cfg.logger.Debug("backend bootstrapped", "unit", root.Path(), "identifier", id.String())
	return nil
}

// collectTokens registers every factory that provides a token before any
// factory runs, so lookups never depend on invocation order.
func (b *Backend) collectTokens(entries []entry) error {
	for _, e := range entries {
		if !reflect.IsIdentityKey(e.factory) {
			return errInvalidFactory(e.name, reflect.TypeName(e.factory))
		}

		provider, ok := e.factory.(TokenProvider)
		if !ok {
			continue
		}
		token := provider.Provides()
		if token == "" {
			continue
		}

		if err := b.internal.RegisterConstructFactory(token, e.factory); err != nil {
			return errTokenConflict(token, e.name, err)
		}
		for _, hook := range b.config.onToken {
			hook(token, e.name)
		}
		b.config.logger.Debug("registered token", "resource", e.name, "token", token)
	}
	return nil
}

func (b *Backend) instantiateAll(entries []entry) error {
	ctx := b.factoryContext()

	for _, e := range entries {
		start := time.Now()
		b.config.logger.Debug("invoking factory", "resource", e.name)

		var instance any
		err := b.internal.Within(
			"resource:"+e.name, graph.KindResource, e.name, func() error {
				var err error
				instance, err = e.factory.Instance(ctx)
				return err
			},
		)

		for _, hook := range b.config.onFactory {
			hook(e.name, time.Since(start), err)
		}
		if err != nil {
			return errFactoryFailed(e.name, err)
		}

		b.resources[e.name] = instance
		b.names = append(b.names, e.name)
	}
	return nil
}

func (b *Backend) factoryContext() FactoryContext {
	return FactoryContext{
		Container:             b.constructs,
		OutputStorage:         b.storage,
		ImportPathVerifier:    b.config.importPathVerifier,
		ResourceNameValidator: b.config.resourceNameValidator,
		Logger:                b.config.logger,
	}
}

func (b *Backend) observeCompute(e container.ComputeEvent) {
	if len(b.config.onCompute) == 0 {
		return
	}
	name := reflect.TypeName(e.Generator)
	for _, hook := range b.config.onCompute {
		hook(name, e.Group, e.Hit, e.Duration, e.Err)
	}
}

// Resources returns the produced resources by name.
func (b *Backend) Resources() map[string]any {
	return maps.Clone(b.resources)
}

func (b *Backend) Resource(name string) (any, bool) {
	r, ok := b.resources[name]
	return r, ok
}

// Names lists resource names in invocation order.
func (b *Backend) Names() []string {
	return slices.Clone(b.names)
}

func ResourceAs[T any](b *Backend, name string) (T, error) {
	var zero T

	r, ok := b.resources[name]
	if !ok {
		return zero, errResourceNotFound(name)
	}
	typed, ok := r.(T)
	if !ok {
		return zero, errTypeMismatch(name, reflect.TypeKey[T](), reflect.TypeKeyFromValue(r))
	}
	return typed, nil
}

// CreateStack creates a custom stack for resources defined outside the
// factories. Each name can be used once, and never for a group that a
// factory already resolved.
func (b *Backend) CreateStack(name string) (*stack.Unit, error) {
	u, err := b.resolver.CreateCustomStack(name)
	for _, hook := range b.config.onStack {
		hook(name, err)
	}
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, stack.ErrNamingConflict):
		return nil, errNamingConflict(name, err)
	case errors.Is(err, stack.ErrEmptyName):
		return nil, errInvalidConfig("stack name cannot be empty", err)
	default:
		return nil, errStackCreationFailed(name, err)
	}
}

// AddOutput merges fragment into the backend's custom outputs. A fragment
// without a version gets outputs.DefaultVersion.
func (b *Backend) AddOutput(fragment outputs.Fragment) error {
	err := b.accumulator.AddOutput(fragment)
	for _, hook := range b.config.onOutput {
		hook(err)
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, outputs.ErrVersionMismatch):
		return errOutputVersionMismatch(err)
	default:
		return errInvalidOutput(err)
	}
}

// Outputs returns a copy of the accumulated custom outputs.
func (b *Backend) Outputs() outputs.Fragment {
	return b.accumulator.Document()
}

func (b *Backend) Root() *stack.Unit {
	return b.root
}

func (b *Backend) Identifier() stack.Identifier {
	return b.identifier
}

// Stacks lists the nested and custom stacks created so far.
func (b *Backend) Stacks() []*stack.Unit {
	return b.resolver.Stacks()
}

func (b *Backend) Container() ConstructContainer {
	return b.constructs
}

// Tokens lists the registered capability tokens.
func (b *Backend) Tokens() []string {
	return b.internal.Tokens()
}
