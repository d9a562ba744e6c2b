package stack

import (
	"fmt"
	"log/slog"
	"sync"
)

// RootGroup is the group name that always resolves to the root unit. It is
// reserved and cannot be used for a custom stack.
const RootGroup = "root"

// Resolver maps resource group names to deployment units.
type Resolver interface {
	StackFor(group string) (*Unit, error)
	CreateCustomStack(name string) (*Unit, error)
}

type ResolverConfig struct {
	UnitFactory    UnitFactory
	Attribution    AttributionStorage
	LibraryVersion string
	Logger         *slog.Logger
}

// NestedResolver creates one nested unit per group under a root unit, on
// first request.
type NestedResolver struct {
	mu          sync.Mutex
	root        *Unit
	stacks      map[string]*Unit
	order       []*Unit
	newUnit     UnitFactory
	attribution AttributionStorage
	version     string
	logger      *slog.Logger
}

func NewNestedResolver(root *Unit, cfg ResolverConfig) *NestedResolver {
	r := &NestedResolver{
		root:        root,
		stacks:      make(map[string]*Unit),
		newUnit:     cfg.UnitFactory,
		attribution: cfg.Attribution,
		version:     cfg.LibraryVersion,
		logger:      cfg.Logger,
	}
	if r.newUnit == nil {
		r.newUnit = NestedUnit
	}
	if r.attribution == nil {
		r.attribution = DescriptionAttribution{}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

func (r *NestedResolver) Root() *Unit {
	return r.root
}

func (r *NestedResolver) StackFor(group string) (*Unit, error) {
	if group == RootGroup {
		return r.root, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.stacks[group]; ok {
		return u, nil
	}
	return r.create(group, KindNested)
}

func (r *NestedResolver) CreateCustomStack(name string) (*Unit, error) {
	if name == "" {
		return nil, fmt.Errorf("create custom stack: %w", ErrEmptyName)
	}
	if name == RootGroup {
		return nil, fmt.Errorf("create custom stack %q: reserved for the root stack: %w", name, ErrNamingConflict)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.stacks[name]; ok {
		return nil, fmt.Errorf("create custom stack %q: already used by a %s stack: %w", name, existing.Kind(), ErrNamingConflict)
	}
	return r.create(name, KindCustom)
}

// Stacks returns the units created by this resolver in creation order. The
// root unit is not included.
func (r *NestedResolver) Stacks() []*Unit {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Unit, len(r.order))
	copy(out, r.order)
	return out
}

func (r *NestedResolver) create(name string, kind Kind) (*Unit, error) {
	u, err := r.newUnit(r.root, name, kind)
	if err != nil {
		return nil, fmt.Errorf("create %s stack %q: %w", kind, name, err)
	}
	if err := r.attribution.StoreAttributionMetadata(u, kind.String(), r.version); err != nil {
		return nil, fmt.Errorf("attribute %s stack %q: %w", kind, name, err)
	}

	r.stacks[name] = u
	r.order = append(r.order, u)
	r.logger.Debug("created stack", "unit", u.Path(), "kind", kind.String())
	return u, nil
}
