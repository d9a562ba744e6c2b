package stack

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

type Kind int

const (
	KindRoot Kind = iota
	KindNested
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindNested:
		return "nested"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Node is an opaque resource created inside a unit. The engine never looks
// inside Properties.
type Node struct {
	ID         string
	Type       string
	Properties map[string]any
}

// Unit is a named deployment boundary. Units form a tree rooted at an app
// unit; context values are inherited from ancestors, everything else is
// local to the unit.
type Unit struct {
	mu sync.RWMutex

	name        string
	kind        Kind
	parent      *Unit
	region      string
	account     string
	description string

	context  map[string]string
	tags     map[string]string
	metadata map[string]any

	children  []*Unit
	nodes     []*Node
	nodeIndex map[string]*Node
}

type UnitOption func(*Unit)

func WithRegion(region string) UnitOption {
	return func(u *Unit) {
		u.region = region
	}
}

func WithAccount(account string) UnitOption {
	return func(u *Unit) {
		u.account = account
	}
}

func WithContext(key, value string) UnitOption {
	return func(u *Unit) {
		u.context[key] = value
	}
}

// NewApp creates a parentless unit that only carries context for its
// descendants.
func NewApp(name string, opts ...UnitOption) *Unit {
	u := newUnit(name, KindRoot, nil)
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func newUnit(name string, kind Kind, parent *Unit) *Unit {
	u := &Unit{
		name:      name,
		kind:      kind,
		parent:    parent,
		context:   make(map[string]string),
		tags:      make(map[string]string),
		metadata:  make(map[string]any),
		nodeIndex: make(map[string]*Node),
	}
	if parent != nil {
		u.region = parent.Region()
		u.account = parent.Account()
	}
	return u
}

func (u *Unit) Name() string {
	return u.name
}

func (u *Unit) Kind() Kind {
	return u.kind
}

func (u *Unit) Parent() *Unit {
	return u.parent
}

func (u *Unit) Region() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.region
}

func (u *Unit) Account() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.account
}

// Path is the slash-separated list of unit names from the topmost ancestor.
func (u *Unit) Path() string {
	var parts []string
	for cur := u; cur != nil; cur = cur.parent {
		parts = append(parts, cur.name)
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/")
}

func (u *Unit) SetContext(key, value string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.context[key] = value
}

// ContextValue looks the key up on this unit and then on each ancestor.
func (u *Unit) ContextValue(key string) (string, bool) {
	for cur := u; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		v, ok := cur.context[key]
		cur.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return "", false
}

func (u *Unit) AddTag(key, value string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tags[key] = value
}

func (u *Unit) Tags() map[string]string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return maps.Clone(u.tags)
}

func (u *Unit) Description() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.description
}

func (u *Unit) SetDescription(description string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.description = description
}

func (u *Unit) SetMetadata(key string, value any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.metadata[key] = value
}

func (u *Unit) MetadataValue(key string) (any, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	v, ok := u.metadata[key]
	return v, ok
}

func (u *Unit) Metadata() map[string]any {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return maps.Clone(u.metadata)
}

// AddNode creates a resource node. Node ids are unique within a unit.
func (u *Unit) AddNode(id, typ string, properties map[string]any) (*Node, error) {
	if id == "" {
		return nil, fmt.Errorf("add node to %s: %w", u.Path(), ErrEmptyName)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if _, exists := u.nodeIndex[id]; exists {
		return nil, fmt.Errorf("add node %q to %s: %w", id, u.Path(), ErrNamingConflict)
	}

	n := &Node{ID: id, Type: typ, Properties: properties}
	u.nodes = append(u.nodes, n)
	u.nodeIndex[id] = n
	return n, nil
}

func (u *Unit) Node(id string) (*Node, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	n, ok := u.nodeIndex[id]
	return n, ok
}

func (u *Unit) Nodes() []*Node {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return slices.Clone(u.nodes)
}

func (u *Unit) Children() []*Unit {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return slices.Clone(u.children)
}

func (u *Unit) Child(name string) (*Unit, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, c := range u.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// UnitFactory is the deployment-unit creation primitive.
type UnitFactory func(parent *Unit, name string, kind Kind) (*Unit, error)

// NestedUnit is the default UnitFactory: it attaches a new child unit to
// parent and fails if the parent already has a child with that name.
func NestedUnit(parent *Unit, name string, kind Kind) (*Unit, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if parent == nil {
		return nil, fmt.Errorf("create unit %q: parent is nil", name)
	}

	child := newUnit(name, kind, parent)

	parent.mu.Lock()
	defer parent.mu.Unlock()

	for _, c := range parent.children {
		if c.name == name {
			return nil, fmt.Errorf("create unit %q under %s: %w", name, parent.name, ErrNamingConflict)
		}
	}
	parent.children = append(parent.children, child)
	return child, nil
}
