package container

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/danpasecinic/stackwire/envgen"
	"github.com/danpasecinic/stackwire/internal/graph"
	"github.com/danpasecinic/stackwire/internal/reflect"
	"github.com/danpasecinic/stackwire/secret"
	"github.com/danpasecinic/stackwire/stableid"
	"github.com/danpasecinic/stackwire/stack"
)

var (
	ErrCircularResolution = errors.New("circular construct resolution")
	ErrInvalidGenerator   = errors.New("generator must be a non-nil pointer")
)

// Generator produces one construct. The generator value itself is the cache
// key, so it must be a pointer that callers reuse to share the construct.
type Generator interface {
	GroupName() string
	Generate(ctx GeneratorContext) (any, error)
}

// GeneratorContext is built on every cache miss from the unit that the
// generator's group resolves to.
type GeneratorContext struct {
	Unit        *stack.Unit
	Identifier  stack.Identifier
	Secrets     secret.Resolver
	Environment *envgen.Generator
	StableIDs   *stableid.Identifiers
}

type StackResolver interface {
	StackFor(group string) (*stack.Unit, error)
}

type ComputeEvent struct {
	Generator Generator
	Group     string
	Hit       bool
	Duration  time.Duration
	Err       error
}

type ComputeHook func(ComputeEvent)

type Config struct {
	Resolver  StackResolver
	Logger    *slog.Logger
	OnCompute ComputeHook
}

// Container memoizes constructs by generator identity and keeps the token
// registry that lets factories find each other. Resolution is synchronous:
// the chain of generators being produced belongs to the single caller.
type Container struct {
	mu        sync.Mutex
	resolver  StackResolver
	tokens    *TokenRegistry
	graph     *graph.Graph
	logger    *slog.Logger
	onCompute ComputeHook

	cache     map[Generator]any
	producing map[Generator]bool
	chain     []string
}

func New(cfg *Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Container{
		resolver:  cfg.Resolver,
		tokens:    NewTokenRegistry(),
		graph:     graph.New(),
		logger:    logger,
		onCompute: cfg.OnCompute,
		cache:     make(map[Generator]any),
		producing: make(map[Generator]bool),
	}
}

// GetOrCompute returns the construct cached for g, producing it first if g
// has not been seen. A failed production is not cached.
func (c *Container) GetOrCompute(g Generator) (any, error) {
	if !reflect.IsIdentityKey(g) {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidGenerator, reflect.TypeName(g))
	}

	start := time.Now()
	id := reflect.IdentityKey(g)

	c.mu.Lock()
	if result, ok := c.cache[g]; ok {
		c.linkLocked(id)
		c.mu.Unlock()
		c.observe(g, true, start, nil)
		return result, nil
	}
	if c.producing[g] {
		chain := append(labels(c.graph, c.chain), reflect.TypeName(g))
		c.mu.Unlock()
		err := fmt.Errorf("%w: %s", ErrCircularResolution, strings.Join(chain, " -> "))
		c.observe(g, false, start, err)
		return nil, err
	}
	c.graph.AddNode(id, graph.KindGenerator, reflect.TypeName(g), g.GroupName())
	c.linkLocked(id)
	c.producing[g] = true
	c.chain = append(c.chain, id)
	c.mu.Unlock()

	result, err := c.produce(g)

	c.mu.Lock()
	delete(c.producing, g)
	c.chain = c.chain[:len(c.chain)-1]
	if err == nil {
		c.cache[g] = result
	}
	c.mu.Unlock()

	c.observe(g, false, start, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Container) produce(g Generator) (any, error) {
	group := g.GroupName()
	name := reflect.TypeName(g)

	if c.resolver == nil {
		return nil, fmt.Errorf("resolve group %q for %s: no stack resolver configured", group, name)
	}
	unit, err := c.resolver.StackFor(group)
	if err != nil {
		return nil, fmt.Errorf("resolve group %q for %s: %w", group, name, err)
	}
	id, err := stack.IdentifierFor(unit)
	if err != nil {
		return nil, fmt.Errorf("identify unit %s for %s: %w", unit.Path(), name, err)
	}

	c.logger.Debug("generating construct", "generator", name, "group", group, "unit", unit.Path())

	result, err := g.Generate(GeneratorContext{
		Unit:        unit,
		Identifier:  id,
		Secrets:     secret.NewResolver(unit, id),
		Environment: envgen.New(unit, id),
		StableIDs:   stableid.New(id),
	})
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", name, err)
	}
	return result, nil
}

// Within runs fn with node as the current dependent, so that constructs
// resolved by fn are recorded as dependencies of node.
func (c *Container) Within(node string, kind graph.NodeKind, label string, fn func() error) error {
	c.mu.Lock()
	c.graph.AddNode(node, kind, label, "")
	c.linkLocked(node)
	c.chain = append(c.chain, node)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.chain = c.chain[:len(c.chain)-1]
		c.mu.Unlock()
	}()

	return fn()
}

func (c *Container) linkLocked(id string) {
	if n := len(c.chain); n > 0 && c.chain[n-1] != id {
		c.graph.AddEdge(c.chain[n-1], id)
	}
}

func (c *Container) observe(g Generator, hit bool, start time.Time, err error) {
	if c.onCompute == nil {
		return
	}
	c.onCompute(
		ComputeEvent{
			Generator: g,
			Group:     g.GroupName(),
			Hit:       hit,
			Duration:  time.Since(start),
			Err:       err,
		},
	)
}

func (c *Container) RegisterConstructFactory(token string, factory any) error {
	if err := c.tokens.Register(token, factory); err != nil {
		return err
	}
	c.logger.Debug("registered construct factory", "token", token, "factory", reflect.TypeName(factory))
	return nil
}

// ConstructFactory returns the factory bound to token, if any.
func (c *Container) ConstructFactory(token string) (any, bool) {
	return c.tokens.Lookup(token)
}

func (c *Container) Tokens() []string {
	return c.tokens.Tokens()
}

// Has reports whether g has a cached construct.
func (c *Container) Has(g Generator) bool {
	if !reflect.IsIdentityKey(g) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.cache[g]
	return ok
}

// Size is the number of cached constructs.
func (c *Container) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

func (c *Container) Graph() *graph.Graph {
	return c.graph.Clone()
}

func labels(g *graph.Graph, ids []string) []string {
	out := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		if node, ok := g.GetNode(id); ok && node.Label != "" {
			out = append(out, node.Label)
			continue
		}
		out = append(out, id)
	}
	return out
}
