package graph

import (
	"slices"
	"sync"
)

type NodeKind int

const (
	KindResource NodeKind = iota
	KindGenerator
)

func (k NodeKind) String() string {
	switch k {
	case KindResource:
		return "resource"
	case KindGenerator:
		return "generator"
	default:
		return "unknown"
	}
}

// Node is one resource or construct generator seen during resolution.
// Dependencies are the ids it asked for while it was being produced.
type Node struct {
	ID           string
	Kind         NodeKind
	Label        string
	Group        string
	Dependencies []string
}

// Graph records nodes in the order they were first seen, so that every
// listing it returns is deterministic for one resolution.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	order []string
}

func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
	}
}

// AddNode registers id. Adding an existing id keeps its position and only
// fills in a missing label or group.
func (g *Graph) AddNode(id string, kind NodeKind, label, group string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if node, exists := g.nodes[id]; exists {
		if node.Label == "" {
			node.Label = label
		}
		if node.Group == "" {
			node.Group = group
		}
		return
	}

	g.nodes[id] = &Node{ID: id, Kind: kind, Label: label, Group: group}
	g.order = append(g.order, id)
}

// AddEdge records that from depends on to. Unknown ids are added as
// generator nodes without a label.
func (g *Graph) AddEdge(from, to string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, id := range []string{from, to} {
		if _, exists := g.nodes[id]; !exists {
			g.nodes[id] = &Node{ID: id, Kind: KindGenerator}
			g.order = append(g.order, id)
		}
	}

	node := g.nodes[from]
	if !slices.Contains(node.Dependencies, to) {
		node.Dependencies = append(node.Dependencies, to)
	}
}

func (g *Graph) GetNode(id string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, exists := g.nodes[id]
	if !exists {
		return nil, false
	}

	nodeCopy := *node
	nodeCopy.Dependencies = slices.Clone(node.Dependencies)
	return &nodeCopy, true
}

func (g *Graph) GetDependencies(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, exists := g.nodes[id]
	if !exists {
		return nil
	}
	return slices.Clone(node.Dependencies)
}

func (g *Graph) GetDependents(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var dependents []string
	for _, nodeID := range g.order {
		if slices.Contains(g.nodes[nodeID].Dependencies, id) {
			dependents = append(dependents, nodeID)
		}
	}
	return dependents
}

func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return slices.Clone(g.order)
}

func (g *Graph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes)
}

func (g *Graph) Clone() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	clone := New()
	for _, id := range g.order {
		node := *g.nodes[id]
		node.Dependencies = slices.Clone(node.Dependencies)
		clone.nodes[id] = &node
	}
	clone.order = slices.Clone(g.order)
	return clone
}
