package graph

import (
	"errors"
	"slices"
)

var ErrCycleDetected = errors.New("cycle detected in graph")

// TopologicalSort orders nodes so that dependencies come first. Nodes that
// are ready at the same time keep their insertion order.
func (g *Graph) TopologicalSort() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	inDegree := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string, len(g.nodes))

	for _, id := range g.order {
		for _, dep := range g.nodes[id].Dependencies {
			dependents[dep] = append(dependents[dep], id)
			inDegree[id]++
		}
	}

	var queue []string
	for _, id := range g.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := make([]string, 0, len(g.order))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		sorted = append(sorted, node)

		for _, dependent := range dependents[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(sorted) != len(g.order) {
		return nil, ErrCycleDetected
	}

	return sorted, nil
}

// ResolutionOrder lists target and everything it transitively depends on,
// dependencies first.
func (g *Graph) ResolutionOrder(target string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, exists := g.nodes[target]; !exists {
		return []string{target}, nil
	}

	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	var order []string

	var visit func(id string) error
	visit = func(id string) error {
		if visiting[id] {
			return ErrCycleDetected
		}
		if visited[id] {
			return nil
		}

		visiting[id] = true
		for _, dep := range g.nodes[id].Dependencies {
			if err := visit(dep); err != nil {
				return err
			}
		}
		visiting[id] = false
		visited[id] = true
		order = append(order, id)
		return nil
	}

	if err := visit(target); err != nil {
		return nil, err
	}

	return order, nil
}

type Level struct {
	Depth int
	Nodes []string
}

// Levels groups nodes by the length of their longest dependency chain.
// Nodes in one level do not depend on each other.
func (g *Graph) Levels() ([]Level, error) {
	sorted, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	depth := make(map[string]int, len(sorted))
	maxDepth := 0
	for _, id := range sorted {
		d := 0
		for _, dep := range g.nodes[id].Dependencies {
			d = max(d, depth[dep]+1)
		}
		depth[id] = d
		maxDepth = max(maxDepth, d)
	}

	if len(sorted) == 0 {
		return nil, nil
	}

	levels := make([]Level, maxDepth+1)
	for i := range levels {
		levels[i].Depth = i
	}
	for _, id := range g.order {
		levels[depth[id]].Nodes = append(levels[depth[id]].Nodes, id)
	}
	return slices.Clip(levels), nil
}
