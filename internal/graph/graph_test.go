package graph

import (
	"errors"
	"slices"
	"testing"
)

func TestGraph_AddNode(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddNode("resource:auth", KindResource, "auth", "")
	g.AddNode("resource:auth", KindResource, "ignored", "auth")

	node, ok := g.GetNode("resource:auth")
	if !ok {
		t.Fatal("node should exist")
	}
	if node.Label != "auth" {
		t.Errorf("label should keep first value, got %q", node.Label)
	}
	if node.Group != "auth" {
		t.Errorf("missing group should be filled in, got %q", node.Group)
	}
	if g.Size() != 1 {
		t.Errorf("expected 1 node, got %d", g.Size())
	}
}

func TestGraph_AddEdge(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddNode("A", KindResource, "a", "")
	g.AddEdge("A", "B")
	g.AddEdge("A", "B")
	g.AddEdge("A", "C")

	deps := g.GetDependencies("A")
	if !slices.Equal(deps, []string{"B", "C"}) {
		t.Errorf("expected [B C], got %v", deps)
	}

	node, ok := g.GetNode("B")
	if !ok || node.Kind != KindGenerator {
		t.Errorf("edge target should be added as generator node, got %+v", node)
	}
}

func TestGraph_GetDependents(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge("A", "C")
	g.AddEdge("B", "C")

	dependents := g.GetDependents("C")
	if !slices.Equal(dependents, []string{"A", "B"}) {
		t.Errorf("expected [A B], got %v", dependents)
	}
}

func TestGraph_NodesKeepInsertionOrder(t *testing.T) {
	t.Parallel()

	g := New()
	for _, id := range []string{"z", "a", "m"} {
		g.AddNode(id, KindResource, id, "")
	}

	if !slices.Equal(g.Nodes(), []string{"z", "a", "m"}) {
		t.Errorf("unexpected order %v", g.Nodes())
	}
}

func TestGraph_Clone(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge("A", "B")

	clone := g.Clone()
	if clone.Size() != g.Size() {
		t.Error("clone should have same size")
	}

	g.AddEdge("A", "C")
	if clone.Size() == g.Size() {
		t.Error("clone should be independent")
	}
	if len(clone.GetDependencies("A")) != 1 {
		t.Error("clone dependencies should be independent")
	}
}

func TestGraph_TopologicalSort(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge("A", "B")
	g.AddEdge("A", "C")
	g.AddEdge("B", "D")
	g.AddEdge("C", "D")

	sorted, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(sorted, []string{"D", "B", "C", "A"}) {
		t.Errorf("unexpected order %v", sorted)
	}
}

func TestGraph_TopologicalSort_Cycle(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge("A", "B")
	g.AddEdge("B", "A")

	_, err := g.TopologicalSort()
	if !errors.Is(err, ErrCycleDetected) {
		t.Errorf("expected ErrCycleDetected, got %v", err)
	}
}

func TestGraph_ResolutionOrder(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	g.AddNode("unrelated", KindResource, "", "")

	order, err := g.ResolutionOrder("A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []string{"C", "B", "A"}) {
		t.Errorf("unexpected order %v", order)
	}

	order, err = g.ResolutionOrder("missing")
	if err != nil || !slices.Equal(order, []string{"missing"}) {
		t.Errorf("unknown target should resolve to itself, got %v %v", order, err)
	}
}

func TestGraph_Levels(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge("auth", "userPool")
	g.AddEdge("data", "table")
	g.AddEdge("data", "auth")

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][]string{{"userPool", "table"}, {"auth"}, {"data"}}
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %+v", len(want), levels)
	}
	for i, level := range levels {
		if level.Depth != i {
			t.Errorf("level %d has depth %d", i, level.Depth)
		}
		if !slices.Equal(level.Nodes, want[i]) {
			t.Errorf("level %d: expected %v, got %v", i, want[i], level.Nodes)
		}
	}
}

func TestGraph_LevelsEmpty(t *testing.T) {
	t.Parallel()

	levels, err := New().Levels()
	if err != nil || len(levels) != 0 {
		t.Errorf("expected no levels, got %v %v", levels, err)
	}
}
