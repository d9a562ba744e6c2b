package stackwire

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danpasecinic/stackwire/internal/graph"
)

type GraphInfo struct {
	Nodes []NodeInfo
}

// NodeInfo describes a resource or a construct generator seen while the
// backend was resolved. Level is the length of its longest dependency chain.
type NodeInfo struct {
	ID           string
	Kind         string
	Label        string
	Group        string
	Level        int
	Dependencies []string
	Dependents   []string
}

// Graph returns the resolution graph in creation order: every node comes
// after the nodes it depends on.
func (b *Backend) Graph() GraphInfo {
	g := b.internal.Graph()

	order, err := g.TopologicalSort()
	if err != nil {
		order = g.Nodes()
	}

	levels := make(map[string]int)
	if lv, err := g.Levels(); err == nil {
		for _, level := range lv {
			for _, id := range level.Nodes {
				levels[id] = level.Depth
			}
		}
	}

	nodes := make([]NodeInfo, 0, len(order))
	for _, id := range order {
		node, _ := g.GetNode(id)
		nodes = append(
			nodes, NodeInfo{
				ID:           id,
				Kind:         node.Kind.String(),
				Label:        nodeLabel(node),
				Group:        node.Group,
				Level:        levels[id],
				Dependencies: node.Dependencies,
				Dependents:   g.GetDependents(id),
			},
		)
	}

	return GraphInfo{Nodes: nodes}
}

// ResolutionOrder lists the labels of the constructs resource depends on,
// in creation order, followed by resource itself.
func (b *Backend) ResolutionOrder(resource string) ([]string, error) {
	g := b.internal.Graph()

	ids, err := g.ResolutionOrder("resource:" + resource)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(ids))
	for i, id := range ids {
		if node, ok := g.GetNode(id); ok {
			labels[i] = nodeLabel(node)
		} else {
			labels[i] = resource
		}
	}
	return labels, nil
}

func (info GraphInfo) label(id string) string {
	for _, n := range info.Nodes {
		if n.ID == id {
			return n.Label
		}
	}
	return id
}

func (b *Backend) PrintGraph() {
	b.FprintGraph(os.Stdout)
}

func (b *Backend) FprintGraph(w io.Writer) {
	info := b.Graph()

	if len(info.Nodes) == 0 {
		_, _ = fmt.Fprintln(w, "(empty backend)")
		return
	}

	for _, n := range info.Nodes {
		marker := "○"
		if n.Kind == graph.KindResource.String() {
			marker = "●"
		}

		name := n.Label
		if n.Group != "" {
			name += " [" + n.Group + "]"
		}

		if len(n.Dependencies) == 0 {
			_, _ = fmt.Fprintf(w, "%s %s\n", marker, name)
			continue
		}
		deps := make([]string, len(n.Dependencies))
		for i, d := range n.Dependencies {
			deps[i] = info.label(d)
		}
		_, _ = fmt.Fprintf(w, "%s %s ← %s\n", marker, name, strings.Join(deps, ", "))
	}
}

func (b *Backend) SprintGraph() string {
	var sb strings.Builder
	b.FprintGraph(&sb)
	return sb.String()
}

func (b *Backend) FprintGraphDOT(w io.Writer) {
	info := b.Graph()

	_, _ = fmt.Fprintln(w, "digraph backend {")
	_, _ = fmt.Fprintln(w, "  rankdir=LR;")
	_, _ = fmt.Fprintln(w, "  node [shape=box];")

	for _, n := range info.Nodes {
		style := ""
		if n.Kind == graph.KindResource.String() {
			style = ", style=filled, fillcolor=lightblue"
		}
		_, _ = fmt.Fprintf(w, "  %q [label=%q%s];\n", n.ID, escapeLabel(n.Label), style)
	}

	_, _ = fmt.Fprintln(w)

	for _, n := range info.Nodes {
		for _, dep := range n.Dependencies {
			_, _ = fmt.Fprintf(w, "  %q -> %q;\n", n.ID, dep)
		}
	}

	_, _ = fmt.Fprintln(w, "}")
}

func (b *Backend) SprintGraphDOT() string {
	var sb strings.Builder
	b.FprintGraphDOT(&sb)
	return sb.String()
}

func nodeLabel(n *graph.Node) string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "*", "")
	if idx := strings.LastIndex(s, "/"); idx != -1 {
		s = s[idx+1:]
	}
	return s
}
