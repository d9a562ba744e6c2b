package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/danpasecinic/stackwire"
)

func newGraphCommand(opts *options) *cobra.Command {
	format := "ascii"

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the construct graph recorded while resolving the backend",
		Example: `  # Render with Graphviz
  stackwire graph --format dot | dot -Tsvg > backend.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.resolve(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return writeGraph(cmd.OutOrStdout(), format, r.backend)
		},
	}
	cmd.Flags().StringVar(&format, "format", format, "Graph format (ascii, dot, table)")
	return cmd
}

func writeGraph(w io.Writer, format string, b *stackwire.Backend) error {
	switch format {
	case "ascii":
		b.FprintGraph(w)
	case "dot":
		b.FprintGraphDOT(w)
	case "table":
		info := b.Graph()
		labels := make(map[string]string, len(info.Nodes))
		for _, n := range info.Nodes {
			labels[n.ID] = n.Label
		}

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Level", "Kind", "Name", "Group", "Depends On"})
		for _, n := range info.Nodes {
			deps := make([]string, len(n.Dependencies))
			for i, d := range n.Dependencies {
				deps[i] = labels[d]
			}
			t.AppendRow(table.Row{n.Level, n.Kind, n.Label, n.Group, strings.Join(deps, ", ")})
		}
		style := table.StyleLight
		style.Options.DrawBorder = false
		t.SetStyle(style)
		t.Render()
	default:
		return fmt.Errorf("unknown graph format %q (expected ascii, dot, or table)", format)
	}
	return nil
}
