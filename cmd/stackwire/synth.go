package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danpasecinic/stackwire"
	"github.com/danpasecinic/stackwire/metrics"
	"github.com/danpasecinic/stackwire/outputs"
	"github.com/danpasecinic/stackwire/stack"
)

// Assembly is the synthesized description of a resolved backend.
type Assembly struct {
	Identifier string         `json:"identifier" yaml:"identifier"`
	Stacks     []StackDoc     `json:"stacks" yaml:"stacks"`
	Outputs    map[string]any `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

type StackDoc struct {
	Path        string                   `json:"path" yaml:"path"`
	Kind        string                   `json:"kind" yaml:"kind"`
	Region      string                   `json:"region,omitempty" yaml:"region,omitempty"`
	Account     string                   `json:"account,omitempty" yaml:"account,omitempty"`
	Description string                   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        map[string]string        `json:"tags,omitempty" yaml:"tags,omitempty"`
	Outputs     map[string]outputs.Entry `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Nodes       []NodeDoc                `json:"nodes,omitempty" yaml:"nodes,omitempty"`
}

type NodeDoc struct {
	ID         string         `json:"id" yaml:"id"`
	Type       string         `json:"type" yaml:"type"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

func newSynthCommand(opts *options) *cobra.Command {
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Resolve the backend definition and print the resulting stacks",
		Example: `  # Synthesize a sandbox as YAML
  stackwire synth --namespace shop --name alice --region eu-west-1

  # Synthesize a branch deployment as a table
  stackwire synth --type branch --namespace app123 --name main -o table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra []stackwire.Option
			var registry *prometheus.Registry
			if metricsFile != "" {
				collector := metrics.New("stackwire")
				registry = prometheus.NewRegistry()
				if err := registry.Register(collector); err != nil {
					return err
				}
				extra = collector.Options()
			}

			r, err := opts.resolve(cmd.Context(), cmd.ErrOrStderr(), extra...)
			if err != nil {
				return err
			}

			if registry != nil {
				if err := prometheus.WriteToTextfile(metricsFile, registry); err != nil {
					return fmt.Errorf("failed to write metrics: %w", err)
				}
			}

			return writeAssembly(cmd.OutOrStdout(), opts.output, assemble(r.backend))
		},
	}
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write resolution metrics in Prometheus text format to this file")
	return cmd
}

func assemble(b *stackwire.Backend) Assembly {
	a := Assembly{
		Identifier: b.Identifier().String(),
		Outputs:    b.Outputs(),
	}
	a.Stacks = append(a.Stacks, stackDoc(b.Root()))
	for _, u := range b.Stacks() {
		a.Stacks = append(a.Stacks, stackDoc(u))
	}
	return a
}

func stackDoc(u *stack.Unit) StackDoc {
	doc := StackDoc{
		Path:        u.Path(),
		Kind:        u.Kind().String(),
		Region:      u.Region(),
		Account:     u.Account(),
		Description: u.Description(),
		Tags:        u.Tags(),
	}

	for key, value := range u.Metadata() {
		entry, ok := value.(outputs.Entry)
		if !ok || !strings.HasPrefix(key, outputs.MetadataPrefix) {
			continue
		}
		if doc.Outputs == nil {
			doc.Outputs = make(map[string]outputs.Entry)
		}
		doc.Outputs[strings.TrimPrefix(key, outputs.MetadataPrefix)] = entry
	}

	for _, n := range u.Nodes() {
		doc.Nodes = append(doc.Nodes, NodeDoc{ID: n.ID, Type: n.Type, Properties: n.Properties})
	}
	return doc
}

func writeAssembly(w io.Writer, format string, a Assembly) error {
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(a); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	case "table":
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Stack", "Kind", "Node", "Type"})
		for _, s := range a.Stacks {
			if len(s.Nodes) == 0 {
				t.AppendRow(table.Row{s.Path, s.Kind, "", ""})
				continue
			}
			for _, n := range s.Nodes {
				t.AppendRow(table.Row{s.Path, s.Kind, n.ID, n.Type})
			}
		}
		t.SetColumnConfigs(
			[]table.ColumnConfig{
				{Number: 1, AutoMerge: true},
				{Number: 2, AutoMerge: true},
			},
		)
		style := table.StyleLight
		style.Options.DrawBorder = false
		t.SetStyle(style)
		t.Render()

		if len(a.Outputs) > 0 {
			keys := slices.Sorted(maps.Keys(a.Outputs))
			_, _ = fmt.Fprintf(w, "\nOutputs: %s\n", strings.Join(keys, ", "))
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected yaml, json, or table)", format)
	}
}
