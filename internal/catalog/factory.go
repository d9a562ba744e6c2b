package catalog

import (
	"fmt"
	"maps"

	"github.com/danpasecinic/stackwire"
	"github.com/danpasecinic/stackwire/envgen"
	"github.com/danpasecinic/stackwire/secret"
	"github.com/danpasecinic/stackwire/stack"
)

// Construct is the resource produced for one catalog entry.
type Construct struct {
	Name         string
	Kind         string
	PhysicalName string
	Unit         *stack.Unit
	Node         *stack.Node
	Secrets      []secret.Value
	Environment  []envgen.Entry
}

// Ref is the deploy-time reference to the construct's node.
func (c *Construct) Ref() string {
	return fmt.Sprintf("${%s.%s}", c.Unit.Path(), c.Node.ID)
}

type resourceFactory struct {
	resource  Resource
	generator *stackwire.GeneratorFunc[*Construct]
	uses      []*Construct
	resolving bool
}

func newResourceFactory(r Resource) *resourceFactory {
	f := &resourceFactory{resource: r}
	f.generator = stackwire.NewGenerator(r.GroupName(), f.generate)
	return f
}

func (f *resourceFactory) Provides() string {
	return f.resource.Provides
}

// Instance resolves the resources named by Uses before the construct
// itself, so their references can be embedded in its node.
func (f *resourceFactory) Instance(ctx stackwire.FactoryContext) (any, error) {
	if f.resolving {
		return nil, fmt.Errorf("%w: %s", ErrCircularUses, f.resource.Name)
	}
	if err := ctx.ResourceNameValidator.Validate(f.resource.Name); err != nil {
		return nil, err
	}

	f.resolving = true
	uses := make([]*Construct, 0, len(f.resource.Uses))
	for _, token := range f.resource.Uses {
		c, ok, err := stackwire.LookupInstance[*Construct](ctx, token)
		if err != nil {
			f.resolving = false
			return nil, err
		}
		if !ok {
			f.resolving = false
			return nil, fmt.Errorf("%w: %q (used by %s)", ErrUnknownToken, token, f.resource.Name)
		}
		uses = append(uses, c)
	}
	f.resolving = false
	f.uses = uses

	ctx.Logger.Debug("resolving catalog resource", "resource", f.resource.Name, "kind", f.resource.Kind)
	return stackwire.GetOrCompute[*Construct](ctx.Container, f.generator)
}

func (f *resourceFactory) generate(ctx stackwire.GeneratorContext) (*Construct, error) {
	r := f.resource

	nodeType, ok := NodeType(r.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}

	c := &Construct{
		Name:         r.Name,
		Kind:         r.Kind,
		PhysicalName: ctx.StableIDs.ResourceName(r.Name),
		Unit:         ctx.Unit,
	}

	props := maps.Clone(r.Properties)
	if props == nil {
		props = make(map[string]any)
	}
	props["physicalName"] = c.PhysicalName

	if len(f.uses) > 0 {
		refs := make([]string, len(f.uses))
		for i, u := range f.uses {
			refs[i] = u.Ref()
		}
		props["dependsOn"] = refs
	}

	if len(r.Secrets) > 0 {
		secrets := make(map[string]string, len(r.Secrets))
		for _, name := range r.Secrets {
			v, err := ctx.Secrets.Resolve(name)
			if err != nil {
				return nil, err
			}
			c.Secrets = append(c.Secrets, v)
			secrets[name] = v.Reference
		}
		props["secrets"] = secrets
	}

	if len(r.Environment) > 0 {
		entries, err := ctx.Environment.GenerateEntries(r.Environment)
		if err != nil {
			return nil, err
		}
		c.Environment = entries
		env := make(map[string]string, len(entries))
		for _, e := range entries {
			env[e.Name] = e.Path
		}
		props["environment"] = env
	}

	node, err := ctx.Unit.AddNode(r.Name, nodeType, props)
	if err != nil {
		return nil, fmt.Errorf("add %s node %s: %w", r.Kind, r.Name, err)
	}
	c.Node = node
	return c, nil
}

// Module declares one factory per resource, in definition order.
func (d *Definition) Module(name string) *stackwire.Module {
	m := stackwire.NewModule(name)
	for _, r := range d.Resources {
		m.Add(r.Name, newResourceFactory(r))
	}
	return m
}

// Apply creates the definition's custom stacks and adds its outputs to b.
func (d *Definition) Apply(b *stackwire.Backend) error {
	for _, name := range d.Stacks {
		if _, err := b.CreateStack(name); err != nil {
			return err
		}
	}
	if len(d.Outputs) > 0 {
		if err := b.AddOutput(d.Outputs); err != nil {
			return err
		}
	}
	return nil
}
