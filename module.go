package stackwire

// Module groups named factories that belong together, such as the
// resources of one feature. Modules can include other modules.
type Module struct {
	name       string
	entries    []entry
	submodules []*Module
}

func NewModule(name string) *Module {
	return &Module{
		name: name,
	}
}

func (m *Module) Name() string {
	return m.name
}

// Add declares the resource name produced by factory.
func (m *Module) Add(name string, factory Factory) *Module {
	m.entries = append(m.entries, entry{name: name, factory: factory})
	return m
}

func (m *Module) Include(submodule *Module) *Module {
	m.submodules = append(m.submodules, submodule)
	return m
}

// Names lists the resource names declared by m and its submodules, in
// invocation order.
func (m *Module) Names() []string {
	entries, err := m.flatten(make(map[string]string), nil)
	if err != nil {
		return nil
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// flatten appends the entries of m to out, submodules first. seen maps each
// resource name to the module that declared it.
func (m *Module) flatten(seen map[string]string, out []entry) ([]entry, error) {
	for _, sub := range m.submodules {
		var err error
		out, err = sub.flatten(seen, out)
		if err != nil {
			return nil, err
		}
	}

	for _, e := range m.entries {
		if _, exists := seen[e.name]; exists {
			return nil, errDuplicateResource(e.name, m.name)
		}
		seen[e.name] = m.name
		out = append(out, e)
	}
	return out, nil
}
