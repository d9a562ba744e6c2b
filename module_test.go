package stackwire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/stackwire"
)

type orderFactory struct {
	order *[]string
	name  string
}

func (f *orderFactory) Instance(stackwire.FactoryContext) (any, error) {
	*f.order = append(*f.order, f.name)
	return f.name, nil
}

func TestModuleNamesSubmodulesFirst(t *testing.T) {
	t.Parallel()

	var order []string
	data := stackwire.NewModule("data").
		Add("orders", &orderFactory{order: &order, name: "orders"})
	app := stackwire.NewModule("app").
		Add("api", &orderFactory{order: &order, name: "api"}).
		Include(data)

	assert.Equal(t, "app", app.Name())
	assert.Equal(t, []string{"orders", "api"}, app.Names())
}

func TestNewFromModulesDeclarationOrder(t *testing.T) {
	t.Parallel()

	var order []string
	storage := stackwire.NewModule("storage").
		Add("zeta", &orderFactory{order: &order, name: "zeta"})
	app := stackwire.NewModule("app").
		Include(storage).
		Add("beta", &orderFactory{order: &order, name: "beta"}).
		Add("alpha", &orderFactory{order: &order, name: "alpha"})
	jobs := stackwire.NewModule("jobs").
		Add("gamma", &orderFactory{order: &order, name: "gamma"})

	b, err := stackwire.NewFromModules([]*stackwire.Module{app, jobs}, stackwire.WithIdentifier(sandboxID))
	require.NoError(t, err)

	want := []string{"zeta", "beta", "alpha", "gamma"}
	assert.Equal(t, want, order)
	assert.Equal(t, want, b.Names())
}

func TestNewSortsFactoryNames(t *testing.T) {
	t.Parallel()

	var order []string
	_, err := stackwire.New(
		map[string]stackwire.Factory{
			"c": &orderFactory{order: &order, name: "c"},
			"a": &orderFactory{order: &order, name: "a"},
			"b": &orderFactory{order: &order, name: "b"},
		},
		stackwire.WithIdentifier(sandboxID),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestNewFromModulesDuplicateResource(t *testing.T) {
	t.Parallel()

	var order []string
	a := stackwire.NewModule("a").Add("shared", &orderFactory{order: &order, name: "shared"})
	b := stackwire.NewModule("b").Add("shared", &orderFactory{order: &order, name: "shared"})

	_, err := stackwire.NewFromModules([]*stackwire.Module{a, b}, stackwire.WithIdentifier(sandboxID))
	assert.True(t, stackwire.IsDuplicateResource(err))
	assert.Empty(t, order)

	dup := stackwire.NewModule("dup").
		Add("x", &orderFactory{order: &order, name: "x"}).
		Add("x", &orderFactory{order: &order, name: "x"})
	assert.Nil(t, dup.Names())
}
