package stack_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/stackwire/stack"
)

func newRoot(t *testing.T) *stack.Unit {
	t.Helper()

	id := stack.Identifier{
		Type:      stack.DeploymentSandbox,
		Namespace: "shop",
		Name:      "alice",
		Region:    "eu-west-1",
	}
	root, err := stack.NewMainStackCreator(stack.NewDefaultApp(id), id, nil).GetOrCreateMainStack()
	require.NoError(t, err)
	return root
}

func TestStackForRootGroup(t *testing.T) {
	t.Parallel()

	root := newRoot(t)
	r := stack.NewNestedResolver(root, stack.ResolverConfig{})

	u, err := r.StackFor(stack.RootGroup)
	require.NoError(t, err)
	assert.Same(t, root, u)
	assert.Empty(t, r.Stacks())
}

func TestStackForMemoizesByName(t *testing.T) {
	t.Parallel()

	r := stack.NewNestedResolver(newRoot(t), stack.ResolverConfig{})

	first, err := r.StackFor("auth")
	require.NoError(t, err)
	second, err := r.StackFor("auth")
	require.NoError(t, err)
	other, err := r.StackFor("data")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
	assert.Equal(t, stack.KindNested, first.Kind())
	assert.Len(t, r.Stacks(), 2)
}

func TestStackForInheritsRegion(t *testing.T) {
	t.Parallel()

	r := stack.NewNestedResolver(newRoot(t), stack.ResolverConfig{})

	u, err := r.StackFor("storage")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", u.Region())

	id, err := stack.IdentifierFor(u)
	require.NoError(t, err)
	assert.Equal(t, "shop", id.Namespace)
}

func TestCreateCustomStack(t *testing.T) {
	t.Parallel()

	t.Run("distinct names", func(t *testing.T) {
		t.Parallel()

		r := stack.NewNestedResolver(newRoot(t), stack.ResolverConfig{})

		x, err := r.CreateCustomStack("x")
		require.NoError(t, err)
		y, err := r.CreateCustomStack("y")
		require.NoError(t, err)

		assert.NotSame(t, x, y)
		assert.Equal(t, stack.KindCustom, x.Kind())
	})

	t.Run("same name twice", func(t *testing.T) {
		t.Parallel()

		r := stack.NewNestedResolver(newRoot(t), stack.ResolverConfig{})

		_, err := r.CreateCustomStack("x")
		require.NoError(t, err)
		_, err = r.CreateCustomStack("x")
		assert.ErrorIs(t, err, stack.ErrNamingConflict)
	})

	t.Run("collides with group stack", func(t *testing.T) {
		t.Parallel()

		r := stack.NewNestedResolver(newRoot(t), stack.ResolverConfig{})

		_, err := r.StackFor("data")
		require.NoError(t, err)
		_, err = r.CreateCustomStack("data")
		assert.ErrorIs(t, err, stack.ErrNamingConflict)
	})

	t.Run("root name is reserved", func(t *testing.T) {
		t.Parallel()

		r := stack.NewNestedResolver(newRoot(t), stack.ResolverConfig{})

		_, err := r.CreateCustomStack(stack.RootGroup)
		assert.ErrorIs(t, err, stack.ErrNamingConflict)
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()

		r := stack.NewNestedResolver(newRoot(t), stack.ResolverConfig{})

		_, err := r.CreateCustomStack("")
		assert.ErrorIs(t, err, stack.ErrEmptyName)
	})
}

func TestResolverAppliesAttribution(t *testing.T) {
	t.Parallel()

	r := stack.NewNestedResolver(newRoot(t), stack.ResolverConfig{LibraryVersion: "1.2.3"})

	nested, err := r.StackFor("auth")
	require.NoError(t, err)
	custom, err := r.CreateCustomStack("extra")
	require.NoError(t, err)

	a, ok := stack.ParseAttribution(nested)
	require.True(t, ok)
	assert.Equal(t, "nested", a.StackType)
	assert.Equal(t, "1.2.3", a.CreatedWith)

	a, ok = stack.ParseAttribution(custom)
	require.True(t, ok)
	assert.Equal(t, "custom", a.StackType)
}

type recordingAttribution struct {
	types []string
}

func (r *recordingAttribution) StoreAttributionMetadata(_ *stack.Unit, stackType string, _ string) error {
	r.types = append(r.types, stackType)
	return nil
}

func TestResolverUsesConfiguredCollaborators(t *testing.T) {
	t.Parallel()

	attribution := &recordingAttribution{}
	failing := errors.New("quota exceeded")
	calls := 0

	r := stack.NewNestedResolver(newRoot(t), stack.ResolverConfig{
		Attribution: attribution,
		UnitFactory: func(parent *stack.Unit, name string, kind stack.Kind) (*stack.Unit, error) {
			calls++
			if name == "broken" {
				return nil, failing
			}
			return stack.NestedUnit(parent, name, kind)
		},
	})

	_, err := r.StackFor("ok")
	require.NoError(t, err)
	_, err = r.StackFor("ok")
	require.NoError(t, err)
	_, err = r.StackFor("broken")
	require.ErrorIs(t, err, failing)

	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"nested"}, attribution.types)
}
