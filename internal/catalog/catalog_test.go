package catalog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/stackwire"
	"github.com/danpasecinic/stackwire/envgen"
	"github.com/danpasecinic/stackwire/internal/catalog"
	"github.com/danpasecinic/stackwire/outputs"
	"github.com/danpasecinic/stackwire/secret"
	"github.com/danpasecinic/stackwire/stack"
	"github.com/danpasecinic/stackwire/stackwiretest"
)

const definition = `
stacks:
  - monitoring
resources:
  - name: orders
    kind: table
    provides: data-provider
    environment:
      STAGE: dev
    properties:
      billingMode: PAY_PER_REQUEST
  - name: checkout
    kind: function
    uses: [data-provider]
    secrets: [stripeKey]
outputs:
  custom:
    region: eu-west-1
`

func TestParse(t *testing.T) {
	t.Parallel()

	def, err := catalog.Parse([]byte(definition))
	require.NoError(t, err)

	require.Len(t, def.Resources, 2)
	assert.Equal(t, "data", def.Resources[0].GroupName())
	assert.Equal(t, "function", def.Resources[1].GroupName())
	assert.Equal(t, []string{"monitoring"}, def.Stacks)
	assert.Equal(t, "PAY_PER_REQUEST", def.Resources[0].Properties["billingMode"])
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			"unknown kind",
			"resources:\n  - name: a\n    kind: mainframe\n",
			catalog.ErrUnknownKind,
		},
		{
			"duplicate name",
			"resources:\n  - name: a\n    kind: queue\n  - name: a\n    kind: topic\n",
			catalog.ErrDuplicateName,
		},
		{
			"unknown token",
			"resources:\n  - name: a\n    kind: queue\n    uses: [missing]\n",
			catalog.ErrUnknownToken,
		},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				t.Parallel()
				_, err := catalog.Parse([]byte(tt.doc))
				assert.ErrorIs(t, err, tt.want)
			},
		)
	}

	_, err := catalog.Parse([]byte("resources: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stackwire.yaml")
	require.NoError(t, os.WriteFile(path, []byte(definition), 0o600))

	def, err := catalog.LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, def.Resources, 2)

	_, err = catalog.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestModuleResolvesConstructs(t *testing.T) {
	t.Parallel()

	def, err := catalog.Parse([]byte(definition))
	require.NoError(t, err)

	tb := stackwiretest.FromModules(t, []*stackwire.Module{def.Module("catalog")})
	orders := stackwiretest.RequireResource[*catalog.Construct](tb, "orders")
	checkout := stackwiretest.RequireResource[*catalog.Construct](tb, "checkout")

	assert.Equal(t, "data", orders.Unit.Name())
	assert.Equal(t, "AWS::DynamoDB::Table", orders.Node.Type)
	assert.True(t, strings.HasPrefix(orders.PhysicalName, "orders-"))
	assert.Len(t, orders.PhysicalName, len("orders-")+10)
	assert.Equal(t, "PAY_PER_REQUEST", orders.Node.Properties["billingMode"])

	require.Len(t, orders.Environment, 1)
	assert.Equal(t, "STAGE", orders.Environment[0].Name)
	param, ok := orders.Unit.Node("STAGEParameter")
	require.True(t, ok)
	assert.Equal(t, envgen.ParameterType, param.Type)

	assert.Equal(t, "function", checkout.Unit.Name())
	assert.Equal(t, []string{orders.Ref()}, checkout.Node.Properties["dependsOn"])

	require.Len(t, checkout.Secrets, 1)
	fetcher, ok := checkout.Unit.Node("SecretFetcher-stripeKey")
	require.True(t, ok)
	assert.Equal(t, secret.FetcherType, fetcher.Type)

	tb.AssertToken("data-provider")
}

func TestApply(t *testing.T) {
	t.Parallel()

	def, err := catalog.Parse([]byte(definition))
	require.NoError(t, err)

	tb := stackwiretest.FromModules(t, []*stackwire.Module{def.Module("catalog")})
	require.NoError(t, def.Apply(tb.Backend))

	var custom []string
	for _, u := range tb.Stacks() {
		if u.Kind() == stack.KindCustom {
			custom = append(custom, u.Name())
		}
	}
	assert.Equal(t, []string{"monitoring"}, custom)

	entry, ok := tb.Storage.Entry(outputs.CustomOutputKey)
	require.True(t, ok)
	assert.Contains(t, entry.Payload["customOutputs"], `"region":"eu-west-1"`)

	assert.True(t, stackwire.IsNamingConflict(def.Apply(tb.Backend)))
}

func TestCircularUses(t *testing.T) {
	t.Parallel()

	def, err := catalog.Parse(
		[]byte(`
resources:
  - name: a
    kind: queue
    provides: a-provider
    uses: [b-provider]
  - name: b
    kind: topic
    provides: b-provider
    uses: [a-provider]
`),
	)
	require.NoError(t, err)

	_, err = stackwire.NewFromModules(
		[]*stackwire.Module{def.Module("catalog")},
		stackwire.WithIdentifier(stackwiretest.Identifier),
	)
	assert.True(t, stackwire.IsFactoryFailed(err))
	assert.ErrorIs(t, err, catalog.ErrCircularUses)
}

func TestKinds(t *testing.T) {
	t.Parallel()

	assert.Contains(t, catalog.Kinds(), "table")
	nodeType, ok := catalog.NodeType("bucket")
	assert.True(t, ok)
	assert.Equal(t, "AWS::S3::Bucket", nodeType)
}
