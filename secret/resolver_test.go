package secret_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/stackwire/secret"
	"github.com/danpasecinic/stackwire/stack"
)

var branchID = stack.Identifier{
	Type:      stack.DeploymentBranch,
	Namespace: "app123",
	Name:      "main",
	Region:    "us-east-1",
}

func TestResolvePath(t *testing.T) {
	t.Parallel()

	r := secret.NewResolver(stack.NewApp("root"), branchID)

	paths, err := r.ResolvePath("API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "/stackwire/app123/main/API_KEY", paths.BranchSecretPath)
	assert.Equal(t, "/stackwire/shared/app123/API_KEY", paths.SharedSecretPath)

	_, err = r.ResolvePath("bad name")
	assert.ErrorIs(t, err, secret.ErrInvalidName)
}

func TestResolveCreatesOneFetcherPerSecret(t *testing.T) {
	t.Parallel()

	unit := stack.NewApp("root", stack.WithRegion("us-east-1"), stack.WithAccount("123456789012"))

	first, err := secret.NewResolver(unit, branchID).Resolve("API_KEY")
	require.NoError(t, err)
	second, err := secret.NewResolver(unit, branchID).Resolve("API_KEY")
	require.NoError(t, err)
	_, err = secret.NewResolver(unit, branchID).Resolve("DB_PASSWORD")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, unit.Nodes(), 2)

	n, ok := unit.Node("SecretFetcher-API_KEY")
	require.True(t, ok)
	assert.Equal(t, secret.FetcherType, n.Type)
	assert.Equal(t, "arn:aws:ssm:us-east-1:123456789012:parameter/stackwire/app123/main/API_KEY", n.Properties["branchSecretArn"])
}

func TestParameterARN(t *testing.T) {
	t.Parallel()

	got := secret.ParameterARN("aws-cn", "cn-north-1", "111122223333", "/stackwire/shared/app/KEY")
	assert.Equal(t, "arn:aws-cn:ssm:cn-north-1:111122223333:parameter/stackwire/shared/app/KEY", got)
}
