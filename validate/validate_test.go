package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danpasecinic/stackwire/validate"
)

func TestDefaultResourceNameValidator(t *testing.T) {
	t.Parallel()

	var v validate.DefaultResourceNameValidator

	for _, name := range []string{"auth", "myTable", "bucket_2"} {
		assert.NoError(t, v.Validate(name), name)
	}
	for _, name := range []string{"", "2fast", "has-dash", "with space", string(make([]byte, 200))} {
		assert.ErrorIs(t, v.Validate(name), validate.ErrInvalidResourceName, name)
	}
}

func TestImportPathVerifier(t *testing.T) {
	t.Parallel()

	callers := validate.CallerFiles(0)

	on := validate.NewToggleableImportPathVerifier(true)
	assert.NoError(t, on.Verify(callers, "validate/validate_test.go", "defined outside backend"))
	assert.NoError(t, on.Verify(callers, "*_test.go", "defined outside backend"))

	err := on.Verify(callers, "backend/resource.go", "defined outside backend")
	assert.ErrorIs(t, err, validate.ErrUnexpectedImportPath)
	assert.Contains(t, err.Error(), "defined outside backend")

	off := validate.NewToggleableImportPathVerifier(false)
	assert.NoError(t, off.Verify(callers, "backend/resource.go", "defined outside backend"))
}

func TestNewImportPathVerifierReadsEnv(t *testing.T) {
	t.Setenv(validate.VerifyImportsEnv, "false")
	assert.False(t, validate.NewImportPathVerifier().Enabled())

	t.Setenv(validate.VerifyImportsEnv, "not-a-bool")
	assert.True(t, validate.NewImportPathVerifier().Enabled())
}
