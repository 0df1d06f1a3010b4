package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Portable(t *testing.T) {
	out, _, err := execute(t, "validate", "testdata/documents/active.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ active_customers is valid and portable")
}

func TestValidate_NotPortable(t *testing.T) {
	out, _, err := execute(t, "validate", "testdata/documents/right_join.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "⚠ audit is valid but not portable")
	assert.Contains(t, out, "Right join on 'audit'")
	assert.Contains(t, out, "has no on-clause (cross join)")
}

func TestValidate_RequirePortable(t *testing.T) {
	out, _, err := execute(t, "validate", "--require-portable", "--format", "json", "testdata/documents/right_join.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)

	var result ValidationResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.False(t, result.Valid)
	assert.False(t, result.Portable)
	assert.Len(t, result.Warnings, 2)
}

func TestValidate_NoTableSkipsPortability(t *testing.T) {
	out, errOut, err := execute(t, "validate", "-v", "testdata/documents/no_table.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid and portable")
	assert.Contains(t, errOut, "skipping portability checks")
}

func TestValidate_BuildError(t *testing.T) {
	out, _, err := execute(t, "validate", "testdata/documents/join_in_group.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E101]")
}
