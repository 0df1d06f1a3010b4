package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/filterkit/internal/document"
)

func TestLoadScenario_Inline(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/precedence.yaml")
	require.NoError(t, err)

	assert.Equal(t, "precedence", s.Name)
	assert.Equal(t, "customers", s.Doc.Table)
	require.Len(t, s.Doc.Steps, 2)
	assert.Equal(t, document.StepOrWhere, s.Doc.Steps[1].Kind)

	// Step positions point into the scenario file.
	pos := s.Doc.Steps[0].Pos
	assert.Equal(t, "testdata/scenarios/precedence.yaml", pos.Filename())
	assert.Equal(t, 8, pos.Line())
}

func TestLoadScenario_DocumentFile(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/grouped_join.yaml")
	require.NoError(t, err)

	assert.Equal(t, "postgres", s.Dialect)
	assert.Equal(t, "grouped_join", s.Doc.Name)
	assert.Len(t, s.Doc.Steps, 3)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does_not_exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: d\ndocument: {steps: []}\nexpects: {sql: x}\n",
			want: "field expects not found",
		},
		{
			name: "missing name",
			yaml: "description: d\ndocument: {steps: []}\nexpect: {sql: x}\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\ndocument: {steps: []}\nexpect: {sql: x}\n",
			want: "description is required",
		},
		{
			name: "no document",
			yaml: "name: x\ndescription: d\nexpect: {sql: x}\n",
			want: "document or document_file is required",
		},
		{
			name: "both documents",
			yaml: "name: x\ndescription: d\ndocument: {steps: []}\ndocument_file: a.cue\nexpect: {sql: x}\n",
			want: "mutually exclusive",
		},
		{
			name: "no expectations",
			yaml: "name: x\ndescription: d\ndocument: {steps: []}\nexpect: {}\n",
			want: "expect must state at least one",
		},
		{
			name: "error with sql",
			yaml: "name: x\ndescription: d\ndocument: {steps: []}\nexpect: {sql: x, error: y}\n",
			want: "cannot be combined",
		},
		{
			name: "bad dialect",
			yaml: "name: x\ndescription: d\ndialect: oracle\ndocument: {steps: []}\nexpect: {sql: x}\n",
			want: "unknown dialect",
		},
		{
			name: "bad step",
			yaml: "name: x\ndescription: d\ndocument: {steps: [{select: [a]}]}\nexpect: {sql: x}\n",
			want: "scenario x: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml), "inline.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarios_PropagatesErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestLoadScenarios_MissingDir(t *testing.T) {
	_, err := LoadScenarios(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
