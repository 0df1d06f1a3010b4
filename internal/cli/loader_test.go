package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/filterkit/internal/filter"
	"github.com/roach88/filterkit/internal/queryir"
)

func TestMapFieldToErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeParseFailed, MapFieldToErrorCode("yaml"))
	assert.Equal(t, ErrCodeParseFailed, MapFieldToErrorCode("cue"))
	assert.Equal(t, ErrCodeInvalidDoc, MapFieldToErrorCode("steps[3].join.table"))
	assert.Equal(t, ErrCodeGeneric, MapFieldToErrorCode(""))
}

func TestConvertDocumentError_Sentinels(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{&filter.UnmatchedShapeError{}, ErrCodeUnmatchedShape},
		{fmt.Errorf("wrapped: %w", filter.ErrInvalidValue), ErrCodeInvalidValue},
		{&queryir.LowerError{Message: "empty table name"}, ErrCodeLowerFailed},
		{fmt.Errorf("something else"), ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, convertDocumentError(tt.err, "ctx").Code)
		})
	}
}

func TestLoadDocument_Directory(t *testing.T) {
	_, err := LoadDocument(t.TempDir())
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeReadFailed, loadErr.Code)
}

func TestLoadDocument_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps: [unclosed"), 0o644))

	_, err := LoadDocument(path)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeParseFailed, loadErr.Code)
}

func TestLoadQuery(t *testing.T) {
	q, err := LoadQuery("testdata/query.json")
	require.NoError(t, err)
	assert.Len(t, q.Modifiers, 1)

	_, err = LoadQuery("testdata/missing.json")
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"modifiers":[{"method":"select"}]}`), 0o644))
	_, err = LoadQuery(path)
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeParseFailed, loadErr.Code)
}

func TestLoadError_Format(t *testing.T) {
	assert.Equal(t, "E005: document not found: x", (&LoadError{Code: ErrCodeNotFound, Message: "document not found: x"}).Error())
}
