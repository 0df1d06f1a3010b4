package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/filterkit/internal/document"
	"github.com/roach88/filterkit/internal/filter"
	"github.com/roach88/filterkit/internal/ir"
	"github.com/roach88/filterkit/internal/queryir"
	"github.com/roach88/filterkit/internal/querysql"
)

// LoadError represents an error that occurred while loading or building a
// filter document.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // Source position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeUnsupported  = "E002" // Unsupported file extension
	ErrCodeReadFailed   = "E003" // File could not be read
	ErrCodeParseFailed  = "E004" // YAML/CUE/JSON syntax error
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeInvalidDoc   = "E006" // Document structure error
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeMissingTable = "E008" // No table to compile against

	// Builder errors
	ErrCodeInconsistentGroup = "E101" // Join inside a where group
	ErrCodeUnmatchedShape    = "E102" // Strict document step matched no shape
	ErrCodeInvalidValue      = "E103" // Value not representable in the IR

	// Lowering and compilation errors
	ErrCodeLowerFailed   = "E201" // IR could not be lowered to a predicate tree
	ErrCodeCompileFailed = "E202" // Predicate tree could not be compiled to SQL
)

// MapFieldToErrorCode maps a document error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "yaml", "cue":
		return ErrCodeParseFailed
	case "":
		return ErrCodeGeneric
	default:
		return ErrCodeInvalidDoc
	}
}

// mapBuildErrorCode maps a builder error to its error code.
func mapBuildErrorCode(err error) string {
	switch {
	case errors.Is(err, filter.ErrInconsistentGroup):
		return ErrCodeInconsistentGroup
	case errors.Is(err, filter.ErrUnmatchedShape):
		return ErrCodeUnmatchedShape
	case errors.Is(err, filter.ErrInvalidValue):
		return ErrCodeInvalidValue
	case errors.Is(err, queryir.ErrLower):
		return ErrCodeLowerFailed
	case errors.Is(err, querysql.ErrCompile):
		return ErrCodeCompileFailed
	default:
		return ""
	}
}

// LoadDocument reads and parses a filter document.
// All failures are *LoadError.
func LoadDocument(path string) (*document.Document, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("document not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("error accessing document: %v", err)}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("is a directory: %s", path)}
	}
	if !document.IsDocumentFile(path) {
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported document type: %s (want .yaml, .yml, .json or .cue)", path)}
	}

	doc, err := document.LoadFile(path)
	if err != nil {
		return nil, convertDocumentError(err, "loading "+path)
	}
	return doc, nil
}

// BuildDocument loads a document and replays it into IR.
func BuildDocument(path string) (*document.Document, ir.JsonQuery, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, ir.JsonQuery{}, err
	}
	q, err := doc.Build()
	if err != nil {
		return doc, ir.JsonQuery{}, convertDocumentError(err, "building "+path)
	}
	return doc, q, nil
}

// LoadQuery reads serialized IR.
func LoadQuery(path string) (ir.JsonQuery, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ir.JsonQuery{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("query not found: %s", path)}
	}
	if err != nil {
		return ir.JsonQuery{}, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading query: %v", err)}
	}
	q, err := ir.ParseQuery(data)
	if err != nil {
		return ir.JsonQuery{}, &LoadError{Code: ErrCodeParseFailed, Message: err.Error()}
	}
	return q, nil
}

// convertDocumentError converts document, builder and compiler errors to a
// LoadError with the most specific code available.
func convertDocumentError(err error, context string) *LoadError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}

	var docErr *document.CompileError
	if errors.As(err, &docErr) {
		code := mapBuildErrorCode(docErr.Err)
		if code == "" {
			code = MapFieldToErrorCode(docErr.Field)
		}
		return &LoadError{
			Code:    code,
			Message: fmt.Sprintf("%s: %s", docErr.Field, docErr.Message),
			Pos:     docErr.Pos,
		}
	}

	if code := mapBuildErrorCode(err); code != "" {
		return &LoadError{Code: code, Message: err.Error()}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// outputLoadError reports err through the formatter and returns the
// matching exit error.
func outputLoadError(formatter *OutputFormatter, err error) error {
	loadErr := convertDocumentError(err, "")
	var details any
	if loadErr.Pos.IsValid() {
		details = map[string]any{
			"file":   loadErr.Pos.Filename(),
			"line":   loadErr.Pos.Line(),
			"column": loadErr.Pos.Column(),
		}
	}
	_ = formatter.Error(loadErr.Code, loadErr.Message, details)
	return WrapExitError(ExitCommandError, loadErr.Code, loadErr)
}
