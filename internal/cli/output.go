package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Test/validation failure (scenarios failed, query not portable, etc.)
	ExitCommandError = 2 // Command error (invalid paths, unparseable documents, etc.)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// TraceIDFunc generates correlation ids for CLI responses.
type TraceIDFunc func() string

// NewTraceID returns a time-ordered UUIDv7 string.
func NewTraceID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
	TraceID   string // Attached to every JSON response
	UseColor  bool
}

// newFormatter builds a formatter for a command invocation.
// Color is only used for text output to a terminal.
func newFormatter(opts *RootOptions, out, errOut io.Writer) *OutputFormatter {
	gen := opts.TraceIDs
	if gen == nil {
		gen = NewTraceID
	}
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   opts.Verbose,
		TraceID:   gen(),
	}
	if file, ok := out.(*os.File); ok && file == os.Stdout && opts.Format == "text" {
		f.UseColor = !opts.NoColor && !color.NoColor
	}
	return f
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string    `json:"status"`             // "ok" or "error"
	Data    any       `json:"data,omitempty"`     // success payload
	Error   *CLIError `json:"error,omitempty"`    // error details
	TraceID string    `json:"trace_id,omitempty"` // correlation id for this invocation
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.writeJSON(CLIResponse{Status: "ok", Data: data, TraceID: f.TraceID})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.writeJSON(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
			TraceID: f.TraceID,
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "%s [%s]: %s\n", f.Red("Error"), code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Response writes a fully assembled JSON response, stamping the trace id.
func (f *OutputFormatter) Response(resp CLIResponse) error {
	resp.TraceID = f.TraceID
	return f.writeJSON(resp)
}

// writeJSON encodes without HTML escaping so operators like ">" stay literal.
func (f *OutputFormatter) writeJSON(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.UseColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

// Green, Red, Yellow and Cyan colorize text when color is enabled.
func (f *OutputFormatter) Green(text string) string  { return f.colorize(text, color.FgGreen) }
func (f *OutputFormatter) Red(text string) string    { return f.colorize(text, color.FgRed) }
func (f *OutputFormatter) Yellow(text string) string { return f.colorize(text, color.FgYellow) }
func (f *OutputFormatter) Cyan(text string) string   { return f.colorize(text, color.FgCyan) }
