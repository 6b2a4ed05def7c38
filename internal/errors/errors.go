package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeParse means a compiled template was not valid JSON. Local and
	// recoverable: the pipeline skips the file and continues.
	ErrorTypeParse ErrorType = "Parse"

	// ErrorTypeSchema means a compiled template parsed but is structurally
	// invalid (no top-level resources array). Local and recoverable.
	ErrorTypeSchema ErrorType = "Schema"

	// ErrorTypePrivacy means the validator found residual sensitive data in a
	// payload about to be transmitted. Fatal for that transmission attempt,
	// never retried with the same data.
	ErrorTypePrivacy ErrorType = "PrivacyContractViolation"

	ErrorTypeCompiler      ErrorType = "Compiler"
	ErrorTypeNetwork       ErrorType = "Network"
	ErrorTypeConfiguration ErrorType = "Configuration"
)

// PipelineError is a categorized error with optional remediation hints,
// shown to the user when a pipeline stage fails.
type PipelineError struct {
	Type      ErrorType
	Message   string
	Cause     error
	Solutions []string
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Type))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	if len(e.Solutions) > 0 {
		sb.WriteString("\nSolutions:\n")
		for _, s := range e.Solutions {
			sb.WriteString("  - ")
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// New creates a new PipelineError
func New(errType ErrorType, message string) *PipelineError {
	return &PipelineError{Type: errType, Message: message}
}

// Wrap creates a new PipelineError around a cause
func Wrap(errType ErrorType, message string, cause error) *PipelineError {
	return &PipelineError{Type: errType, Message: message, Cause: cause}
}

// WithSolutions adds remediation hints
func (e *PipelineError) WithSolutions(solutions ...string) *PipelineError {
	e.Solutions = append(e.Solutions, solutions...)
	return e
}

// NewParseError reports a compiled template that is not valid JSON.
func NewParseError(file string, cause error) *PipelineError {
	return Wrap(ErrorTypeParse, fmt.Sprintf("compiled template %s is not valid JSON", file), cause)
}

// NewSchemaError reports a compiled template without a resources array.
func NewSchemaError(detail string) *PipelineError {
	return New(ErrorTypeSchema, detail)
}

// NewPrivacyViolation reports residual sensitive data found right before
// transmission. count is the number of violations, not their content: the
// violating values themselves must never end up in a log line or error string.
func NewPrivacyViolation(count int) *PipelineError {
	return New(ErrorTypePrivacy, fmt.Sprintf("payload failed privacy validation with %d violation(s); transmission aborted", count))
}

// IsType reports whether err is a PipelineError of the given type.
func IsType(err error, errType ErrorType) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Type == errType
	}
	return false
}

// GetExitCode returns the appropriate process exit code for an error
func GetExitCode(err error) int {
	var pe *PipelineError
	if !errors.As(err, &pe) {
		return 1
	}
	switch pe.Type {
	case ErrorTypeConfiguration:
		return 78 // EX_CONFIG
	case ErrorTypeParse, ErrorTypeSchema:
		return 65 // EX_DATAERR
	case ErrorTypeNetwork:
		return 69 // EX_UNAVAILABLE
	case ErrorTypePrivacy:
		return 70 // EX_SOFTWARE
	default:
		return 1
	}
}
