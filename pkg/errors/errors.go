// Package errors provides categorized application errors with stable codes,
// optional suggestions and context, and process exit-code mapping for the
// CLI layer.
package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors.
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategoryNormalize     ErrorCategory = "normalize"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryReconcile     ErrorCategory = "reconcile"
	CategoryNetwork       ErrorCategory = "network"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories.
type ErrorCode string

const (
	// File errors
	CodeFileNotFound  ErrorCode = "file_not_found"
	CodeFileRead      ErrorCode = "file_read"
	CodeFileWrite     ErrorCode = "file_write"
	CodeUnknownFormat ErrorCode = "unknown_format"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeEmptyFile     ErrorCode = "empty_file"
	CodeMissingHeader ErrorCode = "missing_header"

	// Normalize errors
	CodeInvalidVocabulary ErrorCode = "invalid_vocabulary"
	CodeInvalidTable      ErrorCode = "invalid_table"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Reconcile errors
	CodeMatchingFailed ErrorCode = "matching_failed"
	CodeRunPanic       ErrorCode = "run_panic"

	// Network errors
	CodeRequestFailed  ErrorCode = "request_failed"
	CodeAuthFailed     ErrorCode = "auth_failed"
	CodeSessionExpired ErrorCode = "session_expired"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ReconcilerError is the base error type for all application errors.
type ReconcilerError struct {
	Category   ErrorCategory `json:"category"`
	Code       ErrorCode     `json:"code"`
	Message    string        `json:"message"`
	Suggestion string        `json:"suggestion,omitempty"`
	Context    Context       `json:"context,omitempty"`
	Cause      error         `json:"-"`
	StackTrace pkgerrors.StackTrace `json:"-"`
}

// Context provides additional information about the error.
type Context map[string]interface{}

// Error implements the error interface.
func (e *ReconcilerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *ReconcilerError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error.
func (e *ReconcilerError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryNormalize:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryReconcile, CategoryInternal:
		return 5
	case CategoryNetwork:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error.
func (e *ReconcilerError) WithContext(key string, value interface{}) *ReconcilerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error.
func (e *ReconcilerError) WithSuggestion(suggestion string) *ReconcilerError {
	e.Suggestion = suggestion
	return e
}

// newError creates a ReconcilerError, capturing the stack of the cause when
// it carries one.
func newError(category ErrorCategory, code ErrorCode, message string, cause error) *ReconcilerError {
	e := &ReconcilerError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
	type stackTracer interface {
		StackTrace() pkgerrors.StackTrace
	}
	if st, ok := cause.(stackTracer); ok {
		e.StackTrace = st.StackTrace()
	} else if st, ok := pkgerrors.WithStack(e).(stackTracer); ok {
		e.StackTrace = st.StackTrace()
	}
	return e
}

// FileError creates a file-related error.
func FileError(code ErrorCode, message string, cause error) *ReconcilerError {
	return newError(CategoryFile, code, message, cause)
}

// ParseError creates a parse-related error.
func ParseError(code ErrorCode, message string, cause error) *ReconcilerError {
	return newError(CategoryParse, code, message, cause)
}

// NormalizeError creates a normalization-related error.
func NormalizeError(code ErrorCode, message string, cause error) *ReconcilerError {
	return newError(CategoryNormalize, code, message, cause)
}

// ConfigError creates a configuration-related error.
func ConfigError(code ErrorCode, message string, cause error) *ReconcilerError {
	return newError(CategoryConfiguration, code, message, cause)
}

// ReconcileError creates a reconciliation-related error.
func ReconcileError(code ErrorCode, message string, cause error) *ReconcilerError {
	return newError(CategoryReconcile, code, message, cause)
}

// NetworkError creates a network-related error.
func NetworkError(code ErrorCode, message string, cause error) *ReconcilerError {
	return newError(CategoryNetwork, code, message, cause)
}

// InternalError creates an internal error.
func InternalError(code ErrorCode, message string, cause error) *ReconcilerError {
	return newError(CategoryInternal, code, message, cause)
}

// AsReconcilerError extracts a ReconcilerError from err or anything it wraps.
func AsReconcilerError(err error) (*ReconcilerError, bool) {
	for err != nil {
		if re, ok := err.(*ReconcilerError); ok {
			return re, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// IsCategory checks whether err (or anything it wraps) is a ReconcilerError
// of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	re, ok := AsReconcilerError(err)
	return ok && re.Category == category
}

// GetExitCode extracts an exit code from any error.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	if re, ok := AsReconcilerError(err); ok {
		return re.GetExitCode()
	}
	return 1
}
