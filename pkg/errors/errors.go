// Package errors provides custom error types for the application.
// It defines domain-specific errors with error codes so callers can branch on
// the failure kind instead of parsing messages.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents application error codes
type ErrorCode string

// Error codes for different error categories
const (
	// General errors (1xxx)
	ErrCodeInternal   ErrorCode = "E1000"
	ErrCodeValidation ErrorCode = "E1001"
	ErrCodeNotFound   ErrorCode = "E1002"

	// Generator errors (3xxx)
	ErrCodeGeneratorUnavailable ErrorCode = "E3002"
	ErrCodeGeneratorTimeout     ErrorCode = "E3003"

	// Storage errors (5xxx)
	ErrCodeDBConnection ErrorCode = "E5001"
	ErrCodeDBQuery      ErrorCode = "E5002"
	ErrCodeDBMigration  ErrorCode = "E5003"
	ErrCodePersistence  ErrorCode = "E5004"

	// Configuration errors (6xxx)
	ErrCodeConfigNotFound   ErrorCode = "E6001"
	ErrCodeConfigInvalid    ErrorCode = "E6002"
	ErrCodeConfigParse      ErrorCode = "E6003"
	ErrCodeTemplateNotFound ErrorCode = "E6007"

	// Synthesis errors (7xxx)
	ErrCodePlanning       ErrorCode = "E7001"
	ErrCodeGeneration     ErrorCode = "E7002"
	ErrCodeIssueInjection ErrorCode = "E7003"

	// Structural validation errors (8xxx)
	ErrCodeTOCValidation        ErrorCode = "E8001"
	ErrCodeHTMLValidation       ErrorCode = "E8002"
	ErrCodeIssueCountValidation ErrorCode = "E8003"
	ErrCodeMissingSection       ErrorCode = "E8004"
)

// Exit codes for CLI failures
const (
	// ExitCodeFailure is the generic failure exit code
	ExitCodeFailure = 1
	// ExitCodeConfigValidation indicates configuration validation failure
	ExitCodeConfigValidation = 2
	// ExitCodeDocumentRejected indicates at least one document failed structural validation
	ExitCodeDocumentRejected = 3
)

// AppError represents an application-level error with code and context
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
	Details any       `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for the error
func (e *AppError) ExitCode() int {
	switch e.Code {
	case ErrCodeConfigNotFound, ErrCodeConfigInvalid, ErrCodeConfigParse, ErrCodeTemplateNotFound:
		return ExitCodeConfigValidation
	case ErrCodeTOCValidation, ErrCodeHTMLValidation, ErrCodeIssueCountValidation, ErrCodeMissingSection:
		return ExitCodeDocumentRejected
	default:
		return ExitCodeFailure
	}
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with AppError
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// Common error constructors for convenience

// ErrInternal creates an internal error
func ErrInternal(message string, err error) *AppError {
	return Wrap(ErrCodeInternal, message, err)
}

// ErrValidation creates a validation error
func ErrValidation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// ErrNotFound creates a not found error
func ErrNotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// ErrTOCValidation creates a TOC validation error
func ErrTOCValidation(format string, args ...any) *AppError {
	return Newf(ErrCodeTOCValidation, format, args...)
}

// ErrHTMLValidation creates an HTML validation error
func ErrHTMLValidation(format string, args ...any) *AppError {
	return Newf(ErrCodeHTMLValidation, format, args...)
}

// IsAppError checks if an error is, or wraps, an AppError
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError attempts to find an AppError in the error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in the chain, or "" if none
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether any AppError in the chain carries the given code.
// Nested AppErrors are inspected, so a wrapped injection failure inside a
// synthesis error still matches ErrCodeIssueInjection.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		if multi, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range multi.Unwrap() {
				if HasCode(e, code) {
					return true
				}
			}
			return false
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// ExitCodeOf returns the CLI exit code for err
func ExitCodeOf(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.ExitCode()
	}
	return ExitCodeFailure
}
