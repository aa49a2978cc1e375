// Package errors categorises the failures suitec reports to its users.
package errors

import (
	"errors"
	"fmt"
)

// Error types for different categories of failures
const (
	// Input/File errors
	ErrInputRead = "INPUT_READ_ERROR"
	ErrFileParse = "FILE_PARSE_ERROR"

	// Configuration errors
	ErrConfig = "CONFIG_ERROR"

	// Generation errors
	ErrCodeGeneration = "CODE_GENERATION_ERROR"
	ErrOutputWrite    = "OUTPUT_WRITE_ERROR"
	ErrStaleOutput    = "STALE_OUTPUT"
)

// Exit codes used by the CLI; 1 is reserved for usage errors
const (
	ExitSuccess         = 0
	ExitUsage           = 1
	ExitInputError      = 2
	ExitParseError      = 3
	ExitGenerationError = 4
	ExitConfigError     = 5
	ExitOutputError     = 6
	ExitStaleOutput     = 7
)

// SuitecError represents a structured error with type and context
type SuitecError struct {
	Type    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *SuitecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows error unwrapping
func (e *SuitecError) Unwrap() error {
	return e.Cause
}

// New creates a new SuitecError
func New(errorType, message string) *SuitecError {
	return &SuitecError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap creates a new SuitecError wrapping an existing error
func Wrap(errorType, message string, cause error) *SuitecError {
	return &SuitecError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *SuitecError) WithContext(key string, value interface{}) *SuitecError {
	e.Context[key] = value
	return e
}

// GetContext returns context value by key
func (e *SuitecError) GetContext(key string) (interface{}, bool) {
	value, exists := e.Context[key]
	return value, exists
}

// Helper functions for common error scenarios

// NewInputError creates an input-related error
func NewInputError(path string, cause error) *SuitecError {
	return Wrap(ErrInputRead, fmt.Sprintf("cannot read %s", path), cause).
		WithContext("path", path)
}

// NewParseError creates a parsing error
func NewParseError(path string, cause error) *SuitecError {
	return Wrap(ErrFileParse, fmt.Sprintf("cannot parse %s", path), cause).
		WithContext("path", path)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *SuitecError {
	return Wrap(ErrConfig, message, cause)
}

// NewGenerationError creates a code generation error
func NewGenerationError(path string, cause error) *SuitecError {
	return Wrap(ErrCodeGeneration, fmt.Sprintf("cannot generate code for %s", path), cause).
		WithContext("path", path)
}

// NewOutputError creates an output write error
func NewOutputError(path string, cause error) *SuitecError {
	return Wrap(ErrOutputWrite, fmt.Sprintf("cannot write %s", path), cause).
		WithContext("path", path)
}

// NewStaleOutputError reports generated files that differ from their suites
func NewStaleOutputError(paths []string) *SuitecError {
	return New(ErrStaleOutput, fmt.Sprintf("%d generated file(s) out of date; run suitec gen", len(paths))).
		WithContext("paths", paths)
}

// IsErrorType checks if any error in err's chain is a SuitecError of errorType
func IsErrorType(err error, errorType string) bool {
	var suitecErr *SuitecError
	if errors.As(err, &suitecErr) {
		return suitecErr.Type == errorType
	}
	return false
}

// ExitCode maps an error to the CLI exit code for its category
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var suitecErr *SuitecError
	if !errors.As(err, &suitecErr) {
		return ExitUsage
	}

	switch suitecErr.Type {
	case ErrInputRead:
		return ExitInputError
	case ErrFileParse:
		return ExitParseError
	case ErrCodeGeneration:
		return ExitGenerationError
	case ErrConfig:
		return ExitConfigError
	case ErrOutputWrite:
		return ExitOutputError
	case ErrStaleOutput:
		return ExitStaleOutput
	default:
		return ExitUsage
	}
}
