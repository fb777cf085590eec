// Package errors defines the typed error values used across the
// analysis engine. Parse failures are recoverable (the offending file
// is skipped); provider failures are hard errors propagated to the
// caller.
package errors

import (
	"fmt"
	"time"
)

// ErrorType classifies engine errors.
type ErrorType string

const (
	ErrorTypeParse       ErrorType = "parse"
	ErrorTypeUnsupported ErrorType = "unsupported_language"
	ErrorTypeProvider    ErrorType = "provider"
	ErrorTypeNotFound    ErrorType = "file_not_found"
	ErrorTypeConfig      ErrorType = "config"
	ErrorTypeInternal    ErrorType = "internal"
)

// AnalysisError represents a failure during analysis of one file.
type AnalysisError struct {
	Type        ErrorType
	FilePath    string
	Language    string
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// NewParseError creates a recoverable parse error for a file. The
// caller is expected to log it and skip the file's contribution.
func NewParseError(path, language string, err error) *AnalysisError {
	return &AnalysisError{
		Type:        ErrorTypeParse,
		FilePath:    path,
		Language:    language,
		Operation:   "parse",
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

// NewInternalError creates a non-recoverable engine error.
func NewInternalError(op string, err error) *AnalysisError {
	return &AnalysisError{
		Type:       ErrorTypeInternal,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile adds file context to the error.
func (e *AnalysisError) WithFile(path string) *AnalysisError {
	e.FilePath = path
	return e
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *AnalysisError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable reports whether the batch may continue past this error.
func (e *AnalysisError) IsRecoverable() bool {
	return e.Recoverable
}

// ProviderError represents a failure in an external collaborator
// (version-control diff provider, file-at-ref provider). These always
// abort the operation; the engine does not guess at missing data.
type ProviderError struct {
	Type       ErrorType
	Ref        string
	Path       string
	Command    string
	Underlying error
}

// NewProviderError creates a hard provider failure.
func NewProviderError(command string, err error) *ProviderError {
	return &ProviderError{
		Type:       ErrorTypeProvider,
		Command:    command,
		Underlying: err,
	}
}

// NewNotFoundError reports a path missing at a given ref.
func NewNotFoundError(ref, path string) *ProviderError {
	return &ProviderError{
		Type: ErrorTypeNotFound,
		Ref:  ref,
		Path: path,
	}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Type == ErrorTypeNotFound {
		return fmt.Sprintf("%s: %s not found at %s", e.Type, e.Path, e.Ref)
	}
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Command, e.Underlying)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// IsNotFound reports whether err is a file-at-ref miss.
func IsNotFound(err error) bool {
	pe, ok := err.(*ProviderError)
	return ok && pe.Type == ErrorTypeNotFound
}
