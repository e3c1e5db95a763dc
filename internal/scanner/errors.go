package scanner

import (
	"errors"
	"fmt"
)

// ErrorKind classifies scan failures.
type ErrorKind string

const (
	// KindInvalidInput indicates the requested URL was unusable.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindNavigationTimeout indicates the page did not load within the navigation timeout.
	KindNavigationTimeout ErrorKind = "navigation_timeout"
	// KindNavigationError indicates the page could not be loaded at all.
	KindNavigationError ErrorKind = "navigation_error"
	// KindEngineFailure indicates the browser or rule engine broke mid-scan.
	KindEngineFailure ErrorKind = "engine_failure"
	// KindInternal indicates an unexpected failure inside the scanner itself.
	KindInternal ErrorKind = "internal"
)

// ScanError is a structured scan failure carrying its classification.
type ScanError struct {
	Err     error
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// NewScanError creates a structured scan error wrapping err.
func NewScanError(kind ErrorKind, err error) *ScanError {
	return &ScanError{
		Kind:    kind,
		Message: err.Error(),
		Err:     err,
	}
}

// NewScanErrorf creates a structured scan error with a formatted message.
func NewScanErrorf(kind ErrorKind, format string, args ...any) *ScanError {
	return &ScanError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf extracts the classification from err, or KindInternal when err
// carries none.
func KindOf(err error) ErrorKind {
	var se *ScanError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// IsInvalidInput checks if the error is an invalid-input error.
func IsInvalidInput(err error) bool {
	return KindOf(err) == KindInvalidInput
}

// IsNavigationTimeout checks if the error is a navigation timeout.
func IsNavigationTimeout(err error) bool {
	return KindOf(err) == KindNavigationTimeout
}

// IsNavigationError checks if the error is a navigation failure.
func IsNavigationError(err error) bool {
	var se *ScanError
	if errors.As(err, &se) {
		return se.Kind == KindNavigationError
	}
	return false
}

// IsEngineFailure checks if the error is a browser or rule-engine failure.
func IsEngineFailure(err error) bool {
	var se *ScanError
	if errors.As(err, &se) {
		return se.Kind == KindEngineFailure
	}
	return false
}
