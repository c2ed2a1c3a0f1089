// Package domain defines the core domain models for authshell.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
// Codes follow the format AS-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "AS-AUTH-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// UserMessage returns the text shown to a person for err.
//
// Details win over Message because they carry what the server said.
// Non-domain errors fall back to err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *DomainError
	if errors.As(err, &de) {
		if de.Details != "" {
			return de.Details
		}
		return de.Message
	}
	return err.Error()
}

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrServerRejected indicates a well-formed non-success response.
	// Details carry the server-supplied message.
	ErrServerRejected = NewDomainError("AS-AUTH-4010", "Login failed")

	// ErrTransport indicates a network or connection failure.
	ErrTransport = NewDomainError("AS-AUTH-5030", "Unable to reach authentication server")

	// ErrMalformedResponse indicates an unexpected response body shape.
	ErrMalformedResponse = NewDomainError("AS-AUTH-5020", "Unexpected response from authentication server")

	// ErrInvalidLogin indicates the submitted login form is incomplete.
	ErrInvalidLogin = NewDomainError("AS-AUTH-4000", "Email and password are required")
)

// ============================================================================
// Store Errors (STOR)
// ============================================================================

var (
	// ErrStoreCorrupt indicates persisted session data could not be decoded.
	// It is logged and treated as an absent record, never surfaced.
	ErrStoreCorrupt = NewDomainError("AS-STOR-5000", "persisted session is corrupt")

	// ErrStoreUnavailable indicates the session store could not be opened or read.
	ErrStoreUnavailable = NewDomainError("AS-STOR-5030", "session store unavailable")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("AS-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("AS-ARG-1002", "missing required argument")
)
