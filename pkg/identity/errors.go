package identity

import (
	"errors"
	"fmt"
)

// Error codes returned by the SDK. Every failure crossing the transport
// boundary carries exactly one of these; server codes outside this set are
// collapsed to CodeUnknown.
const (
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeTokenExpired            = "TOKEN_EXPIRED"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeNetworkError            = "NETWORK_ERROR"
	CodeValidationError         = "VALIDATION_ERROR"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeEmailAlreadyExists      = "EMAIL_ALREADY_EXISTS"
	CodeUnknown                 = "UNKNOWN_ERROR"
)

var knownCodes = map[string]bool{
	CodeInvalidCredentials:      true,
	CodeTokenExpired:            true,
	CodeInsufficientPermissions: true,
	CodeNetworkError:            true,
	CodeValidationError:         true,
	CodeUserNotFound:            true,
	CodeEmailAlreadyExists:      true,
	CodeUnknown:                 true,
}

// Error is the uniform failure shape for every SDK operation.
type Error struct {
	// Code is one of the Code* constants above.
	Code string `json:"code"`

	// Message is a human-readable description of the failure.
	Message string `json:"message"`

	// Details carries field-specific information, such as validation
	// errors keyed by field name.
	Details map[string]string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches two *Error values by code, so callers can use errors.Is with
// lightweight sentinels like &Error{Code: CodeTokenExpired}. A target with
// a non-empty Message must also match on message, which keeps the two
// access-control sentinels distinguishable despite sharing a code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Message != "" && t.Message != e.Message {
		return false
	}
	return e.Code == t.Code
}

// Predefined access-control outcomes used by CheckAccess and the TUI gate.
var (
	// ErrNotAuthenticated is returned when gated content is requested
	// with no signed-in user.
	ErrNotAuthenticated = &Error{
		Code:    CodeInsufficientPermissions,
		Message: "authentication required",
	}

	// ErrForbidden is returned when a signed-in user lacks the required
	// role or permissions.
	ErrForbidden = &Error{
		Code:    CodeInsufficientPermissions,
		Message: "insufficient role or permissions",
	}
)

// normalizeCode maps a server-provided error code onto the closed taxonomy,
// defaulting to CodeUnknown.
func normalizeCode(code string) string {
	if knownCodes[code] {
		return code
	}
	return CodeUnknown
}

// networkError wraps a transport-level failure (no response received).
func networkError(err error) *Error {
	return &Error{Code: CodeNetworkError, Message: err.Error()}
}

// unknownError covers failures where the request could not be constructed
// or the response could not be understood.
func unknownError(msg string) *Error {
	return &Error{Code: CodeUnknown, Message: msg}
}

// CodeOf extracts the error code from err, or CodeUnknown for foreign
// errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
