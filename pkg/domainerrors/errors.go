// Package domainerrors defines the typed error vocabulary shared by the
// service and transport layers. Handlers translate codes to HTTP statuses
// through ToHTTPStatus so the JSON envelope stays consistent.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies a category of user-facing failure.
type Code string

const (
	CodeInvalidPhoneNumber  Code = "invalid_phone_number"
	CodeValidation          Code = "validation_error"
	CodeNotRegistered       Code = "not_registered"
	CodeRateLimited         Code = "rate_limited"
	CodeUpstreamUnavailable Code = "upstream_unavailable"
	CodeInternal            Code = "internal"
)

// Error carries a code plus a human-readable message safe to show callers.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// New constructs a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// anything that is not a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the user-facing message, hiding internal detail for
// non-domain errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "unexpected failure"
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidPhoneNumber, CodeValidation:
		return http.StatusBadRequest
	case CodeNotRegistered:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUpstreamUnavailable, CodeInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
