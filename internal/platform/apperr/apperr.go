// Copyright (c) 2026 RuneBingo. All rights reserved.

/*
Package apperr defines the centralized error handling framework for RuneBingo.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing a machine-readable Code and a translatable message Key.
  - Localization: The Key is rendered per request locale by the respond package.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"net/http"
)

// # Error Codes

const (
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeBadRequest         = "BAD_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// AppError is the canonical error type for the RuneBingo API.
//
// It carries an HTTP status code, a machine-readable code, a translatable
// message key, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Key is the i18n message key used to render Message for the client locale.
	Key string `json:"key"`
	// Message is a human-readable description safe to return to the client.
	// It holds the Key until rendered.
	Message string `json:"error"`
	// Params are template values substituted into the translated message.
	Params map[string]string `json:"-"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Key is the i18n message key describing the failure.
	Key string `json:"key"`
	// Params are template values substituted into the translated message.
	Params map[string]string `json:"-"`
	// Message is the human-readable description of the failure.
	// It holds the Key until rendered.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an [*AppError] with the same Code and Key.
// A target with an empty Key matches any error of the same Code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Key == "" {
		return e.Code == t.Code
	}
	return e.Code == t.Code && e.Key == t.Key
}

// With returns a copy of the error carrying the given template parameter.
func (e *AppError) With(name, value string) *AppError {
	clone := *e
	clone.Params = make(map[string]string, len(e.Params)+1)
	for k, v := range e.Params {
		clone.Params[k] = v
	}
	clone.Params[name] = value
	return &clone
}

func newError(code, key string, status int) *AppError {
	return &AppError{
		Code:       code,
		Key:        key,
		Message:    key,
		HTTPStatus: status,
	}
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] with the given message key.
//
// Example:
//
//	apperr.NotFound("bingo.not_found")
func NotFound(key string) *AppError {
	return newError(CodeNotFound, key, http.StatusNotFound)
}

// BadRequest creates a 400 [AppError] for business-rule violations.
func BadRequest(key string) *AppError {
	return newError(CodeBadRequest, key, http.StatusBadRequest)
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(key string) *AppError {
	return newError(CodeUnauthorized, key, http.StatusUnauthorized)
}

// Forbidden creates a 403 [AppError].
func Forbidden(key string) *AppError {
	return newError(CodeForbidden, key, http.StatusForbidden)
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(key string) *AppError {
	return newError(CodeConflict, key, http.StatusConflict)
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(key string, details ...FieldError) *AppError {
	err := newError(CodeValidation, key, http.StatusBadRequest)
	err.Details = details
	return err
}

// RateLimited creates a 429 [AppError].
func RateLimited() *AppError {
	return newError(CodeRateLimited, "error.rate_limited", http.StatusTooManyRequests)
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	err := newError(CodeInternal, "error.internal", http.StatusInternalServerError)
	err.Cause = cause
	return err
}

// ServiceUnavailable creates a 503 [AppError] for maintenance mode.
func ServiceUnavailable(key string) *AppError {
	return newError(CodeServiceUnavailable, key, http.StatusServiceUnavailable)
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
