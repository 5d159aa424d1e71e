// Package apperr holds the typed errors raised by services and their
// mapping to HTTP status codes and machine-readable codes.
package apperr

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeUnauth     = "UNAUTHORIZED"
	CodeForbidden  = "FORBIDDEN"
	CodeInternal   = "INTERNAL_SERVER_ERROR"
)

// NotFoundError reports a missing or foreign-tenant resource
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NotFound builds a NotFoundError
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// FieldError is one rejected input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every rejected field of one request
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns the error only when at least one field was rejected
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Invalid builds a single-field ValidationError
func Invalid(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// ConflictError reports a uniqueness or state-machine conflict
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflict builds a ConflictError
func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// UnauthorizedError reports missing or bad credentials
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// Unauthorized builds an UnauthorizedError
func Unauthorized(message string) error {
	return &UnauthorizedError{Message: message}
}

// ForbiddenError reports an authenticated caller without access
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// Forbidden builds a ForbiddenError
func Forbidden(message string) error {
	return &ForbiddenError{Message: message}
}

// Status maps err to an HTTP status code and machine code. Wrapped errors are unwrapped.
func Status(err error) (int, string) {
	var (
		nf   *NotFoundError
		val  *ValidationError
		conf *ConflictError
		un   *UnauthorizedError
		fb   *ForbiddenError
	)
	switch {
	case errors.As(err, &val):
		return http.StatusBadRequest, CodeValidation
	case errors.As(err, &nf):
		return http.StatusNotFound, CodeNotFound
	case errors.As(err, &conf):
		return http.StatusConflict, CodeConflict
	case errors.As(err, &un):
		return http.StatusUnauthorized, CodeUnauth
	case errors.As(err, &fb):
		return http.StatusForbidden, CodeForbidden
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// Fields returns the field errors carried by err, if any
func Fields(err error) []FieldError {
	var val *ValidationError
	if errors.As(err, &val) {
		return val.Fields
	}
	return nil
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var val *ValidationError
	return errors.As(err, &val)
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var conf *ConflictError
	return errors.As(err, &conf)
}

// PublicMessage returns the message safe to show to clients
func PublicMessage(err error) string {
	status, _ := Status(err)
	if status == http.StatusInternalServerError {
		return "Internal server error"
	}
	return errors.Cause(err).Error()
}
