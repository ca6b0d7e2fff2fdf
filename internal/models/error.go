package models

import (
	"fmt"
	"time"
)

// ErrorResponse is the body written for every failed request
type ErrorResponse struct {
	Timestamp        time.Time    `json:"timestamp"`
	Status           int          `json:"status"`
	Error            string       `json:"error"`
	Message          string       `json:"message"`
	Path             string       `json:"path"`
	ValidationErrors []FieldError `json:"validationErrors,omitempty"`
}

// NewErrorResponse creates an error body stamped with the current time
func NewErrorResponse(status int, reason, message, path string, fields ...FieldError) ErrorResponse {
	return ErrorResponse{
		Timestamp:        time.Now().UTC(),
		Status:           status,
		Error:            reason,
		Message:          message,
		Path:             path,
		ValidationErrors: fields,
	}
}

// FieldError describes one rejected request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when request input fails validation (400)
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("validation failed: %s %s", e.Fields[0].Field, e.Fields[0].Message)
	}
	return fmt.Sprintf("validation failed on %d fields", len(e.Fields))
}

// NewValidationError is a shorthand for a single-field validation failure
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// NotFoundError is returned when a referenced resource does not exist (404)
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id: %v", e.Resource, e.ID)
}

// DuplicateError is returned when a unique field is already taken (409)
type DuplicateError struct {
	Resource string
	Field    string
	Value    any
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists with %s: %v", e.Resource, e.Field, e.Value)
}

// BusinessError is returned when a request is well formed but breaks a business rule (422)
type BusinessError struct {
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// NewBusinessError formats a business rule violation
func NewBusinessError(format string, args ...any) *BusinessError {
	return &BusinessError{Message: fmt.Sprintf(format, args...)}
}

// UnauthenticatedError is returned when credentials are missing or wrong (401)
type UnauthenticatedError struct {
	Message string
}

func (e *UnauthenticatedError) Error() string {
	return e.Message
}

// ForbiddenError is returned when the caller may not act on a resource (403)
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}
