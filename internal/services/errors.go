package services

import (
	"errors"
	"fmt"
)

// ValidationError represents a rejected input value
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

// NotFoundError represents a missing user, store or subscription
type NotFoundError struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFoundError checks if an error is a NotFoundError
func IsNotFoundError(err error) (*NotFoundError, bool) {
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return notFoundErr, true
	}
	return nil, false
}

// ResultCode classifies a rejected business action
type ResultCode string

const (
	CodeInvalidInput ResultCode = "INVALID_INPUT"
	CodeInvalidState ResultCode = "INVALID_STATE"
	CodeNotFound     ResultCode = "NOT_FOUND"
	CodeForbidden    ResultCode = "FORBIDDEN"
)

// ActionResult is the outcome of a business action. Expected rule violations
// are reported here with Success=false; only infrastructure failures are
// returned as errors alongside it.
type ActionResult struct {
	Success bool        `json:"success"`
	Code    ResultCode  `json:"code,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func succeeded(message string, data interface{}) *ActionResult {
	return &ActionResult{Success: true, Message: message, Data: data}
}

func rejected(code ResultCode, message string) *ActionResult {
	return &ActionResult{Success: false, Code: code, Message: message}
}
