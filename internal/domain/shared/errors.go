package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so sentinels work with errors.Is
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists     = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized      = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden         = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState      = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
)

// NewNotFoundError returns a NOT_FOUND error named after the entity, e.g. "Batch not found"
func NewNotFoundError(entity string) *DomainError {
	return NewDomainError("NOT_FOUND", fmt.Sprintf("%s not found", entity))
}

// NewAlreadyExistsError returns an ALREADY_EXISTS error with the given message
func NewAlreadyExistsError(message string) *DomainError {
	return NewDomainError("ALREADY_EXISTS", message)
}

// NewInvalidInputError returns an INVALID_INPUT error with the given message
func NewInvalidInputError(message string) *DomainError {
	return NewDomainError("INVALID_INPUT", message)
}

// NewInvalidStateError returns an INVALID_STATE error with the given message
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError("INVALID_STATE", message)
}

// IsNotFound reports whether err is a NOT_FOUND domain error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is an ALREADY_EXISTS domain error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
