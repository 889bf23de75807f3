package shared

import (
	"errors"
	"fmt"
)

// Error codes understood by every layer of the ledger.
const (
	CodeNotFound      = "NOT_FOUND"
	CodeValidation    = "VALIDATION_ERROR"
	CodeInvalidAmount = "INVALID_AMOUNT"
	CodeConflict      = "CONFLICT"
	CodeLedgerFailure = "LEDGER_FAILURE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError carrying the same code, so that
// errors.Is(err, shared.ErrNotFound) matches any not-found error.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
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
	ErrNotFound      = NewDomainError(CodeNotFound, "Resource not found")
	ErrValidation    = NewDomainError(CodeValidation, "Validation failed")
	ErrInvalidAmount = NewDomainError(CodeInvalidAmount, "Invalid amount")
	ErrConflict      = NewDomainError(CodeConflict, "Resource conflict")
	ErrLedgerFailure = NewDomainError(CodeLedgerFailure, "ledger operation failed")
)

// NotFound builds a not-found error for the named resource.
func NotFound(resource string, id any) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %v not found", resource, id))
}

// Validation builds a validation error with a formatted message.
func Validation(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// InvalidAmount builds an invalid-amount error with a formatted message.
func InvalidAmount(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidAmount, fmt.Sprintf(format, args...))
}

// Conflict builds a conflict error with a formatted message.
func Conflict(format string, args ...any) *DomainError {
	return NewDomainError(CodeConflict, fmt.Sprintf(format, args...))
}

// LedgerFailure wraps a lower-level failure (lock timeout, driver error,
// constraint violation) into the generic ledger failure. Domain errors pass
// through untouched.
func LedgerFailure(err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	return &DomainError{
		Code:    CodeLedgerFailure,
		Message: ErrLedgerFailure.Message,
		Cause:   err,
	}
}

// CodeOf returns the domain error code carried by err, or an empty string.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
