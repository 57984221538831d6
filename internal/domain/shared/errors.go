package shared

import (
	"errors"
	"fmt"
)

// Error codes shared across the domain. Interfaces map these to HTTP statuses.
const (
	ErrCodePermissionDenied       = "PERMISSION_DENIED"
	ErrCodeInvalidState           = "INVALID_STATE"
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeDuplicateControlNumber = "DUPLICATE_CONTROL_NUMBER"
	ErrCodeFileFormat             = "FILE_FORMAT_ERROR"
	ErrCodeConcurrencyConflict    = "CONCURRENCY_CONFLICT"
	ErrCodeUnauthorized           = "UNAUTHORIZED"
	ErrCodeInternal               = "INTERNAL_ERROR"

	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAccountLocked      = "ACCOUNT_LOCKED"
	ErrCodeAccountDeactivated = "ACCOUNT_DEACTIVATED"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeTokenMaxRefresh    = "TOKEN_MAX_REFRESH"
	ErrCodeDuplicateUsername  = "DUPLICATE_USERNAME"
)

// DomainError represents a business rule violation.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WithCause attaches a sentinel to the error chain so callers can match
// with errors.Is while the HTTP layer keeps mapping by Code.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.cause = cause
	return e
}

// NewPermissionDeniedError reports an actor whose role never allows the
// attempted operation, regardless of current state.
func NewPermissionDeniedError(message string) *DomainError {
	return NewDomainError(ErrCodePermissionDenied, message)
}

// NewInvalidStateError reports an operation the actor could perform in
// principle, but not from the aggregate's current status.
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(ErrCodeInvalidState, message)
}

// NewValidationError reports malformed or out-of-range input.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message).WithCause(ErrInvalidInput)
}

// NewNotFoundError reports a missing aggregate.
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(ErrCodeNotFound, message).WithCause(ErrNotFound)
}

// NewConcurrencyConflictError reports a lost optimistic-lock race.
func NewConcurrencyConflictError(message string) *DomainError {
	return NewDomainError(ErrCodeConcurrencyConflict, message).WithCause(ErrConcurrentModification)
}

// IsDomainError extracts a DomainError from an error chain.
func IsDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// Common sentinel errors.
var (
	ErrNotFound               = errors.New("entity not found")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrInvalidInput           = errors.New("invalid input")
)
