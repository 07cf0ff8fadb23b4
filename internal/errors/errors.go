package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Details string    `json:"details,omitempty"`
	Status  int       `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, message string) *APIError {
	return &APIError{Code: code, Message: message, Status: code.StatusCode()}
}

// Unauthenticated is returned when the bearer credential is missing, invalid or expired
func Unauthenticated(message string) *APIError {
	return newError(ErrUnauthenticated, message)
}

// Forbidden is returned when the caller is authenticated but lacks the privilege
func Forbidden(message string) *APIError {
	return newError(ErrForbidden, message)
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *APIError {
	return newError(ErrNotFound, fmt.Sprintf("%s not found", resource))
}

// Conflict creates a CONFLICT error
func Conflict(message string) *APIError {
	return newError(ErrConflict, message)
}

// AlreadyExists is a Conflict phrased for uniqueness violations
func AlreadyExists(resource string) *APIError {
	return newError(ErrConflict, fmt.Sprintf("%s already exists", resource))
}

// InvalidInput creates an INVALID_INPUT error for a single field
func InvalidInput(field, message string) *APIError {
	e := newError(ErrInvalidInput, message)
	e.Field = field
	return e
}

// BadRequest is an INVALID_INPUT error not tied to a field
func BadRequest(message string) *APIError {
	return newError(ErrInvalidInput, message)
}

// StoreUnavailable creates a STORE_UNAVAILABLE error
func StoreUnavailable() *APIError {
	return newError(ErrStoreUnavailable, "document store is temporarily unavailable")
}

// RateLimited creates a RATE_LIMITED error
func RateLimited(message string) *APIError {
	if message == "" {
		message = "rate limit exceeded"
	}
	return newError(ErrRateLimited, message)
}

// InternalError creates an INTERNAL_ERROR
func InternalError(message string) *APIError {
	return newError(ErrInternalError, message)
}

// WithDetails adds additional details to an error
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}

// FromError maps any error raised below the handlers onto the API taxonomy.
// resource names the entity for NOT_FOUND and CONFLICT messages.
func FromError(err error, resource string) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var verr *models.ValidationError
	if stderrors.As(err, &verr) {
		return InvalidInput(verr.Field, verr.Message)
	}

	switch {
	case stderrors.Is(err, store.ErrNotFound):
		return NotFound(resource)
	case stderrors.Is(err, store.ErrDuplicate):
		return AlreadyExists(resource)
	case stderrors.Is(err, store.ErrInvalid):
		return BadRequest(err.Error())
	case stderrors.Is(err, store.ErrUnavailable):
		return StoreUnavailable().WithDetails(err.Error())
	}

	return &APIError{
		Code:    ErrInternalError,
		Message: "internal server error",
		Details: err.Error(),
		Status:  http.StatusInternalServerError,
	}
}
