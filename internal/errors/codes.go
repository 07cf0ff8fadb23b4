package errors

import "net/http"

// ErrorCode represents the type of error
type ErrorCode string

const (
	ErrUnauthenticated  ErrorCode = "UNAUTHENTICATED"
	ErrForbidden        ErrorCode = "FORBIDDEN"
	ErrNotFound         ErrorCode = "NOT_FOUND"
	ErrConflict         ErrorCode = "CONFLICT"
	ErrInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrRateLimited      ErrorCode = "RATE_LIMITED"
	ErrInternalError    ErrorCode = "INTERNAL_ERROR"
)

// StatusCodeMap maps ErrorCode to HTTP status code
var StatusCodeMap = map[ErrorCode]int{
	ErrUnauthenticated:  http.StatusUnauthorized,
	ErrForbidden:        http.StatusForbidden,
	ErrNotFound:         http.StatusNotFound,
	ErrConflict:         http.StatusConflict,
	ErrInvalidInput:     http.StatusBadRequest,
	ErrStoreUnavailable: http.StatusServiceUnavailable,
	ErrRateLimited:      http.StatusTooManyRequests,
	ErrInternalError:    http.StatusInternalServerError,
}

// StatusCode returns the HTTP status code for this error code
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
