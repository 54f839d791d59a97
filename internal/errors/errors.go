package errors

import (
	"context"
	"errors"
	"net/http"
)

// StatusClientClosedRequest is answered when the caller gave up before the request finished.
const StatusClientClosedRequest = 499

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	// It deliberately does not say which one.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrDuplicateEmail is returned when a signup uses an email already in the store.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrValidation is wrapped by request validation failures.
	ErrValidation = errors.New("validation failed")
	// ErrNotAuthenticated is returned by operations that need an authenticated session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrBusy is returned when a login, signup or chat send is already in flight.
	ErrBusy = errors.New("request already in flight")
	// ErrEmptyMessage is returned when a chat message is blank after trimming.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrSessionChanged is returned when a logout overtook an in-flight login or signup.
	ErrSessionChanged = errors.New("session changed while request was in flight")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrDuplicateEmail):
		return NewHTTPError(http.StatusConflict, ErrDuplicateEmail.Error(), "DUPLICATE_EMAIL")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_FAILED")
	case errors.Is(err, ErrNotAuthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrNotAuthenticated.Error(), "NOT_AUTHENTICATED")
	case errors.Is(err, ErrBusy):
		return NewHTTPError(http.StatusConflict, ErrBusy.Error(), "REQUEST_IN_FLIGHT")
	case errors.Is(err, ErrEmptyMessage):
		return NewHTTPError(http.StatusBadRequest, ErrEmptyMessage.Error(), "EMPTY_MESSAGE")
	case errors.Is(err, ErrSessionChanged):
		return NewHTTPError(http.StatusConflict, ErrSessionChanged.Error(), "SESSION_CHANGED")
	case errors.Is(err, context.Canceled):
		return NewHTTPError(StatusClientClosedRequest, "request cancelled", "REQUEST_CANCELLED")
	case errors.Is(err, context.DeadlineExceeded):
		return NewHTTPError(http.StatusRequestTimeout, "request timed out", "REQUEST_TIMEOUT")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
