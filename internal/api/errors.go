// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sensor-spy/backend/internal/archive"
	"github.com/sensor-spy/backend/internal/capture"
	"github.com/sensor-spy/backend/internal/storage"
)

// ShowErrorDetails controls whether unexpected errors expose their text.
var ShowErrorDetails = true

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewConflictError creates a 409 Conflict error
func NewConflictError(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
	}
}

// fromStorageError maps a storage failure on name to an API error.
func fromStorageError(name string, err error) *APIError {
	var ioErr *storage.IOError
	switch {
	case errors.Is(err, storage.ErrNotWritable), errors.Is(err, storage.ErrNotReadable):
		return NewServiceUnavailableError(err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return NewNotFoundError("file", storage.FileName(name, storage.KindCSV))
	case errors.Is(err, storage.ErrEmpty):
		apiErr := NewNotFoundError("file", storage.FileName(name, storage.KindCSV))
		apiErr.Details = err.Error()
		return apiErr
	case errors.As(err, &ioErr):
		return NewInternalError("storage I/O failed", err)
	default:
		return NewInternalError("storage failed", err)
	}
}

// fromCaptureError maps a capture manager failure to an API error.
func fromCaptureError(id string, err error) *APIError {
	switch {
	case errors.Is(err, capture.ErrSessionNotFound):
		return NewNotFoundError("capture session", id)
	case errors.Is(err, capture.ErrSessionClosed), errors.Is(err, capture.ErrNothingToPersist):
		return NewConflictError(err.Error())
	case errors.Is(err, capture.ErrTooManySessions):
		return NewServiceUnavailableError(err.Error())
	case errors.Is(err, capture.ErrInvalidName), errors.Is(err, capture.ErrInvalidPointName):
		return NewBadRequestError(err.Error(), nil)
	default:
		return fromStorageError(id, err)
	}
}

// fromArchiveError maps an archive query failure to an API error.
func fromArchiveError(file string, err error) *APIError {
	if errors.Is(err, archive.ErrUnknownFile) {
		return NewNotFoundError("archived samples", file)
	}
	return NewInternalError("archive query failed", err)
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "An unexpected error occurred",
		}
		if ShowErrorDetails {
			apiErr.Details = err.Error()
		}
	}

	c.JSON(apiErr.Status, apiErr)
}
