package response

import (
	"errors"
	"net/http"

	"reqflow/internal/workflow"
)

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// StatusFor maps a workflow error to its HTTP status code so handlers never
// branch on error strings. Unknown errors fall through to 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, workflow.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, workflow.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidState), errors.Is(err, workflow.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError builds an error envelope with the status StatusFor resolves.
func FromError(err error) (int, Response) {
	code := StatusFor(err)
	return code, Error(code, err.Error())
}
