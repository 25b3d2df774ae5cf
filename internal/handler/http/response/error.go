package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/cmlabs-hris/leave-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrMalformedBatch):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrUnsupportedFile):
		UnsupportedMediaType(w, err.Error())
	case errors.Is(err, attendance.ErrStorageUnavailable):
		ServiceUnavailable(w, "Attendance storage is unavailable, retry the batch later")

	case errors.Is(err, context.DeadlineExceeded):
		ServiceUnavailable(w, "Request timed out")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
