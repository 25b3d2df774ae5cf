package attendance

import "errors"

// Attendance domain errors
var (
	// Per-record normalization errors
	ErrMissingEmployeeName = errors.New("missing employee name")
	ErrInvalidDate         = errors.New("invalid date")

	// Batch errors
	ErrMalformedBatch     = errors.New("malformed attendance batch")
	ErrStorageUnavailable = errors.New("attendance storage unavailable")

	ErrUnsupportedFile = errors.New("unsupported spreadsheet file")
)
