package attendance

import (
	"context"
)

// AttendanceRepository persists canonical attendance records.
type AttendanceRepository interface {
	// Upsert stores the records, replacing any existing record with the same
	// (employee_id, work_date) key. The batch is written atomically.
	Upsert(ctx context.Context, records []Record) error

	// List returns records ordered by employee then date.
	List(ctx context.Context, filter RecordFilter) ([]Record, error)

	// ListEmployees returns every employee with the months they have records for.
	ListEmployees(ctx context.Context) ([]EmployeeSummary, error)

	Ping(ctx context.Context) error
}

// RecordFilter narrows a record query. Empty fields match everything.
type RecordFilter struct {
	EmployeeID string
	Month      string // YYYY-MM
}
