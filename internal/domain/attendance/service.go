package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance ingestion and statistics
type AttendanceService interface {
	// Upload normalizes and stores a batch of raw rows. Rows that fail
	// normalization are reported in the result without aborting the batch.
	Upload(ctx context.Context, rows []RawRow) (UploadResult, error)

	// Import reads a spreadsheet file and uploads its rows.
	Import(ctx context.Context, req ImportRequest) (UploadResult, error)

	// Preview normalizes rows without storing them.
	Preview(ctx context.Context, rows []RawRow) (PreviewResponse, error)

	// ListRecords returns stored records matching the filter
	ListRecords(ctx context.Context, filter StatsFilter) ([]RecordResponse, error)

	// MonthlyStats computes per employee, per month statistics.
	MonthlyStats(ctx context.Context, filter StatsFilter) (StatsResponse, error)

	// ExportMonthlyStats renders MonthlyStats as an xlsx workbook.
	ExportMonthlyStats(ctx context.Context, filter StatsFilter) ([]byte, error)

	// MonthlyReport totals every employee for one month
	MonthlyReport(ctx context.Context, req MonthlyReportRequest) (MonthlyReportResponse, error)

	ListEmployees(ctx context.Context) ([]EmployeeResponse, error)

	Health(ctx context.Context) HealthResponse
}

// Stream topic and event name published after a batch is stored.
const (
	EventTopic    = "attendance"
	EventUploaded = "attendance.uploaded"
)
