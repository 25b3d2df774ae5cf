package attendance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/leave-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/sse"
	"github.com/cmlabs-hris/leave-analyzer/internal/service/file"
)

const healthCheckTimeout = 2 * time.Second

type AttendanceServiceImpl struct {
	repo  attendance.AttendanceRepository
	hub   *sse.Hub
	files file.FileService
	now   func() time.Time
}

// NewAttendanceService wires the attendance service. hub and files may be nil,
// which disables upload events and spreadsheet archiving respectively.
func NewAttendanceService(
	repo attendance.AttendanceRepository,
	hub *sse.Hub,
	files file.FileService,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		repo:  repo,
		hub:   hub,
		files: files,
		now:   time.Now,
	}
}

// Upload implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Upload(ctx context.Context, rows []attendance.RawRow) (attendance.UploadResult, error) {
	return s.upload(ctx, rows, "api", "")
}

func (s *AttendanceServiceImpl) upload(ctx context.Context, rows []attendance.RawRow, source, archiveKey string) (attendance.UploadResult, error) {
	normalized, rowErrors, err := NormalizeBatch(ctx, rows)
	if err != nil {
		return attendance.UploadResult{}, err
	}

	records := make([]attendance.Record, 0, len(normalized))
	months := make(map[string]struct{})
	for _, n := range normalized {
		records = append(records, n.Record)
		months[n.Record.MonthKey()] = struct{}{}
	}

	if len(records) > 0 {
		if err := s.repo.Upsert(ctx, records); err != nil {
			slog.Error("failed to store attendance batch", "records", len(records), "error", err)
			return attendance.UploadResult{}, fmt.Errorf("failed to store attendance batch: %w", err)
		}
	}

	result := attendance.UploadResult{
		SuccessCount: len(records),
		ErrorCount:   len(rowErrors),
		Errors:       rowErrors,
	}

	slog.Info("attendance batch processed",
		"source", source,
		"rows", len(rows),
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount,
	)
	for _, e := range rowErrors {
		slog.Debug("attendance row rejected", "record_index", e.RecordIndex, "reason", e.Reason)
	}

	if s.hub != nil && result.SuccessCount > 0 {
		s.hub.Publish(sse.Event{
			Topic: attendance.EventTopic,
			Event: attendance.EventUploaded,
			Data: attendance.UploadedEvent{
				Source:       source,
				SuccessCount: result.SuccessCount,
				ErrorCount:   result.ErrorCount,
				Months:       sortedKeys(months),
				ArchiveKey:   archiveKey,
			},
		})
	}

	return result, nil
}

// Import implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Import(ctx context.Context, req attendance.ImportRequest) (attendance.UploadResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.UploadResult{}, err
	}

	data, err := io.ReadAll(req.File)
	if err != nil {
		return attendance.UploadResult{}, fmt.Errorf("%w: %v", attendance.ErrMalformedBatch, err)
	}

	rows, err := readSpreadsheet(data, req.Filename)
	if err != nil {
		return attendance.UploadResult{}, err
	}

	var archiveKey string
	if s.files != nil {
		archiveKey, err = s.files.ArchiveSpreadsheet(ctx, bytes.NewReader(data), req.Filename, s.now())
		if err != nil {
			// The rows are still stored; only the copy of the source file is lost.
			slog.Warn("failed to archive attendance spreadsheet", "filename", req.Filename, "error", err)
			archiveKey = ""
		}
	}

	return s.upload(ctx, rows, req.Filename, archiveKey)
}

func readSpreadsheet(data []byte, filename string) ([]attendance.RawRow, error) {
	cells, err := spreadsheet.ReadRows(bytes.NewReader(data), filename)
	if err != nil {
		if errors.Is(err, spreadsheet.ErrUnsupportedFormat) {
			return nil, fmt.Errorf("%w: %v", attendance.ErrUnsupportedFile, err)
		}
		return nil, fmt.Errorf("%w: %v", attendance.ErrMalformedBatch, err)
	}

	rows := make([]attendance.RawRow, len(cells))
	for i, c := range cells {
		rows[i] = attendance.RawRow(c)
	}
	return rows, nil
}

// Preview implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Preview(ctx context.Context, rows []attendance.RawRow) (attendance.PreviewResponse, error) {
	normalized, rowErrors, err := NormalizeBatch(ctx, rows)
	if err != nil {
		return attendance.PreviewResponse{}, err
	}

	preview := attendance.PreviewResponse{
		Rows:   make([]attendance.PreviewRow, 0, len(normalized)),
		Errors: rowErrors,
	}
	for _, n := range normalized {
		preview.Rows = append(preview.Rows, attendance.PreviewRow{
			RecordIndex: n.Index,
			Record:      attendance.NewRecordResponse(n.Record, Classify(n.Record)),
		})
	}
	return preview, nil
}

// ListRecords implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListRecords(ctx context.Context, filter attendance.StatsFilter) ([]attendance.RecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := s.repo.List(ctx, filter.RecordFilter())
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	resp := make([]attendance.RecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, attendance.NewRecordResponse(r, Classify(r)))
	}
	return resp, nil
}

func (s *AttendanceServiceImpl) aggregate(ctx context.Context, filter attendance.StatsFilter) ([]attendance.MonthlyStats, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := s.repo.List(ctx, filter.RecordFilter())
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return SortedStats(Aggregate(records)), nil
}

// MonthlyStats implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MonthlyStats(ctx context.Context, filter attendance.StatsFilter) (attendance.StatsResponse, error) {
	stats, err := s.aggregate(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make(attendance.StatsResponse)
	for _, m := range stats {
		if resp[m.EmployeeID] == nil {
			resp[m.EmployeeID] = make(map[string]attendance.MonthlyStatsResponse)
		}
		resp[m.EmployeeID][m.MonthKey()] = attendance.NewMonthlyStatsResponse(m)
	}
	return resp, nil
}

var (
	summaryHeader = []string{
		"Employee ID", "Employee Name", "Month", "Expected Hours", "Actual Hours",
		"Working Days", "Leaves Used", "Leave Allowance", "Excess Leaves", "Productivity (%)",
	}
	dailyHeader = []string{
		"Employee ID", "Employee Name", "Date", "Day", "In", "Out",
		"Expected Hours", "Worked Hours", "Status",
	}
)

// ExportMonthlyStats implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ExportMonthlyStats(ctx context.Context, filter attendance.StatsFilter) ([]byte, error) {
	stats, err := s.aggregate(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := spreadsheet.Sheet{Name: "Summary", Header: summaryHeader}
	daily := spreadsheet.Sheet{Name: "Daily", Header: dailyHeader}
	for _, m := range stats {
		summary.Rows = append(summary.Rows, []any{
			m.EmployeeID,
			m.EmployeeName,
			m.MonthKey(),
			attendance.RoundHours(m.ExpectedHours),
			attendance.RoundHours(m.ActualHours),
			m.WorkingDays,
			m.LeavesUsed,
			m.LeaveAllowance,
			m.ExcessLeaves,
			m.Productivity.StringFixed(2),
		})
		for _, d := range m.Daily {
			day := attendance.NewDailyResponse(d)
			daily.Rows = append(daily.Rows, []any{
				m.EmployeeID,
				m.EmployeeName,
				day.Date,
				day.DayOfWeek,
				stringOrEmpty(day.InTime),
				stringOrEmpty(day.OutTime),
				day.ExpectedHours,
				day.WorkedHours,
				day.Status,
			})
		}
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteWorkbook(&buf, []spreadsheet.Sheet{summary, daily}); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// MonthlyReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MonthlyReport(ctx context.Context, req attendance.MonthlyReportRequest) (attendance.MonthlyReportResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.MonthlyReportResponse{}, err
	}

	records, err := s.repo.List(ctx, attendance.RecordFilter{Month: req.Month})
	if err != nil {
		return attendance.MonthlyReportResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	summary := Summarize(req.Month, SortedStats(Aggregate(records)))
	return attendance.NewMonthlyReportResponse(summary), nil
}

// ListEmployees implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListEmployees(ctx context.Context) ([]attendance.EmployeeResponse, error) {
	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	resp := make([]attendance.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		resp = append(resp, attendance.NewEmployeeResponse(e))
	}
	return resp, nil
}

// Health implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Health(ctx context.Context) attendance.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	resp := attendance.HealthResponse{
		Status:    "ok",
		Database:  "up",
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
	if s.hub != nil {
		resp.StreamSubscribers = s.hub.TotalSubscribers()
	}
	if err := s.repo.Ping(ctx); err != nil {
		slog.Warn("database health check failed", "error", err)
		resp.Status = "degraded"
		resp.Database = "down"
	}
	return resp
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
