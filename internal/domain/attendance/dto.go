package attendance

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// UPLOAD DTOs
// ========================================

// RecordError reports why one row of a batch was rejected.
// RecordIndex is 1-based among the non-empty data rows; blank spreadsheet
// rows are not counted.
type RecordError struct {
	RecordIndex int    `json:"record_index"`
	Reason      string `json:"reason"`
}

type UploadResult struct {
	SuccessCount int           `json:"success_count"`
	ErrorCount   int           `json:"error_count"`
	Errors       []RecordError `json:"errors"`
}

// Partial reports whether some, but not necessarily all, rows failed.
func (r UploadResult) Partial() bool {
	return r.ErrorCount > 0
}

// UploadedEvent is the payload of the attendance.uploaded stream event.
type UploadedEvent struct {
	Source       string   `json:"source"`
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	Months       []string `json:"months"`
	ArchiveKey   string   `json:"archive_key,omitempty"`
}

// MaxImportSize is the default upper bound for an imported spreadsheet.
const MaxImportSize = 10 << 20

type ImportRequest struct {
	File     io.Reader `json:"-"`
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	MaxSize  int64     `json:"-"`
}

var allowedImportExts = []string{".xlsx", ".xlsm", ".xls", ".csv"}

func (r *ImportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.File == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "attendance spreadsheet is required",
		})
	}

	ext := strings.ToLower(filepath.Ext(r.Filename))
	if !validator.IsInSlice(ext, allowedImportExts) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "invalid file type: only xlsx, xlsm, xls, csv allowed",
		})
	}

	maxSize := r.MaxSize
	if maxSize <= 0 {
		maxSize = MaxImportSize
	}
	if r.Size > maxSize {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "attendance spreadsheet is too large",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PreviewRow struct {
	RecordIndex int            `json:"record_index"`
	Record      RecordResponse `json:"record"`
}

type PreviewResponse struct {
	Rows   []PreviewRow  `json:"rows"`
	Errors []RecordError `json:"errors"`
}

// ========================================
// QUERY DTOs
// ========================================

type StatsFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Month      *string `json:"month,omitempty"` // YYYY-MM
}

func (f *StatsFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Month != nil && !validator.IsValidMonth(*f.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be in YYYY-MM format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RecordFilter converts the request filter into a repository filter.
func (f StatsFilter) RecordFilter() RecordFilter {
	var rf RecordFilter
	if f.EmployeeID != nil {
		rf.EmployeeID = strings.TrimSpace(*f.EmployeeID)
	}
	if f.Month != nil {
		rf.Month = *f.Month
	}
	return rf
}

type MonthlyReportRequest struct {
	Month string `json:"month"`
}

func (r *MonthlyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month is required (format: YYYY-MM)",
		})
	} else if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be in YYYY-MM format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

type RecordResponse struct {
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name"`
	WorkDate      string  `json:"work_date"`
	InTime        *string `json:"in_time"`
	OutTime       *string `json:"out_time"`
	ExpectedHours float64 `json:"expected_hours"`
	WorkedHours   float64 `json:"worked_hours"`
	IsLeave       bool    `json:"is_leave"`
	Status        string  `json:"status"`
}

type DailyResponse struct {
	Date          string  `json:"date"`
	DayOfWeek     string  `json:"day_of_week"`
	InTime        *string `json:"in_time"`
	OutTime       *string `json:"out_time"`
	ExpectedHours float64 `json:"expected_hours"`
	WorkedHours   float64 `json:"worked_hours"`
	IsLeave       bool    `json:"is_leave"`
	IsOff         bool    `json:"is_off"`
	Status        string  `json:"status"`
}

type MonthlyStatsResponse struct {
	EmployeeID     string          `json:"employee_id"`
	EmployeeName   string          `json:"employee_name"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	ExpectedHours  float64         `json:"expected_hours"`
	ActualHours    float64         `json:"actual_hours"`
	WorkingDays    int             `json:"working_days"`
	LeavesUsed     int             `json:"leaves_used"`
	LeaveAllowance int             `json:"leave_allowance"`
	ExcessLeaves   int             `json:"excess_leaves"`
	Productivity   string          `json:"productivity"`
	Daily          []DailyResponse `json:"daily"`
}

// StatsResponse is keyed by employee id, then by YYYY-MM month.
type StatsResponse map[string]map[string]MonthlyStatsResponse

type MonthlyReportResponse struct {
	Month        string `json:"month"`
	Expected     string `json:"expected"`
	Actual       string `json:"actual"`
	Leaves       int    `json:"leaves"`
	Employees    int    `json:"employees"`
	Productivity string `json:"productivity"`
}

type EmployeeResponse struct {
	EmployeeID   string   `json:"employee_id"`
	EmployeeName string   `json:"employee_name"`
	Months       []string `json:"months"`
}

type HealthResponse struct {
	Status            string `json:"status"`
	Database          string `json:"database"`
	StreamSubscribers int    `json:"stream_subscribers"`
	Timestamp         string `json:"timestamp"`
}

// ========================================
// MAPPERS
// ========================================

func timePtrToString(t *TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

// RoundHours rounds an hour amount to two decimals.
func RoundHours(h float64) float64 {
	return decimal.NewFromFloat(h).Round(2).InexactFloat64()
}

// FormatHours renders an hour amount with exactly two decimals.
func FormatHours(h float64) string {
	return decimal.NewFromFloat(h).StringFixed(2)
}

func NewRecordResponse(r Record, day DayBreakdown) RecordResponse {
	return RecordResponse{
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		WorkDate:      r.WorkDate.Format(DateLayout),
		InTime:        timePtrToString(r.InTime),
		OutTime:       timePtrToString(r.OutTime),
		ExpectedHours: day.ExpectedHours,
		WorkedHours:   RoundHours(day.WorkedHours),
		IsLeave:       day.IsLeave,
		Status:        day.Status(),
	}
}

func NewDailyResponse(d DayBreakdown) DailyResponse {
	return DailyResponse{
		Date:          d.Date.Format(DateLayout),
		DayOfWeek:     d.Date.Weekday().String()[:3],
		InTime:        timePtrToString(d.InTime),
		OutTime:       timePtrToString(d.OutTime),
		ExpectedHours: d.ExpectedHours,
		WorkedHours:   RoundHours(d.WorkedHours),
		IsLeave:       d.IsLeave,
		IsOff:         d.IsOff,
		Status:        d.Status(),
	}
}

func NewMonthlyStatsResponse(m MonthlyStats) MonthlyStatsResponse {
	daily := make([]DailyResponse, 0, len(m.Daily))
	for _, d := range m.Daily {
		daily = append(daily, NewDailyResponse(d))
	}

	return MonthlyStatsResponse{
		EmployeeID:     m.EmployeeID,
		EmployeeName:   m.EmployeeName,
		Year:           m.Year,
		Month:          int(m.Month),
		ExpectedHours:  RoundHours(m.ExpectedHours),
		ActualHours:    RoundHours(m.ActualHours),
		WorkingDays:    m.WorkingDays,
		LeavesUsed:     m.LeavesUsed,
		LeaveAllowance: m.LeaveAllowance,
		ExcessLeaves:   m.ExcessLeaves,
		Productivity:   m.Productivity.StringFixed(2),
		Daily:          daily,
	}
}

func NewMonthlyReportResponse(s MonthSummary) MonthlyReportResponse {
	return MonthlyReportResponse{
		Month:        s.Month,
		Expected:     FormatHours(s.ExpectedHours),
		Actual:       FormatHours(s.ActualHours),
		Leaves:       s.Leaves,
		Employees:    s.Employees,
		Productivity: s.Productivity.StringFixed(2),
	}
}

func NewEmployeeResponse(e EmployeeSummary) EmployeeResponse {
	months := e.Months
	if months == nil {
		months = []string{}
	}
	return EmployeeResponse{
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		Months:       months,
	}
}
