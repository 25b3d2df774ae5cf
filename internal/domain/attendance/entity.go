package attendance

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Work-hour policy. Fixed for every employee; public holidays are not modelled.
const (
	WeekdayHours  = 8.5
	SaturdayHours = 4.0
	SundayHours   = 0.0

	// LeaveAllowancePerMonth is the number of leave days an employee may take
	// in a calendar month before the excess is flagged.
	LeaveAllowancePerMonth = 2
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// RawRow is one uploaded spreadsheet or API row before normalization.
// Values are float64 (or another numeric kind), string, time.Time or nil.
type RawRow map[string]any

// Record is the canonical attendance entry for one employee on one day.
// (EmployeeID, WorkDate) identifies it; storing it again replaces the old one.
type Record struct {
	EmployeeID   string
	EmployeeName string
	WorkDate     time.Time
	InTime       *TimeOfDay
	OutTime      *TimeOfDay
}

// Key returns the identity of the record.
func (r Record) Key() RecordKey {
	return RecordKey{EmployeeID: r.EmployeeID, WorkDate: r.WorkDate.Format(DateLayout)}
}

// MonthKey returns the YYYY-MM month the record belongs to.
func (r Record) MonthKey() string {
	return r.WorkDate.Format(MonthLayout)
}

// HasTimes reports whether both clock times were recorded.
func (r Record) HasTimes() bool {
	return r.InTime != nil && r.OutTime != nil
}

// Row renders the record back into a raw row with canonical keys.
func (r Record) Row() RawRow {
	row := RawRow{
		"employee_id":   r.EmployeeID,
		"employee_name": r.EmployeeName,
		"work_date":     r.WorkDate.Format(DateLayout),
	}
	if r.InTime != nil {
		row["in_time"] = r.InTime.String()
	}
	if r.OutTime != nil {
		row["out_time"] = r.OutTime.String()
	}
	return row
}

type RecordKey struct {
	EmployeeID string
	WorkDate   string
}

// TimeOfDay is a wall-clock time in seconds since midnight. 86400 is allowed
// and means the end of the day (24:00:00).
type TimeOfDay int

const EndOfDay TimeOfDay = 24 * 60 * 60

func NewTimeOfDay(hour, minute, second int) (TimeOfDay, error) {
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("time of day out of range: %02d:%02d:%02d", hour, minute, second)
	}
	if hour == 24 && (minute != 0 || second != 0) {
		return 0, fmt.Errorf("time of day out of range: %02d:%02d:%02d", hour, minute, second)
	}
	return TimeOfDay(hour*3600 + minute*60 + second), nil
}

// ParseTimeOfDay accepts H:MM or H:MM:SS.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		if p == "" || len(p) > 2 {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
		nums[i] = n
	}

	return NewTimeOfDay(nums[0], nums[1], nums[2])
}

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }
func (t TimeOfDay) Second() int { return int(t) % 60 }

// String formats the time as zero-padded HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// Duration returns the offset from midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t) * time.Second
}

// DayBreakdown is the classification of a single attendance day.
type DayBreakdown struct {
	Date          time.Time
	InTime        *TimeOfDay
	OutTime       *TimeOfDay
	ExpectedHours float64
	WorkedHours   float64
	IsLeave       bool
	IsOff         bool
}

// Status is the label shown on dashboards.
func (d DayBreakdown) Status() string {
	switch {
	case d.IsOff || d.ExpectedHours == 0:
		return StatusOff
	case d.IsLeave:
		return StatusLeave
	default:
		return StatusPresent
	}
}

const (
	StatusPresent = "Present"
	StatusLeave   = "Leave"
	StatusOff     = "Off"
)

// StatsKey groups monthly statistics by employee and YYYY-MM month.
type StatsKey struct {
	EmployeeID string
	Month      string
}

// MonthlyStats summarises one employee's attendance for one calendar month.
type MonthlyStats struct {
	EmployeeID     string
	EmployeeName   string
	Year           int
	Month          time.Month
	ExpectedHours  float64
	ActualHours    float64
	WorkingDays    int
	LeavesUsed     int
	LeaveAllowance int
	ExcessLeaves   int
	Productivity   decimal.Decimal
	Daily          []DayBreakdown
}

// MonthKey returns the YYYY-MM key of the stats.
func (m MonthlyStats) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MonthSummary totals all employees for one month.
type MonthSummary struct {
	Month         string
	ExpectedHours float64
	ActualHours   float64
	Leaves        int
	Employees     int
	Productivity  decimal.Decimal
}

// EmployeeSummary lists the months an employee has records for.
type EmployeeSummary struct {
	EmployeeID   string
	EmployeeName string
	Months       []string
}
