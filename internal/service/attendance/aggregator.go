package attendance

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/leave-analyzer/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ExpectedHours returns the hours owed on the given date.
func ExpectedHours(date time.Time) float64 {
	switch date.Weekday() {
	case time.Sunday:
		return attendance.SundayHours
	case time.Saturday:
		return attendance.SaturdayHours
	default:
		return attendance.WeekdayHours
	}
}

// WorkedHours is out minus in on the same nominal day. An out time earlier
// than the in time counts as zero.
func WorkedHours(in, out *attendance.TimeOfDay) float64 {
	if in == nil || out == nil {
		return 0
	}
	diff := out.Duration() - in.Duration()
	if diff < 0 {
		return 0
	}
	return diff.Hours()
}

// Classify derives the day breakdown for a single record.
func Classify(r attendance.Record) attendance.DayBreakdown {
	expected := ExpectedHours(r.WorkDate)
	return attendance.DayBreakdown{
		Date:          r.WorkDate,
		InTime:        r.InTime,
		OutTime:       r.OutTime,
		ExpectedHours: expected,
		WorkedHours:   WorkedHours(r.InTime, r.OutTime),
		IsLeave:       expected > 0 && !r.HasTimes(),
		IsOff:         expected == 0,
	}
}

// Productivity is actual over expected as a percentage rounded to two places,
// or zero when nothing was expected.
func Productivity(actual, expected float64) decimal.Decimal {
	if expected <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(actual).
		Div(decimal.NewFromFloat(expected)).
		Mul(hundred).
		Round(2)
}

// Dedupe keeps the last record for every (employee, date) key, the same
// outcome as upserting the records in order.
func Dedupe(records []attendance.Record) []attendance.Record {
	last := make(map[attendance.RecordKey]int, len(records))
	for i, r := range records {
		last[r.Key()] = i
	}

	out := make([]attendance.Record, 0, len(last))
	for i, r := range records {
		if last[r.Key()] == i {
			out = append(out, r)
		}
	}
	return out
}

// Aggregate groups records by employee and calendar month and computes the
// monthly statistics. Input order does not matter; daily entries are sorted
// by date.
func Aggregate(records []attendance.Record) map[attendance.StatsKey]attendance.MonthlyStats {
	deduped := Dedupe(records)
	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].EmployeeID != deduped[j].EmployeeID {
			return deduped[i].EmployeeID < deduped[j].EmployeeID
		}
		return deduped[i].WorkDate.Before(deduped[j].WorkDate)
	})

	result := make(map[attendance.StatsKey]attendance.MonthlyStats)
	for _, r := range deduped {
		key := attendance.StatsKey{EmployeeID: r.EmployeeID, Month: r.MonthKey()}
		stats, ok := result[key]
		if !ok {
			stats = attendance.MonthlyStats{
				EmployeeID:     r.EmployeeID,
				Year:           r.WorkDate.Year(),
				Month:          r.WorkDate.Month(),
				LeaveAllowance: attendance.LeaveAllowancePerMonth,
			}
		}
		stats.EmployeeName = r.EmployeeName

		day := Classify(r)
		if day.ExpectedHours > 0 {
			stats.ExpectedHours += day.ExpectedHours
			stats.WorkingDays++
		}
		if day.IsLeave {
			stats.LeavesUsed++
		}
		stats.ActualHours += day.WorkedHours
		stats.Daily = append(stats.Daily, day)

		result[key] = stats
	}

	for key, stats := range result {
		stats.Productivity = Productivity(stats.ActualHours, stats.ExpectedHours)
		stats.ExcessLeaves = max(0, stats.LeavesUsed-stats.LeaveAllowance)
		result[key] = stats
	}
	return result
}

// SortedStats flattens the aggregate ordered by employee then month.
func SortedStats(stats map[attendance.StatsKey]attendance.MonthlyStats) []attendance.MonthlyStats {
	keys := make([]attendance.StatsKey, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].EmployeeID != keys[j].EmployeeID {
			return keys[i].EmployeeID < keys[j].EmployeeID
		}
		return keys[i].Month < keys[j].Month
	})

	out := make([]attendance.MonthlyStats, 0, len(keys))
	for _, k := range keys {
		out = append(out, stats[k])
	}
	return out
}

// Summarize totals the statistics of every employee for one month. Stats for
// other months are ignored.
func Summarize(month string, stats []attendance.MonthlyStats) attendance.MonthSummary {
	summary := attendance.MonthSummary{Month: month}
	employees := make(map[string]struct{})
	for _, s := range stats {
		if s.MonthKey() != month {
			continue
		}
		summary.ExpectedHours += s.ExpectedHours
		summary.ActualHours += s.ActualHours
		summary.Leaves += s.LeavesUsed
		employees[s.EmployeeID] = struct{}{}
	}
	summary.Employees = len(employees)
	summary.Productivity = Productivity(summary.ActualHours, summary.ExpectedHours)
	return summary
}
