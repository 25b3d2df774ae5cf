package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/leave-analyzer/internal/domain/attendance"
	"golang.org/x/sync/errgroup"
)

// Spreadsheet date serials count days from 1899-12-30; serial 25569 is 1970-01-01.
const (
	serialUnixEpoch = 25569
	maxDateSerial   = 2958465 // 9999-12-31
	minutesPerDay   = 24 * 60
)

// Candidate keys per logical field, in priority order. Keys are compared after
// foldKey, so "Employee Name", "EmployeeName" and "employee_name" all match
// "employeename".
var (
	employeeIDAliases   = []string{"employeeid", "empid", "employeecode"}
	employeeNameAliases = []string{"employeename", "name", "employee"}
	dateAliases         = []string{"date", "workdate", "attendancedate"}
	inTimeAliases       = []string{"intime", "timein", "clockin", "checkin"}
	outTimeAliases      = []string{"outtime", "timeout", "clockout", "checkout"}
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

var clockLayouts = []string{
	"3:04 PM",
	"3:04:05 PM",
	"3:04PM",
	"3:04:05PM",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func foldKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(key)) {
		switch r {
		case ' ', '-', '_', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// fieldLookup indexes a raw row by folded key, skipping blank values.
type fieldLookup map[string]any

func newFieldLookup(row attendance.RawRow) fieldLookup {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lookup := make(fieldLookup, len(row))
	for _, k := range keys {
		v := row[k]
		if isBlank(v) {
			continue
		}
		fk := foldKey(k)
		if _, exists := lookup[fk]; !exists {
			lookup[fk] = v
		}
	}
	return lookup
}

func (l fieldLookup) first(aliases []string) (any, bool) {
	for _, alias := range aliases {
		if v, ok := l[alias]; ok {
			return v, true
		}
	}
	return nil, false
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func asString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339)
	}
	if f, ok := asNumber(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// Normalize converts one raw row into a canonical record. A missing name or
// an unreadable date rejects the row; unreadable times are treated as absent.
func Normalize(row attendance.RawRow) (attendance.Record, error) {
	fields := newFieldLookup(row)

	nameVal, _ := fields.first(employeeNameAliases)
	name := strings.TrimSpace(asString(nameVal))
	if nameVal == nil || name == "" {
		return attendance.Record{}, attendance.ErrMissingEmployeeName
	}

	employeeID := name
	if idVal, ok := fields.first(employeeIDAliases); ok {
		if id := strings.TrimSpace(asString(idVal)); id != "" {
			employeeID = id
		}
	}

	dateVal, ok := fields.first(dateAliases)
	if !ok {
		return attendance.Record{}, fmt.Errorf("%w: date is missing", attendance.ErrInvalidDate)
	}
	workDate, err := DecodeDate(dateVal)
	if err != nil {
		return attendance.Record{}, err
	}

	inVal, _ := fields.first(inTimeAliases)
	outVal, _ := fields.first(outTimeAliases)

	return attendance.Record{
		EmployeeID:   employeeID,
		EmployeeName: name,
		WorkDate:     workDate,
		InTime:       DecodeTime(inVal),
		OutTime:      DecodeTime(outVal),
	}, nil
}

// DecodeDate turns a spreadsheet date serial, a date string or a time.Time
// into a calendar date at UTC midnight. No timezone conversion is applied:
// the date is taken as written.
func DecodeDate(v any) (time.Time, error) {
	if t, ok := v.(time.Time); ok {
		if t.IsZero() {
			return time.Time{}, fmt.Errorf("%w: zero time", attendance.ErrInvalidDate)
		}
		return truncateToDate(t), nil
	}

	if serial, ok := asNumber(v); ok {
		if math.IsNaN(serial) || math.IsInf(serial, 0) || serial <= 0 || serial > maxDateSerial {
			return time.Time{}, fmt.Errorf("%w: serial %v out of range", attendance.ErrInvalidDate, serial)
		}
		days := int(math.Floor(serial - serialUnixEpoch))
		return time.Date(1970, time.January, 1+days, 0, 0, 0, 0, time.UTC), nil
	}

	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unsupported value %v", attendance.ErrInvalidDate, v)
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateToDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", attendance.ErrInvalidDate, s)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DecodeTime turns a fractional-day number or an "HH:MM[:SS]" string into a
// time of day. Anything it cannot read yields nil.
func DecodeTime(v any) *attendance.TimeOfDay {
	if isBlank(v) {
		return nil
	}

	if t, ok := v.(time.Time); ok {
		tod := attendance.TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
		return &tod
	}

	if f, ok := asNumber(v); ok {
		if math.IsNaN(f) || f < 0 || f >= 1 {
			return nil
		}
		minutes := int(math.Round(f * minutesPerDay))
		tod := attendance.TimeOfDay(minutes * 60)
		return &tod
	}

	s, ok := v.(string)
	if !ok || !strings.Contains(s, ":") {
		return nil
	}
	if tod, err := attendance.ParseTimeOfDay(s); err == nil {
		return &tod
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			tod := attendance.TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
			return &tod
		}
	}
	return nil
}

// NormalizedRow is a successfully normalized row with its 1-based position.
type NormalizedRow struct {
	Index  int
	Record attendance.Record
}

const normalizeChunkSize = 512

// NormalizeBatch normalizes every row. Failures are collected per row and never
// stop the rest of the batch. Results keep the input order.
func NormalizeBatch(ctx context.Context, rows []attendance.RawRow) ([]NormalizedRow, []attendance.RecordError, error) {
	type outcome struct {
		record attendance.Record
		err    error
	}
	outcomes := make([]outcome, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for start := 0; start < len(rows); start += normalizeChunkSize {
		start := start // per-iteration copy for the goroutine (pre-Go 1.22 loop semantics)
		end := min(start+normalizeChunkSize, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, err := Normalize(rows[i])
				outcomes[i] = outcome{record: rec, err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	normalized := make([]NormalizedRow, 0, len(rows))
	errs := make([]attendance.RecordError, 0)
	for i, o := range outcomes {
		if o.err != nil {
			errs = append(errs, attendance.RecordError{RecordIndex: i + 1, Reason: o.err.Error()})
			continue
		}
		normalized = append(normalized, NormalizedRow{Index: i + 1, Record: o.record})
	}
	return normalized, errs, nil
}
