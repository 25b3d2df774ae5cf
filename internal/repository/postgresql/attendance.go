package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/leave-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const upsertAttendanceQuery = `
	INSERT INTO attendance (employee_id, employee_name, work_date, in_time, out_time)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (employee_id, work_date) DO UPDATE SET
		employee_name = EXCLUDED.employee_name,
		in_time       = EXCLUDED.in_time,
		out_time      = EXCLUDED.out_time,
		updated_at    = NOW()
`

// Upsert implements attendance.AttendanceRepository.
func (a *attendanceRepository) Upsert(ctx context.Context, records []attendance.Record) error {
	if len(records) == 0 {
		return nil
	}

	err := WithTransaction(ctx, a.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, a.db)

		batch := &pgx.Batch{}
		for _, r := range records {
			batch.Queue(upsertAttendanceQuery,
				r.EmployeeID,
				r.EmployeeName,
				r.WorkDate,
				toPgTime(r.InTime),
				toPgTime(r.OutTime),
			)
		}

		results := q.SendBatch(ctx, batch)
		for i := range records {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to upsert record %d: %w", i+1, err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return storageError("failed to store attendance", err)
	}
	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	where := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.Month != "" {
		where += fmt.Sprintf(" AND to_char(work_date, 'YYYY-MM') = $%d", argIdx)
		args = append(args, filter.Month)
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT employee_id, employee_name, work_date, in_time, out_time
		FROM attendance
		WHERE %s
		ORDER BY employee_id, work_date
	`, where)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("failed to query attendance", err)
	}
	defer rows.Close()

	records := make([]attendance.Record, 0)
	for rows.Next() {
		var (
			r       attendance.Record
			inTime  pgtype.Time
			outTime pgtype.Time
		)
		if err := rows.Scan(&r.EmployeeID, &r.EmployeeName, &r.WorkDate, &inTime, &outTime); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		r.InTime = fromPgTime(inTime)
		r.OutTime = fromPgTime(outTime)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to read attendance", err)
	}

	return records, nil
}

// ListEmployees implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListEmployees(ctx context.Context) ([]attendance.EmployeeSummary, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT
			employee_id,
			(array_agg(employee_name ORDER BY work_date DESC))[1] AS employee_name,
			array_agg(DISTINCT to_char(work_date, 'YYYY-MM') ORDER BY to_char(work_date, 'YYYY-MM')) AS months
		FROM attendance
		GROUP BY employee_id
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, storageError("failed to query employees", err)
	}
	defer rows.Close()

	employees := make([]attendance.EmployeeSummary, 0)
	for rows.Next() {
		var e attendance.EmployeeSummary
		if err := rows.Scan(&e.EmployeeID, &e.EmployeeName, &e.Months); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to read employees", err)
	}

	return employees, nil
}

// Ping implements attendance.AttendanceRepository.
func (a *attendanceRepository) Ping(ctx context.Context) error {
	if err := a.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", attendance.ErrStorageUnavailable, err)
	}
	return nil
}

func toPgTime(t *attendance.TimeOfDay) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: t.Duration().Microseconds(), Valid: true}
}

func fromPgTime(t pgtype.Time) *attendance.TimeOfDay {
	if !t.Valid {
		return nil
	}
	tod := attendance.TimeOfDay(t.Microseconds / 1_000_000)
	return &tod
}
