package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-analyzer/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tod(h, m int) *attendance.TimeOfDay {
	t, _ := attendance.NewTimeOfDay(h, m, 0)
	return &t
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAttendanceRepository_UpsertAndList(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()

	records := []attendance.Record{
		{EmployeeID: "E1", EmployeeName: "Ann", WorkDate: date(2024, 1, 1), InTime: tod(10, 0), OutTime: tod(18, 30)},
		{EmployeeID: "E1", EmployeeName: "Ann", WorkDate: date(2024, 1, 6)},
		{EmployeeID: "E2", EmployeeName: "Bob", WorkDate: date(2024, 2, 1), InTime: tod(9, 0), OutTime: tod(17, 0)},
	}
	require.NoError(t, repo.Upsert(ctx, records))

	got, err := repo.List(ctx, attendance.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "E1", got[0].EmployeeID)
	assert.True(t, got[0].WorkDate.Equal(date(2024, 1, 1)))
	require.NotNil(t, got[0].InTime)
	assert.Equal(t, "10:00:00", got[0].InTime.String())
	assert.Nil(t, got[1].InTime)
	assert.Nil(t, got[1].OutTime)

	byMonth, err := repo.List(ctx, attendance.RecordFilter{Month: "2024-02"})
	require.NoError(t, err)
	require.Len(t, byMonth, 1)
	assert.Equal(t, "E2", byMonth[0].EmployeeID)

	byEmployee, err := repo.List(ctx, attendance.RecordFilter{EmployeeID: "E1", Month: "2024-01"})
	require.NoError(t, err)
	assert.Len(t, byEmployee, 2)
}

func TestAttendanceRepository_UpsertReplacesSameDay(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()

	first := attendance.Record{EmployeeID: "E1", EmployeeName: "Ann", WorkDate: date(2024, 1, 1)}
	require.NoError(t, repo.Upsert(ctx, []attendance.Record{first}))

	second := first
	second.EmployeeName = "Ann Lee"
	second.InTime = tod(8, 0)
	second.OutTime = tod(16, 30)
	require.NoError(t, repo.Upsert(ctx, []attendance.Record{second}))
	require.NoError(t, repo.Upsert(ctx, []attendance.Record{second}))

	got, err := repo.List(ctx, attendance.RecordFilter{EmployeeID: "E1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ann Lee", got[0].EmployeeName)
	assert.Equal(t, "16:30:00", got[0].OutTime.String())
}

func TestAttendanceRepository_ListEmployees(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, []attendance.Record{
		{EmployeeID: "E1", EmployeeName: "Ann", WorkDate: date(2024, 1, 2)},
		{EmployeeID: "E1", EmployeeName: "Ann Lee", WorkDate: date(2024, 3, 4)},
		{EmployeeID: "E1", EmployeeName: "Ann Lee", WorkDate: date(2024, 3, 5)},
	}))

	employees, err := repo.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Ann Lee", employees[0].EmployeeName)
	assert.Equal(t, []string{"2024-01", "2024-03"}, employees[0].Months)

	assert.NoError(t, repo.Ping(ctx))
}

func TestWithTransaction_RollsBackJoinedUpsert(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()

	errAbort := errors.New("abort")
	err := postgresql.WithTransaction(ctx, setup.DB, func(ctx context.Context) error {
		record := attendance.Record{EmployeeID: "E9", EmployeeName: "Eve", WorkDate: date(2024, 3, 4)}
		if err := repo.Upsert(ctx, []attendance.Record{record}); err != nil {
			return err
		}
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	got, err := repo.List(ctx, attendance.RecordFilter{EmployeeID: "E9"})
	require.NoError(t, err)
	assert.Empty(t, got)
}
