package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cmlabs-hris/leave-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/validator"
	attendanceService "github.com/cmlabs-hris/leave-analyzer/internal/service/attendance"
	"github.com/spf13/cobra"
)

var (
	analyzeEmployee string
	analyzeMonth    string
	analyzeFormat   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Compute monthly statistics from a spreadsheet without storing it",
	Long: `Reads the first sheet of FILE, normalizes every row and prints the monthly
statistics per employee. Rejected rows are listed on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeEmployee, "employee", "", "only show this employee id")
	analyzeCmd.Flags().StringVar(&analyzeMonth, "month", "", "only show this month (YYYY-MM)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "table", "output format: table, json or csv")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeMonth != "" && !validator.IsValidMonth(analyzeMonth) {
		return fmt.Errorf("invalid --month %q: expected YYYY-MM", analyzeMonth)
	}
	if !validator.IsInSlice(analyzeFormat, []string{"table", "json", "csv"}) {
		return fmt.Errorf("invalid --format %q: expected table, json or csv", analyzeFormat)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	cells, err := spreadsheet.ReadRows(f, args[0])
	if err != nil {
		return fmt.Errorf("reading spreadsheet: %w", err)
	}
	rows := make([]attendance.RawRow, len(cells))
	for i, c := range cells {
		rows[i] = attendance.RawRow(c)
	}

	normalized, rowErrors, err := attendanceService.NormalizeBatch(cmd.Context(), rows)
	if err != nil {
		return fmt.Errorf("normalizing rows: %w", err)
	}
	for _, e := range rowErrors {
		fmt.Fprintf(cmd.ErrOrStderr(), "row %d rejected: %s\n", e.RecordIndex, e.Reason)
	}

	records := make([]attendance.Record, 0, len(normalized))
	for _, n := range normalized {
		records = append(records, n.Record)
	}

	stats := filterStats(attendanceService.SortedStats(attendanceService.Aggregate(records)), analyzeEmployee, analyzeMonth)

	out := cmd.OutOrStdout()
	switch analyzeFormat {
	case "json":
		return writeStatsJSON(out, stats)
	case "csv":
		return writeStatsCSV(out, stats)
	default:
		writeStatsTable(out, stats, len(rows), len(rowErrors))
		return nil
	}
}

func filterStats(stats []attendance.MonthlyStats, employeeID, month string) []attendance.MonthlyStats {
	out := make([]attendance.MonthlyStats, 0, len(stats))
	for _, s := range stats {
		if employeeID != "" && s.EmployeeID != employeeID {
			continue
		}
		if month != "" && s.MonthKey() != month {
			continue
		}
		out = append(out, s)
	}
	return out
}

func writeStatsJSON(w io.Writer, stats []attendance.MonthlyStats) error {
	resp := make(attendance.StatsResponse)
	for _, s := range stats {
		if resp[s.EmployeeID] == nil {
			resp[s.EmployeeID] = make(map[string]attendance.MonthlyStatsResponse)
		}
		resp[s.EmployeeID][s.MonthKey()] = attendance.NewMonthlyStatsResponse(s)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

var csvHeader = []string{
	"employee_id", "employee_name", "month", "expected_hours", "actual_hours",
	"working_days", "leaves_used", "leave_allowance", "excess_leaves", "productivity",
}

func writeStatsCSV(w io.Writer, stats []attendance.MonthlyStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range stats {
		record := []string{
			s.EmployeeID,
			s.EmployeeName,
			s.MonthKey(),
			attendance.FormatHours(s.ExpectedHours),
			attendance.FormatHours(s.ActualHours),
			strconv.Itoa(s.WorkingDays),
			strconv.Itoa(s.LeavesUsed),
			strconv.Itoa(s.LeaveAllowance),
			strconv.Itoa(s.ExcessLeaves),
			s.Productivity.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeStatsTable(w io.Writer, stats []attendance.MonthlyStats, rows, rejected int) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "No attendance found")
		return
	}

	fmt.Fprintln(w, "--------------------------------------------------------------------------------------------")
	fmt.Fprintf(w, "%-12s  %-20s  %-7s  %9s  %9s  %5s  %6s  %6s  %8s\n",
		"Employee", "Name", "Month", "Expected", "Actual", "Days", "Leaves", "Excess", "Prod %")
	fmt.Fprintln(w, "--------------------------------------------------------------------------------------------")

	for _, s := range stats {
		name := s.EmployeeName
		if len(name) > 20 {
			name = name[:17] + "..."
		}
		fmt.Fprintf(w, "%-12s  %-20s  %-7s  %9s  %9s  %5d  %3d/%-2d  %6d  %8s\n",
			s.EmployeeID,
			name,
			s.MonthKey(),
			attendance.FormatHours(s.ExpectedHours),
			attendance.FormatHours(s.ActualHours),
			s.WorkingDays,
			s.LeavesUsed,
			s.LeaveAllowance,
			s.ExcessLeaves,
			s.Productivity.StringFixed(2),
		)
	}

	fmt.Fprintln(w, "--------------------------------------------------------------------------------------------")
	fmt.Fprintf(w, "%d rows read, %d rejected, %d employee-months\n", rows, rejected, len(stats))
}
