package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cmlabs-hris/leave-analyzer/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analyzeCSV = `Employee ID,Employee Name,Date,In Time,Out Time
E1,Ann,45292,0.4166666667,0.7708333333
E1,Ann,2024-01-06,,
E1,Ann,2024-01-07,,
,,2024-01-08,09:00,17:00
E2,Bob,2024-02-01,09:00,13:15
`

func runLeavectl(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	analyzeEmployee, analyzeMonth, analyzeFormat = "", "", "table"

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attendance.csv")
	require.NoError(t, os.WriteFile(path, []byte(analyzeCSV), 0o644))
	return path
}

func TestAnalyze_JSON(t *testing.T) {
	path := writeCSV(t)

	stdout, stderr, err := runLeavectl(t, "analyze", path, "--format", "json", "--month", "2024-01")
	require.NoError(t, err)
	assert.Contains(t, stderr, "row 4 rejected: missing employee name")

	var stats attendance.StatsResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &stats))
	require.Len(t, stats, 1)
	m := stats["E1"]["2024-01"]
	assert.Equal(t, 12.5, m.ExpectedHours)
	assert.Equal(t, 8.5, m.ActualHours)
	assert.Equal(t, 1, m.LeavesUsed)
	assert.Equal(t, "68.00", m.Productivity)
}

func TestAnalyze_CSVAndTable(t *testing.T) {
	path := writeCSV(t)

	stdout, _, err := runLeavectl(t, "analyze", path, "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "E1,Ann,2024-01,12.50,8.50,2,1,2,0,68.00", lines[1])
	assert.Equal(t, "E2,Bob,2024-02,8.50,4.25,1,0,2,0,50.00", lines[2])

	stdout, _, err = runLeavectl(t, "analyze", path, "--employee", "E2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Bob")
	assert.NotContains(t, stdout, "Ann")
	assert.Contains(t, stdout, "5 rows read, 1 rejected, 1 employee-months")
}

func TestAnalyze_InvalidFlags(t *testing.T) {
	path := writeCSV(t)

	_, _, err := runLeavectl(t, "analyze", path, "--month", "2024-1")
	assert.Error(t, err)

	_, _, err = runLeavectl(t, "analyze", path, "--format", "yaml")
	assert.Error(t, err)
}
