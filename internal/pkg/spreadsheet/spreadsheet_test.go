package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadRows_XLSXKeepsSerials(t *testing.T) {
	data := buildXLSX(t, [][]any{
		{"Employee Name", "Date", "In Time"},
		{"Ann", 45292, 0.4375},
		{},
		{"Bob", "2024-01-02", "09:00"},
	})

	rows, err := ReadRows(bytes.NewReader(data), "attendance.XLSX")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Ann", rows[0]["Employee Name"])
	assert.Equal(t, 45292.0, rows[0]["Date"])
	assert.Equal(t, 0.4375, rows[0]["In Time"])
	assert.Equal(t, "2024-01-02", rows[1]["Date"])
	assert.Equal(t, "09:00", rows[1]["In Time"])
}

func TestReadRows_CSV(t *testing.T) {
	data := "\xef\xbb\xbfname,date,in_time,out_time\n" +
		"Ann,45292,10:00,18:30\n" +
		",,,\n" +
		"Bob,2024-01-02\n"

	rows, err := ReadRows(strings.NewReader(data), "rows.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Ann", rows[0]["name"])
	assert.Equal(t, 45292.0, rows[0]["date"])
	assert.Equal(t, "18:30", rows[0]["out_time"])
	_, hasIn := rows[1]["in_time"]
	assert.False(t, hasIn)
}

func TestReadRows_Errors(t *testing.T) {
	_, err := ReadRows(strings.NewReader("x"), "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadRows(strings.NewReader("\n\n"), "empty.csv")
	assert.ErrorIs(t, err, ErrEmptyWorksheet)

	_, err = ReadRows(strings.NewReader("not a zip"), "broken.xlsx")
	assert.Error(t, err)
}

func TestCellValue(t *testing.T) {
	assert.Nil(t, CellValue("  "))
	assert.Equal(t, 12.0, CellValue("12"))
	assert.Equal(t, -0.5, CellValue("-0.5"))
	assert.Equal(t, 1e5, CellValue("1e5"))
	assert.InDelta(t, 1.0/24, CellValue("4.1666666666666664E-2"), 1e-12)
	assert.InDelta(t, 0.0006944, CellValue("6.9444444444444447E-4"), 1e-7)
	assert.Equal(t, "1e999", CellValue("1e999"))
	assert.Equal(t, "0x10", CellValue("0x10"))
	assert.Equal(t, "NaN", CellValue("NaN"))
	assert.Equal(t, "E-001", CellValue(" E-001 "))
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	err := WriteWorkbook(&buf, []Sheet{
		{Name: "Summary", Header: []string{"Employee", "Hours"}, Rows: [][]any{{"Ann", 8.5}, {"Bob", 4}}},
		{Name: "Daily", Header: []string{"Date"}},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Daily"}, f.GetSheetList())
	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Employee", "Hours"}, {"Ann", "8.5"}, {"Bob", "4"}}, rows)

	assert.Error(t, WriteWorkbook(&buf, nil))
}
