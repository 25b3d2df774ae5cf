package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// maxXLSRows bounds how many rows are read from a legacy .xls workbook.
const maxXLSRows = 100000

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrNoWorksheet       = errors.New("no worksheet found")
	ErrEmptyWorksheet    = errors.New("worksheet is empty")
)

// numericCell matches decimal numbers, including the exponent form Excel
// stores for small values such as 4.1666666666666664E-2 (01:00).
var numericCell = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// ReadRows reads the first worksheet of an .xlsx/.xlsm, .xls or .csv file and
// returns one map per data row keyed by the header row. Numeric cells come
// back as float64, text as string and empty cells are omitted.
func ReadRows(r io.Reader, filename string) ([]map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}

	var cells [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		cells, err = readXLSX(data)
	case ".xls":
		cells, err = readXLS(data)
	case ".csv":
		cells, err = readCSV(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}

	return toRows(cells)
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoWorksheet
	}

	// Raw values keep dates and times as serial numbers instead of formatted text.
	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return rows, nil
}

func readXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if workbook.NumSheets() == 0 {
		return nil, ErrNoWorksheet
	}
	return workbook.ReadAllCells(maxXLSRows), nil
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// toRows uses the first non-empty row as the header.
func toRows(cells [][]string) ([]map[string]any, error) {
	headerIdx := -1
	for i, row := range cells {
		if !isEmptyRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrEmptyWorksheet
	}

	header := make([]string, len(cells[headerIdx]))
	for i, h := range cells[headerIdx] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]map[string]any, 0, len(cells)-headerIdx-1)
	for _, row := range cells[headerIdx+1:] {
		if isEmptyRow(row) {
			continue
		}
		m := make(map[string]any, len(header))
		for i, name := range header {
			if name == "" || i >= len(row) {
				continue
			}
			if v := CellValue(row[i]); v != nil {
				m[name] = v
			}
		}
		rows = append(rows, m)
	}
	return rows, nil
}

// CellValue converts a raw cell into float64 for decimal numbers, the trimmed
// string otherwise, or nil when empty.
func CellValue(raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if numericCell.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
	}
	return s
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
