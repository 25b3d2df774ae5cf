package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/leave-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-analyzer/internal/handler/http/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// multipartOverhead leaves room for form boundaries around the file part.
	multipartOverhead = 1 << 20
)

type AttendanceHandler interface {
	Upload(w http.ResponseWriter, r *http.Request)
	Import(w http.ResponseWriter, r *http.Request)
	Preview(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	ExportStats(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	maxUploadBytes    int64
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, maxUploadBytes int64) AttendanceHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = attendance.MaxImportSize
	}
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		maxUploadBytes:    maxUploadBytes,
	}
}

// decodeRows reads a JSON array of row objects. Numbers are kept as
// json.Number so large serials and ids survive unchanged.
func (h *attendanceHandlerImpl) decodeRows(w http.ResponseWriter, r *http.Request) ([]attendance.RawRow, error) {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	decoder.UseNumber()

	var rows []attendance.RawRow
	if err := decoder.Decode(&rows); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: body exceeds %d bytes", attendance.ErrMalformedBatch, maxErr.Limit)
		}
		return nil, fmt.Errorf("%w: body must be a JSON array of row objects", attendance.ErrMalformedBatch)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: batch is empty", attendance.ErrMalformedBatch)
	}
	return rows, nil
}

func writeUploadResult(w http.ResponseWriter, result attendance.UploadResult) {
	if result.Partial() {
		response.MultiStatus(w,
			fmt.Sprintf("%d records stored, %d rejected", result.SuccessCount, result.ErrorCount),
			result,
		)
		return
	}
	response.SuccessWithMessage(w, fmt.Sprintf("%d records stored", result.SuccessCount), result)
}

// Upload implements AttendanceHandler.
func (h *attendanceHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	rows, err := h.decodeRows(w, r)
	if err != nil {
		slog.Error("Failed to decode attendance batch", "error", err)
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Upload(r.Context(), rows)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeUploadResult(w, result)
}

// Import implements AttendanceHandler.
func (h *attendanceHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.BadRequest(w, "Field 'file' is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	req := attendance.ImportRequest{
		File:     file,
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MaxSize:  h.maxUploadBytes,
	}

	result, err := h.attendanceService.Import(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeUploadResult(w, result)
}

// Preview implements AttendanceHandler.
func (h *attendanceHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	rows, err := h.decodeRows(w, r)
	if err != nil {
		slog.Error("Failed to decode attendance batch", "error", err)
		response.HandleError(w, err)
		return
	}

	preview, err := h.attendanceService.Preview(r.Context(), rows)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, preview)
}

func parseStatsFilter(r *http.Request) attendance.StatsFilter {
	var filter attendance.StatsFilter

	if employeeID := strings.TrimSpace(r.URL.Query().Get("employee_id")); employeeID != "" {
		filter.EmployeeID = &employeeID
	}

	if month := strings.TrimSpace(r.URL.Query().Get("month")); month != "" {
		filter.Month = &month
	}

	return filter
}

func filterMeta(filter attendance.StatsFilter, total int) *response.Meta {
	meta := &response.Meta{TotalItems: total}
	if filter.EmployeeID != nil {
		meta.EmployeeID = *filter.EmployeeID
	}
	if filter.Month != nil {
		meta.Month = *filter.Month
	}
	return meta
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := parseStatsFilter(r)

	records, err := h.attendanceService.ListRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, records, filterMeta(filter, len(records)))
}

// Stats implements AttendanceHandler.
func (h *attendanceHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	filter := parseStatsFilter(r)

	stats, err := h.attendanceService.MonthlyStats(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	total := 0
	for _, months := range stats {
		total += len(months)
	}
	response.SuccessWithMeta(w, stats, filterMeta(filter, total))
}

// ExportStats implements AttendanceHandler.
func (h *attendanceHandlerImpl) ExportStats(w http.ResponseWriter, r *http.Request) {
	filter := parseStatsFilter(r)

	data, err := h.attendanceService.ExportMonthlyStats(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	name := "attendance-stats"
	if filter.EmployeeID != nil {
		name += "-" + *filter.EmployeeID
	}
	if filter.Month != nil {
		name += "-" + *filter.Month
	}
	response.File(w, name+".xlsx", xlsxContentType, data)
}
