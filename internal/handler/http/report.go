package http

import (
	"net/http"

	"github.com/cmlabs-hris/leave-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-analyzer/internal/handler/http/response"
)

type ReportHandler interface {
	MonthlyReport(w http.ResponseWriter, r *http.Request)
	Employees(w http.ResponseWriter, r *http.Request)
	Health(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewReportHandler(attendanceService attendance.AttendanceService) ReportHandler {
	return &reportHandlerImpl{
		attendanceService: attendanceService,
	}
}

// MonthlyReport implements ReportHandler.
func (h *reportHandlerImpl) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	req := attendance.MonthlyReportRequest{
		Month: r.URL.Query().Get("month"),
	}

	report, err := h.attendanceService.MonthlyReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, report)
}

// Employees implements ReportHandler.
func (h *reportHandlerImpl) Employees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.attendanceService.ListEmployees(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, employees, &response.Meta{TotalItems: len(employees)})
}

// Health implements ReportHandler. A degraded database is reported in the
// body; the status code stays 200.
func (h *reportHandlerImpl) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.attendanceService.Health(r.Context()))
}
