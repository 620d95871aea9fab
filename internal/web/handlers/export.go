package handlers

import (
	"log"
	"net/http"

	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/kozaktomas/attendance-tracker/internal/export"
)

// ExportHandler handles the attendance export endpoint.
type ExportHandler struct {
	attendance database.AttendanceReader
}

// NewExportHandler creates an export handler.
func NewExportHandler(attendance database.AttendanceReader) *ExportHandler {
	return &ExportHandler{attendance: attendance}
}

// CSV handles GET /export/attendance.csv
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.csv"`)

	if _, err := export.WriteCSV(r.Context(), h.attendance, w); err != nil {
		// Headers are already sent; the truncated file is the best we can do.
		log.Printf("Failed to write attendance export: %v", err)
	}
}
