// Package export writes the attendance projection to tabular files.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/kozaktomas/attendance-tracker/internal/database"
)

// csvHeader lists every exported column. Internal ids are deliberately
// left out; the file is meant for people, not for re-import.
var csvHeader = []string{"NAME", "ROLL NO", "DATE", "STATUS", "SUBJECT", "YEAR", "TERM", "SLOT", "INSTRUCTOR"}

// WriteCSV streams the attendance export to w as CSV, header first.
// Returns the number of data rows written.
func WriteCSV(ctx context.Context, attendance database.AttendanceReader, w io.Writer) (int, error) {
	rows, err := attendance.ExportRows(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not load export rows: %w", err)
	}
	return writeRows(w, rows)
}

func writeRows(w io.Writer, rows []database.ExportRow) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("could not write header: %w", err)
	}

	for i, row := range rows {
		record := []string{
			row.Name,
			row.RollNo,
			row.Date.String(),
			string(row.Status),
			row.Subject,
			row.Year,
			row.Term,
			row.Slot,
			row.Instructor,
		}
		if err := cw.Write(record); err != nil {
			return i, fmt.Errorf("could not write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return len(rows), fmt.Errorf("could not flush output: %w", err)
	}
	return len(rows), nil
}
