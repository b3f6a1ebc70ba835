// Package sheets defines the spreadsheet export port.
package sheets

import (
	"context"

	"poupa/internal/services"
)

// ReportExporter writes a month-end report to an external spreadsheet. An
// export replaces whatever the previous export of the same month wrote.
type ReportExporter interface {
	ExportMonthReport(ctx context.Context, r services.MonthReport) error
}
