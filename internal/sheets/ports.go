// Package sheets defines the report export port. The rollover worker pushes
// each closed period's archived ledger through a ReportWriter; the google
// subpackage talks to a real spreadsheet, the memory subpackage backs tests
// and Sheets-less deployments.
package sheets

import (
	"context"

	"finanzas/internal/core"
)

// ReportWriter appends the archived ledger of one closed period to a report
// destination. Implementations must tolerate being called again for the same
// period (the AMQP delivery is at-least-once).
type ReportWriter interface {
	AppendArchive(ctx context.Context, period string, rows []core.ArchivedExpense) error
}
