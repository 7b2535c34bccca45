// Package sheets defines the ports for the spreadsheet mirror. The mirror
// is an append-only audit trail: creations and updates each add a row, and
// deletions are recorded in a separate log rather than removing rows.
package sheets

import (
	"context"

	"tally/internal/core"
)

// MirrorWriter appends ledger activity to a spreadsheet.
type MirrorWriter interface {
	// AppendIncome adds an income row and returns a row reference.
	AppendIncome(ctx context.Context, e core.IncomeEntry) (string, error)
	// AppendExpense adds an expense row and returns a row reference.
	AppendExpense(ctx context.Context, e core.ExpenseEntry) (string, error)
	// RecordDeletion logs the removal of an entry.
	RecordDeletion(ctx context.Context, kind string, id int64) error
}
