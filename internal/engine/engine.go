// Package engine implements the budget report, the cash-flow predictor and
// the balance forecast built on top of them.
package engine

import (
	"context"

	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/service"
)

// RecordSource supplies the budget records of a month, or of a whole year
// for month 0, in storage order.
type RecordSource interface {
	GetRecords(ctx context.Context, month, year int) ([]model.BudgetRecord, error)
}

// Engine computes reports from the ledger and budget records. It holds no
// category state; callers pass a registry to each operation.
type Engine struct {
	ledger  service.Ledger
	records RecordSource
}

// New creates an engine over the given collaborators.
func New(ledger service.Ledger, records RecordSource) *Engine {
	return &Engine{
		ledger:  ledger,
		records: records,
	}
}
