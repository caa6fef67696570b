package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/cashflow/internal/model"
)

// TransactionFetcher pulls posted transactions from a linked institution.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Imported, error)
	GetAccounts(ctx context.Context) ([]string, error)
}
