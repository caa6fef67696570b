package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/Veraticus/cashflow/internal/money"
)

// Transaction is a single dated movement of money on an account.
type Transaction struct {
	Date       time.Time
	Info       string
	Hash       string // set for imported transactions, used for de-duplication
	ID         int
	AccountID  int
	CategoryID int
	Amount     money.Cents
}

// GenerateHash identifies an imported transaction. externalID is the id the
// source assigned (OFX FITID, Plaid transaction id) and may be empty.
func (t *Transaction) GenerateHash(externalID string) string {
	data := fmt.Sprintf("%s:%d:%s:%d:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Info,
		t.AccountID,
		externalID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Imported is a transaction read from an external source before it is bound
// to a local account.
type Imported struct {
	Date       time.Time
	Info       string
	ExternalID string // OFX FITID or Plaid transaction id
	SourceID   string // account identifier at the source
	Amount     money.Cents
}

// Bind returns the transaction to store on accountID with its
// de-duplication hash set.
func (i Imported) Bind(accountID int) Transaction {
	t := Transaction{
		Date:      i.Date,
		Info:      i.Info,
		AccountID: accountID,
		Amount:    i.Amount,
	}
	t.Hash = t.GenerateHash(i.ExternalID)
	return t
}
