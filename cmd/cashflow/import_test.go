package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
	"github.com/Veraticus/cashflow/internal/ofx"
	"github.com/Veraticus/cashflow/internal/plaid"
	"github.com/Veraticus/cashflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindImported(t *testing.T) {
	day := calendar.Date(2024, 3, 1)
	imported := []model.Imported{
		{Date: day, Info: "Coffee", Amount: -450, ExternalID: "FIT1", SourceID: "acct-1"},
		{Date: day, Info: "Coffee", Amount: -450, ExternalID: "FIT1", SourceID: "acct-1"},
		{Date: day, Info: "Coffee", Amount: -450, ExternalID: "FIT1", SourceID: "acct-2"},
		{Date: day, Info: "Cash deposit", Amount: 10000},
		{Date: day, Info: "Cash deposit", Amount: 10000},
		{Date: day, Info: "Refund", Amount: 1200},
	}

	txns := bindImported(imported, 7, 3)

	require.Len(t, txns, 4)
	hashes := make(map[string]bool)
	for _, txn := range txns {
		assert.Equal(t, 7, txn.AccountID)
		assert.Equal(t, 3, txn.CategoryID)
		assert.NotEmpty(t, txn.Hash)
		hashes[txn.Hash] = true
	}
	assert.Len(t, hashes, 3, "the same FITID from two source accounts hashes alike")
}

func TestSaveInBatches(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	acc := db.MustAccount("Checking", model.AccountTypeBank)

	imported := make([]model.Imported, 0, 250)
	for i := range 250 {
		imported = append(imported, model.Imported{
			Date:       calendar.Date(2024, 1, 1).AddDate(0, 0, i),
			Info:       fmt.Sprintf("txn %d", i),
			Amount:     money.Cents(-100 * (i + 1)),
			ExternalID: fmt.Sprintf("FIT%d", i),
		})
	}
	txns := bindImported(imported, acc.ID, 0)

	var batches []int
	saved, err := saveInBatches(context.Background(), db.Storage, txns, func(n int) {
		batches = append(batches, n)
	})
	require.NoError(t, err)
	assert.Equal(t, 250, saved)
	assert.Equal(t, []int{100, 100, 50}, batches)

	saved, err = saveInBatches(context.Background(), db.Storage, txns, func(int) {})
	require.NoError(t, err)
	assert.Zero(t, saved, "re-importing the same batch adds nothing")
}

func TestSaveInBatches_Cancelled(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	acc := db.MustAccount("Checking", model.AccountTypeBank)
	txns := bindImported([]model.Imported{{Date: calendar.Date(2024, 1, 1), Amount: 100}}, acc.ID, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	saved, err := saveInBatches(ctx, db.Storage, txns, func(int) {})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, saved)
}

func TestFetchPlaid(t *testing.T) {
	start := calendar.Date(2024, 3, 1)
	end := calendar.Date(2024, 3, 31)

	linked := func(context.Context) ([]string, error) { return []string{"acc-1", "acc-2"}, nil }

	t.Run("returns fetched transactions", func(t *testing.T) {
		client := plaid.NewMockClient()
		client.GetAccountsFn = linked
		client.GetTransactionsFn = func(context.Context, time.Time, time.Time) ([]model.Imported, error) {
			return []model.Imported{{Date: start, Info: "Groceries", Amount: -5000, ExternalID: "p-1"}}, nil
		}

		imported, err := fetchPlaid(context.Background(), client, start, end)
		require.NoError(t, err)
		require.Len(t, imported, 1)
		assert.Equal(t, "p-1", imported[0].ExternalID)
		assert.Equal(t, 1, client.GetAccountsCalls)
		require.Len(t, client.GetTransactionsCalls, 1)
		assert.Equal(t, start, client.GetTransactionsCalls[0].StartDate)
		assert.Equal(t, end, client.GetTransactionsCalls[0].EndDate)
	})

	t.Run("item without accounts fetches nothing", func(t *testing.T) {
		client := plaid.NewMockClient()

		_, err := fetchPlaid(context.Background(), client, start, end)
		require.ErrorIs(t, err, errNoPlaidAccounts)
		assert.Equal(t, 1, client.GetAccountsCalls)
		assert.Empty(t, client.GetTransactionsCalls)
	})

	t.Run("wraps account errors", func(t *testing.T) {
		boom := errors.New("invalid access token")
		client := plaid.NewMockClient()
		client.GetAccountsFn = func(context.Context) ([]string, error) { return nil, boom }

		_, err := fetchPlaid(context.Background(), client, start, end)
		require.ErrorIs(t, err, boom)
		assert.Empty(t, client.GetTransactionsCalls)
	})

	t.Run("wraps transaction errors", func(t *testing.T) {
		boom := errors.New("item login required")
		client := plaid.NewMockClient()
		client.GetAccountsFn = linked
		client.GetTransactionsFn = func(context.Context, time.Time, time.Time) ([]model.Imported, error) {
			return nil, boom
		}

		_, err := fetchPlaid(context.Background(), client, start, end)
		require.ErrorIs(t, err, boom)
	})
}

func TestExpandFiles(t *testing.T) {
	_, err := expandFiles([]string{"does-not-exist-*.ofx"})
	require.Error(t, err)
}

func statementOFX(fitid, posted, amount, name string) string {
	return `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240331120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>` + posted + `120000[0:GMT]
<TRNAMT>` + amount + `
<FITID>` + fitid + `
<NAME>` + name + `
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240331120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`
}

func writeStatements(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	files := []string{filepath.Join(dir, "jan.ofx"), filepath.Join(dir, "feb.ofx")}
	require.NoError(t, os.WriteFile(files[0], []byte(statementOFX("JAN1", "20240115", "-25.50", "COFFEE")), 0o600))
	require.NoError(t, os.WriteFile(files[1], []byte(statementOFX("FEB1", "20240215", "-40.00", "BOOKS")), 0o600))
	return files
}

func TestParseOFXFiles(t *testing.T) {
	files := writeStatements(t)

	imported, err := parseOFXFiles(context.Background(), ofx.NewParser(), files)
	require.NoError(t, err)
	require.Len(t, imported, 2)
	assert.Equal(t, "JAN1", imported[0].ExternalID)
	assert.Equal(t, "FEB1", imported[1].ExternalID)
	assert.Equal(t, money.Cents(-4000), imported[1].Amount)
}

func TestParseOFXFiles_BadFile(t *testing.T) {
	files := writeStatements(t)
	bad := filepath.Join(t.TempDir(), "broken.ofx")
	require.NoError(t, os.WriteFile(bad, []byte("not an OFX file"), 0o600))

	_, err := parseOFXFiles(context.Background(), ofx.NewParser(), append(files, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.ofx")
}

func TestImportOFXCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cashflow.db")
	files := writeStatements(t)
	mustRun(t, db, "accounts", "add", "Checking")

	out := mustRun(t, db, append([]string{"import", "ofx", "--account", "Checking", "--dry-run"}, files...)...)
	assert.Contains(t, out, "Dry run complete")

	out = mustRun(t, db, append([]string{"import", "ofx", "--account", "Checking"}, files...)...)
	assert.Contains(t, out, `Imported 2 new transactions into "Checking" (0 already present)`)

	out = mustRun(t, db, append([]string{"import", "ofx", "--account", "Checking"}, files...)...)
	assert.Contains(t, out, `Imported 0 new transactions into "Checking" (2 already present)`)

	out = mustRun(t, db, "snapshot", "list")
	assert.Contains(t, out, "auto-import-ofx")
}
