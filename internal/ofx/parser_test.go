package ofx

import (
	"context"
	"strings"
	"testing"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/money"
	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
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
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>POS PURCHASE Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
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
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		count   int
		wantErr bool
	}{
		{name: "bank statement", data: sampleBankOFX, count: 3},
		{name: "credit card statement", data: sampleCreditCardOFX, count: 2},
		{name: "leading blank lines", data: "\n\n  " + sampleBankOFX, count: 3},
		{name: "invalid data", data: "not valid OFX", wantErr: true},
		{name: "empty", data: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, err := NewParser().Parse(context.Background(), strings.NewReader(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, txns, tt.count)
		})
	}
}

func TestParse_BankTransactions(t *testing.T) {
	txns, err := NewParser().Parse(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, txns, 3)

	starbucks := txns[0]
	assert.Equal(t, "2024011501", starbucks.ExternalID)
	assert.Equal(t, "STARBUCKS STORE #1234", starbucks.Info)
	assert.Equal(t, money.Cents(-2550), starbucks.Amount)
	assert.Equal(t, "1234567890", starbucks.SourceID)
	assert.Equal(t, calendar.Date(2024, 1, 15), starbucks.Date)

	wholeFoods := txns[1]
	assert.Equal(t, "Whole Foods Market", wholeFoods.Info)
	assert.Equal(t, money.Cents(-12500), wholeFoods.Amount)

	check := txns[2]
	assert.Equal(t, "CHECK #1234", check.Info)
	assert.Equal(t, money.Cents(-50000), check.Amount)
}

func TestParse_CreditCardTransactions(t *testing.T) {
	txns, err := NewParser().Parse(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "CC2024011001", txns[0].ExternalID)
	assert.Equal(t, money.Cents(-4599), txns[0].Amount)
	assert.Equal(t, "4111111111111111", txns[0].SourceID)
	assert.Equal(t, money.Cents(-1500), txns[1].Amount)
}

func TestParse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().Parse(ctx, strings.NewReader(sampleBankOFX))
	require.ErrorIs(t, err, context.Canceled)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		txn  ofxgo.Transaction
		want string
	}{
		{name: "POS prefix", txn: ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"}, want: "STARBUCKS"},
		{name: "debit card prefix", txn: ofxgo.Transaction{Name: "DEBIT CARD PURCHASE WHOLE FOODS"}, want: "WHOLE FOODS"},
		{name: "clean name", txn: ofxgo.Transaction{Name: "NETFLIX.COM"}, want: "NETFLIX.COM"},
		{name: "whitespace", txn: ofxgo.Transaction{Name: "  AMAZON.COM  "}, want: "AMAZON.COM"},
		{name: "date stamp", txn: ofxgo.Transaction{Name: "01/15 SHELL OIL"}, want: "SHELL OIL"},
		{name: "generic name uses memo", txn: ofxgo.Transaction{Name: "DEBIT", Memo: "CITY WATER"}, want: "CITY WATER"},
		{name: "payee wins", txn: ofxgo.Transaction{Name: "ACH", Payee: &ofxgo.Payee{Name: "Landlord LLC"}}, want: "Landlord LLC"},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.describe(tt.txn))
		})
	}
}

func TestParse_SameLineHashesStable(t *testing.T) {
	first, err := NewParser().Parse(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	second, err := NewParser().Parse(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].Bind(1).Hash, second[i].Bind(1).Hash)
	}
	assert.NotEqual(t, first[0].Bind(1).Hash, first[1].Bind(1).Hash)
}

func TestAccounts(t *testing.T) {
	p := NewParser()

	accounts, err := p.Accounts(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567890"}, accounts)

	accounts, err = p.Accounts(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"4111111111111111"}, accounts)
}
