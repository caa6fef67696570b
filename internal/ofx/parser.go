// Package ofx reads OFX and QFX bank statements into importable
// transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags at end of line that lost their closing bracket.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

var bankPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocess fixes formatting issues common in bank exports.
func (p *Parser) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) read(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// Parse reads every bank and credit card statement in the file. Amounts keep
// the OFX sign: debits are negative.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) ([]model.Imported, error) {
	resp, err := p.read(reader)
	if err != nil {
		return nil, err
	}

	var out []model.Imported
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		txns, err := p.convertAll(ctx, stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))
		if err != nil {
			return nil, err
		}
		out = append(out, txns...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		txns, err := p.convertAll(ctx, stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))
		if err != nil {
			return nil, err
		}
		out = append(out, txns...)
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(out),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return out, nil
}

func (p *Parser) convertAll(ctx context.Context, txns []ofxgo.Transaction, sourceID string) ([]model.Imported, error) {
	out := make([]model.Imported, 0, len(txns))
	for _, t := range txns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		imp, err := p.convert(t, sourceID)
		if err != nil {
			slog.Warn("Skipping unreadable OFX transaction", "fitid", t.FiTID, "error", err)
			continue
		}
		out = append(out, imp)
	}
	return out, nil
}

func (p *Parser) convert(t ofxgo.Transaction, sourceID string) (model.Imported, error) {
	amount, err := decimal.NewFromString(t.TrnAmt.Rat.FloatString(2))
	if err != nil {
		return model.Imported{}, fmt.Errorf("invalid amount: %w", err)
	}
	return model.Imported{
		Date:       calendar.Truncate(t.DtPosted.Time),
		Info:       p.describe(t),
		ExternalID: string(t.FiTID),
		SourceID:   sourceID,
		Amount:     money.ToCents(amount),
	}, nil
}

// describe picks the cleanest description the statement offers.
func (p *Parser) describe(t ofxgo.Transaction) string {
	if t.Payee != nil && t.Payee.Name != "" {
		return strings.TrimSpace(string(t.Payee.Name))
	}

	name := string(t.Name)
	if t.Memo != "" && isGenericDescription(name) {
		name = string(t.Memo)
	}
	name = strings.TrimSpace(name)

	for _, prefix := range bankPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " date stamps
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// Accounts lists the distinct account ids found in the file.
func (p *Parser) Accounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.read(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id ofxgo.String) {
		if id != "" && !seen[string(id)] {
			seen[string(id)] = true
			accounts = append(accounts, string(id))
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(stmt.BankAcctFrom.AcctID)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(stmt.CCAcctFrom.AcctID)
		}
	}
	return accounts, nil
}
