// Package plaid imports transactions from the Plaid API.
package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
	"github.com/Veraticus/cashflow/internal/service"
	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/shopspring/decimal"
)

const pageSize = int32(500) // Plaid's max page size

var validEnvironments = map[string]plaid.Environment{
	"sandbox":    plaid.Sandbox,
	"production": plaid.Production,
}

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("plaid client ID is required")
	}
	if c.Secret == "" {
		return fmt.Errorf("plaid secret is required")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("plaid access token is required")
	}
	if c.Environment == "" {
		return fmt.Errorf("plaid environment is required")
	}
	if _, ok := validEnvironments[c.Environment]; !ok {
		return fmt.Errorf("invalid Plaid environment: must be sandbox or production")
	}
	return nil
}

// Client implements the TransactionFetcher interface.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   service.RetryOptions
	accessToken string
}

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	configuration.UseEnvironment(validEnvironments[cfg.Environment])

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts:   common.DefaultRetryOptions(),
	}, nil
}

// GetTransactions fetches posted transactions dated within [startDate,
// endDate]. Amounts are flipped to the ledger convention: money in is
// positive.
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Imported, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if startDate.After(endDate) {
		return nil, fmt.Errorf("start date must be before end date")
	}

	c.logger.Info("Fetching transactions from Plaid",
		"start_date", startDate.Format(calendar.DateLayout),
		"end_date", endDate.Format(calendar.DateLayout))

	var all []plaid.Transaction
	for offset := int32(0); ; offset += pageSize {
		var page []plaid.Transaction
		err := common.WithRetry(ctx, func() error {
			request := plaid.NewTransactionsGetRequest(
				c.accessToken,
				startDate.Format(calendar.DateLayout),
				endDate.Format(calendar.DateLayout),
			)
			request.SetOptions(plaid.TransactionsGetRequestOptions{
				Count:  plaid.PtrInt32(pageSize),
				Offset: plaid.PtrInt32(offset),
			})

			resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				return c.classify(err, "failed to fetch transactions")
			}
			page = resp.GetTransactions()
			c.logger.Debug("Fetched transaction batch",
				"count", len(page),
				"offset", offset,
				"total", resp.GetTotalTransactions())
			return nil
		}, c.retryOpts)
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < int(pageSize) {
			break
		}
	}

	out := make([]model.Imported, 0, len(all))
	var pending int
	for _, pt := range all {
		if pt.GetPending() {
			pending++
			continue
		}
		imp, err := fromPlaid(pt).imported()
		if err != nil {
			c.logger.Warn("Skipping Plaid transaction", "transaction_id", pt.GetTransactionId(), "error", err)
			continue
		}
		out = append(out, imp)
	}

	c.logger.Info("Fetched all transactions", "count", len(out), "pending_skipped", pending)
	return out, nil
}

// GetAccounts fetches account IDs from Plaid.
func (c *Client) GetAccounts(ctx context.Context) ([]string, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	var accounts []plaid.AccountBase
	err := common.WithRetry(ctx, func() error {
		request := plaid.NewAccountsGetRequest(c.accessToken)
		resp, _, err := c.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			return c.classify(err, "failed to fetch accounts")
		}
		accounts = resp.GetAccounts()
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.GetAccountId())
	}
	return ids, nil
}

// classify marks rate limits as retryable and unwraps Plaid API errors.
func (c *Client) classify(err error, msg string) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
		c.logger.Warn("Rate limit hit, will retry", "error", plaidErr.ErrorMessage)
		return &common.RetryableError{Err: fmt.Errorf("%w: %s", common.ErrRateLimit, plaidErr.ErrorMessage), Retryable: true}
	}
	return &common.RetryableError{
		Err:       fmt.Errorf("plaid API error: %s - %s", plaidErr.ErrorCode, plaidErr.ErrorMessage),
		Retryable: false,
	}
}

// rawTransaction is the subset of a Plaid transaction the importer reads.
type rawTransaction struct {
	ID           string
	AccountID    string
	Date         string
	Name         string
	MerchantName string
	Amount       float64
}

func fromPlaid(pt plaid.Transaction) rawTransaction {
	return rawTransaction{
		ID:           pt.GetTransactionId(),
		AccountID:    pt.GetAccountId(),
		Date:         pt.GetDate(),
		Name:         pt.GetName(),
		MerchantName: pt.GetMerchantName(),
		Amount:       pt.GetAmount(),
	}
}

// imported converts to the ledger convention. Plaid reports money leaving
// the account as positive.
func (r rawTransaction) imported() (model.Imported, error) {
	date, err := calendar.ParseDate(r.Date)
	if err != nil {
		return model.Imported{}, err
	}

	info := r.MerchantName
	if info == "" {
		info = r.Name
	}

	return model.Imported{
		Date:       date,
		Info:       cleanMerchantName(info),
		ExternalID: r.ID,
		SourceID:   r.AccountID,
		Amount:     -money.ToCents(decimal.NewFromFloat(r.Amount)),
	}, nil
}

var merchantSuffixes = []string{
	" Llc",
	" Inc",
	" Corp",
	" Corporation",
	" Company",
	" Co",
	" Ltd",
	" Limited",
}

// cleanMerchantName title-cases a name and strips trailing reference
// numbers and company suffixes.
func cleanMerchantName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		runes := []rune(word)
		for j := range runes {
			if j == 0 || !isLetter(runes[j-1]) {
				runes[j] = toUpper(runes[j])
			}
		}
		words[i] = string(runes)
	}

	// "MERCHANT 123456789"
	if n := len(words); n > 1 && len(words[n-1]) > 5 && isAllDigits(words[n-1]) {
		words = words[:n-1]
	}
	name = strings.Join(words, " ")

	for changed := true; changed; {
		changed = false
		for _, suffix := range merchantSuffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSuffix(name, suffix)
				changed = true
			}
		}
	}
	return strings.TrimSpace(name)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 32
	}
	return r
}

var _ TransactionFetcher = (*Client)(nil)
