package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/Veraticus/cashflow/internal/config"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
	"github.com/Veraticus/cashflow/internal/ofx"
	"github.com/Veraticus/cashflow/internal/plaid"
	"github.com/Veraticus/cashflow/internal/storage"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// parseWorkers bounds how many statement files are parsed at once.
const parseWorkers = 4

// saveBatchSize is how many transactions go into one database transaction
// during an import; the progress bar advances per batch.
const saveBatchSize = 100

func importCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from files or a bank connection",
		Long: `Import transactions into an account. Transactions already imported are
skipped, so running an import twice is safe. A snapshot is taken before
anything is written.`,
	}

	cmd.AddCommand(importOFXCmd(env))
	cmd.AddCommand(importPlaidCmd(env))

	return cmd
}

// importOptions are the flags shared by every import source.
type importOptions struct {
	account  string
	category string
	dryRun   bool
}

func (o *importOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.account, "account", "a", "", "target account (name or id)")
	cmd.Flags().StringVarP(&o.category, "category", "c", "", "category for every imported transaction (default: uncategorized)")
	cmd.Flags().BoolVarP(&o.dryRun, "dry-run", "d", false, "preview the import without saving")
	_ = cmd.MarkFlagRequired("account")
}

func importOFXCmd(env *appEnv) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "ofx <files...>",
		Short: "Import OFX/QFX files exported from your bank",
		Example: `  # Import a single file
  cashflow import ofx --account Checking ~/Downloads/checking_jan_2024.qfx

  # Import every statement in a directory
  cashflow import ofx --account Visa ~/Downloads/Visa/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := handler.HandleInterrupts(cmd.Context(), "Nothing after the last completed batch was saved; run the import again to resume.")

			imported, err := parseOFXFiles(ctx, ofx.NewParser(), files)
			if err != nil {
				return err
			}

			return env.runImport(ctx, cmd, opts, "ofx", imported)
		},
	}

	opts.register(cmd)
	return cmd
}

func importPlaidCmd(env *appEnv) *cobra.Command {
	var (
		opts     importOptions
		since    string
		until    string
		lookback int
	)

	cmd := &cobra.Command{
		Use:   "plaid",
		Short: "Fetch posted transactions from Plaid",
		Long: `Fetch posted transactions for the configured Plaid item. Credentials come
from plaid.* in the config file or PLAID_CLIENT_ID, PLAID_SECRET, PLAID_ENV
and PLAID_ACCESS_TOKEN.`,
		Example: `  cashflow import plaid --account Checking --days 30
  cashflow import plaid --account Checking --since 2024-01-01 --until 2024-03-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			end := calendar.Truncate(time.Now())
			start := end.AddDate(0, 0, -lookback)
			var err error
			if since != "" {
				if start, err = calendar.ParseDate(since); err != nil {
					return err
				}
			}
			if until != "" {
				if end, err = calendar.ParseDate(until); err != nil {
					return err
				}
			}
			if end.Before(start) {
				return fmt.Errorf("--until %s is before --since %s", end.Format(calendar.DateLayout), start.Format(calendar.DateLayout))
			}

			plaidCfg, err := config.LoadPlaidConfig(env.v)
			if err != nil {
				return fmt.Errorf("plaid is not configured: %w", err)
			}
			client, err := plaid.NewClient(*plaidCfg)
			if err != nil {
				return err
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := handler.HandleInterrupts(cmd.Context(), "Run the import again; duplicates are skipped.")

			imported, err := fetchPlaid(ctx, client, start, end)
			if err != nil {
				return err
			}
			return env.runImport(ctx, cmd, opts, "plaid", imported)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&since, "since", "", "first date to fetch (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "last date to fetch (YYYY-MM-DD, default: today)")
	cmd.Flags().IntVar(&lookback, "days", 30, "days to fetch when --since is not set")
	return cmd
}

var errNoPlaidAccounts = errors.New("plaid item has no linked accounts")

func fetchPlaid(ctx context.Context, fetcher plaid.TransactionFetcher, start, end time.Time) ([]model.Imported, error) {
	accounts, err := fetcher.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, errNoPlaidAccounts
	}

	slog.Info("Fetching transactions from Plaid",
		"accounts", len(accounts),
		"start", start.Format(calendar.DateLayout),
		"end", end.Format(calendar.DateLayout))

	imported, err := fetcher.GetTransactions(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return imported, nil
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				slog.Warn("No files found matching pattern", "pattern", pattern)
				continue
			}
			matches = []string{pattern}
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

func parseOFXFile(ctx context.Context, parser *ofx.Parser, path string) ([]model.Imported, error) {
	f, err := os.Open(path) // #nosec G304 -- user-selected statement file
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	txns, err := parser.Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return txns, nil
}

// parseOFXFiles parses files concurrently and concatenates the results in
// argument order. The first failure cancels the remaining files.
func parseOFXFiles(ctx context.Context, parser *ofx.Parser, files []string) ([]model.Imported, error) {
	results := make([][]model.Imported, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parseWorkers)
	for i, path := range files {
		g.Go(func() error {
			txns, err := parseOFXFile(gctx, parser, path)
			if err != nil {
				return err
			}
			if len(txns) == 0 {
				slog.Warn("No transactions found in file", "file", filepath.Base(path))
			} else {
				slog.Info("Processed file", "file", filepath.Base(path), "transactions", len(txns))
			}
			results[i] = txns
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var imported []model.Imported
	for _, txns := range results {
		imported = append(imported, txns...)
	}
	return imported, nil
}

// bindImported attaches the batch to an account and category, dropping
// repeats of the same source transaction (overlapping statement files).
func bindImported(imported []model.Imported, accountID, categoryID int) []model.Transaction {
	seen := make(map[string]bool, len(imported))
	txns := make([]model.Transaction, 0, len(imported))
	for _, imp := range imported {
		txn := imp.Bind(accountID)
		key := txn.Hash
		if imp.ExternalID != "" {
			key = imp.SourceID + "/" + imp.ExternalID
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		txn.CategoryID = categoryID
		txns = append(txns, txn)
	}
	return txns
}

// saveInBatches writes txns batch by batch and returns how many were new.
// advance is called with the size of every committed batch.
func saveInBatches(ctx context.Context, store *storage.SQLiteStorage, txns []model.Transaction, advance func(int)) (int, error) {
	saved := 0
	for start := 0; start < len(txns); start += saveBatchSize {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		end := min(start+saveBatchSize, len(txns))
		n, err := store.SaveTransactions(ctx, txns[start:end])
		if err != nil {
			return saved, err
		}
		saved += n
		advance(end - start)
	}
	return saved, nil
}

func (e *appEnv) runImport(ctx context.Context, cmd *cobra.Command, opts importOptions, source string, imported []model.Imported) error {
	out := cmd.OutOrStdout()
	if len(imported) == 0 {
		printLine(out, cli.FormatWarning("No transactions found to import."))
		return nil
	}

	s, err := e.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	acc, err := resolveAccount(ctx, s.store, opts.account)
	if err != nil {
		return err
	}
	categoryID := model.UncategorizedID
	if opts.category != "" {
		cat, err := s.resolveCategory(ctx, opts.category)
		if err != nil {
			return err
		}
		categoryID = cat.ID
	}

	txns := bindImported(imported, acc.ID, categoryID)
	summarizeImport(cmd, acc, txns)

	if opts.dryRun {
		printLine(out, cli.FormatInfo("Dry run complete - no data saved."))
		return cli.RenderTransactions(out, txns[:min(len(txns), 5)], s.categoryName(ctx))
	}

	manager, err := s.store.NewSnapshotManager()
	if err != nil {
		return fmt.Errorf("failed to create snapshot manager: %w", err)
	}
	snap, err := manager.Auto(ctx, "import-"+source)
	if err != nil {
		return fmt.Errorf("failed to snapshot before import: %w", err)
	}

	bar := cli.NewImportProgress(cmd.ErrOrStderr(), len(txns), "Saving transactions")
	saved, err := saveInBatches(ctx, s.store, txns, func(n int) { _ = bar.Add(n) })
	if err != nil {
		printLine(out, cli.FormatError(fmt.Sprintf("Import stopped after %d new transactions. Undo with: cashflow snapshot restore %s", saved, snap.ID)))
		return fmt.Errorf("import failed: %w", err)
	}

	printLine(out, cli.FormatSuccess(fmt.Sprintf("Imported %d new transactions into %q (%d already present)", saved, acc.Name, len(txns)-saved)))
	return nil
}

func summarizeImport(cmd *cobra.Command, acc *model.Account, txns []model.Transaction) {
	if len(txns) == 0 {
		return
	}
	first, last := txns[0].Date, txns[0].Date
	var total money.Cents
	for _, t := range txns {
		if t.Date.Before(first) {
			first = t.Date
		}
		if t.Date.After(last) {
			last = t.Date
		}
		total += t.Amount
	}

	printf(cmd.OutOrStdout(), "%s %d transactions for %q from %s to %s, net %s\n",
		cli.InfoIcon,
		len(txns),
		acc.Name,
		first.Format(calendar.DateLayout),
		last.Format(calendar.DateLayout),
		total)
}
