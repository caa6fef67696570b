package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/Veraticus/cashflow/internal/config"
	"github.com/Veraticus/cashflow/internal/sheets"
	"github.com/spf13/cobra"
)

func exportCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Publish reports outside the terminal",
	}

	cmd.AddCommand(exportSheetsCmd(env))

	return cmd
}

func exportSheetsCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write the budget and balance reports to Google Sheets",
		Long: `Replace the Budget and Balance tabs of the configured spreadsheet with the
reports for a period. The spreadsheet is created when sheets.spreadsheet_id
is not set.

Authenticate with a service account (sheets.service_account_path) or run
'cashflow auth sheets' once to store an OAuth token.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			month, year, err := readPeriod(cmd)
			if err != nil {
				return err
			}

			sheetsCfg, err := config.LoadSheetsConfig(env.v)
			if err != nil {
				return fmt.Errorf("google sheets is not configured: %w", err)
			}

			s, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			writer, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default().With("component", "sheets"))
			if err != nil {
				return err
			}

			report, err := exportReport(ctx, s, writer, month, year)
			if err != nil {
				return err
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %s: %d budget bars, %d balance rows", report.Period(), len(report.Bars), len(report.Rows))))
			return nil
		},
	}

	addPeriodFlags(cmd)
	return cmd
}

// exportReport computes both reports for the period and hands them to w.
func exportReport(ctx context.Context, s *session, w sheets.ReportWriter, month, year int) (*sheets.Report, error) {
	bars, err := s.eng.BudgetReport(ctx, s.reg, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to build budget report: %w", err)
	}
	roll, err := s.eng.BalanceReport(ctx, s.reg, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to build balance report: %w", err)
	}
	if roll.Warnings != nil {
		slog.Warn("balance report has warnings", "warnings", roll.Warnings.Error())
	}

	report := &sheets.Report{
		Generated: time.Now(),
		Bars:      bars,
		Rows:      roll.Rows,
		Month:     month,
		Year:      year,
	}
	if err := w.Write(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to export report: %w", err)
	}
	return report, nil
}
