package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/tui"
	"github.com/Veraticus/cashflow/internal/tui/themes"
	"github.com/spf13/cobra"
)

func reportCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Budget and balance reports",
	}

	cmd.AddCommand(budgetReportCmd(env))
	cmd.AddCommand(balanceReportCmd(env))

	return cmd
}

func budgetReportCmd(env *appEnv) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Compare budget and actual per category",
		Long: `Show one bar per category with budget, actual and what is still expected.

"Error" in the expected column means budget and actual disagree in sign,
for example a refund landing on an expense budget.`,
		Example: `  cashflow report budget --month 3 --year 2024
  cashflow report budget --month 0 --interactive`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			month, year, err := readPeriod(cmd)
			if err != nil {
				return err
			}

			s, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if interactive {
				return runInteractiveBudget(ctx, s, month, year)
			}

			bars, err := s.eng.BudgetReport(ctx, s.reg, month, year)
			if err != nil {
				return fmt.Errorf("failed to build budget report: %w", err)
			}
			return cli.RenderBudget(cmd.OutOrStdout(), calendar.Label(month, year), bars)
		},
	}

	addPeriodFlags(cmd)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse periods in a full-screen view")
	return cmd
}

func runInteractiveBudget(ctx context.Context, s *session, month, year int) error {
	// Loads run on bubbletea's command goroutines and share the registry.
	var mu sync.Mutex
	load := func(month, year int) ([]model.BudgetBar, error) {
		mu.Lock()
		defer mu.Unlock()
		// Categories may have been edited in another terminal.
		if err := s.reg.Refresh(ctx); err != nil {
			return nil, err
		}
		return s.eng.BudgetReport(ctx, s.reg, month, year)
	}

	var opts []tui.Option
	if os.Getenv("NO_COLOR") != "" {
		opts = append(opts, tui.WithTheme(themes.Mono))
	}
	return tui.RunBudget(ctx, load, month, year, opts...)
}

func balanceReportCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Running balance with realized and predicted rows",
		Long: `Show the opening balance, every transaction of the period and the budget
predictions that follow the latest one, with a running total.

Accounts excluded from total are left out.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			month, year, err := readPeriod(cmd)
			if err != nil {
				return err
			}

			s, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			roll, err := s.eng.BalanceReport(ctx, s.reg, month, year)
			if err != nil {
				return fmt.Errorf("failed to build balance report: %w", err)
			}

			out := cmd.OutOrStdout()
			if err := cli.RenderBalance(out, calendar.Label(month, year), roll.Rows); err != nil {
				return err
			}
			printf(out, "\nClosing balance: %s\n", cli.BoldStyle.Render(roll.Closing().Total.StringFixed(2)))
			printWarnings(cmd.ErrOrStderr(), roll.Warnings)
			return nil
		},
	}

	addPeriodFlags(cmd)
	return cmd
}

// printWarnings prints each joined warning on its own line.
func printWarnings(w io.Writer, warnings error) {
	if warnings == nil {
		return
	}
	for _, line := range strings.Split(warnings.Error(), "\n") {
		printLine(w, cli.FormatWarning(line))
	}
}
