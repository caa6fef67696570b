package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/spf13/cobra"
)

func forecastCmd(env *appEnv) *cobra.Command {
	var cutoffFlag string

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "List the events budget records predict for a period",
		Long: `Expand budget records into dated events. Nothing dated before the cutoff
is predicted; the cutoff defaults to the date of the latest transaction, the
last day that is already realized.`,
		Example: `  cashflow forecast --month 4 --year 2024
  cashflow forecast --month 0 --cutoff 2024-06-30`,
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

			var cutoff time.Time
			if cutoffFlag != "" {
				if cutoff, err = calendar.ParseDate(cutoffFlag); err != nil {
					return err
				}
			} else {
				if cutoff, err = s.store.LastTransactionDate(ctx); err != nil {
					return fmt.Errorf("failed to find the latest transaction: %w", err)
				}
				// An empty ledger has nothing realized; start at the window.
				if cutoff.Equal(calendar.Epoch) {
					cutoff, _, _ = calendar.Bounds(month, year)
				}
			}

			forecast, err := s.eng.Predict(ctx, s.reg, month, year, cutoff)
			if err != nil {
				return err
			}

			var preds []model.Prediction
			for forecast.Next() {
				preds = append(preds, forecast.Prediction())
			}
			if err := forecast.Err(); err != nil {
				return fmt.Errorf("forecast failed: %w", err)
			}

			out := cmd.OutOrStdout()
			printLine(out, cli.FormatTitle(fmt.Sprintf("Forecast %s from %s", calendar.Label(month, year), cutoff.Format(calendar.DateLayout))))
			if len(preds) == 0 {
				printLine(out, cli.SubtleStyle.Render("Nothing predicted."))
			} else if err := cli.RenderPredictions(out, preds); err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), forecast.Warnings())
			return nil
		},
	}

	addPeriodFlags(cmd)
	cmd.Flags().StringVar(&cutoffFlag, "cutoff", "", "first date to predict (YYYY-MM-DD, default: latest transaction)")
	return cmd
}
