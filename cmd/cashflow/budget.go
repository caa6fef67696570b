package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
	"github.com/spf13/cobra"
)

func budgetCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budget",
		Aliases: []string{"records"},
		Short:   "Manage budget records",
		Long: `List, add, update, delete and copy budget records.

Each record budgets a signed amount for one category in one month:

  Monthly  the whole month; whatever is not realized yet is predicted on
           the last day
  Point    a single event on --day
  Daily    spread evenly over every day of the month
  Weekly   spread over every occurrence of weekday --day (1=Monday..7=Sunday)`,
	}

	cmd.AddCommand(listRecordsCmd(env))
	cmd.AddCommand(addRecordCmd(env))
	cmd.AddCommand(updateRecordCmd(env))
	cmd.AddCommand(deleteRecordCmd(env))
	cmd.AddCommand(copyRecordsCmd(env))

	return cmd
}

func parseRuleType(s string) (model.RuleType, error) {
	for _, t := range model.RuleTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown rule type %q (valid: Monthly, Point, Daily, Weekly)", s)
}

// parseYearMonth reads "2024-03".
func parseYearMonth(s string) (calendar.YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return calendar.YearMonth{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return calendar.Of(t), nil
}

func listRecordsCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the budget records of a period",
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

			records, err := s.store.GetRecords(ctx, month, year)
			if err != nil {
				return fmt.Errorf("failed to get budget records: %w", err)
			}
			if len(records) == 0 {
				printLine(cmd.OutOrStdout(), cli.SubtleStyle.Render("No budget records in "+calendar.Label(month, year)+"."))
				return nil
			}
			return cli.RenderRecords(cmd.OutOrStdout(), records, s.categoryName(ctx))
		},
	}

	addPeriodFlags(cmd)
	return cmd
}

func addRecordCmd(env *appEnv) *cobra.Command {
	var day int

	cmd := &cobra.Command{
		Use:   "add <category> <type> <amount>",
		Short: "Add a budget record",
		Long: `Add a budget record. Put flags first and separate the arguments with --
so a negative amount is not read as a flag.`,
		Example: `  cashflow budget add --month 3 --year 2024 -- Food::Groceries Monthly -400
  cashflow budget add --month 3 --day 1 -- Home::Rent Point -1200
  cashflow budget add --month 3 --day 5 -- Food::Dining Weekly -80`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			month, year, err := readPeriod(cmd)
			if err != nil {
				return err
			}
			if month == calendar.WholeYear {
				return fmt.Errorf("a budget record belongs to a single month; pass --month 1-12")
			}
			ruleType, err := parseRuleType(args[1])
			if err != nil {
				return err
			}
			amount, err := money.Parse(args[2])
			if err != nil {
				return err
			}

			s, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			cat, err := s.resolveCategory(ctx, args[0])
			if err != nil {
				return err
			}

			record := model.BudgetRecord{
				Type:       ruleType,
				CategoryID: cat.ID,
				Day:        day,
				Month:      month,
				Year:       year,
				Amount:     amount,
			}
			if err := s.store.CreateRecord(ctx, &record); err != nil {
				return fmt.Errorf("failed to create budget record: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s budget of %s for %q in %s (id %d)",
				record.Type, record.Amount, cat.DisplayName(), calendar.Label(month, year), record.ID)))
			return nil
		},
	}

	addPeriodFlags(cmd)
	cmd.Flags().IntVarP(&day, "day", "d", 0, "day of month (Point) or weekday 1-7 (Weekly)")
	return cmd
}

func updateRecordCmd(env *appEnv) *cobra.Command {
	var (
		category string
		ruleType string
		amount   string
		day      int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a budget record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "budget record")
			if err != nil {
				return err
			}

			s, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			record, err := s.store.GetRecord(ctx, id)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("category") {
				cat, err := s.resolveCategory(ctx, category)
				if err != nil {
					return err
				}
				record.CategoryID = cat.ID
			}
			if cmd.Flags().Changed("type") {
				if record.Type, err = parseRuleType(ruleType); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("amount") {
				if record.Amount, err = money.Parse(amount); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("day") {
				record.Day = day
			}

			if err := s.store.UpdateRecord(ctx, record); err != nil {
				return fmt.Errorf("failed to update budget record: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated budget record %d", record.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "new category (Parent::Name or id)")
	cmd.Flags().StringVarP(&ruleType, "type", "t", "", "new rule type")
	cmd.Flags().StringVar(&amount, "amount", "", "new signed amount")
	cmd.Flags().IntVarP(&day, "day", "d", 0, "new day or weekday")
	return cmd
}

func deleteRecordCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a budget record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "budget record")
			if err != nil {
				return err
			}

			store, err := env.initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRecord(ctx, id); err != nil {
				return fmt.Errorf("failed to delete budget record: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted budget record %d", id)))
			return nil
		},
	}
}

func copyRecordsCmd(env *appEnv) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:     "copy",
		Short:   "Copy every budget record of one month into another",
		Example: `  cashflow budget copy --from 2024-03 --to 2024-04`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			src, err := parseYearMonth(from)
			if err != nil {
				return err
			}
			dst, err := parseYearMonth(to)
			if err != nil {
				return err
			}

			store, err := env.initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.CopyRecords(ctx, src, dst)
			if err != nil {
				return fmt.Errorf("failed to copy budget records: %w", err)
			}
			if n == 0 {
				printLine(cmd.OutOrStdout(), cli.FormatWarning(fmt.Sprintf("No budget records in %s to copy", src)))
				return nil
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Copied %d budget records from %s to %s", n, src, dst)))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "source month (YYYY-MM)")
	cmd.Flags().StringVar(&to, "to", "", "target month (YYYY-MM)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
