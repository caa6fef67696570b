package main

import (
	"fmt"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/money"
	"github.com/Veraticus/cashflow/internal/service"
	"github.com/spf13/cobra"
)

func transactionsCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txn", "txns"},
		Short:   "Manage transactions",
		Long: `List, add, update and delete realized transactions.

Amounts are signed: money coming in is positive, money going out negative.`,
	}

	cmd.AddCommand(listTransactionsCmd(env))
	cmd.AddCommand(addTransactionCmd(env))
	cmd.AddCommand(updateTransactionCmd(env))
	cmd.AddCommand(deleteTransactionCmd(env))

	return cmd
}

func listTransactionsCmd(env *appEnv) *cobra.Command {
	var (
		account  string
		category string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions of a period",
		Example: `  # Everything on Checking in March 2024
  cashflow transactions list --account Checking --month 3 --year 2024

  # Drill into one budget bar
  cashflow transactions list --category Home::Rent --month 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			month, year, err := readPeriod(cmd)
			if err != nil {
				return err
			}
			first, last, _ := calendar.Bounds(month, year)

			s, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			filter := service.TransactionFilter{StartDate: &first, EndDate: &last}
			if account != "" {
				acc, err := resolveAccount(ctx, s.store, account)
				if err != nil {
					return err
				}
				filter.AccountID = acc.ID
			}
			if category != "" {
				cat, err := s.resolveCategory(ctx, category)
				if err != nil {
					return err
				}
				filter.CategoryID = &cat.ID
			}

			txns, err := s.store.GetTransactions(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}
			if len(txns) == 0 {
				printLine(cmd.OutOrStdout(), cli.SubtleStyle.Render("No transactions in "+calendar.Label(month, year)+"."))
				return nil
			}
			return cli.RenderTransactions(cmd.OutOrStdout(), txns, s.categoryName(ctx))
		},
	}

	addPeriodFlags(cmd)
	cmd.Flags().StringVarP(&account, "account", "a", "", "only this account (name or id)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category (Parent::Name or id)")
	return cmd
}

func addTransactionCmd(env *appEnv) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:     "add <account> <date> <amount> [info]",
		Short:   "Record a transaction",
		Long: `Record a transaction. Put flags first and separate the arguments with --
so a negative amount is not read as a flag.`,
		Example: `  cashflow transactions add --category Home::Rent -- Checking 2024-03-01 -1200 "March rent"
  cashflow transactions add Checking 2024-03-15 2500 "Salary"`,
		Args:    cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			date, err := calendar.ParseDate(args[1])
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

			acc, err := resolveAccount(ctx, s.store, args[0])
			if err != nil {
				return err
			}

			txn := model.Transaction{Date: date, Amount: amount, AccountID: acc.ID}
			if len(args) == 4 {
				txn.Info = args[3]
			}
			if category != "" {
				cat, err := s.resolveCategory(ctx, category)
				if err != nil {
					return err
				}
				txn.CategoryID = cat.ID
			}

			if _, err := s.store.SaveTransactions(ctx, []model.Transaction{txn}); err != nil {
				return fmt.Errorf("failed to save transaction: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s on %q dated %s", amount, acc.Name, args[1])))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category (Parent::Name or id)")
	return cmd
}

func updateTransactionCmd(env *appEnv) *cobra.Command {
	var (
		account  string
		category string
		date     string
		amount   string
		info     string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}

			s, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			txn, err := s.store.GetTransactionByID(ctx, id)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("date") {
				if txn.Date, err = calendar.ParseDate(date); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("amount") {
				if txn.Amount, err = money.Parse(amount); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("info") {
				txn.Info = info
			}
			if cmd.Flags().Changed("account") {
				acc, err := resolveAccount(ctx, s.store, account)
				if err != nil {
					return err
				}
				txn.AccountID = acc.ID
			}
			if cmd.Flags().Changed("category") {
				cat, err := s.resolveCategory(ctx, category)
				if err != nil {
					return err
				}
				txn.CategoryID = cat.ID
			}

			if err := s.store.UpdateTransaction(ctx, txn); err != nil {
				return fmt.Errorf("failed to update transaction: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated transaction %d", txn.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "new date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&amount, "amount", "", "new signed amount")
	cmd.Flags().StringVar(&info, "info", "", "new description")
	cmd.Flags().StringVarP(&account, "account", "a", "", "move to account (name or id)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category (Parent::Name or id)")
	return cmd
}

func deleteTransactionCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}

			store, err := env.initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteTransaction(ctx, id); err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted transaction %d", id)))
			return nil
		},
	}
}
