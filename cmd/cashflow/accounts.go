package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/Veraticus/cashflow/internal/engine"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/spf13/cobra"
)

func accountsCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage accounts",
		Long: `List, add, update and delete the accounts that hold transactions.

Accounts excluded from budget do not count towards budget actuals. Accounts
excluded from total are left out of the grand total and the balance forecast.`,
	}

	cmd.AddCommand(listAccountsCmd(env))
	cmd.AddCommand(addAccountCmd(env))
	cmd.AddCommand(setAccountTypeCmd(env))
	cmd.AddCommand(accountFlagCmd(env, "close", "Mark an account closed (or reopen it)", func(a *model.Account, on bool) { a.Closed = on }))
	cmd.AddCommand(accountFlagCmd(env, "exclude-budget", "Exclude an account from budget actuals", func(a *model.Account, on bool) { a.ExcludeFromBudget = on }))
	cmd.AddCommand(accountFlagCmd(env, "exclude-total", "Exclude an account from totals and forecasts", func(a *model.Account, on bool) { a.ExcludeFromTotal = on }))
	cmd.AddCommand(deleteAccountCmd(env))

	return cmd
}

func accountTypeHelp() string {
	names := make([]string, len(model.AccountTypes))
	for i, t := range model.AccountTypes {
		names[i] = fmt.Sprintf("%q", t)
	}
	return strings.Join(names, ", ")
}

func parseAccountType(s string) (model.AccountType, error) {
	for _, t := range model.AccountTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown account type %q (valid: %s)", s, accountTypeHelp())
}

func listAccountsCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List open accounts grouped by type",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := env.initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.GetAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to get accounts: %w", err)
			}

			if len(accounts) == 0 {
				printLine(cmd.OutOrStdout(), cli.InfoStyle.Render("No accounts found. Use 'cashflow accounts add' to create one."))
				return nil
			}

			return cli.RenderAccounts(cmd.OutOrStdout(), engine.SummarizeAccounts(accounts))
		},
	}
}

func addAccountCmd(env *appEnv) *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Example: `  cashflow accounts add "Checking"
  cashflow accounts add "Visa" --type "Credit Card"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			accountType, err := parseAccountType(typeName)
			if err != nil {
				return err
			}

			store, err := env.initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			acc, err := store.CreateAccount(ctx, args[0], accountType)
			if err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created account %q (id %d, %s)", acc.Name, acc.ID, acc.Type)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", string(model.AccountTypeBank), "account type: "+accountTypeHelp())
	return cmd
}

func setAccountTypeCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "set-type <account> <type>",
		Short: "Change an account's type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			accountType, err := parseAccountType(args[1])
			if err != nil {
				return err
			}

			store, err := env.initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			acc, err := resolveAccount(ctx, store, args[0])
			if err != nil {
				return err
			}
			acc.Type = accountType
			if err := store.UpdateAccount(ctx, acc); err != nil {
				return fmt.Errorf("failed to update account: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Account %q is now %s", acc.Name, acc.Type)))
			return nil
		},
	}
}

// accountFlagCmd builds a command toggling one boolean account setting. The
// optional second argument is true or false and defaults to true.
func accountFlagCmd(env *appEnv, use, short string, set func(*model.Account, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <account> [true|false]",
		Short: short,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			on := true
			if len(args) == 2 {
				v, err := strconv.ParseBool(args[1])
				if err != nil {
					return fmt.Errorf("invalid value %q: want true or false", args[1])
				}
				on = v
			}

			store, err := env.initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			acc, err := resolveAccount(ctx, store, args[0])
			if err != nil {
				return err
			}
			set(acc, on)
			if err := store.UpdateAccount(ctx, acc); err != nil {
				return fmt.Errorf("failed to update account: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated account %q: %s=%t", acc.Name, use, on)))
			return nil
		},
	}
}

func deleteAccountCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <account>",
		Short: "Delete an account without transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := env.initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			acc, err := resolveAccount(ctx, store, args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteAccount(ctx, acc.ID); err != nil {
				return fmt.Errorf("failed to delete account: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted account %q", acc.Name)))
			return nil
		},
	}
}
