package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// appEnv carries the settings resolved by the root command to every
// subcommand.
type appEnv struct {
	v       *viper.Viper
	cfg     *config.Config
	cfgFile string
}

func newRootCmd() *cobra.Command {
	env := &appEnv{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "cashflow",
		Short: "💸 Personal budget and cash-flow forecasting",
		Long: `cashflow keeps a ledger of accounts and transactions, compares them against
monthly budget rules and projects the running balance forward.

Budget rules come in four shapes: Monthly, Point, Daily and Weekly.`,
		SilenceUsage:      true,
		PersistentPreRunE: env.initConfig,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&env.cfgFile, "config", "", "config file (default: $HOME/.config/cashflow/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "database file (default: $HOME/.local/share/cashflow/cashflow.db)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	// Bind flags to viper
	_ = env.v.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	_ = env.v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = env.v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Add commands
	rootCmd.AddCommand(accountsCmd(env))
	rootCmd.AddCommand(authCmd(env))
	rootCmd.AddCommand(budgetCmd(env))
	rootCmd.AddCommand(categoriesCmd(env))
	rootCmd.AddCommand(exportCmd(env))
	rootCmd.AddCommand(forecastCmd(env))
	rootCmd.AddCommand(importCmd(env))
	rootCmd.AddCommand(migrateCmd(env))
	rootCmd.AddCommand(reportCmd(env))
	rootCmd.AddCommand(snapshotCmd(env))
	rootCmd.AddCommand(transactionsCmd(env))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (e *appEnv) initConfig(cmd *cobra.Command, _ []string) error {
	// .env values only fill variables that are not already set.
	if err := config.LoadEnvFiles(); err != nil {
		return err
	}

	config.SetDefaults(e.v)
	if err := config.ReadFile(e.v, e.cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(e.v)
	if err != nil {
		return err
	}
	e.cfg = cfg

	if err := common.SetupLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	slog.Debug("configuration loaded", "database", cfg.Database, "config_file", e.v.ConfigFileUsed())
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cashflow %s\n", version)
		},
	}
}
