package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Veraticus/cashflow/internal/calendar"
	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/engine"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/registry"
	"github.com/Veraticus/cashflow/internal/storage"
	"github.com/spf13/cobra"
)

// session bundles what most commands need: the migrated store, the category
// registry and an engine over both.
type session struct {
	store *storage.SQLiteStorage
	reg   *registry.Registry
	eng   *engine.Engine
}

// initStorage opens the configured database and applies pending migrations.
func (e *appEnv) initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(e.cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (e *appEnv) open(ctx context.Context) (*session, error) {
	store, err := e.initStorage(ctx)
	if err != nil {
		return nil, err
	}

	reg, err := registry.Load(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	return &session{
		store: store,
		reg:   reg,
		eng:   engine.New(store, store),
	}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// categoryName resolves an id for display, falling back to the raw id.
func (s *session) categoryName(ctx context.Context) func(int) string {
	return func(id int) string {
		c, err := s.reg.Lookup(ctx, id)
		if err != nil {
			return fmt.Sprintf("#%d", id)
		}
		return c.DisplayName()
	}
}

// resolveCategory accepts a display name ("Home::Rent") or a numeric id.
func (s *session) resolveCategory(ctx context.Context, ref string) (model.Category, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return s.reg.Lookup(ctx, id)
	}
	return s.reg.FindByDisplayName(ref)
}

// resolveAccount accepts an account name or a numeric id.
func resolveAccount(ctx context.Context, store *storage.SQLiteStorage, ref string) (*model.Account, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return store.GetAccountByID(ctx, id)
	}
	return store.GetAccountByName(ctx, ref)
}

// addPeriodFlags registers --month and --year. The defaults are the current
// month; --month 0 selects the whole year.
func addPeriodFlags(cmd *cobra.Command) {
	now := time.Now()
	cmd.Flags().IntP("month", "m", int(now.Month()), "month (1-12, 0 for the whole year)")
	cmd.Flags().IntP("year", "y", now.Year(), "year")
}

func readPeriod(cmd *cobra.Command) (int, int, error) {
	month, _ := cmd.Flags().GetInt("month")
	year, _ := cmd.Flags().GetInt("year")
	if _, _, err := calendar.Bounds(month, year); err != nil {
		return 0, 0, common.NewUserError("--month must be between 0 and 12", err)
	}
	return month, year, nil
}

func parseID(arg, what string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func printLine(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}
