package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/model"
)

const accountColumns = `
	SELECT a.id, a.name, a.type, a.closed, a.exclude_from_budget, a.exclude_from_total,
		COALESCE((SELECT SUM(t.amount) FROM transactions t WHERE t.account_id = a.id), 0)
	FROM accounts a`

func scanAccount(row rowScanner) (model.Account, error) {
	var acc model.Account
	err := row.Scan(&acc.ID, &acc.Name, &acc.Type, &acc.Closed,
		&acc.ExcludeFromBudget, &acc.ExcludeFromTotal, &acc.Balance)
	return acc, err
}

// GetAccounts returns every account with its current balance.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, accountColumns+` ORDER BY a.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// GetAccountByID returns an account by its ID.
func (s *SQLiteStorage) GetAccountByID(ctx context.Context, id int) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAccount(ctx, accountColumns+` WHERE a.id = ?`, id, fmt.Sprintf("account %d", id))
}

// GetAccountByName returns an account by its name.
func (s *SQLiteStorage) GetAccountByName(ctx context.Context, name string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.getAccount(ctx, accountColumns+` WHERE a.name = ?`, name, fmt.Sprintf("account %q", name))
}

func (s *SQLiteStorage) getAccount(ctx context.Context, query string, arg any, what string) (*model.Account, error) {
	acc, err := scanAccount(s.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", what, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return &acc, nil
}

// CreateAccount creates a new open account with no exclusions.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, name string, accountType model.AccountType) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateAccountType(accountType); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `INSERT INTO accounts (name, type) VALUES (?, ?)`, name, accountType)
	if err != nil {
		return nil, translateConstraint(err, fmt.Sprintf("account %q", name))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get account ID: %w", err)
	}

	slog.Info("created new account", "name", name, "type", accountType, "id", id)
	return &model.Account{ID: int(id), Name: name, Type: accountType}, nil
}

// UpdateAccount stores an account's name, type and flags. Balance is derived
// and ignored.
func (s *SQLiteStorage) UpdateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if err := validateString(account.Name, "name"); err != nil {
		return err
	}
	if err := validateAccountType(account.Type); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, type = ?, closed = ?, exclude_from_budget = ?, exclude_from_total = ?
		WHERE id = ?`,
		account.Name, account.Type, account.Closed, account.ExcludeFromBudget, account.ExcludeFromTotal, account.ID)
	if err != nil {
		return translateConstraint(err, fmt.Sprintf("account %q", account.Name))
	}
	return requireAffected(result, fmt.Sprintf("account %d", account.ID))
}

// DeleteAccount removes an account that has no transactions.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	inUse, err := s.exists(ctx, `SELECT 1 FROM transactions WHERE account_id = ? LIMIT 1`, id)
	if err != nil {
		return fmt.Errorf("failed to check account usage: %w", err)
	}
	if inUse {
		return fmt.Errorf("account %d: %w", id, ErrAccountInUse)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if err := requireAffected(result, fmt.Sprintf("account %d", id)); err != nil {
		return err
	}

	slog.Info("deleted account", "id", id)
	return nil
}
