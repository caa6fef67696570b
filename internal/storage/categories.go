package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/mattn/go-sqlite3"
)

const categoryColumns = `
	SELECT c.id, c.name, COALESCE(c.parent_id, 0), COALESCE(p.name, '')
	FROM categories c
	LEFT JOIN categories p ON p.id = c.parent_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (model.Category, error) {
	var cat model.Category
	err := row.Scan(&cat.ID, &cat.Name, &cat.ParentID, &cat.Parent)
	return cat, err
}

// GetCategories returns all categories ordered by id, parents and
// subcategories interleaved in creation order.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, categoryColumns+` ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoryByID returns a category by its ID.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	cat, err := scanCategory(s.db.QueryRowContext(ctx, categoryColumns+` WHERE c.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &cat, nil
}

// CreateCategory creates a new top-level category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `INSERT INTO categories (name, parent_id) VALUES (?, NULL)`, name)
	if err != nil {
		return nil, translateConstraint(err, fmt.Sprintf("category %q", name))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	slog.Info("created new category", "name", name, "id", id)
	return &model.Category{ID: int(id), Name: name}, nil
}

// CreateSubcategory creates a category under an existing top-level category.
func (s *SQLiteStorage) CreateSubcategory(ctx context.Context, parentID int, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	parent, err := s.GetCategoryByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.IsSubcategory() {
		return nil, fmt.Errorf("%w: %q is itself a subcategory", ErrInvalidCategory, parent.DisplayName())
	}

	result, err := s.db.ExecContext(ctx, `INSERT INTO categories (name, parent_id) VALUES (?, ?)`, name, parentID)
	if err != nil {
		return nil, translateConstraint(err, fmt.Sprintf("subcategory %q under %q", name, parent.Name))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	cat := &model.Category{ID: int(id), Name: name, Parent: parent.Name, ParentID: parent.ID}
	slog.Info("created new subcategory", "name", cat.DisplayName(), "id", id)
	return cat, nil
}

// RenameCategory changes a category's name.
func (s *SQLiteStorage) RenameCategory(ctx context.Context, id int, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return translateConstraint(err, fmt.Sprintf("category %q", name))
	}
	return requireAffected(result, fmt.Sprintf("category %d", id))
}

// DeleteCategory removes a category. Categories with subcategories, and
// categories referenced by transactions or budget records, are refused.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	hasChildren, err := s.exists(ctx, `SELECT 1 FROM categories WHERE parent_id = ? LIMIT 1`, id)
	if err != nil {
		return fmt.Errorf("failed to check subcategories: %w", err)
	}
	if hasChildren {
		return fmt.Errorf("category %d: %w", id, ErrCategoryHasChildren)
	}

	inUse, err := s.exists(ctx, `
		SELECT 1 FROM transactions WHERE category_id = ?
		UNION ALL
		SELECT 1 FROM records WHERE category_id = ?
		LIMIT 1`, id, id)
	if err != nil {
		return fmt.Errorf("failed to check category usage: %w", err)
	}
	if inUse {
		return fmt.Errorf("category %d: %w", id, ErrCategoryInUse)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if err := requireAffected(result, fmt.Sprintf("category %d", id)); err != nil {
		return err
	}

	slog.Info("deleted category", "id", id)
	return nil
}

func validateCategoryName(name string) error {
	if err := validateString(name, "name"); err != nil {
		return err
	}
	if strings.Contains(name, "::") {
		return fmt.Errorf("%w: name cannot contain '::'", ErrInvalidCategory)
	}
	return nil
}

// translateConstraint maps unique constraint failures to ErrDuplicateEntry.
func translateConstraint(err error, what string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%s: %w", what, common.ErrDuplicateEntry)
	}
	return fmt.Errorf("failed to write %s: %w", what, err)
}

// requireAffected turns a no-op update or delete into ErrNotFound.
func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, common.ErrNotFound)
	}
	return nil
}
