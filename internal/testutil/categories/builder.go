// Package categories seeds category trees for tests. A builder records the
// categories to create and Build writes them in the order they were added,
// so ids are predictable.
//
// Example usage:
//
//	tree := categories.NewBuilder(t).
//		WithHousehold().
//		WithSubcategory("Travel", "Flights").
//		MustBuild(ctx, store)
package categories

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/cashflow/internal/model"
)

// Store is the subset of the category store the builder writes to.
type Store interface {
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	CreateSubcategory(ctx context.Context, parentID int, name string) (*model.Category, error)
}

// Common category names used across tests.
const (
	Home      = "Home"
	Rent      = "Rent"
	Utilities = "Utilities"
	Food      = "Food"
	Groceries = "Groceries"
	Dining    = "Dining"
	Income    = "Income"
	Salary    = "Salary"
)

type entry struct {
	parent string
	name   string
}

// Builder provides a fluent interface for constructing test categories.
type Builder struct {
	t       *testing.T
	entries []entry
	seen    map[entry]bool
}

// NewBuilder creates a new category builder for the given test.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t, seen: make(map[entry]bool)}
}

func (b *Builder) add(e entry) *Builder {
	if !b.seen[e] {
		b.seen[e] = true
		b.entries = append(b.entries, e)
	}
	return b
}

// WithCategory adds a top-level category.
func (b *Builder) WithCategory(name string) *Builder {
	return b.add(entry{name: name})
}

// WithSubcategory adds a subcategory, creating its parent first if needed.
func (b *Builder) WithSubcategory(parent, name string) *Builder {
	b.add(entry{name: parent})
	return b.add(entry{parent: parent, name: name})
}

// WithHousehold adds the tree most tests start from: Home::Rent,
// Home::Utilities, Food::Groceries, Food::Dining and Income::Salary.
func (b *Builder) WithHousehold() *Builder {
	return b.
		WithSubcategory(Home, Rent).
		WithSubcategory(Home, Utilities).
		WithSubcategory(Food, Groceries).
		WithSubcategory(Food, Dining).
		WithSubcategory(Income, Salary)
}

// Build creates the categories in store and returns them in creation order.
func (b *Builder) Build(ctx context.Context, store Store) (Tree, error) {
	ids := make(map[string]int)
	tree := make(Tree, 0, len(b.entries))

	for _, e := range b.entries {
		var (
			cat *model.Category
			err error
		)
		if e.parent == "" {
			cat, err = store.CreateCategory(ctx, e.name)
		} else {
			cat, err = store.CreateSubcategory(ctx, ids[e.parent], e.name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create category %q: %w", e.name, err)
		}
		if e.parent == "" {
			ids[e.name] = cat.ID
		}
		tree = append(tree, *cat)
	}
	return tree, nil
}

// MustBuild is Build that fails the test on error.
func (b *Builder) MustBuild(ctx context.Context, store Store) Tree {
	b.t.Helper()
	tree, err := b.Build(ctx, store)
	if err != nil {
		b.t.Fatalf("failed to build categories: %v", err)
	}
	return tree
}

// Tree is a collection of created test categories.
type Tree []model.Category

// Find returns the category with the given display name, e.g. "Home::Rent".
func (tr Tree) Find(displayName string) (model.Category, bool) {
	for _, c := range tr {
		if c.DisplayName() == displayName {
			return c, true
		}
	}
	return model.Category{}, false
}

// MustFind returns the category with the given display name or fails the test.
func (tr Tree) MustFind(t *testing.T, displayName string) model.Category {
	t.Helper()
	c, ok := tr.Find(displayName)
	if !ok {
		t.Fatalf("category %q not found in test data", displayName)
	}
	return c
}

// ID is MustFind(...).ID.
func (tr Tree) ID(t *testing.T, displayName string) int {
	t.Helper()
	return tr.MustFind(t, displayName).ID
}
