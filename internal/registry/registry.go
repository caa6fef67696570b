// Package registry caches the category list for report and forecast runs.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/service"
)

// Source is the subset of the category store the registry reads from.
type Source interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
}

// Registry is a read-through cache of categories in storage order. It is
// owned by the caller and passed explicitly to engine operations.
type Registry struct {
	source     Source
	byID       map[int]model.Category
	categories []model.Category
}

var _ Source = (service.CategoryStore)(nil)

// Load reads every category from source.
func Load(ctx context.Context, source Source) (*Registry, error) {
	r := &Registry{source: source}
	if err := r.Refresh(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Refresh reloads the cache from the store.
func (r *Registry) Refresh(ctx context.Context) error {
	cats, err := r.source.GetCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	byID := make(map[int]model.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	r.categories = cats
	r.byID = byID

	slog.Debug("category registry loaded", "count", len(cats))
	return nil
}

// All returns categories in storage order, followed by the reserved
// uncategorized entry when includeUncategorized is set.
func (r *Registry) All(includeUncategorized bool) []model.Category {
	out := make([]model.Category, 0, len(r.categories)+1)
	out = append(out, r.categories...)
	if includeUncategorized {
		out = append(out, model.Uncategorized())
	}
	return out
}

// Lookup resolves an id. Unknown ids trigger one refresh before failing
// with common.ErrNotFound.
func (r *Registry) Lookup(ctx context.Context, id int) (model.Category, error) {
	if id == model.UncategorizedID {
		return model.Uncategorized(), nil
	}
	if c, ok := r.byID[id]; ok {
		return c, nil
	}

	if err := r.Refresh(ctx); err != nil {
		return model.Category{}, err
	}
	if c, ok := r.byID[id]; ok {
		return c, nil
	}
	return model.Category{}, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
}

// FindByDisplayName resolves "Parent::Name", a top-level name, or the
// reserved uncategorized label.
func (r *Registry) FindByDisplayName(name string) (model.Category, error) {
	if name == model.UncategorizedLabel {
		return model.Uncategorized(), nil
	}
	for _, c := range r.categories {
		if c.DisplayName() == name {
			return c, nil
		}
	}
	return model.Category{}, fmt.Errorf("category %q: %w", name, common.ErrNotFound)
}

// IsNotFound reports whether err is a missing-category failure.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
