package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	err   error
	cats  []model.Category
	calls int
}

func (f *fakeSource) GetCategories(_ context.Context) ([]model.Category, error) {
	f.calls++
	return f.cats, f.err
}

func TestRegistry_AllOrder(t *testing.T) {
	src := &fakeSource{cats: []model.Category{
		{ID: 1, Name: "Home"},
		{ID: 2, Name: "Rent", Parent: "Home", ParentID: 1},
		{ID: 5, Name: "Food"},
	}}

	reg, err := Load(context.Background(), src)
	require.NoError(t, err)

	all := reg.All(true)
	require.Len(t, all, 4)
	assert.Equal(t, 1, all[0].ID)
	assert.Equal(t, 2, all[1].ID)
	assert.Equal(t, 5, all[2].ID)
	assert.Equal(t, model.UncategorizedID, all[3].ID, "reserved entry last")

	assert.Len(t, reg.All(false), 3)
}

func TestRegistry_Lookup(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{cats: []model.Category{{ID: 1, Name: "Home"}}}

	reg, err := Load(ctx, src)
	require.NoError(t, err)
	require.Equal(t, 1, src.calls)

	t.Run("cached", func(t *testing.T) {
		c, err := reg.Lookup(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Home", c.Name)
		assert.Equal(t, 1, src.calls)
	})

	t.Run("reserved id never hits the store", func(t *testing.T) {
		c, err := reg.Lookup(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, model.UncategorizedLabel, c.DisplayName())
		assert.Equal(t, 1, src.calls)
	})

	t.Run("read-through picks up new categories", func(t *testing.T) {
		src.cats = append(src.cats, model.Category{ID: 2, Name: "Rent", Parent: "Home", ParentID: 1})
		c, err := reg.Lookup(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "Home::Rent", c.DisplayName())
		assert.Equal(t, 2, src.calls)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := reg.Lookup(ctx, 99)
		require.ErrorIs(t, err, common.ErrNotFound)
		assert.True(t, IsNotFound(err))
	})
}

func TestRegistry_LoadError(t *testing.T) {
	_, err := Load(context.Background(), &fakeSource{err: errors.New("disk gone")})
	require.Error(t, err)
}

func TestRegistry_FindByDisplayName(t *testing.T) {
	reg, err := Load(context.Background(), &fakeSource{cats: []model.Category{
		{ID: 1, Name: "Home"},
		{ID: 2, Name: "Rent", Parent: "Home", ParentID: 1},
	}})
	require.NoError(t, err)

	c, err := reg.FindByDisplayName("Home::Rent")
	require.NoError(t, err)
	assert.Equal(t, 2, c.ID)

	c, err = reg.FindByDisplayName(model.UncategorizedLabel)
	require.NoError(t, err)
	assert.Equal(t, 0, c.ID)

	_, err = reg.FindByDisplayName("Rent")
	require.ErrorIs(t, err, common.ErrNotFound)
}
