package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

func newStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func presetCount() int {
	n := 0
	for _, g := range PresetCategories {
		n += 1 + len(g.Subcategories)
	}
	return n
}

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	created, err := Apply(ctx, store, PresetCategories)
	require.NoError(t, err)
	assert.Equal(t, presetCount(), created)

	created, err = Apply(ctx, store, PresetCategories)
	require.NoError(t, err)
	assert.Zero(t, created)

	cats, err := store.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, presetCount())
	for _, c := range cats {
		assert.True(t, c.IsSystem, c.Name)
	}
}

func TestApply_FillsMissingChildren(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	parent, err := store.CreateCategory(ctx, model.CategoryParams{Name: "income", Type: model.CategoryTypeIncome})
	require.NoError(t, err)

	groups := []Group{{
		Name: "Income",
		Type: model.CategoryTypeIncome,
		Subcategories: []Subcategory{
			{Name: "Salary"},
			{Name: "Refunds"},
		},
	}}

	created, err := Apply(ctx, store, groups)
	require.NoError(t, err)
	assert.Equal(t, 2, created, "existing parent matched case-insensitively")

	salary, err := store.GetSubcategoryByName(ctx, parent.ID, "salary")
	require.NoError(t, err)
	require.NotNil(t, salary)
	assert.Equal(t, model.CategoryTypeIncome, salary.Type)
}

func TestPresetCategories_Shape(t *testing.T) {
	seen := make(map[string]bool)
	for _, g := range PresetCategories {
		assert.False(t, seen[g.Name], "duplicate group %s", g.Name)
		seen[g.Name] = true
		assert.True(t, g.Type.Valid(), g.Name)

		subs := make(map[string]bool)
		for _, s := range g.Subcategories {
			assert.False(t, subs[s.Name], "duplicate subcategory %s > %s", g.Name, s.Name)
			subs[s.Name] = true
		}
	}
}
