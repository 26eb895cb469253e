package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func TestKeywords(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := createTestCategory(t, store, "Entertainment", model.CategoryTypeExpense, nil)

	create := func(kw string, priority int, active bool) *model.CategoryKeyword {
		t.Helper()
		k := &model.CategoryKeyword{Keyword: kw, CategoryID: cat.ID, Priority: priority, IsActive: active}
		require.NoError(t, store.CreateKeyword(ctx, k))
		return k
	}

	low := create("  NetFlix ", 0, true)
	assert.Equal(t, "netflix", low.Keyword)
	assert.Equal(t, model.MatchContains, low.MatchMode)

	high := create("hulu", 5, true)
	tie := create("disney", 0, true)
	inactive := create("spotify", 9, false)

	t.Run("active rules in evaluation order", func(t *testing.T) {
		rules, err := store.GetActiveKeywords(ctx)
		require.NoError(t, err)
		ids := make([]int, 0, len(rules))
		for _, r := range rules {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []int{high.ID, low.ID, tie.ID}, ids)
	})

	t.Run("all rules include inactive", func(t *testing.T) {
		rules, err := store.GetKeywords(ctx)
		require.NoError(t, err)
		require.Len(t, rules, 4)
		assert.Equal(t, inactive.ID, rules[0].ID)
		assert.False(t, rules[0].IsActive)
	})

	t.Run("keyword text is unique", func(t *testing.T) {
		err := store.CreateKeyword(ctx, &model.CategoryKeyword{Keyword: "NETFLIX", CategoryID: cat.ID, IsActive: true})
		assert.ErrorIs(t, err, common.ErrDuplicateEntry)
	})

	t.Run("unknown category", func(t *testing.T) {
		err := store.CreateKeyword(ctx, &model.CategoryKeyword{Keyword: "prime", CategoryID: 999, IsActive: true})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("invalid match mode", func(t *testing.T) {
		err := store.CreateKeyword(ctx, &model.CategoryKeyword{Keyword: "prime", CategoryID: cat.ID, MatchMode: "regex"})
		assert.ErrorIs(t, err, ErrInvalidKeyword)
	})

	t.Run("toggle and delete", func(t *testing.T) {
		require.NoError(t, store.SetKeywordActive(ctx, inactive.ID, true))
		rules, err := store.GetActiveKeywords(ctx)
		require.NoError(t, err)
		require.Len(t, rules, 4)
		assert.Equal(t, inactive.ID, rules[0].ID)
		assert.NotNil(t, rules[0].UpdatedAt)

		require.NoError(t, store.DeleteKeyword(ctx, inactive.ID))
		assert.ErrorIs(t, store.DeleteKeyword(ctx, inactive.ID), common.ErrNotFound)
		assert.ErrorIs(t, store.SetKeywordActive(ctx, inactive.ID, false), common.ErrNotFound)
	})
}
