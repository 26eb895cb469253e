package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func TestGoals(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	account := createTestAccount(t, store, model.AccountTypeSavings)

	fund := &model.Goal{
		Name:          "Emergency fund",
		Description:   "Six months",
		TargetAmount:  10000,
		CurrentAmount: 2500,
		AccountID:     &account.ID,
		StartDate:     day(2024, 1, 1),
		TargetDate:    day(2024, 12, 31),
		Status:        model.GoalInProgress,
		Priority:      5,
		Color:         "#00ff00",
	}
	require.NoError(t, store.CreateGoal(ctx, fund))
	assert.NotZero(t, fund.ID)

	trip := &model.Goal{
		Name:         "Trip",
		TargetAmount: 3000,
		StartDate:    day(2024, 2, 1),
		TargetDate:   day(2024, 8, 1),
		Status:       model.GoalNotStarted,
		Priority:     1,
	}
	require.NoError(t, store.CreateGoal(ctx, trip))

	got, err := store.GetGoal(ctx, fund.ID)
	require.NoError(t, err)
	assert.Equal(t, "Six months", got.Description)
	assert.InDelta(t, 2500, got.CurrentAmount, 0.001)
	assert.Equal(t, day(2024, 12, 31), got.TargetDate)
	require.NotNil(t, got.AccountID)
	assert.Equal(t, account.ID, *got.AccountID)
	assert.Nil(t, got.CompletedDate)

	all, err := store.GetGoals(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, fund.ID, all[0].ID, "highest priority first")

	notStarted, err := store.GetGoals(ctx, model.GoalNotStarted)
	require.NoError(t, err)
	require.Len(t, notStarted, 1)
	assert.Equal(t, "Trip", notStarted[0].Name)

	done := day(2024, 6, 1)
	got.CurrentAmount = 10000
	got.Status = model.GoalCompleted
	got.CompletedDate = &done
	require.NoError(t, store.UpdateGoal(ctx, got))

	got, err = store.GetGoal(ctx, fund.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GoalCompleted, got.Status)
	require.NotNil(t, got.CompletedDate)
	assert.Equal(t, done, *got.CompletedDate)

	require.NoError(t, store.DeleteGoal(ctx, trip.ID))
	_, err = store.GetGoal(ctx, trip.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
	require.ErrorIs(t, store.DeleteGoal(ctx, trip.ID), common.ErrNotFound)

	trip.ID = 999
	require.ErrorIs(t, store.UpdateGoal(ctx, trip), common.ErrNotFound)
}

func TestCreateGoal_Invalid(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name string
		goal *model.Goal
	}{
		{"nil", nil},
		{"no name", &model.Goal{TargetAmount: 1, Status: model.GoalNotStarted, StartDate: day(2024, 1, 1), TargetDate: day(2024, 2, 1)}},
		{"zero target", &model.Goal{Name: "x", Status: model.GoalNotStarted, StartDate: day(2024, 1, 1), TargetDate: day(2024, 2, 1)}},
		{"bad status", &model.Goal{Name: "x", TargetAmount: 1, Status: "done", StartDate: day(2024, 1, 1), TargetDate: day(2024, 2, 1)}},
		{"reversed dates", &model.Goal{Name: "x", TargetAmount: 1, Status: model.GoalNotStarted, StartDate: day(2024, 2, 1), TargetDate: day(2024, 1, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.CreateGoal(ctx, tt.goal))
		})
	}
}
