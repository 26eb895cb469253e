package goal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/calendar"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func newGoal() model.Goal {
	return model.Goal{
		Name:         "Emergency fund",
		TargetAmount: 1000,
		StartDate:    calendar.Date(2024, 1, 1),
		TargetDate:   calendar.Date(2024, 12, 31),
		Priority:     3,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		mutate  func(*model.Goal)
		name    string
		wantErr bool
	}{
		{name: "valid", mutate: func(*model.Goal) {}},
		{name: "blank name", mutate: func(g *model.Goal) { g.Name = "  " }, wantErr: true},
		{name: "long name", mutate: func(g *model.Goal) { g.Name = strings.Repeat("x", 201) }, wantErr: true},
		{name: "zero target", mutate: func(g *model.Goal) { g.TargetAmount = 0 }, wantErr: true},
		{name: "negative current", mutate: func(g *model.Goal) { g.CurrentAmount = -1 }, wantErr: true},
		{name: "target on start", mutate: func(g *model.Goal) { g.TargetDate = g.StartDate }, wantErr: true},
		{name: "priority too high", mutate: func(g *model.Goal) { g.Priority = 6 }, wantErr: true},
		{name: "priority zero", mutate: func(g *model.Goal) { g.Priority = 0 }, wantErr: true},
		{name: "unknown status", mutate: func(g *model.Goal) { g.Status = "done" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGoal()
			tt.mutate(&g)
			err := Validate(&g)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidGoal)
				return
			}
			require.NoError(t, err)
		})
	}

	require.ErrorIs(t, Validate(nil), ErrInvalidGoal)
}

func TestPrepare(t *testing.T) {
	today := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name          string
		current       float64
		wantStatus    model.GoalStatus
		wantCompleted bool
	}{
		{name: "nothing saved", current: 0, wantStatus: model.GoalNotStarted},
		{name: "partly saved", current: 400, wantStatus: model.GoalInProgress},
		{name: "already at target", current: 1000, wantStatus: model.GoalCompleted, wantCompleted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGoal()
			g.CurrentAmount = tt.current
			g.Status = model.GoalPaused
			require.NoError(t, Prepare(&g, today))
			assert.Equal(t, tt.wantStatus, g.Status)
			if tt.wantCompleted {
				require.NotNil(t, g.CompletedDate)
				assert.Equal(t, calendar.Date(2024, 3, 1), *g.CompletedDate)
			} else {
				assert.Nil(t, g.CompletedDate)
			}
		})
	}

	t.Run("default priority", func(t *testing.T) {
		g := newGoal()
		g.Priority = 0
		require.NoError(t, Prepare(&g, today))
		assert.Equal(t, MinPriority, g.Priority)
	})

	t.Run("above target", func(t *testing.T) {
		g := newGoal()
		g.CurrentAmount = 1000.01
		require.ErrorIs(t, Prepare(&g, today), ErrInvalidGoal)
	})

	t.Run("dates truncated", func(t *testing.T) {
		g := newGoal()
		g.TargetDate = time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC)
		require.NoError(t, Prepare(&g, today))
		assert.Equal(t, calendar.Date(2024, 6, 1), g.TargetDate)
	})
}

func TestContribute(t *testing.T) {
	today := calendar.Date(2024, 5, 10)

	g := newGoal()
	g.Status = model.GoalNotStarted
	g.TargetAmount = 100

	require.NoError(t, Contribute(&g, 30, today))
	assert.Equal(t, model.GoalInProgress, g.Status)
	assert.InDelta(t, 30, g.CurrentAmount, 0.0001)
	assert.Nil(t, g.CompletedDate)

	require.NoError(t, Contribute(&g, 70, today))
	assert.Equal(t, model.GoalCompleted, g.Status)
	require.NotNil(t, g.CompletedDate)
	assert.Equal(t, today, *g.CompletedDate)

	later := calendar.Date(2024, 6, 1)
	require.NoError(t, Contribute(&g, 5, later))
	assert.Equal(t, today, *g.CompletedDate, "completion date kept")
	assert.InDelta(t, 105, g.CurrentAmount, 0.0001)

	require.ErrorIs(t, Contribute(&g, 0, today), ErrInvalidContribution)
	require.ErrorIs(t, Contribute(&g, -5, today), ErrInvalidContribution)

	t.Run("cents add exactly", func(t *testing.T) {
		g := newGoal()
		g.CurrentAmount = 0.1
		require.NoError(t, Contribute(&g, 0.2, today))
		assert.Equal(t, 0.3, g.CurrentAmount)
	})

	t.Run("paused stays paused below target", func(t *testing.T) {
		g := newGoal()
		g.Status = model.GoalPaused
		require.NoError(t, Contribute(&g, 10, today))
		assert.Equal(t, model.GoalPaused, g.Status)
	})
}

func TestSetStatus(t *testing.T) {
	today := calendar.Date(2024, 5, 10)
	g := newGoal()
	g.Status = model.GoalInProgress

	require.NoError(t, SetStatus(&g, model.GoalCompleted, today))
	require.NotNil(t, g.CompletedDate)
	assert.Equal(t, today, *g.CompletedDate)

	require.NoError(t, SetStatus(&g, model.GoalCompleted, calendar.Date(2024, 7, 1)))
	assert.Equal(t, today, *g.CompletedDate)

	require.NoError(t, SetStatus(&g, model.GoalInProgress, today))
	assert.Nil(t, g.CompletedDate)

	require.ErrorIs(t, SetStatus(&g, "finished", today), ErrInvalidGoal)
	assert.Equal(t, model.GoalInProgress, g.Status)
}

func TestMeasure(t *testing.T) {
	today := calendar.Date(2024, 3, 1)

	tests := []struct {
		name          string
		mutate        func(*model.Goal)
		today         time.Time
		wantPct       float64
		wantRemaining float64
		wantDaysLeft  int
		wantElapsed   int
	}{
		{
			name:          "quarter saved",
			mutate:        func(g *model.Goal) { g.CurrentAmount = 250; g.Status = model.GoalInProgress },
			today:         today,
			wantPct:       25,
			wantRemaining: 750,
			wantDaysLeft:  305,
			wantElapsed:   60,
		},
		{
			name:          "rounded percentage",
			mutate:        func(g *model.Goal) { g.TargetAmount = 3; g.CurrentAmount = 1 },
			today:         today,
			wantPct:       33.33,
			wantRemaining: 2,
			wantDaysLeft:  305,
			wantElapsed:   60,
		},
		{
			name:         "over target caps at 100",
			mutate:       func(g *model.Goal) { g.CurrentAmount = 1200; g.Status = model.GoalCompleted },
			today:        today,
			wantPct:      100,
			wantDaysLeft: 0,
			wantElapsed:  60,
		},
		{
			name:          "past target date",
			mutate:        func(g *model.Goal) { g.CurrentAmount = 500 },
			today:         calendar.Date(2025, 2, 1),
			wantPct:       50,
			wantRemaining: 500,
			wantDaysLeft:  0,
			wantElapsed:   397,
		},
		{
			name:          "before start",
			mutate:        func(*model.Goal) {},
			today:         calendar.Date(2023, 12, 1),
			wantPct:       0,
			wantRemaining: 1000,
			wantDaysLeft:  396,
			wantElapsed:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGoal()
			g.Status = model.GoalNotStarted
			tt.mutate(&g)
			p := Measure(g, tt.today)
			assert.InDelta(t, tt.wantPct, p.Percentage, 0.0001)
			assert.InDelta(t, tt.wantRemaining, p.Remaining, 0.0001)
			assert.Equal(t, tt.wantDaysLeft, p.DaysRemaining)
			assert.Equal(t, tt.wantElapsed, p.DaysElapsed)
		})
	}
}

func TestSummarize(t *testing.T) {
	today := calendar.Date(2024, 3, 1)
	mk := func(status model.GoalStatus, target, current float64) model.Goal {
		g := newGoal()
		g.Status, g.TargetAmount, g.CurrentAmount = status, target, current
		return g
	}

	s := Summarize([]model.Goal{
		mk(model.GoalInProgress, 1000, 250),
		mk(model.GoalNotStarted, 500, 0),
		mk(model.GoalCompleted, 200, 200),
		mk(model.GoalPaused, 100, 50),
	}, today)

	assert.Equal(t, 4, s.TotalGoals)
	assert.Equal(t, 2, s.ActiveGoals)
	assert.Equal(t, 1, s.CompletedGoals)
	assert.InDelta(t, 1500, s.TotalTarget, 0.0001)
	assert.InDelta(t, 250, s.TotalSaved, 0.0001)
	assert.InDelta(t, 1250, s.TotalRemaining, 0.0001)
	assert.InDelta(t, 12.5, s.AverageProgress, 0.0001)

	empty := Summarize(nil, today)
	assert.Zero(t, empty.TotalGoals)
	assert.Zero(t, empty.AverageProgress)
}
