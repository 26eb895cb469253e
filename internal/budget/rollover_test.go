package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/spice-ledger/internal/calendar"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spendCall struct {
	start time.Time
	end   time.Time
}

// fakeSpend returns a fixed spend per period keyed by the period start.
type fakeSpend struct {
	byStart map[time.Time]float64
	err     error
	calls   []spendCall
}

func (f *fakeSpend) SumExpenses(_ context.Context, _ []int, start, end time.Time) (float64, error) {
	f.calls = append(f.calls, spendCall{start: start, end: end})
	if f.err != nil {
		return 0, f.err
	}
	return f.byStart[start], nil
}

type fakeRolloverStore struct {
	saved map[int]float64
	fail  map[int]error
}

func (f *fakeRolloverStore) SetRolloverAmount(_ context.Context, budgetID int, amount float64) error {
	if err := f.fail[budgetID]; err != nil {
		return err
	}
	if f.saved == nil {
		f.saved = make(map[int]float64)
	}
	f.saved[budgetID] = amount
	return nil
}

func TestAccumulator_Compute(t *testing.T) {
	jan1 := calendar.Date(2024, 1, 1)

	tests := []struct {
		spend   map[time.Time]float64
		ref     time.Time
		name    string
		budget  model.Budget
		want    float64
		periods int
	}{
		{
			name:   "rollover disabled",
			budget: model.Budget{Amount: 500, Period: model.PeriodMonthly, StartDate: jan1, CategoryIDs: []int{1}},
			ref:    calendar.Date(2024, 4, 1),
			want:   0,
		},
		{
			name:   "no categories accrues full amount",
			budget: model.Budget{Amount: 500, Period: model.PeriodMonthly, StartDate: jan1, AllowRollover: true},
			ref:    calendar.Date(2024, 4, 1),
			want:   1500,
		},
		{
			name: "sums unspent per closed period",
			budget: model.Budget{
				Amount: 500, Period: model.PeriodMonthly, StartDate: jan1,
				AllowRollover: true, CategoryIDs: []int{1, 2},
			},
			spend: map[time.Time]float64{
				calendar.Date(2024, 1, 1): 200,
				calendar.Date(2024, 2, 1): 450.25,
				calendar.Date(2024, 3, 1): 999, // overspend contributes nothing
			},
			ref:     calendar.Date(2024, 4, 15),
			want:    349.75,
			periods: 3,
		},
		{
			name: "current period excluded",
			budget: model.Budget{
				Amount: 100, Period: model.PeriodWeekly, StartDate: jan1,
				AllowRollover: true, CategoryIDs: []int{1},
			},
			ref:     calendar.Date(2024, 1, 13),
			want:    100,
			periods: 1,
		},
		{
			name: "end date stops accrual",
			budget: model.Budget{
				Amount: 300, Period: model.PeriodQuarterly, StartDate: jan1,
				EndDate: timePtr(calendar.Date(2024, 5, 20)), AllowRollover: true,
			},
			ref:  calendar.Date(2025, 3, 1),
			want: 600,
		},
		{
			name:   "start date in the future",
			budget: model.Budget{Amount: 50, Period: model.PeriodAnnual, StartDate: calendar.Date(2030, 1, 1), AllowRollover: true},
			ref:    calendar.Date(2024, 4, 1),
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spend := &fakeSpend{byStart: tt.spend}
			acc := NewAccumulator(spend, 0)

			got, err := acc.Compute(context.Background(), tt.budget, tt.ref)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.0001)
			assert.Len(t, spend.calls, tt.periods)
		})
	}
}

func TestAccumulator_Compute_WalksContiguousPeriods(t *testing.T) {
	spend := &fakeSpend{}
	acc := NewAccumulator(spend, 0)
	b := model.Budget{
		Amount: 10, Period: model.PeriodMonthly, StartDate: calendar.Date(2023, 1, 31),
		AllowRollover: true, CategoryIDs: []int{7},
	}

	_, err := acc.Compute(context.Background(), b, calendar.Date(2023, 6, 15))
	require.NoError(t, err)
	require.Len(t, spend.calls, 4)

	assert.Equal(t, calendar.Date(2023, 1, 31), spend.calls[0].start)
	assert.Equal(t, calendar.Date(2023, 2, 27), spend.calls[0].end)
	for i := 1; i < len(spend.calls); i++ {
		assert.Equal(t, spend.calls[i-1].end.AddDate(0, 0, 1), spend.calls[i].start)
	}
}

func TestAccumulator_Compute_SpanTooLarge(t *testing.T) {
	acc := NewAccumulator(&fakeSpend{}, 12)
	b := model.Budget{
		Name: "Ancient", Amount: 10, Period: model.PeriodMonthly,
		StartDate: calendar.Date(1990, 1, 1), AllowRollover: true, CategoryIDs: []int{1},
	}

	_, err := acc.Compute(context.Background(), b, calendar.Date(2024, 1, 1))
	require.ErrorIs(t, err, ErrRolloverSpanTooLarge)
}

func TestAccumulator_Compute_UncategorizedIgnoresCap(t *testing.T) {
	spend := &fakeSpend{}
	acc := NewAccumulator(spend, 0)
	b := model.Budget{
		Name: "Fun", Amount: 10, Period: model.PeriodWeekly,
		StartDate: calendar.Date(2014, 1, 6), AllowRollover: true,
	}

	got, err := acc.Compute(context.Background(), b, calendar.Date(2025, 1, 6))
	require.NoError(t, err)
	assert.InDelta(t, 5740.0, got, 0.001, "574 closed weeks")
	assert.Empty(t, spend.calls)
}

func TestAccumulator_Compute_SpendError(t *testing.T) {
	boom := errors.New("db locked")
	acc := NewAccumulator(&fakeSpend{err: boom}, 0)
	b := model.Budget{
		Amount: 10, Period: model.PeriodMonthly, StartDate: calendar.Date(2024, 1, 1),
		AllowRollover: true, CategoryIDs: []int{1},
	}

	_, err := acc.Compute(context.Background(), b, calendar.Date(2024, 3, 1))
	require.ErrorIs(t, err, boom)
}

func TestAccumulator_ProcessAll(t *testing.T) {
	jan1 := calendar.Date(2024, 1, 1)
	budgets := []model.Budget{
		{ID: 1, Name: "Groceries", Amount: 500, Period: model.PeriodMonthly, StartDate: jan1, AllowRollover: true, IsActive: true},
		{ID: 2, Name: "Broken", Amount: 100, Period: model.PeriodKind("daily"), StartDate: jan1, AllowRollover: true, IsActive: true},
		{ID: 3, Name: "No rollover", Amount: 100, Period: model.PeriodMonthly, StartDate: jan1, IsActive: true},
		{ID: 4, Name: "Fun", Amount: 50, Period: model.PeriodWeekly, StartDate: jan1, AllowRollover: true, IsActive: true, RolloverAmount: 5},
		{ID: 5, Name: "Store fails", Amount: 20, Period: model.PeriodMonthly, StartDate: jan1, AllowRollover: true, IsActive: true},
	}
	store := &fakeRolloverStore{fail: map[int]error{5: errors.New("readonly")}}

	var ticks []int
	acc := NewAccumulator(&fakeSpend{}, 0)
	report, err := acc.ProcessAll(context.Background(), store, budgets, calendar.Date(2024, 2, 1), func(done, _ int) {
		ticks = append(ticks, done)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, ticks)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Processed, 2)
	assert.Equal(t, 1, report.Processed[0].ID)
	assert.InDelta(t, 500, report.Processed[0].Rollover, 0.0001)
	assert.Equal(t, 4, report.Processed[1].ID)
	assert.InDelta(t, 5, report.Processed[1].Previous, 0.0001)
	assert.InDelta(t, 200, report.Processed[1].Rollover, 0.0001)

	require.Len(t, report.Failed, 2)
	assert.Equal(t, 2, report.Failed[0].ID)
	require.ErrorIs(t, report.Failed[0].Err, calendar.ErrUnknownPeriod)
	assert.Equal(t, 5, report.Failed[1].ID)

	assert.Equal(t, map[int]float64{1: 500, 4: 200}, store.saved)
}

func TestAccumulator_ProcessAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	acc := NewAccumulator(&fakeSpend{}, 0)
	_, err := acc.ProcessAll(ctx, &fakeRolloverStore{}, []model.Budget{{ID: 1, IsActive: true, AllowRollover: true}}, time.Now(), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAccumulator_Progress(t *testing.T) {
	start := calendar.Date(2024, 1, 1)
	spend := &fakeSpend{byStart: map[time.Time]float64{calendar.Date(2024, 3, 1): 123.45}}
	acc := NewAccumulator(spend, 0)

	b := model.Budget{Amount: 400, RolloverAmount: 100, Period: model.PeriodMonthly, StartDate: start, CategoryIDs: []int{3}}
	p, err := acc.Progress(context.Background(), b, calendar.Date(2024, 3, 18))
	require.NoError(t, err)

	assert.Equal(t, calendar.Date(2024, 3, 1), p.PeriodStart)
	assert.Equal(t, calendar.Date(2024, 3, 31), p.PeriodEnd)
	assert.InDelta(t, 500, p.Total, 0.0001)
	assert.InDelta(t, 376.55, p.Remaining, 0.0001)
	assert.InDelta(t, 24.69, p.Percentage, 0.0001)
}

func timePtr(t time.Time) *time.Time { return &t }
