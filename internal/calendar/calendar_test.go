package calendar

import (
	"testing"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMonths(t *testing.T) {
	tests := []struct {
		from time.Time
		want time.Time
		name string
		n    int
	}{
		{name: "plain", from: Date(2024, 3, 15), n: 1, want: Date(2024, 4, 15)},
		{name: "clamps to february in leap year", from: Date(2024, 1, 31), n: 1, want: Date(2024, 2, 29)},
		{name: "clamps to february", from: Date(2023, 1, 31), n: 1, want: Date(2023, 2, 28)},
		{name: "crosses year", from: Date(2023, 11, 30), n: 3, want: Date(2024, 2, 29)},
		{name: "negative", from: Date(2024, 3, 31), n: -1, want: Date(2024, 2, 29)},
		{name: "negative across year", from: Date(2024, 1, 10), n: -13, want: Date(2022, 12, 10)},
		{name: "leap day anniversary", from: Date(2024, 2, 29), n: 12, want: Date(2025, 2, 28)},
		{name: "drops clock", from: time.Date(2024, 5, 5, 17, 30, 0, 0, time.UTC), n: 0, want: Date(2024, 5, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.from, tt.n))
		})
	}
}

func TestPeriodBoundaries(t *testing.T) {
	tests := []struct {
		anchor    time.Time
		ref       time.Time
		wantStart time.Time
		wantEnd   time.Time
		name      string
		kind      model.PeriodKind
	}{
		{
			name:      "weekly first week",
			kind:      model.PeriodWeekly,
			anchor:    Date(2024, 1, 1),
			ref:       Date(2024, 1, 7),
			wantStart: Date(2024, 1, 1),
			wantEnd:   Date(2024, 1, 7),
		},
		{
			name:      "weekly later week",
			kind:      model.PeriodWeekly,
			anchor:    Date(2024, 1, 1),
			ref:       Date(2024, 1, 17),
			wantStart: Date(2024, 1, 15),
			wantEnd:   Date(2024, 1, 21),
		},
		{
			name:      "weekly before anchor",
			kind:      model.PeriodWeekly,
			anchor:    Date(2024, 1, 8),
			ref:       Date(2024, 1, 3),
			wantStart: Date(2024, 1, 1),
			wantEnd:   Date(2024, 1, 7),
		},
		{
			name:      "monthly mid month anchor",
			kind:      model.PeriodMonthly,
			anchor:    Date(2024, 1, 15),
			ref:       Date(2024, 3, 20),
			wantStart: Date(2024, 3, 15),
			wantEnd:   Date(2024, 4, 14),
		},
		{
			name:      "monthly ref before anchor day",
			kind:      model.PeriodMonthly,
			anchor:    Date(2024, 1, 15),
			ref:       Date(2024, 3, 5),
			wantStart: Date(2024, 2, 15),
			wantEnd:   Date(2024, 3, 14),
		},
		{
			name:      "monthly first of month",
			kind:      model.PeriodMonthly,
			anchor:    Date(2024, 1, 1),
			ref:       Date(2024, 2, 29),
			wantStart: Date(2024, 2, 1),
			wantEnd:   Date(2024, 2, 29),
		},
		{
			name:      "monthly month end anchor in february",
			kind:      model.PeriodMonthly,
			anchor:    Date(2024, 1, 31),
			ref:       Date(2024, 3, 5),
			wantStart: Date(2024, 2, 29),
			wantEnd:   Date(2024, 3, 30),
		},
		{
			name:      "quarterly",
			kind:      model.PeriodQuarterly,
			anchor:    Date(2024, 1, 1),
			ref:       Date(2024, 8, 15),
			wantStart: Date(2024, 7, 1),
			wantEnd:   Date(2024, 9, 30),
		},
		{
			name:      "annual anniversary reached",
			kind:      model.PeriodAnnual,
			anchor:    Date(2022, 6, 1),
			ref:       Date(2024, 6, 1),
			wantStart: Date(2024, 6, 1),
			wantEnd:   Date(2025, 5, 31),
		},
		{
			name:      "annual anniversary not reached",
			kind:      model.PeriodAnnual,
			anchor:    Date(2022, 6, 1),
			ref:       Date(2024, 5, 31),
			wantStart: Date(2023, 6, 1),
			wantEnd:   Date(2024, 5, 31),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := PeriodBoundaries(tt.kind, tt.anchor, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestPeriodBoundaries_UnknownKind(t *testing.T) {
	_, _, err := PeriodBoundaries(model.PeriodKind("fortnightly"), Date(2024, 1, 1), Date(2024, 2, 1))
	require.ErrorIs(t, err, ErrUnknownPeriod)
}

// Every day in a multi-year range falls inside exactly the period that
// PeriodBoundaries reports, and the periods chain end-to-start.
func TestPeriodBoundaries_TilesCalendar(t *testing.T) {
	kinds := []model.PeriodKind{model.PeriodWeekly, model.PeriodMonthly, model.PeriodQuarterly, model.PeriodAnnual}
	anchors := []time.Time{Date(2023, 1, 1), Date(2023, 1, 31), Date(2024, 2, 29), Date(2023, 8, 30)}

	for _, kind := range kinds {
		for _, anchor := range anchors {
			t.Run(string(kind)+"/"+anchor.Format("2006-01-02"), func(t *testing.T) {
				var prevStart, prevEnd time.Time
				for d := Date(2022, 6, 1); d.Before(Date(2026, 6, 1)); d = d.AddDate(0, 0, 1) {
					start, end, err := PeriodBoundaries(kind, anchor, d)
					require.NoError(t, err)
					require.False(t, start.After(d), "start %s after ref %s", start, d)
					require.False(t, end.Before(d), "end %s before ref %s", end, d)

					// Idempotent: any day in the period maps back to the same period.
					s2, e2, err := PeriodBoundaries(kind, anchor, start)
					require.NoError(t, err)
					require.Equal(t, start, s2)
					require.Equal(t, end, e2)

					if !prevStart.IsZero() && !start.Equal(prevStart) {
						require.Equal(t, prevEnd.AddDate(0, 0, 1), start, "gap or overlap before %s", start)
					}
					prevStart, prevEnd = start, end
				}
			})
		}
	}
}

func TestElapsedPeriods(t *testing.T) {
	tests := []struct {
		anchor time.Time
		ref    time.Time
		name   string
		kind   model.PeriodKind
		want   int
	}{
		{name: "weekly", kind: model.PeriodWeekly, anchor: Date(2024, 1, 1), ref: Date(2024, 1, 22), want: 3},
		{name: "monthly three months", kind: model.PeriodMonthly, anchor: Date(2024, 1, 1), ref: Date(2024, 4, 1), want: 3},
		{name: "monthly day not reached", kind: model.PeriodMonthly, anchor: Date(2024, 1, 20), ref: Date(2024, 4, 10), want: 2},
		{name: "quarterly", kind: model.PeriodQuarterly, anchor: Date(2023, 1, 1), ref: Date(2024, 2, 1), want: 4},
		{name: "annual before anniversary", kind: model.PeriodAnnual, anchor: Date(2020, 7, 4), ref: Date(2024, 7, 3), want: 3},
		{name: "future anchor", kind: model.PeriodMonthly, anchor: Date(2025, 1, 1), ref: Date(2024, 4, 1), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ElapsedPeriods(tt.kind, tt.anchor, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, 2, floorDiv(7, 3))
	assert.Equal(t, -3, floorDiv(-7, 3))
	assert.Equal(t, -1, floorDiv(-1, 7))
	assert.Equal(t, 0, floorDiv(0, 7))
	assert.Equal(t, 2, floorMod(-1, 3))
}
