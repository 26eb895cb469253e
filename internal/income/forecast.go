package income

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/calendar"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// maxOccurrences guards the summary walk against a schedule whose cursor sits
// far in the past.
const maxOccurrences = 2000

// Horizon is a named forecast window.
type Horizon string

// Forecast horizons.
const (
	HorizonWeek    Horizon = "week"
	HorizonMonth   Horizon = "month"
	HorizonQuarter Horizon = "quarter"
	HorizonYear    Horizon = "year"
)

// Days returns the length of the horizon in days.
func (h Horizon) Days() (int, error) {
	switch h {
	case HorizonWeek:
		return 7, nil
	case HorizonMonth:
		return 30, nil
	case HorizonQuarter:
		return 90, nil
	case HorizonYear:
		return 365, nil
	default:
		return 0, fmt.Errorf("%w: unknown horizon %q (want week, month, quarter or year)", ErrInvalidSchedule, h)
	}
}

// Upcoming is one expected payment.
type Upcoming struct {
	ExpectedDate time.Time
	Schedule     model.IncomeSchedule
	DaysUntil    int
}

// UpcomingWithin lists active schedules whose next payment falls on or before
// today+days, soonest first. Overdue payments are included with a negative
// DaysUntil.
func UpcomingWithin(schedules []model.IncomeSchedule, today time.Time, days int) []Upcoming {
	today = calendar.Day(today)
	end := today.AddDate(0, 0, days)

	var out []Upcoming
	for _, s := range schedules {
		if !s.IsActive {
			continue
		}
		next := calendar.Day(s.NextExpectedDate)
		if next.After(end) {
			continue
		}
		out = append(out, Upcoming{
			Schedule:     s,
			ExpectedDate: next,
			DaysUntil:    calendar.DaysBetween(today, next),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpectedDate.Before(out[j].ExpectedDate)
	})
	return out
}

// Summary is the expected income over a horizon.
type Summary struct {
	Start           time.Time
	End             time.Time
	Horizon         Horizon
	TotalExpected   float64
	PaymentCount    int
	ActiveSchedules int
}

// Summarize totals every payment of the active schedules that falls between
// today and the end of the horizon, inclusive.
func Summarize(schedules []model.IncomeSchedule, today time.Time, h Horizon) (*Summary, error) {
	days, err := h.Days()
	if err != nil {
		return nil, err
	}
	today = calendar.Day(today)
	end := today.AddDate(0, 0, days)

	sum := &Summary{Horizon: h, Start: today, End: end}
	total := decimal.Zero

	for _, s := range schedules {
		if !s.IsActive {
			continue
		}
		sum.ActiveSchedules++

		current := calendar.Day(s.NextExpectedDate)
		for n := 0; !current.After(end) && n < maxOccurrences; n++ {
			if s.EndDate != nil && current.After(calendar.Day(*s.EndDate)) {
				break
			}
			if !current.Before(today) {
				total = total.Add(decimal.NewFromFloat(s.Amount))
				sum.PaymentCount++
			}
			current = Next(s, current)
		}
	}

	sum.TotalExpected = total.Round(2).InexactFloat64()
	return sum, nil
}
