// Package calendar computes budget period boundaries and recurrence dates.
//
// Every function works on calendar days: inputs are normalized with Day to
// midnight UTC, and results are returned in the same form. Month arithmetic
// clamps to the last day of the target month, so Jan 31 plus one month is
// Feb 28 (or 29), never Mar 3.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// ErrUnknownPeriod is returned for a period kind the engine does not know.
var ErrUnknownPeriod = errors.New("unknown period kind")

const hoursPerDay = 24

// Day strips the clock from t, keeping its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths moves t by n months keeping its day-of-month, clamped to the end
// of the target month.
func AddMonths(t time.Time, n int) time.Time {
	t = Day(t)
	total := int(t.Month()) - 1 + n
	year := t.Year() + floorDiv(total, 12)
	month := time.Month(floorMod(total, 12) + 1)
	day := t.Day()
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return Date(year, month, day)
}

// DaysBetween returns the whole days from a to b (negative when b precedes a).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / hoursPerDay)
}

// MonthsBetween returns the calendar month offset from a to b, ignoring days.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// monthsPerPeriod returns the month step for month-based kinds, or 0 for weekly.
func monthsPerPeriod(kind model.PeriodKind) (int, error) {
	switch kind {
	case model.PeriodWeekly:
		return 0, nil
	case model.PeriodMonthly:
		return 1, nil
	case model.PeriodQuarterly:
		return 3, nil
	case model.PeriodAnnual:
		return 12, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPeriod, kind)
	}
}

// PeriodStart returns the start of the index-th period after anchor. Index 0
// is the period beginning on anchor; negative indexes precede it.
func PeriodStart(kind model.PeriodKind, anchor time.Time, index int) (time.Time, error) {
	step, err := monthsPerPeriod(kind)
	if err != nil {
		return time.Time{}, err
	}
	if step == 0 {
		return Day(anchor).AddDate(0, 0, 7*index), nil
	}
	return AddMonths(anchor, step*index), nil
}

// PeriodAt returns the inclusive boundaries of the index-th period after anchor.
// The end is the day before the next period's start, so periods tile the
// calendar without gaps or overlaps.
func PeriodAt(kind model.PeriodKind, anchor time.Time, index int) (start, end time.Time, err error) {
	start, err = PeriodStart(kind, anchor, index)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	next, err := PeriodStart(kind, anchor, index+1)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, next.AddDate(0, 0, -1), nil
}

// PeriodIndex returns the index of the period containing ref. References before
// the anchor yield negative indexes.
func PeriodIndex(kind model.PeriodKind, anchor, ref time.Time) (int, error) {
	step, err := monthsPerPeriod(kind)
	if err != nil {
		return 0, err
	}
	anchor, ref = Day(anchor), Day(ref)

	if step == 0 {
		return floorDiv(DaysBetween(anchor, ref), 7), nil
	}

	index := floorDiv(MonthsBetween(anchor, ref), step)
	// The month offset ignores days; an anchor late in the month (or an
	// anniversary not reached yet) puts ref in the previous period.
	if AddMonths(anchor, step*index).After(ref) {
		index--
	}
	return index, nil
}

// PeriodBoundaries returns the period of the given kind, anchored at anchor,
// that contains ref. start <= ref <= end always holds.
func PeriodBoundaries(kind model.PeriodKind, anchor, ref time.Time) (start, end time.Time, err error) {
	index, err := PeriodIndex(kind, anchor, ref)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return PeriodAt(kind, anchor, index)
}

// ElapsedPeriods counts the whole periods between anchor and the period that
// contains ref. It is never negative.
func ElapsedPeriods(kind model.PeriodKind, anchor, ref time.Time) (int, error) {
	index, err := PeriodIndex(kind, anchor, ref)
	if err != nil {
		return 0, err
	}
	if index < 0 {
		return 0, nil
	}
	return index, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
