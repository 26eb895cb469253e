package calendar

import (
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// fallbackDays is used for frequencies the engine does not recognize.
const fallbackDays = 30

// NextOccurrence returns the first occurrence of an income schedule strictly
// after from. anchor is the schedule's start date; day1 and day2 are only used
// by the semimonthly frequency and may be nil otherwise.
func NextOccurrence(freq model.Frequency, anchor, from time.Time, day1, day2 *int) time.Time {
	anchor, from = Day(anchor), Day(from)

	switch freq {
	case model.FrequencyWeekly:
		ahead := (int(anchor.Weekday()) - int(from.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		return from.AddDate(0, 0, ahead)

	case model.FrequencyBiweekly:
		blocks := floorDiv(DaysBetween(anchor, from), 14)
		return anchor.AddDate(0, 0, (blocks+1)*14)

	case model.FrequencySemimonthly:
		if day1 == nil || day2 == nil {
			// Schedules are validated on creation; this only guards bad rows.
			return from.AddDate(0, 0, 15)
		}
		return nextSemimonthly(from, *day1, *day2)

	case model.FrequencyMonthly:
		return nextAnchored(anchor, from, 1)

	case model.FrequencyQuarterly:
		return nextAnchored(anchor, from, 3)

	case model.FrequencyAnnual:
		return nextAnchored(anchor, from, 12)
	}

	return from.AddDate(0, 0, fallbackDays)
}

// nextSemimonthly tries day1 then day2 of from's month, skipping days the
// month does not have, and otherwise lands on day1 of the following month
// (or the 1st when day1 does not exist there).
func nextSemimonthly(from time.Time, day1, day2 int) time.Time {
	year, month := from.Year(), from.Month()

	for _, d := range []int{day1, day2} {
		if d < 1 || d > DaysIn(year, month) {
			continue
		}
		if candidate := Date(year, month, d); candidate.After(from) {
			return candidate
		}
	}

	next := AddMonths(Date(year, month, 1), 1)
	if day1 >= 1 && day1 <= DaysIn(next.Year(), next.Month()) {
		return Date(next.Year(), next.Month(), day1)
	}
	return next
}

// nextAnchored returns the smallest anchor + k*step months (clamped to month
// end) that falls strictly after from. k is never negative, so a from date
// before the anchor yields the anchor itself.
func nextAnchored(anchor, from time.Time, step int) time.Time {
	if anchor.After(from) {
		return anchor
	}

	k := floorDiv(MonthsBetween(anchor, from), step)
	if k < 0 {
		k = 0
	}
	for {
		candidate := AddMonths(anchor, k*step)
		if candidate.After(from) {
			return candidate
		}
		k++
	}
}
