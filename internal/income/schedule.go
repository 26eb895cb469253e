// Package income validates recurring income schedules and forecasts their
// payments.
package income

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spice-ledger/internal/calendar"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Validation errors.
var (
	ErrInvalidSchedule        = errors.New("invalid income schedule")
	ErrMissingSemimonthlyDays = errors.New("semimonthly frequency requires both day1 and day2")
)

// Validate checks a schedule before it is stored. Semimonthly anchors are
// enforced here so the recurrence engine never sees an incomplete schedule.
func Validate(s *model.IncomeSchedule) error {
	if s == nil {
		return fmt.Errorf("%w: schedule is nil", ErrInvalidSchedule)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSchedule)
	}
	if s.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %.2f", ErrInvalidSchedule, s.Amount)
	}
	if !s.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidSchedule, s.Frequency)
	}
	if s.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidSchedule)
	}
	if s.EndDate != nil && s.EndDate.Before(s.StartDate) {
		return fmt.Errorf("%w: end date precedes start date", ErrInvalidSchedule)
	}

	if s.Frequency != model.FrequencySemimonthly {
		return nil
	}
	if s.SemimonthlyDay1 == nil || s.SemimonthlyDay2 == nil {
		return ErrMissingSemimonthlyDays
	}
	for _, d := range []int{*s.SemimonthlyDay1, *s.SemimonthlyDay2} {
		if d < 1 || d > 31 {
			return fmt.Errorf("%w: semimonthly day %d out of range 1-31", ErrInvalidSchedule, d)
		}
	}
	return nil
}

// Prepare validates a new schedule and positions its cursor on the start date.
func Prepare(s *model.IncomeSchedule) error {
	if err := Validate(s); err != nil {
		return err
	}
	s.StartDate = calendar.Day(s.StartDate)
	s.NextExpectedDate = s.StartDate
	s.IsActive = true
	return nil
}

// Next returns the occurrence that follows from for this schedule.
func Next(s model.IncomeSchedule, from time.Time) time.Time {
	return calendar.NextOccurrence(s.Frequency, s.StartDate, from, s.SemimonthlyDay1, s.SemimonthlyDay2)
}

// Advance moves the schedule's cursor to the payment after the current one,
// typically once that payment has been received.
func Advance(s *model.IncomeSchedule) time.Time {
	s.NextExpectedDate = Next(*s, s.NextExpectedDate)
	return s.NextExpectedDate
}
