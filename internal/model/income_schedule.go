package model

import "time"

// Frequency is the recurrence granularity of an income schedule.
type Frequency string

// Income frequency constants.
const (
	FrequencyWeekly      Frequency = "weekly"
	FrequencyBiweekly    Frequency = "biweekly"
	FrequencySemimonthly Frequency = "semimonthly" // two fixed days per month
	FrequencyMonthly     Frequency = "monthly"
	FrequencyQuarterly   Frequency = "quarterly"
	FrequencyAnnual      Frequency = "annual"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencySemimonthly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyAnnual:
		return true
	}
	return false
}

// IncomeSchedule tracks expected recurring income.
type IncomeSchedule struct {
	StartDate        time.Time
	NextExpectedDate time.Time
	CreatedAt        time.Time
	EndDate          *time.Time
	AccountID        *int
	CategoryID       *int
	SemimonthlyDay1  *int
	SemimonthlyDay2  *int
	Name             string
	Description      string
	Frequency        Frequency
	Amount           float64
	ID               int
	IsActive         bool
}
