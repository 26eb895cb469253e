package model

import "time"

// PeriodKind is the recurrence granularity of a budget.
type PeriodKind string

// Budget period constants.
const (
	PeriodWeekly    PeriodKind = "weekly"
	PeriodMonthly   PeriodKind = "monthly"
	PeriodQuarterly PeriodKind = "quarterly"
	PeriodAnnual    PeriodKind = "annual"
)

// Valid reports whether k is a known period kind.
func (k PeriodKind) Valid() bool {
	switch k {
	case PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodAnnual:
		return true
	}
	return false
}

// Budget is a per-period spending target over a set of categories.
//
// RolloverAmount is derived: it is recomputed from history by the budget
// package and never edited by hand.
type Budget struct {
	StartDate      time.Time
	CreatedAt      time.Time
	EndDate        *time.Time
	Name           string
	Period         PeriodKind
	CategoryIDs    []int
	Amount         float64
	RolloverAmount float64
	ID             int
	AllowRollover  bool
	IsActive       bool
}
