// Package goal tracks progress toward savings goals.
package goal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/calendar"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Priority bounds.
const (
	MinPriority = 1
	MaxPriority = 5
)

// Validation errors.
var (
	ErrInvalidGoal         = errors.New("invalid goal")
	ErrInvalidContribution = errors.New("contribution must be positive")
)

// Validate checks a goal before it is stored.
func Validate(g *model.Goal) error {
	if g == nil {
		return fmt.Errorf("%w: goal is nil", ErrInvalidGoal)
	}
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidGoal)
	}
	if len(g.Name) > 200 {
		return fmt.Errorf("%w: name longer than 200 characters", ErrInvalidGoal)
	}
	if g.TargetAmount <= 0 {
		return fmt.Errorf("%w: target amount must be positive, got %.2f", ErrInvalidGoal, g.TargetAmount)
	}
	if g.CurrentAmount < 0 {
		return fmt.Errorf("%w: current amount cannot be negative", ErrInvalidGoal)
	}
	if !calendar.Day(g.TargetDate).After(calendar.Day(g.StartDate)) {
		return fmt.Errorf("%w: target date must be after start date", ErrInvalidGoal)
	}
	if g.Priority < MinPriority || g.Priority > MaxPriority {
		return fmt.Errorf("%w: priority %d out of range %d-%d", ErrInvalidGoal, g.Priority, MinPriority, MaxPriority)
	}
	if g.Status != "" && !g.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidGoal, g.Status)
	}
	return nil
}

// Prepare validates a new goal and derives its initial status from the
// amount already saved. A new goal cannot start above its target.
func Prepare(g *model.Goal, today time.Time) error {
	if g != nil && g.Priority == 0 {
		g.Priority = MinPriority
	}
	if err := Validate(g); err != nil {
		return err
	}
	if g.CurrentAmount > g.TargetAmount {
		return fmt.Errorf("%w: current amount exceeds target amount", ErrInvalidGoal)
	}

	g.StartDate = calendar.Day(g.StartDate)
	g.TargetDate = calendar.Day(g.TargetDate)
	g.CompletedDate = nil
	switch {
	case g.CurrentAmount >= g.TargetAmount:
		g.Status = model.GoalCompleted
		done := calendar.Day(today)
		g.CompletedDate = &done
	case g.CurrentAmount > 0:
		g.Status = model.GoalInProgress
	default:
		g.Status = model.GoalNotStarted
	}
	return nil
}

// Contribute adds amount to the goal. Reaching the target completes it; the
// first contribution to a goal that has not started puts it in progress.
func Contribute(g *model.Goal, amount float64, today time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("%w: got %.2f", ErrInvalidContribution, amount)
	}

	g.CurrentAmount = decimal.NewFromFloat(g.CurrentAmount).
		Add(decimal.NewFromFloat(amount)).Round(2).InexactFloat64()

	switch {
	case g.CurrentAmount >= g.TargetAmount:
		if g.Status != model.GoalCompleted {
			done := calendar.Day(today)
			g.CompletedDate = &done
		}
		g.Status = model.GoalCompleted
	case g.Status == model.GoalNotStarted:
		g.Status = model.GoalInProgress
	}
	return nil
}

// SetStatus changes the status by hand. Completing sets the completion date
// once; any other status clears it.
func SetStatus(g *model.Goal, status model.GoalStatus, today time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidGoal, status)
	}
	g.Status = status
	if status != model.GoalCompleted {
		g.CompletedDate = nil
		return nil
	}
	if g.CompletedDate == nil {
		done := calendar.Day(today)
		g.CompletedDate = &done
	}
	return nil
}

// Progress is a goal with its derived metrics as of a day.
type Progress struct {
	Goal          model.Goal
	Percentage    float64
	Remaining     float64
	DaysRemaining int
	DaysElapsed   int
}

// Measure computes a goal's progress as of today. Percentage is capped at
// 100 and rounded to two places; day counts never go negative.
func Measure(g model.Goal, today time.Time) Progress {
	today = calendar.Day(today)
	target := decimal.NewFromFloat(g.TargetAmount)
	current := decimal.NewFromFloat(g.CurrentAmount)

	p := Progress{Goal: g}
	if target.IsPositive() {
		pct := current.Div(target).Mul(decimal.NewFromInt(100))
		p.Percentage = decimal.Min(pct, decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
	if remaining := target.Sub(current); remaining.IsPositive() {
		p.Remaining = remaining.Round(2).InexactFloat64()
	}
	if g.Status != model.GoalCompleted {
		p.DaysRemaining = max(0, calendar.DaysBetween(today, calendar.Day(g.TargetDate)))
	}
	p.DaysElapsed = max(0, calendar.DaysBetween(calendar.Day(g.StartDate), today))
	return p
}

// Summary aggregates goals. Totals and the average cover active goals only
// (not started or in progress).
type Summary struct {
	TotalGoals      int
	ActiveGoals     int
	CompletedGoals  int
	TotalTarget     float64
	TotalSaved      float64
	TotalRemaining  float64
	AverageProgress float64
}

// Summarize aggregates goals as of today.
func Summarize(goals []model.Goal, today time.Time) Summary {
	s := Summary{TotalGoals: len(goals)}
	target, saved, remaining, pct := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero

	for _, g := range goals {
		if g.Status == model.GoalCompleted {
			s.CompletedGoals++
		}
		if !g.Status.Active() {
			continue
		}
		s.ActiveGoals++
		p := Measure(g, today)
		target = target.Add(decimal.NewFromFloat(g.TargetAmount))
		saved = saved.Add(decimal.NewFromFloat(g.CurrentAmount))
		remaining = remaining.Add(decimal.NewFromFloat(p.Remaining))
		pct = pct.Add(decimal.NewFromFloat(p.Percentage))
	}

	s.TotalTarget = target.Round(2).InexactFloat64()
	s.TotalSaved = saved.Round(2).InexactFloat64()
	s.TotalRemaining = remaining.Round(2).InexactFloat64()
	if s.ActiveGoals > 0 {
		s.AverageProgress = pct.Div(decimal.NewFromInt(int64(s.ActiveGoals))).Round(2).InexactFloat64()
	}
	return s
}
