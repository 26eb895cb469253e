// Package budget computes rollover balances and period progress for budgets.
package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/calendar"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// DefaultMaxPeriods bounds the per-period spending walk: ten years of weekly
// periods. Budgets without categories need no walk and are not capped.
const DefaultMaxPeriods = 520

// ErrRolloverSpanTooLarge is returned when a budget has more closed periods
// than the accumulator is allowed to walk.
var ErrRolloverSpanTooLarge = errors.New("rollover span exceeds period limit")

// SpendSource aggregates expenses for a set of categories over an inclusive
// date range.
type SpendSource interface {
	SumExpenses(ctx context.Context, categoryIDs []int, start, end time.Time) (float64, error)
}

// Accumulator recomputes the cumulative rollover of a budget from history.
type Accumulator struct {
	spend      SpendSource
	maxPeriods int
}

// NewAccumulator creates an accumulator. A non-positive maxPeriods selects
// DefaultMaxPeriods.
func NewAccumulator(spend SpendSource, maxPeriods int) *Accumulator {
	if maxPeriods <= 0 {
		maxPeriods = DefaultMaxPeriods
	}
	return &Accumulator{spend: spend, maxPeriods: maxPeriods}
}

// Compute returns the rollover amount of b as of ref: the sum of unspent
// amounts over every period that closed before the one containing ref.
//
// Budgets without linked categories cannot observe spending, so every closed
// period contributes the full amount. A budget with an end date stops
// accruing after the period containing that date.
func (a *Accumulator) Compute(ctx context.Context, b model.Budget, ref time.Time) (float64, error) {
	if !b.AllowRollover {
		return 0, nil
	}

	closed, err := a.closedPeriods(b, ref)
	if err != nil {
		return 0, err
	}
	if closed == 0 {
		return 0, nil
	}

	if len(b.CategoryIDs) == 0 {
		return cents(decimal.NewFromFloat(b.Amount).Mul(decimal.NewFromInt(int64(closed)))), nil
	}

	if closed > a.maxPeriods {
		return 0, fmt.Errorf("%w: budget %q spans %d %s periods (limit %d)",
			ErrRolloverSpanTooLarge, b.Name, closed, b.Period, a.maxPeriods)
	}

	amount := decimal.NewFromFloat(b.Amount)
	total := decimal.Zero
	for i := 0; i < closed; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		start, end, err := calendar.PeriodAt(b.Period, b.StartDate, i)
		if err != nil {
			return 0, err
		}

		spent, err := a.spend.SumExpenses(ctx, b.CategoryIDs, start, end)
		if err != nil {
			return 0, fmt.Errorf("failed to sum expenses for period %s..%s: %w",
				start.Format(time.DateOnly), end.Format(time.DateOnly), err)
		}

		if unspent := amount.Sub(decimal.NewFromFloat(spent)); unspent.IsPositive() {
			total = total.Add(unspent)
		}
	}

	return cents(total), nil
}

// closedPeriods counts the closed periods, honoring the end date.
func (a *Accumulator) closedPeriods(b model.Budget, ref time.Time) (int, error) {
	closed, err := calendar.ElapsedPeriods(b.Period, b.StartDate, ref)
	if err != nil {
		return 0, err
	}

	if b.EndDate != nil && calendar.Day(*b.EndDate).Before(calendar.Day(ref)) {
		last, err := calendar.PeriodIndex(b.Period, b.StartDate, *b.EndDate)
		if err != nil {
			return 0, err
		}
		closed = min(closed, max(0, last+1))
	}
	return closed, nil
}

// RolloverStore persists recomputed rollover amounts.
type RolloverStore interface {
	SetRolloverAmount(ctx context.Context, budgetID int, amount float64) error
}

// Result is the outcome for one budget in a batch run.
type Result struct {
	Name     string
	ID       int
	Previous float64
	Rollover float64
}

// Failure records a budget whose rollover could not be recomputed.
type Failure struct {
	Err  error
	Name string
	ID   int
}

// Report aggregates a batch run.
type Report struct {
	Processed []Result
	Failed    []Failure
	Skipped   int
}

// ProgressFunc is called after each budget in a batch run.
type ProgressFunc func(done, total int)

// ProcessAll recomputes and stores the rollover of every active,
// rollover-enabled budget. A failure on one budget is recorded in the report
// and does not stop the others. Only context cancellation aborts the batch.
func (a *Accumulator) ProcessAll(ctx context.Context, store RolloverStore, budgets []model.Budget, ref time.Time, progress ProgressFunc) (*Report, error) {
	report := &Report{}

	for i, b := range budgets {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if !b.IsActive || !b.AllowRollover {
			report.Skipped++
			a.report(progress, i+1, len(budgets))
			continue
		}

		amount, err := a.Compute(ctx, b, ref)
		if err == nil {
			err = store.SetRolloverAmount(ctx, b.ID, amount)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			common.LogError(err, "Failed to process budget rollover", common.Fields{"budget_id": b.ID, "budget": b.Name})
			report.Failed = append(report.Failed, Failure{ID: b.ID, Name: b.Name, Err: err})
			a.report(progress, i+1, len(budgets))
			continue
		}

		report.Processed = append(report.Processed, Result{
			ID:       b.ID,
			Name:     b.Name,
			Previous: b.RolloverAmount,
			Rollover: amount,
		})
		a.report(progress, i+1, len(budgets))
	}

	slog.Info("Processed budget rollovers",
		"processed", len(report.Processed),
		"failed", len(report.Failed),
		"skipped", report.Skipped)

	return report, nil
}

func (a *Accumulator) report(progress ProgressFunc, done, total int) {
	if progress == nil {
		return
	}
	progress(done, total)
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
