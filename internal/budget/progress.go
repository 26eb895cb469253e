package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/calendar"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Progress is the spending state of a budget in the period containing a
// reference date.
type Progress struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Budget      model.Budget
	Spent       float64
	Total       float64
	Remaining   float64
	Percentage  float64
}

// Progress reports how much of b's current period allowance, including the
// stored rollover, has been spent as of ref.
func (a *Accumulator) Progress(ctx context.Context, b model.Budget, ref time.Time) (*Progress, error) {
	start, end, err := calendar.PeriodBoundaries(b.Period, b.StartDate, ref)
	if err != nil {
		return nil, err
	}

	var spent float64
	if len(b.CategoryIDs) > 0 {
		spent, err = a.spend.SumExpenses(ctx, b.CategoryIDs, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to sum expenses for budget %q: %w", b.Name, err)
		}
	}

	total := decimal.NewFromFloat(b.Amount).Add(decimal.NewFromFloat(b.RolloverAmount))
	spentD := decimal.NewFromFloat(spent)
	var pct float64
	if total.IsPositive() {
		pct = cents(spentD.Div(total).Mul(decimal.NewFromInt(100)))
	}

	return &Progress{
		Budget:      b,
		PeriodStart: start,
		PeriodEnd:   end,
		Spent:       spent,
		Total:       cents(total),
		Remaining:   cents(total.Sub(spentD)),
		Percentage:  pct,
	}, nil
}
