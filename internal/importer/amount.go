package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// Amount is a parsed monetary value split into a non-negative magnitude and
// the polarity implied by its sign.
type Amount struct {
	Magnitude decimal.Decimal
	Polarity  model.TransactionType
}

// Float returns the magnitude rounded to cents.
func (a Amount) Float() float64 {
	f, _ := a.Magnitude.Round(2).Float64()
	return f
}

// IsZero reports whether the amount rounds to zero cents.
func (a Amount) IsZero() bool {
	return a.Magnitude.Round(2).IsZero()
}

var amountReplacer = strings.NewReplacer(
	"$", "", "€", "", "£", "",
	",", "", " ", "", "\u00a0", "",
)

// cleanAmount strips currency symbols, thousands separators and blanks, and
// rewrites a parenthesized value as a negative one.
func cleanAmount(text string) string {
	s := amountReplacer.Replace(strings.TrimSpace(text))
	if strings.Contains(s, "(") && strings.Contains(s, ")") {
		s = "-" + strings.NewReplacer("(", "", ")", "").Replace(s)
	}
	return strings.TrimPrefix(s, "+")
}

// ParseAmount parses a signed amount column. Non-negative values are income,
// negative values are expenses.
func ParseAmount(text string) (Amount, error) {
	s := cleanAmount(text)
	if s == "" {
		return Amount{}, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w %q: %v", ErrInvalidAmount, text, err)
	}

	if d.IsNegative() {
		return Amount{Magnitude: d.Abs(), Polarity: model.TransactionTypeExpense}, nil
	}
	return Amount{Magnitude: d, Polarity: model.TransactionTypeIncome}, nil
}

// parseMagnitude parses one side of a debit/credit column pair. Blank and
// placeholder values report ok=false.
func parseMagnitude(text string) (decimal.Decimal, bool, error) {
	s := cleanAmount(text)
	switch s {
	case "", "-", "0", "0.00":
		return decimal.Zero, false, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w %q: %v", ErrInvalidAmount, text, err)
	}
	if d.IsZero() {
		return decimal.Zero, false, nil
	}
	return d.Abs(), true, nil
}
