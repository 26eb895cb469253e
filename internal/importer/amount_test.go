package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/model"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		polarity model.TransactionType
		want     float64
		wantErr  bool
	}{
		{name: "plain positive", input: "12.34", want: 12.34, polarity: model.TransactionTypeIncome},
		{name: "negative", input: "-45.00", want: 45, polarity: model.TransactionTypeExpense},
		{name: "currency and thousands", input: "$1,234.56", want: 1234.56, polarity: model.TransactionTypeIncome},
		{name: "euro sign", input: "€99.90", want: 99.9, polarity: model.TransactionTypeIncome},
		{name: "pound with negative", input: "-£5.00", want: 5, polarity: model.TransactionTypeExpense},
		{name: "parenthesized", input: "(12.50)", want: 12.5, polarity: model.TransactionTypeExpense},
		{name: "parenthesized with symbol", input: "($1,000.00)", want: 1000, polarity: model.TransactionTypeExpense},
		{name: "explicit plus", input: "+7.25", want: 7.25, polarity: model.TransactionTypeIncome},
		{name: "padded", input: "  -3.10 ", want: 3.1, polarity: model.TransactionTypeExpense},
		{name: "zero is income", input: "0", want: 0, polarity: model.TransactionTypeIncome},
		{name: "empty", input: "", wantErr: true},
		{name: "symbols only", input: "$ ", wantErr: true},
		{name: "text", input: "n/a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got.Float(), 0.0001)
			assert.Equal(t, tt.polarity, got.Polarity)
			assert.False(t, got.Magnitude.IsNegative())
		})
	}
}

func TestAmount_IsZero(t *testing.T) {
	a, err := ParseAmount("-0.001")
	require.NoError(t, err)
	assert.True(t, a.IsZero(), "sub-cent amounts round to zero")

	a, err = ParseAmount("0.01")
	require.NoError(t, err)
	assert.False(t, a.IsZero())
}

func TestParseMagnitude(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		ok      bool
		wantErr bool
	}{
		{input: "", ok: false},
		{input: "-", ok: false},
		{input: "0.00", ok: false},
		{input: "0.000", ok: false},
		{input: "$20.00", want: 20, ok: true},
		{input: "-20.00", want: 20, ok: true},
		{input: "oops", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok, err := parseMagnitude(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.want, got.InexactFloat64(), 0.0001)
			}
		})
	}
}
