package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseCSV_SignedAmount(t *testing.T) {
	content := `Date,Description,Amount
01/15/2024,STARBUCKS STORE #123,-5.75
01/16/2024,PAYROLL ACME,"2,500.00"
01/17/2024,ZERO ROW,0.00
not a date,BAD DATE,-1.00
01/18/2024,BAD AMOUNT,abc
01/19/2024,LATE FEE,(10.00)
`
	got, err := ParseCSV(context.Background(), []byte(content), "")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, date(2024, 1, 15), got[0].Date)
	assert.Equal(t, "STARBUCKS STORE #123", got[0].Payee)
	assert.Equal(t, "STARBUCKS STORE #123", got[0].Description)
	assert.Equal(t, model.TransactionTypeExpense, got[0].Polarity)
	assert.InDelta(t, 5.75, got[0].Amount, 0.001)

	assert.Equal(t, model.TransactionTypeIncome, got[1].Polarity)
	assert.InDelta(t, 2500.0, got[1].Amount, 0.001)

	assert.Equal(t, "LATE FEE", got[2].Payee)
	assert.Equal(t, model.TransactionTypeExpense, got[2].Polarity)
	assert.InDelta(t, 10.0, got[2].Amount, 0.001)
}

func TestParseCSV_DebitCredit(t *testing.T) {
	content := `Transaction Date,Memo,Debit,Credit
15/01/2024,Coffee,4.50,
16/01/2024,Salary,,3000
17/01/2024,Nothing,,
18/01/2024,Zero debit,0.00,20.00
`
	got, err := ParseCSV(context.Background(), []byte(content), "%d/%m/%Y")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, date(2024, 1, 15), got[0].Date)
	assert.Equal(t, model.TransactionTypeExpense, got[0].Polarity)
	assert.InDelta(t, 4.5, got[0].Amount, 0.001)

	assert.Equal(t, "Salary", got[1].Payee)
	assert.Equal(t, model.TransactionTypeIncome, got[1].Polarity)

	assert.Equal(t, "Zero debit", got[2].Payee)
	assert.Equal(t, model.TransactionTypeIncome, got[2].Polarity, "a zero debit falls through to the credit")
	assert.InDelta(t, 20.0, got[2].Amount, 0.001)
}

func TestParseCSV_Encodings(t *testing.T) {
	t.Run("windows-1252", func(t *testing.T) {
		content := []byte("Date,Description,Amount\n01/15/2024,Caf\xe9 Rouge,-3.00\n")
		got, err := ParseCSV(context.Background(), content, "")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Café Rouge", got[0].Description)
	})

	t.Run("utf-8 byte order mark", func(t *testing.T) {
		content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Date,Description,Amount\n2024-01-15,Café,-3.00\n")...)
		got, err := ParseCSV(context.Background(), content, "")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, date(2024, 1, 15), got[0].Date)
		assert.Equal(t, "Café", got[0].Description)
	})
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		content string
	}{
		{name: "empty file", content: "", wantErr: ErrNoHeader},
		{name: "blank lines only", content: "\n\n,,\n", wantErr: ErrNoHeader},
		{name: "no date column", content: "Description,Amount\nfoo,1.00\n", wantErr: ErrMissingDateColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(context.Background(), []byte(tt.content), "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseCSV_LongDescription(t *testing.T) {
	long := strings.Repeat("é", 150)
	content := "Date,Description,Amount\n01/15/2024," + long + ",-1.00\n"

	got, err := ParseCSV(context.Background(), []byte(content), "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 100, len([]rune(got[0].Payee)))
	assert.Equal(t, long, got[0].Description)
}

func TestParseCSV_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseCSV(ctx, []byte("Date,Amount\n01/15/2024,1.00\n"), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestToGoLayout(t *testing.T) {
	tests := map[string]string{
		"%m/%d/%Y": "01/02/2006",
		"%d.%m.%y": "02.01.06",
		"%Y-%m-%d": "2006-01-02",
		"%d %b %Y": "02 Jan 2006",
		"2006-01-02": "2006-01-02",
		"100%%":      "100%",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToGoLayout(in), in)
	}
}

func TestParseFile(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported extension", func(t *testing.T) {
		_, _, err := ParseFile(ctx, "statement.txt", []byte("Date,Amount\n"), "")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("header only", func(t *testing.T) {
		typ, _, err := ParseFile(ctx, "statement.CSV", []byte("Date,Description,Amount\n"), "")
		assert.ErrorIs(t, err, ErrNoTransactions)
		assert.Equal(t, FileTypeCSV, typ)
	})

	t.Run("csv", func(t *testing.T) {
		typ, got, err := ParseFile(ctx, "jan.csv", []byte("Date,Description,Amount\n01/02/2024,Rent,-1500\n"), "")
		require.NoError(t, err)
		assert.Equal(t, FileTypeCSV, typ)
		assert.Len(t, got, 1)
	})
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		filename string
		want     FileType
		wantErr  bool
	}{
		{filename: "a.csv", want: FileTypeCSV},
		{filename: "A.CSV", want: FileTypeCSV},
		{filename: "bank.ofx", want: FileTypeOFX},
		{filename: "card.QFX", want: FileTypeQFX},
		{filename: "notes.txt", wantErr: true},
		{filename: "noext", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := DetectFileType(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Len(t, SupportedFormats(), 3)
}
