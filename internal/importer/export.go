package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

type previewRow struct {
	Date        string `csv:"date"`
	Type        string `csv:"type"`
	Amount      string `csv:"amount"`
	Payee       string `csv:"payee"`
	Description string `csv:"description"`
	Category    string `csv:"suggested_category"`
	BankID      string `csv:"bank_id"`
	Duplicate   bool   `csv:"duplicate"`
	Repeated    bool   `csv:"repeated_bank_id"`
}

// WritePreviewCSV writes the preview's candidates as CSV with a header row.
// Amounts are positive magnitudes with two decimals; type carries the sign.
func WritePreviewCSV(w io.Writer, preview *Preview) error {
	rows := make([]previewRow, 0, len(preview.Candidates))
	for _, c := range preview.Candidates {
		rows = append(rows, previewRow{
			Date:        c.Date.Format(time.DateOnly),
			Type:        string(c.Polarity),
			Amount:      decimal.NewFromFloat(c.Amount).StringFixed(2),
			Payee:       c.Payee,
			Description: c.Description,
			Category:    c.SuggestedCategoryName,
			BankID:      c.BankID,
			Duplicate:   c.Duplicate,
			Repeated:    c.RepeatedBankID,
		})
	}

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csv.NewWriter(w))); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}
