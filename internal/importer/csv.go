package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/Veraticus/spice-ledger/internal/calendar"
	"github.com/Veraticus/spice-ledger/internal/model"
)

const (
	// DefaultDateFormat is the layout tried first when the caller gives none.
	DefaultDateFormat = "%m/%d/%Y"

	maxPayeeLen = 100
)

// fallbackDateLayouts are tried, in order, after the caller's layout.
var fallbackDateLayouts = []string{
	"01/02/2006",
	"2006-01-02",
	"02/01/2006",
	"01-02-2006",
	"2006/01/02",
	"1/2/2006",
	"01/02/06",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText returns content as UTF-8, reading it as Windows-1252 when it is
// not valid UTF-8.
func decodeText(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if utf8.Valid(content) {
		return string(content), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	slog.Debug("Decoded CSV as Windows-1252")
	return string(decoded), nil
}

// ParseCSV parses a bank CSV export. dateFormat may be a Go layout or a
// strftime pattern such as %d/%m/%Y; it is tried before the built-in layouts.
func ParseCSV(ctx context.Context, content []byte, dateFormat string) ([]model.ImportCandidate, error) {
	text, err := decodeText(content)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	cols := DetectColumns(header)
	if _, ok := cols.Index(RoleDate); !ok {
		return nil, fmt.Errorf("%w (headers: %s)", ErrMissingDateColumn, strings.Join(header, ", "))
	}
	slog.Debug("Detected CSV columns",
		"date", cols.Date, "description", cols.Description,
		"amount", cols.Amount, "debit", cols.Debit, "credit", cols.Credit)

	layouts := dateLayouts(dateFormat)
	var candidates []model.ImportCandidate
	var skipped int

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A malformed row is a row-level problem; the reader resumes on
			// the next line.
			slog.Debug("Skipping unreadable CSV row", "line", line, "error", err)
			skipped++
			continue
		}

		cand, ok := parseRow(record, cols, layouts)
		if !ok {
			skipped++
			continue
		}
		candidates = append(candidates, cand)
	}

	slog.Info("Parsed CSV file", "transactions", len(candidates), "skipped_rows", skipped)
	return candidates, nil
}

func readHeader(r *csv.Reader) ([]string, error) {
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV header: %w", err)
		}
		if !blankRecord(record) {
			return record, nil
		}
	}
}

func blankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// parseRow converts one record. ok is false for rows that must be skipped:
// unparseable dates or amounts, rows without any amount, and zero amounts.
func parseRow(record []string, cols ColumnMap, layouts []string) (model.ImportCandidate, bool) {
	field := func(role Role) string {
		idx, ok := cols.Index(role)
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, ok := parseDate(field(RoleDate), layouts)
	if !ok {
		slog.Debug("Skipping CSV row with unparseable date", "date", field(RoleDate))
		return model.ImportCandidate{}, false
	}

	amount, ok := rowAmount(field(RoleAmount), field(RoleDebit), field(RoleCredit), cols)
	if !ok || amount.IsZero() {
		return model.ImportCandidate{}, false
	}

	description := field(RoleDescription)
	return model.ImportCandidate{
		Date:                date,
		Payee:               truncateRunes(description, maxPayeeLen),
		Description:         description,
		OriginalDescription: description,
		Amount:              amount.Float(),
		Polarity:            amount.Polarity,
	}, true
}

// rowAmount prefers a populated signed amount column and otherwise reads the
// debit/credit pair, where a debit wins over a credit.
func rowAmount(amountText, debitText, creditText string, cols ColumnMap) (Amount, bool) {
	if cols.Amount >= 0 && amountText != "" {
		a, err := ParseAmount(amountText)
		if err != nil {
			slog.Debug("Skipping CSV row with bad amount", "amount", amountText, "error", err)
			return Amount{}, false
		}
		return a, true
	}

	if cols.Debit < 0 && cols.Credit < 0 {
		return Amount{}, false
	}

	debit, hasDebit, err := parseMagnitude(debitText)
	if err != nil {
		slog.Debug("Skipping CSV row with bad debit", "debit", debitText, "error", err)
		return Amount{}, false
	}
	if hasDebit {
		return Amount{Magnitude: debit, Polarity: model.TransactionTypeExpense}, true
	}

	credit, hasCredit, err := parseMagnitude(creditText)
	if err != nil {
		slog.Debug("Skipping CSV row with bad credit", "credit", creditText, "error", err)
		return Amount{}, false
	}
	if hasCredit {
		return Amount{Magnitude: credit, Polarity: model.TransactionTypeIncome}, true
	}
	return Amount{}, false
}

func dateLayouts(userFormat string) []string {
	layouts := make([]string, 0, len(fallbackDateLayouts)+1)
	if userFormat = strings.TrimSpace(userFormat); userFormat != "" {
		layouts = append(layouts, ToGoLayout(userFormat))
	}
	return append(layouts, fallbackDateLayouts...)
}

func parseDate(s string, layouts []string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendar.Day(t), true
		}
	}
	return time.Time{}, false
}

var strftimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'b': "Jan",
	'B': "January",
	'H': "15",
	'M': "04",
	'S': "05",
	'%': "%",
}

// ToGoLayout translates a strftime pattern into a Go time layout. Strings
// without a % directive are assumed to be Go layouts already.
func ToGoLayout(format string) string {
	if !strings.Contains(format, "%") {
		return format
	}

	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 == len(format) {
			b.WriteByte(format[i])
			continue
		}
		if layout, ok := strftimeDirectives[format[i+1]]; ok {
			b.WriteString(layout)
			i++
			continue
		}
		b.WriteByte(format[i])
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
