package importer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/calendar"
	"github.com/Veraticus/spice-ledger/internal/model"
)

const maxDescriptionLen = 500

var (
	// Mixed-case SEVERITY values are rejected by the decoder.
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// SGML exports sometimes drop the closing bracket of a bare opening tag.
	unclosedTagRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes formatting issues banks commonly ship in OFX files.
func preprocessOFX(content []byte) []byte {
	content = bytes.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllFunc(content, bytes.ToUpper)
	return unclosedTagRegex.ReplaceAll(content, []byte("$1>"))
}

// ParseOFX parses an OFX or QFX statement. Bank and credit card statements
// are both read; a decoder failure is fatal for the file.
func ParseOFX(ctx context.Context, content []byte) ([]model.ImportCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(bytes.NewReader(preprocessOFX(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	var candidates []model.ImportCandidate
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		candidates = appendOFXTransactions(candidates, stmt.BankTranList.Transactions)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		candidates = appendOFXTransactions(candidates, stmt.BankTranList.Transactions)
	}

	slog.Info("Parsed OFX file",
		"transactions", len(candidates),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return candidates, nil
}

func appendOFXTransactions(out []model.ImportCandidate, txns []ofxgo.Transaction) []model.ImportCandidate {
	for _, t := range txns {
		cand, ok := convertOFXTransaction(t)
		if !ok {
			continue
		}
		out = append(out, cand)
	}
	return out
}

// convertOFXTransaction applies the same sign rule as a CSV amount column:
// non-negative amounts are income.
func convertOFXTransaction(t ofxgo.Transaction) (model.ImportCandidate, bool) {
	exact, err := decimal.NewFromString(t.TrnAmt.String())
	if err != nil {
		slog.Debug("Skipping OFX transaction with unreadable amount", "fitid", string(t.FiTID), "error", err)
		return model.ImportCandidate{}, false
	}
	amt := exact.Round(2)
	if amt.IsZero() {
		slog.Debug("Skipping zero-amount OFX transaction", "fitid", string(t.FiTID))
		return model.ImportCandidate{}, false
	}

	polarity := model.TransactionTypeIncome
	if amt.IsNegative() {
		polarity = model.TransactionTypeExpense
	}
	magnitude, _ := amt.Abs().Float64()

	payee := extractPayee(t)
	memo := strings.TrimSpace(string(t.Memo))
	description := payee
	if description == "" {
		description = memo
	}

	return model.ImportCandidate{
		Date:                calendar.Day(t.DtPosted.Time),
		Payee:               truncateRunes(description, maxPayeeLen),
		Description:         truncateRunes(description, maxDescriptionLen),
		OriginalDescription: strings.TrimSpace(strings.Join([]string{string(t.Name), memo}, " ")),
		BankID:              string(t.FiTID),
		Amount:              magnitude,
		Polarity:            polarity,
	}, true
}

// extractPayee prefers the structured PAYEE name, then NAME, falling back to
// MEMO when NAME is a generic label. Card-network prefixes are stripped.
func extractPayee(t ofxgo.Transaction) string {
	if t.Payee != nil && t.Payee.Name != "" {
		return strings.TrimSpace(string(t.Payee.Name))
	}

	name := strings.TrimSpace(string(t.Name))
	if t.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(t.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range payeePrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

var payeePrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "", "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
