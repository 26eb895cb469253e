package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// ExistenceChecker looks up persisted transactions by their identity fields.
type ExistenceChecker interface {
	TransactionExists(ctx context.Context, accountID int, date time.Time, amount float64, typ model.TransactionType) (bool, error)
}

// DetectDuplicates sets Duplicate on candidates that match a persisted
// transaction on account, date, amount and type, and RepeatedBankID on
// candidates repeating a bank id seen earlier in the same batch. It returns
// the number of each.
func DetectDuplicates(ctx context.Context, checker ExistenceChecker, accountID int, candidates []model.ImportCandidate) (duplicates, repeats int, err error) {
	seenBankIDs := make(map[string]bool)

	for i := range candidates {
		c := &candidates[i]

		exists, err := checker.TransactionExists(ctx, accountID, c.Date, c.Amount, c.Polarity)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to check for duplicate of %s %.2f: %w",
				c.Date.Format(time.DateOnly), c.Amount, err)
		}

		c.Duplicate = exists
		if exists {
			duplicates++
		}

		c.RepeatedBankID = c.BankID != "" && seenBankIDs[c.BankID]
		if c.RepeatedBankID {
			repeats++
		}
		if c.BankID != "" {
			seenBankIDs[c.BankID] = true
		}
	}

	return duplicates, repeats, nil
}
