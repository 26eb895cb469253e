package importer

import "github.com/Veraticus/spice-ledger/internal/model"

// ShouldFlip resolves the polarity flip for a batch: an explicit flag wins,
// otherwise credit card statements are flipped.
func ShouldFlip(flip *bool, accountType model.AccountType) bool {
	if flip != nil {
		return *flip
	}
	return accountType == model.AccountTypeCreditCard
}

// AdjustPolarity inverts income and expense on every candidate when the batch
// must be flipped, and reports whether it did. Nothing else is touched.
func AdjustPolarity(candidates []model.ImportCandidate, flip *bool, accountType model.AccountType) bool {
	if !ShouldFlip(flip, accountType) {
		return false
	}
	for i := range candidates {
		candidates[i].Polarity = candidates[i].Polarity.Invert()
	}
	return true
}
