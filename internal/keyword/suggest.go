package keyword

import (
	"sort"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
)

const (
	// MaxSuggestSample caps how many uncategorized transactions are inspected.
	MaxSuggestSample = 1000

	minSuggestLen   = 3
	minSuggestCount = 2
)

// Suggestion is a payee worth turning into a keyword rule.
type Suggestion struct {
	Keyword     string
	Occurrences int
}

// Suggest counts payees of uncategorized transactions and returns those seen
// at least twice, most common first. Ties keep first-seen order.
func Suggest(txns []model.Transaction, limit int) []Suggestion {
	counts := make(map[string]int)
	var order []string

	for i, t := range txns {
		if i >= MaxSuggestSample {
			break
		}
		if t.CategoryID != nil {
			continue
		}
		payee := strings.ToLower(strings.TrimSpace(t.Payee))
		if len([]rune(payee)) < minSuggestLen {
			continue
		}
		if counts[payee] == 0 {
			order = append(order, payee)
		}
		counts[payee]++
	}

	var out []Suggestion
	for _, p := range order {
		if counts[p] >= minSuggestCount {
			out = append(out, Suggestion{Keyword: p, Occurrences: counts[p]})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Occurrences > out[j].Occurrences
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
