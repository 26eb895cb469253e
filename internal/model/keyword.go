package model

import (
	"strings"
	"time"
)

// MatchMode controls how a keyword is compared with transaction text.
type MatchMode string

// Match mode constants.
const (
	MatchContains   MatchMode = "contains"
	MatchStartsWith MatchMode = "starts_with"
	MatchExact      MatchMode = "exact"
)

// Valid reports whether m is a known match mode.
func (m MatchMode) Valid() bool {
	return m == MatchContains || m == MatchStartsWith || m == MatchExact
}

// CategoryKeyword is a user-defined categorization rule.
type CategoryKeyword struct {
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	Keyword    string     `json:"keyword"`
	MatchMode  MatchMode  `json:"match_mode"`
	CategoryID int        `json:"category_id"`
	Priority   int        `json:"priority"`
	ID         int        `json:"id"`
	IsActive   bool       `json:"is_active"`
}

// Matches reports whether the rule matches text. Comparison is case-insensitive;
// inactive rules never match. Unknown modes behave like contains.
func (k CategoryKeyword) Matches(text string) bool {
	if text == "" || !k.IsActive {
		return false
	}

	lower := strings.ToLower(text)
	kw := strings.ToLower(k.Keyword)

	switch k.MatchMode {
	case MatchExact:
		return lower == kw
	case MatchStartsWith:
		return strings.HasPrefix(lower, kw)
	default:
		return strings.Contains(lower, kw)
	}
}

// BuiltInKeyword maps a lowercase phrase to a parent/subcategory name pair.
type BuiltInKeyword struct {
	Keyword     string `yaml:"keyword"`
	Parent      string `yaml:"parent"`
	Subcategory string `yaml:"category"`
}
