package importer

import "strings"

// Role is the meaning of a CSV column.
type Role string

// Column roles, in resolution order.
const (
	RoleDate        Role = "date"
	RoleDescription Role = "description"
	RoleAmount      Role = "amount"
	RoleDebit       Role = "debit"
	RoleCredit      Role = "credit"
)

var roleOrder = []Role{RoleDate, RoleDescription, RoleAmount, RoleDebit, RoleCredit}

// headerCandidates lists accepted header names per role, most preferred first.
var headerCandidates = map[Role][]string{
	RoleDate:        {"date", "transaction date", "posted date", "trans date", "posting date", "post date", "booking date"},
	RoleDescription: {"description", "memo", "narrative", "details", "transaction description", "name", "payee", "merchant"},
	RoleAmount:      {"amount", "transaction amount", "value", "amt"},
	RoleDebit:       {"debit", "withdrawal", "withdrawals", "debit amount", "money out", "paid out"},
	RoleCredit:      {"credit", "deposit", "deposits", "credit amount", "money in", "paid in"},
}

// minContainLen keeps very short headers from matching by containment.
const minContainLen = 3

// ColumnMap holds the column index resolved for each role, or -1.
type ColumnMap struct {
	Date        int
	Description int
	Amount      int
	Debit       int
	Credit      int
}

// Index returns the column index for role and whether it was resolved.
func (m ColumnMap) Index(role Role) (int, bool) {
	var idx int
	switch role {
	case RoleDate:
		idx = m.Date
	case RoleDescription:
		idx = m.Description
	case RoleAmount:
		idx = m.Amount
	case RoleDebit:
		idx = m.Debit
	case RoleCredit:
		idx = m.Credit
	default:
		return -1, false
	}
	return idx, idx >= 0
}

func (m *ColumnMap) set(role Role, idx int) {
	switch role {
	case RoleDate:
		m.Date = idx
	case RoleDescription:
		m.Description = idx
	case RoleAmount:
		m.Amount = idx
	case RoleDebit:
		m.Debit = idx
	case RoleCredit:
		m.Credit = idx
	}
}

// HasAmounts reports whether rows can yield an amount at all.
func (m ColumnMap) HasAmounts() bool {
	return m.Amount >= 0 || m.Debit >= 0 || m.Credit >= 0
}

// DetectColumns maps header names to roles. Every role is first tried by
// exact name, then by containment in either direction, then by comparing
// names with spaces, periods and underscores removed. Each phase runs across
// all still-unresolved roles before the next, and a column serves one role.
func DetectColumns(headers []string) ColumnMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	m := ColumnMap{Date: -1, Description: -1, Amount: -1, Debit: -1, Credit: -1}
	taken := make(map[int]bool, len(headers))

	phases := []func(header, candidate string) bool{
		func(h, c string) bool { return h == c },
		func(h, c string) bool {
			return len(h) >= minContainLen && (strings.Contains(h, c) || strings.Contains(c, h))
		},
		func(h, c string) bool { return h != "" && stripHeader(h) == stripHeader(c) },
	}

	for _, match := range phases {
		for _, role := range roleOrder {
			if _, ok := m.Index(role); ok {
				continue
			}
			if idx := findColumn(normalized, headerCandidates[role], taken, match); idx >= 0 {
				m.set(role, idx)
				taken[idx] = true
			}
		}
	}

	return m
}

// findColumn walks candidates in priority order and returns the first free
// header that matches.
func findColumn(headers, candidates []string, taken map[int]bool, match func(h, c string) bool) int {
	for _, c := range candidates {
		for i, h := range headers {
			if taken[i] {
				continue
			}
			if match(h, c) {
				return i
			}
		}
	}
	return -1
}

var headerStripper = strings.NewReplacer(" ", "", ".", "", "_", "")

func stripHeader(s string) string {
	return headerStripper.Replace(s)
}
