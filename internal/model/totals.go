package model

// CategoryTotal is the summed amount of one category's transactions.
type CategoryTotal struct {
	Name       string // display name, "Parent > Child" for subcategories
	Color      string
	Amount     float64
	CategoryID int
}

// TypeTotals holds summed income and expense amounts. Transfers are not
// counted.
type TypeTotals struct {
	Income  float64
	Expense float64
}
