// Package seed holds the preset category tree installed on first setup.
package seed

import "github.com/Veraticus/spice-ledger/internal/model"

// Subcategory is a preset child category.
type Subcategory struct {
	Name  string
	Color string
	Icon  string
}

// Group is a preset top-level category with its children.
type Group struct {
	Name          string
	Color         string
	Icon          string
	Type          model.CategoryType
	Subcategories []Subcategory
}

// PresetCategories is the default two-level category tree.
var PresetCategories = []Group{
	{
		Name: "Income", Type: model.CategoryTypeIncome, Color: "#52c41a", Icon: "dollar",
		Subcategories: []Subcategory{
			{Name: "Salary", Color: "#73d13d", Icon: "wallet"},
			{Name: "Freelance", Color: "#95de64", Icon: "laptop"},
			{Name: "Business", Color: "#b7eb8f", Icon: "shop"},
			{Name: "Investments", Color: "#d9f7be", Icon: "stock"},
			{Name: "Gifts Received", Color: "#f6ffed", Icon: "gift"},
			{Name: "Refunds", Color: "#237804", Icon: "undo"},
			{Name: "Other Income", Color: "#389e0d", Icon: "plus-circle"},
		},
	},
	{
		Name: "Housing", Type: model.CategoryTypeExpense, Color: "#1890ff", Icon: "home",
		Subcategories: []Subcategory{
			{Name: "Rent/Mortgage", Color: "#40a9ff", Icon: "bank"},
			{Name: "Property Tax", Color: "#69c0ff", Icon: "file-text"},
			{Name: "Home Insurance", Color: "#91d5ff", Icon: "safety"},
			{Name: "Utilities", Color: "#bae7ff", Icon: "thunderbolt"},
			{Name: "Maintenance", Color: "#e6f7ff", Icon: "tool"},
			{Name: "HOA Fees", Color: "#096dd9", Icon: "team"},
		},
	},
	{
		Name: "Transportation", Type: model.CategoryTypeExpense, Color: "#722ed1", Icon: "car",
		Subcategories: []Subcategory{
			{Name: "Gas/Fuel", Color: "#9254de", Icon: "dashboard"},
			{Name: "Car Payment", Color: "#b37feb", Icon: "credit-card"},
			{Name: "Car Insurance", Color: "#d3adf7", Icon: "safety"},
			{Name: "Maintenance/Repairs", Color: "#efdbff", Icon: "wrench"},
			{Name: "Public Transit", Color: "#f9f0ff", Icon: "environment"},
			{Name: "Parking", Color: "#531dab", Icon: "compass"},
			{Name: "Rideshare/Taxi", Color: "#9254de", Icon: "rocket"},
		},
	},
	{
		Name: "Food", Type: model.CategoryTypeExpense, Color: "#fa8c16", Icon: "shopping",
		Subcategories: []Subcategory{
			{Name: "Groceries", Color: "#ffa940", Icon: "shopping-cart"},
			{Name: "Dining Out", Color: "#ffc069", Icon: "coffee"},
			{Name: "Takeout/Delivery", Color: "#ffd591", Icon: "inbox"},
			{Name: "Fast Food", Color: "#ffe7ba", Icon: "fire"},
			{Name: "Coffee Shops", Color: "#fff7e6", Icon: "coffee"},
		},
	},
	{
		Name: "Healthcare", Type: model.CategoryTypeExpense, Color: "#eb2f96", Icon: "heart",
		Subcategories: []Subcategory{
			{Name: "Health Insurance", Color: "#f759ab", Icon: "safety"},
			{Name: "Doctor Visits", Color: "#ff85c0", Icon: "medicine-box"},
			{Name: "Prescriptions", Color: "#ffadd2", Icon: "experiment"},
			{Name: "Dental", Color: "#ffd6e7", Icon: "smile"},
			{Name: "Vision", Color: "#fff0f6", Icon: "eye"},
			{Name: "Medical Supplies", Color: "#c41d7f", Icon: "first-aid"},
		},
	},
	{
		Name: "Entertainment", Type: model.CategoryTypeExpense, Color: "#13c2c2", Icon: "play-circle",
		Subcategories: []Subcategory{
			{Name: "Streaming Services", Color: "#36cfc9", Icon: "video-camera"},
			{Name: "Movies/Theater", Color: "#5cdbd3", Icon: "film"},
			{Name: "Concerts/Events", Color: "#87e8de", Icon: "sound"},
			{Name: "Hobbies", Color: "#b5f5ec", Icon: "build"},
			{Name: "Games", Color: "#e6fffb", Icon: "trophy"},
			{Name: "Books/Music", Color: "#08979c", Icon: "book"},
		},
	},
	{
		Name: "Shopping", Type: model.CategoryTypeExpense, Color: "#f5222d", Icon: "shopping-bag",
		Subcategories: []Subcategory{
			{Name: "Clothing", Color: "#ff4d4f", Icon: "skin"},
			{Name: "Electronics", Color: "#ff7875", Icon: "laptop"},
			{Name: "Home Goods", Color: "#ffa39e", Icon: "home"},
			{Name: "Personal Care", Color: "#ffccc7", Icon: "star"},
			{Name: "Gifts", Color: "#fff1f0", Icon: "gift"},
			{Name: "Other Shopping", Color: "#cf1322", Icon: "tags"},
		},
	},
	{
		Name: "Personal", Type: model.CategoryTypeExpense, Color: "#faad14", Icon: "user",
		Subcategories: []Subcategory{
			{Name: "Gym/Fitness", Color: "#ffc53d", Icon: "heart"},
			{Name: "Hair/Beauty", Color: "#ffd666", Icon: "scissors"},
			{Name: "Education", Color: "#ffe58f", Icon: "read"},
			{Name: "Childcare", Color: "#fff1b8", Icon: "team"},
			{Name: "Pet Care", Color: "#fffbe6", Icon: "smile"},
			{Name: "Phone", Color: "#ad6800", Icon: "phone"},
			{Name: "Internet", Color: "#d48806", Icon: "wifi"},
		},
	},
	{
		Name: "Financial", Type: model.CategoryTypeExpense, Color: "#2f54eb", Icon: "bank",
		Subcategories: []Subcategory{
			{Name: "Bank Fees", Color: "#597ef7", Icon: "alert"},
			{Name: "Loan Payment", Color: "#85a5ff", Icon: "credit-card"},
			{Name: "Credit Card Payment", Color: "#adc6ff", Icon: "wallet"},
			{Name: "Investments", Color: "#d6e4ff", Icon: "stock"},
			{Name: "Savings", Color: "#f0f5ff", Icon: "piggy-bank"},
			{Name: "Taxes", Color: "#1d39c4", Icon: "file-text"},
		},
	},
	{
		Name: "Travel", Type: model.CategoryTypeExpense, Color: "#52c41a", Icon: "global",
		Subcategories: []Subcategory{
			{Name: "Flights", Color: "#73d13d", Icon: "rocket"},
			{Name: "Hotels", Color: "#95de64", Icon: "home"},
			{Name: "Rental Car", Color: "#b7eb8f", Icon: "car"},
			{Name: "Vacation", Color: "#d9f7be", Icon: "smile"},
		},
	},
	{
		Name: "Miscellaneous", Type: model.CategoryTypeExpense, Color: "#8c8c8c", Icon: "question-circle",
		Subcategories: []Subcategory{
			{Name: "Charity/Donations", Color: "#bfbfbf", Icon: "heart"},
			{Name: "Legal Fees", Color: "#d9d9d9", Icon: "file-protect"},
			{Name: "Other Expenses", Color: "#f5f5f5", Icon: "ellipsis"},
		},
	},
}
