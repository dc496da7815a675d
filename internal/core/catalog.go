package core

import "slices"

// Catalog is the fixed, ordered set of names a record may use for its category or source.
type Catalog []string

// DefaultExpenseCategories is used when no catalog file is configured.
var DefaultExpenseCategories = Catalog{
	"Food", "Rent", "Utilities", "Transport", "Entertainment",
	"Healthcare", "Shopping", "Education", "Travel", "Other",
}

// DefaultIncomeSources is used when no catalog file is configured.
var DefaultIncomeSources = Catalog{
	"Salary", "Bonus", "Interest", "Investment Returns", "Gift",
	"Freelancing", "Rental Income", "Other",
}

func (c Catalog) Contains(name string) bool {
	return slices.Contains(c, name)
}

// Index returns the position of name in the catalog or -1.
func (c Catalog) Index(name string) int {
	return slices.Index(c, name)
}

func (c Catalog) Len() int { return len(c) }
