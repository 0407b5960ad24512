package enums

import "fmt"

// ExpenseCategory buckets trip expenses for per-category totals.
type ExpenseCategory string

const (
	ExpenseCategoryLodging    ExpenseCategory = "lodging"
	ExpenseCategoryTransport  ExpenseCategory = "transport"
	ExpenseCategoryFood       ExpenseCategory = "food"
	ExpenseCategoryActivities ExpenseCategory = "activities"
	ExpenseCategoryOther      ExpenseCategory = "other"
)

var validExpenseCategories = []ExpenseCategory{
	ExpenseCategoryLodging,
	ExpenseCategoryTransport,
	ExpenseCategoryFood,
	ExpenseCategoryActivities,
	ExpenseCategoryOther,
}

// String implements fmt.Stringer.
func (e ExpenseCategory) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ExpenseCategory.
func (e ExpenseCategory) IsValid() bool {
	for _, candidate := range validExpenseCategories {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseExpenseCategory converts raw input into an ExpenseCategory.
func ParseExpenseCategory(value string) (ExpenseCategory, error) {
	for _, candidate := range validExpenseCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid expense category %q", value)
}
