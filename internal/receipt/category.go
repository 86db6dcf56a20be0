package receipt

import "strings"

// Category is the spending category of a receipt
type Category string

const (
	Electricity    Category = "electricity"
	Internet       Category = "internet"
	Groceries      Category = "groceries"
	Restaurant     Category = "restaurant"
	Shopping       Category = "shopping"
	Transportation Category = "transportation"
	Other          Category = "other"
)

var allCategories = []Category{
	Electricity,
	Internet,
	Groceries,
	Restaurant,
	Shopping,
	Transportation,
	Other,
}

// AllCategories returns the accepted categories
func AllCategories() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// IsValid reports whether c is one of the accepted categories
func (c Category) IsValid() bool {
	for _, cat := range allCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// ParseCategory normalizes input to a known category
func ParseCategory(input string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(input)))
	if !c.IsValid() {
		return Other, false
	}
	return c, true
}
