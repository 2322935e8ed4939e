package category

// Category is the topical domain an item belongs to.
type Category string

// Known item categories.
const (
	Finance    Category = "finance"
	Law        Category = "law"
	Technology Category = "technology"
	Psychology Category = "psychology"
	Trade      Category = "trade"
	// General is the catch-all for items outside the curated domains.
	General Category = "general"
)

// Mixed marks a recommendation result drawn from more than one category.
// It is a result-level label, never a valid item category.
const Mixed Category = "mixed"

// All lists the valid item categories in canonical order.
func All() []Category {
	return []Category{Finance, Law, Technology, Psychology, Trade, General}
}

// IsValid checks if the category is one of the known item categories.
func (c Category) IsValid() bool {
	switch c {
	case Finance, Law, Technology, Psychology, Trade, General:
		return true
	}
	return false
}
