package domain

import "time"

// Quantity bounds for a single cart line. Out-of-range input is clamped,
// not rejected.
const (
	MinQuantityPerItem = 1
	MaxQuantityPerItem = 999
)

// LineItem represents one product entry and its quantity within the cart.
// Lines are unique by product ID.
type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
	Variant   string `json:"variant,omitempty"`
}

// Cart is the persisted shape of a shopping cart: an ordered collection of
// line items. Insertion order is significant for display only.
type Cart struct {
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ClampQuantity clamps q into [MinQuantityPerItem, MaxQuantityPerItem].
func ClampQuantity(q int) int {
	if q < MinQuantityPerItem {
		return MinQuantityPerItem
	}
	if q > MaxQuantityPerItem {
		return MaxQuantityPerItem
	}
	return q
}

// Total calculates the total price of all items in the cart (in cents).
func (c *Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// ItemCount returns the sum of quantities across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the line matching the given product ID,
// or -1 if not found.
func (c *Cart) FindItemIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
