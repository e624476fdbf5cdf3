package domain

import (
	"fmt"
	"time"
)

// Order status lifecycle.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Shipping pricing in cents. Orders at or above the threshold ship free.
const (
	FreeShippingThreshold int64 = 100_00
	ShippingFlatRate      int64 = 10_00
)

// ShippingAddress is where an order is delivered. It is captured at checkout
// and stored with the order.
type ShippingAddress struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country,omitempty"`
}

// FullName returns the recipient's display name.
func (a *ShippingAddress) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Order is a placed order: a frozen copy of the cart's lines plus the
// shipping and payment details captured at checkout.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	Status          string          `json:"status"`
	Items           []LineItem      `json:"items"`
	Subtotal        int64           `json:"subtotal"`
	ShippingCost    int64           `json:"shipping_cost"`
	Total           int64           `json:"total"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewOrderID generates an order identifier from the placement time.
func NewOrderID(at time.Time) string {
	return fmt.Sprintf("ORD-%d", at.UnixMilli())
}

// ShippingCostFor returns the shipping charge for a given subtotal.
func ShippingCostFor(subtotal int64) int64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return ShippingFlatRate
}
