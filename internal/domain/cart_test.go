package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampQuantity(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"zero clamps to min", 0, 1},
		{"negative clamps to min", -5, 1},
		{"min passes", 1, 1},
		{"mid passes", 42, 42},
		{"max passes", 999, 999},
		{"above max clamps", 5000, 999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampQuantity(tt.in))
		})
	}
}

func TestCart_Total(t *testing.T) {
	cart := &Cart{
		Items: []LineItem{
			{ProductID: "p1", Price: 1000, Quantity: 2},
			{ProductID: "p2", Price: 250, Quantity: 3},
		},
	}
	assert.Equal(t, int64(2750), cart.Total())
}

func TestCart_Total_Empty(t *testing.T) {
	cart := &Cart{}
	assert.Equal(t, int64(0), cart.Total())
}

func TestCart_ItemCount(t *testing.T) {
	cart := &Cart{
		Items: []LineItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 7},
		},
	}
	assert.Equal(t, 9, cart.ItemCount())
}

func TestCart_FindItemIndex(t *testing.T) {
	cart := &Cart{
		Items: []LineItem{
			{ProductID: "p1"},
			{ProductID: "p2"},
		},
	}
	assert.Equal(t, 0, cart.FindItemIndex("p1"))
	assert.Equal(t, 1, cart.FindItemIndex("p2"))
	assert.Equal(t, -1, cart.FindItemIndex("p3"))
}

func TestProduct_Normalize(t *testing.T) {
	p := &Product{Category: "  Moisturizers ", ImageURL: "/img/serum.jpg"}
	p.Normalize()
	assert.Equal(t, "Moisturizers", p.Category)
	assert.Equal(t, "img/serum.jpg", p.ImageURL)
}

func TestNewUserID_Opaque(t *testing.T) {
	a := NewUserID()
	b := NewUserID()
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "user_")
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ann@x.com", NormalizeEmail("  Ann@X.Com "))
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleUser))
	assert.True(t, IsValidRole(RoleAdmin))
	assert.False(t, IsValidRole("superuser"))
}
