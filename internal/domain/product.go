package domain

import (
	"strings"
	"time"
)

// Product represents a catalog product as served by the remote catalog.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Normalize cleans up catalog data in place: categories arrive with stray
// whitespace and image URLs sometimes carry a leading slash.
func (p *Product) Normalize() {
	p.Category = strings.TrimSpace(p.Category)
	p.ImageURL = strings.TrimPrefix(p.ImageURL, "/")
}
