package domain

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// User represents a registered storefront user.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUserID generates an opaque user identifier as a time+random composite.
func NewUserID() string {
	return fmt.Sprintf("user_%d_%09d", time.Now().UnixMilli(), rand.Intn(1_000_000_000))
}

// NormalizeEmail lowercases and trims an email address. Emails are unique
// case-insensitively, so all storage and lookups go through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
