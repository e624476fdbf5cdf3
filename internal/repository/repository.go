package repository

import (
	"context"
	"time"

	"github.com/mtkebuch/skincareWeb/internal/domain"
)

// UserRepository defines the interface for the credential store.
type UserRepository interface {
	// Create inserts a new user. Returns an already-exists error when the
	// (case-insensitive) email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by normalized email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]domain.User, error)

	// Update modifies an existing user.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user by their identifier.
	Delete(ctx context.Context, id string) error

	// Count returns the number of registered users.
	Count(ctx context.Context) (int, error)
}

// TokenStore persists the current session token per session key. It is the
// durable local-storage analog: one token slot per logical session.
type TokenStore interface {
	// Get returns the stored token for the session, or a not-found error.
	Get(ctx context.Context, sessionID string) (string, error)

	// Set stores the token for the session, replacing any previous one.
	Set(ctx context.Context, sessionID, token string) error

	// Delete removes the stored token. Deleting an absent token is not an
	// error.
	Delete(ctx context.Context, sessionID string) error
}

// CartStore persists the full cart collection per owner. Every container
// mutation writes through here synchronously.
type CartStore interface {
	// Get retrieves the cart for an owner, or a not-found error.
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)

	// Save overwrites the cart for an owner.
	Save(ctx context.Context, ownerID string, cart *domain.Cart) error

	// Delete removes the cart for an owner.
	Delete(ctx context.Context, ownerID string) error
}

// OrderStore persists placed orders.
type OrderStore interface {
	// Create inserts a new order. Returns an already-exists error when the
	// order ID is taken.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order, or a not-found error.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

// ResetTokenStore tracks issued password reset tokens so they can be
// single-use. Tokens expire from the store at their embedded expiry.
type ResetTokenStore interface {
	// Save records an issued reset token for the given email.
	Save(ctx context.Context, token, email string, expiresAt time.Time) error

	// Get returns the email tied to a still-live token without consuming it.
	Get(ctx context.Context, token string) (string, error)

	// Consume returns the email tied to a still-live token and invalidates
	// it so further uses fail.
	Consume(ctx context.Context, token string) (string, error)
}
