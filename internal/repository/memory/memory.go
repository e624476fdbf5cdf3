// Package memory provides in-memory implementations of the repository
// interfaces. They back single-process deployments and tests where Redis or
// Postgres would be overkill, and mirror the browser-storage model the
// session layer was designed around.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/mtkebuch/skincareWeb/internal/domain"
	apperrors "github.com/mtkebuch/skincareWeb/pkg/errors"
)

// UserRepository implements repository.UserRepository in memory.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(u.Email)
	for _, existing := range r.users {
		if domain.NormalizeEmail(existing.Email) == email {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
	}

	stored := *u
	stored.Email = email
	r.users[u.ID] = stored
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = domain.NormalizeEmail(email)
	for _, u := range r.users {
		if domain.NormalizeEmail(u.Email) == email {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.NotFound("user", email)
}

func (r *UserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (r *UserRepository) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return apperrors.NotFound("user", u.ID)
	}

	email := domain.NormalizeEmail(u.Email)
	for id, existing := range r.users {
		if id != u.ID && domain.NormalizeEmail(existing.Email) == email {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
	}

	u.UpdatedAt = time.Now().UTC()
	stored := *u
	stored.Email = email
	r.users[u.ID] = stored
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return apperrors.NotFound("user", id)
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

// TokenStore implements repository.TokenStore in memory.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewTokenStore creates an empty in-memory session token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]string)}
}

func (s *TokenStore) Get(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[sessionID]
	if !ok {
		return "", apperrors.NotFound("session", sessionID)
	}
	return token, nil
}

func (s *TokenStore) Set(_ context.Context, sessionID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[sessionID] = token
	return nil
}

func (s *TokenStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, sessionID)
	return nil
}

// CartStore implements repository.CartStore in memory. Carts are stored as
// JSON so reads get an independent copy, the same isolation the Redis store
// provides.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

// NewCartStore creates an empty in-memory cart store.
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string][]byte)}
}

func (s *CartStore) Get(_ context.Context, ownerID string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.carts[ownerID]
	if !ok {
		return nil, apperrors.NotFound("cart", ownerID)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, apperrors.Wrap(err, "unmarshal cart")
	}
	return &cart, nil
}

func (s *CartStore) Save(_ context.Context, ownerID string, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return apperrors.Wrap(err, "marshal cart")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[ownerID] = data
	return nil
}

func (s *CartStore) Delete(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, ownerID)
	return nil
}

// Corrupt replaces the stored cart payload with raw bytes. Test hook for
// exercising malformed-state recovery.
func (s *CartStore) Corrupt(ownerID string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[ownerID] = data
}

// OrderStore implements repository.OrderStore in memory.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewOrderStore creates an empty in-memory order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]domain.Order)}
}

func (s *OrderStore) Create(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; ok {
		return apperrors.AlreadyExists("order", "id", o.ID)
	}

	stored := *o
	stored.Items = append([]domain.LineItem(nil), o.Items...)
	s.orders[o.ID] = stored
	return nil
}

func (s *OrderStore) GetByID(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, apperrors.NotFound("order", id)
	}
	found := o
	found.Items = append([]domain.LineItem(nil), o.Items...)
	return &found, nil
}

func (s *OrderStore) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			copied := o
			copied.Items = append([]domain.LineItem(nil), o.Items...)
			orders = append(orders, copied)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// ResetTokenStore implements repository.ResetTokenStore in memory.
type ResetTokenStore struct {
	mu     sync.Mutex
	tokens map[string]resetEntry
}

type resetEntry struct {
	email     string
	expiresAt time.Time
}

// NewResetTokenStore creates an empty in-memory reset token store.
func NewResetTokenStore() *ResetTokenStore {
	return &ResetTokenStore{tokens: make(map[string]resetEntry)}
}

func (s *ResetTokenStore) Save(_ context.Context, token, email string, expiresAt time.Time) error {
	if !expiresAt.After(time.Now()) {
		return apperrors.InvalidInput("reset token already expired")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = resetEntry{email: email, expiresAt: expiresAt}
	return nil
}

func (s *ResetTokenStore) Get(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if !ok || !entry.expiresAt.After(time.Now()) {
		delete(s.tokens, token)
		return "", apperrors.NotFound("reset token", "")
	}
	return entry.email, nil
}

func (s *ResetTokenStore) Consume(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	delete(s.tokens, token)
	if !ok || !entry.expiresAt.After(time.Now()) {
		return "", apperrors.NotFound("reset token", "")
	}
	return entry.email, nil
}
