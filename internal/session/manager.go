// Package session implements the storefront's session lifecycle: account
// registration, login and logout, token-backed authentication checks, and
// the password reset flow. A Manager holds one logical client session; all
// collaborators are injected, nothing lives in package state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mtkebuch/skincareWeb/internal/domain"
	"github.com/mtkebuch/skincareWeb/internal/repository"
	"github.com/mtkebuch/skincareWeb/internal/token"
	apperrors "github.com/mtkebuch/skincareWeb/pkg/errors"
)

// resetInstructionsMessage deliberately does not reveal whether the address
// is registered.
const resetInstructionsMessage = "If an account exists with this email, you will receive password reset instructions."

// Result is returned by the auth operations that produce a user-facing
// outcome message.
type Result struct {
	User    *domain.User
	Token   string
	Message string
}

// State is pushed to subscribers whenever the authentication state changes.
type State struct {
	Authenticated bool
	User          *domain.User
}

// Observer receives the new session state after each change.
type Observer func(State)

// EventPublisher is the slice of the event producer the session layer needs.
type EventPublisher interface {
	UserRegistered(ctx context.Context, u *domain.User) error
	PasswordReset(ctx context.Context, email string) error
}

// Manager coordinates one client session. Safe for concurrent use.
type Manager struct {
	users  repository.UserRepository
	tokens repository.TokenStore
	resets repository.ResetTokenStore
	carts  repository.CartStore
	codec  *token.Codec
	reset  *token.ResetManager
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time

	sessionID string

	mu            sync.Mutex
	observers     map[int]Observer
	nextObsID     int
	justLoggedOut bool
}

// ManagerOption tweaks a Manager at construction.
type ManagerOption func(*Manager)

// WithClock overrides the manager's time source.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithEvents attaches an event publisher.
func WithEvents(events EventPublisher) ManagerOption {
	return func(m *Manager) { m.events = events }
}

// WithSessionID pins the session key instead of generating one.
func WithSessionID(id string) ManagerOption {
	return func(m *Manager) { m.sessionID = id }
}

// NewManager creates a session manager with a fresh session key.
func NewManager(
	users repository.UserRepository,
	tokens repository.TokenStore,
	resets repository.ResetTokenStore,
	carts repository.CartStore,
	codec *token.Codec,
	reset *token.ResetManager,
	logger *slog.Logger,
	opts ...ManagerOption,
) *Manager {
	m := &Manager{
		users:     users,
		tokens:    tokens,
		resets:    resets,
		carts:     carts,
		codec:     codec,
		reset:     reset,
		logger:    logger,
		now:       time.Now,
		sessionID: uuid.NewString(),
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SessionID returns the key this manager stores its token under.
func (m *Manager) SessionID() string {
	return m.sessionID
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// Register validates the input, creates the account, and signs the new user
// in. Validation fails fast: the first violated rule decides the message.
func (m *Manager) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	if err := ValidateEmail(in.Email); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(in.Email)
	if _, err := m.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.InvalidInput("An account with this email already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Wrap(err, "check email")
	}

	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := ValidateName(in.FirstName, "First name"); err != nil {
		return nil, err
	}
	if err := ValidateName(in.LastName, "Last name"); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.IsValidRole(role) {
		return nil, apperrors.InvalidInput("Unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "hash password")
	}

	now := m.now().UTC()
	u := &domain.User{
		ID:           domain.NewUserID(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := m.users.Create(ctx, u); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.InvalidInput("An account with this email already exists")
		}
		return nil, err
	}

	tok, err := m.signIn(ctx, u)
	if err != nil {
		return nil, err
	}

	m.publishRegistered(ctx, u)
	m.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", u.ID),
		slog.String("role", u.Role),
	)

	return &Result{
		User:    u,
		Token:   tok,
		Message: fmt.Sprintf("Welcome, %s!", u.FirstName),
	}, nil
}

// Login authenticates credentials and starts a session. Unknown emails and
// wrong passwords produce the same message.
func (m *Manager) Login(ctx context.Context, email, password string) (*Result, error) {
	if email == "" || password == "" {
		return nil, apperrors.InvalidInput("Email and password are required")
	}

	u, err := m.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		return nil, apperrors.Wrap(err, "look up user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	tok, err := m.signIn(ctx, u)
	if err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "user logged in", slog.String("user_id", u.ID))

	return &Result{
		User:    u,
		Token:   tok,
		Message: fmt.Sprintf("Welcome back, %s!", u.FirstName),
	}, nil
}

// Logout ends the session: the stored token is removed and the user's cart
// is cleared. Logging out while already signed out is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	u := m.CurrentUser(ctx)

	if err := m.tokens.Delete(ctx, m.sessionID); err != nil {
		return apperrors.Wrap(err, "delete session token")
	}

	if u != nil {
		if err := m.carts.Delete(ctx, u.ID); err != nil {
			m.logger.WarnContext(ctx, "clear cart on logout failed",
				slog.String("user_id", u.ID),
				slog.String("error", err.Error()),
			)
		}
		m.logger.InfoContext(ctx, "user logged out", slog.String("user_id", u.ID))
	}

	m.mu.Lock()
	m.justLoggedOut = u != nil
	m.mu.Unlock()

	m.notify(State{})
	return nil
}

// IsAuthenticated reports whether a stored, unexpired token exists. The
// check is against the wall clock on every call, never cached.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	tok, err := m.tokens.Get(ctx, m.sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			m.logger.DebugContext(ctx, "session token unreadable",
				slog.String("error", err.Error()))
		}
		return false
	}
	return m.codec.Valid(tok, m.now())
}

// CurrentUser returns the signed-in user, or nil when the session is absent,
// expired, malformed, or the account no longer exists.
func (m *Manager) CurrentUser(ctx context.Context) *domain.User {
	tok, err := m.tokens.Get(ctx, m.sessionID)
	if err != nil {
		return nil
	}

	claims, err := m.codec.Decode(tok)
	if err != nil || claims.Expired(m.now()) {
		return nil
	}

	u, err := m.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil
	}
	return u
}

// HasRole reports whether the signed-in user holds the given role.
func (m *Manager) HasRole(ctx context.Context, role string) bool {
	u := m.CurrentUser(ctx)
	return u != nil && u.Role == role
}

// IsAdmin reports whether the signed-in user is an administrator.
func (m *Manager) IsAdmin(ctx context.Context) bool {
	return m.HasRole(ctx, domain.RoleAdmin)
}

// JustLoggedOut reports whether the last state change was a logout. The flag
// clears on first read; it exists for a one-shot post-logout notice.
func (m *Manager) JustLoggedOut() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.justLoggedOut
	m.justLoggedOut = false
	return v
}

// RegisteredUsersCount returns the total number of accounts.
func (m *Manager) RegisteredUsersCount(ctx context.Context) (int, error) {
	return m.users.Count(ctx)
}

// RequestPasswordReset issues a reset token for the address if an account
// exists. The returned message is identical either way; the token is only
// populated when an account was found.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) (*Result, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	u, err := m.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &Result{Message: resetInstructionsMessage}, nil
		}
		return nil, apperrors.Wrap(err, "look up user")
	}

	tok, err := m.reset.Generate(u.Email)
	if err != nil {
		return nil, apperrors.Wrap(err, "generate reset token")
	}

	if err := m.resets.Save(ctx, tok, u.Email, m.now().Add(token.ResetValidity)); err != nil {
		return nil, apperrors.Wrap(err, "store reset token")
	}

	m.logger.InfoContext(ctx, "password reset requested", slog.String("user_id", u.ID))

	return &Result{Token: tok, Message: resetInstructionsMessage}, nil
}

// ValidateResetToken checks that a reset token is well formed, unexpired,
// and not yet used.
func (m *Manager) ValidateResetToken(ctx context.Context, tok string) error {
	claims, err := m.reset.Validate(tok)
	if err != nil {
		return apperrors.InvalidInput("Invalid or expired reset token")
	}

	email, err := m.resets.Get(ctx, tok)
	if err != nil || !strings.EqualFold(email, claims.Email) {
		return apperrors.InvalidInput("Invalid or expired reset token")
	}
	return nil
}

// ResetPassword sets a new password for the account tied to the reset token.
// Tokens are single-use: a second attempt with the same token fails.
func (m *Manager) ResetPassword(ctx context.Context, tok, newPassword string) (*Result, error) {
	if err := ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	claims, err := m.reset.Validate(tok)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid or expired reset token")
	}

	email, err := m.resets.Consume(ctx, tok)
	if err != nil || !strings.EqualFold(email, claims.Email) {
		return nil, apperrors.InvalidInput("Invalid or expired reset token")
	}

	u, err := m.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, apperrors.Wrap(err, "look up user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "hash password")
	}

	u.PasswordHash = string(hash)
	if err := m.users.Update(ctx, u); err != nil {
		return nil, err
	}

	m.publishPasswordReset(ctx, u.Email)
	m.logger.InfoContext(ctx, "password reset completed", slog.String("user_id", u.ID))

	return &Result{User: u, Message: "Password reset successful! Please log in."}, nil
}

// Subscribe registers an observer for auth-state changes and immediately
// delivers the current state. The returned function unsubscribes.
func (m *Manager) Subscribe(ctx context.Context, obs Observer) func() {
	m.mu.Lock()
	id := m.nextObsID
	m.nextObsID++
	m.observers[id] = obs
	m.mu.Unlock()

	u := m.CurrentUser(ctx)
	obs(State{Authenticated: u != nil, User: u})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.observers, id)
	}
}

// signIn issues a fresh token for the user and stores it, replacing any
// previous session.
func (m *Manager) signIn(ctx context.Context, u *domain.User) (string, error) {
	tok, err := m.codec.Issue(u, m.now())
	if err != nil {
		return "", apperrors.Wrap(err, "issue token")
	}

	if err := m.tokens.Set(ctx, m.sessionID, tok); err != nil {
		return "", apperrors.Wrap(err, "store token")
	}

	m.mu.Lock()
	m.justLoggedOut = false
	m.mu.Unlock()

	m.notify(State{Authenticated: true, User: u})
	return tok, nil
}

func (m *Manager) notify(s State) {
	m.mu.Lock()
	observers := make([]Observer, 0, len(m.observers))
	for _, obs := range m.observers {
		observers = append(observers, obs)
	}
	m.mu.Unlock()

	for _, obs := range observers {
		obs(s)
	}
}

func (m *Manager) publishRegistered(ctx context.Context, u *domain.User) {
	if m.events == nil {
		return
	}
	if err := m.events.UserRegistered(ctx, u); err != nil {
		m.logger.WarnContext(ctx, "publish user registered failed",
			slog.String("error", err.Error()))
	}
}

func (m *Manager) publishPasswordReset(ctx context.Context, email string) {
	if m.events == nil {
		return
	}
	if err := m.events.PasswordReset(ctx, email); err != nil {
		m.logger.WarnContext(ctx, "publish password reset failed",
			slog.String("error", err.Error()))
	}
}
