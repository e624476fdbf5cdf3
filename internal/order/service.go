// Package order implements checkout: validating shipping and payment input,
// freezing the cart into an order record, and reading orders back for
// confirmation.
package order

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/mtkebuch/skincareWeb/internal/cart"
	"github.com/mtkebuch/skincareWeb/internal/domain"
	"github.com/mtkebuch/skincareWeb/internal/repository"
	apperrors "github.com/mtkebuch/skincareWeb/pkg/errors"
)

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern      = regexp.MustCompile(`^[0-9]{9,15}$`)
	phoneStripPattern = regexp.MustCompile(`[\s\-\(\)]`)
	cardNumberPattern = regexp.MustCompile(`^[0-9]{16}$`)
	cardExpiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])\/([0-9]{2})$`)
	cardCVVPattern    = regexp.MustCompile(`^[0-9]{3,4}$`)
)

// PaymentMethodCard is the only payment method with extra validation; any
// other method is recorded as-is.
const PaymentMethodCard = "card"

// CardDetails is the card input validated at checkout. It is checked and
// discarded, never stored.
type CardDetails struct {
	Number string
	Name   string
	Expiry string
	CVV    string
}

// PlaceInput is everything checkout collects.
type PlaceInput struct {
	Shipping      domain.ShippingAddress
	PaymentMethod string
	Card          CardDetails
	AgreedToTerms bool
}

// Result carries the placed order and its confirmation message.
type Result struct {
	Order   *domain.Order
	Message string
}

// Events is the slice of the event producer checkout uses.
type Events interface {
	OrderPlaced(ctx context.Context, o *domain.Order) error
}

// Service coordinates order placement and retrieval.
type Service struct {
	orders repository.OrderStore
	events Events
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the service clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithEvents attaches an event publisher.
func WithEvents(events Events) Option {
	return func(s *Service) { s.events = events }
}

// NewService creates an order service.
func NewService(orders repository.OrderStore, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		orders: orders,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Place validates the checkout input, freezes the cart into an order, and
// clears the cart. The cart is only cleared after the order is persisted.
func (s *Service) Place(ctx context.Context, user *domain.User, c *cart.Container, in PlaceInput) (*Result, error) {
	items := c.Items()
	if len(items) == 0 {
		return nil, apperrors.InvalidInput("Your cart is empty")
	}

	if err := validateShipping(&in.Shipping); err != nil {
		return nil, err
	}
	if in.PaymentMethod == PaymentMethodCard {
		if err := validateCard(&in.Card); err != nil {
			return nil, err
		}
	}
	if !in.AgreedToTerms {
		return nil, apperrors.InvalidInput("Please agree to the terms and conditions")
	}

	now := s.now().UTC()
	subtotal := c.Total()
	shipping := domain.ShippingCostFor(subtotal)

	o := &domain.Order{
		ID:              domain.NewOrderID(now),
		UserID:          user.ID,
		CustomerName:    in.Shipping.FullName(),
		CustomerEmail:   in.Shipping.Email,
		Status:          domain.OrderStatusPending,
		Items:           items,
		Subtotal:        subtotal,
		ShippingCost:    shipping,
		Total:           subtotal + shipping,
		ShippingAddress: in.Shipping,
		PaymentMethod:   in.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	if err := c.Clear(ctx); err != nil {
		// The order exists; a lingering cart is the lesser failure.
		s.logger.WarnContext(ctx, "clear cart after checkout failed",
			slog.String("order_id", o.ID),
			slog.String("error", err.Error()),
		)
	}

	s.publishPlaced(ctx, o)

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", o.ID),
		slog.String("user_id", o.UserID),
		slog.Int64("total", o.Total),
	)

	return &Result{Order: o, Message: "Order placed successfully!"}, nil
}

// Get returns one of the user's orders. Administrators may read any order;
// other users' orders are reported as missing.
func (s *Service) Get(ctx context.Context, user *domain.User, orderID string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != user.ID && user.Role != domain.RoleAdmin {
		return nil, apperrors.NotFound("order", orderID)
	}
	return o, nil
}

// ListForUser returns the user's order history, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *Service) publishPlaced(ctx context.Context, o *domain.Order) {
	if s.events == nil {
		return
	}
	if err := s.events.OrderPlaced(ctx, o); err != nil {
		s.logger.WarnContext(ctx, "publish order placed failed",
			slog.String("order_id", o.ID),
			slog.String("error", err.Error()),
		)
	}
}

func validateShipping(a *domain.ShippingAddress) error {
	if strings.TrimSpace(a.FirstName) == "" {
		return apperrors.InvalidInput("First name is required")
	}
	if strings.TrimSpace(a.LastName) == "" {
		return apperrors.InvalidInput("Last name is required")
	}
	if !emailPattern.MatchString(a.Email) {
		return apperrors.InvalidInput("Valid email is required")
	}
	if !phonePattern.MatchString(phoneStripPattern.ReplaceAllString(a.Phone, "")) {
		return apperrors.InvalidInput("Valid phone number is required")
	}
	if strings.TrimSpace(a.Address) == "" {
		return apperrors.InvalidInput("Address is required")
	}
	if strings.TrimSpace(a.City) == "" {
		return apperrors.InvalidInput("City is required")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		return apperrors.InvalidInput("Postal code is required")
	}
	return nil
}

func validateCard(c *CardDetails) error {
	if !cardNumberPattern.MatchString(strings.ReplaceAll(c.Number, " ", "")) {
		return apperrors.InvalidInput("Valid 16-digit card number is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return apperrors.InvalidInput("Cardholder name is required")
	}
	if !cardExpiryPattern.MatchString(c.Expiry) {
		return apperrors.InvalidInput("Valid expiry date is required (MM/YY)")
	}
	if !cardCVVPattern.MatchString(c.CVV) {
		return apperrors.InvalidInput("Valid CVV is required")
	}
	return nil
}
