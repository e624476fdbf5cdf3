package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mtkebuch/skincareWeb/internal/domain"
	pkgkafka "github.com/mtkebuch/skincareWeb/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicUserRegistered    = "storefront.user.registered"
	TopicUserPasswordReset = "storefront.user.password_reset"
	TopicCartUpdated       = "storefront.cart.updated"
	TopicCartCleared       = "storefront.cart.cleared"
	TopicOrderPlaced       = "storefront.order.placed"
)

// Aggregate type constants.
const (
	AggregateTypeUser  = "user"
	AggregateTypeCart  = "cart"
	AggregateTypeOrder = "order"
)

// Source identifier for events originating from the storefront.
const SourceStorefront = "storefront"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// UserPasswordResetData is the payload for a user.password_reset event.
type UserPasswordResetData struct {
	Email string `json:"email"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	OwnerID   string `json:"owner_id"`
	ItemCount int    `json:"item_count"`
	Total     int64  `json:"total"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	OwnerID string `json:"owner_id"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ItemCount int    `json:"item_count"`
	Total     int64  `json:"total"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// UserRegistered publishes a user.registered event.
func (p *Producer) UserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}

	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, data)
}

// PasswordReset publishes a user.password_reset event.
func (p *Producer) PasswordReset(ctx context.Context, email string) error {
	return p.publish(ctx, TopicUserPasswordReset, email, AggregateTypeUser, UserPasswordResetData{Email: email})
}

// CartUpdated publishes a cart.updated event.
func (p *Producer) CartUpdated(ctx context.Context, ownerID string, itemCount int, total int64) error {
	data := CartUpdatedData{
		OwnerID:   ownerID,
		ItemCount: itemCount,
		Total:     total,
	}

	return p.publish(ctx, TopicCartUpdated, ownerID, AggregateTypeCart, data)
}

// CartCleared publishes a cart.cleared event.
func (p *Producer) CartCleared(ctx context.Context, ownerID string) error {
	return p.publish(ctx, TopicCartCleared, ownerID, AggregateTypeCart, CartClearedData{OwnerID: ownerID})
}

// OrderPlaced publishes an order.placed event.
func (p *Producer) OrderPlaced(ctx context.Context, o *domain.Order) error {
	data := OrderPlacedData{
		ID:        o.ID,
		UserID:    o.UserID,
		ItemCount: len(o.Items),
		Total:     o.Total,
	}

	return p.publish(ctx, TopicOrderPlaced, o.ID, AggregateTypeOrder, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
