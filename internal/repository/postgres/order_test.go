package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtkebuch/skincareWeb/internal/domain"
	apperrors "github.com/mtkebuch/skincareWeb/pkg/errors"
)

func newOrderTestFixture(t *testing.T) (*OrderRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewOrderRepository(mock)
	return repo, mock
}

func sampleOrder(t *testing.T) *domain.Order {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Order{
		ID:            "ORD-1756700000000",
		UserID:        "user_1756700000000_000000042",
		CustomerName:  "Alice Smith",
		CustomerEmail: "alice@example.com",
		Status:        domain.OrderStatusPending,
		Items: []domain.LineItem{
			{ProductID: "p1", Name: "Serum", Price: 2490, Quantity: 2},
		},
		Subtotal:     4980,
		ShippingCost: 1000,
		Total:        5980,
		ShippingAddress: domain.ShippingAddress{
			FirstName: "Alice", LastName: "Smith", Email: "alice@example.com",
			Phone: "5551234567", Address: "1 Main St", City: "Springfield",
			PostalCode: "12345",
		},
		PaymentMethod: "card",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func orderPgColumns() []string {
	return []string{
		"id", "user_id", "customer_name", "customer_email", "status",
		"subtotal", "shipping_cost", "total", "payment_method",
		"items", "shipping_address", "created_at", "updated_at",
	}
}

func orderRow(t *testing.T, o *domain.Order) *pgxmock.Rows {
	t.Helper()
	itemsJSON, err := json.Marshal(o.Items)
	require.NoError(t, err)
	addressJSON, err := json.Marshal(o.ShippingAddress)
	require.NoError(t, err)

	return pgxmock.NewRows(orderPgColumns()).AddRow(
		o.ID, o.UserID, o.CustomerName, o.CustomerEmail, o.Status,
		o.Subtotal, o.ShippingCost, o.Total, o.PaymentMethod,
		itemsJSON, addressJSON, o.CreatedAt, o.UpdatedAt,
	)
}

func TestOrderRepository_Create_Success(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	o := sampleOrder(t)

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(
			o.ID, o.UserID, o.CustomerName, o.CustomerEmail, o.Status,
			o.Subtotal, o.ShippingCost, o.Total, o.PaymentMethod,
			pgxmock.AnyArg(), pgxmock.AnyArg(), o.CreatedAt, o.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), o)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_DuplicateID(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	o := sampleOrder(t)

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(
			o.ID, o.UserID, o.CustomerName, o.CustomerEmail, o.Status,
			o.Subtotal, o.ShippingCost, o.Total, o.PaymentMethod,
			pgxmock.AnyArg(), pgxmock.AnyArg(), o.CreatedAt, o.UpdatedAt,
		).
		WillReturnError(fmt.Errorf(`ERROR: duplicate key value violates unique constraint "orders_pkey" (SQLSTATE 23505)`))

	err := repo.Create(context.Background(), o)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))
}

func TestOrderRepository_GetByID(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	o := sampleOrder(t)

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs(o.ID).
		WillReturnRows(orderRow(t, o))

	got, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, o.Total, got.Total)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p1", got.Items[0].ProductID)
	assert.Equal(t, "Springfield", got.ShippingAddress.City)
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("ORD-0").
		WillReturnRows(pgxmock.NewRows(orderPgColumns()))

	_, err := repo.GetByID(context.Background(), "ORD-0")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestOrderRepository_ListByUser(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	o := sampleOrder(t)

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs(o.UserID).
		WillReturnRows(orderRow(t, o))

	orders, err := repo.ListByUser(context.Background(), o.UserID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)
}

func TestOrderRepository_ListByUser_Empty(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("user_none").
		WillReturnRows(pgxmock.NewRows(orderPgColumns()))

	orders, err := repo.ListByUser(context.Background(), "user_none")
	require.NoError(t, err)
	assert.Empty(t, orders)
}
