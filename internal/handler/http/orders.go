package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtkebuch/skincareWeb/internal/cart"
	"github.com/mtkebuch/skincareWeb/internal/domain"
	"github.com/mtkebuch/skincareWeb/internal/order"
	"github.com/mtkebuch/skincareWeb/internal/repository"
	"github.com/mtkebuch/skincareWeb/pkg/httputil"
	"github.com/mtkebuch/skincareWeb/pkg/middleware"
)

// OrderHandler handles HTTP requests for checkout and order history.
type OrderHandler struct {
	service *order.Service
	carts   repository.CartStore
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(service *order.Service, carts repository.CartStore, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{service: service, carts: carts, logger: logger}
}

// PlaceOrderRequest is the JSON request body for checkout.
type PlaceOrderRequest struct {
	Shipping struct {
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		Email      string `json:"email"`
		Phone      string `json:"phone"`
		Address    string `json:"address"`
		City       string `json:"city"`
		PostalCode string `json:"postal_code"`
		Country    string `json:"country"`
	} `json:"shipping"`
	PaymentMethod string `json:"payment_method" validate:"required"`
	Card          struct {
		Number string `json:"number"`
		Name   string `json:"name"`
		Expiry string `json:"expiry"`
		CVV    string `json:"cvv"`
	} `json:"card"`
	AgreedToTerms bool `json:"agreed_to_terms"`
}

// PlaceOrderResponse is the JSON shape of a successful checkout.
type PlaceOrderResponse struct {
	Order   *domain.Order `json:"order"`
	Message string        `json:"message"`
}

// Place handles POST /api/v1/orders.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUserOr401(w, r, h.logger)
	if !ok {
		return
	}

	var req PlaceOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in := order.PlaceInput{
		Shipping: domain.ShippingAddress{
			FirstName:  req.Shipping.FirstName,
			LastName:   req.Shipping.LastName,
			Email:      req.Shipping.Email,
			Phone:      req.Shipping.Phone,
			Address:    req.Shipping.Address,
			City:       req.Shipping.City,
			PostalCode: req.Shipping.PostalCode,
			Country:    req.Shipping.Country,
		},
		PaymentMethod: req.PaymentMethod,
		Card: order.CardDetails{
			Number: req.Card.Number,
			Name:   req.Card.Name,
			Expiry: req.Card.Expiry,
			CVV:    req.Card.CVV,
		},
		AgreedToTerms: req.AgreedToTerms,
	}

	c := cart.NewContainer(r.Context(), user.ID, h.carts, h.logger)
	res, err := h.service.Place(r.Context(), user, c, in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: PlaceOrderResponse{Order: res.Order, Message: res.Message},
	})
}

// Get handles GET /api/v1/orders/{orderID}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUserOr401(w, r, h.logger)
	if !ok {
		return
	}

	o, err := h.service.Get(r.Context(), user, chi.URLParam(r, "orderID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: o})
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUserOr401(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.ListForUser(r.Context(), user.ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: orders})
}

// currentUserOr401 materializes the authenticated user from token claims.
func currentUserOr401(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*domain.User, bool) {
	id, ok := userIDOr401(w, r, logger)
	if !ok {
		return nil, false
	}
	return &domain.User{
		ID:    id,
		Email: middleware.EmailFromContext(r.Context()),
		Role:  middleware.RoleFromContext(r.Context()),
	}, true
}
