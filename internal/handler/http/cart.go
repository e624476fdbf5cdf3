package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtkebuch/skincareWeb/internal/cart"
	"github.com/mtkebuch/skincareWeb/internal/domain"
	"github.com/mtkebuch/skincareWeb/internal/repository"
	"github.com/mtkebuch/skincareWeb/pkg/httputil"
)

// CartEvents is the slice of the event producer the cart endpoints use.
// Publish failures never fail the request.
type CartEvents interface {
	CartUpdated(ctx context.Context, ownerID string, itemCount int, total int64) error
	CartCleared(ctx context.Context, ownerID string) error
}

// CartHandler handles HTTP requests for the cart endpoints. A container is
// rebuilt from the store per request, so every response reflects the
// persisted cart.
type CartHandler struct {
	store  repository.CartStore
	events CartEvents
	logger *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler. events may be nil.
func NewCartHandler(store repository.CartStore, events CartEvents, logger *slog.Logger) *CartHandler {
	return &CartHandler{store: store, events: events, logger: logger}
}

// AddItemRequest is the JSON request body for adding a cart item.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Price     int64  `json:"price" validate:"gte=0"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url"`
	Variant   string `json:"variant"`
}

// SetQuantityRequest is the JSON request body for changing an item quantity.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse is the JSON shape of the cart.
type CartResponse struct {
	Items     []domain.LineItem `json:"items"`
	Total     int64             `json:"total"`
	ItemCount int               `json:"item_count"`
}

// Get handles GET /api/v1/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDOr401(w, r, h.logger)
	if !ok {
		return
	}

	c := h.container(r, userID)
	h.writeCart(w, c)
}

// AddItem handles POST /api/v1/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDOr401(w, r, h.logger)
	if !ok {
		return
	}

	var req AddItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	c := h.container(r, userID)
	err := c.AddItem(r.Context(), domain.LineItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     req.Price,
		Quantity:  req.Quantity,
		ImageURL:  req.ImageURL,
		Variant:   req.Variant,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.publishUpdated(r.Context(), c)
	h.writeCart(w, c)
}

// SetQuantity handles PUT /api/v1/cart/items/{productID}.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDOr401(w, r, h.logger)
	if !ok {
		return
	}

	var req SetQuantityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c := h.container(r, userID)
	if err := c.SetQuantity(r.Context(), chi.URLParam(r, "productID"), req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.publishUpdated(r.Context(), c)
	h.writeCart(w, c)
}

// RemoveItem handles DELETE /api/v1/cart/items/{productID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDOr401(w, r, h.logger)
	if !ok {
		return
	}

	c := h.container(r, userID)
	if err := c.RemoveItem(r.Context(), chi.URLParam(r, "productID")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.publishUpdated(r.Context(), c)
	h.writeCart(w, c)
}

// Clear handles DELETE /api/v1/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDOr401(w, r, h.logger)
	if !ok {
		return
	}

	c := h.container(r, userID)
	if err := c.Clear(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if h.events != nil {
		if err := h.events.CartCleared(r.Context(), userID); err != nil {
			h.logger.WarnContext(r.Context(), "publish cart cleared failed",
				slog.String("error", err.Error()))
		}
	}

	h.writeCart(w, c)
}

func (h *CartHandler) container(r *http.Request, userID string) *cart.Container {
	return cart.NewContainer(r.Context(), userID, h.store, h.logger)
}

func (h *CartHandler) writeCart(w http.ResponseWriter, c *cart.Container) {
	snap := c.Snapshot()
	items := snap.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: CartResponse{Items: items, Total: snap.Total, ItemCount: snap.ItemCount},
	})
}

func (h *CartHandler) publishUpdated(ctx context.Context, c *cart.Container) {
	if h.events == nil {
		return
	}
	snap := c.Snapshot()
	if err := h.events.CartUpdated(ctx, c.OwnerID(), snap.ItemCount, snap.Total); err != nil {
		h.logger.WarnContext(ctx, "publish cart updated failed",
			slog.String("error", err.Error()))
	}
}
