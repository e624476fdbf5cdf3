// Package cart holds the stateful cart container. The container keeps the
// working copy of a single owner's cart in memory, writes every mutation
// through to the backing store before it takes effect, and notifies
// subscribers synchronously after each successful change.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mtkebuch/skincareWeb/internal/domain"
	"github.com/mtkebuch/skincareWeb/internal/repository"
	apperrors "github.com/mtkebuch/skincareWeb/pkg/errors"
)

// Snapshot is the immutable view handed to subscribers on every change.
type Snapshot struct {
	Items     []domain.LineItem
	Total     int64
	ItemCount int
	Opened    bool
}

// Observer receives a snapshot after every committed cart change.
type Observer func(Snapshot)

// Container manages one owner's cart. All methods are safe for concurrent
// use. Mutations persist before they are visible: a store failure leaves the
// in-memory cart untouched.
type Container struct {
	ownerID string
	store   repository.CartStore
	logger  *slog.Logger

	mu        sync.Mutex
	items     []domain.LineItem
	opened    bool
	observers map[int]Observer
	nextObsID int
}

// NewContainer creates a container for the given owner and loads any
// previously persisted cart. A missing or unreadable stored cart yields an
// empty one rather than an error.
func NewContainer(ctx context.Context, ownerID string, store repository.CartStore, logger *slog.Logger) *Container {
	c := &Container{
		ownerID:   ownerID,
		store:     store,
		logger:    logger,
		observers: make(map[int]Observer),
	}

	stored, err := store.Get(ctx, ownerID)
	switch {
	case err == nil:
		c.items = stored.Items
	case errors.Is(err, apperrors.ErrNotFound):
		// First visit, start empty.
	default:
		logger.WarnContext(ctx, "stored cart unreadable, starting empty",
			slog.String("owner_id", ownerID),
			slog.String("error", err.Error()),
		)
	}

	return c
}

// OwnerID returns the owner this container belongs to.
func (c *Container) OwnerID() string {
	return c.ownerID
}

// AddItem adds a product to the cart. If the product is already present its
// quantity is incremented instead; quantities are clamped to the allowed
// range either way. Adding also opens the cart.
func (c *Container) AddItem(ctx context.Context, item domain.LineItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := cloneItems(c.items)
	if i := (&domain.Cart{Items: next}).FindItemIndex(item.ProductID); i >= 0 {
		next[i].Quantity = domain.ClampQuantity(next[i].Quantity + item.Quantity)
	} else {
		item.Quantity = domain.ClampQuantity(item.Quantity)
		next = append(next, item)
	}

	if err := c.persist(ctx, next); err != nil {
		return err
	}

	c.items = next
	c.opened = true
	c.notify()
	return nil
}

// RemoveItem deletes a product from the cart. Removing an absent product is
// not an error.
func (c *Container) RemoveItem(ctx context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := (&domain.Cart{Items: c.items}).FindItemIndex(productID)
	if i < 0 {
		return nil
	}

	next := cloneItems(c.items)
	next = append(next[:i], next[i+1:]...)

	if err := c.persist(ctx, next); err != nil {
		return err
	}

	c.items = next
	c.notify()
	return nil
}

// SetQuantity sets the quantity of a product already in the cart, clamped to
// the allowed range.
func (c *Container) SetQuantity(ctx context.Context, productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := (&domain.Cart{Items: c.items}).FindItemIndex(productID)
	if i < 0 {
		return apperrors.NotFound("cart item", productID)
	}

	next := cloneItems(c.items)
	next[i].Quantity = domain.ClampQuantity(quantity)

	if err := c.persist(ctx, next); err != nil {
		return err
	}

	c.items = next
	c.notify()
	return nil
}

// Clear empties the cart and closes it.
func (c *Container) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.persist(ctx, nil); err != nil {
		return err
	}

	c.items = nil
	c.opened = false
	c.notify()
	return nil
}

// Items returns a copy of the current line items.
func (c *Container) Items() []domain.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneItems(c.items)
}

// Total returns the cart total in minor currency units.
func (c *Container) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return (&domain.Cart{Items: c.items}).Total()
}

// ItemCount returns the summed quantity across all line items.
func (c *Container) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return (&domain.Cart{Items: c.items}).ItemCount()
}

// Open marks the cart UI as visible and notifies subscribers.
func (c *Container) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened = true
	c.notify()
}

// Close marks the cart UI as hidden and notifies subscribers.
func (c *Container) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened = false
	c.notify()
}

// Opened reports whether the cart UI is currently visible.
func (c *Container) Opened() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}

// Subscribe registers an observer and immediately delivers the current
// snapshot. The returned function unsubscribes.
func (c *Container) Subscribe(obs Observer) func() {
	c.mu.Lock()
	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = obs
	snap := c.snapshotLocked()
	c.mu.Unlock()

	obs(snap)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Snapshot returns the current cart state.
func (c *Container) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Container) persist(ctx context.Context, items []domain.LineItem) error {
	cart := &domain.Cart{Items: items, UpdatedAt: time.Now().UTC()}
	if err := c.store.Save(ctx, c.ownerID, cart); err != nil {
		c.logger.ErrorContext(ctx, "persist cart failed",
			slog.String("owner_id", c.ownerID),
			slog.String("error", err.Error()),
		)
		return apperrors.Wrap(err, "persist cart")
	}
	return nil
}

// notify delivers the current snapshot to every observer. Callers must hold
// c.mu; observers run synchronously and must not call back into the
// container.
func (c *Container) notify() {
	snap := c.snapshotLocked()
	for _, obs := range c.observers {
		obs(snap)
	}
}

func (c *Container) snapshotLocked() Snapshot {
	cart := &domain.Cart{Items: c.items}
	return Snapshot{
		Items:     cloneItems(c.items),
		Total:     cart.Total(),
		ItemCount: cart.ItemCount(),
		Opened:    c.opened,
	}
}

func cloneItems(items []domain.LineItem) []domain.LineItem {
	if items == nil {
		return nil
	}
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out
}
