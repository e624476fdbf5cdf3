package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtkebuch/skincareWeb/internal/domain"
	"github.com/mtkebuch/skincareWeb/internal/repository/memory"
	apperrors "github.com/mtkebuch/skincareWeb/pkg/errors"
	"github.com/mtkebuch/skincareWeb/pkg/logger"
)

func newTestContainer(t *testing.T) (*Container, *memory.CartStore) {
	t.Helper()
	store := memory.NewCartStore()
	c := NewContainer(context.Background(), "user-1", store, logger.New("test", "error"))
	return c, store
}

func serum(qty int) domain.LineItem {
	return domain.LineItem{
		ProductID: "prod-serum",
		Name:      "Vitamin C Serum",
		Price:     2490,
		Quantity:  qty,
		ImageURL:  "serum.jpg",
		Variant:   "30ml",
	}
}

func moisturizer(qty int) domain.LineItem {
	return domain.LineItem{
		ProductID: "prod-moist",
		Name:      "Night Moisturizer",
		Price:     1890,
		Quantity:  qty,
	}
}

func TestContainer_AddItem_AppendsAndOpens(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	assert.False(t, c.Opened())
	require.NoError(t, c.AddItem(ctx, serum(2)))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, c.Opened())
}

func TestContainer_AddItem_IncrementsExisting(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, serum(2)))
	require.NoError(t, c.AddItem(ctx, serum(3)))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestContainer_AddItem_ClampsQuantity(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, serum(0)))
	assert.Equal(t, 1, c.Items()[0].Quantity)

	require.NoError(t, c.AddItem(ctx, serum(5000)))
	assert.Equal(t, domain.MaxQuantityPerItem, c.Items()[0].Quantity)
}

func TestContainer_SetQuantity_Clamps(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, serum(2)))

	require.NoError(t, c.SetQuantity(ctx, "prod-serum", 0))
	assert.Equal(t, 1, c.Items()[0].Quantity)

	require.NoError(t, c.SetQuantity(ctx, "prod-serum", 5000))
	assert.Equal(t, 999, c.Items()[0].Quantity)
}

func TestContainer_SetQuantity_MissingItem(t *testing.T) {
	c, _ := newTestContainer(t)

	err := c.SetQuantity(context.Background(), "prod-missing", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestContainer_RemoveItem(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, serum(1)))
	require.NoError(t, c.AddItem(ctx, moisturizer(1)))

	require.NoError(t, c.RemoveItem(ctx, "prod-serum"))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "prod-moist", items[0].ProductID)

	// Removing an absent product is a no-op.
	require.NoError(t, c.RemoveItem(ctx, "prod-serum"))
	assert.Len(t, c.Items(), 1)
}

func TestContainer_TotalAndItemCount(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, serum(2)))
	require.NoError(t, c.AddItem(ctx, moisturizer(3)))

	assert.Equal(t, int64(2*2490+3*1890), c.Total())
	assert.Equal(t, 5, c.ItemCount())
}

func TestContainer_Clear_EmptiesAndCloses(t *testing.T) {
	c, store := newTestContainer(t)
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, serum(2)))
	require.True(t, c.Opened())

	require.NoError(t, c.Clear(ctx))

	assert.Empty(t, c.Items())
	assert.False(t, c.Opened())

	persisted, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, persisted.Items)
}

func TestContainer_PersistsEveryMutation(t *testing.T) {
	c, store := newTestContainer(t)
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, serum(2)))

	persisted, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, persisted.Items, 1)
	assert.Equal(t, 2, persisted.Items[0].Quantity)

	require.NoError(t, c.SetQuantity(ctx, "prod-serum", 7))

	persisted, err = store.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 7, persisted.Items[0].Quantity)
}

func TestContainer_LoadsPersistedCart(t *testing.T) {
	store := memory.NewCartStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user-1", &domain.Cart{
		Items: []domain.LineItem{serum(4)},
	}))

	c := NewContainer(ctx, "user-1", store, logger.New("test", "error"))
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
	assert.False(t, c.Opened())
}

func TestContainer_MalformedStoredCartStartsEmpty(t *testing.T) {
	store := memory.NewCartStore()
	store.Corrupt("user-1", []byte("not-json"))

	c := NewContainer(context.Background(), "user-1", store, logger.New("test", "error"))
	assert.Empty(t, c.Items())
	assert.Zero(t, c.Total())
}

func TestContainer_SubscribeDeliversCurrentStateImmediately(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, serum(2)))

	var got []Snapshot
	unsub := c.Subscribe(func(s Snapshot) { got = append(got, s) })
	defer unsub()

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ItemCount)
}

func TestContainer_ObserversNotifiedOnEveryMutation(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	var got []Snapshot
	unsub := c.Subscribe(func(s Snapshot) { got = append(got, s) })
	defer unsub()
	got = nil

	require.NoError(t, c.AddItem(ctx, serum(1)))
	require.NoError(t, c.SetQuantity(ctx, "prod-serum", 3))
	require.NoError(t, c.RemoveItem(ctx, "prod-serum"))

	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].ItemCount)
	assert.Equal(t, 3, got[1].ItemCount)
	assert.Equal(t, 0, got[2].ItemCount)
}

func TestContainer_UnsubscribeStopsDelivery(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	calls := 0
	unsub := c.Subscribe(func(Snapshot) { calls++ })
	unsub()
	calls = 0

	require.NoError(t, c.AddItem(ctx, serum(1)))
	assert.Zero(t, calls)
}

type failingCartStore struct {
	*memory.CartStore
	fail bool
}

func (s *failingCartStore) Save(ctx context.Context, ownerID string, cart *domain.Cart) error {
	if s.fail {
		return errors.New("store down")
	}
	return s.CartStore.Save(ctx, ownerID, cart)
}

func TestContainer_StoreFailureLeavesStateUnchanged(t *testing.T) {
	store := &failingCartStore{CartStore: memory.NewCartStore()}
	c := NewContainer(context.Background(), "user-1", store, logger.New("test", "error"))
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, serum(2)))

	store.fail = true
	err := c.SetQuantity(ctx, "prod-serum", 9)
	require.Error(t, err)

	// The failed mutation did not take effect.
	assert.Equal(t, 2, c.Items()[0].Quantity)
}
