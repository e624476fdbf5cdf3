package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtkebuch/skincareWeb/internal/domain"
	apperrors "github.com/mtkebuch/skincareWeb/pkg/errors"
)

func setupTestRedis(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func sampleCart() *domain.Cart {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Cart{
		Items: []domain.LineItem{
			{
				ProductID: "prod-1",
				Name:      "Vitamin C Serum",
				Price:     2490,
				Quantity:  2,
				ImageURL:  "serum.jpg",
				Variant:   "30ml",
			},
		},
		UpdatedAt: now,
	}
}

// ---------------------------------------------------------------------------
// TokenStore
// ---------------------------------------------------------------------------

func TestTokenStore_SetGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewTokenStore(client, 24*time.Hour)

	err := store.Set(context.Background(), "sess-1", "tok.abc.def")
	require.NoError(t, err)

	got, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "tok.abc.def", got)
}

func TestTokenStore_Set_Replaces(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewTokenStore(client, 24*time.Hour)

	require.NoError(t, store.Set(context.Background(), "sess-1", "old"))
	require.NoError(t, store.Set(context.Background(), "sess-1", "new"))

	got, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "new", got)
}

func TestTokenStore_Get_NotFound(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewTokenStore(client, 24*time.Hour)

	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTokenStore_Delete_Idempotent(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewTokenStore(client, 24*time.Hour)

	require.NoError(t, store.Set(context.Background(), "sess-1", "tok"))
	require.NoError(t, store.Delete(context.Background(), "sess-1"))

	// Deleting again is not an error.
	require.NoError(t, store.Delete(context.Background(), "sess-1"))

	_, err := store.Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTokenStore_ExpiresWithTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewTokenStore(client, time.Minute)

	require.NoError(t, store.Set(context.Background(), "sess-1", "tok"))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ---------------------------------------------------------------------------
// CartStore
// ---------------------------------------------------------------------------

func TestCartStore_SaveGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewCartStore(client, 24*time.Hour)

	cart := sampleCart()
	require.NoError(t, store.Save(context.Background(), "user-1", cart))

	got, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "prod-1", got.Items[0].ProductID)
	assert.Equal(t, int64(2490), got.Items[0].Price)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, "30ml", got.Items[0].Variant)
}

func TestCartStore_Get_NotFound(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewCartStore(client, 24*time.Hour)

	got, err := store.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartStore_Get_MalformedPayload(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewCartStore(client, 24*time.Hour)

	require.NoError(t, mr.Set("cart:user-1", "not-json"))

	got, err := store.Get(context.Background(), "user-1")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartStore_Save_Overwrites(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewCartStore(client, 24*time.Hour)

	cart := sampleCart()
	require.NoError(t, store.Save(context.Background(), "user-1", cart))

	cart.Items = nil
	require.NoError(t, store.Save(context.Background(), "user-1", cart))

	data, err := mr.Get("cart:user-1")
	require.NoError(t, err)

	var stored domain.Cart
	require.NoError(t, json.Unmarshal([]byte(data), &stored))
	assert.Empty(t, stored.Items)
}

func TestCartStore_Delete(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewCartStore(client, 24*time.Hour)

	require.NoError(t, store.Save(context.Background(), "user-1", sampleCart()))
	require.NoError(t, store.Delete(context.Background(), "user-1"))

	_, err := store.Get(context.Background(), "user-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ---------------------------------------------------------------------------
// ResetTokenStore
// ---------------------------------------------------------------------------

func TestResetTokenStore_SaveGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewResetTokenStore(client)

	err := store.Save(context.Background(), "reset-tok", "alice@example.com", time.Now().Add(time.Hour))
	require.NoError(t, err)

	email, err := store.Get(context.Background(), "reset-tok")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	// Get does not consume; a second read still succeeds.
	email, err = store.Get(context.Background(), "reset-tok")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)
}

func TestResetTokenStore_Save_HashesKey(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewResetTokenStore(client)

	require.NoError(t, store.Save(context.Background(), "reset-tok", "alice@example.com", time.Now().Add(time.Hour)))

	sum := sha256.Sum256([]byte("reset-tok"))
	assert.True(t, mr.Exists("reset:"+hex.EncodeToString(sum[:])))
	assert.False(t, mr.Exists("reset:reset-tok"))
}

func TestResetTokenStore_Consume_SingleUse(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewResetTokenStore(client)

	require.NoError(t, store.Save(context.Background(), "reset-tok", "alice@example.com", time.Now().Add(time.Hour)))

	email, err := store.Consume(context.Background(), "reset-tok")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	_, err = store.Consume(context.Background(), "reset-tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResetTokenStore_Save_AlreadyExpired(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewResetTokenStore(client)

	err := store.Save(context.Background(), "reset-tok", "alice@example.com", time.Now().Add(-time.Minute))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestResetTokenStore_ExpiresAtTokenExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewResetTokenStore(client)

	require.NoError(t, store.Save(context.Background(), "reset-tok", "alice@example.com", time.Now().Add(time.Hour)))

	mr.FastForward(2 * time.Hour)

	_, err := store.Get(context.Background(), "reset-tok")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
