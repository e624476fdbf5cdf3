package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/mtkebuch/skincareWeb/pkg/errors"
)

const resetKeyPrefix = "reset:"

// ResetTokenStore implements repository.ResetTokenStore using Redis. Tokens
// are keyed by their SHA-256 digest so the raw token never lands in the
// keyspace, and they expire from Redis at the token's own expiry.
type ResetTokenStore struct {
	client *redis.Client
}

// NewResetTokenStore creates a new Redis-backed reset token store.
func NewResetTokenStore(client *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

// Save records an issued reset token for the given email.
func (s *ResetTokenStore) Save(ctx context.Context, token, email string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return apperrors.InvalidInput("reset token already expired")
	}

	if err := s.client.Set(ctx, resetKey(token), email, ttl).Err(); err != nil {
		return fmt.Errorf("redis set reset token: %w", err)
	}

	return nil
}

// Get returns the email tied to a still-live token without consuming it.
func (s *ResetTokenStore) Get(ctx context.Context, token string) (string, error) {
	email, err := s.client.Get(ctx, resetKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", apperrors.NotFound("reset token", "")
		}
		return "", fmt.Errorf("redis get reset token: %w", err)
	}

	return email, nil
}

// Consume returns the email tied to a still-live token and invalidates it.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	email, err := s.client.GetDel(ctx, resetKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", apperrors.NotFound("reset token", "")
		}
		return "", fmt.Errorf("redis getdel reset token: %w", err)
	}

	return email, nil
}

func resetKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return resetKeyPrefix + hex.EncodeToString(sum[:])
}
