package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/mtkebuch/skincareWeb/pkg/errors"
)

const tokenKeyPrefix = "session:"

// TokenStore implements repository.TokenStore using Redis. Each session
// holds at most one token; storing a new one replaces the old.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore creates a new Redis-backed session token store.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the stored token for a session.
func (s *TokenStore) Get(ctx context.Context, sessionID string) (string, error) {
	token, err := s.client.Get(ctx, tokenKeyPrefix+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return "", apperrors.NotFound("session", sessionID)
		}
		return "", fmt.Errorf("redis get session token: %w", err)
	}

	return token, nil
}

// Set stores the token for a session, replacing any previous one.
func (s *TokenStore) Set(ctx context.Context, sessionID, token string) error {
	if err := s.client.Set(ctx, tokenKeyPrefix+sessionID, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session token: %w", err)
	}

	return nil
}

// Delete removes the stored token. Deleting an absent token is not an error.
func (s *TokenStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, tokenKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis del session token: %w", err)
	}

	return nil
}
