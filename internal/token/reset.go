package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ResetValidity is the password reset token lifetime.
const ResetValidity = time.Hour

// ResetClaims represents the JWT claims for a password reset token.
// Reset tokens are tied to one email and are single-use; consumption is
// tracked by the reset token store, not by the token itself.
type ResetClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ResetManager handles password reset token generation and validation.
// Unlike session tokens, reset tokens are real HMAC-signed JWTs.
type ResetManager struct {
	secret []byte
	expiry time.Duration
}

// NewResetManager creates a reset token manager with the given secret.
func NewResetManager(secret string) *ResetManager {
	return &ResetManager{
		secret: []byte(secret),
		expiry: ResetValidity,
	}
}

// Generate creates a signed reset token for the given email.
func (m *ResetManager) Generate(email string) (string, error) {
	now := time.Now().UTC()
	claims := &ResetClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			Issuer:    "storefront",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}

	return signedToken, nil
}

// Validate parses and validates a reset token, returning the claims.
func (m *ResetManager) Validate(tokenString string) (*ResetClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ResetClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse reset token: %w", err)
	}

	claims, ok := token.Claims.(*ResetClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid reset token claims")
	}

	return claims, nil
}
