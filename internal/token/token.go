// Package token implements the storefront session token codec.
//
// A session token has the shape of a JWT: three dot-separated base64url
// segments (header, payload, signature). The signature segment, however, is
// a deterministic re-encoding of the header and payload together with a
// fixed constant, not a keyed MAC. The token is therefore a session marker
// for a trusted single-origin deployment, not a tamper-proof credential.
// Reset tokens (reset.go) are real HMAC-signed JWTs and do not share this
// limitation.
package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mtkebuch/skincareWeb/internal/domain"
)

// Validity is the fixed session token lifetime: expiry is always
// issued-at plus this window.
const Validity = 24 * time.Hour

// Header is the first token segment.
type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Claims is the decoded token payload. All timestamps are Unix seconds.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Expired reports whether the claims' expiry has elapsed at the given time.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt <= now.Unix()
}

// Codec encodes and decodes session tokens.
type Codec struct {
	secret string
}

// NewCodec creates a session token codec with the given secret constant.
func NewCodec(secret string) *Codec {
	return &Codec{secret: secret}
}

// Issue creates a session token for the given user, valid for Validity
// from now.
func (c *Codec) Issue(u *domain.User, now time.Time) (string, error) {
	claims := &Claims{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(Validity).Unix(),
	}
	return c.Encode(claims)
}

// Encode serializes the claims into the three-segment token form.
func (c *Codec) Encode(claims *Claims) (string, error) {
	header := Header{Alg: "HS256", Typ: "JWT"}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("marshal token header: %w", err)
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal token payload: %w", err)
	}

	encodedHeader := base64.RawURLEncoding.EncodeToString(headerJSON)
	encodedPayload := base64.RawURLEncoding.EncodeToString(payloadJSON)

	// Deliberately not a MAC; see the package comment.
	signature := base64.RawURLEncoding.EncodeToString(
		[]byte(encodedHeader + "." + encodedPayload + "." + c.secret),
	)

	return encodedHeader + "." + encodedPayload + "." + signature, nil
}

// Decode parses a token and returns its claims. It does not check expiry;
// callers decide what a stale token means. Any malformed input yields an
// error, never a panic.
func (c *Codec) Decode(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("token must have 3 segments, got %d", len(parts))
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode token payload: %w", err)
	}

	var claims Claims
	if err := json.Unmarshal(payloadJSON, &claims); err != nil {
		return nil, fmt.Errorf("unmarshal token payload: %w", err)
	}

	return &claims, nil
}

// Valid reports whether the token decodes cleanly and has not expired at
// the given time.
func (c *Codec) Valid(token string, now time.Time) bool {
	claims, err := c.Decode(token)
	if err != nil {
		return false
	}
	return !claims.Expired(now)
}
