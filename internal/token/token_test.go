package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtkebuch/skincareWeb/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:    "user_1700000000000_000000042",
		Email: "ann@x.com",
		Role:  domain.RoleUser,
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec("test-secret")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tok, err := codec.Issue(testUser(), now)
	require.NoError(t, err)
	assert.Len(t, strings.Split(tok, "."), 3)

	claims, err := codec.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "user_1700000000000_000000042", claims.UserID)
	assert.Equal(t, "ann@x.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.Equal(t, now.Unix(), claims.IssuedAt)
	assert.Equal(t, now.Add(Validity).Unix(), claims.ExpiresAt)
}

func TestCodec_ExpiryIsIssuedAtPlusValidity(t *testing.T) {
	codec := NewCodec("test-secret")
	now := time.Now().UTC()

	tok, err := codec.Issue(testUser(), now)
	require.NoError(t, err)

	claims, err := codec.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, claims.IssuedAt+int64(Validity/time.Second), claims.ExpiresAt)
}

func TestCodec_Encode_Deterministic(t *testing.T) {
	codec := NewCodec("test-secret")
	claims := &Claims{UserID: "u-1", Email: "a@x.com", Role: "user", IssuedAt: 100, ExpiresAt: 200}

	a, err := codec.Encode(claims)
	require.NoError(t, err)
	b, err := codec.Encode(claims)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCodec_Valid(t *testing.T) {
	codec := NewCodec("test-secret")
	now := time.Now().UTC()

	tok, err := codec.Issue(testUser(), now)
	require.NoError(t, err)

	assert.True(t, codec.Valid(tok, now))
	assert.True(t, codec.Valid(tok, now.Add(Validity-time.Second)))
	assert.False(t, codec.Valid(tok, now.Add(Validity)))
	assert.False(t, codec.Valid(tok, now.Add(48*time.Hour)))
}

func TestCodec_Decode_Malformed(t *testing.T) {
	codec := NewCodec("test-secret")

	tests := []struct {
		name string
		tok  string
	}{
		{"empty", ""},
		{"one segment", "abc"},
		{"two segments", "abc.def"},
		{"four segments", "a.b.c.d"},
		{"payload not base64", "aGVhZGVy.!!!.c2ln"},
		{"payload not json", "aGVhZGVy.bm90LWpzb24.c2ln"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.tok)
			assert.Error(t, err)
			assert.False(t, codec.Valid(tt.tok, time.Now()))
		})
	}
}

func TestClaims_Expired(t *testing.T) {
	now := time.Now().UTC()
	claims := &Claims{ExpiresAt: now.Unix()}
	assert.True(t, claims.Expired(now))
	assert.False(t, claims.Expired(now.Add(-time.Second)))
}

// --- Reset tokens ---

func TestResetManager_RoundTrip(t *testing.T) {
	m := NewResetManager("reset-secret")

	tok, err := m.Generate("ann@x.com")
	require.NoError(t, err)

	claims, err := m.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(ResetValidity), claims.ExpiresAt.Time, 5*time.Second)
}

func TestResetManager_WrongSecret(t *testing.T) {
	m := NewResetManager("reset-secret")
	other := NewResetManager("different-secret")

	tok, err := m.Generate("ann@x.com")
	require.NoError(t, err)

	_, err = other.Validate(tok)
	assert.Error(t, err)
}

func TestResetManager_Garbage(t *testing.T) {
	m := NewResetManager("reset-secret")
	_, err := m.Validate("not-a-token")
	assert.Error(t, err)
}
