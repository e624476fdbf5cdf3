package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mtkebuch/skincareWeb/internal/repository"
	"github.com/mtkebuch/skincareWeb/internal/token"
	apperrors "github.com/mtkebuch/skincareWeb/pkg/errors"
	"github.com/mtkebuch/skincareWeb/pkg/middleware"
)

// sessionCookie names the cookie carrying the client session key. It is the
// server-side stand-in for the browser's local storage slot.
const sessionCookie = "storefront_session"

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// NewTokenValidator bridges the session token codec into the auth
// middleware. A token is accepted when it decodes, is unexpired, and the
// referenced account still exists.
func NewTokenValidator(codec *token.Codec, users repository.UserRepository, now func() time.Time) middleware.TokenValidator {
	return func(ctx context.Context, tok string) (*middleware.Claims, error) {
		claims, err := codec.Decode(tok)
		if err != nil {
			return nil, apperrors.Unauthorized("invalid token")
		}
		if claims.Expired(now()) {
			return nil, apperrors.Unauthorized("token expired")
		}

		u, err := users.GetByID(ctx, claims.UserID)
		if err != nil {
			return nil, apperrors.Unauthorized("unknown account")
		}

		return &middleware.Claims{
			UserID: u.ID,
			Email:  u.Email,
			Role:   u.Role,
		}, nil
	}
}

// ensureSessionID returns the request's session key, minting one and setting
// the cookie when the client arrives without it.
func ensureSessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(token.Validity / time.Second),
	})
	return id
}
