// Package guard evaluates navigation guards. Each guard is a pure predicate
// over a SessionQuery: it either passes or produces a redirect target, and
// every evaluation consults the session fresh.
package guard

import (
	"context"
	"net/url"

	"github.com/mtkebuch/skincareWeb/internal/domain"
)

const (
	loginPath = "/login"
	homePath  = "/"

	// ReasonAccessDenied marks a redirect caused by missing privileges
	// rather than a missing session.
	ReasonAccessDenied = "access_denied"
)

// SessionQuery is the slice of session state guards consult. The session
// manager satisfies it.
type SessionQuery interface {
	IsAuthenticated(ctx context.Context) bool
	CurrentUser(ctx context.Context) *domain.User
	IsAdmin(ctx context.Context) bool
}

// Decision is the outcome of one guard evaluation.
type Decision struct {
	Allowed    bool
	RedirectTo string
	Reason     string
}

// Guard evaluates one navigation attempt to target.
type Guard func(ctx context.Context, q SessionQuery, target string) Decision

func allow() Decision {
	return Decision{Allowed: true}
}

func redirectToLogin(target string) Decision {
	u := url.URL{Path: loginPath}
	if target != "" {
		u.RawQuery = url.Values{"return_url": {target}}.Encode()
	}
	return Decision{RedirectTo: u.String()}
}

// Authenticated passes for signed-in sessions. Anonymous navigation is sent
// to the login page carrying the originally requested path.
func Authenticated(ctx context.Context, q SessionQuery, target string) Decision {
	if q.IsAuthenticated(ctx) {
		return allow()
	}
	return redirectToLogin(target)
}

// GuestOnly passes for anonymous sessions. Signed-in navigation is sent home.
func GuestOnly(ctx context.Context, q SessionQuery, _ string) Decision {
	if !q.IsAuthenticated(ctx) {
		return allow()
	}
	return Decision{RedirectTo: homePath}
}

// Admin passes for signed-in administrators. Anonymous sessions go to login,
// signed-in non-admins go home with an access-denied reason.
func Admin(ctx context.Context, q SessionQuery, target string) Decision {
	if !q.IsAuthenticated(ctx) {
		return redirectToLogin(target)
	}
	if q.IsAdmin(ctx) {
		return allow()
	}
	return Decision{RedirectTo: homePath, Reason: ReasonAccessDenied}
}

// Role generalizes Admin to an arbitrary allowed-role set.
func Role(allowed ...string) Guard {
	return func(ctx context.Context, q SessionQuery, target string) Decision {
		if !q.IsAuthenticated(ctx) {
			return redirectToLogin(target)
		}
		u := q.CurrentUser(ctx)
		if u != nil {
			for _, role := range allowed {
				if u.Role == role {
					return allow()
				}
			}
		}
		return Decision{RedirectTo: homePath, Reason: ReasonAccessDenied}
	}
}
