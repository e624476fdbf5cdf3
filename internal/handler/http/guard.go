package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mtkebuch/skincareWeb/internal/domain"
	"github.com/mtkebuch/skincareWeb/internal/guard"
	apperrors "github.com/mtkebuch/skincareWeb/pkg/errors"
	"github.com/mtkebuch/skincareWeb/pkg/httputil"
	"github.com/mtkebuch/skincareWeb/pkg/middleware"
)

// claimsQuery adapts the claims placed in the request context by the auth
// middleware to the session view guards consult. An absent user ID means an
// anonymous request.
type claimsQuery struct{}

func (claimsQuery) IsAuthenticated(ctx context.Context) bool {
	return middleware.UserIDFromContext(ctx) != ""
}

func (claimsQuery) CurrentUser(ctx context.Context) *domain.User {
	id := middleware.UserIDFromContext(ctx)
	if id == "" {
		return nil
	}
	return &domain.User{
		ID:    id,
		Email: middleware.EmailFromContext(ctx),
		Role:  middleware.RoleFromContext(ctx),
	}
}

func (claimsQuery) IsAdmin(ctx context.Context) bool {
	return middleware.RoleFromContext(ctx) == domain.RoleAdmin
}

// RequireGuard evaluates a navigation guard against each request and rejects
// the ones the guard denies. Denials carry the guard's redirect target so
// clients can route the user: a missing session yields 401 with the login
// redirect, an insufficient role yields 403 with the access-denied reason.
func RequireGuard(g guard.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g(r.Context(), claimsQuery{}, r.URL.Path)
			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}
			writeGuardDenial(w, d)
		})
	}
}

func writeGuardDenial(w http.ResponseWriter, d guard.Decision) {
	if d.Reason == guard.ReasonAccessDenied {
		httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
			Error: &httputil.ErrorResponse{
				Code:       "FORBIDDEN",
				Message:    "insufficient permissions",
				RedirectTo: d.RedirectTo,
				Reason:     d.Reason,
			},
		})
		return
	}

	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
		Error: &httputil.ErrorResponse{
			Code:       "UNAUTHORIZED",
			Message:    "authentication required",
			RedirectTo: d.RedirectTo,
			Reason:     d.Reason,
		},
	})
}

// NavigationDecision is the JSON shape of one guard evaluation.
type NavigationDecision struct {
	Allowed    bool   `json:"allowed"`
	RedirectTo string `json:"redirect_to,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// GuardHandler evaluates client navigation attempts. The storefront UI asks
// it whether a route change may proceed before rendering the page.
type GuardHandler struct {
	logger *slog.Logger
}

// NewGuardHandler creates a new navigation guard handler.
func NewGuardHandler(logger *slog.Logger) *GuardHandler {
	return &GuardHandler{logger: logger}
}

// Decide handles GET /api/v1/navigation?target=<path>. The target path picks
// the guard the same way the client's route table does; unknown paths are
// open to everyone.
func (h *GuardHandler) Decide(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" || !strings.HasPrefix(target, "/") {
		httputil.WriteError(w, r, apperrors.InvalidInput("target must be an absolute client path"), h.logger)
		return
	}

	d := guardForTarget(target)(r.Context(), claimsQuery{}, target)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: NavigationDecision{
			Allowed:    d.Allowed,
			RedirectTo: d.RedirectTo,
			Reason:     d.Reason,
		},
	})
}

// guardForTarget maps a client route to its guard.
func guardForTarget(target string) guard.Guard {
	switch {
	case target == "/login" || target == "/register" ||
		target == "/forgot-password" || strings.HasPrefix(target, "/reset-password"):
		return guard.GuestOnly
	case target == "/admin" || strings.HasPrefix(target, "/admin/"):
		return guard.Admin
	case target == "/cart" || target == "/checkout" || target == "/account" ||
		target == "/orders" || strings.HasPrefix(target, "/orders/") ||
		strings.HasPrefix(target, "/order-confirmation"):
		return guard.Authenticated
	default:
		return func(context.Context, guard.SessionQuery, string) guard.Decision {
			return guard.Decision{Allowed: true}
		}
	}
}
