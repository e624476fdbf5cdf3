// Package http holds the storefront's HTTP surface: handlers, router, and
// the middleware bridging bearer tokens to session claims.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mtkebuch/skincareWeb/internal/domain"
	"github.com/mtkebuch/skincareWeb/internal/session"
	apperrors "github.com/mtkebuch/skincareWeb/pkg/errors"
	"github.com/mtkebuch/skincareWeb/pkg/httputil"
	"github.com/mtkebuch/skincareWeb/pkg/middleware"
	"github.com/mtkebuch/skincareWeb/pkg/validator"
)

// SessionFactory builds a session manager bound to a client session key.
type SessionFactory func(sessionID string) *session.Manager

// AuthHandler handles HTTP requests for the auth endpoints. Each request
// operates on the session identified by the client's session cookie.
type AuthHandler struct {
	sessions SessionFactory
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(sessions SessionFactory, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, logger: logger}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for registration.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest is the JSON request body for forgot password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

// ResetPasswordRequest is the JSON request body for password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// --- Response types ---

// AuthResponse carries the outcome of register and login.
type AuthResponse struct {
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
	Message string       `json:"message"`
}

// MessageResponse carries a bare outcome message.
type MessageResponse struct {
	Message string `json:"message"`
}

// --- Handlers ---

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	m := h.sessions(ensureSessionID(w, r))
	res, err := m.Register(r.Context(), session.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: AuthResponse{User: res.User, Token: res.Token, Message: res.Message},
	})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	m := h.sessions(ensureSessionID(w, r))
	res, err := m.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: AuthResponse{User: res.User, Token: res.Token, Message: res.Message},
	})
}

// Logout handles POST /api/v1/auth/logout. Logging out an already signed-out
// session succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	m := h.sessions(ensureSessionID(w, r))
	if err := m.Logout(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: MessageResponse{Message: "Logged out"},
	})
}

// Me handles GET /api/v1/auth/me for the cookie-bound session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	m := h.sessions(ensureSessionID(w, r))
	u := m.CurrentUser(r.Context())
	if u == nil {
		httputil.WriteError(w, r, apperrors.Unauthorized("not signed in"), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: u})
}

// ForgotPassword handles POST /api/v1/auth/forgot-password. The response
// does not disclose whether the address is registered; the issued token
// travels out of band.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	m := h.sessions(ensureSessionID(w, r))
	res, err := m.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if res.Token != "" {
		// Delivery (email etc.) is out of scope; surface for operators.
		h.logger.InfoContext(r.Context(), "reset token issued")
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: MessageResponse{Message: res.Message},
	})
}

// ResetPassword handles POST /api/v1/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	m := h.sessions(ensureSessionID(w, r))
	res, err := m.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: MessageResponse{Message: res.Message},
	})
}

// decodeBody decodes and validates a JSON request body, writing the error
// response itself when the body is unusable.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return false
	}

	if err := validator.Validate(dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}

// userIDOr401 pulls the authenticated user ID set by the auth middleware.
func userIDOr401(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	id := middleware.UserIDFromContext(r.Context())
	if id == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("not signed in"), logger)
		return "", false
	}
	return id, true
}
