package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtkebuch/skincareWeb/internal/domain"
	"github.com/mtkebuch/skincareWeb/internal/repository"
	apperrors "github.com/mtkebuch/skincareWeb/pkg/errors"
	"github.com/mtkebuch/skincareWeb/pkg/httputil"
	"github.com/mtkebuch/skincareWeb/pkg/middleware"
)

// AdminUserHandler serves the admin panel's user management endpoints. The
// router mounts it behind admin role enforcement.
type AdminUserHandler struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewAdminUserHandler creates a new admin user HTTP handler.
func NewAdminUserHandler(users repository.UserRepository, logger *slog.Logger) *AdminUserHandler {
	return &AdminUserHandler{users: users, logger: logger}
}

// SetRoleRequest is the JSON request body for changing a user's role.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// StatsResponse is the JSON shape of the admin stats endpoint.
type StatsResponse struct {
	RegisteredUsers int `json:"registered_users"`
}

// List handles GET /api/v1/admin/users.
func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: users})
}

// SetRole handles PUT /api/v1/admin/users/{id}/role.
func (h *AdminUserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req SetRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !domain.IsValidRole(req.Role) {
		httputil.WriteError(w, r, apperrors.InvalidInput("Unknown role"), h.logger)
		return
	}

	id := chi.URLParam(r, "id")
	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	u.Role = req.Role
	if err := h.users.Update(r.Context(), u); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "user role changed",
		slog.String("target_user_id", id),
		slog.String("role", req.Role),
	)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: u})
}

// Delete handles DELETE /api/v1/admin/users/{id}. Admins cannot delete their
// own account.
func (h *AdminUserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == middleware.UserIDFromContext(r.Context()) {
		httputil.WriteError(w, r, apperrors.InvalidInput("cannot delete your own account"), h.logger)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminUserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.users.Count(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: StatsResponse{RegisteredUsers: count}})
}
