package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/taskwise/internal/service"
)

// AdminHandler serves the admin-only routes: the cross-user dashboard and
// user management. Every route sits behind RequireAuth + RequireAdmin, so
// by the time a handler runs the token's role claim has been verified.
type AdminHandler struct {
	auth      *service.AuthService
	dashboard *service.DashboardService
	logger    *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(auth *service.AuthService, dashboard *service.DashboardService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{auth: auth, dashboard: dashboard, logger: logger}
}

// HandleDashboard returns per-user task counts for every non-admin user
// plus the cross-user critical and overdue task lists.
//
// HTTP: GET /api/admin/dashboard
func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboard.Admin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

// HandleCreateUser lets an admin provision a user account.
//
// HTTP: POST /api/admin/users
func (h *AdminHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	user, err := h.auth.CreateUser(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"userId":  user.ID,
	})
}

// HandleToggleActive flips a user's active flag. A deactivated user cannot
// log in until re-activated; their data is untouched.
//
// HTTP: PATCH /api/admin/users/{userID}/deactivate
func (h *AdminHandler) HandleToggleActive(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	active, err := h.auth.ToggleActive(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	verb := "deactivated"
	if active {
		verb = "activated"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("User %s successfully", verb),
		"active":  active,
	})
}
