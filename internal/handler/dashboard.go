package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/taskwise/internal/auth"
	"github.com/sakif/taskwise/internal/service"
)

// DashboardHandler serves the per-user aggregation reads. All five
// endpoints are thin: pull the owner from the claims, delegate, encode.
type DashboardHandler struct {
	dashboard *service.DashboardService
	logger    *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// HandleStats — GET /api/dashboard/stats
func (h *DashboardHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "No token"})
		return
	}

	stats, err := h.dashboard.Stats(r.Context(), claims.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleCompletionsByDay — GET /api/dashboard/tasks-completed-7-days
func (h *DashboardHandler) HandleCompletionsByDay(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "No token"})
		return
	}

	chart, err := h.dashboard.CompletionsByDay(r.Context(), claims.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

// HandleCategoryDistribution — GET /api/dashboard/category-distribution
func (h *DashboardHandler) HandleCategoryDistribution(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "No token"})
		return
	}

	chart, err := h.dashboard.CategoryDistribution(r.Context(), claims.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

// HandleRecentTasks — GET /api/dashboard/recent-tasks
func (h *DashboardHandler) HandleRecentTasks(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "No token"})
		return
	}

	tasks, err := h.dashboard.RecentTasks(r.Context(), claims.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// HandleTasksDueToday — GET /api/dashboard/tasks-by-date
func (h *DashboardHandler) HandleTasksDueToday(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "No token"})
		return
	}

	tasks, err := h.dashboard.TasksDueToday(r.Context(), claims.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}
