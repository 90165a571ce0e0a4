package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/taskwise/internal/auth"
	"github.com/sakif/taskwise/internal/service"
)

// TaskHandler serves the task CRUD endpoints. Every route here sits behind
// RequireAuth, so the owner ID always comes from the verified token claims —
// never from the request body or URL.
type TaskHandler struct {
	tasks  *service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// HandleList returns the caller's tasks with optional filters.
//
// HTTP: GET /api/tasks?search=&status=&category=&dueDate=
//
// Filters compose conjunctively; status/category accept "all" as a no-op
// and dueDate accepts the buckets today/upcoming/overdue.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "No token"})
		return
	}

	q := r.URL.Query()
	tasks, err := h.tasks.List(r.Context(), claims.ID, service.ListTasksQuery{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Category: q.Get("category"),
		DueDate:  q.Get("dueDate"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// HandleCreate saves a new task for the caller.
//
// HTTP: POST /api/tasks
// Body: {"name":"Report","description":?,"category":?,"dueDate":?}
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "No token"})
		return
	}

	var cmd service.CreateTaskCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.logger.Warn("invalid task JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	task, err := h.tasks.Create(r.Context(), claims.ID, cmd)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// HandleUpdate applies a partial patch to one of the caller's tasks.
//
// HTTP: PUT /api/tasks/{id}
//
// A task owned by someone else answers 404 exactly like a nonexistent id —
// the two cases are deliberately indistinguishable.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "No token"})
		return
	}

	var cmd service.UpdateTaskCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.logger.Warn("invalid task JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	task, err := h.tasks.Update(r.Context(), claims.ID, chi.URLParam(r, "id"), cmd)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleDelete removes one of the caller's tasks.
//
// HTTP: DELETE /api/tasks/{id}
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "No token"})
		return
	}

	if err := h.tasks.Delete(r.Context(), claims.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
}

// HandleCategories returns the distinct category labels the caller has used.
//
// HTTP: GET /api/tasks/categories
func (h *TaskHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "No token"})
		return
	}

	categories, err := h.tasks.Categories(r.Context(), claims.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}
