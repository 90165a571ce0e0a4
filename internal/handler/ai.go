package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/taskwise/internal/service"
)

// AIHandler serves the AI pass-through endpoints. Validation and prompt
// construction happen in the service; these handlers just move JSON.
type AIHandler struct {
	ai     *service.AIService
	logger *slog.Logger
}

// NewAIHandler creates an AIHandler.
func NewAIHandler(ai *service.AIService, logger *slog.Logger) *AIHandler {
	return &AIHandler{ai: ai, logger: logger}
}

type generateDescriptionRequest struct {
	Summary string `json:"summary"`
}

// HandleGenerateDescription asks the model for a task description.
//
// HTTP: POST /api/ai/generate-description
// Body: {"summary":"write Q3 report"}
func (h *AIHandler) HandleGenerateDescription(w http.ResponseWriter, r *http.Request) {
	var req generateDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	description, err := h.ai.GenerateDescription(r.Context(), req.Summary)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"description": description})
}

// HandlePredictCategory predicts a category for a new task from the user's
// history.
//
// HTTP: GET /api/ai/predict-category/{userID}?newTaskSummary=...
func (h *AIHandler) HandlePredictCategory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	summary := r.URL.Query().Get("newTaskSummary")

	prediction, err := h.ai.PredictCategory(r.Context(), userID, summary)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"predictedCategory": prediction})
}

// HandleAdminReport generates a prose summary of the whole task base.
//
// HTTP: GET /api/ai/admin-report (admin only)
func (h *AIHandler) HandleAdminReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.ai.AdminReport(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"report": report})
}
