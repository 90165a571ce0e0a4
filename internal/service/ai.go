package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/taskwise/internal/apperror"
	"github.com/sakif/taskwise/internal/model"
	"github.com/sakif/taskwise/internal/repository"
)

// historyLimit caps how much task history feeds the category prediction
// prompt — enough signal without blowing up the request size.
const historyLimit = 50

// TextGenerator is the slice of the AI client this service needs. The
// concrete implementation is the Gemini client; tests use a canned fake.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// AIService forwards task summaries and history to the generative text API
// and relays the results. It owns only prompt construction and input
// validation — the model's output passes through untouched.
type AIService struct {
	gen    TextGenerator
	tasks  repository.TaskRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewAIService creates an AIService.
func NewAIService(gen TextGenerator, tasks repository.TaskRepository, logger *slog.Logger) *AIService {
	return &AIService{
		gen:    gen,
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}
}

// GenerateDescription asks the model for a short task description from a
// one-line summary.
func (s *AIService) GenerateDescription(ctx context.Context, summary string) (string, error) {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", apperror.ValidationFailed("summary", "Summary is required")
	}

	prompt := fmt.Sprintf(
		"Task Summary: %s\nGenerate a clear and professional task description, two lines at most.",
		summary,
	)

	text, err := s.gen.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Error("AI description generation failed", slog.String("error", err.Error()))
		return "", apperror.Upstream(err.Error())
	}

	return text, nil
}

// PredictCategory predicts the most likely category for a new task from the
// user's recent task history. The model is instructed to answer with a bare
// category name and to fall back to "General" when unsure.
func (s *AIService) PredictCategory(ctx context.Context, userID, newTaskSummary string) (string, error) {
	userID = strings.TrimSpace(userID)
	newTaskSummary = strings.TrimSpace(newTaskSummary)
	if userID == "" || newTaskSummary == "" {
		return "", apperror.ValidationFailed("",
			"User ID and new task summary are required for AI prediction.")
	}

	history, err := s.tasks.Recent(ctx, userID, historyLimit)
	if err != nil {
		return "", fmt.Errorf("loading task history: %w", err)
	}

	var b strings.Builder
	b.WriteString("Given the following past task categories and summaries for a user:\n")
	for _, t := range history {
		if t.Category == "" || t.Name == "" {
			continue
		}
		fmt.Fprintf(&b, "- Category: %s, Summary: %q\n", t.Category, t.Name)
	}
	fmt.Fprintf(&b,
		"\nBased on this, what is the most likely category for a new task with the summary: %q?\n",
		newTaskSummary,
	)
	b.WriteString(`Respond with only the category name (e.g. "Work", "Personal", "Shopping") and nothing else. If unsure, suggest "General".`)

	prediction, err := s.gen.GenerateContent(ctx, b.String())
	if err != nil {
		s.logger.Error("AI category prediction failed", slog.String("error", err.Error()))
		return "", apperror.Upstream(err.Error())
	}

	return strings.TrimSpace(prediction), nil
}

// AdminReport summarises the whole task base into a short prose report:
// totals, critical tasks (pending, due within the next 2 days), and overdue
// tasks (pending, past due). The counting matches the admin dashboard so
// the narrative and the numbers on screen agree.
func (s *AIService) AdminReport(ctx context.Context) (string, error) {
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("loading tasks for admin report: %w", err)
	}

	now := s.now()
	criticalCutoff := now.Add(criticalWindow)

	var critical, overdue int
	for _, t := range tasks {
		if t.Status != model.StatusPending || t.DueDate == nil {
			continue
		}
		switch {
		case t.DueDate.Before(now):
			overdue++
		case !t.DueDate.After(criticalCutoff):
			critical++
		}
	}

	prompt := fmt.Sprintf(
		"As an AI assistant, generate a concise admin report summary based on:\n"+
			"- %d total tasks\n"+
			"- %d critical tasks (due within 2 days)\n"+
			"- %d overdue tasks\n"+
			"Include helpful insights and recommend actions.",
		len(tasks), critical, overdue,
	)

	report, err := s.gen.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Error("AI admin report failed", slog.String("error", err.Error()))
		return "", apperror.Upstream(err.Error())
	}

	return report, nil
}
