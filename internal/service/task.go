package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/taskwise/internal/apperror"
	"github.com/sakif/taskwise/internal/cache"
	"github.com/sakif/taskwise/internal/model"
	"github.com/sakif/taskwise/internal/repository"
)

// Due-date bucket names accepted by the list filter. Each bucket implies
// status=pending and selects a date range anchored on the current day.
const (
	BucketToday    = "today"
	BucketUpcoming = "upcoming"
	BucketOverdue  = "overdue"
)

// filterAll is the query value meaning "don't filter on this field".
const filterAll = "all"

// CreateTaskCommand is the typed input for task creation. The handler
// decodes the request body into this struct; the service validates it.
type CreateTaskCommand struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTaskCommand is a partial patch. Nil pointer fields mean "leave the
// stored value alone" — the JSON decoder leaves absent fields nil, so a
// client that PUTs only {"status":"completed"} touches nothing else.
type UpdateTaskCommand struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	DueDate     *time.Time `json:"dueDate"`
	Status      *string    `json:"status"`
}

// ListTasksQuery carries the list filters as they arrive from the query
// string. Filters compose conjunctively; "all" (or empty) disables a field.
type ListTasksQuery struct {
	Search   string
	Status   string
	Category string
	DueDate  string // bucket: today | upcoming | overdue
}

// TaskService is the task lifecycle manager: it validates and applies
// create/update/delete operations, enforces the completion-timestamp
// transition rule, appends audit records, and invalidates cached dashboard
// aggregates after every write.
type TaskService struct {
	repo   repository.TaskRepository
	audits repository.AuditRepository
	cache  *cache.Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewTaskService creates a TaskService. The cache may be nil, in which case
// invalidation is a no-op (the dashboard reads straight through).
func NewTaskService(
	repo repository.TaskRepository,
	audits repository.AuditRepository,
	c *cache.Cache,
	logger *slog.Logger,
) *TaskService {
	return &TaskService{
		repo:   repo,
		audits: audits,
		cache:  c,
		logger: logger,
		now:    time.Now,
	}
}

// Create validates and saves a new task. Every task starts pending with no
// completion timestamp regardless of what the client sends.
func (s *TaskService) Create(ctx context.Context, ownerID string, cmd CreateTaskCommand) (*model.Task, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "task name is required")
	}

	task := &model.Task{
		UserID:      ownerID,
		Name:        name,
		Description: strings.TrimSpace(cmd.Description),
		Category:    strings.TrimSpace(cmd.Category),
		DueDate:     cmd.DueDate,
		Status:      model.StatusPending,
		CompletedAt: nil,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		s.logger.Error("failed to create task",
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating task: %w", err)
	}

	s.invalidateDashboard(ctx, ownerID)

	s.logger.Info("task created",
		slog.String("id", task.ID),
		slog.String("userID", ownerID),
	)

	return task, nil
}

// List returns the owner's tasks matching the query, newest first.
//
// The dueDate buckets expand here, not in the repository: each one forces
// status=pending and a concrete range anchored on the current day.
func (s *TaskService) List(ctx context.Context, ownerID string, q ListTasksQuery) ([]model.Task, error) {
	filter := repository.TaskFilter{
		Search: strings.TrimSpace(q.Search),
	}

	if q.Status != "" && q.Status != filterAll {
		filter.Status = q.Status
	}
	if q.Category != "" && q.Category != filterAll {
		filter.Category = q.Category
	}

	switch q.DueDate {
	case "":
		// no bucket
	case BucketToday:
		from, to := startOfDay(s.now()), endOfDay(s.now())
		filter.DueFrom = &from
		filter.DueTo = &to
		filter.Status = model.StatusPending
	case BucketUpcoming:
		from := endOfDay(s.now())
		filter.DueFrom = &from
		filter.Status = model.StatusPending
	case BucketOverdue:
		// Strictly before start of day: the filter bound is inclusive, so
		// step back one nanosecond from midnight.
		to := startOfDay(s.now()).Add(-time.Nanosecond)
		filter.DueTo = &to
		filter.Status = model.StatusPending
	default:
		return nil, apperror.ValidationFailed("dueDate",
			fmt.Sprintf("unknown dueDate filter %q", q.DueDate))
	}

	tasks, err := s.repo.List(ctx, ownerID, filter)
	if err != nil {
		s.logger.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	return tasks, nil
}

// Update applies a partial patch to an owned task.
//
// STRATEGY: fetch then update. The fetch both confirms ownership (a foreign
// task 404s exactly like a missing one) and gives us the prior state the
// completion-timestamp rule is defined against:
//
//   - patch sets completed, prior was not completed → CompletedAt = now
//   - patch sets pending, prior was completed       → CompletedAt = nil
//   - patch sets completed, prior was completed but CompletedAt is missing
//     (legacy-data repair)                          → CompletedAt = now
//   - anything else                                 → CompletedAt untouched
//
// On success an UPDATE audit record is appended. Deletion writes no audit
// record; only updates do.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, cmd UpdateTaskCommand) (*model.Task, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, apperror.ValidationFailed("id", "task ID is required")
	}

	task, err := s.repo.GetByID(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if cmd.Status != nil {
		newStatus := *cmd.Status
		if newStatus != model.StatusPending && newStatus != model.StatusCompleted {
			return nil, apperror.ValidationFailed("status",
				fmt.Sprintf("status must be %q or %q", model.StatusPending, model.StatusCompleted))
		}

		switch {
		case newStatus == model.StatusCompleted && task.Status != model.StatusCompleted:
			completedAt := s.now()
			task.CompletedAt = &completedAt
		case newStatus == model.StatusPending && task.Status == model.StatusCompleted:
			task.CompletedAt = nil
		case newStatus == model.StatusCompleted && task.CompletedAt == nil:
			// Already completed but the timestamp is missing — repair it.
			completedAt := s.now()
			task.CompletedAt = &completedAt
		}
		task.Status = newStatus
	}

	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "task name is required")
		}
		task.Name = name
	}
	if cmd.Description != nil {
		task.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.Category != nil {
		task.Category = strings.TrimSpace(*cmd.Category)
	}
	if cmd.DueDate != nil {
		task.DueDate = cmd.DueDate
	}

	if err := s.repo.Update(ctx, task); err != nil {
		// The conditional write can still miss if the task was deleted
		// between our read and this write; that surfaces as NotFound here.
		return nil, err
	}

	if err := s.audits.Append(ctx, &model.AuditRecord{
		Action: model.AuditActionUpdate,
		TaskID: task.ID,
		UserID: ownerID,
	}); err != nil {
		return nil, fmt.Errorf("appending audit record: %w", err)
	}

	s.invalidateDashboard(ctx, ownerID)

	s.logger.Info("task updated",
		slog.String("id", task.ID),
		slog.String("status", task.Status),
	)

	return task, nil
}

// Delete removes an owned task. No audit record is produced for deletion.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) error {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return apperror.ValidationFailed("id", "task ID is required")
	}

	if err := s.repo.Delete(ctx, ownerID, taskID); err != nil {
		return err
	}

	s.invalidateDashboard(ctx, ownerID)

	s.logger.Info("task deleted", slog.String("id", taskID))
	return nil
}

// Categories returns the distinct non-empty category labels used by the
// owner's tasks. Order is unspecified.
func (s *TaskService) Categories(ctx context.Context, ownerID string) ([]string, error) {
	categories, err := s.repo.Categories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// invalidateDashboard drops the owner's cached dashboard aggregates after a
// write. Safe with a nil cache.
func (s *TaskService) invalidateDashboard(ctx context.Context, ownerID string) {
	s.cache.Delete(ctx, dashboardStatsKey(ownerID))
}
