package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/taskwise/internal/apperror"
	"github.com/sakif/taskwise/internal/model"
	"github.com/sakif/taskwise/internal/repository"
)

var _ repository.TaskRepository = (*DB)(nil)

const taskColumns = `id, user_id, name, description, category, due_date, status, completed_at, created_at, updated_at`

// Create inserts a new task.
//
// ID GENERATION WITH xid:
// xid generates 20-char, URL-safe IDs that sort by creation time.
// The repository fills in ID and timestamps; since task is a pointer, the
// caller sees them after Create returns.
func (db *DB) Create(ctx context.Context, task *model.Task) error {
	task.ID = xid.New().String()
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = model.StatusPending
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.UserID,
		task.Name,
		task.Description,
		task.Category,
		nullableTime(task.DueDate),
		task.Status,
		nullableTime(task.CompletedAt),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by (ownerID, id). A task owned by someone else
// is indistinguishable from a missing one — the WHERE clause simply doesn't
// match, and both cases come back as NotFound.
func (db *DB) GetByID(ctx context.Context, ownerID, id string) (*model.Task, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`,
		id, ownerID)

	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("task", id)
		}
		return nil, fmt.Errorf("sqlite: getting task %s: %w", id, err)
	}
	return task, nil
}

// List retrieves the owner's tasks matching the filter, newest first.
//
// The WHERE clause is assembled conditionally: each filter field that is set
// appends a predicate and its argument. Everything goes through ?
// placeholders — never build SQL by concatenating user input.
func (db *DB) List(ctx context.Context, ownerID string, filter repository.TaskFilter) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{ownerID}

	if filter.Search != "" {
		// LIKE is case-insensitive for ASCII in SQLite by default; the
		// LOWER() pair makes the intent explicit either way.
		query += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)`
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.DueFrom != nil {
		query += ` AND due_date IS NOT NULL AND due_date >= ?`
		args = append(args, filter.DueFrom.UTC())
	}
	if filter.DueTo != nil {
		query += ` AND due_date IS NOT NULL AND due_date <= ?`
		args = append(args, filter.DueTo.UTC())
	}

	query += ` ORDER BY created_at DESC`

	return db.queryTasks(ctx, query, args...)
}

// Update persists a full task row, conditionally on ownership.
//
// The (id, user_id) WHERE pair makes this a conditional write: a
// task deleted (or never owned) since the caller read it matches zero rows,
// which we report as NotFound rather than silently succeeding.
func (db *DB) Update(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE tasks
		 SET name = ?, description = ?, category = ?, due_date = ?,
		     status = ?, completed_at = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		task.Name,
		task.Description,
		task.Category,
		nullableTime(task.DueDate),
		task.Status,
		nullableTime(task.CompletedAt),
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating task %s: %w", task.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("task", task.ID)
	}

	return nil
}

// Delete removes the owner's task. Same RowsAffected pattern as Update.
func (db *DB) Delete(ctx context.Context, ownerID, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting task %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("task", id)
	}

	return nil
}

// Categories returns the distinct non-empty category labels used by the
// owner's tasks.
func (db *DB) Categories(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT category FROM tasks WHERE user_id = ? AND category != ''`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating categories: %w", err)
	}

	return categories, nil
}

// Recent returns the owner's most recently touched tasks: updated_at first,
// created_at as the tiebreaker, limited.
func (db *DB) Recent(ctx context.Context, ownerID string, limit int) ([]model.Task, error) {
	if limit <= 0 {
		limit = 5
	}
	return db.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE user_id = ?
		 ORDER BY updated_at DESC, created_at DESC
		 LIMIT ?`,
		ownerID, limit,
	)
}

// ListAll returns every task in the store. Admin-scope reads (dashboard,
// AI report) join these against users in the service layer.
func (db *DB) ListAll(ctx context.Context) ([]model.Task, error) {
	return db.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC`)
}

func (db *DB) queryTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning task row: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tasks: %w", err)
	}

	return tasks, nil
}

func scanTask(s scanner) (*model.Task, error) {
	var (
		task        model.Task
		dueDate     sql.NullTime
		completedAt sql.NullTime
	)
	err := s.Scan(
		&task.ID,
		&task.UserID,
		&task.Name,
		&task.Description,
		&task.Category,
		&dueDate,
		&task.Status,
		&completedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.DueDate = timePtr(dueDate)
	task.CompletedAt = timePtr(completedAt)
	return &task, nil
}
