package model

import "time"

// Task status values. A task is either pending or completed — there is no
// other state, and the transition rules live in the task service.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Task represents a user-owned unit of work.
//
// WHY *time.Time FOR DueDate AND CompletedAt?
// Both are genuinely optional: a task may have no due date, and CompletedAt
// is null for any task that isn't completed. A nil pointer marshals to JSON
// null, which is exactly the contract the frontend expects. Category and
// Description use the empty string as "not set" instead — they're display
// text, and "" vs null makes no difference to anyone reading them.
//
// Invariant (enforced by the task service, not the storage layer):
// CompletedAt is non-nil iff the most recent status write set Completed.
type Task struct {
	ID          string     `json:"id"          db:"id"`
	UserID      string     `json:"userId"      db:"user_id"`
	Name        string     `json:"name"        db:"name"`
	Description string     `json:"description" db:"description"`
	Category    string     `json:"category"    db:"category"`
	DueDate     *time.Time `json:"dueDate"     db:"due_date"`
	Status      string     `json:"status"      db:"status"`
	CompletedAt *time.Time `json:"completedAt" db:"completed_at"`
	CreatedAt   time.Time  `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt"   db:"updated_at"`
}
