// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage is the only implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"
	"time"

	"github.com/sakif/taskwise/internal/model"
)

// TaskFilter narrows a task listing. Zero values mean "no constraint";
// filters compose conjunctively. The service layer translates the public
// dueDate buckets (today/upcoming/overdue) into the date-range fields here,
// so the repository never needs to know what "overdue" means.
type TaskFilter struct {
	Search   string     // case-insensitive substring over name OR description
	Status   string     // exact status match
	Category string     // exact category match
	DueFrom  *time.Time // dueDate >= DueFrom
	DueTo    *time.Time // dueDate <= DueTo
}

// UserRepository stores user accounts. Users are never hard-deleted —
// deactivation flips the active flag instead.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ListByRole(ctx context.Context, role string) ([]model.User, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// AdminRepository stores administrator accounts — a separate identity space
// from users, mirroring the auth contract.
type AdminRepository interface {
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error)
}

// TaskRepository stores tasks. Every read or write that names a task is
// keyed by (ownerID, taskID): a task owned by someone else behaves exactly
// like a task that doesn't exist, so cross-tenant access can never be
// distinguished from genuine absence.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Task, error)
	List(ctx context.Context, ownerID string, filter TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, ownerID, id string) error
	Categories(ctx context.Context, ownerID string) ([]string, error)
	Recent(ctx context.Context, ownerID string, limit int) ([]model.Task, error)
	ListAll(ctx context.Context) ([]model.Task, error)
}

// AuditRepository is the append-only audit log. There is deliberately no
// update or delete.
type AuditRepository interface {
	Append(ctx context.Context, record *model.AuditRecord) error
	ListByTask(ctx context.Context, taskID string) ([]model.AuditRecord, error)
}
