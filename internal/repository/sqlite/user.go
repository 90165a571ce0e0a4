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

// Compile-time interface checks: if *DB ever stops satisfying these
// interfaces, the build breaks here instead of at a distant call site.
var (
	_ repository.UserRepository  = (*DB)(nil)
	_ repository.AdminRepository = (*DB)(nil)
)

const userColumns = `id, name, email, password_hash, role, google_id, active, created_at, updated_at`

// CreateUser inserts a new user. The email column is UNIQUE, so a duplicate
// registration fails at the constraint; we translate that into the domain's
// conflict error rather than leaking driver details upward.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.GoogleID,
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("User with this email already exists.")
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by internal ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, the lookup the login path uses.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return user, nil
}

// ListByRole returns every user with the given role, ordered by creation.
// The admin dashboard uses this to enumerate non-admin users.
func (db *DB) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY created_at`, role)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users by role %s: %w", role, err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// SetActive flips the active flag. RowsAffected == 0 means the WHERE clause
// matched nothing, i.e. the user doesn't exist.
func (db *DB) SetActive(ctx context.Context, id string, active bool) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting active for user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}

// CreateAdmin inserts a new administrator (separate identity space).
func (db *DB) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	admin.ID = xid.New().String()
	now := time.Now().UTC()
	admin.CreatedAt = now
	admin.UpdatedAt = now
	admin.Role = model.RoleAdmin

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO admins (id, name, email, password_hash, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		admin.ID,
		admin.Name,
		admin.Email,
		admin.PasswordHash,
		admin.Role,
		admin.CreatedAt,
		admin.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Admin with this email already exists.")
		}
		return fmt.Errorf("sqlite: creating admin: %w", err)
	}

	return nil
}

// GetAdminByEmail retrieves an admin account by email.
func (db *DB) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at, updated_at
		 FROM admins WHERE email = ?`,
		email,
	).Scan(
		&admin.ID,
		&admin.Name,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Role,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("admin", email)
		}
		return nil, fmt.Errorf("sqlite: getting admin by email: %w", err)
	}

	return &admin, nil
}

// scanner covers both *sql.Row and *sql.Rows so one scan helper serves the
// single-row and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var user model.User
	err := s.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.GoogleID,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// isUniqueViolation detects a UNIQUE constraint failure. database/sql has no
// portable error type for this; the sqlite driver reports it in the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
