// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Role values carried in JWT claims and stored on user records.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account.
//
// WHY PasswordHash string (not *string)?
// Accounts created through federated login (Google) have no local password.
// We use the empty string as the zero value rather than a nullable pointer —
// simpler to work with, and "has a local password" is just PasswordHash != "".
// Exactly one of {PasswordHash, GoogleID} being set is what decides which
// login path can succeed for the account.
//
// The hash is never serialized: the `json:"-"` tag keeps it out of every
// response body, so there's no way to leak it by returning a User directly.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"` // unique across users
	PasswordHash string    `json:"-"         db:"password_hash"`
	Role         string    `json:"role"      db:"role"`
	GoogleID     string    `json:"-"         db:"google_id"` // external identity reference (empty if none)
	Active       bool      `json:"active"    db:"active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// HasLocalPassword reports whether this account can log in with a password.
// False for federated-only accounts.
func (u *User) HasLocalPassword() bool {
	return u.PasswordHash != ""
}

// Admin represents an administrator account. Admins live in their own
// identity space (separate table, separate register/login pair) and their
// tokens always carry role "admin".
type Admin struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	Role         string    `json:"role"      db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
