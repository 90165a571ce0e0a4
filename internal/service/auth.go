// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// Handlers only know about HTTP; services only know about business rules;
// repositories only know about SQL. Each service receives its repository as
// an interface, so tests swap in in-memory mocks and the service code never
// imports the sqlite package.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/taskwise/internal/apperror"
	"github.com/sakif/taskwise/internal/auth"
	"github.com/sakif/taskwise/internal/model"
	"github.com/sakif/taskwise/internal/repository"
)

// AuthService handles registration, login, and token issuing for both
// identity spaces (users and admins).
type AuthService struct {
	users     repository.UserRepository
	admins    repository.AdminRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	admins repository.AdminRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		admins:    admins,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// LoginResult bundles the issued token with the account record so the
// handler can respond in one step.
type LoginResult struct {
	Token string
	User  *model.User
}

// AdminLoginResult is the admin-space twin of LoginResult.
type AdminLoginResult struct {
	Token string
	Admin *model.Admin
}

// Register creates a user account with a locally hashed password.
//
// Name, email, and password are all required. A duplicate email is a
// conflict — the repository enforces it with a UNIQUE constraint, so the
// explicit lookup here and the constraint can't disagree under races.
func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" || email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "Name, email, and password are required.")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("User with this email already exists.")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking existing email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	if role == "" {
		role = model.RoleUser
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login verifies credentials and issues a bearer token.
//
// The error ladder follows the observed contract exactly:
//   - unknown email             → 401 "Invalid email"
//   - federated-only account    → 400 (no local password to check)
//   - wrong password            → 401 "Invalid password"
//   - deactivated account       → 403, even with correct credentials
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Invalid email")
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if !user.HasLocalPassword() {
		return nil, apperror.ValidationFailed("password",
			"This account uses Google login. Please sign in with Google.")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("Invalid password")
	}

	if !user.Active {
		return nil, apperror.Forbidden("Account is deactivated")
	}

	token, err := s.tokens.Generate(user.ID, user.Role, user.Name)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &LoginResult{Token: token, User: user}, nil
}

// AdminRegister creates an administrator account. Same contract as Register
// but against the separate admin identity space; the role is always admin.
func (s *AuthService) AdminRegister(ctx context.Context, name, email, password string) (*model.Admin, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" || email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "Name, email, and password are required.")
	}

	if _, err := s.admins.GetAdminByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("Admin with this email already exists.")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking existing admin email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	admin := &model.Admin{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}

	if err := s.admins.CreateAdmin(ctx, admin); err != nil {
		return nil, fmt.Errorf("service/auth: creating admin: %w", err)
	}

	s.logger.Info("admin registered", slog.String("adminID", admin.ID))

	return admin, nil
}

// AdminLogin mirrors Login against the admins table. Admin accounts have no
// active flag and no federated path, so the ladder is shorter.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*AdminLoginResult, error) {
	admin, err := s.admins.GetAdminByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Invalid email")
		}
		return nil, fmt.Errorf("service/auth: looking up admin: %w", err)
	}

	if err := s.passwords.Verify(admin.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("Invalid password")
	}

	token, err := s.tokens.Generate(admin.ID, model.RoleAdmin, admin.Name)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for admin %s: %w", admin.ID, err)
	}

	s.logger.Info("admin logged in", slog.String("adminID", admin.ID))

	return &AdminLoginResult{Token: token, Admin: admin}, nil
}

// CreateUser is the admin-initiated variant of Register: an administrator
// provisioning an account on someone's behalf. Same validation rules.
func (s *AuthService) CreateUser(ctx context.Context, name, email, password, role string) (*model.User, error) {
	return s.Register(ctx, name, email, password, role)
}

// ToggleActive flips a user's active flag and returns the new value.
// A deactivated user keeps their data but every login attempt fails with
// 403 until an admin re-activates them.
func (s *AuthService) ToggleActive(ctx context.Context, userID string) (bool, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}

	newActive := !user.Active
	if err := s.users.SetActive(ctx, userID, newActive); err != nil {
		return false, fmt.Errorf("service/auth: toggling active for user %s: %w", userID, err)
	}

	s.logger.Info("user active flag toggled",
		slog.String("userID", userID),
		slog.Bool("active", newActive),
	)

	return newActive, nil
}
