// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just "start the server")
//
// DEPENDENCY INJECTION FLOW:
// main.go loads Config from the environment and passes it to New(), which
// assembles the whole chain in one place:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/sakif/taskwise/internal/ai"
	"github.com/sakif/taskwise/internal/auth"
	"github.com/sakif/taskwise/internal/cache"
	"github.com/sakif/taskwise/internal/handler"
	"github.com/sakif/taskwise/internal/middleware"
	sqliteRepo "github.com/sakif/taskwise/internal/repository/sqlite"
	"github.com/sakif/taskwise/internal/service"
)

// cacheTTL bounds dashboard staleness if an invalidation is ever missed.
const cacheTTL = 5 * time.Minute

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
// - Load config from files/env vars in one place
type Config struct {
	Port         int
	DBPath       string
	JWTSecret    string
	FrontendURL  string // allowed CORS origin; empty disables CORS headers
	GeminiAPIKey string // empty disables the AI endpoints (they return 500)
	RedisAddr    string // empty disables the dashboard cache
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection and the optional Redis client.
// Both are closed during graceful shutdown in Start().
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	rdb    *redis.Client // nil when RedisAddr is empty
}

// New creates a new Server with the given config.
//
// Each layer only receives what it needs:
// - Services get repository interfaces (not the concrete sqlite.DB)
// - Handlers get services (not repositories or the DB)
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with
// the sqlite driver package. Import aliases are common in Go when
// package names would otherwise collide or be unclear.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Redis is optional. A nil *cache.Cache is safe to use everywhere —
	// reads miss and writes are no-ops — so losing Redis never takes the
	// API down.
	var dashCache *cache.Cache
	if cfg.RedisAddr != "" {
		s.rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		dashCache = cache.New(s.rdb, "taskwise:", cacheTTL)
		if err := dashCache.Ping(context.Background()); err != nil {
			logger.Warn("redis unreachable, continuing without cache",
				slog.String("addr", cfg.RedisAddr),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.setupRoutes(dashCache); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /api/auth/register                          → register user
//	POST   /api/auth/login                             → issue token
//	POST   /api/auth/adminRegister                     → register admin
//	POST   /api/auth/adminLogin                        → issue admin token
//	GET    /api/tasks                                  → list (search/status/category/dueDate)
//	POST   /api/tasks                                  → create
//	PUT    /api/tasks/{id}                             → update
//	DELETE /api/tasks/{id}                             → delete
//	GET    /api/tasks/categories                       → distinct categories
//	GET    /api/dashboard/stats                        → summary counts
//	GET    /api/dashboard/tasks-completed-7-days       → completions by day
//	GET    /api/dashboard/category-distribution        → category chart
//	GET    /api/dashboard/recent-tasks                 → five most recent
//	GET    /api/dashboard/tasks-by-date                → due today
//	POST   /api/ai/generate-description                → AI description
//	GET    /api/ai/predict-category/{userID}           → AI category
//	GET    /api/ai/admin-report                        → AI report (admin)
//	GET    /api/admin/dashboard                        → cross-user dashboard (admin)
//	POST   /api/admin/users                            → create user (admin)
//	PATCH  /api/admin/users/{userID}/deactivate        → toggle active (admin)
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. CORS — must answer preflights before auth rejects them
// 5. Logger — logs each request with timing info
func (s *Server) setupRoutes(dashCache *cache.Cache) error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500
	if s.config.FrontendURL != "" {
		s.router.Use(middleware.CORS(s.config.FrontendURL))
	}
	s.router.Use(middleware.Logger(s.logger))

	// === Services ===
	authService := service.NewAuthService(s.db, s.db, tokens, passwords, s.logger)
	taskService := service.NewTaskService(s.db, s.db, dashCache, s.logger)
	dashboardService := service.NewDashboardService(s.db, s.db, dashCache, s.logger)
	aiService := service.NewAIService(ai.NewGeminiClient(s.config.GeminiAPIKey), s.db, s.logger)

	// === Handlers ===
	authHandler := handler.NewAuthHandler(authService, s.logger)
	taskHandler := handler.NewTaskHandler(taskService, s.logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, s.logger)
	aiHandler := handler.NewAIHandler(aiService, s.logger)
	adminHandler := handler.NewAdminHandler(authService, dashboardService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		// Public: no token required.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/adminRegister", authHandler.HandleAdminRegister)
			r.Post("/adminLogin", authHandler.HandleAdminLogin)
		})

		// Everything below requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.HandleList)
				r.Post("/", taskHandler.HandleCreate)
				r.Get("/categories", taskHandler.HandleCategories)
				r.Put("/{id}", taskHandler.HandleUpdate)
				r.Delete("/{id}", taskHandler.HandleDelete)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", dashboardHandler.HandleStats)
				r.Get("/tasks-completed-7-days", dashboardHandler.HandleCompletionsByDay)
				r.Get("/category-distribution", dashboardHandler.HandleCategoryDistribution)
				r.Get("/recent-tasks", dashboardHandler.HandleRecentTasks)
				r.Get("/tasks-by-date", dashboardHandler.HandleTasksDueToday)
			})

			r.Route("/ai", func(r chi.Router) {
				r.Post("/generate-description", aiHandler.HandleGenerateDescription)
				r.Get("/predict-category/{userID}", aiHandler.HandlePredictCategory)

				r.Group(func(r chi.Router) {
					r.Use(auth.RequireAdmin())
					r.Get("/admin-report", aiHandler.HandleAdminReport)
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireAdmin())
				r.Get("/dashboard", adminHandler.HandleDashboard)
				r.Post("/users", adminHandler.HandleCreateUser)
				r.Patch("/users/{userID}/deactivate", adminHandler.HandleToggleActive)
			})
		})
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
// 4. Close the Redis client, if one was configured
//
// If we skip step 3, the database file might be left in an inconsistent state.
// The `defer s.db.Close()` ensures this happens even if something panics.
func (s *Server) Start() error {
	defer s.db.Close()
	if s.rdb != nil {
		defer s.rdb.Close()
	}

	// Create the HTTP server with sensible timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
