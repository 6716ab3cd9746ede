// Package server wires the application together: router, middleware order,
// route table, and graceful shutdown.
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go loads Config and creates the logger
//	New() creates: sqlite.DB → services → handlers → routes
//
// This is the composition root — every dependency is assembled in one place,
// and each layer receives only what it needs (the services get repository
// interfaces, the handlers get services, nobody reaches around a layer).
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

	"github.com/matthewzdanevich/task-manager-app/internal/auth"
	"github.com/matthewzdanevich/task-manager-app/internal/config"
	"github.com/matthewzdanevich/task-manager-app/internal/handler"
	"github.com/matthewzdanevich/task-manager-app/internal/middleware"
	"github.com/matthewzdanevich/task-manager-app/internal/notify"
	sqliteRepo "github.com/matthewzdanevich/task-manager-app/internal/repository/sqlite"
	"github.com/matthewzdanevich/task-manager-app/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL flushes and the file lock is
// released.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency graph.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
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

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the route table.
//
// ROUTE STRUCTURE:
//
//	GET    /                   → liveness message (public)
//	POST   /users              → register (public)
//	POST   /users/login        → login (public)
//	POST   /users/logout       → end this session
//	POST   /users/logout-all   → end every session
//	GET    /users/me           → own profile (public projection)
//	PATCH  /users/me           → update own profile
//	DELETE /users/me           → delete account (cascades to tasks+sessions)
//	PUT    /users/me/avatar    → upload icon
//	GET    /users/me/avatar    → fetch icon
//	DELETE /users/me/avatar    → remove icon
//	POST   /tasks              → create task
//	GET    /tasks              → list own tasks (?completed&sort&limit&skip)
//	GET    /tasks/{id}         → get own task
//	PATCH  /tasks/{id}         → update own task
//	DELETE /tasks/{id}         → delete own task
//
// Everything past the two public auth routes sits behind RequireAuth, which
// resolves the bearer token to a user via signature check + session lookup.
func (s *Server) setupRoutes() error {
	// Middleware order matters: request ID and real IP first so the logger
	// sees them, Recoverer so a panic becomes a 500 instead of a dead worker.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecretKey)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	notifier := notify.NewLogNotifier(s.logger)

	userService := service.NewUserService(s.db.Users(), tokens, passwords, notifier, s.logger)
	taskService := service.NewTaskService(s.db.Tasks(), s.logger)

	userHandler := handler.NewUserHandler(userService, s.logger)
	taskHandler := handler.NewTaskHandler(taskService, s.logger)

	requireAuth := auth.RequireAuth(tokens, userService)

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Task Manager API is running"}` + "\n"))
	})

	s.router.Route("/users", func(r chi.Router) {
		r.Post("/", userHandler.HandleRegister)
		r.Post("/login", userHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", userHandler.HandleLogout)
			r.Post("/logout-all", userHandler.HandleLogoutAll)
			r.Get("/me", userHandler.HandleGetProfile)
			r.Patch("/me", userHandler.HandleUpdateProfile)
			r.Delete("/me", userHandler.HandleDeleteProfile)
			r.Put("/me/avatar", userHandler.HandleUploadIcon)
			r.Get("/me/avatar", userHandler.HandleGetIcon)
			r.Delete("/me/avatar", userHandler.HandleDeleteIcon)
		})
	})

	s.router.Route("/tasks", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", taskHandler.HandleCreate)
		r.Get("/", taskHandler.HandleList)
		r.Get("/{id}", taskHandler.HandleGetByID)
		r.Patch("/{id}", taskHandler.HandleUpdate)
		r.Delete("/{id}", taskHandler.HandleDelete)
	})

	return nil
}

// Handler returns the assembled router, used directly by end-to-end tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources without serving. Tests use this;
// Start handles it itself.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
