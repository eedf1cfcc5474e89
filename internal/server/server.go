// Package server wires the application together: router, middleware, routes,
// and graceful shutdown.
//
// This is the composition root. main.go reads config and hands it here; New
// builds the full dependency chain (sqlite.DB → services → handlers) in one
// place, so no other package constructs its own collaborators.
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

	"github.com/screenpatron/screen-patron/internal/auth"
	"github.com/screenpatron/screen-patron/internal/handler"
	"github.com/screenpatron/screen-patron/internal/middleware"
	sqliteRepo "github.com/screenpatron/screen-patron/internal/repository/sqlite"
	"github.com/screenpatron/screen-patron/internal/service"
	"github.com/screenpatron/screen-patron/internal/storage"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port      int
	DBPath    string // SQLite database file
	UploadDir string // directory for stored images
	JWTSecret string // HMAC key for session tokens, min 16 chars
}

// Server owns the router and the resources that must be released on
// shutdown (today, the database connection).
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain and registers all routes.
//
// Each layer only receives what it needs: services get the repository.Store
// interface (not the concrete sqlite.DB), handlers get services, the router
// gets handlers.
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

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// setupRoutes builds services and handlers and maps them onto the router.
//
// Middleware order matters: RequestID and RealIP first so the logger sees
// them, Recoverer before anything that might panic, then request logging.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	photos, err := storage.NewLocalStore(s.config.UploadDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating upload store: %w", err)
	}

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	userService := service.NewUserService(s.db, s.logger)
	eventService := service.NewEventService(s.db, s.logger)
	guestService := service.NewGuestService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, photos)
	eventHandler := handler.NewEventHandler(eventService, photos)
	guestHandler := handler.NewGuestHandler(guestService)

	// Uploaded images are public once stored; the opaque filenames are the
	// only handle anyone has on them.
	fileServer := http.FileServer(http.Dir(photos.Dir()))
	s.router.Handle(storage.PublicPrefix+"*", http.StripPrefix(storage.PublicPrefix, fileServer))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		// Public reads.
		r.Get("/events", eventHandler.HandleList)
		r.Get("/events/{id}", eventHandler.HandleGet)
		r.Get("/events/{id}/guests", guestHandler.HandleGuestList)
		r.Get("/users/{id}", userHandler.HandleGet)

		// Everything below requires a signed-in user.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)

			r.Patch("/users/{id}", userHandler.HandleUpdate)
			r.Put("/users/{id}/photo", userHandler.HandleSetPhoto)
			r.Delete("/users/{id}", userHandler.HandleDelete)

			r.Post("/events", eventHandler.HandleCreate)
			r.Patch("/events/{id}", eventHandler.HandleUpdate)
			r.Delete("/events/{id}", eventHandler.HandleDelete)
			r.Put("/events/{id}/photo", eventHandler.HandleSetPhoto)

			r.Put("/events/{id}/guests", guestHandler.HandleRsvp)
			r.Patch("/events/{id}/guests/{userID}", guestHandler.HandleUpdateGuest)
			r.Delete("/events/{id}/guests/{userID}", guestHandler.HandleRemoveGuest)

			r.Put("/events/{id}/hosts/{userID}", guestHandler.HandlePromote)
			r.Post("/events/{id}/hosts/{userID}/demote", guestHandler.HandleDemote)
			r.Delete("/events/{id}/hosts/{userID}", guestHandler.HandleRemoveHost)
		})
	})

	return nil
}

// Router exposes the configured router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database (flushes the WAL, releases the file lock).
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
