package handler

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/todoapi/todoapi/internal/metrics"
	"github.com/todoapi/todoapi/internal/middleware"
	"github.com/todoapi/todoapi/internal/service"
)

// RouterConfig holds everything the router mounts.
type RouterConfig struct {
	Logger      *slog.Logger
	Users       *service.UserDirectory
	Todos       *service.TodoService
	Health      *HealthHandler
	Metrics     metrics.Recorder
	Snapshotter metrics.Snapshotter

	// A zero Security.MaxRequestBodySize falls back to the default limit.

	Security        middleware.SecurityConfig
	CORS            middleware.CORSConfig
	AuthMinDuration time.Duration
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Security.MaxRequestBodySize <= 0 {
		cfg.Security.MaxRequestBodySize = middleware.DefaultSecurityConfig().MaxRequestBodySize
	}

	h := New()
	userHandler := NewUserHandler(cfg.Users, cfg.Logger)
	todoHandler := NewTodoHandler(cfg.Todos, cfg.Logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))
	r.Use(middleware.CORS(cfg.CORS))

	// Ops endpoints (no auth required)
	if cfg.Health != nil {
		r.Get("/healthz", cfg.Health.Healthz)
		r.Get("/readyz", cfg.Health.Readyz)
	}
	if cfg.Snapshotter != nil {
		r.Get("/metrics", NewMetricsHandler(cfg.Snapshotter).Metrics)
	}

	r.Post("/users", userHandler.Register)
	r.Post("/users/login", userHandler.Login)

	// Everything below requires a session token
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Logger:      cfg.Logger,
			Directory:   cfg.Users,
			Metrics:     cfg.Metrics,
			MinDuration: cfg.AuthMinDuration,
		}))

		r.Get("/users/me", userHandler.Me)
		r.Delete("/users/me/token", userHandler.Logout)

		r.Route("/todos", func(r chi.Router) {
			r.Post("/", todoHandler.Create)
			r.Get("/", todoHandler.List)
			r.Get("/{id}", todoHandler.Get)
			r.Patch("/{id}", todoHandler.Update)
			r.Delete("/{id}", todoHandler.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
