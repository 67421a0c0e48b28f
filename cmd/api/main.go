// Package main is the entrypoint for the todo API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/todoapi/todoapi/internal/auth"
	"github.com/todoapi/todoapi/internal/cache"
	"github.com/todoapi/todoapi/internal/config"
	"github.com/todoapi/todoapi/internal/handler"
	"github.com/todoapi/todoapi/internal/metrics"
	"github.com/todoapi/todoapi/internal/middleware"
	"github.com/todoapi/todoapi/internal/repository"
	"github.com/todoapi/todoapi/internal/repository/backend"
	"github.com/todoapi/todoapi/internal/server"
	"github.com/todoapi/todoapi/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize document store
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	store, err := backend.Open(connectCtx, cfg.DatabaseURL, cfg.DatabaseName)
	cancel()
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database", "backend", cfg.DatabaseScheme())

	// Initialize session cache (optional)
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL, cfg.SessionCacheTTL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			store.Close()
			os.Exit(1)
		}
		logger.Info("connected to Redis", "session_ttl", cfg.SessionCacheTTL)
	}

	// Initialize metrics
	var (
		metricsRecorder metrics.Recorder = metrics.NewNoop()
		snapshotter     metrics.Snapshotter
	)
	if cfg.MetricsEnabled {
		inMemory := metrics.NewInMemory()
		metricsRecorder = inMemory
		snapshotter = inMemory
	}

	// Initialize credential hashing and tokens
	hasher, err := auth.NewHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		logger.Error("failed to initialize password hasher", "error", err)
		os.Exit(1)
	}
	hashes := auth.NewHashPool(hasher, cfg.HashConcurrency)
	tokens := auth.NewTokenCodec([]byte(cfg.JWTSecret), cfg.TokenTTL)

	// Initialize services
	directoryCfg := service.UserDirectoryConfig{
		Users:   store,
		Hashes:  hashes,
		Tokens:  tokens,
		Metrics: metricsRecorder,
		Logger:  logger,
	}
	if cacheClient != nil {
		directoryCfg.Sessions = cacheClient
	}
	userDirectory := service.NewUserDirectory(directoryCfg)
	todoService := service.NewTodoService(store, metricsRecorder)

	// Setup router
	r := setupRouter(store, cacheClient, userDirectory, todoService, metricsRecorder, snapshotter, cfg, logger)

	// Create and run server
	srv := server.New(r, server.Config{
		Port:            cfg.ListenPort(),
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("store", func(ctx context.Context) error {
		store.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("cache", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.ListenPort(),
		"env", cfg.AppEnv,
		"hasher", cfg.PasswordHasher,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
// A nil cacheClient leaves the readiness cache check unconfigured.
func setupRouter(
	store repository.Store,
	cacheClient *cache.Cache,
	userDirectory *service.UserDirectory,
	todoService *service.TodoService,
	recorder metrics.Recorder,
	snapshotter metrics.Snapshotter,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	var cacheCheck handler.HealthChecker
	if cacheClient != nil {
		cacheCheck = cacheClient
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	return handler.NewRouter(handler.RouterConfig{
		Logger:      logger,
		Users:       userDirectory,
		Todos:       todoService,
		Health:      handler.NewHealthHandler(store, cacheCheck),
		Metrics:     recorder,
		Snapshotter: snapshotter,
		Security: middleware.SecurityConfig{
			IsDevelopment:      cfg.IsDevelopment(),
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		},
		CORS:            corsCfg,
		AuthMinDuration: cfg.AuthMinDuration,
	})
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
