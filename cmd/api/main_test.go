package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/todoapi/todoapi/internal/auth"
	"github.com/todoapi/todoapi/internal/config"
	"github.com/todoapi/todoapi/internal/metrics"
	"github.com/todoapi/todoapi/internal/repository/memory"
	"github.com/todoapi/todoapi/internal/service"
)

func TestRedactURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"postgres://todo:s3cret@db:5432/todo", "postgres://todo@db:5432/todo"},
		{"redis://:s3cret@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"mongodb://localhost:27017", "mongodb://localhost:27017"},
	}

	for _, tt := range tests {
		if got := redactURL(tt.raw); got != tt.want {
			t.Errorf("redactURL(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	secret := "postgres://todo:s3cret@db:5432/todo"
	err := errors.New("dial " + secret + " failed: password=s3cret")

	got := sanitizeError(err, secret)
	if strings.Contains(got, "s3cret") {
		t.Errorf("sanitizeError leaked the password: %s", got)
	}
	if !strings.Contains(got, "postgres://todo@db:5432/todo") {
		t.Errorf("sanitizeError dropped the redacted url: %s", got)
	}
	if sanitizeError(nil, secret) != "" {
		t.Error("sanitizeError(nil) should be empty")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupRouter_WithoutCache(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	recorder := metrics.NewInMemory()
	cfg := &config.Config{
		AppEnv:             "development",
		MaxRequestBodySize: 1 << 20,
	}

	directory := service.NewUserDirectory(service.UserDirectoryConfig{
		Users:  store,
		Hashes: auth.NewHashPool(auth.NewBcryptHasher(4), 1),
		Tokens: auth.NewTokenCodec([]byte("main-test-secret"), 0),
		Logger: logger,
	})
	r := setupRouter(store, nil, directory, service.NewTodoService(store, recorder), recorder, recorder, cfg, logger)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /readyz status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"cache":"not configured"`) {
		t.Errorf("GET /readyz body = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/todos", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET /todos without token status = %d, want 401", rec.Code)
	}
}
