// Command bootstrap-user creates a user (or logs in an existing one) and
// prints a fresh session token for use in the x-auth header.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/todoapi/todoapi/internal/auth"
	"github.com/todoapi/todoapi/internal/config"
	"github.com/todoapi/todoapi/internal/model"
	"github.com/todoapi/todoapi/internal/repository/backend"
	"github.com/todoapi/todoapi/internal/service"
)

type output struct {
	UserID string `json:"_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func main() {
	var (
		email    = flag.String("email", "", "User email")
		password = flag.String("password", os.Getenv("BOOTSTRAP_PASSWORD"), "User password (defaults to $BOOTSTRAP_PASSWORD)")
		format   = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "-email and -password are required")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := backend.Open(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer store.Close()

	hasher, err := auth.NewHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	directory := service.NewUserDirectory(service.UserDirectoryConfig{
		Users:  store,
		Hashes: auth.NewHashPool(hasher, cfg.HashConcurrency),
		Tokens: auth.NewTokenCodec([]byte(cfg.JWTSecret), cfg.TokenTTL),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	user, err := ensureUser(ctx, directory, *email, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	token, err := directory.IssueSession(ctx, user)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue session:", err)
		os.Exit(1)
	}

	out := output{
		UserID: user.ID,
		Email:  user.Email,
		Token:  token,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// ensureUser registers email, or logs it in when it is already taken.
func ensureUser(ctx context.Context, directory *service.UserDirectory, email, password string) (*model.User, error) {
	user, err := directory.Create(ctx, email, password)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, service.ErrDuplicateEmail) {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user, err = directory.FindByCredentials(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("user %s exists with a different password: %w", email, err)
	}
	return user, nil
}
