package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/todoapi/todoapi/internal/auth"
	"github.com/todoapi/todoapi/internal/cache"
	"github.com/todoapi/todoapi/internal/metrics"
	"github.com/todoapi/todoapi/internal/model"
	"github.com/todoapi/todoapi/internal/repository"
)

// dummyPassword feeds the digest verified when a login names an unknown email.
const dummyPassword = "not-a-real-password"

// SessionCache stores resolved sessions keyed by token.
// GetSession returns nil, nil on a miss. After DeleteSession the token is
// revoked: GetSession misses and SetSession does not store it.
type SessionCache interface {
	GetSession(ctx context.Context, token string) (*cache.CachedSession, error)
	SetSession(ctx context.Context, token string, s *cache.CachedSession) error
	DeleteSession(ctx context.Context, token string) error
}

// UserDirectoryConfig holds the dependencies of a UserDirectory.
type UserDirectoryConfig struct {
	Users  repository.UserStore
	Hashes *auth.HashPool
	Tokens *auth.TokenCodec

	// Sessions is optional. Leave nil to always consult the store.
	Sessions SessionCache

	Metrics metrics.Recorder
	Logger  *slog.Logger
}

// UserDirectory handles registration, login and session tokens.
type UserDirectory struct {
	users    repository.UserStore
	hashes   *auth.HashPool
	tokens   *auth.TokenCodec
	sessions SessionCache
	metrics  metrics.Recorder
	logger   *slog.Logger

	// dummyDigest is verified when a login names an unknown email.
	dummyDigest string
}

// NewUserDirectory creates a new UserDirectory.
func NewUserDirectory(cfg UserDirectoryConfig) *UserDirectory {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	d := &UserDirectory{
		users:    cfg.Users,
		hashes:   cfg.Hashes,
		tokens:   cfg.Tokens,
		sessions: cfg.Sessions,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}

	digest, err := d.hashes.Hash(context.Background(), dummyPassword)
	if err != nil {
		d.logger.Error("failed to build dummy digest", "error", err)
	}
	d.dummyDigest = digest
	return d
}

// Create registers a user with a hashed password and no tokens.
func (d *UserDirectory) Create(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if err := validate.Struct(registration{Email: email, Password: password}); err != nil {
		return nil, validationError(err)
	}

	digest, err := d.hash(ctx, password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:             ulid.Make().String(),
		Email:          email,
		PasswordDigest: digest,
		Tokens:         []model.Token{},
		CreatedAt:      time.Now().UTC(),
	}

	if err := d.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	d.metrics.IncUserRegistered()
	return user, nil
}

// FindByCredentials returns the user whose email and password match.
// An unknown email and a wrong password both yield ErrAuthenticationFailed.
func (d *UserDirectory) FindByCredentials(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)

	user, err := d.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		// Spend the same hashing time as a real check.
		if _, err := d.verify(ctx, password, d.dummyDigest); err != nil {
			return nil, err
		}
		d.metrics.IncLogin(metrics.LoginFailed)
		return nil, ErrAuthenticationFailed
	}

	ok, err := d.verify(ctx, password, user.PasswordDigest)
	if err != nil {
		return nil, err
	}
	if !ok {
		d.metrics.IncLogin(metrics.LoginFailed)
		return nil, ErrAuthenticationFailed
	}

	d.metrics.IncLogin(metrics.LoginSuccess)
	return user, nil
}

// IssueSession signs a new auth token and adds it to the user's list.
// Concurrent sessions for one user are all kept.
func (d *UserDirectory) IssueSession(ctx context.Context, user *model.User) (string, error) {
	token, err := d.tokens.Issue(user.ID, model.PurposeAuth)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	entry := model.Token{Purpose: model.PurposeAuth, Token: token}
	if err := d.users.AddUserToken(ctx, user.ID, entry); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	user.Tokens = append(user.Tokens, entry)
	return token, nil
}

// FindByToken resolves a presented token to its user. The signature must
// verify and the token must still be in the user's active list.
func (d *UserDirectory) FindByToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := d.tokens.Verify(token)
	if err != nil || claims.Purpose != model.PurposeAuth {
		return nil, ErrInvalidToken
	}

	if cached := d.cachedSession(ctx, token); cached != nil && cached.UserID == claims.UserID {
		return &model.User{ID: cached.UserID, Email: cached.Email}, nil
	}

	user, err := d.users.GetUserByToken(ctx, claims.UserID, model.Token{Purpose: model.PurposeAuth, Token: token})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, fmt.Errorf("failed to find user by token: %w", err)
	}

	if d.sessions != nil {
		if err := d.sessions.SetSession(ctx, token, &cache.CachedSession{UserID: user.ID, Email: user.Email}); err != nil {
			d.logger.Warn("session cache write failed", "error", err)
		}
	}

	return user, nil
}

// RevokeSession removes token from the user's list. Revoking a token the
// user does not hold is not an error.
func (d *UserDirectory) RevokeSession(ctx context.Context, userID, token string) error {
	entry := model.Token{Purpose: model.PurposeAuth, Token: token}
	if err := d.users.RemoveUserToken(ctx, userID, entry); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}

	if d.sessions != nil {
		if err := d.sessions.DeleteSession(ctx, token); err != nil {
			d.logger.Warn("session cache delete failed", "error", err)
		}
	}

	d.metrics.IncLogout()
	return nil
}

func (d *UserDirectory) cachedSession(ctx context.Context, token string) *cache.CachedSession {
	if d.sessions == nil {
		return nil
	}

	cached, err := d.sessions.GetSession(ctx, token)
	if err != nil {
		d.logger.Warn("session cache read failed", "error", err)
		return nil
	}
	if cached == nil {
		d.metrics.IncSessionCacheMiss()
		return nil
	}

	d.metrics.IncSessionCacheHit()
	return cached
}

func (d *UserDirectory) hash(ctx context.Context, password string) (string, error) {
	start := time.Now()
	digest, err := d.hashes.Hash(ctx, password)
	d.metrics.ObserveHashDuration(time.Since(start))
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return digest, nil
}

func (d *UserDirectory) verify(ctx context.Context, password, digest string) (bool, error) {
	start := time.Now()
	ok, err := d.hashes.Verify(ctx, password, digest)
	d.metrics.ObserveHashDuration(time.Since(start))
	return ok, err
}
