package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/todoapi/todoapi/internal/auth"
	"github.com/todoapi/todoapi/internal/handler/dto"
	"github.com/todoapi/todoapi/internal/metrics"
	"github.com/todoapi/todoapi/internal/model"
	"github.com/todoapi/todoapi/internal/service"
)

// AuthHeader carries the session token on authenticated requests.
const AuthHeader = "x-auth"

// TokenResolver resolves a presented session token to its user.
type TokenResolver interface {
	FindByToken(ctx context.Context, token string) (*model.User, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger    *slog.Logger
	Directory TokenResolver
	Metrics   metrics.Recorder

	// MinDuration pads every outcome to at least this long. Zero disables it.
	MinDuration time.Duration
}

// Auth returns a middleware that authenticates requests by the x-auth
// header. A rejected request never reaches next.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			reject := func(reason string, err error) {
				padAuthDuration(startTime, cfg.MinDuration)

				attrs := []any{
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				}
				if reason == metrics.RejectStoreError {
					cfg.Logger.Error("authentication failed", append(attrs, slog.String("error", err.Error()))...)
				} else {
					cfg.Logger.Warn("authentication failed", attrs...)
				}

				cfg.Metrics.IncAuthRejected(reason)
				writeAuthError(w)
			}

			token := r.Header.Get(AuthHeader)
			if token == "" {
				reject(metrics.RejectMissingToken, nil)
				return
			}

			user, err := cfg.Directory.FindByToken(r.Context(), token)
			if err != nil {
				reject(rejectReason(err), err)
				return
			}

			padAuthDuration(startTime, cfg.MinDuration)
			recordUserID(r.Context(), user.ID)

			cfg.Logger.Debug("authentication successful",
				slog.String("user_id", user.ID),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithPrincipal(r.Context(), &model.Principal{
				UserID: user.ID,
				Email:  user.Email,
				Token:  token,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		return metrics.RejectInvalidToken
	case errors.Is(err, service.ErrTokenRevoked):
		return metrics.RejectRevokedToken
	default:
		return metrics.RejectStoreError
	}
}

func padAuthDuration(start time.Time, min time.Duration) {
	if elapsed := time.Since(start); elapsed < min {
		time.Sleep(min - elapsed)
	}
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error: "authentication required",
		Code:  dto.CodeUnauthorized,
	})
}
