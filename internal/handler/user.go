package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/todoapi/todoapi/internal/auth"
	"github.com/todoapi/todoapi/internal/handler/dto"
	"github.com/todoapi/todoapi/internal/middleware"
	"github.com/todoapi/todoapi/internal/model"
	"github.com/todoapi/todoapi/internal/service"
)

// UserHandler handles registration, login and session endpoints.
type UserHandler struct {
	directory *service.UserDirectory
	logger    *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(directory *service.UserDirectory, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		directory: directory,
		logger:    logger,
	}
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := h.directory.Create(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	token, err := h.directory.IssueSession(r.Context(), user)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)

	w.Header().Set(middleware.AuthHeader, token)
	writeJSON(w, http.StatusOK, user.ToResponse())
}

// Login handles POST /users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := h.directory.FindByCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	token, err := h.directory.IssueSession(r.Context(), user)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID)

	w.Header().Set(middleware.AuthHeader, token)
	writeJSON(w, http.StatusOK, user.ToResponse())
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := auth.MustPrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, model.UserResponse{ID: p.UserID, Email: p.Email})
}

// Logout handles DELETE /users/me/token. Only the presented token is revoked.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	if err := h.directory.RevokeSession(ctx, userID, auth.TokenFromContext(ctx)); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_logged_out", "user_id", userID)

	w.WriteHeader(http.StatusOK)
}

// handleServiceError maps service errors to HTTP responses. Every user
// endpoint reports failures as 400.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, dto.CodeValidation, "Invalid email address")
	case errors.Is(err, service.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, dto.CodeValidation, "Password is too short")
	case errors.Is(err, service.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, dto.CodeValidation, "Password is too long")
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, dto.CodeValidation, "Invalid request")
	case errors.Is(err, service.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, dto.CodeDuplicateEmail, "Email already registered")
	case errors.Is(err, service.ErrAuthenticationFailed):
		writeError(w, http.StatusBadRequest, dto.CodeBadCredentials, "Invalid email or password")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusBadRequest, dto.CodeInternal, "Request could not be completed")
	}
}
