package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/todoapi/todoapi/internal/auth"
	"github.com/todoapi/todoapi/internal/handler/dto"
	"github.com/todoapi/todoapi/internal/service"
)

// TodoHandler handles todo CRUD endpoints. Every call is scoped to the
// authenticated user.
type TodoHandler struct {
	svc    *service.TodoService
	logger *slog.Logger
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(svc *service.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /todos.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	ownerID := auth.UserIDFromContext(r.Context())
	todo, err := h.svc.Create(r.Context(), ownerID, req.Text)
	if err != nil {
		h.handleServiceError(w, err, "")
		return
	}

	h.logger.Info("todo_created", "todo_id", todo.ID, "user_id", ownerID)

	writeJSON(w, http.StatusOK, todo)
}

// List handles GET /todos.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.svc.ListByOwner(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err, "")
		return
	}

	writeJSON(w, http.StatusOK, dto.NewTodoListResponse(todos))
}

// Get handles GET /todos/{id}.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	todo, err := h.svc.GetByIDForOwner(r.Context(), id, auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err, id)
		return
	}

	writeJSON(w, http.StatusOK, dto.TodoEnvelope{Todo: todo})
}

// Update handles PATCH /todos/{id}.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	ownerID := auth.UserIDFromContext(r.Context())
	todo, err := h.svc.UpdateByIDForOwner(r.Context(), id, ownerID, req.ToPatch())
	if err != nil {
		h.handleServiceError(w, err, id)
		return
	}

	h.logger.Info("todo_updated", "todo_id", id, "user_id", ownerID)

	writeJSON(w, http.StatusOK, dto.TodoEnvelope{Todo: todo})
}

// Delete handles DELETE /todos/{id}.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ownerID := auth.UserIDFromContext(r.Context())
	todo, err := h.svc.DeleteByIDForOwner(r.Context(), id, ownerID)
	if err != nil {
		h.handleServiceError(w, err, id)
		return
	}

	h.logger.Info("todo_deleted", "todo_id", id, "user_id", ownerID)

	writeJSON(w, http.StatusOK, dto.TodoEnvelope{Todo: todo})
}

// handleServiceError maps service errors to HTTP responses.
func (h *TodoHandler) handleServiceError(w http.ResponseWriter, err error, id string) {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		writeError(w, http.StatusNotFound, dto.CodeNotFound, "Invalid ObjectID: "+id)
	case errors.Is(err, service.ErrTodoNotFound):
		writeError(w, http.StatusNotFound, dto.CodeNotFound, "Todo with ID: "+id+" not found.")
	case errors.Is(err, service.ErrTextRequired):
		writeError(w, http.StatusBadRequest, dto.CodeValidation, "Text is required")
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, dto.CodeValidation, "Invalid request")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusBadRequest, dto.CodeInternal, "Request could not be completed")
	}
}
