// Package dto defines the JSON request and response bodies of the HTTP API.
package dto

import "github.com/todoapi/todoapi/internal/model"

// Error codes carried in ErrorResponse.Code.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeDuplicateEmail   = "DUPLICATE_EMAIL"
	CodeBadCredentials   = "AUTHENTICATION_FAILED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotFound         = "NOT_FOUND"
	CodeBadRequest       = "BAD_REQUEST"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CredentialsRequest is the body of POST /users and POST /users/login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTodoRequest is the body of POST /todos.
type CreateTodoRequest struct {
	Text string `json:"text"`
}

// UpdateTodoRequest is the body of PATCH /todos/{id}. Absent fields are
// left unchanged; unknown fields are ignored.
type UpdateTodoRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// ToPatch converts the request into a model patch.
func (r UpdateTodoRequest) ToPatch() model.TodoPatch {
	return model.TodoPatch{
		Text:      r.Text,
		Completed: r.Completed,
	}
}

// TodoEnvelope wraps a single todo as {"todo": ...}.
type TodoEnvelope struct {
	Todo *model.Todo `json:"todo"`
}

// TodoListResponse wraps the owner's todos as {"todos": [...]}.
type TodoListResponse struct {
	Todos []*model.Todo `json:"todos"`
}

// NewTodoListResponse never returns a nil list.
func NewTodoListResponse(todos []*model.Todo) TodoListResponse {
	if todos == nil {
		todos = []*model.Todo{}
	}
	return TodoListResponse{Todos: todos}
}
