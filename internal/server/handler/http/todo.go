package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dkorobov/taskdeck/internal/middleware"
	"github.com/dkorobov/taskdeck/internal/models"
	"github.com/dkorobov/taskdeck/internal/repository"
)

// TodoService defines the interface for ownership-scoped todo operations
// required by the HTTP handlers. The owner id parameter always comes from
// the resolved identity.
type TodoService interface {
	Create(ctx context.Context, ownerID uuid.UUID, title, description string) (*models.Todo, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Todo, error)
	List(ctx context.Context, ownerID uuid.UUID, skip, limit int) ([]models.Todo, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, title, description string, completed bool) (*models.Todo, error)
	Patch(ctx context.Context, ownerID, id uuid.UUID, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Toggle(ctx context.Context, ownerID, id uuid.UUID) (*models.Todo, error)
}

// TodoHandler handles HTTP requests for todo CRUD and completion toggling.
// All routes sit behind the auth middleware.
type TodoHandler struct {
	// TodoService performs the underlying todo operations.
	TodoService TodoService
	// Log records internal failure causes.
	Log *zap.Logger
}

// createTodoRequest deliberately has no owner field: the owner is always the
// authenticated caller, whatever the body claims.
type createTodoRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=4000"`
}

type updateTodoRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=4000"`
	Completed   bool   `json:"completed"`
}

type patchTodoRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
	Completed   *bool   `json:"completed"`
}

// callerAndID resolves the authenticated owner and the {id} URL parameter.
// An unparseable id is reported as not-found: a malformed identifier cannot
// name a row the caller owns.
func callerAndID(w http.ResponseWriter, r *http.Request) (owner, id uuid.UUID, ok bool) {
	identity, found := middleware.IdentityFromContext(r.Context())
	if !found {
		middleware.Unauthorized(w)
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "todo not found")
		return uuid.Nil, uuid.Nil, false
	}
	return identity.UserID, id, true
}

// Create stores a new todo owned by the caller and returns it with 201.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		middleware.Unauthorized(w)
		return
	}

	var req createTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	todo, err := h.TodoService.Create(r.Context(), identity.UserID, req.Title, req.Description)
	if err != nil {
		h.Log.Error("create todo failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

// List returns a page of the caller's todos. Query parameters: skip
// (default 0) and limit (default 100, bounded).
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		middleware.Unauthorized(w)
		return
	}

	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 0)

	todos, err := h.TodoService.List(r.Context(), identity.UserID, skip, limit)
	if err != nil {
		h.Log.Error("list todos failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

// Get returns a single todo by id, 404 if absent or foreign.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := callerAndID(w, r)
	if !ok {
		return
	}
	todo, err := h.TodoService.Get(r.Context(), owner, id)
	if err != nil {
		h.respondTodoError(w, "get todo", err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// Update replaces a todo's mutable fields.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := callerAndID(w, r)
	if !ok {
		return
	}

	var req updateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	todo, err := h.TodoService.Update(r.Context(), owner, id, req.Title, req.Description, req.Completed)
	if err != nil {
		h.respondTodoError(w, "update todo", err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// Patch applies a partial update; absent fields keep their values.
func (h *TodoHandler) Patch(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := callerAndID(w, r)
	if !ok {
		return
	}

	var req patchTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	patch := models.TodoPatch{Title: req.Title, Description: req.Description, Completed: req.Completed}
	todo, err := h.TodoService.Patch(r.Context(), owner, id, patch)
	if err != nil {
		h.respondTodoError(w, "patch todo", err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// Delete removes a todo, 204 on success.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := callerAndID(w, r)
	if !ok {
		return
	}
	if err := h.TodoService.Delete(r.Context(), owner, id); err != nil {
		h.respondTodoError(w, "delete todo", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle flips a todo's completion flag and returns the updated record.
func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := callerAndID(w, r)
	if !ok {
		return
	}
	todo, err := h.TodoService.Toggle(r.Context(), owner, id)
	if err != nil {
		h.respondTodoError(w, "toggle todo", err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// respondTodoError maps store errors to responses. Absent and foreign rows
// are the same 404; everything else is a logged 500 with a generic body.
func (h *TodoHandler) respondTodoError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	h.Log.Error(op+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
