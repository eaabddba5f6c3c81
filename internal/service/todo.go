package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dkorobov/taskdeck/internal/models"
)

const (
	// DefaultPageSize is used when a list request does not name a limit.
	DefaultPageSize = 100
	// MaxPageSize bounds the page size a client may request.
	MaxPageSize = 100
)

// TodoRepository defines the persistence operations required by TodoService.
// Every operation is scoped by the owner's user id.
type TodoRepository interface {
	Create(ctx context.Context, todo *models.Todo) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Todo, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, skip, limit int) ([]models.Todo, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, title, description string, completed bool) (*models.Todo, error)
	Patch(ctx context.Context, ownerID, id uuid.UUID, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ToggleCompletion(ctx context.Context, ownerID, id uuid.UUID) (*models.Todo, error)
}

// TodoService implements ownership-enforcing todo operations. The owner id
// always comes from the resolved identity, never from client-supplied data.
type TodoService struct {
	repo TodoRepository
}

// NewTodoService constructs a TodoService using the provided repository.
func NewTodoService(repo TodoRepository) *TodoService {
	return &TodoService{repo: repo}
}

// Create stores a new todo stamped with the caller as owner.
func (s *TodoService) Create(ctx context.Context, ownerID uuid.UUID, title, description string) (*models.Todo, error) {
	now := time.Now()
	todo := &models.Todo{
		ID:          uuid.New(),
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// Get returns the caller's todo with the given id.
func (s *TodoService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Todo, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// List returns a page of the caller's todos. skip floors at zero; limit
// defaults to DefaultPageSize and is clamped to MaxPageSize.
func (s *TodoService) List(ctx context.Context, ownerID uuid.UUID, skip, limit int) ([]models.Todo, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return s.repo.ListByOwner(ctx, ownerID, skip, limit)
}

// Update replaces the todo's mutable fields.
func (s *TodoService) Update(ctx context.Context, ownerID, id uuid.UUID, title, description string, completed bool) (*models.Todo, error) {
	return s.repo.Update(ctx, ownerID, id, title, description, completed)
}

// Patch applies a partial update.
func (s *TodoService) Patch(ctx context.Context, ownerID, id uuid.UUID, patch models.TodoPatch) (*models.Todo, error) {
	return s.repo.Patch(ctx, ownerID, id, patch)
}

// Delete removes the caller's todo with the given id.
func (s *TodoService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// Toggle flips the todo's completion flag.
func (s *TodoService) Toggle(ctx context.Context, ownerID, id uuid.UUID) (*models.Todo, error) {
	return s.repo.ToggleCompletion(ctx, ownerID, id)
}
