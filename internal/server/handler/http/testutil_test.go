package http

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dkorobov/taskdeck/internal/models"
	"github.com/dkorobov/taskdeck/internal/repository"
	"github.com/dkorobov/taskdeck/internal/security"
	"github.com/dkorobov/taskdeck/internal/service"
	"github.com/dkorobov/taskdeck/internal/session"
)

// memUserRepo is an in-memory stand-in for the Postgres user repository.
type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]*models.User{}}
}

func (m *memUserRepo) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

// memTodoRepo mirrors the ownership-scoped semantics of the Postgres todo
// repository: a row owned by someone else behaves exactly like an absent row.
type memTodoRepo struct {
	mu    sync.Mutex
	todos map[uuid.UUID]*models.Todo
	seq   int
}

func newMemTodoRepo() *memTodoRepo {
	return &memTodoRepo{todos: map[uuid.UUID]*models.Todo{}}
}

func (m *memTodoRepo) Create(_ context.Context, todo *models.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *todo
	// Distinct creation instants keep list ordering deterministic.
	m.seq++
	copied.CreatedAt = copied.CreatedAt.Add(time.Duration(m.seq) * time.Microsecond)
	m.todos[todo.ID] = &copied
	return nil
}

func (m *memTodoRepo) find(ownerID, id uuid.UUID) (*models.Todo, bool) {
	t, ok := m.todos[id]
	if !ok || t.UserID != ownerID {
		return nil, false
	}
	return t, true
}

func (m *memTodoRepo) GetByID(_ context.Context, ownerID, id uuid.UUID) (*models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.find(ownerID, id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *memTodoRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, skip, limit int) ([]models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owned := []models.Todo{}
	for _, t := range m.todos {
		if t.UserID == ownerID {
			owned = append(owned, *t)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID.String() < owned[j].ID.String()
		}
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})
	if skip >= len(owned) {
		return []models.Todo{}, nil
	}
	owned = owned[skip:]
	if limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (m *memTodoRepo) Update(_ context.Context, ownerID, id uuid.UUID, title, description string, completed bool) (*models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.find(ownerID, id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.Title, t.Description, t.Completed = title, description, completed
	t.UpdatedAt = time.Now()
	copied := *t
	return &copied, nil
}

func (m *memTodoRepo) Patch(_ context.Context, ownerID, id uuid.UUID, patch models.TodoPatch) (*models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.find(ownerID, id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	t.UpdatedAt = time.Now()
	copied := *t
	return &copied, nil
}

func (m *memTodoRepo) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.find(ownerID, id); !ok {
		return repository.ErrNotFound
	}
	delete(m.todos, id)
	return nil
}

func (m *memTodoRepo) ToggleCompletion(_ context.Context, ownerID, id uuid.UUID) (*models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.find(ownerID, id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.Completed = !t.Completed
	t.UpdatedAt = time.Now()
	copied := *t
	return &copied, nil
}

// testServer bundles the fully wired router with the pieces tests need to
// mint sessions directly.
type testServer struct {
	router http.Handler
	auth   *service.AuthService
	codec  *security.TokenCodec
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	codec := security.NewTokenCodec("handler-test-secret", time.Hour)
	authSvc, err := service.NewAuthService(newMemUserRepo(), codec)
	if err != nil {
		t.Fatalf("NewAuthService returned error: %v", err)
	}
	todoSvc := service.NewTodoService(newMemTodoRepo())

	log := zap.NewNop()
	authHandler := &AuthHandler{AuthService: authSvc, Sessions: session.NewCarrier(time.Hour), Log: log}
	todoHandler := &TodoHandler{TodoService: todoSvc, Log: log}

	router := NewRouter(authHandler, todoHandler, codec, log, []string{"http://localhost:3000"})
	return &testServer{router: router, auth: authSvc, codec: codec}
}

// registerAndLogin creates a user and returns it with a valid session token.
func (ts *testServer) registerAndLogin(t *testing.T, email, password string) (*models.User, string) {
	t.Helper()
	user, err := ts.auth.Register(context.Background(), email, password, "")
	if err != nil {
		t.Fatalf("registering %s: %v", email, err)
	}
	token, err := ts.auth.IssueSession(user)
	if err != nil {
		t.Fatalf("issuing session for %s: %v", email, err)
	}
	return user, token
}
