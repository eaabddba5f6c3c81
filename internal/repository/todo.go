package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dkorobov/taskdeck/internal/models"
)

// todoColumns is the column list returned by every todo query.
const todoColumns = `id, user_id, title, description, completed, created_at, updated_at`

// PostgresTodoRepository implements todo persistence against PostgreSQL.
// Every query is scoped by the owner's user id; a row owned by another user
// is indistinguishable from an absent one.
type PostgresTodoRepository struct {
	// DB is the database handle for executing queries.
	DB *sqlx.DB
}

// NewPostgresTodoRepository creates a todo repository using the given
// database connection.
func NewPostgresTodoRepository(db *sqlx.DB) *PostgresTodoRepository {
	return &PostgresTodoRepository{DB: db}
}

// Create inserts a new todo row.
func (r *PostgresTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO todos (id, user_id, title, description, completed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		todo.ID, todo.UserID, todo.Title, todo.Description, todo.Completed,
		todo.CreatedAt, todo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

// GetByID fetches a single todo scoped by id and owner.
func (r *PostgresTodoRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Todo, error) {
	var todo models.Todo
	err := r.DB.GetContext(ctx, &todo,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select todo: %w", err)
	}
	return &todo, nil
}

// ListByOwner returns a page of the owner's todos. Ordering by creation time
// then id keeps paginated sweeps stable and disjoint.
func (r *PostgresTodoRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, skip, limit int) ([]models.Todo, error) {
	todos := []models.Todo{}
	err := r.DB.SelectContext(ctx, &todos,
		`SELECT `+todoColumns+` FROM todos WHERE user_id = $1
		 ORDER BY created_at, id OFFSET $2 LIMIT $3`,
		ownerID, skip, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select todos: %w", err)
	}
	return todos, nil
}

// Update replaces the mutable fields of a todo in a single statement scoped
// by id and owner.
func (r *PostgresTodoRepository) Update(ctx context.Context, ownerID, id uuid.UUID, title, description string, completed bool) (*models.Todo, error) {
	var todo models.Todo
	err := r.DB.GetContext(ctx, &todo,
		`UPDATE todos SET title = $1, description = $2, completed = $3, updated_at = $4
		 WHERE id = $5 AND user_id = $6
		 RETURNING `+todoColumns,
		title, description, completed, time.Now(), id, ownerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return &todo, nil
}

// Patch applies only the fields present in patch, in a single statement
// scoped by id and owner. An empty patch degenerates to a read.
func (r *PostgresTodoRepository) Patch(ctx context.Context, ownerID, id uuid.UUID, patch models.TodoPatch) (*models.Todo, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, ownerID, id)
	}

	builder := sq.Update("todos").PlaceholderFormat(sq.Dollar)
	if patch.Title != nil {
		builder = builder.Set("title", *patch.Title)
	}
	if patch.Description != nil {
		builder = builder.Set("description", *patch.Description)
	}
	if patch.Completed != nil {
		builder = builder.Set("completed", *patch.Completed)
	}
	builder = builder.
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		Suffix("RETURNING " + todoColumns)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build patch query: %w", err)
	}

	var todo models.Todo
	err = r.DB.GetContext(ctx, &todo, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patch todo: %w", err)
	}
	return &todo, nil
}

// Delete removes a todo scoped by id and owner.
func (r *PostgresTodoRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleCompletion flips the completion flag in a single statement, so
// concurrent toggles cannot lose an update to a read-modify-write race.
func (r *PostgresTodoRepository) ToggleCompletion(ctx context.Context, ownerID, id uuid.UUID) (*models.Todo, error) {
	var todo models.Todo
	err := r.DB.GetContext(ctx, &todo,
		`UPDATE todos SET completed = NOT completed, updated_at = $1
		 WHERE id = $2 AND user_id = $3
		 RETURNING `+todoColumns,
		time.Now(), id, ownerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("toggle todo: %w", err)
	}
	return &todo, nil
}
