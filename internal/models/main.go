// Package models defines the core data structures for users and todos.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. PasswordHash is never serialized.
type User struct {
	// ID is the unique identifier for the user.
	ID uuid.UUID `db:"id" json:"id"`
	// Email is the unique login email, matched case-sensitively.
	Email string `db:"email" json:"email"`
	// FullName is an optional display name supplied at registration.
	FullName string `db:"full_name" json:"full_name"`
	// PasswordHash is the encoded argon2id digest of the user's password.
	PasswordHash string `db:"password_hash" json:"-"`
	// CreatedAt is the registration timestamp.
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Todo represents a task record owned by exactly one user.
type Todo struct {
	// ID is the unique identifier for the todo.
	ID uuid.UUID `db:"id" json:"id"`
	// UserID is the owning user. Set by the server, immutable after creation.
	UserID uuid.UUID `db:"user_id" json:"user_id"`
	// Title is the short task title.
	Title string `db:"title" json:"title"`
	// Description holds the longer task body.
	Description string `db:"description" json:"description"`
	// Completed marks the task as done.
	Completed bool `db:"completed" json:"completed"`
	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	// UpdatedAt is bumped on every mutation.
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TodoPatch describes a partial update. Nil fields are left unchanged.
type TodoPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}
