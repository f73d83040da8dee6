package repository

import (
	"context"
	"errors"

	"github.com/Tomlord1122/todo-app/internal/domain"
)

// ErrNotFound is returned by every TodoRepository implementation when the
// requested id does not match a stored todo.
var ErrNotFound = errors.New("todo not found")

// TodoRepository defines the interface for todo data operations
type TodoRepository interface {
	// Create stores todo and sets its ID.
	Create(ctx context.Context, todo *domain.Todo) error
	FindByID(ctx context.Context, id string) (*domain.Todo, error)
	// GetAll returns every stored todo in the store's natural order.
	GetAll(ctx context.Context) ([]domain.Todo, error)
	// Update replaces the stored fields of todo.ID with the given values.
	Update(ctx context.Context, todo *domain.Todo) error
	Delete(ctx context.Context, id string) error
}
