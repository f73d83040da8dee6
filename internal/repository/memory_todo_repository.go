package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Tomlord1122/todo-app/internal/domain"
)

// memoryTodoRepository keeps todos in process memory. It backs the
// memory:// store and unit tests.
type memoryTodoRepository struct {
	mu    sync.RWMutex
	todos map[string]domain.Todo
	order []string
}

// NewMemoryTodoRepository creates an empty in-memory todo repository
func NewMemoryTodoRepository() TodoRepository {
	return &memoryTodoRepository{todos: make(map[string]domain.Todo)}
}

func (r *memoryTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo.ID = uuid.NewString()
	r.todos[todo.ID] = cloneTodo(*todo)
	r.order = append(r.order, todo.ID)
	return nil
}

func (r *memoryTodoRepository) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todo, ok := r.todos[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := cloneTodo(todo)
	return &found, nil
}

func (r *memoryTodoRepository) GetAll(ctx context.Context) ([]domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todos := make([]domain.Todo, 0, len(r.order))
	for _, id := range r.order {
		todos = append(todos, cloneTodo(r.todos[id]))
	}
	return todos, nil
}

func (r *memoryTodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.todos[todo.ID]; !ok {
		return ErrNotFound
	}
	r.todos[todo.ID] = cloneTodo(*todo)
	return nil
}

func (r *memoryTodoRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.todos[id]; !ok {
		return ErrNotFound
	}
	delete(r.todos, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// cloneTodo copies the optional fields so callers never share pointers with
// the stored value.
func cloneTodo(t domain.Todo) domain.Todo {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	if t.Deadline != nil {
		d := *t.Deadline
		t.Deadline = &d
	}
	return t
}
