package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Tomlord1122/todo-app/internal/domain"
	"github.com/Tomlord1122/todo-app/internal/repository"
)

var (
	// ErrNotFound means the referenced todo does not exist.
	ErrNotFound = errors.New("todo not found")
	// ErrInternal hides store failures from callers. The cause is logged.
	ErrInternal = errors.New("internal error")
)

// CreateTodoRequest holds the data needed to create a new todo
type CreateTodoRequest struct {
	Title       string     `json:"title" validate:"notblank"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
}

// UpdateTodoRequest holds the data for updating an existing todo.
// Omitted fields are left as stored; an explicit null clears
// description or deadline.
type UpdateTodoRequest struct {
	Title       domain.Optional[string]    `json:"title"`
	Description domain.Optional[string]    `json:"description"`
	Deadline    domain.Optional[time.Time] `json:"deadline"`
}

// TodoService defines the operations for managing todos.
type TodoService interface {
	// ListTodos returns every stored todo, or an empty slice.
	ListTodos(ctx context.Context) ([]domain.Todo, error)

	// GetTodo retrieves a single todo item by its ID.
	GetTodo(ctx context.Context, id string) (*domain.Todo, error)

	// CreateTodo validates req and stores a new todo.
	CreateTodo(ctx context.Context, req CreateTodoRequest) (*domain.Todo, error)

	// UpdateTodo merges the supplied fields of req into the stored todo.
	UpdateTodo(ctx context.Context, id string, req UpdateTodoRequest) (*domain.Todo, error)

	// DeleteTodo removes a todo. Deleting a missing id is ErrNotFound.
	DeleteTodo(ctx context.Context, id string) error
}

type todoService struct {
	repo repository.TodoRepository
}

// NewTodoService creates a new instance of todoService.
func NewTodoService(repo repository.TodoRepository) TodoService {
	return &todoService{
		repo: repo,
	}
}

func (s *todoService) ListTodos(ctx context.Context) ([]domain.Todo, error) {
	todos, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Printf("Error fetching all todos from repository: %v", err)
		return nil, ErrInternal
	}
	if todos == nil {
		todos = []domain.Todo{}
	}
	return todos, nil
}

func (s *todoService) GetTodo(ctx context.Context, id string) (*domain.Todo, error) {
	todo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, "fetching todo "+id)
	}
	return todo, nil
}

func (s *todoService) CreateTodo(ctx context.Context, req CreateTodoRequest) (*domain.Todo, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	newTodo := &domain.Todo{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    normalizeDeadline(req.Deadline),
	}
	if err := s.repo.Create(ctx, newTodo); err != nil {
		log.Printf("Error creating todo in repository: %v", err)
		return nil, ErrInternal
	}
	return newTodo, nil
}

func (s *todoService) UpdateTodo(ctx context.Context, id string, req UpdateTodoRequest) (*domain.Todo, error) {
	if req.Title.Set && (req.Title.Value == nil || strings.TrimSpace(*req.Title.Value) == "") {
		return nil, &ValidationError{Field: "title", Message: "title cannot be empty"}
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, "fetching todo "+id+" for update")
	}

	if !req.Title.Set && !req.Description.Set && !req.Deadline.Set {
		return existing, nil
	}
	if req.Title.Set {
		existing.Title = *req.Title.Value
	}
	if req.Description.Set {
		existing.Description = req.Description.Value
	}
	if req.Deadline.Set {
		existing.Deadline = normalizeDeadline(req.Deadline.Value)
	}

	// A concurrent delete between FindByID and Update surfaces as not found.
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, s.translate(err, "updating todo "+id)
	}
	return existing, nil
}

func (s *todoService) DeleteTodo(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, "deleting todo "+id)
	}
	return nil
}

// translate maps repository errors onto the service error set.
func (s *todoService) translate(err error, action string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	log.Printf("Error %s: %v", action, err)
	return ErrInternal
}

// normalizeDeadline stores deadlines in UTC at millisecond precision, the
// finest resolution every store keeps.
func normalizeDeadline(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := t.UTC().Truncate(time.Millisecond)
	return &d
}
