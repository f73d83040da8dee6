package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tomlord1122/todo-app/internal/domain"
)

// todoRecord is the row layout of the todos table.
type todoRecord struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Title       string `gorm:"not null"`
	Description *string
	Deadline    *time.Time
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (todoRecord) TableName() string { return "todos" }

func (rec todoRecord) toDomain() domain.Todo {
	todo := domain.Todo{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
	}
	if rec.Deadline != nil {
		d := rec.Deadline.UTC()
		todo.Deadline = &d
	}
	return todo
}

// AutoMigrate creates or updates the todos table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&todoRecord{})
}

// gormTodoRepository implements TodoRepository using GORM
type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

// Create adds a new todo to the database
func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	rec := todoRecord{
		ID:          uuid.NewString(),
		Title:       todo.Title,
		Description: todo.Description,
		Deadline:    todo.Deadline,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	todo.ID = rec.ID
	return nil
}

// FindByID retrieves a todo by its ID
func (r *gormTodoRepository) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	// Postgres rejects malformed uuids with a cast error, not an empty result.
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}

	var rec todoRecord
	result := r.db.WithContext(ctx).First(&rec, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	todo := rec.toDomain()
	return &todo, nil
}

// GetAll retrieves all todos in creation order
func (r *gormTodoRepository) GetAll(ctx context.Context) ([]domain.Todo, error) {
	var recs []todoRecord
	result := r.db.WithContext(ctx).Order("created_at").Find(&recs)
	if result.Error != nil {
		return nil, result.Error
	}

	todos := make([]domain.Todo, 0, len(recs))
	for _, rec := range recs {
		todos = append(todos, rec.toDomain())
	}
	return todos, nil
}

// Update writes title, description and deadline of an existing todo.
// Select forces nil pointers to be written as NULL.
func (r *gormTodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	if uuid.Validate(todo.ID) != nil {
		return ErrNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&todoRecord{ID: todo.ID}).
		Select("title", "description", "deadline").
		Updates(todoRecord{
			Title:       todo.Title,
			Description: todo.Description,
			Deadline:    todo.Deadline,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete permanently removes a todo, so a repeated delete reports ErrNotFound.
func (r *gormTodoRepository) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}

	result := r.db.WithContext(ctx).Unscoped().Delete(&todoRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
