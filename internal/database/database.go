package database

import (
	"context"
	"fmt"

	"github.com/Tomlord1122/todo-app/internal/config"
	"github.com/Tomlord1122/todo-app/internal/repository"
)

// Service is the process-wide store handle. It is opened once at startup,
// shared by every request, and closed on shutdown.
type Service interface {
	// Health reports connectivity and pool statistics. "status" is "up" or "down".
	Health(ctx context.Context) map[string]string
	Close(ctx context.Context) error
	Driver() string
	// Todos returns the repository bound to this store.
	Todos() repository.TodoRepository
}

// New opens the store named by cfg.URL.
func New(ctx context.Context, cfg config.StoreConfig) (Service, error) {
	driver, err := cfg.Driver()
	if err != nil {
		return nil, err
	}

	switch driver {
	case config.DriverMongo:
		return newMongo(ctx, cfg)
	case config.DriverPostgres:
		return newPostgres(ctx, cfg)
	case config.DriverMemory:
		return newMemory(), nil
	default:
		return nil, fmt.Errorf("no store for driver %q", driver)
	}
}

type memoryService struct {
	todos repository.TodoRepository
}

func newMemory() *memoryService {
	return &memoryService{todos: repository.NewMemoryTodoRepository()}
}

func (s *memoryService) Health(ctx context.Context) map[string]string {
	return map[string]string{
		"status":  "up",
		"driver":  config.DriverMemory,
		"message": "It's healthy",
	}
}

func (s *memoryService) Close(ctx context.Context) error { return nil }

func (s *memoryService) Driver() string { return config.DriverMemory }

func (s *memoryService) Todos() repository.TodoRepository { return s.todos }
