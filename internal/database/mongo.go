package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Tomlord1122/todo-app/internal/config"
	"github.com/Tomlord1122/todo-app/internal/repository"
)

type mongoService struct {
	client   *mongo.Client
	database string
	todos    repository.TodoRepository
}

func newMongo(ctx context.Context, cfg config.StoreConfig) (*mongoService, error) {
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetMaxPoolSize(100).
		SetMinPoolSize(10).
		SetMaxConnIdleTime(time.Hour)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	dbName := cfg.DatabaseName()
	coll := client.Database(dbName).Collection(cfg.Collection)

	return &mongoService{
		client:   client,
		database: dbName,
		todos:    repository.NewMongoTodoRepository(coll),
	}, nil
}

func (s *mongoService) Driver() string { return config.DriverMongo }

func (s *mongoService) Todos() repository.TodoRepository { return s.todos }

func (s *mongoService) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	stats := map[string]string{
		"driver":   config.DriverMongo,
		"database": s.database,
	}
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		stats["status"] = "down"
		stats["error"] = "db down"
		log.Printf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"
	return stats
}

func (s *mongoService) Close(ctx context.Context) error {
	log.Printf("Closing mongodb connection for database: %s", s.database)
	return s.client.Disconnect(ctx)
}
