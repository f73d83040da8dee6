package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tomlord1122/todo-app/internal/config"
	"github.com/Tomlord1122/todo-app/internal/repository"
)

const (
	pgMaxOpenConns    = 100
	pgMaxIdleConns    = 10
	pgConnMaxLifetime = time.Hour
)

type postgresService struct {
	db    *gorm.DB
	sqlDB *sql.DB
	todos repository.TodoRepository
}

func newPostgres(ctx context.Context, cfg config.StoreConfig) (*postgresService, error) {
	sqlDB, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB.SetMaxIdleConns(pgMaxIdleConns)
	sqlDB.SetMaxOpenConns(pgMaxOpenConns)
	sqlDB.SetConnMaxLifetime(pgConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: gormLogger})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	// No migration tooling: the single table is kept in shape on every start.
	if err := repository.AutoMigrate(db.WithContext(ctx)); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto-migrate todos: %w", err)
	}

	return &postgresService{
		db:    db,
		sqlDB: sqlDB,
		todos: repository.NewGormTodoRepository(db),
	}, nil
}

func (s *postgresService) Driver() string { return config.DriverPostgres }

func (s *postgresService) Todos() repository.TodoRepository { return s.todos }

func (s *postgresService) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	stats := map[string]string{"driver": config.DriverPostgres}

	if err := s.sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = "db down"
		log.Printf("db down: %v", err)
		return stats
	}

	dbStats := s.sqlDB.Stats()
	stats["status"] = "up"
	stats["message"] = poolMessage(dbStats)
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	return stats
}

// poolMessage summarises pool pressure relative to the configured limits.
// The most serious condition wins.
func poolMessage(st sql.DBStats) string {
	limited := st.MaxOpenConnections > 0
	switch {
	case limited && st.InUse >= st.MaxOpenConnections && st.WaitCount > 0:
		return fmt.Sprintf("Pool exhausted: all %d connections busy, %d callers waited", st.MaxOpenConnections, st.WaitCount)
	case limited && st.OpenConnections*5 >= st.MaxOpenConnections*4:
		return fmt.Sprintf("Pool above 80%% of its %d connections", st.MaxOpenConnections)
	case st.MaxIdleClosed > int64(pgMaxIdleConns):
		return "Idle connections are churning; raise the idle limit"
	case limited && st.MaxLifetimeClosed > int64(st.MaxOpenConnections)/2:
		return fmt.Sprintf("Connections are recycled often; lifetime is %s", pgConnMaxLifetime)
	default:
		return "It's healthy"
	}
}

func (s *postgresService) Close(ctx context.Context) error {
	log.Printf("Closing postgres connection pool")
	return s.sqlDB.Close()
}
