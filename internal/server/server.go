package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Tomlord1122/todo-app/internal/config"
	"github.com/Tomlord1122/todo-app/internal/database"
	"github.com/Tomlord1122/todo-app/internal/service"
)

type Server struct {
	port           int
	allowedOrigins []string
	todoService    service.TodoService
	db             database.Service
}

func NewServer(cfg config.Server, todoService service.TodoService, dbService database.Service) *http.Server {
	appServer := &Server{
		port:           cfg.Port,
		allowedOrigins: cfg.AllowedOrigins,
		todoService:    todoService,
		db:             dbService,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
