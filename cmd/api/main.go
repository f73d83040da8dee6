package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/Tomlord1122/todo-app/internal/config"
	"github.com/Tomlord1122/todo-app/internal/database"
	"github.com/Tomlord1122/todo-app/internal/server"
	"github.com/Tomlord1122/todo-app/internal/service"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server has 5 seconds to finish the requests it is currently handling.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	// The store is closed only after in-flight writes have returned.
	log.Printf("Closing %s store...", dbService.Driver())
	if err := dbService.Close(ctxTimeout); err != nil {
		log.Printf("Error closing store: %v", err)
	} else {
		log.Println("Store closed.")
	}

	log.Println("Server exiting")

	done <- true
}

func main() {
	cfg := config.LoadServer()

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	dbService, err := database.New(startCtx, cfg.Store)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to store: %v", err)
	}
	log.Printf("Connected to %s store", dbService.Driver())

	todoService := service.NewTodoService(dbService.Todos())

	apiServer := server.NewServer(cfg, todoService, dbService)

	done := make(chan bool, 1)

	go gracefulShutdown(apiServer, dbService, done)

	log.Printf("Starting server on %s (allowed origins: %v)", apiServer.Addr, cfg.AllowedOrigins)
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server ListenAndServe error: %v", err)
	}

	<-done
	log.Println("Graceful shutdown complete.")
}
