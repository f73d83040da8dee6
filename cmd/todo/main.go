package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"

	"github.com/Tomlord1122/todo-app/internal/client"
	"github.com/Tomlord1122/todo-app/internal/config"
	"github.com/Tomlord1122/todo-app/internal/tui"
)

func main() {
	envFile := flag.String("env-file", "", "additional .env file to load")
	baseURL := flag.String("base-url", "", "Todo API base URL (overrides TODO_API_BASE_URL)")
	flag.Parse()

	if err := config.LoadFile(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", *envFile, err)
		os.Exit(1)
	}
	if *baseURL != "" {
		os.Setenv("TODO_API_BASE_URL", *baseURL)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.BaseURL)
	if err := tui.Run(ctx, api); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
