package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DefaultPort          = 8080
	DefaultStoreURL      = "memory://"
	DefaultDatabase      = "todo_db"
	DefaultCollection    = "todos"
	DefaultAllowedOrigin = "http://localhost:4200"
	DefaultDevBaseURL    = "http://localhost:8080"
)

// Store drivers, selected from the scheme of STORE_URL.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongodb"
	DriverPostgres = "postgres"
)

var ErrMissingBaseURL = errors.New("TODO_API_BASE_URL must be set in production")

// StoreConfig is the document store connection setting.
type StoreConfig struct {
	URL        string
	Database   string
	Collection string
}

// Driver reports which store implementation URL points at.
func (s StoreConfig) Driver() (string, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", fmt.Errorf("invalid STORE_URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "memory":
		return DriverMemory, nil
	case "mongodb", "mongodb+srv":
		return DriverMongo, nil
	case "postgres", "postgresql":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported STORE_URL scheme %q", u.Scheme)
	}
}

// DatabaseName returns the configured database, falling back to the path
// component of the connection string and then to DefaultDatabase.
func (s StoreConfig) DatabaseName() string {
	if s.Database != "" {
		return s.Database
	}
	if u, err := url.Parse(s.URL); err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return DefaultDatabase
}

// Server holds everything cmd/api needs.
type Server struct {
	Env            string
	Port           int
	Store          StoreConfig
	AllowedOrigins []string
}

// Client holds everything the terminal front end needs.
type Client struct {
	Env     string
	BaseURL string
}

// LoadFile reads a .env file into the process environment. Variables that
// are already set win over the file.
func LoadFile(path string) error {
	if path == "" {
		return nil
	}
	return godotenv.Load(path)
}

func LoadServer() Server {
	cfg := Server{
		Env:  env("APP_ENV", EnvDevelopment),
		Port: DefaultPort,
		Store: StoreConfig{
			URL:        env("STORE_URL", DefaultStoreURL),
			Database:   os.Getenv("STORE_DATABASE"),
			Collection: env("STORE_COLLECTION", DefaultCollection),
		},
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 {
			log.Printf("Warning: Invalid PORT environment variable '%s'. Using default %d.", portStr, DefaultPort)
		} else {
			cfg.Port = port
		}
	}

	for _, origin := range strings.Split(env("CORS_ALLOWED_ORIGIN", DefaultAllowedOrigin), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}
	return cfg
}

func LoadClient() (Client, error) {
	cfg := Client{
		Env:     env("APP_ENV", EnvDevelopment),
		BaseURL: os.Getenv("TODO_API_BASE_URL"),
	}
	if cfg.BaseURL == "" {
		if cfg.Env == EnvProduction {
			return Client{}, ErrMissingBaseURL
		}
		cfg.BaseURL = DefaultDevBaseURL
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return Client{}, fmt.Errorf("invalid TODO_API_BASE_URL %q: %w", cfg.BaseURL, err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
