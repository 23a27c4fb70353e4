package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Raseed"`
		Port int    `envconfig:"PORT" default:"8000"`
	}

	API struct {
		BaseURL string        `envconfig:"API_BASE_URL" default:"http://localhost:8000"`
		Timeout time.Duration `envconfig:"API_TIMEOUT" default:"30s"`
	}

	Session struct {
		// DBPath overrides where the client keeps its session store.
		// Empty means ~/.raseed/session.db.
		DBPath string `envconfig:"SESSION_DB_PATH" default:""`
	}

	Server struct {
		DBPath      string        `envconfig:"DB_PATH" default:"raseed.db"`
		FrontendURL string        `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	JWT struct {
		Secret string        `envconfig:"JWT_SECRET" default:"change-me"`
		TTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
	}

	Notify struct {
		TTL time.Duration `envconfig:"NOTIFY_TTL" default:"4s"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// SessionDBPath resolves the client session store location, creating
// the parent directory when needed.
func (c *Config) SessionDBPath() (string, error) {
	path := c.Session.DBPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}

		path = filepath.Join(home, ".raseed", "session.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}

	return path, nil
}
