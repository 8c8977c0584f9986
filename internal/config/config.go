// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	AccountsPath      string
	CachePath         string
	BaseURL           string
	ClientID          string
	ClientSecret      string
	RefreshInterval   time.Duration
	CountdownInterval time.Duration
	SearchDebounce    time.Duration
	MaxConcurrent     int
}

// Default values
const (
	defaultBaseURL           = "https://cloudcode-pa.googleapis.com"
	defaultRefreshInterval   = 60 * time.Second
	defaultCountdownInterval = time.Second
	defaultSearchDebounce    = 300 * time.Millisecond
	defaultMaxConcurrent     = 5
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		AccountsPath:      getEnvString("QUOTADECK_ACCOUNTS_PATH", getDefaultAccountsPath()),
		CachePath:         getEnvString("QUOTADECK_CACHE_PATH", getDefaultCachePath()),
		BaseURL:           getEnvString("QUOTADECK_BASE_URL", defaultBaseURL),
		ClientID:          getEnvString("QUOTADECK_CLIENT_ID", ""),
		ClientSecret:      getEnvString("QUOTADECK_CLIENT_SECRET", ""),
		RefreshInterval:   getEnvDuration("QUOTADECK_REFRESH_INTERVAL", defaultRefreshInterval),
		CountdownInterval: getEnvDuration("QUOTADECK_COUNTDOWN_INTERVAL", defaultCountdownInterval),
		SearchDebounce:    getEnvDuration("QUOTADECK_SEARCH_DEBOUNCE", defaultSearchDebounce),
		MaxConcurrent:     getEnvInt("QUOTADECK_MAX_CONCURRENT", defaultMaxConcurrent),
	}

	if cfg.RefreshInterval < time.Second {
		return nil, fmt.Errorf("refresh interval %s is below the 1s minimum", cfg.RefreshInterval)
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}

	if err := ensureDir(filepath.Dir(cfg.CachePath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "quotadeck", ".env"),
			filepath.Join(home, ".quotadeck", ".env"),
		)
	}

	return paths
}

func getDefaultAccountsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "accounts.json"
	}
	return filepath.Join(home, ".config", "quotadeck", "accounts.json")
}

func getDefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "snapshot.db"
	}
	return filepath.Join(home, ".config", "quotadeck", "snapshot.db")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms", or bare seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
