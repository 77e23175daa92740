// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
)

// Store backends accepted by GITCOLLECTION_STORE.
const (
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken  string
	GitHubAPIURL string
	ListenAddr   string
	Store        string
	DBPath       string
	LogLevel     slog.Level
}

// HasGitHubToken returns true when a personal access token is configured.
// Lookups work without one, subject to the unauthenticated rate limit.
func (c *Config) HasGitHubToken() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional: GITCOLLECTION_GITHUB_TOKEN (none),
// GITCOLLECTION_GITHUB_API_URL (api.github.com), GITCOLLECTION_LISTEN_ADDR
// (127.0.0.1:8080), GITCOLLECTION_STORE (sqlite), GITCOLLECTION_DB_PATH
// (gitcollection.db, or gitcollection.bolt for the bolt store) and
// GITCOLLECTION_LOG_LEVEL (info).
func Load() (*Config, error) {
	token := os.Getenv("GITCOLLECTION_GITHUB_TOKEN")

	apiURL := ""
	if v, ok := os.LookupEnv("GITCOLLECTION_GITHUB_API_URL"); ok && v != "" {
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("GITCOLLECTION_GITHUB_API_URL has invalid URL %q", v)
		}
		apiURL = v
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("GITCOLLECTION_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	store := StoreSQLite
	if v, ok := os.LookupEnv("GITCOLLECTION_STORE"); ok && v != "" {
		store = strings.ToLower(strings.TrimSpace(v))
	}
	if store != StoreSQLite && store != StoreBolt {
		return nil, fmt.Errorf("GITCOLLECTION_STORE must be %q or %q, got %q", StoreSQLite, StoreBolt, store)
	}

	dbPath := "gitcollection.db"
	if store == StoreBolt {
		dbPath = "gitcollection.bolt"
	}
	if v, ok := os.LookupEnv("GITCOLLECTION_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("GITCOLLECTION_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("GITCOLLECTION_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return &Config{
		GitHubToken:  token,
		GitHubAPIURL: apiURL,
		ListenAddr:   listenAddr,
		Store:        store,
		DBPath:       dbPath,
		LogLevel:     logLevel,
	}, nil
}
