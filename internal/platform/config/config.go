// Package config loads application configuration from environment variables.
// All variables use the QUIZ_ prefix. An optional YAML file named by
// QUIZ_CONFIG_FILE supplies defaults that environment variables override.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Quiz     QuizConfig     `yaml:"quiz"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Admin    AdminConfig    `yaml:"admin"`
	CORS     CORSConfig     `yaml:"cors"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// QuizConfig holds the quiz document settings.
type QuizConfig struct {
	DocumentPath string `yaml:"document_path"`
	Title        string `yaml:"title"`
}

// DatabaseConfig holds PostgreSQL connection settings.
// An empty URL keeps attempts in memory.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// CacheConfig holds Dragonfly/Redis connection settings.
// An empty URL disables caching.
type CacheConfig struct {
	URL        string `yaml:"url"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// AdminConfig holds credentials for the results export.
type AdminConfig struct {
	User     string `yaml:"user"`
	PassHash string `yaml:"pass_hash"` // bcrypt
}

// CORSConfig holds allowed origins for the JSON API.
type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Quiz: QuizConfig{
			DocumentPath: "Quiz Ratio Analysis.pdf",
			Title:        "BEFA Quiz Generator",
		},
		Database: DatabaseConfig{
			MaxConns: 10,
			MinConns: 1,
		},
		Cache: CacheConfig{
			TTLSeconds: 300,
		},
		Admin: AdminConfig{
			User: "admin",
		},
		CORS: CORSConfig{
			Origins: []string{"http://localhost:3000"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from the optional config file and from
// environment variables with QUIZ_ prefix.
func Load() (*Config, error) {
	base := Defaults()
	if path := os.Getenv("QUIZ_CONFIG_FILE"); path != "" {
		if err := loadFile(path, &base); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("QUIZ_SERVER_PORT", base.Server.Port),
			Host: envStr("QUIZ_SERVER_HOST", base.Server.Host),
		},
		Quiz: QuizConfig{
			DocumentPath: envStr("QUIZ_DOCUMENT_PATH", base.Quiz.DocumentPath),
			Title:        envStr("QUIZ_TITLE", base.Quiz.Title),
		},
		Database: DatabaseConfig{
			URL:      envStr("QUIZ_DATABASE_URL", base.Database.URL),
			MaxConns: envInt("QUIZ_DATABASE_MAX_CONNS", base.Database.MaxConns),
			MinConns: envInt("QUIZ_DATABASE_MIN_CONNS", base.Database.MinConns),
		},
		Cache: CacheConfig{
			URL:        envStr("QUIZ_CACHE_URL", base.Cache.URL),
			TTLSeconds: envInt("QUIZ_CACHE_TTL", base.Cache.TTLSeconds),
		},
		Admin: AdminConfig{
			User:     envStr("QUIZ_ADMIN_USER", base.Admin.User),
			PassHash: envStr("QUIZ_ADMIN_PASS_HASH", base.Admin.PassHash),
		},
		CORS: CORSConfig{
			Origins: envList("QUIZ_CORS_ORIGINS", base.CORS.Origins),
		},
		Log: LogConfig{
			Level:  envStr("QUIZ_LOG_LEVEL", base.Log.Level),
			Format: envStr("QUIZ_LOG_FORMAT", base.Log.Format),
		},
	}

	return cfg, nil
}

func loadFile(path string, into *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Quiz.DocumentPath) == "" {
		return fmt.Errorf("QUIZ_DOCUMENT_PATH is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("QUIZ_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("QUIZ_LOG_LEVEL must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("QUIZ_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	if c.Database.URL != "" && c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("QUIZ_DATABASE_MIN_CONNS (%d) exceeds QUIZ_DATABASE_MAX_CONNS (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}

	if c.Admin.PassHash != "" {
		if _, err := bcrypt.Cost([]byte(c.Admin.PassHash)); err != nil {
			return fmt.Errorf("QUIZ_ADMIN_PASS_HASH is not a bcrypt hash: %w", err)
		}
	}

	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// HasDatabase returns true if a PostgreSQL URL is configured.
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasCache returns true if a cache URL is configured.
func (c *Config) HasCache() bool {
	return c.Cache.URL != ""
}

// ExportEnabled returns true if admin credentials for the results export are set.
func (c *Config) ExportEnabled() bool {
	return c.Admin.User != "" && c.Admin.PassHash != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	out := []string{}
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
