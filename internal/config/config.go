// Package config loads runtime settings from the environment and builds
// the application logger.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/piwi3910/cutdesk/internal/reorder"
	"github.com/piwi3910/cutdesk/internal/store"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	DataDir     string
	Storage     string
	Port        string
	GoEnv       string
	LogLevel    string
	ManagerCode string

	envFile string
}

// Load loads the configuration from environment variables.
// It loads .env.<GO_ENV> when present, falling back to .env. Variables
// already set in the environment win over file values.
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	loaded := ""
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err == nil {
		loaded = envFile
	} else if err := godotenv.Load(); err == nil {
		loaded = ".env"
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.envFile = loaded
	return cfg, nil
}

// FromEnv reads the configuration from the current environment only.
func FromEnv() *Config {
	return &Config{
		DataDir:     getEnv("CUTDESK_DATA_DIR", store.DefaultDataDir()),
		Storage:     strings.ToLower(getEnv("CUTDESK_STORAGE", store.BackendJSON)),
		Port:        getEnv("PORT", "8080"),
		GoEnv:       getEnv("GO_ENV", "development"),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		ManagerCode: getEnv("CUTDESK_MANAGER_CODE", reorder.DefaultManagerCode),
	}
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	switch c.Storage {
	case store.BackendJSON, store.BackendSQLite, store.BackendMemory:
	default:
		return fmt.Errorf("CUTDESK_STORAGE must be json, sqlite or memory, got %q", c.Storage)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if c.DataDir == "" {
		return fmt.Errorf("CUTDESK_DATA_DIR is required")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// EnvFile returns the .env file Load read, or "" if none was found.
func (c *Config) EnvFile() string {
	return c.envFile
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// NewLogger builds a JSON production logger, or a console development
// logger when env is "development", at the given level.
func NewLogger(level, env string) (*zap.Logger, error) {
	var zapCfg zap.Config
	if env == "development" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	switch level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}
