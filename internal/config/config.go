package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultSprintCount is the number of sprints generated when unset
const DefaultSprintCount = 52

// Config holds planner settings
type Config struct {
	DBPath      string `yaml:"db_path" json:"db_path"`           // SQLite database used by the CLI
	DatabaseURL string `yaml:"database_url" json:"database_url"` // PostgreSQL URL used by the server
	ListenAddr  string `yaml:"listen_addr" json:"listen_addr"`

	SprintCount       int  `yaml:"sprint_count" json:"sprint_count"`
	LegacySprintOrder bool `yaml:"legacy_sprint_order" json:"legacy_sprint_order"` // Compare sprint ids as strings when deriving project ranges

	CallerID              string `yaml:"caller_id" json:"caller_id"`                               // Employee the CLI acts as
	ConfirmOverallocation bool   `yaml:"confirm_overallocation" json:"confirm_overallocation"` // Prompt before exceeding capacity

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// Dir returns the settings directory (~/.sprintplan)
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".sprintplan"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir, _ := Dir()
	dbPath, logPath := "", ""
	if dir != "" {
		dbPath = filepath.Join(dir, "planner.db")
		logPath = filepath.Join(dir, "logs", "sprintplan.log")
	}

	return &Config{
		DBPath:                getEnv("SPRINTPLAN_DB_PATH", dbPath),
		DatabaseURL:           getEnv("SPRINTPLAN_DATABASE_URL", getEnv("DATABASE_URL", "")),
		ListenAddr:            getEnv("SPRINTPLAN_LISTEN_ADDR", ":8080"),
		SprintCount:           getEnvInt("SPRINTPLAN_SPRINT_COUNT", DefaultSprintCount),
		LegacySprintOrder:     getEnv("SPRINTPLAN_LEGACY_SPRINT_ORDER", "false") == "true",
		CallerID:              getEnv("SPRINTPLAN_CALLER_ID", ""),
		ConfirmOverallocation: getEnv("SPRINTPLAN_CONFIRM_OVERALLOCATION", "true") == "true",
		LogLevel:              getEnv("SPRINTPLAN_LOG_LEVEL", "INFO"),
		LogFile:               getEnv("SPRINTPLAN_LOG_FILE", logPath),
		LogConsole:            getEnv("SPRINTPLAN_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

// Validate checks settings that would break planning
func (c *Config) Validate() error {
	if c.SprintCount < 1 {
		return fmt.Errorf("sprint_count must be at least 1, got %d", c.SprintCount)
	}
	return nil
}

// Load loads config from ~/.sprintplan/config.yaml
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(dir, "config.yaml"))
}

// LoadFrom loads config from path, returning defaults when the file is missing
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves config to ~/.sprintplan/config.yaml
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return c.SaveTo(filepath.Join(dir, "config.yaml"))
}

// SaveTo writes config to path, creating its directory
func (c *Config) SaveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
