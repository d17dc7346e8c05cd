package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
	_ "time/tzdata" // zone names resolve in images without a tz database

	"trade-dashboard/src/models"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML file. A .env file in the working
// directory is loaded first, and DASHBOARD_* environment variables override
// values from the file.
func NewConfig(configPath string) (*Config, error) {
	// 1. Optional .env
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 2. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a Config from YAML bytes, applies defaults and environment
// overrides, then validates it.
func Parse(data []byte) (*Config, error) {
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	if err := env.Parse(&modelConfig); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.Calendar == "" {
		c.Calendar = "xnys"
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "none"
	}
	if c.Storage.RetentionDays == 0 {
		c.Storage.RetentionDays = 30
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "dashboard_session"
	}
	if c.Session.HistorySize == 0 {
		c.Session.HistorySize = 20
	}
	if c.Session.NoticeSeconds == 0 {
		c.Session.NoticeSeconds = 6
	}
	if c.Grid.DefaultPageSize == 0 {
		c.Grid.DefaultPageSize = 10
	}
	if len(c.Grid.PageSizes) == 0 {
		c.Grid.PageSizes = []int{10, 25, 50, 100}
	}
	if c.Backend.ProbeIntervalSec == 0 {
		c.Backend.ProbeIntervalSec = 30
	}
	if c.RateLimit.EveryMillis == 0 {
		c.RateLimit.EveryMillis = 100
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 30
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("unknown timezone '%s': %w", c.Timezone, err)
	}

	// Backend
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base url cannot be empty")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend base url: %q", c.Backend.BaseURL)
	}

	// Storage
	switch c.Storage.DBType {
	case "none":
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}

	// Network
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}

	// Session
	if c.Session.TTLMinutes <= 0 {
		return fmt.Errorf("session ttl must be greater than 0")
	}

	// Grid
	hasDefault := false
	for _, size := range c.Grid.PageSizes {
		if size <= 0 {
			return fmt.Errorf("page sizes must be positive, got %d", size)
		}
		if size == c.Grid.DefaultPageSize {
			hasDefault = true
		}
	}
	if !hasDefault {
		return fmt.Errorf("default page size %d is not one of the page sizes %v", c.Grid.DefaultPageSize, c.Grid.PageSizes)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Location returns the zone used to interpret date inputs from the forms.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
