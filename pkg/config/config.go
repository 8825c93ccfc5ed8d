// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers
const (
	DriverNone      = "none"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverSnowflake = "snowflake"
)

// Config represents the application configuration
type Config struct {
	// Record store
	StoreDriver    string
	StoreListLimit int
	StoreTimeout   time.Duration
	Postgres       *PostgresConfig
	SQLite         *SQLiteConfig
	Snowflake      *SnowflakeConfig

	// Fallback CSV source
	ConnectionsCSV string

	// Dashboard settings
	PageSize      int
	TopN          int
	JitterDegrees float64
	BatchSize     int

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Default values
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", DriverNone)),
		StoreListLimit: getEnvAsInt("STORE_LIST_LIMIT", 10000),
		StoreTimeout:   time.Duration(getEnvAsInt("STORE_TIMEOUT_SECONDS", 30)) * time.Second,
		ConnectionsCSV: getEnv("CONNECTIONS_CSV", "data/linkedin_connections.csv"),
		PageSize:       getEnvAsInt("PAGE_SIZE", 20),
		TopN:           getEnvAsInt("TOP_N", 10),
		JitterDegrees:  getEnvAsFloat("JITTER_DEGREES", 0.05),
		BatchSize:      getEnvAsInt("BATCH_SIZE", 500),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}

	// Only the selected driver's settings are required
	if err := cfg.loadStore(); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverNone:
	case DriverPostgres:
		if c.Postgres == nil {
			return errors.New("postgreSQL configuration is required")
		}
	case DriverSQLite:
		if c.SQLite == nil {
			return errors.New("sqlite configuration is required")
		}
	case DriverSnowflake:
		if c.Snowflake == nil {
			return errors.New("snowflake configuration is required")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	if c.StoreListLimit <= 0 {
		return errors.New("store list limit must be positive")
	}

	if c.PageSize <= 0 {
		return errors.New("page size must be positive")
	}

	if c.TopN <= 0 {
		return errors.New("top n must be positive")
	}

	if c.JitterDegrees < 0 {
		return errors.New("jitter cannot be negative")
	}

	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
