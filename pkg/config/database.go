// pkg/config/database.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"
)

// DefaultTable is the connections table every store driver uses unless
// STORE_TABLE overrides it
const DefaultTable = "connections"

// Pool sizes the connection pool. A CLI run issues a handful of queries
// and exits, so the defaults stay small.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// PostgresConfig holds PostgreSQL store settings
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Table    string
	Pool

	// StatementTimeout is applied to the session; it defaults to STORE_TIMEOUT
	StatementTimeout time.Duration
}

// SnowflakeConfig holds the read-only Snowflake source settings
type SnowflakeConfig struct {
	User          string
	Password      string
	Account       string
	Warehouse     string
	Database      string
	Schema        string
	Table         string
	Role          string
	Authenticator gosnowflake.AuthType
	Pool

	StatementTimeout time.Duration
}

// SQLiteConfig holds the local SQLite store settings
type SQLiteConfig struct {
	Path  string
	Table string
}

// storeLoaders fills the settings block of each StoreDriver
var storeLoaders = map[string]func(*Config) error{
	DriverNone:      func(*Config) error { return nil },
	DriverPostgres:  loadPostgres,
	DriverSQLite:    loadSQLite,
	DriverSnowflake: loadSnowflake,
}

// loadStore runs the loader registered for c.StoreDriver. Unknown drivers
// are left for Validate to report.
func (c *Config) loadStore() error {
	load, ok := storeLoaders[c.StoreDriver]
	if !ok {
		return nil
	}
	if err := load(c); err != nil {
		return fmt.Errorf("failed to load %s store configuration: %w", c.StoreDriver, err)
	}
	return nil
}

func loadPostgres(c *Config) error {
	env, err := requireEnv("POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB")
	if err != nil {
		return err
	}

	c.Postgres = &PostgresConfig{
		Host:             getEnv("POSTGRES_HOST", "localhost"),
		Port:             getEnvAsInt("POSTGRES_PORT", 5432),
		User:             env["POSTGRES_USER"],
		Password:         env["POSTGRES_PASSWORD"],
		Database:         env["POSTGRES_DB"],
		SSLMode:          getEnv("POSTGRES_SSLMODE", "prefer"),
		Table:            c.storeTable(),
		Pool:             loadPool("POSTGRES"),
		StatementTimeout: c.StoreTimeout,
	}
	return nil
}

func loadSQLite(c *Config) error {
	c.SQLite = &SQLiteConfig{
		Path:  getEnv("SQLITE_PATH", "chronicle.db"),
		Table: c.storeTable(),
	}
	return nil
}

// snowflakeAuthenticators maps SNOWFLAKE_AUTHENTICATOR values to driver types
var snowflakeAuthenticators = map[string]gosnowflake.AuthType{
	"snowflake":       gosnowflake.AuthTypeSnowflake,
	"oauth":           gosnowflake.AuthTypeOAuth,
	"externalbrowser": gosnowflake.AuthTypeExternalBrowser,
	"jwt":             gosnowflake.AuthTypeJwt,
	"okta":            gosnowflake.AuthTypeOkta,
}

func loadSnowflake(c *Config) error {
	env, err := requireEnv("SNOWFLAKE_USER", "SNOWFLAKE_PASSWORD", "SNOWFLAKE_ACCOUNT", "SNOWFLAKE_WAREHOUSE")
	if err != nil {
		return err
	}

	name := strings.ToLower(getEnv("SNOWFLAKE_AUTHENTICATOR", "snowflake"))
	auth, ok := snowflakeAuthenticators[name]
	if !ok {
		return fmt.Errorf("unsupported SNOWFLAKE_AUTHENTICATOR %q", name)
	}

	// Unquoted Snowflake identifiers resolve upper-case
	c.Snowflake = &SnowflakeConfig{
		User:             env["SNOWFLAKE_USER"],
		Password:         env["SNOWFLAKE_PASSWORD"],
		Account:          env["SNOWFLAKE_ACCOUNT"],
		Warehouse:        env["SNOWFLAKE_WAREHOUSE"],
		Database:         getEnv("SNOWFLAKE_DATABASE", "CHRONICLE"),
		Schema:           getEnv("SNOWFLAKE_SCHEMA", "PUBLIC"),
		Table:            strings.ToUpper(c.storeTable()),
		Role:             getEnv("SNOWFLAKE_ROLE", ""),
		Authenticator:    auth,
		Pool:             loadPool("SNOWFLAKE"),
		StatementTimeout: c.StoreTimeout,
	}
	return nil
}

func (c *Config) storeTable() string {
	return getEnv("STORE_TABLE", DefaultTable)
}

// loadPool reads <prefix>_MAX_OPEN_CONNS and friends
func loadPool(prefix string) Pool {
	return Pool{
		MaxOpenConns:    getEnvAsInt(prefix+"_MAX_OPEN_CONNS", 4),
		MaxIdleConns:    getEnvAsInt(prefix+"_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime: time.Duration(getEnvAsInt(prefix+"_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
		ConnMaxIdleTime: time.Duration(getEnvAsInt(prefix+"_CONN_MAX_IDLE_TIME_SECONDS", 60)) * time.Second,
	}
}

// requireEnv returns the values of keys, or one error naming every unset key
func requireEnv(keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	var missing []string
	for _, key := range keys {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
			continue
		}
		values[key] = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return values, nil
}

// ConnectionString returns the pgx key/value DSN
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// ConnectionString returns the modernc.org/sqlite DSN
func (c *SQLiteConfig) ConnectionString() string {
	return "file:" + c.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
