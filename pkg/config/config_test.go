package config

import (
	"strings"
	"testing"
	"time"

	"github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverNone, cfg.StoreDriver)
	assert.Equal(t, 10000, cfg.StoreListLimit)
	assert.Equal(t, 30*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, 10, cfg.TopN)
	assert.Equal(t, 0.05, cfg.JitterDegrees)
	assert.Equal(t, "data/linkedin_connections.csv", cfg.ConnectionsCSV)
	assert.Nil(t, cfg.Postgres)
	assert.Nil(t, cfg.SQLite)
	assert.Nil(t, cfg.Snowflake)
}

func TestLoadConfigSQLite(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/chronicle-test.db")
	t.Setenv("PAGE_SIZE", "50")
	t.Setenv("JITTER_DEGREES", "0.1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	require.NotNil(t, cfg.SQLite)
	assert.Equal(t, "/tmp/chronicle-test.db", cfg.SQLite.Path)
	assert.Equal(t, "connections", cfg.SQLite.Table)
	assert.True(t, strings.HasPrefix(cfg.SQLite.ConnectionString(), "file:/tmp/chronicle-test.db?"))
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, 0.1, cfg.JitterDegrees)
}

func TestLoadConfigInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("STORE_DRIVER", "none")
	t.Setenv("TOP_N", "lots")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.TopN)
}

func TestLoadConfigPostgresRequiresCredentials(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_USER", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_USER")
}

func TestLoadConfigPostgresReportsEveryMissingKey(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_USER", "chronicle")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("POSTGRES_DB", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_PASSWORD, POSTGRES_DB")
	assert.NotContains(t, err.Error(), "POSTGRES_USER")
}

func TestLoadConfigPostgres(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_USER", "chronicle")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "contacts")
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("POSTGRES_SSLMODE", "disable")
	t.Setenv("TUNNEL_PORT", "9999")
	t.Setenv("STORE_TIMEOUT_SECONDS", "12")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg.Postgres)
	assert.Nil(t, cfg.SQLite)
	assert.Equal(t, DefaultTable, cfg.Postgres.Table)
	assert.Equal(t, 12*time.Second, cfg.Postgres.StatementTimeout)
	assert.Equal(t, 4, cfg.Postgres.MaxOpenConns)
	assert.Equal(t, 2, cfg.Postgres.MaxIdleConns)
	assert.Equal(t,
		"host=localhost port=6543 user=chronicle password=secret dbname=contacts sslmode=disable",
		cfg.Postgres.ConnectionString())
}

func TestLoadConfigSnowflake(t *testing.T) {
	t.Setenv("STORE_DRIVER", "snowflake")
	t.Setenv("SNOWFLAKE_USER", "reader")
	t.Setenv("SNOWFLAKE_PASSWORD", "secret")
	t.Setenv("SNOWFLAKE_ACCOUNT", "acme-xy123")
	t.Setenv("SNOWFLAKE_WAREHOUSE", "COMPUTE_WH")
	t.Setenv("SNOWFLAKE_AUTHENTICATOR", "JWT")
	t.Setenv("SNOWFLAKE_MAX_OPEN_CONNS", "1")
	t.Setenv("STORE_TABLE", "linkedin_connections")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg.Snowflake)
	assert.Equal(t, "CHRONICLE", cfg.Snowflake.Database)
	assert.Equal(t, "PUBLIC", cfg.Snowflake.Schema)
	assert.Equal(t, "LINKEDIN_CONNECTIONS", cfg.Snowflake.Table)
	assert.Equal(t, gosnowflake.AuthTypeJwt, cfg.Snowflake.Authenticator)
	assert.Equal(t, 1, cfg.Snowflake.MaxOpenConns)
	assert.Equal(t, 30*time.Second, cfg.Snowflake.StatementTimeout)
}

func TestLoadConfigSnowflakeRejectsUnknownAuthenticator(t *testing.T) {
	t.Setenv("STORE_DRIVER", "snowflake")
	t.Setenv("SNOWFLAKE_USER", "reader")
	t.Setenv("SNOWFLAKE_PASSWORD", "secret")
	t.Setenv("SNOWFLAKE_ACCOUNT", "acme-xy123")
	t.Setenv("SNOWFLAKE_WAREHOUSE", "COMPUTE_WH")
	t.Setenv("SNOWFLAKE_AUTHENTICATOR", "kerberos")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kerberos")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			StoreDriver:    DriverNone,
			StoreListLimit: 1,
			PageSize:       1,
			TopN:           1,
			BatchSize:      1,
		}
	}

	require.NoError(t, base().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.StoreDriver = "mysql" }},
		{"sqlite without settings", func(c *Config) { c.StoreDriver = DriverSQLite }},
		{"zero list limit", func(c *Config) { c.StoreListLimit = 0 }},
		{"zero page size", func(c *Config) { c.PageSize = 0 }},
		{"zero top n", func(c *Config) { c.TopN = 0 }},
		{"negative jitter", func(c *Config) { c.JitterDegrees = -1 }},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
