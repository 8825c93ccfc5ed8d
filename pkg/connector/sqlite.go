// pkg/connector/sqlite.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/David-Botos/contact-chronicle/pkg/config"
)

// SQLiteConnector is a Connector for a local SQLite file
type SQLiteConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.SQLiteConfig
}

// NewSQLiteConnector opens the SQLite database at cfg.Path
func NewSQLiteConnector(ctx context.Context, cfg *config.SQLiteConfig, logger *zap.Logger) (*SQLiteConnector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sqlite configuration is required")
	}
	logger = namedLogger(logger, "sqlite-connector")
	logger.Info("Opening SQLite database", zap.String("path", cfg.Path))

	raw, err := sql.Open("sqlite", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// modernc registers as "sqlite"; sqlx knows the bind type as "sqlite3"
	db := sqlx.NewDb(raw, "sqlite3")

	// One writer; also keeps :memory: databases on a single connection
	ApplyConnectionSettings(db, PoolSettings{MaxOpen: 1, MaxIdle: 1})

	if err := PingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	return &SQLiteConnector{db: db, logger: logger, cfg: cfg}, nil
}

// DB returns the underlying database connection
func (c *SQLiteConnector) DB() *sqlx.DB {
	return c.db
}

// Driver returns config.DriverSQLite
func (c *SQLiteConnector) Driver() string {
	return config.DriverSQLite
}

// Table returns the connections table name
func (c *SQLiteConnector) Table() string {
	return c.cfg.Table
}

// ReadOnly is false
func (c *SQLiteConnector) ReadOnly() bool {
	return false
}

// Validate reports the SQLite library version
func (c *SQLiteConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query SQLite version: %w", err)
	}
	c.logger.Info("Connected to SQLite",
		zap.String("version", version),
		zap.String("path", c.cfg.Path))
	return nil
}

// Close closes the database
func (c *SQLiteConnector) Close() error {
	c.logger.Debug("Closing SQLite database")
	return c.db.Close()
}
