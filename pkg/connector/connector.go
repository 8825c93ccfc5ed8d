// pkg/connector/connector.go
package connector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrNoStore is returned by the factory when no store driver is configured
var ErrNoStore = errors.New("no store driver configured")

// Connector is an open, validated connection to a record store database
type Connector interface {
	// DB returns the underlying database handle
	DB() *sqlx.DB

	// Driver returns the configured store driver name
	Driver() string

	// Table returns the connections table name, unquoted
	Table() string

	// ReadOnly reports whether records may only be listed
	ReadOnly() bool

	// Validate verifies the connection and access to the connections table
	Validate(ctx context.Context) error

	// Close closes the connection and releases resources
	Close() error
}

// ConnStats contains standardized connection statistics
type ConnStats struct {
	OpenConnections int
	InUse           int
	Idle            int
	MaxOpenConns    int
	WaitCount       int64
	WaitDuration    time.Duration
}

// GetConnectionStats returns connection pool statistics for logging
func GetConnectionStats(db *sqlx.DB) ConnStats {
	stats := db.Stats()
	return ConnStats{
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		MaxOpenConns:    stats.MaxOpenConnections,
		WaitCount:       stats.WaitCount,
		WaitDuration:    stats.WaitDuration,
	}
}

// LogConnectionStats logs connection pool statistics
func LogConnectionStats(logger *zap.Logger, name string, db *sqlx.DB) {
	stats := GetConnectionStats(db)
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int("max_open", stats.MaxOpenConns),
		zap.Int64("wait_count", stats.WaitCount),
		zap.Duration("wait_duration", stats.WaitDuration),
	)
}

// PingWithTimeout pings the database, giving up after timeout
func PingWithTimeout(ctx context.Context, db *sqlx.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if errors.Is(pingCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("ping timed out after %v: %w", timeout, err)
		}
		return err
	}
	return nil
}

// PoolSettings are the database/sql pool limits; zero values keep the driver default
type PoolSettings struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// ApplyConnectionSettings configures database connection pool settings
func ApplyConnectionSettings(db *sqlx.DB, s PoolSettings) {
	if s.MaxOpen > 0 {
		db.SetMaxOpenConns(s.MaxOpen)
	}
	if s.MaxIdle > 0 {
		db.SetMaxIdleConns(s.MaxIdle)
	}
	if s.MaxLifetime > 0 {
		db.SetConnMaxLifetime(s.MaxLifetime)
	}
	if s.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(s.MaxIdleTime)
	}
}

func namedLogger(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		logger = zap.L()
	}
	return logger.Named(name)
}
