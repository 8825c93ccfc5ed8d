// pkg/connector/factory.go
package connector

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/contact-chronicle/pkg/config"
)

// ConnectorFactory creates the connector selected by config.StoreDriver
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) (*ConnectorFactory, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &ConnectorFactory{cfg: cfg, logger: logger}, nil
}

// Create opens and validates the configured connector. The caller closes it.
// ErrNoStore is returned when the driver is config.DriverNone.
func (f *ConnectorFactory) Create(ctx context.Context) (Connector, error) {
	var (
		conn Connector
		err  error
	)

	switch f.cfg.StoreDriver {
	case config.DriverNone, "":
		return nil, ErrNoStore
	case config.DriverPostgres:
		f.logger.Info("Creating PostgreSQL connector")
		conn, err = NewPostgresConnector(ctx, f.cfg.Postgres, f.logger)
	case config.DriverSQLite:
		f.logger.Info("Creating SQLite connector")
		conn, err = NewSQLiteConnector(ctx, f.cfg.SQLite, f.logger)
	case config.DriverSnowflake:
		f.logger.Info("Creating Snowflake connector")
		conn, err = NewSnowflakeConnector(ctx, f.cfg.Snowflake, f.logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", f.cfg.StoreDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s connector: %w", f.cfg.StoreDriver, err)
	}

	if err := conn.Validate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to validate %s connector: %w", f.cfg.StoreDriver, err)
	}
	return conn, nil
}
