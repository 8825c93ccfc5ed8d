package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/David-Botos/contact-chronicle/pkg/chronicle"
	"github.com/David-Botos/contact-chronicle/pkg/connector"
	"github.com/David-Botos/contact-chronicle/pkg/locator"
	"github.com/David-Botos/contact-chronicle/pkg/normalizer"
	"github.com/David-Botos/contact-chronicle/pkg/store"
)

// openSession builds the session from configuration. A store that cannot
// be opened is logged and skipped so reads fall back to the CSV export.
// The returned cleanup closes the store connection.
func openSession(ctx context.Context) (*chronicle.Session, func(), error) {
	norm, err := normalizer.NewNormalizer(logger.Named("normalizer"))
	if err != nil {
		return nil, nil, err
	}
	assigner := locator.NewAssigner(logger, locator.WithJitter(cfg.JitterDegrees))

	cleanup := func() {}
	var (
		primary  store.Source
		writable store.Store
	)

	factory, err := connector.NewConnectorFactory(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	conn, err := factory.Create(ctx)
	switch {
	case errors.Is(err, connector.ErrNoStore):
		logger.Debug("No store configured; using CSV export only")
	case err != nil:
		logger.Warn("Record store unavailable", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	default:
		cleanup = func() {
			if err := conn.Close(); err != nil {
				logger.Warn("Failed to close store connection", zap.Error(err))
			}
		}
		sqlStore, err := store.NewSQLStore(conn, logger, store.Options{
			ListLimit: cfg.StoreListLimit,
			BatchSize: cfg.BatchSize,
			Timeout:   cfg.StoreTimeout,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		primary = sqlStore
		if !conn.ReadOnly() {
			writable = sqlStore
		}
	}

	var secondary store.Source
	if cfg.ConnectionsCSV != "" {
		csvSource, err := store.NewCSVSource(cfg.ConnectionsCSV, norm, assigner, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		secondary = csvSource
	}

	session, err := chronicle.NewSession(store.FirstOf(primary, secondary, logger), writable, norm, assigner, logger,
		chronicle.Options{
			PageSize:      cfg.PageSize,
			TopN:          cfg.TopN,
			ListLimit:     cfg.StoreListLimit,
			VerifyTimeout: cfg.StoreTimeout,
		})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return session, cleanup, nil
}

// loadSession opens a session and loads the working set
func loadSession(ctx context.Context) (*chronicle.Session, func(), error) {
	session, cleanup, err := openSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	if result := session.Load(ctx); result.Err != nil {
		cleanup()
		return nil, nil, result.Err
	}
	return session, cleanup, nil
}
