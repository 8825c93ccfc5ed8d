// pkg/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/David-Botos/contact-chronicle/pkg/model"
)

var (
	// ErrSourceUnavailable marks a source that could not be read
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrNoData is returned when neither source produced records
	ErrNoData = errors.New("could not load connections")
	// ErrReadOnly is returned when saving to a read-only store
	ErrReadOnly = errors.New("store is read-only")
	// ErrEmpty marks a source that was read successfully but had no records
	ErrEmpty = errors.New("source returned no records")
)

// Source is anything that can list connection records
type Source interface {
	// Name identifies the source in results and logs
	Name() string

	// List returns at most limit records, newest first. limit <= 0 uses the
	// source's own maximum.
	List(ctx context.Context, limit int) ([]model.Connection, error)
}

// Store is a Source that also persists records
type Store interface {
	Source

	// Save inserts the records and returns how many rows were written
	Save(ctx context.Context, records []model.Connection) (int, error)

	// Count returns the number of stored records
	Count(ctx context.Context) (int, error)

	// EnsureSchema creates the connections table when it is missing
	EnsureSchema(ctx context.Context) error
}
