// pkg/store/sql.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/contact-chronicle/pkg/config"
	"github.com/David-Botos/contact-chronicle/pkg/connector"
	"github.com/David-Botos/contact-chronicle/pkg/converter"
	"github.com/David-Botos/contact-chronicle/pkg/model"
)

const (
	defaultListLimit = 10000
	defaultBatchSize = 500
	defaultTimeout   = 30 * time.Second

	// fixed width so text timestamps sort chronologically in SQLite
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// insertColumns are written by Save, in argument order
var insertColumns = []string{
	"first_name", "last_name", "url", "email_address", "company", "position",
	"connected_on", "location", "latitude", "longitude", "import_batch",
	"created_at", "updated_at",
}

var selectColumns = append([]string{"id"}, insertColumns...)

// connectionRow is the database shape of a model.Connection
type connectionRow struct {
	ID           int64           `db:"id"`
	FirstName    string          `db:"first_name"`
	LastName     string          `db:"last_name"`
	URL          sql.NullString  `db:"url"`
	EmailAddress sql.NullString  `db:"email_address"`
	Company      sql.NullString  `db:"company"`
	Position     sql.NullString  `db:"position"`
	ConnectedOn  sql.NullString  `db:"connected_on"`
	Location     sql.NullString  `db:"location"`
	Latitude     sql.NullFloat64 `db:"latitude"`
	Longitude    sql.NullFloat64 `db:"longitude"`
	ImportBatch  sql.NullString  `db:"import_batch"`
	CreatedAt    sql.NullString  `db:"created_at"`
	UpdatedAt    sql.NullString  `db:"updated_at"`
}

func (r connectionRow) toModel() model.Connection {
	c := model.Connection{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		URL:          converter.FromNullString(r.URL),
		EmailAddress: converter.FromNullString(r.EmailAddress),
		Company:      converter.FromNullString(r.Company),
		Position:     converter.FromNullString(r.Position),
		ConnectedOn:  converter.FromNullString(r.ConnectedOn),
		Location:     converter.FromNullString(r.Location),
		Latitude:     converter.FromNullFloat(r.Latitude),
		Longitude:    converter.FromNullFloat(r.Longitude),
		CreatedAt:    converter.FromNullTime(r.CreatedAt),
		UpdatedAt:    converter.FromNullTime(r.UpdatedAt),
	}
	if r.ImportBatch.Valid {
		c.ImportBatch = r.ImportBatch.String
	}
	return c
}

// Options tune an SQLStore; zero values select defaults
type Options struct {
	ListLimit int
	BatchSize int
	Timeout   time.Duration
}

// SQLStore is a Store backed by a connector's database
type SQLStore struct {
	db       *sqlx.DB
	driver   string
	table    string
	readOnly bool
	opts     Options
	logger   *zap.Logger
}

// NewSQLStore creates a store over an open connector. The connector stays
// owned by the caller.
func NewSQLStore(conn connector.Connector, logger *zap.Logger, opts Options) (*SQLStore, error) {
	if conn == nil {
		return nil, errors.New("connector cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = defaultListLimit
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &SQLStore{
		db:       conn.DB(),
		driver:   conn.Driver(),
		table:    conn.Table(),
		readOnly: conn.ReadOnly(),
		opts:     opts,
		logger:   logger.Named("sql-store"),
	}, nil
}

// Name returns the driver and table, e.g. "postgres:connections"
func (s *SQLStore) Name() string {
	return s.driver + ":" + s.table
}

// List returns the newest records first
func (s *SQLStore) List(ctx context.Context, limit int) ([]model.Connection, error) {
	if limit <= 0 || limit > s.opts.ListLimit {
		limit = s.opts.ListLimit
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	aliased := make([]string, len(selectColumns))
	for i, col := range selectColumns {
		// quoted aliases keep lower-case names on case-folding warehouses
		aliased[i] = fmt.Sprintf("%s AS %s", col, pq.QuoteIdentifier(col))
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC, id DESC LIMIT %d",
		strings.Join(aliased, ", "), pq.QuoteIdentifier(s.table), limit)

	var rows []connectionRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrSourceUnavailable, s.Name(), err)
	}

	records := make([]model.Connection, len(rows))
	for i, r := range rows {
		records[i] = r.toModel()
	}

	s.logger.Debug("Listed connections",
		zap.String("store", s.Name()),
		zap.Int("limit", limit),
		zap.Int("rowsRead", len(records)))
	return records, nil
}

// Count returns the number of stored records
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", pq.QuoteIdentifier(s.table))
	if err := s.db.GetContext(ctx, &n, query); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.Name(), err)
	}
	return n, nil
}

// Save inserts records in batches inside a single transaction. Records
// without a creation time are stamped with the current time.
func (s *SQLStore) Save(ctx context.Context, records []model.Connection) (inserted int, err error) {
	if s.readOnly {
		return 0, fmt.Errorf("%w: %s", ErrReadOnly, s.Name())
	}
	if len(records) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for start := 0; start < len(records); start += s.opts.BatchSize {
		end := start + s.opts.BatchSize
		if end > len(records) {
			end = len(records)
		}

		query, args := s.insertQuery(records[start:end], now)
		result, execErr := tx.ExecContext(ctx, query, args...)
		if execErr != nil {
			err = fmt.Errorf("batch insert failed at record %d: %w", start, execErr)
			return 0, err
		}

		affected, raErr := result.RowsAffected()
		if raErr != nil {
			s.logger.Warn("Couldn't get rows affected", zap.Error(raErr))
			affected = int64(end - start)
		}
		inserted += int(affected)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Saved connections",
		zap.String("store", s.Name()),
		zap.Int("rowsWritten", inserted))
	return inserted, nil
}

// insertQuery builds one multi-row INSERT in the driver's bind syntax
func (s *SQLStore) insertQuery(batch []model.Connection, now time.Time) (string, []interface{}) {
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(insertColumns)), ", ") + ")"
	placeholders := make([]string, len(batch))
	args := make([]interface{}, 0, len(batch)*len(insertColumns))

	for i, c := range batch {
		placeholders[i] = row
		created := now
		if c.CreatedAt != nil {
			created = c.CreatedAt.UTC()
		}
		args = append(args,
			c.FirstName,
			c.LastName,
			converter.ToNullString(c.URL),
			converter.ToNullString(c.EmailAddress),
			converter.ToNullString(c.Company),
			converter.ToNullString(c.Position),
			converter.ToNullString(c.ConnectedOn),
			converter.ToNullString(c.Location),
			converter.ToNullFloat(c.Latitude),
			converter.ToNullFloat(c.Longitude),
			converter.ToNullString(model.StringPtr(c.ImportBatch)),
			created.Format(timestampLayout),
			now.Format(timestampLayout),
		)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		pq.QuoteIdentifier(s.table),
		strings.Join(insertColumns, ", "),
		strings.Join(placeholders, ", "))
	return s.db.Rebind(query), args
}

// EnsureSchema creates the connections table and its ordering index.
// Read-only stores are left untouched.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if s.readOnly {
		s.logger.Debug("Skipping schema creation for read-only store", zap.String("store", s.Name()))
		return nil
	}

	ddl, err := schemaDDL(s.driver, s.table)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", s.table, err)
		}
	}

	s.logger.Info("Ensured connections table", zap.String("store", s.Name()))
	return nil
}

func schemaDDL(driver, table string) ([]string, error) {
	var idType, floatType, timeType string
	switch driver {
	case config.DriverPostgres:
		idType, floatType, timeType = "BIGSERIAL PRIMARY KEY", "DOUBLE PRECISION", "TIMESTAMPTZ"
	case config.DriverSQLite:
		idType, floatType, timeType = "INTEGER PRIMARY KEY AUTOINCREMENT", "REAL", "DATETIME"
	default:
		return nil, fmt.Errorf("no schema definition for driver %q", driver)
	}

	columnDefs := []string{
		"id " + idType,
		"first_name TEXT NOT NULL",
		"last_name TEXT NOT NULL",
		"url TEXT",
		"email_address TEXT",
		"company TEXT",
		"position TEXT",
		"connected_on TEXT",
		"location TEXT",
		"latitude " + floatType,
		"longitude " + floatType,
		"import_batch TEXT",
		"created_at " + timeType + " NOT NULL",
		"updated_at " + timeType + " NOT NULL",
	}

	quoted := pq.QuoteIdentifier(table)
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quoted, strings.Join(columnDefs, ",\n\t")),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (created_at DESC, id DESC)",
			pq.QuoteIdentifier("idx_"+table+"_created_at"), quoted),
	}, nil
}
