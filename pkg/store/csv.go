// pkg/store/csv.go
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/David-Botos/contact-chronicle/pkg/locator"
	"github.com/David-Botos/contact-chronicle/pkg/model"
	"github.com/David-Botos/contact-chronicle/pkg/normalizer"
)

// CSVSource lists records from a LinkedIn export on disk, using the
// suggested field mapping and the location assigner.
type CSVSource struct {
	path       string
	normalizer *normalizer.Normalizer
	assigner   *locator.Assigner
	logger     *zap.Logger
}

// NewCSVSource creates a source for the CSV file at path
func NewCSVSource(path string, n *normalizer.Normalizer, a *locator.Assigner, logger *zap.Logger) (*CSVSource, error) {
	if path == "" {
		return nil, errors.New("csv path cannot be empty")
	}
	if n == nil {
		return nil, errors.New("normalizer cannot be nil")
	}
	if a == nil {
		return nil, errors.New("assigner cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &CSVSource{path: path, normalizer: n, assigner: a, logger: logger.Named("csv-source")}, nil
}

// Name returns "csv:<file name>"
func (s *CSVSource) Name() string {
	return "csv:" + filepath.Base(s.path)
}

// Path returns the file path
func (s *CSVSource) Path() string {
	return s.path
}

// List reads and normalizes the whole file, then returns the first limit records
func (s *CSVSource) List(ctx context.Context, limit int) ([]model.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer f.Close()

	result, err := s.normalizer.NormalizeCSV(f, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrSourceUnavailable, s.path, err)
	}

	records := result.Records
	s.assigner.AssignAll(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	s.logger.Debug("Loaded connections from CSV",
		zap.String("path", s.path),
		zap.Int("rowsRead", result.RowsRead),
		zap.Int("dropped", result.Dropped()),
		zap.Int("records", len(records)))
	return records, nil
}
