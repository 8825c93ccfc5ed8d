// pkg/normalizer/normalizer.go
package normalizer

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/David-Botos/contact-chronicle/pkg/mapper"
	"github.com/David-Botos/contact-chronicle/pkg/model"
)

// Result is the outcome of normalizing one import
type Result struct {
	Header      []string
	Mapping     *mapper.Mapping
	Records     []model.Connection
	Rows        []model.RawRow // admitted rows, parallel to Records
	RowsRead    int
	Diagnostics []model.Diagnostic
}

// Dropped counts rows excluded from Records
func (r *Result) Dropped() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Dropped {
			n++
		}
	}
	return n
}

// Normalizer turns raw import rows into canonical connection records
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a new Normalizer
func NewNormalizer(logger *zap.Logger) (*Normalizer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Normalizer{logger: logger}, nil
}

// NormalizeCSV parses CSV input and normalizes it. A nil mapping is
// replaced by the mapping suggested from the header.
func (n *Normalizer) NormalizeCSV(r io.Reader, mapping *mapper.Mapping) (*Result, error) {
	rows, err := NewRowReader(r)
	if err != nil {
		return nil, err
	}
	return n.Normalize(rows, mapping)
}

// Normalize drains rows, applies the mapping and keeps only records that
// pass the admission invariant. Only a read failure is returned as an
// error; everything else becomes a diagnostic.
func (n *Normalizer) Normalize(rows *RowReader, mapping *mapper.Mapping) (*Result, error) {
	if rows == nil {
		return nil, fmt.Errorf("%w: no rows", ErrUnreadable)
	}
	if mapping == nil {
		mapping = mapper.Suggest(rows.Header())
	}

	if missing := mapping.Missing(); len(missing) > 0 {
		n.logger.Warn("Required fields are not mapped; every row will be dropped",
			zap.Any("missing", missing))
	}

	result := &Result{
		Header:  rows.Header(),
		Mapping: mapping,
	}

	for rows.Next() {
		row := rows.Row()
		record := mapping.Apply(row)
		if !record.Admissible() {
			rows.report(model.Diagnostic{
				Line:    row.Line,
				Kind:    model.DiagnosticMissingName,
				Dropped: true,
				Reason:  "first and last name are required",
				Values:  row.Values,
			})
			continue
		}
		result.Records = append(result.Records, record)
		result.Rows = append(result.Rows, row)
	}

	result.RowsRead = rows.RowsRead()
	result.Diagnostics = rows.Diagnostics()

	if err := rows.Err(); err != nil {
		return result, err
	}

	n.logger.Info("Normalized import",
		zap.Int("rowsRead", result.RowsRead),
		zap.Int("records", len(result.Records)),
		zap.Int("dropped", result.Dropped()),
		zap.Int("diagnostics", len(result.Diagnostics)))

	for _, d := range result.Diagnostics {
		n.logger.Debug("Import diagnostic",
			zap.Int("line", d.Line),
			zap.String("kind", string(d.Kind)),
			zap.Bool("dropped", d.Dropped),
			zap.String("reason", d.Reason))
	}

	return result, nil
}
