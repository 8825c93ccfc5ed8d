// pkg/normalizer/reader.go
package normalizer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/David-Botos/contact-chronicle/pkg/model"
)

// ErrUnreadable is returned when the input has no usable header or cannot be read
var ErrUnreadable = errors.New("unreadable import")

// preambleScanLines bounds the search for the header row. LinkedIn exports
// start with a short "Notes:" block before the header.
const preambleScanLines = 10

// rowSource yields raw records with the line they started on
type rowSource interface {
	next() (record []string, line int, err error)
}

// RowReader streams raw rows from an import. Rows are produced lazily by
// Next; blank rows and unparsable records are dropped and reported as
// diagnostics instead of failing the read.
type RowReader struct {
	src         rowSource
	header      []string
	row         model.RawRow
	rowsRead    int
	diagnostics []model.Diagnostic
	err         error
}

// NewRowReader reads the header from CSV input and returns a reader
// positioned on the first data row.
func NewRowReader(r io.Reader) (*RowReader, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", ErrUnreadable)
	}

	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	body, skipped, err := skipPreamble(bufio.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	cr := csv.NewReader(body)
	cr.FieldsPerRecord = -1
	src := &csvSource{reader: cr, lineOffset: skipped}

	header, _, err := src.next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", ErrUnreadable)
		}
		return nil, fmt.Errorf("%w: header: %v", ErrUnreadable, err)
	}

	return &RowReader{src: src, header: cleanHeader(header)}, nil
}

// FromRows wraps already-split records that share a header
func FromRows(header []string, records [][]string) *RowReader {
	return &RowReader{
		src:    &sliceSource{records: records, firstLine: 2},
		header: cleanHeader(header),
	}
}

// FromMaps wraps loosely-typed rows. The header is the union of keys in
// first-seen order, keys of each row taken in sorted order.
func FromMaps(rows []map[string]interface{}) *RowReader {
	var header []string
	seen := make(map[string]bool)
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		record := make([]string, len(header))
		for j, column := range header {
			record[j] = toString(row[column])
		}
		records[i] = record
	}
	return &RowReader{
		src:    &sliceSource{records: records, firstLine: 1},
		header: header,
	}
}

// Header returns the column names in source order, duplicates included
func (rr *RowReader) Header() []string {
	out := make([]string, len(rr.header))
	copy(out, rr.header)
	return out
}

// Next advances to the next non-blank, parsable row
func (rr *RowReader) Next() bool {
	if rr.err != nil {
		return false
	}
	for {
		record, line, err := rr.src.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rr.report(model.Diagnostic{
					Line:    line,
					Kind:    model.DiagnosticParseError,
					Dropped: true,
					Reason:  parseErr.Err.Error(),
				})
				continue
			}
			rr.err = fmt.Errorf("%w: %v", ErrUnreadable, err)
			return false
		}

		rr.rowsRead++
		record = rr.fitToHeader(record, line)
		row := model.RawRow{Line: line, Columns: rr.header, Values: record}
		if row.IsBlank() {
			rr.report(model.Diagnostic{
				Line:    line,
				Kind:    model.DiagnosticBlankRow,
				Dropped: true,
				Reason:  "every value is empty",
			})
			continue
		}
		rr.row = row
		return true
	}
}

// Row returns the current row
func (rr *RowReader) Row() model.RawRow {
	return rr.row
}

// Err returns the error that stopped iteration, if any. It is nil when
// the input was read to the end.
func (rr *RowReader) Err() error {
	return rr.err
}

// RowsRead counts data rows read so far, excluding those that failed to parse
func (rr *RowReader) RowsRead() int {
	return rr.rowsRead
}

// Diagnostics returns the problems reported so far, in input order
func (rr *RowReader) Diagnostics() []model.Diagnostic {
	out := make([]model.Diagnostic, len(rr.diagnostics))
	copy(out, rr.diagnostics)
	return out
}

func (rr *RowReader) report(d model.Diagnostic) {
	rr.diagnostics = append(rr.diagnostics, d)
}

// fitToHeader pads short records and truncates long ones, reporting both
func (rr *RowReader) fitToHeader(record []string, line int) []string {
	switch {
	case len(record) < len(rr.header):
		rr.report(model.Diagnostic{
			Line:   line,
			Kind:   model.DiagnosticParseError,
			Reason: fmt.Sprintf("too few fields: expected %d, got %d", len(rr.header), len(record)),
			Values: record,
		})
		padded := make([]string, len(rr.header))
		copy(padded, record)
		return padded
	case len(record) > len(rr.header):
		rr.report(model.Diagnostic{
			Line:   line,
			Kind:   model.DiagnosticParseError,
			Reason: fmt.Sprintf("too many fields: expected %d, got %d", len(rr.header), len(record)),
			Values: record,
		})
		return record[:len(rr.header)]
	default:
		return record
	}
}

type csvSource struct {
	reader     *csv.Reader
	lineOffset int
}

func (s *csvSource) next() ([]string, int, error) {
	record, err := s.reader.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, parseErr.StartLine + s.lineOffset, err
		}
		return nil, 0, err
	}
	line, _ := s.reader.FieldPos(0)
	return record, line + s.lineOffset, nil
}

type sliceSource struct {
	records   [][]string
	pos       int
	firstLine int
}

func (s *sliceSource) next() ([]string, int, error) {
	if s.pos >= len(s.records) {
		return nil, 0, io.EOF
	}
	record := s.records[s.pos]
	line := s.firstLine + s.pos
	s.pos++
	return record, line, nil
}

// skipPreamble drops lines before the header row. A line is the header when
// it has both a "First Name" and a "Last Name" column. If none of the first
// lines qualifies, nothing is skipped.
func skipPreamble(br *bufio.Reader) (io.Reader, int, error) {
	var lines []string
	for len(lines) < preambleScanLines {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, 0, err
		}
	}

	skip := 0
	for i, line := range lines {
		if looksLikeHeader(line) {
			skip = i
			break
		}
	}

	rest := strings.Join(lines[skip:], "")
	return io.MultiReader(strings.NewReader(rest), br), skip, nil
}

func looksLikeHeader(line string) bool {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	fields, err := cr.Read()
	if err != nil {
		return false
	}
	var first, last bool
	for _, f := range fields {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "first name", "first_name":
			first = true
		case "last name", "last_name":
			last = true
		}
	}
	return first && last
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}

// toString converts a loosely-typed value to string
func toString(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case *string:
		if val == nil {
			return ""
		}
		return *val
	default:
		return fmt.Sprintf("%v", val)
	}
}
