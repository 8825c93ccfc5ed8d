// pkg/aggregate/filter.go
package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/David-Botos/contact-chronicle/pkg/model"
)

var (
	// ErrInvalidPageSize is returned when a page size below 1 is requested
	ErrInvalidPageSize = errors.New("page size must be at least 1")
	// ErrUnknownDirection is returned by ParseDirection
	ErrUnknownDirection = errors.New("unknown sort direction")
)

// Query is a single case-insensitive substring condition on a field
type Query struct {
	Field model.Field
	Text  string
}

// Filter keeps the records matching every query. Empty query text
// matches all records.
func Filter(records []model.Connection, queries ...Query) []model.Connection {
	active := make([]Query, 0, len(queries))
	for _, q := range queries {
		if q.Text = strings.ToLower(strings.TrimSpace(q.Text)); q.Text != "" {
			active = append(active, q)
		}
	}

	out := make([]model.Connection, 0, len(records))
	for _, c := range records {
		if matchesAll(c, active) {
			out = append(out, c)
		}
	}
	return out
}

func matchesAll(c model.Connection, queries []Query) bool {
	for _, q := range queries {
		if !strings.Contains(strings.ToLower(c.Value(q.Field)), q.Text) {
			return false
		}
	}
	return true
}

// Direction is a sort order
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection accepts asc/ascending and desc/descending
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// Sort orders a copy of records by the field's string value. Ties keep
// their input order. A zero field returns the records in input order.
func Sort(records []model.Connection, field model.Field, dir Direction) []model.Connection {
	out := append([]model.Connection(nil), records...)
	if field == (model.Field{}) {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Value(field), out[j].Value(field)
		if dir == Descending {
			return a > b
		}
		return a < b
	})
	return out
}

// Page is one slice of a paginated collection. Start and End are 1-based
// and inclusive; both are zero for an empty page.
type Page struct {
	Records    []model.Connection `json:"records"`
	Number     int                `json:"page"`
	Size       int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
	Total      int                `json:"total"`
	Start      int                `json:"start"`
	End        int                `json:"end"`
}

// Summary renders the "Showing x to y of z" footer
func (p Page) Summary() string {
	return fmt.Sprintf("Showing %d to %d of %d", p.Start, p.End, p.Total)
}

// Paginate returns records [(page-1)*size, page*size) clamped to bounds.
// Pages below 1 are treated as the first page.
func Paginate(records []model.Connection, size, page int) (Page, error) {
	if size < 1 {
		return Page{}, fmt.Errorf("%w: got %d", ErrInvalidPageSize, size)
	}
	if page < 1 {
		page = 1
	}

	total := len(records)
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}
	p := Page{
		Number:     page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
		Records:    []model.Connection{},
	}

	// page-1 < totalPages keeps (page-1)*size below total
	if page-1 >= totalPages {
		return p, nil
	}
	start := (page - 1) * size
	end := total
	if size < total-start {
		end = start + size
	}
	p.Records = append(p.Records, records[start:end]...)
	p.Start = start + 1
	p.End = end
	return p, nil
}
