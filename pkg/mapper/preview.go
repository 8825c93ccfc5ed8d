// pkg/mapper/preview.go
package mapper

import (
	"strings"

	"github.com/David-Botos/contact-chronicle/pkg/model"
)

const (
	previewUnmapped = "--"
	previewMissing  = "N/A"
)

// Preview renders the first n rows the way the import screen shows them:
// one value per canonical field, "N/A" for empty mapped values and "--"
// for unmapped fields.
func Preview(rows []model.RawRow, m *Mapping, n int) []map[string]string {
	if n > len(rows) {
		n = len(rows)
	}
	if n < 0 {
		n = 0
	}
	out := make([]map[string]string, 0, n)
	for _, row := range rows[:n] {
		cells := make(map[string]string, len(model.CanonicalFields))
		for _, f := range model.CanonicalFields {
			column, ok := m.Column(f)
			if !ok {
				cells[f.Name] = previewUnmapped
				continue
			}
			v, _ := row.Get(column)
			if strings.TrimSpace(v) == "" {
				v = previewMissing
			}
			cells[f.Name] = v
		}
		out = append(out, cells)
	}
	return out
}
