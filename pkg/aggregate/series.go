// pkg/aggregate/series.go
package aggregate

import (
	"sort"
	"strings"

	"github.com/David-Botos/contact-chronicle/pkg/converter"
	"github.com/David-Botos/contact-chronicle/pkg/model"
)

// labelLimit is the chart label width before truncation
const labelLimit = 20

// SeriesPoint is one month of the cumulative connections chart
type SeriesPoint struct {
	Month      string `json:"month"`
	Label      string `json:"label"`
	Count      int    `json:"count"`
	Cumulative int    `json:"cumulative"`
}

// MonthlyCumulative buckets records by connection month and returns the
// running total in ascending month order. Records without a parsable
// date are left out.
func MonthlyCumulative(records []model.Connection) []SeriesPoint {
	counts := make(map[string]int)
	for _, c := range records {
		if key, ok := converter.MonthKey(c.Value(model.FieldConnectedOn)); ok {
			counts[key]++
		}
	}

	months := make([]string, 0, len(counts))
	for k := range counts {
		months = append(months, k)
	}
	sort.Strings(months)

	points := make([]SeriesPoint, 0, len(months))
	running := 0
	for _, m := range months {
		running += counts[m]
		points = append(points, SeriesPoint{
			Month:      m,
			Label:      converter.MonthLabel(m),
			Count:      counts[m],
			Cumulative: running,
		})
	}
	return points
}

// Bucket is one bar of a top-N distribution
type Bucket struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TopN counts non-empty trimmed field values and returns at most n buckets
// by descending count. Equal counts keep first-encountered order.
func TopN(records []model.Connection, field model.Field, n int) []Bucket {
	if n <= 0 {
		return []Bucket{}
	}

	index := make(map[string]int)
	var buckets []Bucket
	for _, c := range records {
		v := strings.TrimSpace(c.Value(field))
		if v == "" {
			continue
		}
		if i, ok := index[v]; ok {
			buckets[i].Count++
			continue
		}
		index[v] = len(buckets)
		buckets = append(buckets, Bucket{Value: v, Label: TruncateLabel(v), Count: 1})
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})
	if len(buckets) > n {
		buckets = buckets[:n]
	}
	if buckets == nil {
		return []Bucket{}
	}
	return buckets
}

// TruncateLabel shortens chart labels longer than 20 characters
func TruncateLabel(s string) string {
	r := []rune(s)
	if len(r) <= labelLimit {
		return s
	}
	return string(r[:labelLimit]) + "..."
}
