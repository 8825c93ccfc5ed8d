// pkg/aggregate/summary.go
package aggregate

import (
	"math"
	"strings"

	"github.com/David-Botos/contact-chronicle/pkg/converter"
	"github.com/David-Botos/contact-chronicle/pkg/model"
)

// NotSpecified is shown in place of missing optional values
const NotSpecified = "Not specified"

// Summary holds the headline statistics for a collection
type Summary struct {
	Total            int     `json:"total"`
	UniqueCompanies  int     `json:"unique_companies"`
	UniquePositions  int     `json:"unique_positions"`
	MostActiveYear   int     `json:"most_active_year,omitempty"`
	MostActiveCount  int     `json:"most_active_count"`
	Located          int     `json:"located"`
	LocationCoverage float64 `json:"location_coverage_percent"`
}

// Summarize computes the summary statistics. The most active year is the
// year with the most dated connections, ties going to the year seen first.
func Summarize(records []model.Connection) Summary {
	s := Summary{Total: len(records)}
	companies := make(map[string]struct{})
	positions := make(map[string]struct{})
	years := make(map[int]int)
	var yearOrder []int

	for _, c := range records {
		if v := strings.TrimSpace(c.Value(model.FieldCompany)); v != "" {
			companies[v] = struct{}{}
		}
		if v := strings.TrimSpace(c.Value(model.FieldPosition)); v != "" {
			positions[v] = struct{}{}
		}
		if y, ok := converter.Year(c.Value(model.FieldConnectedOn)); ok {
			if _, seen := years[y]; !seen {
				yearOrder = append(yearOrder, y)
			}
			years[y]++
		}
		if c.HasCoordinates() {
			s.Located++
		}
	}

	s.UniqueCompanies = len(companies)
	s.UniquePositions = len(positions)
	for _, y := range yearOrder {
		if years[y] > s.MostActiveCount {
			s.MostActiveYear, s.MostActiveCount = y, years[y]
		}
	}
	if s.Total > 0 {
		s.LocationCoverage = math.Round(float64(s.Located)/float64(s.Total)*1000) / 10
	}
	return s
}

// MapPoint is a marker on the connections map
type MapPoint struct {
	Name      string  `json:"name"`
	Company   string  `json:"company"`
	Position  string  `json:"position"`
	Location  string  `json:"location"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// MapPoints returns a marker for every record that has coordinates
func MapPoints(records []model.Connection) []MapPoint {
	points := make([]MapPoint, 0, len(records))
	for _, c := range records {
		if !c.HasCoordinates() {
			continue
		}
		points = append(points, MapPoint{
			Name:      c.FullName(),
			Company:   Placeholder(c.Company),
			Position:  Placeholder(c.Position),
			Location:  Placeholder(c.Location),
			Latitude:  *c.Latitude,
			Longitude: *c.Longitude,
		})
	}
	return points
}

// Placeholder returns the value or "Not specified" when it is missing
func Placeholder(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return NotSpecified
	}
	return *v
}
