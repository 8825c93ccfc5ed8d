package chronicle

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/contact-chronicle/pkg/model"
)

// Metrics accumulates import statistics for a session
type Metrics struct {
	mu               sync.Mutex
	logger           *zap.Logger
	StartTime        time.Time
	EndTime          time.Time
	Imports          int
	FailedImports    int
	TotalRowsRead    int
	TotalAdmitted    int
	TotalDropped     int
	TotalSaved       int
	KeywordLocated   int
	DefaultLocated   int
	AmbiguousMatches int
	DiagnosticCounts map[model.DiagnosticKind]int
}

// NewMetrics creates a new Metrics instance
func NewMetrics(logger *zap.Logger) *Metrics {
	return &Metrics{
		StartTime:        time.Now(),
		DiagnosticCounts: make(map[model.DiagnosticKind]int),
		logger:           logger,
	}
}

// RecordImport records a finished import
func (m *Metrics) RecordImport(result *ImportResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Imports++
	if !result.Success {
		m.FailedImports++
	}
	m.TotalRowsRead += result.RowsRead
	m.TotalAdmitted += result.Admitted
	m.TotalDropped += result.Dropped
	m.TotalSaved += result.Saved
	m.KeywordLocated += result.Location.Keyword
	m.DefaultLocated += result.Location.Default
	m.AmbiguousMatches += result.Location.Ambiguous
	for kind, count := range result.Diagnostics.Counts {
		m.DiagnosticCounts[kind] += count
	}

	if m.logger != nil {
		m.logger.Info("Import completed",
			zap.String("job", result.JobID),
			zap.String("source", result.Source),
			zap.Bool("success", result.Success),
			zap.Int("rowsRead", result.RowsRead),
			zap.Int("admitted", result.Admitted),
			zap.Int("dropped", result.Dropped),
			zap.Int("saved", result.Saved),
			zap.Duration("duration", result.Duration))
	}
}

// Complete stops the clock
func (m *Metrics) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EndTime = time.Now()
}

// Duration returns the elapsed time, up to now while still running
func (m *Metrics) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration()
}

// duration expects mu to be held
func (m *Metrics) duration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// admissionRate is the percentage of read rows that became records. It
// expects mu to be held.
func (m *Metrics) admissionRate() float64 {
	return percentage(float64(m.TotalAdmitted), float64(m.TotalRowsRead))
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// GenerateReport renders the import report shown after an import
func (m *Metrics) GenerateReport() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, `
Import Report
=============
Duration:             %s
Imports:              %d (%d failed)

Rows
----
Rows Read:            %d
Records Admitted:     %d (%.1f%%)
Rows Dropped:         %d
Records Saved:        %d

Locations
---------
Keyword Matches:      %d
Default Assignments:  %d
Ambiguous Matches:    %d
`,
		formatDuration(m.duration()),
		m.Imports, m.FailedImports,
		m.TotalRowsRead,
		m.TotalAdmitted, m.admissionRate(),
		m.TotalDropped,
		m.TotalSaved,
		m.KeywordLocated,
		m.DefaultLocated,
		m.AmbiguousMatches,
	)

	if len(m.DiagnosticCounts) > 0 {
		sb.WriteString("\nDiagnostics\n-----------\n")
		total := 0
		kinds := make([]string, 0, len(m.DiagnosticCounts))
		for kind, count := range m.DiagnosticCounts {
			total += count
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			count := m.DiagnosticCounts[model.DiagnosticKind(kind)]
			fmt.Fprintf(&sb, "- %s: %d (%.1f%%)\n", kind, count, percentage(float64(count), float64(total)))
		}
	}

	return sb.String()
}

// percentage safely calculates a percentage, avoiding division by zero
func percentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * 100
}

// ToJSON serializes metrics to JSON
func (m *Metrics) ToJSON() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return json.Marshal(struct {
		Duration         string                       `json:"duration"`
		Imports          int                          `json:"imports"`
		FailedImports    int                          `json:"failedImports"`
		TotalRowsRead    int                          `json:"totalRowsRead"`
		TotalAdmitted    int                          `json:"totalAdmitted"`
		AdmissionRate    float64                      `json:"admissionRatePercent"`
		TotalDropped     int                          `json:"totalDropped"`
		TotalSaved       int                          `json:"totalSaved"`
		KeywordLocated   int                          `json:"keywordLocated"`
		DefaultLocated   int                          `json:"defaultLocated"`
		AmbiguousMatches int                          `json:"ambiguousMatches"`
		Diagnostics      map[model.DiagnosticKind]int `json:"diagnostics"`
	}{
		Duration:         formatDuration(m.duration()),
		Imports:          m.Imports,
		FailedImports:    m.FailedImports,
		TotalRowsRead:    m.TotalRowsRead,
		TotalAdmitted:    m.TotalAdmitted,
		AdmissionRate:    m.admissionRate(),
		TotalDropped:     m.TotalDropped,
		TotalSaved:       m.TotalSaved,
		KeywordLocated:   m.KeywordLocated,
		DefaultLocated:   m.DefaultLocated,
		AmbiguousMatches: m.AmbiguousMatches,
		Diagnostics:      m.DiagnosticCounts,
	})
}
