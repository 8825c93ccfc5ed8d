package chronicle

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/David-Botos/contact-chronicle/pkg/model"
)

// maxSamples is how many diagnostics are kept per kind
const maxSamples = 5

// DiagnosticSummary is the per-kind view of an import's diagnostics
type DiagnosticSummary struct {
	Total   int                                         `json:"total"`
	Dropped int                                         `json:"dropped"`
	Counts  map[model.DiagnosticKind]int                `json:"counts"`
	Samples map[model.DiagnosticKind][]model.Diagnostic `json:"samples"`
}

// DiagnosticLog aggregates row diagnostics by kind, keeping a few samples
// of each for the import report.
type DiagnosticLog struct {
	logger  *zap.Logger
	counts  map[model.DiagnosticKind]int
	samples map[model.DiagnosticKind][]model.Diagnostic
	dropped int
}

// NewDiagnosticLog creates an empty log. A nil logger disables logging.
func NewDiagnosticLog(logger *zap.Logger) *DiagnosticLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiagnosticLog{
		logger:  logger,
		counts:  make(map[model.DiagnosticKind]int),
		samples: make(map[model.DiagnosticKind][]model.Diagnostic),
	}
}

// Record adds one diagnostic
func (l *DiagnosticLog) Record(d model.Diagnostic) {
	l.counts[d.Kind]++
	if d.Dropped {
		l.dropped++
	}
	if samples := l.samples[d.Kind]; len(samples) < maxSamples {
		l.samples[d.Kind] = append(samples, d)
	}

	l.logger.Log(levelFor(d), "Import diagnostic",
		zap.String("kind", string(d.Kind)),
		zap.Int("line", d.Line),
		zap.Bool("dropped", d.Dropped),
		zap.String("reason", d.Reason))
}

// RecordAll adds every diagnostic in order
func (l *DiagnosticLog) RecordAll(ds []model.Diagnostic) {
	for _, d := range ds {
		l.Record(d)
	}
}

// Total returns the number of recorded diagnostics
func (l *DiagnosticLog) Total() int {
	n := 0
	for _, c := range l.counts {
		n += c
	}
	return n
}

// Kinds returns the recorded kinds in name order
func (l *DiagnosticLog) Kinds() []model.DiagnosticKind {
	kinds := make([]model.DiagnosticKind, 0, len(l.counts))
	for k := range l.counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Summary returns a copy of the counts and samples
func (l *DiagnosticLog) Summary() DiagnosticSummary {
	s := DiagnosticSummary{
		Total:   l.Total(),
		Dropped: l.dropped,
		Counts:  make(map[model.DiagnosticKind]int, len(l.counts)),
		Samples: make(map[model.DiagnosticKind][]model.Diagnostic, len(l.samples)),
	}
	for k, c := range l.counts {
		s.Counts[k] = c
	}
	for k, ds := range l.samples {
		s.Samples[k] = append([]model.Diagnostic(nil), ds...)
	}
	return s
}

// levelFor picks the log level for a diagnostic: parse problems are
// warnings, expected export noise is debug.
func levelFor(d model.Diagnostic) zapcore.Level {
	switch d.Kind {
	case model.DiagnosticParseError:
		return zap.WarnLevel
	case model.DiagnosticMissingName:
		return zap.InfoLevel
	default:
		return zap.DebugLevel
	}
}
