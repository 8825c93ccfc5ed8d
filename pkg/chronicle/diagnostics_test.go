package chronicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/David-Botos/contact-chronicle/pkg/model"
)

func TestDiagnosticLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewDiagnosticLog(zap.New(core))

	for i := 0; i < 7; i++ {
		l.Record(model.Diagnostic{Line: i + 2, Kind: model.DiagnosticMissingName, Dropped: true})
	}
	l.RecordAll([]model.Diagnostic{
		{Line: 20, Kind: model.DiagnosticParseError},
		{Line: 21, Kind: model.DiagnosticBlankRow, Dropped: true},
	})

	assert.Equal(t, 9, l.Total())
	assert.Equal(t, []model.DiagnosticKind{
		model.DiagnosticBlankRow,
		model.DiagnosticMissingName,
		model.DiagnosticParseError,
	}, l.Kinds())

	s := l.Summary()
	assert.Equal(t, 9, s.Total)
	assert.Equal(t, 8, s.Dropped)
	assert.Equal(t, 7, s.Counts[model.DiagnosticMissingName])
	require.Len(t, s.Samples[model.DiagnosticMissingName], maxSamples)
	assert.Equal(t, 2, s.Samples[model.DiagnosticMissingName][0].Line)

	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len(), "parse errors are warnings")
	assert.Equal(t, 7, logs.FilterLevelExact(zapcore.InfoLevel).Len())
}

func TestDiagnosticSummaryIsACopy(t *testing.T) {
	l := NewDiagnosticLog(nil)
	l.Record(model.Diagnostic{Kind: model.DiagnosticBlankRow})

	s := l.Summary()
	s.Counts[model.DiagnosticBlankRow] = 100
	assert.Equal(t, 1, l.Summary().Counts[model.DiagnosticBlankRow])
}
