package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/David-Botos/contact-chronicle/pkg/locator"
	"github.com/David-Botos/contact-chronicle/pkg/model"
	"github.com/David-Botos/contact-chronicle/pkg/normalizer"
)

type fakeSource struct {
	name    string
	records []model.Connection
	err     error
	calls   int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) List(_ context.Context, limit int) ([]model.Connection, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

var (
	jo  = model.Connection{FirstName: "Jo", LastName: "Lee"}
	ann = model.Connection{FirstName: "Ann", LastName: "Roe"}
)

func TestFallbackPrimarySucceeds(t *testing.T) {
	primary := &fakeSource{name: "db", records: []model.Connection{jo}}
	secondary := &fakeSource{name: "csv", records: []model.Connection{ann}}

	r := FirstOf(primary, secondary, zap.NewNop()).Load(context.Background(), 10)
	require.True(t, r.OK())
	assert.Equal(t, "db", r.Source)
	assert.Equal(t, []model.Connection{jo}, r.Records)
	assert.Zero(t, secondary.calls, "secondary is not consulted")
}

func TestFallbackPrimaryFails(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	primary := &fakeSource{name: "db", err: errors.New("connection refused")}
	secondary := &fakeSource{name: "csv", records: []model.Connection{ann}}

	r := FirstOf(primary, secondary, zap.New(core)).Load(context.Background(), 10)
	require.True(t, r.OK())
	assert.Equal(t, "csv", r.Source)
	assert.Equal(t, []model.Connection{ann}, r.Records)
	assert.Equal(t, 1, logs.FilterMessage("Primary source failed; falling back").Len())
}

func TestFallbackPrimaryEmpty(t *testing.T) {
	primary := &fakeSource{name: "db"}
	secondary := &fakeSource{name: "csv", records: []model.Connection{ann}}

	r := FirstOf(primary, secondary, nil).Load(context.Background(), 10)
	require.True(t, r.OK())
	assert.Equal(t, "csv", r.Source)
}

func TestFallbackNilPrimary(t *testing.T) {
	secondary := &fakeSource{name: "csv", records: []model.Connection{ann, jo}}

	f := FirstOf(nil, secondary, zap.NewNop())
	assert.Equal(t, "none|csv", f.Name())

	records, err := f.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []model.Connection{ann}, records)
}

func TestFallbackBothFail(t *testing.T) {
	refused := errors.New("connection refused")
	primary := &fakeSource{name: "db", err: refused}
	secondary := &fakeSource{name: "csv", err: ErrSourceUnavailable}

	r := FirstOf(primary, secondary, zap.NewNop()).Load(context.Background(), 10)
	require.False(t, r.OK())
	assert.Empty(t, r.Records)
	assert.ErrorIs(t, r.Err, ErrNoData)
	assert.ErrorIs(t, r.Err, refused)
	assert.ErrorIs(t, r.Err, ErrSourceUnavailable)
	assert.Contains(t, r.Err.Error(), "could not load connections")
}

func TestFallbackBothEmpty(t *testing.T) {
	r := FirstOf(&fakeSource{name: "db"}, nil, zap.NewNop()).Load(context.Background(), 10)
	assert.ErrorIs(t, r.Err, ErrNoData)
	assert.ErrorIs(t, r.Err, ErrEmpty)
	assert.ErrorIs(t, r.Err, ErrSourceUnavailable)
}

func newCSVSource(t *testing.T, path string) *CSVSource {
	t.Helper()
	n, err := normalizer.NewNormalizer(zap.NewNop())
	require.NoError(t, err)
	src, err := NewCSVSource(path, n, locator.NewAssigner(zap.NewNop(), locator.WithJitter(0)), zap.NewNop())
	require.NoError(t, err)
	return src
}

func TestCSVSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Connections.csv")
	content := "First Name,Last Name,Company\nJo,Lee,Google\n,Kim,\nAnn,Roe,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	src := newCSVSource(t, path)
	assert.Equal(t, "csv:Connections.csv", src.Name())
	assert.Equal(t, path, src.Path())

	records, err := src.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "San Francisco, CA", *records[0].Location)
	assert.Equal(t, locator.DefaultCities()[1].Name, *records[1].Location)

	records, err = src.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCSVSourceMissingFile(t *testing.T) {
	src := newCSVSource(t, filepath.Join(t.TempDir(), "missing.csv"))
	_, err := src.List(context.Background(), 0)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCSVSourceCancelled(t *testing.T) {
	src := newCSVSource(t, "Connections.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := src.List(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
