// pkg/store/fallback.go
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/contact-chronicle/pkg/model"
)

// Result is the outcome of loading from a source
type Result struct {
	Records []model.Connection
	Source  string // name of the source that produced Records
	Err     error
}

// OK reports whether records were loaded
func (r Result) OK() bool {
	return r.Err == nil
}

// Fetch lists from a single source. A successful read with no records is
// reported as ErrEmpty.
func Fetch(ctx context.Context, src Source, limit int) Result {
	if src == nil {
		return Result{Err: fmt.Errorf("%w: no source configured", ErrSourceUnavailable)}
	}
	records, err := src.List(ctx, limit)
	if err != nil {
		return Result{Source: src.Name(), Err: err}
	}
	if len(records) == 0 {
		return Result{Source: src.Name(), Err: fmt.Errorf("%s: %w", src.Name(), ErrEmpty)}
	}
	return Result{Records: records, Source: src.Name()}
}

// Fallback lists from a primary source, switching to a secondary source
// when the primary fails or is empty.
type Fallback struct {
	primary   Source
	secondary Source
	logger    *zap.Logger
}

// FirstOf combines two sources. Either may be nil.
func FirstOf(primary, secondary Source, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger.Named("fallback")}
}

// Name describes both sources
func (f *Fallback) Name() string {
	return fmt.Sprintf("%s|%s", sourceName(f.primary), sourceName(f.secondary))
}

// Load returns the primary's records, or the secondary's. When both fail,
// the error wraps ErrNoData and both causes.
func (f *Fallback) Load(ctx context.Context, limit int) Result {
	first := Fetch(ctx, f.primary, limit)
	if first.OK() {
		return first
	}

	f.logger.Warn("Primary source failed; falling back",
		zap.String("primary", sourceName(f.primary)),
		zap.String("secondary", sourceName(f.secondary)),
		zap.Error(first.Err))

	second := Fetch(ctx, f.secondary, limit)
	if second.OK() {
		return second
	}

	f.logger.Error("Could not load connections from any source",
		zap.NamedError("primaryError", first.Err),
		zap.NamedError("secondaryError", second.Err))
	return Result{
		Source: second.Source,
		Err:    fmt.Errorf("%w: %w", ErrNoData, errors.Join(first.Err, second.Err)),
	}
}

// List makes a Fallback usable as a Source
func (f *Fallback) List(ctx context.Context, limit int) ([]model.Connection, error) {
	r := f.Load(ctx, limit)
	return r.Records, r.Err
}

func sourceName(s Source) string {
	if s == nil {
		return "none"
	}
	return s.Name()
}
