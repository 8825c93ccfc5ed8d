package chronicle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/contact-chronicle/pkg/aggregate"
	"github.com/David-Botos/contact-chronicle/pkg/locator"
	"github.com/David-Botos/contact-chronicle/pkg/mapper"
	"github.com/David-Botos/contact-chronicle/pkg/model"
	"github.com/David-Botos/contact-chronicle/pkg/normalizer"
	"github.com/David-Botos/contact-chronicle/pkg/store"
)

// ErrNoStore is returned by Commit when the session has no writable store
var ErrNoStore = errors.New("no record store configured")

// previewRows is the number of rows shown in an import preview
const previewRows = 5

// Options are the session's view defaults
type Options struct {
	PageSize  int
	TopN      int
	ListLimit int

	// VerifyTimeout bounds post-commit verification; zero keeps the verifier default
	VerifyTimeout time.Duration
}

// TableQuery selects a page of the connections table
type TableQuery struct {
	Company   string
	Position  string
	SortField model.Field
	Direction aggregate.Direction
	Page      int
	PageSize  int
}

// Session holds the working set of connections and derives every view
// from it. It is not safe for concurrent use.
type Session struct {
	logger     *zap.Logger
	source     store.Source
	store      store.Store
	normalizer *normalizer.Normalizer
	assigner   *locator.Assigner
	metrics    *Metrics
	opts       Options

	records    []model.Connection
	loadedFrom string
}

// NewSession wires a session. source is read by Load; st receives commits
// and may be nil for read-only use.
func NewSession(
	source store.Source,
	st store.Store,
	n *normalizer.Normalizer,
	a *locator.Assigner,
	logger *zap.Logger,
	opts Options,
) (*Session, error) {
	if n == nil {
		return nil, errors.New("normalizer cannot be nil")
	}
	if a == nil {
		return nil, errors.New("assigner cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}

	logger = logger.Named("session")
	return &Session{
		logger:     logger,
		source:     source,
		store:      st,
		normalizer: n,
		assigner:   a,
		metrics:    NewMetrics(logger.Named("metrics")),
		opts:       opts,
	}, nil
}

// Load replaces the working set with the source's records. Records missing
// location data are assigned one.
func (s *Session) Load(ctx context.Context) store.Result {
	var result store.Result
	if fb, ok := s.source.(*store.Fallback); ok {
		result = fb.Load(ctx, s.opts.ListLimit)
	} else {
		result = store.Fetch(ctx, s.source, s.opts.ListLimit)
	}

	if result.Err != nil {
		s.records, s.loadedFrom = nil, ""
		return result
	}

	report := s.assigner.AssignAll(result.Records)
	s.records, s.loadedFrom = result.Records, result.Source
	s.logger.Info("Loaded connections",
		zap.String("source", result.Source),
		zap.Int("records", len(result.Records)),
		zap.Int("assignedLocations", report.Keyword+report.Default))
	return result
}

// Records returns the working set
func (s *Session) Records() []model.Connection {
	return s.records
}

// Source names where the working set was loaded from
func (s *Session) Source() string {
	return s.loadedFrom
}

// Metrics returns the session's import metrics
func (s *Session) Metrics() *Metrics {
	return s.metrics
}

// Prepare parses an import, applies mapping overrides on top of the
// suggested mapping, assigns locations and stamps the batch ID. Overrides map
// a canonical field name to a column; an empty column unmaps the field.
func (s *Session) Prepare(r io.Reader, name string, overrides map[string]string) (*Import, error) {
	rows, err := normalizer.NewRowReader(r)
	if err != nil {
		return nil, err
	}

	mapping := mapper.Suggest(rows.Header())
	fields := make([]string, 0, len(overrides))
	for f := range overrides {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		if err := mapping.SetByName(f, overrides[f]); err != nil {
			return nil, fmt.Errorf("invalid mapping override %s=%s: %w", f, overrides[f], err)
		}
	}

	result, err := s.normalizer.Normalize(rows, mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s: %w", name, err)
	}

	job := NewImportJob(name)
	for i := range result.Records {
		result.Records[i].ImportBatch = job.ID
	}

	return &Import{
		Job:      job,
		Mapping:  mapping,
		Result:   result,
		Preview:  mapper.Preview(result.Rows, mapping, previewRows),
		Location: s.assigner.AssignAll(result.Records),
	}, nil
}

// Report summarizes a prepared import without saving it
func (s *Session) Report(imp *Import) *ImportResult {
	result := NewImportResult(imp)
	diagnostics := NewDiagnosticLog(s.logger.Named("diagnostics"))
	diagnostics.RecordAll(imp.Result.Diagnostics)
	result.Diagnostics = diagnostics.Summary()
	if missing := imp.Mapping.Missing(); len(missing) > 0 {
		for _, f := range missing {
			result.AddWarning(fmt.Sprintf("required field %q is not mapped", f.Name))
		}
	}
	return result
}

// Commit saves a prepared import, verifies the stored count and adds the
// records to the front of the working set.
func (s *Session) Commit(ctx context.Context, imp *Import) (*ImportResult, *VerificationReport, error) {
	result := s.Report(imp)
	if s.store == nil {
		result.Complete(false)
		s.metrics.RecordImport(result)
		return result, nil, ErrNoStore
	}

	fail := func(err error) (*ImportResult, *VerificationReport, error) {
		result.AddWarning(err.Error())
		result.Complete(false)
		s.metrics.RecordImport(result)
		return result, nil, err
	}

	if err := s.store.EnsureSchema(ctx); err != nil {
		return fail(err)
	}
	before, err := s.store.Count(ctx)
	if err != nil {
		return fail(err)
	}
	saved, err := s.store.Save(ctx, imp.Result.Records)
	if err != nil {
		return fail(err)
	}
	result.Saved = saved

	verifier, err := NewVerifier(s.store, s.logger)
	if err != nil {
		return fail(err)
	}
	if s.opts.VerifyTimeout > 0 {
		verifier.WithTimeout(s.opts.VerifyTimeout)
	}
	verification, err := verifier.VerifyImport(ctx, imp.Job.ID, before, imp.Result.Records)
	if err != nil {
		return fail(err)
	}
	result.Verified = verification.Verified()
	if !result.Verified {
		result.AddWarning("stored records do not match the import")
	}

	result.Complete(true)
	s.metrics.RecordImport(result)

	merged := make([]model.Connection, 0, len(imp.Result.Records)+len(s.records))
	merged = append(merged, imp.Result.Records...)
	s.records = append(merged, s.records...)
	return result, verification, nil
}

// Table filters by company and position, sorts, then paginates
func (s *Session) Table(q TableQuery) (aggregate.Page, error) {
	size := q.PageSize
	if size == 0 {
		size = s.opts.PageSize
	}
	filtered := aggregate.Filter(s.records,
		aggregate.Query{Field: model.FieldCompany, Text: q.Company},
		aggregate.Query{Field: model.FieldPosition, Text: q.Position})
	sorted := aggregate.Sort(filtered, q.SortField, q.Direction)
	return aggregate.Paginate(sorted, size, q.Page)
}

// Stats returns the summary statistics
func (s *Session) Stats() aggregate.Summary {
	return aggregate.Summarize(s.records)
}

// Series returns the cumulative connections by month
func (s *Session) Series() []aggregate.SeriesPoint {
	return aggregate.MonthlyCumulative(s.records)
}

// Top returns the n most common values of field; n <= 0 uses the session default
func (s *Session) Top(field model.Field, n int) []aggregate.Bucket {
	if n <= 0 {
		n = s.opts.TopN
	}
	return aggregate.TopN(s.records, field, n)
}

// MapPoints returns the map markers for the working set
func (s *Session) MapPoints() []aggregate.MapPoint {
	return aggregate.MapPoints(s.records)
}
