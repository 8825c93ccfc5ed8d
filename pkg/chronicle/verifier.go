package chronicle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/contact-chronicle/pkg/model"
	"github.com/David-Botos/contact-chronicle/pkg/store"
)

// maxVerifySample bounds how many stored rows are compared after a commit
const maxVerifySample = 100

// RowDiscrepancy is a stored record that does not match what was imported
type RowDiscrepancy struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Discrepancy string `json:"discrepancy"`
}

// VerificationReport contains the results of verifying a commit
type VerificationReport struct {
	JobID               string           `json:"job_id"`
	VerificationTime    time.Time        `json:"verification_time"`
	CountMatches        bool             `json:"count_matches"`
	CountBefore         int              `json:"count_before"`
	CountAfter          int              `json:"count_after"`
	Expected            int              `json:"expected"`
	SampleVerified      bool             `json:"sample_verified"`
	SampleSize          int              `json:"sample_size"`
	SampleDiscrepancies []RowDiscrepancy `json:"sample_discrepancies,omitempty"`
	Duration            time.Duration    `json:"duration_ns"`
}

// Verified reports whether every check passed
func (r *VerificationReport) Verified() bool {
	return r.CountMatches && r.SampleVerified
}

// Verifier checks that committed records reached the store
type Verifier struct {
	store   store.Store
	logger  *zap.Logger
	timeout time.Duration
}

// NewVerifier creates a new verifier
func NewVerifier(st store.Store, logger *zap.Logger) (*Verifier, error) {
	if st == nil {
		return nil, errors.New("store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Verifier{
		store:   st,
		logger:  logger.Named("verifier"),
		timeout: time.Minute, // Default 1-minute timeout
	}, nil
}

// WithTimeout sets a custom timeout for verification operations
func (v *Verifier) WithTimeout(timeout time.Duration) *Verifier {
	v.timeout = timeout
	return v
}

// VerifyImport compares the store's row count with the count taken before
// the commit, then checks that the newest stored rows are the imported
// batch.
func (v *Verifier) VerifyImport(
	ctx context.Context,
	jobID string,
	before int,
	imported []model.Connection,
) (*VerificationReport, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	report := &VerificationReport{
		JobID:            jobID,
		VerificationTime: start,
		CountBefore:      before,
		Expected:         len(imported),
	}

	after, err := v.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count stored records: %w", err)
	}
	report.CountAfter = after
	report.CountMatches = after-before == len(imported)
	if report.CountMatches {
		v.logger.Info("Row count verification successful",
			zap.String("job", jobID),
			zap.Int("count", after))
	} else {
		v.logger.Warn("Row count mismatch",
			zap.String("job", jobID),
			zap.Int("expected", before+len(imported)),
			zap.Int("actual", after),
			zap.Int("difference", before+len(imported)-after))
	}

	if err := v.verifySample(ctx, report, imported); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	return report, nil
}

// verifySample lists the newest rows and checks they carry the batch ID and
// names from the import. Order within the batch is not compared.
func (v *Verifier) verifySample(ctx context.Context, report *VerificationReport, imported []model.Connection) error {
	size := len(imported)
	if size > maxVerifySample {
		size = maxVerifySample
	}
	report.SampleSize = size
	if size == 0 {
		report.SampleVerified = true
		return nil
	}

	stored, err := v.store.List(ctx, size)
	if err != nil {
		return fmt.Errorf("failed to list stored records: %w", err)
	}

	names := make(map[string]int, len(imported))
	for _, c := range imported {
		names[c.FullName()]++
	}

	for i, c := range stored {
		switch {
		case c.ImportBatch != report.JobID:
			report.SampleDiscrepancies = append(report.SampleDiscrepancies, RowDiscrepancy{
				Index:       i,
				Name:        c.FullName(),
				Discrepancy: fmt.Sprintf("import batch %q, expected %q", c.ImportBatch, report.JobID),
			})
		case names[c.FullName()] == 0:
			report.SampleDiscrepancies = append(report.SampleDiscrepancies, RowDiscrepancy{
				Index:       i,
				Name:        c.FullName(),
				Discrepancy: "not part of the import",
			})
		default:
			names[c.FullName()]--
		}
	}
	if len(stored) < size {
		report.SampleDiscrepancies = append(report.SampleDiscrepancies, RowDiscrepancy{
			Index:       len(stored),
			Discrepancy: fmt.Sprintf("listed %d records, expected %d", len(stored), size),
		})
	}

	report.SampleVerified = len(report.SampleDiscrepancies) == 0
	if !report.SampleVerified {
		v.logger.Warn("Sample verification found discrepancies",
			zap.String("job", report.JobID),
			zap.Int("sampleSize", size),
			zap.Int("discrepancies", len(report.SampleDiscrepancies)))
	}
	return nil
}
