package chronicle

import (
	"time"

	"github.com/google/uuid"

	"github.com/David-Botos/contact-chronicle/pkg/locator"
	"github.com/David-Botos/contact-chronicle/pkg/mapper"
	"github.com/David-Botos/contact-chronicle/pkg/normalizer"
)

// ImportJob identifies one import run
type ImportJob struct {
	ID        string    `json:"id"`         // Batch identifier stamped on every record
	Source    string    `json:"source"`     // File name or other description of the input
	CreatedAt time.Time `json:"created_at"` // Job creation timestamp
}

// NewImportJob creates a job with a fresh batch ID
func NewImportJob(source string) ImportJob {
	return ImportJob{
		ID:        uuid.New().String(),
		Source:    source,
		CreatedAt: time.Now(),
	}
}

// Import is a prepared but not yet committed import
type Import struct {
	Job      ImportJob
	Mapping  *mapper.Mapping
	Result   *normalizer.Result
	Preview  []map[string]string
	Location locator.Report
}

// ImportResult describes a finished import
type ImportResult struct {
	JobID       string            `json:"job_id"`
	Source      string            `json:"source"`
	Success     bool              `json:"success"`
	RowsRead    int               `json:"rows_read"`
	Admitted    int               `json:"admitted"`
	Dropped     int               `json:"dropped"`
	Saved       int               `json:"saved"`
	Verified    bool              `json:"verified"`
	Location    locator.Report    `json:"location"`
	Diagnostics DiagnosticSummary `json:"diagnostics"`
	Mapping     *mapper.Mapping   `json:"mapping"`
	Warnings    []string          `json:"warnings,omitempty"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time"`
	Duration    time.Duration     `json:"duration_ns"`
}

// NewImportResult initializes a result for a prepared import
func NewImportResult(imp *Import) *ImportResult {
	r := &ImportResult{
		JobID:     imp.Job.ID,
		Source:    imp.Job.Source,
		Mapping:   imp.Mapping,
		Location:  imp.Location,
		StartTime: imp.Job.CreatedAt,
		Warnings:  make([]string, 0),
	}
	if imp.Result != nil {
		r.RowsRead = imp.Result.RowsRead
		r.Admitted = len(imp.Result.Records)
		r.Dropped = imp.Result.Dropped()
	}
	return r
}

// Complete marks the import as complete and calculates duration
func (r *ImportResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// AddWarning adds a warning to the result
func (r *ImportResult) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}
