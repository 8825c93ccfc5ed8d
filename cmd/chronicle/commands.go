package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/David-Botos/contact-chronicle/pkg/aggregate"
	"github.com/David-Botos/contact-chronicle/pkg/chronicle"
	"github.com/David-Botos/contact-chronicle/pkg/mapper"
	"github.com/David-Botos/contact-chronicle/pkg/model"
)

var (
	mapOverrides []string
	commit       bool

	filterCompany  string
	filterPosition string
	sortField      string
	sortOrder      string
	page           int
	pageSize       int

	topField string
	topCount int
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Normalize a LinkedIn export and optionally save it",
	Long: `Parses the CSV export, suggests a field mapping and prints the
diagnostics, mapping and a preview of the first rows.

Override the suggested mapping with --map "Field=Column" (repeatable; an
empty column unmaps the field). With --commit the records are saved to the
configured store and the stored row count is verified.

Example:
  chronicle import Connections.csv --map "Company=Employer" --commit`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print a filtered, sorted page of connections",
	RunE:  runList,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary statistics",
	RunE:  runStats,
}

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Print cumulative connections by month",
	RunE:  runSeries,
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Print the most common companies or positions",
	RunE:  runTop,
}

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Print map markers for located connections",
	RunE:  runMap,
}

func init() {
	importCmd.Flags().StringArrayVar(&mapOverrides, "map", nil, "Override a field mapping as Field=Column")
	importCmd.Flags().BoolVar(&commit, "commit", false, "Save the records to the configured store")

	listCmd.Flags().StringVar(&filterCompany, "company", "", "Filter by company substring")
	listCmd.Flags().StringVar(&filterPosition, "position", "", "Filter by position substring")
	listCmd.Flags().StringVar(&sortField, "sort", "", "Sort by field (e.g. company, \"Connected On\")")
	listCmd.Flags().StringVar(&sortOrder, "order", "asc", "Sort order: asc or desc")
	listCmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	listCmd.Flags().IntVar(&pageSize, "page-size", 0, "Rows per page (default PAGE_SIZE)")

	topCmd.Flags().StringVar(&topField, "field", "company", "Field to rank: company or position")
	topCmd.Flags().IntVar(&topCount, "n", 0, "Number of entries (default TOP_N)")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	overrides, err := parseOverrides(mapOverrides)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open import: %w", err)
	}
	defer f.Close()

	session, cleanup, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	imp, err := session.Prepare(f, filepath.Base(args[0]), overrides)
	if err != nil {
		return err
	}

	out := struct {
		Job          chronicle.ImportJob           `json:"job"`
		Mapping      *mapper.Mapping               `json:"mapping"`
		Preview      []map[string]string           `json:"preview"`
		Result       *chronicle.ImportResult       `json:"result"`
		Verification *chronicle.VerificationReport `json:"verification,omitempty"`
		Metrics      json.RawMessage               `json:"metrics,omitempty"`
	}{
		Job:     imp.Job,
		Mapping: imp.Mapping,
		Preview: imp.Preview,
	}

	if !commit {
		out.Result = session.Report(imp)
		out.Result.Complete(true)
		session.Metrics().RecordImport(out.Result)
		return writeJSON(cmd, out)
	}

	result, verification, err := session.Commit(ctx, imp)
	out.Result, out.Verification = result, verification
	if err != nil {
		_ = writeJSON(cmd, out)
		return err
	}
	session.Metrics().Complete()
	fmt.Fprint(cmd.ErrOrStderr(), session.Metrics().GenerateReport())
	if out.Metrics, err = session.Metrics().ToJSON(); err != nil {
		return fmt.Errorf("failed to encode import metrics: %w", err)
	}
	return writeJSON(cmd, out)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	dir, err := aggregate.ParseDirection(sortOrder)
	if err != nil {
		return err
	}
	var field model.Field
	if sortField != "" {
		f, ok := model.LookupField(sortField)
		if !ok {
			return fmt.Errorf("unknown sort field %q", sortField)
		}
		field = f
	}

	session, cleanup, err := loadSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := session.Table(chronicle.TableQuery{
		Company:   filterCompany,
		Position:  filterPosition,
		SortField: field,
		Direction: dir,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return err
	}
	// Records shadows the embedded page's raw records
	return writeJSON(cmd, struct {
		Source  string `json:"source"`
		Summary string `json:"summary"`
		aggregate.Page
		Records []aggregate.Row `json:"records"`
	}{session.Source(), p.Summary(), p, aggregate.TableRows(p.Records)})
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	session, cleanup, err := loadSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	return writeJSON(cmd, session.Stats())
}

func runSeries(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	session, cleanup, err := loadSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	return writeJSON(cmd, session.Series())
}

func runTop(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	field, ok := model.LookupField(topField)
	if !ok {
		return fmt.Errorf("unknown field %q", topField)
	}

	session, cleanup, err := loadSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	return writeJSON(cmd, session.Top(field, topCount))
}

func runMap(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	session, cleanup, err := loadSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	stats := session.Stats()
	return writeJSON(cmd, struct {
		Located  int                  `json:"located"`
		Coverage float64              `json:"location_coverage_percent"`
		Points   []aggregate.MapPoint `json:"points"`
	}{stats.Located, stats.LocationCoverage, session.MapPoints()})
}

// parseOverrides turns "Field=Column" flags into a field -> column map
func parseOverrides(flags []string) (map[string]string, error) {
	overrides := make(map[string]string, len(flags))
	for _, flag := range flags {
		field, column, ok := strings.Cut(flag, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("invalid --map %q: expected Field=Column", flag)
		}
		overrides[strings.TrimSpace(field)] = strings.TrimSpace(column)
	}
	return overrides, nil
}
