package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/David-Botos/contact-chronicle/pkg/config"
)

const exportCSV = "Notes:\n" +
	"\"When exporting your connection data, you may notice that some of the email addresses are missing.\"\n" +
	"\n" +
	"First Name,Last Name,URL,Email Address,Company,Position,Connected On\n" +
	"Jo,Lee,https://www.linkedin.com/in/jolee,,Google,Engineer,15 Mar 2024\n" +
	",Kim,,,,,02 Jan 2023\n" +
	"Ann,Roe,,,,Designer,20 Apr 2024\n"

// execute runs the root command with fresh flag values
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	verbose, timeout, csvPath, envFile = false, 2*time.Minute, "", ".env"
	mapOverrides, commit = nil, false
	filterCompany, filterPosition, sortField, sortOrder, page, pageSize = "", "", "", "asc", 1, 0
	topField, topCount = "company", 0

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeExport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Connections.csv")
	require.NoError(t, os.WriteFile(path, []byte(exportCSV), 0o600))
	return path
}

func TestParseOverrides(t *testing.T) {
	got, err := parseOverrides([]string{"Company=Employer", " Position = Title ", "URL="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Company":  "Employer",
		"Position": "Title",
		"URL":      "",
	}, got)

	_, err = parseOverrides([]string{"Company"})
	assert.Error(t, err)
	_, err = parseOverrides([]string{"=Employer"})
	assert.Error(t, err)
}

func TestBuildLogger(t *testing.T) {
	l, err := buildLogger(&config.Config{LogLevel: "warn", LogFormat: "json"}, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	l, err = buildLogger(&config.Config{LogLevel: "warn", LogFormat: "console"}, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = buildLogger(&config.Config{LogLevel: "loud"}, false)
	assert.Error(t, err)
}

func TestListFromCSVFallback(t *testing.T) {
	t.Setenv("STORE_DRIVER", "none")
	t.Setenv("LOG_LEVEL", "error")
	path := writeExport(t)

	stdout, _, err := execute(t, "--csv", path, "list", "--company", "goog")
	require.NoError(t, err)

	var out struct {
		Source  string `json:"source"`
		Summary string `json:"summary"`
		Total   int    `json:"total"`
		Records []struct {
			FirstName string `json:"first_name"`
			Location  string `json:"location"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "csv:Connections.csv", out.Source)
	assert.Equal(t, 1, out.Total)
	assert.Equal(t, "Showing 1 to 1 of 1", out.Summary)
	require.Len(t, out.Records, 1)
	assert.Equal(t, "Jo", out.Records[0].FirstName)
	assert.Equal(t, "San Francisco, CA", out.Records[0].Location)
}

func TestListShowsPlaceholders(t *testing.T) {
	t.Setenv("STORE_DRIVER", "none")
	t.Setenv("LOG_LEVEL", "error")
	path := writeExport(t)

	stdout, _, err := execute(t, "--csv", path, "list", "--sort", "first name")
	require.NoError(t, err)

	var out struct {
		Records []map[string]string `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Len(t, out.Records, 2)

	ann := out.Records[0]
	assert.Equal(t, "Ann", ann["first_name"])
	assert.Equal(t, "Not specified", ann["company"])
	assert.Equal(t, "Not specified", ann["email_address"])
	assert.Equal(t, "Designer", ann["position"])
	assert.Equal(t, "Apr 20, 2024", ann["connected_on"])

	jo := out.Records[1]
	assert.Equal(t, "Mar 15, 2024", jo["connected_on"])
	assert.Equal(t, "https://www.linkedin.com/in/jolee", jo["url"])
}

func TestListHugePage(t *testing.T) {
	t.Setenv("STORE_DRIVER", "none")
	t.Setenv("LOG_LEVEL", "error")
	path := writeExport(t)

	stdout, _, err := execute(t, "--csv", path, "list", "--page", "9223372036854775807", "--page-size", "2")
	require.NoError(t, err)

	var out struct {
		TotalPages int               `json:"total_pages"`
		Records    []json.RawMessage `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 1, out.TotalPages)
	assert.Empty(t, out.Records)
}

func TestListRejectsBadFlags(t *testing.T) {
	t.Setenv("STORE_DRIVER", "none")
	t.Setenv("LOG_LEVEL", "error")
	path := writeExport(t)

	_, _, err := execute(t, "--csv", path, "list", "--order", "sideways")
	assert.Error(t, err)

	_, _, err = execute(t, "--csv", path, "list", "--sort", "Phone")
	assert.Error(t, err)
}

func TestNoDataAnywhere(t *testing.T) {
	t.Setenv("STORE_DRIVER", "none")
	t.Setenv("LOG_LEVEL", "error")

	_, _, err := execute(t, "--csv", filepath.Join(t.TempDir(), "missing.csv"), "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not load connections")
}

func TestImportCommitThenRead(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "chronicle.db"))
	t.Setenv("LOG_LEVEL", "error")
	path := writeExport(t)

	stdout, _, err := execute(t, "import", path)
	require.NoError(t, err)
	var preview struct {
		Preview []map[string]string `json:"preview"`
		Result  struct {
			Admitted int `json:"admitted"`
			Dropped  int `json:"dropped"`
			Saved    int `json:"saved"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &preview))
	assert.Len(t, preview.Preview, 2)
	assert.Equal(t, 2, preview.Result.Admitted)
	assert.Equal(t, 1, preview.Result.Dropped)
	assert.Zero(t, preview.Result.Saved)

	stdout, stderr, err := execute(t, "import", path, "--commit")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Import Report")
	var committed struct {
		Result struct {
			Saved    int  `json:"saved"`
			Verified bool `json:"verified"`
		} `json:"result"`
		Metrics struct {
			Imports    int `json:"imports"`
			TotalSaved int `json:"totalSaved"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &committed))
	assert.Equal(t, 2, committed.Result.Saved)
	assert.Equal(t, 1, committed.Metrics.Imports)
	assert.Equal(t, 2, committed.Metrics.TotalSaved)
	assert.True(t, committed.Result.Verified)

	stdout, _, err = execute(t, "stats")
	require.NoError(t, err)
	var stats struct {
		Total          int `json:"total"`
		MostActiveYear int `json:"most_active_year"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2024, stats.MostActiveYear)

	stdout, _, err = execute(t, "top", "--field", "position", "--n", "1")
	require.NoError(t, err)
	var top []struct {
		Value string `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &top))
	assert.Len(t, top, 1)

	stdout, _, err = execute(t, "map")
	require.NoError(t, err)
	var markers struct {
		Located int `json:"located"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &markers))
	assert.Equal(t, 2, markers.Located)
}

func TestImportRejectsBadOverride(t *testing.T) {
	t.Setenv("STORE_DRIVER", "none")
	t.Setenv("LOG_LEVEL", "error")
	path := writeExport(t)

	_, _, err := execute(t, "import", path, "--map", "Company")
	assert.Error(t, err)

	_, _, err = execute(t, "import", path, "--map", "Company=Employer")
	assert.Error(t, err)
}
