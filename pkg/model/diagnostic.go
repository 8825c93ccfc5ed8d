// pkg/model/diagnostic.go
package model

import "fmt"

// DiagnosticKind classifies a non-fatal import problem
type DiagnosticKind string

const (
	DiagnosticParseError  DiagnosticKind = "parse_error"  // malformed quoting, bad field count
	DiagnosticBlankRow    DiagnosticKind = "blank_row"    // every value empty
	DiagnosticMissingName DiagnosticKind = "missing_name" // admission invariant failed
)

// Diagnostic records one problem found while normalizing an import
type Diagnostic struct {
	Line    int            `json:"line"`             // Line in the source, 0 when not known
	Kind    DiagnosticKind `json:"kind"`             // What went wrong
	Dropped bool           `json:"dropped"`          // Whether the row was excluded from the output
	Reason  string         `json:"reason"`           // Human readable detail
	Values  []string       `json:"values,omitempty"` // Offending values (may be nil)
}

func (d Diagnostic) String() string {
	action := "kept"
	if d.Dropped {
		action = "dropped"
	}
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s (%s): %s", d.Line, d.Kind, action, d.Reason)
	}
	return fmt.Sprintf("%s (%s): %s", d.Kind, action, d.Reason)
}
