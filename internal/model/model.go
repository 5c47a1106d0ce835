// Package model holds the data types shared across Nyx's pipeline stages:
// Severity, Pattern, Finding, and the persisted FileRecord/ProjectRecord
// shapes. Keeping them in one leaf package lets internal/pattern,
// internal/cfg, internal/taint, internal/index, and internal/report all
// depend on the same vocabulary without importing each other.
package model

import (
	"fmt"
	"time"

	"github.com/nyx-scan/nyx/internal/lang"
)

// Severity is totally ordered Low < Medium < High < Critical.
type Severity int

const (
	Low Severity = iota
	Medium
	High
	Critical
)

func (s Severity) String() string {
	switch s {
	case Low:
		return "Low"
	case Medium:
		return "Medium"
	case High:
		return "High"
	case Critical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// MarshalJSON renders the severity as its wire-format name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON parses the wire-format severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	name := string(data)
	if len(name) >= 2 && name[0] == '"' {
		name = name[1 : len(name)-1]
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// ParseSeverity parses a severity name case-sensitively against the wire
// format ("Low", "Medium", "High", "Critical").
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "Low":
		return Low, nil
	case "Medium":
		return Medium, nil
	case "High":
		return High, nil
	case "Critical":
		return Critical, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}

// Pattern is a named, immutable compiled query against one Language's
// syntax tree. Patterns are constructed once at startup (internal/pattern)
// and never mutated afterward.
type Pattern struct {
	ID          string
	Language    lang.Language
	Title       string
	Severity    Severity
	Description string
	Query       string
	Captures    []string
}

// Finding is a single reported issue at a specific location, attributable
// to one rule. Findings are value-equal on (RuleID, FilePath, Line, Column);
// duplicates with the same tuple are collapsed.
type Finding struct {
	Language lang.Language `json:"-"`
	RuleID   string        `json:"rule"`
	Severity Severity      `json:"severity"`
	FilePath string        `json:"file"`
	Line     int           `json:"line"`
	Column   int           `json:"column"`
	Snippet  string        `json:"snippet"`
	Message  string        `json:"message"`
}

// Key returns the dedup identity tuple for a Finding.
func (f Finding) Key() [4]string {
	return [4]string{f.RuleID, f.FilePath, fmt.Sprint(f.Line), fmt.Sprint(f.Column)}
}

// Less orders findings within a file by (line, column, rule_id), the order
// they are emitted in before handoff to the finding queue.
func Less(a, b Finding) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	if a.Column != b.Column {
		return a.Column < b.Column
	}
	return a.RuleID < b.RuleID
}

// FileRecord is the unit of incremental-index reuse: one file's findings,
// keyed by content hash and the rule-set version that produced them.
type FileRecord struct {
	ProjectID      string
	RelPath        string
	ContentHash    string
	ModifiedTime   time.Time
	RuleSetVersion int
	Findings       []Finding
}

// ProjectRecord tracks one scanned root's lifecycle in the index.
type ProjectRecord struct {
	ProjectID    string
	RootPath     string
	CreatedAt    time.Time
	LastScanAt   time.Time
	FileCount    int
	FindingCount int
}

// Diagnostic is a non-fatal per-file problem surfaced to the reporter
// instead of aborting the scan.
type Diagnostic struct {
	Path    string
	Message string
}
