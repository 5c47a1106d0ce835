package report

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/nyx-scan/nyx/internal/model"
)

// SARIFWriter emits a SARIF 2.1.0 document: one run, one
// ReportingDescriptor per distinct rule id, one Result per finding with a
// physical location and severity level.
type SARIFWriter struct{}

func (SARIFWriter) Write(w io.Writer, findings []model.Finding) error {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("sarif: new report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("nyx", "https://github.com/nyx-scan/nyx")
	seenRules := map[string]bool{}

	for _, f := range findings {
		if !seenRules[f.RuleID] {
			run.AddRule(f.RuleID).
				WithDescription(f.RuleID).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: severityLevel(f.Severity),
				})
			seenRules[f.RuleID] = true
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.FilePath)).
				WithRegion(sarif.NewRegion().WithStartLine(f.Line).WithStartColumn(f.Column)),
		)

		result := sarif.NewRuleResult(f.RuleID).
			WithMessage(sarif.NewTextMessage(f.Message)).
			WithLevel(severityLevel(f.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}

	doc.AddRun(run)
	return doc.PrettyWrite(w)
}

// severityLevel maps Severity onto SARIF's note/warning/error levels.
func severityLevel(s model.Severity) string {
	switch s {
	case model.Critical, model.High:
		return "error"
	case model.Medium:
		return "warning"
	default:
		return "note"
	}
}
