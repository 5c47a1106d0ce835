package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/nyx-scan/nyx/internal/model"
)

// ConsoleWriter renders a severity-count header followed by per-finding
// detail. Color, when set, renders severities with github.com/fatih/color
// so they stand out in a terminal.
type ConsoleWriter struct {
	Color bool
}

func (cw ConsoleWriter) Write(w io.Writer, findings []model.Finding) error {
	if len(findings) == 0 {
		fmt.Fprintln(w, "no findings")
		return nil
	}

	counts := map[model.Severity]int{}
	for _, f := range findings {
		counts[f.Severity]++
	}
	fmt.Fprintf(w, "%d findings (critical=%d high=%d medium=%d low=%d)\n\n",
		len(findings), counts[model.Critical], counts[model.High], counts[model.Medium], counts[model.Low])

	for _, f := range findings {
		sev := f.Severity.String()
		if cw.Color {
			sev = cw.colorize(f.Severity, sev)
		}
		fmt.Fprintf(w, "%s:%d:%d  [%s]  %s: %s\n", f.FilePath, f.Line, f.Column, sev, f.RuleID, f.Message)
		if f.Snippet != "" {
			fmt.Fprintf(w, "    %s\n", f.Snippet)
		}
	}
	return nil
}

func (ConsoleWriter) colorize(sev model.Severity, text string) string {
	switch sev {
	case model.Critical:
		return color.New(color.FgRed, color.Bold).Sprint(text)
	case model.High:
		return color.New(color.FgRed).Sprint(text)
	case model.Medium:
		return color.New(color.FgYellow).Sprint(text)
	default:
		return color.New(color.FgCyan).Sprint(text)
	}
}
