package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/nyx-scan/nyx/internal/model"
)

// CSVWriter emits one row per finding, columns matching the JSON wire
// format's field order for easy spreadsheet import.
type CSVWriter struct{}

var csvHeader = []string{"file", "rule", "severity", "line", "column", "message", "snippet"}

func (CSVWriter) Write(w io.Writer, findings []model.Finding) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, f := range findings {
		row := []string{
			f.FilePath,
			f.RuleID,
			f.Severity.String(),
			strconv.Itoa(f.Line),
			strconv.Itoa(f.Column),
			f.Message,
			f.Snippet,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
