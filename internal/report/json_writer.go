package report

import (
	"encoding/json"
	"io"

	"github.com/nyx-scan/nyx/internal/model"
)

// JSONWriter emits findings as a top-level JSON array. model.Finding's
// json tags carry the wire field names, so this is a thin encoder wrapper.
type JSONWriter struct{}

func (JSONWriter) Write(w io.Writer, findings []model.Finding) error {
	if findings == nil {
		findings = []model.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(findings)
}
