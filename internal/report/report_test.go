package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nyx-scan/nyx/internal/lang"
	"github.com/nyx-scan/nyx/internal/model"
)

func sampleFindings() []model.Finding {
	return []model.Finding{
		{
			Language: lang.Python,
			RuleID:   "py-subprocess-shell-true",
			Severity: model.High,
			FilePath: "app.py",
			Line:     10,
			Column:   1,
			Snippet:  "subprocess.run(cmd, shell=True)",
			Message:  "subprocess call runs with shell=True",
		},
		{
			Language: lang.Go,
			RuleID:   "hardcoded-secret-assignment",
			Severity: model.Medium,
			FilePath: "main.go",
			Line:     4,
			Column:   2,
			Snippet:  `password := "hunter2!"`,
			Message:  "credential-looking variable assigned a literal string",
		},
	}
}

func TestJSONWriterRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSONWriter{}).Write(&buf, sampleFindings()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out []model.Finding
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(out))
	}
	if out[0].RuleID != "py-subprocess-shell-true" || out[0].FilePath != "app.py" {
		t.Errorf("unexpected round-trip: %+v", out[0])
	}
}

func TestCSVWriterIncludesHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	if err := (CSVWriter{}).Write(&buf, sampleFindings()); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
}

func TestConsoleWriterUncoloredContainsSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := (ConsoleWriter{}).Write(&buf, sampleFindings()); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "2 findings") {
		t.Errorf("expected summary line, got %q", out)
	}
	if !strings.Contains(out, "app.py") {
		t.Errorf("expected finding listing, got %q", out)
	}
}

func TestConsoleWriterEmptyFindings(t *testing.T) {
	var buf bytes.Buffer
	if err := (ConsoleWriter{}).Write(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "no findings") {
		t.Errorf("expected no-findings message, got %q", buf.String())
	}
}

func TestSARIFWriterProducesValidJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (SARIFWriter{}).Write(&buf, sampleFindings()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("sarif output is not valid JSON: %v", err)
	}
	if doc["version"] != "2.1.0" {
		t.Errorf("expected SARIF version 2.1.0, got %v", doc["version"])
	}
}

func TestManagerSelectsWriterByFormat(t *testing.T) {
	m := NewManager(WithFormat(FormatJSON))
	var buf bytes.Buffer
	if err := m.Render(&buf, sampleFindings()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "[") {
		t.Errorf("expected a JSON array, got %q", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatConsole, "json": FormatJSON, "CSV": FormatCSV, "sarif": FormatSARIF}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
