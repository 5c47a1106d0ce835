package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSeverityIsTotallyOrdered(t *testing.T) {
	if !(Low < Medium && Medium < High && High < Critical) {
		t.Fatal("severity ordering broken")
	}
}

func TestParseSeverity(t *testing.T) {
	for _, name := range []string{"Low", "Medium", "High", "Critical"} {
		sev, err := ParseSeverity(name)
		if err != nil {
			t.Fatalf("ParseSeverity(%q): %v", name, err)
		}
		if sev.String() != name {
			t.Errorf("round-trip %q -> %q", name, sev.String())
		}
	}
	if _, err := ParseSeverity("critical"); err == nil {
		t.Error("severity names are case-sensitive on the wire")
	}
}

// TestFindingJSONRoundTrip checks findings -> JSON -> findings is the
// identity on (rule, file, line, column, severity, message).
func TestFindingJSONRoundTrip(t *testing.T) {
	in := []Finding{
		{RuleID: "tainted-data-flow", Severity: High, FilePath: "src/a.rs", Line: 2, Column: 5,
			Snippet: "Command::new(u).spawn();", Message: "tainted value reaches sink (source at line 1)"},
		{RuleID: "empty-catch-block", Severity: Low, FilePath: "App.java", Line: 40, Column: 9,
			Snippet: "catch (Exception e) {}", Message: "empty catch block swallows the exception"},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out []Finding
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLessOrdersByLineColumnRule(t *testing.T) {
	a := Finding{RuleID: "b-rule", Line: 1, Column: 1}
	b := Finding{RuleID: "a-rule", Line: 1, Column: 2}
	c := Finding{RuleID: "a-rule", Line: 2, Column: 1}
	if !Less(a, b) || !Less(b, c) || Less(c, a) {
		t.Error("Less must order by (line, column, rule_id)")
	}
	tie1 := Finding{RuleID: "a", Line: 3, Column: 3}
	tie2 := Finding{RuleID: "b", Line: 3, Column: 3}
	if !Less(tie1, tie2) {
		t.Error("rule_id breaks (line, column) ties")
	}
}
