package pattern

import (
	"testing"

	"github.com/nyx-scan/nyx/internal/lang"
	"github.com/nyx-scan/nyx/internal/tsparse"
)

func findingsFor(t *testing.T, l lang.Language, ext, src string) []string {
	t.Helper()
	tree, err := tsparse.Parse(l, ext, []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()
	var ids []string
	for _, f := range Run(l, tree, []byte(src)) {
		ids = append(ids, f.RuleID)
	}
	return ids
}

func contains(ids []string, id string) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}

func TestShellTrueDetected(t *testing.T) {
	src := `import subprocess
subprocess.run(cmd, shell=True)
`
	ids := findingsFor(t, lang.Python, ".py", src)
	if !contains(ids, "py-subprocess-shell-true") {
		t.Errorf("expected py-subprocess-shell-true, got %v", ids)
	}
}

func TestShellFalseNotFlagged(t *testing.T) {
	src := `import subprocess
subprocess.run(cmd, shell=False)
`
	ids := findingsFor(t, lang.Python, ".py", src)
	if contains(ids, "py-subprocess-shell-true") {
		t.Errorf("did not expect a finding, got %v", ids)
	}
}

func TestHardcodedSecretDetected(t *testing.T) {
	src := `package main

func main() {
	password := "hunter2!"
	_ = password
}
`
	ids := findingsFor(t, lang.Go, ".go", src)
	if !contains(ids, "hardcoded-secret-assignment") {
		t.Errorf("expected hardcoded-secret-assignment, got %v", ids)
	}
}

func TestEmptyCatchDetected(t *testing.T) {
	src := `public class A {
	void m() {
		try {
			doThing();
		} catch (Exception e) {
		}
	}
}
`
	ids := findingsFor(t, lang.Java, ".java", src)
	if !contains(ids, "empty-catch-block") {
		t.Errorf("expected empty-catch-block, got %v", ids)
	}
}

func TestPatternsExposesMetadata(t *testing.T) {
	all := Patterns()
	if len(all) == 0 {
		t.Fatal("expected at least one compiled pattern")
	}
}
