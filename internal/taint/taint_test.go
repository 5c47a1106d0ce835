package taint

import (
	"testing"

	"github.com/nyx-scan/nyx/internal/catalog"
	"github.com/nyx-scan/nyx/internal/cfg"
	"github.com/nyx-scan/nyx/internal/lang"
	"github.com/nyx-scan/nyx/internal/tsparse"
)

func buildCFG(t *testing.T, l lang.Language, ext string, src string) *cfg.CFG {
	t.Helper()
	tree, err := tsparse.Parse(l, ext, []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()

	fns := cfg.FindFunctions(tree.RootNode(), l)
	if len(fns) == 0 {
		t.Fatalf("no functions found in: %s", src)
	}
	return cfg.Build(fns[0], []byte(src), l)
}

func TestEnvToSpawnFinding(t *testing.T) {
	src := `fn main() {
	let u = std::env::var("X").unwrap();
	std::process::Command::new(u).spawn();
}`
	g := buildCFG(t, lang.Rust, ".rs", src)
	findings := Analyse(g)
	if len(findings) != 1 {
		t.Fatalf("expected exactly 1 finding, got %d: %+v", len(findings), findings)
	}
	if findings[0].Labels&catalog.SourceEnv == 0 {
		t.Errorf("expected finding labels to include SourceEnv, got %v", findings[0].Labels)
	}
}

func TestSanitizerClearsTaint(t *testing.T) {
	src := `fn main() {
	let u = std::env::var("X").unwrap();
	let safe = shell_escape(u);
	std::process::Command::new(safe).spawn();
}`
	g := buildCFG(t, lang.Rust, ".rs", src)
	findings := Analyse(g)
	if len(findings) != 0 {
		t.Errorf("expected 0 findings after sanitiser, got %d: %+v", len(findings), findings)
	}
}

func TestBranchJoinUnion(t *testing.T) {
	src := `fn main() {
	let mut u = String::new();
	if true {
		u = std::env::var("X").unwrap();
	} else {
		u = std::env::var("Y").unwrap();
	}
	std::process::Command::new(u).spawn();
}`
	g := buildCFG(t, lang.Rust, ".rs", src)
	findings := Analyse(g)
	if len(findings) != 1 {
		t.Fatalf("expected exactly 1 finding at the join, got %d: %+v", len(findings), findings)
	}
}

func TestUntaintedArgumentProducesNoFinding(t *testing.T) {
	src := `fn main() {
	let u = String::new();
	std::process::Command::new(u).spawn();
}`
	g := buildCFG(t, lang.Rust, ".rs", src)
	findings := Analyse(g)
	if len(findings) != 0 {
		t.Errorf("expected 0 findings for an untainted argument, got %d: %+v", len(findings), findings)
	}
}

// TestFindingCarriesFullLabelSet checks a sink finding reports every label
// active on the argument, not just the bits the sink's required category
// matched: the category only decides whether to emit.
func TestFindingCarriesFullLabelSet(t *testing.T) {
	g := &cfg.CFG{
		Blocks: []*cfg.Block{
			{ID: 0, Facts: []cfg.StatementFact{
				{Kind: cfg.FactAssign, Defs: []string{"u"},
					Labels: catalog.SourceEnv | catalog.SourceFileRead,
					Point:  tsparse.Point{Line: 1, Column: 1}},
				{Kind: cfg.FactCall, Uses: []string{"u"},
					Labels: catalog.SinkProcessSpawn,
					Point:  tsparse.Point{Line: 2, Column: 1}},
			}, Succs: []cfg.Edge{{To: 1, Kind: cfg.Fallthrough}}},
			{ID: 1},
		},
		Entry: 0,
		Exit:  1,
	}

	findings := Analyse(g)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d: %+v", len(findings), findings)
	}
	// SourceFileRead is outside SinkProcessSpawn's required category but
	// must still ride along on the reported labels.
	want := catalog.SourceEnv | catalog.SourceFileRead
	if findings[0].Labels != want {
		t.Errorf("labels = %v, want %v (full in[a] bitset)", findings[0].Labels, want)
	}
}

// TestJoinIsMonotone is the Monotonicity testable property: the join
// operator never removes a bit already present in either operand.
func TestJoinIsMonotone(t *testing.T) {
	a := State{"x": catalog.SourceEnv}
	b := State{"x": catalog.SourceNetwork, "y": catalog.SourceArgv}
	merged, grew := join(a, b)
	if !grew {
		t.Fatal("expected join to report growth")
	}
	if merged["x"]&catalog.SourceEnv == 0 || merged["x"]&catalog.SourceNetwork == 0 {
		t.Errorf("join lost a bit: %v", merged["x"])
	}
	if merged["y"]&catalog.SourceArgv == 0 {
		t.Errorf("join dropped variable y: %v", merged["y"])
	}

	idempotent, grewAgain := join(merged, merged)
	if grewAgain {
		t.Error("re-joining an unchanged state should not report growth")
	}
	if len(idempotent) != len(merged) {
		t.Error("joining state with itself changed its shape")
	}
}
