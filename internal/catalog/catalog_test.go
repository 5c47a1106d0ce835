package catalog

import (
	"testing"

	"github.com/nyx-scan/nyx/internal/lang"
)

func TestRustEnvToSpawn(t *testing.T) {
	src, ok := Lookup(lang.Rust, "std::env::var")
	if !ok || src.Role != RoleSource || src.Labels != SourceEnv {
		t.Fatalf("expected std::env::var to be a SourceEnv, got %+v ok=%v", src, ok)
	}
	sink, ok := Lookup(lang.Rust, "spawn")
	if !ok || sink.Role != RoleSink || sink.Labels != SinkProcessSpawn {
		t.Fatalf("expected spawn to be a SinkProcessSpawn, got %+v ok=%v", sink, ok)
	}
	if Category(sink.Labels)&src.Labels == 0 {
		t.Fatalf("expected SinkProcessSpawn category to intersect SourceEnv")
	}
}

func TestRustSanitizerClearsSourceCategory(t *testing.T) {
	san, ok := Lookup(lang.Rust, "shell_escape")
	if !ok || san.Role != RoleSanitizer {
		t.Fatalf("expected shell_escape to be a sanitiser, got %+v ok=%v", san, ok)
	}
	if Category(san.Labels)&SourceEnv == 0 {
		t.Fatalf("expected SanitizerShellEscape category to cover SourceEnv")
	}
}

func TestUnknownCallIsNotCataloged(t *testing.T) {
	if _, ok := Lookup(lang.Rust, "unwrap"); ok {
		t.Fatalf("unwrap should not be cataloged")
	}
}

func TestPythonEnvMember(t *testing.T) {
	lbl, ok := LookupMember(lang.Python, "os.environ")
	if !ok || lbl != SourceEnv {
		t.Fatalf("expected os.environ member access to be SourceEnv, got %v ok=%v", lbl, ok)
	}
}
