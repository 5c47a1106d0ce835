package walker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nyx-scan/nyx/internal/model"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func collect(t *testing.T, root string, opts Options) ([]File, []model.Diagnostic) {
	t.Helper()
	out := make(chan File, 64)
	diag := make(chan model.Diagnostic, 64)
	var files []File
	var diags []model.Diagnostic
	done := make(chan struct{})
	go func() {
		for f := range out {
			files = append(files, f)
		}
		close(done)
	}()
	diagDone := make(chan struct{})
	go func() {
		for d := range diag {
			diags = append(diags, d)
		}
		close(diagDone)
	}()
	if err := Walk(context.Background(), root, opts, out, diag); err != nil {
		t.Fatalf("walk: %v", err)
	}
	<-done
	<-diagDone
	return files, diags
}

func defaultOpts() Options {
	return Options{
		ExcludedDirectories: []string{"node_modules", ".git"},
		MaxFileSizeMB:       10,
	}
}

// TestWalkerFiltersDefaultTree checks the default filter decisions over a
// small mixed tree.
func TestWalkerFiltersDefaultTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "node_modules/a.js", "console.log(1)")
	writeFile(t, root, "src/a.js", "console.log(2)")
	writeFile(t, root, "image.png", "\x89PNG")

	files, _ := collect(t, root, defaultOpts())
	if len(files) != 1 {
		t.Fatalf("expected exactly 1 accepted file, got %d: %+v", len(files), files)
	}
	if files[0].RelPath != "src/a.js" {
		t.Errorf("expected src/a.js, got %s", files[0].RelPath)
	}
}

func TestWalkerRespectsMaxFileSize(t *testing.T) {
	root := t.TempDir()
	big := make([]byte, 2*1024*1024)
	writeFile(t, root, "big.go", string(big))

	opts := defaultOpts()
	opts.MaxFileSizeMB = 1
	files, _ := collect(t, root, opts)
	if len(files) != 0 {
		t.Errorf("expected oversize file to be rejected, got %+v", files)
	}
}

func TestWalkerSkipsHiddenByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".hidden/a.go", "package a")
	writeFile(t, root, "visible/a.go", "package a")

	opts := defaultOpts()
	opts.ScanHiddenFiles = false
	files, _ := collect(t, root, opts)
	if len(files) != 1 || files[0].RelPath != "visible/a.go" {
		t.Errorf("expected only visible/a.go, got %+v", files)
	}
}

func TestWalkerRespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "generated/\n*.log\n")
	writeFile(t, root, "generated/a.go", "package a")
	writeFile(t, root, "keep.go", "package a")
	writeFile(t, root, "debug.log", "noise")

	opts := defaultOpts()
	opts.ReadVCSIgnore = true
	files, _ := collect(t, root, opts)
	if len(files) != 1 || files[0].RelPath != "keep.go" {
		t.Errorf("expected only keep.go, got %+v", files)
	}
}

// TestWalkerWideTreeVisitsEveryFileOnce drives the concurrent subtree
// fan-out over a wide, nested layout and checks no file is dropped or
// emitted twice.
func TestWalkerWideTreeVisitsEveryFileOnce(t *testing.T) {
	root := t.TempDir()
	want := map[string]bool{}
	for d := 0; d < 16; d++ {
		for f := 0; f < 4; f++ {
			rel := filepath.Join("pkg", string(rune('a'+d)), "deep", "mod"+string(rune('0'+f))+".go")
			writeFile(t, root, rel, "package deep")
			want[filepath.ToSlash(rel)] = true
		}
	}

	files, _ := collect(t, root, defaultOpts())
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(files))
	}
	seen := map[string]bool{}
	for _, f := range files {
		if seen[f.RelPath] {
			t.Fatalf("file emitted twice: %s", f.RelPath)
		}
		seen[f.RelPath] = true
		if !want[f.RelPath] {
			t.Fatalf("unexpected file: %s", f.RelPath)
		}
	}
}

func TestWalkerLogSkipsEmitsDiagnostics(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "node_modules/a.js", "console.log(1)")

	opts := defaultOpts()
	opts.LogSkips = true
	_, diags := collect(t, root, opts)
	if len(diags) == 0 {
		t.Error("expected at least one diagnostic for the skipped directory")
	}
}
