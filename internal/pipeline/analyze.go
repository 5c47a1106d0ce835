package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/nyx-scan/nyx/internal/catalog"
	"github.com/nyx-scan/nyx/internal/cfg"
	"github.com/nyx-scan/nyx/internal/index"
	"github.com/nyx-scan/nyx/internal/lang"
	"github.com/nyx-scan/nyx/internal/model"
	"github.com/nyx-scan/nyx/internal/pattern"
	"github.com/nyx-scan/nyx/internal/taint"
	"github.com/nyx-scan/nyx/internal/tsparse"
	"github.com/nyx-scan/nyx/internal/walker"
)

// analyzeFile runs one file through the stages opts.Mode selects. A
// malformed source file degrades its own result (a diagnostic-carrying
// fileResult) and never aborts the run. Index writes happen downstream in
// the single writer stage; this function only reads from the store (cache
// lookup).
func analyzeFile(ctx context.Context, f walker.File, store writer, opts Options) fileResult {
	if err := ctx.Err(); err != nil {
		return fileResult{file: f, err: err}
	}

	info, err := os.Stat(f.AbsPath)
	if err != nil {
		return fileResult{file: f, err: fmt.Errorf("stat %s: %w", f.RelPath, err)}
	}
	data, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return fileResult{file: f, err: fmt.Errorf("read %s: %w", f.RelPath, err)}
	}

	hash := index.HashFile(data)

	if opts.UseIndex && store != nil {
		if rec, ok, lookupErr := store.Lookup(opts.ProjectID, f.RelPath, hash, opts.RuleSetVersion); lookupErr == nil && ok {
			return fileResult{file: f, findings: rec.Findings, hash: hash, modTime: info.ModTime(), cached: true}
		}
	}

	ext := extOf(f.RelPath)
	tree, err := tsparse.Parse(f.Language, ext, data)
	if err != nil {
		return fileResult{file: f, err: fmt.Errorf("parse %s: %w", f.RelPath, err)}
	}
	defer tree.Close()

	var findings []model.Finding
	if opts.Mode == ModeAST || opts.Mode == ModeFull {
		findings = pattern.Run(f.Language, tree, data)
	}
	if (opts.Mode == ModeCFG || opts.Mode == ModeFull) && lang.HasCFGBackend(f.Language) {
		findings = append(findings, analyzeFunctions(tree, data, f)...)
	}

	for i := range findings {
		findings[i].FilePath = f.RelPath
	}
	findings = dedupe(findings)
	sort.SliceStable(findings, func(i, j int) bool { return model.Less(findings[i], findings[j]) })

	return fileResult{file: f, findings: findings, hash: hash, modTime: info.ModTime()}
}

// analyzeFunctions builds a CFG per function and, in ModeCFG/ModeFull, runs
// the taint engine over it, mapping each taint.Finding into a reportable
// model.Finding.
func analyzeFunctions(tree *tree_sitter.Tree, data []byte, f walker.File) []model.Finding {
	var out []model.Finding
	root := tree.RootNode()
	for _, fn := range cfg.FindFunctions(root, f.Language) {
		g := cfg.Build(fn, data, f.Language)
		for _, tf := range taint.Analyse(g) {
			out = append(out, model.Finding{
				Language: f.Language,
				RuleID:   "tainted-data-flow",
				Severity: severityFor(tf.Labels),
				Line:     int(tf.SinkSite.Line),
				Column:   int(tf.SinkSite.Column),
				Snippet:  sourceLine(data, int(tf.SinkSite.Line)),
				Message:  fmt.Sprintf("tainted value reaches sink (source at line %d)", tf.SourceSite.Line),
			})
		}
	}
	return out
}

// severityFor grades a taint finding by which source categories feed the
// sink: network- or user-input-derived taint outranks environment/argv.
func severityFor(labels catalog.Label) model.Severity {
	if labels&(catalog.SourceNetwork|catalog.SourceUserInput) != 0 {
		return model.Critical
	}
	return model.High
}

// sourceLine returns the 1-based line of data, trimmed, for snippet use.
func sourceLine(data []byte, line int) string {
	start := 0
	for n := 1; n < line; n++ {
		i := bytes.IndexByte(data[start:], '\n')
		if i < 0 {
			return ""
		}
		start += i + 1
	}
	end := len(data)
	if i := bytes.IndexByte(data[start:], '\n'); i >= 0 {
		end = start + i
	}
	return strings.TrimSpace(string(data[start:end]))
}

func extOf(relPath string) string {
	for i := len(relPath) - 1; i >= 0 && relPath[i] != '/'; i-- {
		if relPath[i] == '.' {
			return relPath[i:]
		}
	}
	return ""
}
