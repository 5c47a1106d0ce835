// Package pattern implements the compiled AST pattern engine:
// Run(language, tree, source) -> findings, a pure function with no side
// effects outside its returned sequence. Each compiled pattern walks a
// single pass over the syntax tree and is language-scoped; the node-kind
// dispatch it shares with internal/cfg comes from internal/nodekind.
package pattern

import (
	"sort"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/nyx-scan/nyx/internal/lang"
	"github.com/nyx-scan/nyx/internal/model"
	"github.com/nyx-scan/nyx/internal/tsparse"
)

// emitFunc is the callback a matchFunc invokes for every hit.
type emitFunc func(node *tree_sitter.Node, message string)

type matchFunc func(language lang.Language, root *tree_sitter.Node, source []byte, emit emitFunc)

type compiled struct {
	model.Pattern
	match matchFunc
}

var registry []compiled

func register(p model.Pattern, m matchFunc) {
	registry = append(registry, compiled{Pattern: p, match: m})
}

// Run executes every compiled pattern registered for language against tree,
// returning findings ordered by (line, column, rule_id), the within-file
// order downstream stages rely on. FilePath is left blank; the pipeline
// stage that owns the path fills it in before reporting.
func Run(language lang.Language, tree *tree_sitter.Tree, source []byte) []model.Finding {
	var findings []model.Finding
	root := tree.RootNode()

	for _, c := range registry {
		if c.Language != language {
			continue
		}
		c.match(language, root, source, func(node *tree_sitter.Node, message string) {
			pt := tsparse.StartPoint(node)
			findings = append(findings, model.Finding{
				Language: language,
				RuleID:   c.ID,
				Severity: c.Severity,
				Line:     int(pt.Line),
				Column:   int(pt.Column),
				Snippet:  snippet(node, source),
				Message:  message,
			})
		})
	}

	sort.SliceStable(findings, func(i, j int) bool { return model.Less(findings[i], findings[j]) })
	return findings
}

// snippet returns a single-line, length-capped excerpt of node's source
// text, suitable for the Finding wire format's "snippet" field.
func snippet(node *tree_sitter.Node, source []byte) string {
	text := tsparse.NodeText(node, source)
	const max = 160
	if len(text) > max {
		text = text[:max] + "…"
	}
	for i, r := range text {
		if r == '\n' {
			return text[:i] + "…"
		}
	}
	return text
}

// ruleSetVersion identifies the active collection of compiled patterns and
// catalogs. Bumping it makes every cached FileRecord a miss on its next
// lookup, so stale findings re-validate lazily per file rather than via an
// eager index sweep.
const ruleSetVersion = 1

// RuleSetVersion returns the version stored alongside each index record.
func RuleSetVersion() int { return ruleSetVersion }

// Patterns returns every compiled pattern's metadata, for `nyx index
// status`-style introspection and tests.
func Patterns() []model.Pattern {
	out := make([]model.Pattern, len(registry))
	for i, c := range registry {
		out[i] = c.Pattern
	}
	return out
}
