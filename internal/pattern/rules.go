package pattern

import (
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/nyx-scan/nyx/internal/catalog"
	"github.com/nyx-scan/nyx/internal/lang"
	"github.com/nyx-scan/nyx/internal/model"
	"github.com/nyx-scan/nyx/internal/nodekind"
	"github.com/nyx-scan/nyx/internal/tsparse"
)

func init() {
	register(model.Pattern{
		ID:          "py-subprocess-shell-true",
		Language:    lang.Python,
		Title:       "subprocess call with shell=True",
		Severity:    model.High,
		Description: "Calling subprocess.run/call/Popen with shell=True lets shell metacharacters in the command string be interpreted, a classic command-injection vector.",
		Query:       "call_expression where function resolves to subprocess.{run,call,Popen} and a shell=True keyword_argument is present",
		Captures:    []string{"call"},
	}, matchShellTrue)

	register(model.Pattern{
		ID:          "hardcoded-secret-assignment",
		Language:    lang.Python, // registered for the other languages below via registerForRemainingLanguages
		Title:       "hardcoded credential",
		Severity:    model.Medium,
		Description: "A variable named like a credential (password, secret, token, api key) is assigned a string literal directly in source.",
		Query:       "assignment_expression where left matches /password|secret|token|api_key|apikey/i and right is a string literal",
		Captures:    []string{"assignment"},
	}, matchHardcodedSecret)
	registerForRemainingLanguages("hardcoded-secret-assignment", model.Medium, matchHardcodedSecret)

	register(model.Pattern{
		ID:          "sql-string-concatenation",
		Language:    lang.Python,
		Title:       "SQL query built via string concatenation",
		Severity:    model.High,
		Description: "A call recognised as a SQL sink receives an argument built by string concatenation rather than parameter binding.",
		Query:       "call_expression where function resolves to a cataloged SQL sink and an argument contains a binary concatenation",
		Captures:    []string{"call"},
	}, matchSQLConcatenation)
	registerForRemainingLanguages("sql-string-concatenation", model.High, matchSQLConcatenation)

	register(model.Pattern{
		ID:          "empty-catch-block",
		Language:    lang.Java,
		Title:       "empty catch block",
		Severity:    model.Low,
		Description: "A catch clause with an empty body silently swallows the exception.",
		Query:       "catch_clause where body has no statements",
		Captures:    []string{"catch"},
	}, matchEmptyCatch)
	registerForRemainingLanguages("empty-catch-block", model.Low, matchEmptyCatch)
}

// registerForRemainingLanguages wires the same matchFunc to every Language
// besides the one already registered above, since these checks are
// node-kind-driven (via internal/nodekind and internal/catalog) rather than
// tied to one grammar's field layout.
func registerForRemainingLanguages(id string, severity model.Severity, m matchFunc) {
	seen := map[lang.Language]bool{}
	var template model.Pattern
	for _, c := range registry {
		if c.ID == id {
			seen[c.Language] = true
			template = c.Pattern
		}
	}
	for _, l := range lang.AllLanguages() {
		if seen[l] {
			continue
		}
		p := template
		p.Language = l
		register(p, m)
	}
}

var secretNamePattern = regexp.MustCompile(`(?i)(password|secret|token|api[_-]?key)`)

func isStringLiteral(kind string) bool {
	return strings.Contains(kind, "string") && !strings.Contains(kind, "interpolation")
}

// lastSegment strips a qualified callee down to its final "."- or
// "::"-delimited segment ("subprocess.run" -> "run").
func lastSegment(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func calleeText(call *tree_sitter.Node, source []byte) string {
	for _, field := range []string{"function", "method", "name"} {
		if n := call.ChildByFieldName(field); n != nil {
			return tsparse.NodeText(n, source)
		}
	}
	if call.NamedChildCount() > 0 {
		return tsparse.NodeText(call.NamedChild(0), source)
	}
	return ""
}

// matchShellTrue looks for a subprocess-family call carrying a shell=True
// keyword argument. Purely syntactic: callee name plus argument
// inspection, no dataflow.
func matchShellTrue(language lang.Language, root *tree_sitter.Node, source []byte, emit emitFunc) {
	table := nodekind.ForLanguage(language)
	tsparse.Walk(root, func(n *tree_sitter.Node) bool {
		if table[n.Kind()] != nodekind.Call {
			return true
		}
		callee := lastSegment(calleeText(n, source))
		if callee != "run" && callee != "call" && callee != "Popen" && callee != "check_output" {
			return true
		}
		args := n.ChildByFieldName("arguments")
		if args == nil {
			return true
		}
		for i := uint(0); i < args.NamedChildCount(); i++ {
			kw := args.NamedChild(i)
			if kw.Kind() != "keyword_argument" {
				continue
			}
			name := kw.ChildByFieldName("name")
			value := kw.ChildByFieldName("value")
			if name == nil || value == nil {
				continue
			}
			if tsparse.NodeText(name, source) == "shell" && tsparse.NodeText(value, source) == "True" {
				emit(n, "subprocess call runs with shell=True")
			}
		}
		return true
	})
}

// matchHardcodedSecret flags `name = "literal"` assignments where name
// looks like a credential. Language-agnostic: it only consults
// nodekind.Assignment, not per-language field layouts beyond "left"/"right"
// with a first/last-named-child fallback already established in cfg's
// assignmentFact.
func matchHardcodedSecret(language lang.Language, root *tree_sitter.Node, source []byte, emit emitFunc) {
	table := nodekind.ForLanguage(language)
	tsparse.Walk(root, func(n *tree_sitter.Node) bool {
		if table[n.Kind()] != nodekind.Assignment {
			return true
		}
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left == nil && n.NamedChildCount() > 0 {
			left = n.NamedChild(0)
		}
		if right == nil && n.NamedChildCount() > 1 {
			right = n.NamedChild(n.NamedChildCount() - 1)
		}
		// Go's short_var_declaration and assignment_statement wrap each side
		// in an expression_list; a single-element list stands for its element.
		if right != nil && right.Kind() == "expression_list" && right.NamedChildCount() == 1 {
			right = right.NamedChild(0)
		}
		if left == nil || right == nil {
			return true
		}
		if !secretNamePattern.MatchString(tsparse.NodeText(left, source)) {
			return true
		}
		if !isStringLiteral(right.Kind()) {
			return true
		}
		if len(tsparse.NodeText(right, source)) <= 2 { // empty/near-empty literal, not a real secret
			return true
		}
		emit(n, "credential-looking variable assigned a literal string")
		return true
	})
}

// matchSQLConcatenation flags a cataloged SQL-sink call whose argument
// subtree contains a binary concatenation expression, the syntactic
// shape underlying SQL injection before any taint is involved.
func matchSQLConcatenation(language lang.Language, root *tree_sitter.Node, source []byte, emit emitFunc) {
	table := nodekind.ForLanguage(language)
	tsparse.Walk(root, func(n *tree_sitter.Node) bool {
		if table[n.Kind()] != nodekind.Call {
			return true
		}
		entry, ok := catalog.Lookup(language, calleeText(n, source))
		if !ok || entry.Labels&catalog.SinkSQLQuery == 0 {
			return true
		}
		args := n.ChildByFieldName("arguments")
		if args == nil {
			return true
		}
		found := false
		tsparse.Walk(args, func(a *tree_sitter.Node) bool {
			switch a.Kind() {
			case "binary_expression", "binary_operator", "additive_expression", "concatenation_expression":
				found = true
			}
			return !found
		})
		if found {
			emit(n, "SQL query argument built via string concatenation")
		}
		return true
	})
}

// matchEmptyCatch flags a catch clause whose body has no statements.
func matchEmptyCatch(language lang.Language, root *tree_sitter.Node, source []byte, emit emitFunc) {
	table := nodekind.ForLanguage(language)
	tsparse.Walk(root, func(n *tree_sitter.Node) bool {
		if table[n.Kind()] != nodekind.Catch {
			return true
		}
		body := n.ChildByFieldName("body")
		if body == nil {
			return true
		}
		if body.NamedChildCount() == 0 {
			emit(n, "empty catch block swallows the exception")
		}
		return true
	})
}
