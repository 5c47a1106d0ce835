// Package tsparse owns tree-sitter grammar bindings and a per-language pool
// of parsers. Parsers are not safe for concurrent use, so every analyzer
// worker borrows one from the pool for the duration of a single file and
// returns it when done.
package tsparse

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/nyx-scan/nyx/internal/lang"
)

var (
	languagesOnce sync.Once
	languages     map[lang.Language]*tree_sitter.Language
	// tsxLanguage backs the .tsx extension; TypeScript stays a single Nyx
	// Language but parses with the TSX grammar variant when the file
	// extension calls for it.
	tsxLanguage *tree_sitter.Language
	parserPools map[lang.Language]*sync.Pool
	tsxPool     *sync.Pool
)

func initLanguages() {
	languagesOnce.Do(func() {
		languages = map[lang.Language]*tree_sitter.Language{
			lang.Rust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
			lang.C:          tree_sitter.NewLanguage(tree_sitter_c.Language()),
			lang.CPP:        tree_sitter.NewLanguage(tree_sitter_cpp.Language()),
			lang.Java:       tree_sitter.NewLanguage(tree_sitter_java.Language()),
			lang.Go:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			lang.PHP:        tree_sitter.NewLanguage(tree_sitter_php.LanguagePHPOnly()),
			lang.Python:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			lang.Ruby:       tree_sitter.NewLanguage(tree_sitter_ruby.Language()),
			lang.TypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			lang.JavaScript: tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
		}
		tsxLanguage = tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())

		parserPools = make(map[lang.Language]*sync.Pool, len(languages))
		for l, tsLang := range languages {
			tsLang := tsLang
			parserPools[l] = &sync.Pool{
				New: func() any {
					p := tree_sitter.NewParser()
					if err := p.SetLanguage(tsLang); err != nil {
						panic(fmt.Sprintf("set language: %v", err))
					}
					return p
				},
			}
		}
		tsxPool = &sync.Pool{
			New: func() any {
				p := tree_sitter.NewParser()
				if err := p.SetLanguage(tsxLanguage); err != nil {
					panic(fmt.Sprintf("set language: %v", err))
				}
				return p
			},
		}
	})
}

// GetLanguage returns the tree-sitter Language handle for a lang.Language.
func GetLanguage(l lang.Language) (*tree_sitter.Language, error) {
	initLanguages()
	tsLang, ok := languages[l]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", l)
	}
	return tsLang, nil
}

// Parse parses source code for l into a tree-sitter AST. The caller must
// call tree.Close() when done. If ext is ".tsx", the TSX grammar variant is
// used instead of l's default grammar (only relevant for TypeScript).
func Parse(l lang.Language, ext string, source []byte) (*tree_sitter.Tree, error) {
	initLanguages()

	pool := parserPools[l]
	if l == lang.TypeScript && ext == ".tsx" {
		pool = tsxPool
	}
	if pool == nil {
		return nil, fmt.Errorf("unsupported language: %s", l)
	}

	p, _ := pool.Get().(*tree_sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("failed to get parser for language %s", l)
	}
	tree := p.Parse(source, nil)
	pool.Put(p)

	if tree == nil {
		return nil, fmt.Errorf("parse failed for language %s", l)
	}
	return tree, nil
}

// WalkFunc is called for each node during AST traversal.
// Return false to skip descending into that node's children.
type WalkFunc func(node *tree_sitter.Node) bool

// Walk traverses the AST in depth-first pre-order.
func Walk(node *tree_sitter.Node, fn WalkFunc) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			Walk(child, fn)
		}
	}
}

// NodeText returns the source text spanned by a node.
func NodeText(node *tree_sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// Point is a 1-based line/column location, matching how Findings are
// reported.
type Point struct {
	Line   uint
	Column uint
}

// StartPoint returns node's start location, converted to 1-based line/column.
func StartPoint(node *tree_sitter.Node) Point {
	p := node.StartPosition()
	return Point{Line: p.Row + 1, Column: p.Column + 1}
}
