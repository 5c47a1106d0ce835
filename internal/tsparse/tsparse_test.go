package tsparse

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/nyx-scan/nyx/internal/lang"
)

func TestParseGo(t *testing.T) {
	source := []byte(`package main

func Hello() string {
	return "hello"
}

func Add(a, b int) int {
	return a + b
}
`)
	tree, err := Parse(lang.Go, ".go", source)
	if err != nil {
		t.Fatalf("Parse Go: %v", err)
	}
	defer tree.Close()

	var funcCount int
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		if n.Kind() == "function_declaration" {
			funcCount++
		}
		return true
	})
	if funcCount != 2 {
		t.Errorf("expected 2 function_declarations, got %d", funcCount)
	}
}

func TestParseRust(t *testing.T) {
	source := []byte(`fn main() {
	let u = std::env::var("X").unwrap();
	std::process::Command::new(u).spawn();
}
`)
	tree, err := Parse(lang.Rust, ".rs", source)
	if err != nil {
		t.Fatalf("Parse Rust: %v", err)
	}
	defer tree.Close()

	var callCount int
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		if n.Kind() == "call_expression" {
			callCount++
		}
		return true
	})
	if callCount == 0 {
		t.Errorf("expected at least one call_expression")
	}
}

func TestParseTSX(t *testing.T) {
	source := []byte(`const x = <div>hi</div>;`)
	tree, err := Parse(lang.TypeScript, ".tsx", source)
	if err != nil {
		t.Fatalf("Parse TSX: %v", err)
	}
	defer tree.Close()
	if tree.RootNode() == nil {
		t.Fatal("root node is nil")
	}
}

func TestAllLanguagesLoad(t *testing.T) {
	for _, l := range lang.AllLanguages() {
		if _, err := GetLanguage(l); err != nil {
			t.Errorf("GetLanguage(%s): %v", l, err)
		}
	}
}

func TestNodeText(t *testing.T) {
	source := []byte("package main\n\nfunc Hello() string {\n\treturn \"hello\"\n}\n")
	tree, err := Parse(lang.Go, ".go", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		if n.Kind() == "function_declaration" {
			name := n.ChildByFieldName("name")
			if name == nil {
				t.Error("function has no name node")
				return false
			}
			if got := NodeText(name, source); got != "Hello" {
				t.Errorf("expected Hello, got %s", got)
			}
			return false
		}
		return true
	})
}
