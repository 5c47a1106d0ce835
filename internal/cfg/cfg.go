// Package cfg builds an intra-procedural control-flow graph from a
// tree-sitter syntax tree. One CFG is built per function, method, or
// closure. The graph is represented as an arena of Blocks
// indexed by small integers, with edges as (from, to, kind) triples, so the
// inherently cyclic structure (back-edges) never requires cyclic Go
// pointers; only the arena slice owns blocks.
package cfg

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/nyx-scan/nyx/internal/catalog"
	"github.com/nyx-scan/nyx/internal/lang"
	"github.com/nyx-scan/nyx/internal/nodekind"
	"github.com/nyx-scan/nyx/internal/tsparse"
)

// EdgeKind classifies a transition between two basic blocks.
type EdgeKind int

const (
	Fallthrough EdgeKind = iota
	TrueBranch
	FalseBranch
	BackEdge
	Exception
	Return
)

// Edge is an outgoing transition from one block to another.
type Edge struct {
	To   int
	Kind EdgeKind
}

// FactKind classifies one statement fact extracted into a block.
type FactKind int

const (
	FactOther FactKind = iota
	FactAssign
	FactCall
	FactReturn
	FactBranchTest
	FactParam
)

// StatementFact is the abstract tuple the taint engine transfers over:
// {kind, defs, uses, labels}. Node/Point are carried for finding locations.
type StatementFact struct {
	Kind   FactKind
	Defs   []string
	Uses   []string
	Labels catalog.Label
	Node   *tree_sitter.Node
	Point  tsparse.Point
}

// Block is a maximal run of straight-line statements: one entry, one exit,
// no internal branching.
type Block struct {
	ID    int
	Facts []StatementFact
	Succs []Edge
}

// CFG is one function's control-flow graph. Entry has no predecessors
// and Exit (synthetic) has no successors.
type CFG struct {
	Language lang.Language
	Blocks   []*Block
	Entry    int
	Exit     int
}

func (c *CFG) block(i int) *Block { return c.Blocks[i] }

func (c *CFG) newBlock() int {
	id := len(c.Blocks)
	c.Blocks = append(c.Blocks, &Block{ID: id})
	return id
}

func (c *CFG) addEdge(from, to int, kind EdgeKind) {
	c.Blocks[from].Succs = append(c.Blocks[from].Succs, Edge{To: to, Kind: kind})
}

type loopCtx struct {
	header int
	exit   int
}

type builder struct {
	cfg      *CFG
	source   []byte
	language lang.Language
	table    nodekind.Table
	loops    []loopCtx
}

// Build constructs a CFG for one function/method/closure node. functionNode
// must be a node classified nodekind.Function for language.
func Build(functionNode *tree_sitter.Node, source []byte, language lang.Language) *CFG {
	cfg := &CFG{Language: language}
	entry := cfg.newBlock()
	exit := cfg.newBlock()
	cfg.Entry = entry
	cfg.Exit = exit

	b := &builder{cfg: cfg, source: source, language: language, table: nodekind.ForLanguage(language)}
	b.extractParams(functionNode, entry)

	body := functionBody(functionNode)
	current := entry
	if body != nil {
		current = b.buildSequence(body, entry)
	}
	b.connectToExit(current)
	return cfg
}

func (b *builder) classify(n *tree_sitter.Node) nodekind.Kind {
	if n == nil {
		return nodekind.Other
	}
	if k, ok := b.table[n.Kind()]; ok {
		return k
	}
	return nodekind.Other
}

// functionBody finds the statement-sequence node a function wraps. Grammars
// disagree on the field name, so a short list is tried before falling back
// to the function node itself (covers grammars with no explicit body
// wrapper, e.g. single-expression closures).
func functionBody(fn *tree_sitter.Node) *tree_sitter.Node {
	for _, field := range []string{"body", "block"} {
		if b := fn.ChildByFieldName(field); b != nil {
			return b
		}
	}
	return fn
}

// buildSequence appends the statements found in node's children (if node is
// a transparent container) to current, returning the block straight-line
// execution falls through to after the sequence. Control-flow constructs
// recurse into dedicated builders; everything else accumulates as a fact
// in the current block.
func (b *builder) buildSequence(node *tree_sitter.Node, current int) int {
	if node == nil {
		return current
	}
	switch b.classify(node) {
	case nodekind.Branch:
		return b.buildIf(node, current)
	case nodekind.Loop:
		return b.buildLoop(node, current)
	case nodekind.For:
		return b.buildFor(node, current)
	case nodekind.Switch:
		return b.buildSwitch(node, current)
	case nodekind.Try:
		return b.buildTry(node, current)
	case nodekind.Return:
		b.appendReturn(node, current)
		return -1 // no fallthrough; caller must not keep appending
	case nodekind.Break:
		b.appendBreak(node, current)
		return -1
	case nodekind.Continue:
		b.appendContinue(node, current)
		return -1
	case nodekind.Assignment, nodekind.Variable:
		// Variable covers declaration-with-initializer forms (let/var/const
		// declarations); they define their binding the same way a plain
		// assignment does.
		b.appendFact(current, b.assignmentFact(node))
		return current
	case nodekind.Call:
		b.appendFact(current, b.callFact(node))
		return current
	case nodekind.ShortCircuit:
		return b.buildShortCircuit(node, current)
	default:
		// Transparent container (compound/block/suite/program, or an
		// expression-statement wrapper): walk named children in order,
		// threading `current` through each. A construct that terminates
		// the block (return/break/continue) yields -1; once that happens
		// the rest of the sequence is unreachable and is skipped, matching
		// "removes fallthrough from the source block".
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if current == -1 {
				break
			}
			current = b.buildSequence(child, current)
		}
		return current
	}
}

func (b *builder) appendFact(block int, fact StatementFact) {
	if block < 0 {
		return
	}
	b.cfg.block(block).Facts = append(b.cfg.block(block).Facts, fact)
}

func (b *builder) point(n *tree_sitter.Node) tsparse.Point { return tsparse.StartPoint(n) }

func (b *builder) connectToExit(block int) {
	if block < 0 {
		return
	}
	if len(b.cfg.block(block).Succs) == 0 {
		b.cfg.addEdge(block, b.cfg.Exit, Fallthrough)
	}
}
