package cfg

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/nyx-scan/nyx/internal/lang"
	"github.com/nyx-scan/nyx/internal/nodekind"
)

// FindFunctions returns every node classified nodekind.Function in tree,
// in document order. The CFG builder is called once per returned node.
func FindFunctions(root *tree_sitter.Node, language lang.Language) []*tree_sitter.Node {
	table := nodekind.ForLanguage(language)
	var fns []*tree_sitter.Node
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		if table[n.Kind()] == nodekind.Function {
			fns = append(fns, n)
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return fns
}

// Reachable returns, via BFS, every block index reachable from entry.
func Reachable(c *CFG, from int) map[int]bool {
	seen := map[int]bool{from: true}
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range c.Blocks[cur].Succs {
			if !seen[e.To] {
				seen[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	return seen
}

// predecessors maps each block to the blocks with an edge into it.
func predecessors(c *CFG) map[int][]int {
	preds := make(map[int][]int, len(c.Blocks))
	for _, blk := range c.Blocks {
		for _, e := range blk.Succs {
			preds[e.To] = append(preds[e.To], blk.ID)
		}
	}
	return preds
}

// Validate checks the CFG-shape testable properties: entry has no
// predecessors, exit has no successors, and every non-exit block reachable
// from entry has at least one successor.
func Validate(c *CFG) []string {
	var problems []string
	preds := predecessors(c)
	if len(preds[c.Entry]) != 0 {
		problems = append(problems, "entry has predecessors")
	}
	if len(c.Blocks[c.Exit].Succs) != 0 {
		problems = append(problems, "exit has successors")
	}
	reach := Reachable(c, c.Entry)
	for id := range reach {
		if id == c.Exit {
			continue
		}
		if len(c.Blocks[id].Succs) == 0 {
			problems = append(problems, "reachable non-exit block with no successors")
		}
	}
	return problems
}
