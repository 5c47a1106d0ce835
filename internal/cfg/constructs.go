package cfg

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/nyx-scan/nyx/internal/catalog"
	"github.com/nyx-scan/nyx/internal/nodekind"
	"github.com/nyx-scan/nyx/internal/tsparse"
)

// buildIf implements: split current block; true-edge to T-entry, false-edge
// to E-entry (or directly to merge when there is no else); both join at a
// fresh merge block.
func (b *builder) buildIf(node *tree_sitter.Node, current int) int {
	cond := node.ChildByFieldName("condition")
	b.appendFact(current, b.branchTestFact(cond, node))

	merge := b.cfg.newBlock()

	thenNode := node.ChildByFieldName("consequence")
	thenBlock := b.cfg.newBlock()
	b.cfg.addEdge(current, thenBlock, TrueBranch)
	thenExit := b.buildSequence(thenNode, thenBlock)
	if thenExit != -1 {
		b.cfg.addEdge(thenExit, merge, Fallthrough)
	}

	elseNode := node.ChildByFieldName("alternative")
	if elseNode != nil {
		elseBlock := b.cfg.newBlock()
		b.cfg.addEdge(current, elseBlock, FalseBranch)
		elseExit := b.buildSequence(elseNode, elseBlock)
		if elseExit != -1 {
			b.cfg.addEdge(elseExit, merge, Fallthrough)
		}
	} else {
		// No else: implicit false-edge straight to merge.
		b.cfg.addEdge(current, merge, FalseBranch)
	}

	return merge
}

// buildLoop implements: header block for c; true-edge into B; back-edge
// from B-exit to header; false-edge to post-loop.
func (b *builder) buildLoop(node *tree_sitter.Node, current int) int {
	header := b.cfg.newBlock()
	b.cfg.addEdge(current, header, Fallthrough)

	cond := node.ChildByFieldName("condition")
	b.appendFact(header, b.branchTestFact(cond, node))

	exit := b.cfg.newBlock()
	b.loops = append(b.loops, loopCtx{header: header, exit: exit})

	body := node.ChildByFieldName("body")
	bodyBlock := b.cfg.newBlock()
	b.cfg.addEdge(header, bodyBlock, TrueBranch)
	bodyExit := b.buildSequence(body, bodyBlock)
	if bodyExit != -1 {
		b.cfg.addEdge(bodyExit, header, BackEdge)
	}

	b.cfg.addEdge(header, exit, FalseBranch)
	b.loops = b.loops[:len(b.loops)-1]
	return exit
}

// buildFor desugars init -> condition-header -> body -> step -> back-edge
// to condition-header.
func (b *builder) buildFor(node *tree_sitter.Node, current int) int {
	if init := node.ChildByFieldName("initializer"); init != nil {
		current = b.buildSequence(init, current)
		if current == -1 {
			return -1
		}
	}

	header := b.cfg.newBlock()
	b.cfg.addEdge(current, header, Fallthrough)
	if cond := node.ChildByFieldName("condition"); cond != nil {
		b.appendFact(header, b.branchTestFact(cond, node))
	}

	exit := b.cfg.newBlock()
	b.loops = append(b.loops, loopCtx{header: header, exit: exit})

	body := node.ChildByFieldName("body")
	bodyBlock := b.cfg.newBlock()
	b.cfg.addEdge(header, bodyBlock, TrueBranch)
	bodyExit := b.buildSequence(body, bodyBlock)

	if bodyExit != -1 {
		stepTarget := bodyExit
		if step := node.ChildByFieldName("update"); step != nil {
			stepBlock := b.cfg.newBlock()
			b.cfg.addEdge(bodyExit, stepBlock, Fallthrough)
			b.appendFact(stepBlock, b.exprFact(step))
			stepTarget = stepBlock
		}
		b.cfg.addEdge(stepTarget, header, BackEdge)
	}

	b.cfg.addEdge(header, exit, FalseBranch)
	b.loops = b.loops[:len(b.loops)-1]
	return exit
}

// buildSwitch gives one outgoing edge per arm to that arm's entry, joining
// at a post-switch merge block.
func (b *builder) buildSwitch(node *tree_sitter.Node, current int) int {
	if subject := node.ChildByFieldName("value"); subject != nil {
		b.appendFact(current, b.branchTestFact(subject, node))
	}
	merge := b.cfg.newBlock()
	sawDefault := false

	for i := uint(0); i < node.NamedChildCount(); i++ {
		arm := node.NamedChild(i)
		if b.classify(arm) != nodekind.Case {
			continue
		}
		isDefault := arm.ChildByFieldName("value") == nil
		sawDefault = sawDefault || isDefault

		armBlock := b.cfg.newBlock()
		b.cfg.addEdge(current, armBlock, TrueBranch)
		armExit := b.buildSequence(arm, armBlock)
		if armExit != -1 {
			b.cfg.addEdge(armExit, merge, Fallthrough)
		}
	}
	if !sawDefault {
		b.cfg.addEdge(current, merge, FalseBranch)
	}
	return merge
}

// buildTry adds exception edges to each catch entry from the try body's
// entry block and from every try-body block holding a possibly-throwing
// statement (any Call fact), then continues straight-line after the
// try/catch as a single merge.
func (b *builder) buildTry(node *tree_sitter.Node, current int) int {
	tryBody := node.ChildByFieldName("body")
	if tryBody == nil {
		tryBody = node
	}

	tryBlock := b.cfg.newBlock()
	b.cfg.addEdge(current, tryBlock, Fallthrough)
	tryExit := b.buildSequence(tryBody, tryBlock)
	bodyEnd := len(b.cfg.Blocks) // blocks [tryBlock, bodyEnd) make up the try body

	merge := b.cfg.newBlock()
	if tryExit != -1 {
		b.cfg.addEdge(tryExit, merge, Fallthrough)
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		clause := node.NamedChild(i)
		if b.classify(clause) != nodekind.Catch {
			continue
		}
		catchBlock := b.cfg.newBlock()
		// The try's entry block always gets an edge, so the handler stays
		// reachable; every other try-body block gets one if it holds a call.
		for id := tryBlock; id < bodyEnd; id++ {
			throws := id == tryBlock
			for _, f := range b.cfg.Blocks[id].Facts {
				throws = throws || f.Kind == FactCall
			}
			if throws {
				b.cfg.addEdge(id, catchBlock, Exception)
			}
		}
		catchExit := b.buildSequence(clause.ChildByFieldName("body"), catchBlock)
		if catchExit != -1 {
			b.cfg.addEdge(catchExit, merge, Fallthrough)
		}
	}
	return merge
}

// buildShortCircuit models `a && b` / `a || b` at statement level: the
// left operand always evaluates in the current block; the right operand
// evaluates in its own block entered only on the non-short-circuiting
// outcome, joining at a merge after. Binary operators that do not
// short-circuit degrade to a plain expression fact.
func (b *builder) buildShortCircuit(node *tree_sitter.Node, current int) int {
	var op string
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c.IsNamed() {
			continue
		}
		switch t := tsparse.NodeText(c, b.source); t {
		case "&&", "||", "and", "or":
			op = t
		}
	}
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if op == "" || left == nil || right == nil {
		b.appendFact(current, b.exprFact(node))
		return current
	}

	b.appendFact(current, b.branchTestFact(left, node))

	merge := b.cfg.newBlock()
	rightBlock := b.cfg.newBlock()
	enter, skip := TrueBranch, FalseBranch
	if op == "||" || op == "or" {
		enter, skip = FalseBranch, TrueBranch
	}
	b.cfg.addEdge(current, rightBlock, enter)
	b.cfg.addEdge(current, merge, skip)
	rightExit := b.buildSequence(right, rightBlock)
	if rightExit != -1 {
		b.cfg.addEdge(rightExit, merge, Fallthrough)
	}
	return merge
}

func (b *builder) appendReturn(node *tree_sitter.Node, current int) {
	value := node
	if v := node.ChildByFieldName("value"); v != nil {
		value = v
	} else if node.NamedChildCount() > 0 {
		value = node.NamedChild(0)
	}
	fact := StatementFact{
		Kind:  FactReturn,
		Uses:  identifiers(value, b.source),
		Point: b.point(node),
		Node:  node,
	}
	b.appendFact(current, fact)
	b.cfg.addEdge(current, b.cfg.Exit, Return)
}

func (b *builder) appendBreak(node *tree_sitter.Node, current int) {
	if len(b.loops) == 0 {
		b.cfg.addEdge(current, b.cfg.Exit, Return)
		return
	}
	top := b.loops[len(b.loops)-1]
	b.cfg.addEdge(current, top.exit, Fallthrough)
}

func (b *builder) appendContinue(node *tree_sitter.Node, current int) {
	if len(b.loops) == 0 {
		b.cfg.addEdge(current, b.cfg.Exit, Return)
		return
	}
	top := b.loops[len(b.loops)-1]
	b.cfg.addEdge(current, top.header, BackEdge)
}

func (b *builder) branchTestFact(cond, owner *tree_sitter.Node) StatementFact {
	if cond == nil {
		cond = owner
	}
	return StatementFact{
		Kind:  FactBranchTest,
		Uses:  identifiers(cond, b.source),
		Point: b.point(owner),
		Node:  owner,
	}
}

func (b *builder) exprFact(node *tree_sitter.Node) StatementFact {
	return StatementFact{
		Kind:  FactOther,
		Uses:  identifiers(node, b.source),
		Point: b.point(node),
		Node:  node,
	}
}

// assignmentFact extracts {defs={lhs}, uses=identifiers(rhs)} and consults
// the catalog when the rhs is (or contains) a cataloged call, so an
// assignment like `u = env::var("X")` both defines u and carries SourceEnv.
func (b *builder) assignmentFact(node *tree_sitter.Node) StatementFact {
	left := node.ChildByFieldName("left")
	if left == nil {
		left = node.ChildByFieldName("pattern") // let/var declaration forms
	}
	right := node.ChildByFieldName("right")
	if right == nil {
		right = node.ChildByFieldName("value")
	}
	if left == nil || right == nil {
		// Declaration grammars wrap the binding in a declarator child
		// (C's init_declarator, JS/TS's variable_declarator).
		for i := uint(0); i < node.NamedChildCount(); i++ {
			c := node.NamedChild(i)
			if c.Kind() != "init_declarator" && c.Kind() != "variable_declarator" {
				continue
			}
			if left == nil {
				if d := c.ChildByFieldName("declarator"); d != nil {
					left = d
				} else if n := c.ChildByFieldName("name"); n != nil {
					left = n
				}
			}
			if right == nil {
				right = c.ChildByFieldName("value")
			}
			break
		}
	}
	if left == nil && node.NamedChildCount() > 0 {
		left = node.NamedChild(0)
	}
	if right == nil && node.NamedChildCount() > 1 {
		right = node.NamedChild(node.NamedChildCount() - 1)
	}

	fact := StatementFact{
		Kind:  FactAssign,
		Defs:  identifiers(left, b.source),
		Uses:  identifiers(right, b.source),
		Point: b.point(node),
		Node:  node,
	}
	fact.Labels = b.labelsIn(right)
	return fact
}

// callFact extracts a call statement's defs/uses/labels. A bare call
// statement has no defs of its own (an assigning call is handled by
// assignmentFact, which recurses here via labelsIn); its uses are every
// identifier in the call expression, callee and receiver chain included, so
// the argument of an inner call in a chain (u in Command::new(u).spawn())
// counts as a use of the outer call.
func (b *builder) callFact(node *tree_sitter.Node) StatementFact {
	return StatementFact{
		Kind:   FactCall,
		Uses:   identifiers(node, b.source),
		Labels: b.labelsIn(node),
		Point:  b.point(node),
		Node:   node,
	}
}

// labelsIn walks node looking for a catalog hit: either a call whose callee
// resolves against catalog.Lookup, or a member expression resolving against
// catalog.LookupMember (e.g. "process.env", "os.environ").
func (b *builder) labelsIn(node *tree_sitter.Node) catalog.Label {
	if node == nil {
		return 0
	}
	var found catalog.Label
	tsparse.Walk(node, func(n *tree_sitter.Node) bool {
		switch b.classify(n) {
		case nodekind.Call:
			if callee := calleeText(n, b.source); callee != "" {
				if entry, ok := catalog.Lookup(b.language, callee); ok {
					found |= entry.Labels
				}
			}
		}
		text := tsparse.NodeText(n, b.source)
		if lbl, ok := catalog.LookupMember(b.language, text); ok {
			found |= lbl
		}
		return true
	})
	return found
}

// calleeText returns the callee identifier text of a call node, trying the
// grammar's usual field names before falling back to the first child.
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

// identifiers collects the text of every "identifier"-kind leaf under node,
// consistent with Nyx's syntactic (not semantic) notion of variable
// identity. The walk does not stop at nested function bodies: identifiers
// inside a nested closure or function are collected too.
func identifiers(node *tree_sitter.Node, source []byte) []string {
	if node == nil {
		return nil
	}
	var names []string
	seen := map[string]bool{}
	tsparse.Walk(node, func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "identifier", "variable_name", "field_identifier", "simple_identifier":
			name := tsparse.NodeText(n, source)
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		return true
	})
	return names
}

// extractParams records a FactParam for each formal parameter at function
// entry. Parameters are untainted unless the catalog explicitly marks the
// language's parameter-passing convention as externally controlled (none of
// Nyx's ten languages do today), so this only records identity, not labels.
func (b *builder) extractParams(fn *tree_sitter.Node, entry int) {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		name := p.ChildByFieldName("name")
		if name == nil {
			name = p
		}
		b.appendFact(entry, StatementFact{
			Kind:  FactParam,
			Defs:  identifiers(name, b.source),
			Point: b.point(p),
			Node:  p,
		})
	}
}
