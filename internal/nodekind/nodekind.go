// Package nodekind builds, once per process, a perfect-hash-style lookup
// table per Language mapping a grammar's raw node-kind string (e.g.
// "if_statement") to Nyx's internal Kind enumeration. The pattern engine and
// the CFG builder both classify nodes exclusively through this table, so
// the two stages can never disagree about "is this node an if/call/loop".
package nodekind

import "github.com/nyx-scan/nyx/internal/lang"

// Kind is the internal node classification used by the pattern engine and
// the CFG builder.
type Kind int

const (
	Other Kind = iota
	Function
	Class
	Module
	Call
	Import
	Branch
	Loop
	For
	Switch
	Case
	Break
	Continue
	Return
	Try
	Catch
	ShortCircuit
	Variable
	Assignment
	Throw
	Decorator
)

// Table is the construction-time-generated, read-only kind map for one
// Language. Lookup is a single Go map read: O(1), no hashing on the hot
// path beyond what the runtime map already does for a small fixed key set
// built once at startup.
type Table map[string]Kind

var tables = map[lang.Language]Table{}

func init() {
	for _, l := range lang.AllLanguages() {
		spec := lang.ForLanguage(l)
		if spec == nil {
			continue
		}
		tables[l] = build(spec)
	}
}

func build(spec *lang.LanguageSpec) Table {
	t := make(Table)
	add := func(kind Kind, kinds []string) {
		for _, k := range kinds {
			t[k] = kind
		}
	}
	add(Function, spec.FunctionNodeTypes)
	add(Class, spec.ClassNodeTypes)
	add(Module, spec.ModuleNodeTypes)
	add(Call, spec.CallNodeTypes)
	add(Import, spec.ImportNodeTypes)
	add(Branch, spec.BranchingNodeTypes)
	add(Loop, spec.LoopNodeTypes)
	add(For, spec.ForNodeTypes)
	add(Switch, spec.SwitchNodeTypes)
	add(Case, spec.CaseNodeTypes)
	add(Break, spec.BreakNodeTypes)
	add(Continue, spec.ContinueNodeTypes)
	add(Return, spec.ReturnNodeTypes)
	add(Try, spec.TryNodeTypes)
	add(Catch, spec.CatchNodeTypes)
	add(ShortCircuit, spec.ShortCircuitNodeTypes)
	add(Variable, spec.VariableNodeTypes)
	add(Assignment, spec.AssignmentNodeTypes)
	add(Throw, spec.ThrowNodeTypes)
	add(Decorator, spec.DecoratorNodeTypes)
	return t
}

// Classify returns the internal Kind for a raw grammar node-kind string
// under Language l. Unrecognized kinds classify as Other.
func Classify(l lang.Language, nodeKind string) Kind {
	table, ok := tables[l]
	if !ok {
		return Other
	}
	if k, ok := table[nodeKind]; ok {
		return k
	}
	return Other
}

// ForLanguage returns the full dispatch table for l, for callers (the CFG
// builder) that want to classify many nodes without a Classify call per
// lookup.
func ForLanguage(l lang.Language) Table {
	return tables[l]
}
