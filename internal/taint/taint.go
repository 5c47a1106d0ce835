// Package taint implements the monotone forward taint dataflow over a
// CFG: a map `variable -> label-bitset` propagated to a fixpoint by
// worklist iteration, producing Findings for unsanitised source -> sink
// paths.
package taint

import (
	"github.com/nyx-scan/nyx/internal/catalog"
	"github.com/nyx-scan/nyx/internal/cfg"
	"github.com/nyx-scan/nyx/internal/tsparse"
)

// State is the per-program-point taint state: variable name -> bitset of
// active labels. The lattice is (2^Labels, ⊆); join is element-wise union;
// bottom is the empty map (a missing key reads as the zero bitset).
type State map[string]catalog.Label

func (s State) clone() State {
	c := make(State, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// join computes the element-wise union of a and b, returning a new State
// and whether the result differs from a (used to decide re-enqueueing).
func join(a, b State) (State, bool) {
	out := a.clone()
	changed := false
	for v, bits := range b {
		if out[v]&bits != bits {
			out[v] |= bits
			changed = true
		}
	}
	return out, changed
}

// sourceBits is every Source* label, the only bits the provenance map
// tracks (sanitiser/sink bits never persist in State itself).
const sourceBits = catalog.SourceEnv | catalog.SourceArgv | catalog.SourceNetwork |
	catalog.SourceFileRead | catalog.SourceUserInput

func splitBits(l catalog.Label) []catalog.Label {
	var bits []catalog.Label
	for b := catalog.Label(1); b != 0 && b <= sourceBits; b <<= 1 {
		if l&b != 0 {
			bits = append(bits, b)
		}
	}
	return bits
}

// provenance tracks, per variable and per active source bit, the earliest
// program point that introduced it. It is updated in lockstep with the
// label state so a Finding can attribute its source site.
type provenance map[string]map[catalog.Label]tsparse.Point

func (p provenance) clone() provenance {
	c := make(provenance, len(p))
	for v, m := range p {
		cm := make(map[catalog.Label]tsparse.Point, len(m))
		for b, pt := range m {
			cm[b] = pt
		}
		c[v] = cm
	}
	return c
}

func (p provenance) set(variable string, bit catalog.Label, at tsparse.Point) {
	if p[variable] == nil {
		p[variable] = map[catalog.Label]tsparse.Point{}
	}
	if _, exists := p[variable][bit]; !exists {
		p[variable][bit] = at
	}
}

func (p provenance) merge(other provenance) {
	for v, m := range other {
		for b, pt := range m {
			p.set(v, b, pt)
		}
	}
}

// Finding describes one unsanitised source -> sink flow.
type Finding struct {
	SourceSite tsparse.Point
	SinkSite   tsparse.Point
	Labels     catalog.Label
}

type dedupKey struct {
	source tsparse.Point
	sink   tsparse.Point
	labels catalog.Label
}

// Analyse runs the fixpoint over g and returns every distinct Finding,
// deduplicated on (source_site, sink_site, labels) with only the earliest
// discovered path reported.
func Analyse(g *cfg.CFG) []Finding {
	in := make([]State, len(g.Blocks))
	prov := make([]provenance, len(g.Blocks))
	for i := range g.Blocks {
		in[i] = State{}
		prov[i] = provenance{}
	}

	worklist := []int{g.Entry}
	enqueued := map[int]bool{g.Entry: true}
	// Every reachable block is analysed at least once, even when the state
	// reaching it is empty; after that it is re-enqueued only on growth.
	visited := map[int]bool{}

	seen := map[dedupKey]bool{}
	var findings []Finding

	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		enqueued[id] = false
		visited[id] = true

		block := g.Blocks[id]
		state := in[id].clone()
		prv := prov[id].clone()

		for _, fact := range block.Facts {
			state, prv = transfer(g, fact, state, prv, seen, &findings)
		}

		for _, e := range block.Succs {
			merged, grew := join(in[e.To], state)
			mergedProv := prov[e.To].clone()
			mergedProv.merge(prv)
			if grew || !provEqual(prov[e.To], mergedProv) || !visited[e.To] {
				in[e.To] = merged
				prov[e.To] = mergedProv
				if !enqueued[e.To] {
					enqueued[e.To] = true
					worklist = append(worklist, e.To)
				}
			}
		}
	}
	return findings
}

func provEqual(a, b provenance) bool {
	if len(a) != len(b) {
		return false
	}
	for v, m := range a {
		bm, ok := b[v]
		if !ok || len(bm) != len(m) {
			return false
		}
		for bit := range m {
			if _, ok := bm[bit]; !ok {
				return false
			}
		}
	}
	return true
}

func transfer(g *cfg.CFG, fact cfg.StatementFact, state State, prv provenance, seen map[dedupKey]bool, findings *[]Finding) (State, provenance) {
	switch fact.Kind {
	case cfg.FactAssign:
		return transferAssign(fact, state, prv)
	case cfg.FactCall:
		transferCall(g, fact, state, prv, seen, findings)
		return state, prv
	case cfg.FactBranchTest:
		return state, prv // path-insensitive: no state change
	case cfg.FactParam:
		// Parameters are untainted unless the language catalog marks them
		// externally controlled; none of Nyx's catalogs do today.
		return state, prv
	default:
		return state, prv
	}
}

func transferAssign(fact cfg.StatementFact, state State, prv provenance) (State, provenance) {
	if len(fact.Defs) == 0 {
		return state, prv
	}
	v := fact.Defs[0]

	var union catalog.Label
	for _, u := range fact.Uses {
		union |= state[u]
	}
	union |= fact.Labels & sourceBits

	state = state.clone()
	prv = prv.clone()
	state[v] = union

	for _, bit := range splitBits(union) {
		introducedHere := fact.Labels&bit != 0 && !anyUseHas(fact.Uses, state, bit)
		if introducedHere {
			prv.set(v, bit, fact.Point)
		} else {
			for _, u := range fact.Uses {
				if state[u]&bit != 0 {
					if src, ok := firstProv(prv, u, bit); ok {
						prv.set(v, bit, src)
					}
				}
			}
		}
	}

	// Sanitiser: clear any category the fact's sanitiser label(s) cover.
	for _, bit := range allBits(fact.Labels) {
		if cat := catalog.Category(bit); cat != 0 && isSanitizerBit(bit) {
			state[v] &^= cat
			if m, ok := prv[v]; ok {
				for cleared := range m {
					if cat&cleared != 0 {
						delete(m, cleared)
					}
				}
			}
		}
	}
	return state, prv
}

func transferCall(g *cfg.CFG, fact cfg.StatementFact, state State, prv provenance, seen map[dedupKey]bool, findings *[]Finding) {
	sinkBits := allBits(fact.Labels)
	for _, s := range sinkBits {
		if !isSinkBit(s) {
			continue
		}
		required := catalog.Category(s)
		for _, a := range fact.Uses {
			active := state[a]
			// The sink's required category only gates whether a finding is
			// emitted; the finding itself carries the argument's full label
			// set (labels = in[a]), so downstream severity grading sees
			// every source category feeding the sink.
			intersect := active & required
			if intersect == 0 {
				continue
			}
			sourcePt, ok := firstProvAny(prv, a, intersect)
			if !ok {
				continue
			}
			key := dedupKey{source: sourcePt, sink: fact.Point, labels: active}
			if seen[key] {
				continue
			}
			seen[key] = true
			*findings = append(*findings, Finding{SourceSite: sourcePt, SinkSite: fact.Point, Labels: active})
		}
	}
}

func anyUseHas(uses []string, state State, bit catalog.Label) bool {
	for _, u := range uses {
		if state[u]&bit != 0 {
			return true
		}
	}
	return false
}

func firstProv(p provenance, variable string, bit catalog.Label) (tsparse.Point, bool) {
	m, ok := p[variable]
	if !ok {
		return tsparse.Point{}, false
	}
	pt, ok := m[bit]
	return pt, ok
}

// firstProvAny returns the earliest provenance point among any bit in mask
// set on variable, preferring the lowest-valued bit for determinism.
func firstProvAny(p provenance, variable string, mask catalog.Label) (tsparse.Point, bool) {
	m, ok := p[variable]
	if !ok {
		return tsparse.Point{}, false
	}
	for _, bit := range splitBits(mask) {
		if pt, ok := m[bit]; ok {
			return pt, true
		}
	}
	return tsparse.Point{}, false
}

func allBits(l catalog.Label) []catalog.Label {
	var bits []catalog.Label
	for b := catalog.Label(1); b != 0; b <<= 1 {
		if l&b != 0 {
			bits = append(bits, b)
		}
		if b == 0 { // overflow guard, unreachable with today's label count
			break
		}
	}
	return bits
}

func isSanitizerBit(b catalog.Label) bool {
	return b == catalog.SanitizerShellEscape || b == catalog.SanitizerSQLEscape || b == catalog.SanitizerPathCanonicalize
}

func isSinkBit(b catalog.Label) bool {
	return b == catalog.SinkProcessSpawn || b == catalog.SinkSQLQuery || b == catalog.SinkFileWrite || b == catalog.SinkHTMLOutput
}
