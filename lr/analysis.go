package lr

import (
	"github.com/npillmayer/parlr/lr/bitset"
)

// LRAnalysis is a static grammar analysis: it knows, for every non-terminal,
// whether it derives epsilon and which terminals may begin its derivations
// (the FIRST set). Table generation builds LR(1) lookahead sets on top of it.
type LRAnalysis struct {
	g          *Grammar
	derivesEps map[*Symbol]bool
	first      map[*Symbol]*bitset.Set // terminal symbol values
}

// Analysis analyses a grammar: FIRST sets and epsilon-derivability are
// computed by fixpoint iteration over the rules.
func Analysis(g *Grammar) *LRAnalysis {
	ga := &LRAnalysis{
		g:          g,
		derivesEps: make(map[*Symbol]bool),
		first:      make(map[*Symbol]*bitset.Set),
	}
	for _, A := range g.symseq {
		if !A.IsTerminal() {
			ga.first[A] = bitset.New(len(g.symseq))
		}
	}
	ga.analyse()
	return ga
}

// Grammar returns the analysed grammar.
func (ga *LRAnalysis) Grammar() *Grammar {
	return ga.g
}

func (ga *LRAnalysis) analyse() {
	for changed := true; changed; {
		changed = false
		for _, r := range ga.g.rules {
			entry := ga.first[r.LHS]
			eps := true
			for _, sym := range r.rhs {
				if sym.IsTerminal() {
					if entry.Add(sym.Value) {
						changed = true
					}
					eps = false
					break
				}
				if entry.Union(ga.first[sym]) {
					changed = true
				}
				if !ga.derivesEps[sym] {
					eps = false
					break
				}
			}
			if eps && !ga.derivesEps[r.LHS] {
				ga.derivesEps[r.LHS] = true
				changed = true
			}
		}
	}
}

// DerivesEpsilon returns true if the non-terminal can derive the empty
// string.
func (ga *LRAnalysis) DerivesEpsilon(A *Symbol) bool {
	return ga.derivesEps[A]
}

// First returns the FIRST set of a symbol, i.e. the terminals which may
// begin a derivation of it. For a terminal, FIRST is the terminal itself.
func (ga *LRAnalysis) First(A *Symbol) []*Symbol {
	if A.IsTerminal() {
		return []*Symbol{A}
	}
	set := ga.first[A]
	if set == nil {
		return nil
	}
	syms := make([]*Symbol, 0, set.Size())
	for _, v := range set.Values() {
		syms = append(syms, ga.g.symbolByValue(v))
	}
	return syms
}

// firstOfSeq computes FIRST(seq), with la standing in for everything that
// may follow seq: if the whole sequence derives epsilon, la's members are
// included. This is the lookahead computation for LR(1) closure items.
func (ga *LRAnalysis) firstOfSeq(seq []*Symbol, la *bitset.Set) *bitset.Set {
	set := bitset.New(len(ga.g.symseq))
	for _, sym := range seq {
		if sym.IsTerminal() {
			set.Add(sym.Value)
			return set
		}
		set.Union(ga.first[sym])
		if !ga.derivesEps[sym] {
			return set
		}
	}
	set.Union(la)
	return set
}
