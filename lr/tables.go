package lr

import (
	"fmt"
	"io"
	"os"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/npillmayer/parlr/lr/sparse"
)

// Refer to "Crafting A Compiler" by Charles N. Fisher & Richard J. LeBlanc, Jr.
// Section 6.5.1, Canonical LR(1) Parsing

// Actions for parser action tables. Reduce actions are encoded as the serial
// of the rule to reduce; the shift target is read from the GOTO table.
const (
	ShiftAction  = int32(-1)
	AcceptAction = int32(-2)
)

// === Closure and Goto-Set Operations =======================================

// closure extends an item set to its LR(1) closure: for every item with a
// non-terminal B after the dot, all rules for B are included, with lookaheads
// FIRST(βa) inherited from the including item. Lookahead sets may keep
// growing as items merge, so the construction loops to a fixpoint.
func (ga *LRAnalysis) closure(S *itemSet) *itemSet {
	for changed := true; changed; {
		changed = false
		for _, item := range S.ordered() {
			B := item.PeekSymbol()
			if B == nil || B.IsTerminal() {
				continue
			}
			fla := ga.firstOfSeq(item.Suffix(), item.la)
			for _, r := range ga.g.FindNonTermRules(B) {
				if S.add(r, 0, fla) {
					changed = true
				}
			}
		}
	}
	return S
}

// gotoSet advances the dot over symbol A for every matching item.
func (ga *LRAnalysis) gotoSet(closure *itemSet, A *Symbol) *itemSet {
	// for every item in closure C
	// if item in C:  N → ... ∘A ...
	//     advance to N → ... A∘ ...
	gotoset := newItemSet()
	for _, i := range closure.ordered() {
		if i.PeekSymbol() == A {
			ii := i.Advance()
			gotoset.add(ii.rule, ii.dot, ii.la)
		}
	}
	return gotoset
}

func (ga *LRAnalysis) gotoSetClosure(S *itemSet, A *Symbol) *itemSet {
	gotoset := ga.gotoSet(S, A)
	if gotoset.empty() {
		return gotoset
	}
	gclosure := ga.closure(gotoset)
	tracer().Debugf("goto(%s) --%s--> %s", itemSetString(S), A, itemSetString(gclosure))
	return gclosure
}

// === CFSM Construction =====================================================

// CFSMState is a state within the CFSM for a grammar.
type CFSMState struct {
	ID     int      // serial ID of this state
	items  *itemSet // configuration items within this state
	Accept bool     // is this an accepting state?
}

// CFSM edge between 2 states, directed and with a symbol
type cfsmEdge struct {
	from  *CFSMState
	to    *CFSMState
	label *Symbol
}

// Dump is a debugging helper
func (s *CFSMState) Dump() {
	tracer().Debugf("--- state %03d -----------", s.ID)
	Dump(s.items)
	tracer().Debugf("-------------------------")
}

func (s *CFSMState) isErrorState() bool {
	return s.items.empty()
}

// Create a state from an item set
func state(id int, iset *itemSet) *CFSMState {
	s := &CFSMState{ID: id}
	if iset == nil {
		s.items = newItemSet()
	} else {
		s.items = iset
	}
	return s
}

func (s *CFSMState) String() string {
	return fmt.Sprintf("(state %d | [%d])", s.ID, s.items.size())
}

func (s *CFSMState) containsCompletedStartRule() bool {
	for _, i := range s.items.ordered() {
		if i.rule.Serial == 0 && i.PeekSymbol() == nil {
			return true
		}
	}
	return false
}

// Create an edge
func edge(from, to *CFSMState, label *Symbol) *cfsmEdge {
	return &cfsmEdge{
		from:  from,
		to:    to,
		label: label,
	}
}

// We need this for the set of states. It sorts states by serial ID.
func stateComparator(s1, s2 interface{}) int {
	c1 := s1.(*CFSMState)
	c2 := s2.(*CFSMState)
	return utils.IntComparator(c1.ID, c2.ID)
}

// Add a state to the CFSM. Checks first if an equal state is present.
// Equality is structural over the item set's contents, never object
// identity; this is what bounds the state space and guarantees termination.
func (c *CFSM) addState(iset *itemSet) *CFSMState {
	s := c.findStateByItems(iset)
	if s == nil {
		s = state(c.cfsmIds, iset)
		c.byFingerprint[iset.fingerprint()] = s
		c.cfsmIds++
		c.states.Add(s)
	}
	return s
}

// Find a CFSM state by the contained item set.
func (c *CFSM) findStateByItems(iset *itemSet) *CFSMState {
	return c.byFingerprint[iset.fingerprint()]
}

func (c *CFSM) addEdge(s0, s1 *CFSMState, sym *Symbol) *cfsmEdge {
	e := edge(s0, s1, sym)
	c.edges.Add(e)
	return e
}

func (c *CFSM) allEdges(s *CFSMState) []*cfsmEdge {
	it := c.edges.Iterator()
	r := make([]*cfsmEdge, 0, 2)
	for it.Next() {
		e := it.Value().(*cfsmEdge)
		if e.from == s {
			r = append(r, e)
		}
	}
	return r
}

// CFSM is the characteristic finite state machine for an LR grammar, i.e.
// the LR(1) state diagram. Will be constructed by a TableGenerator.
// Clients normally do not use it directly. Nevertheless, there are some
// methods defined on it, e.g, for debugging purposes, or even to
// compute your own tables from it.
type CFSM struct {
	g             *Grammar        // this CFSM is for Grammar g
	states        *treeset.Set    // all the states
	edges         *arraylist.List // all the edges between states
	byFingerprint map[string]*CFSMState
	S0            *CFSMState // start state
	cfsmIds       int        // serial IDs for CFSM states
}

// create an empty (initial) CFSM automata.
func emptyCFSM(g *Grammar) *CFSM {
	c := &CFSM{g: g}
	c.states = treeset.NewWith(stateComparator)
	c.edges = arraylist.New()
	c.byFingerprint = make(map[string]*CFSMState)
	return c
}

// TableGenerator is a generator object to construct LR(1) parser tables.
// Clients usually create a Grammar G, then an LRAnalysis-object for G,
// and then a table generator. TableGenerator.CreateTables() constructs
// the CFSM and parser tables for an LR-parser recognizing grammar G.
type TableGenerator struct {
	g            *Grammar
	ga           *LRAnalysis
	dfa          *CFSM
	gototable    *Table
	actiontable  *Table
	conflicts    []Conflict
	HasConflicts bool
}

// NewTableGenerator creates a new TableGenerator for a (previously analysed)
// grammar.
func NewTableGenerator(ga *LRAnalysis) *TableGenerator {
	lrgen := &TableGenerator{}
	lrgen.g = ga.Grammar()
	lrgen.ga = ga
	return lrgen
}

// CFSM returns the characteristic finite state machine (CFSM) for a grammar.
// Usually clients call lrgen.CreateTables() beforehand, but it is possible
// to call lrgen.CFSM() directly. The CFSM will be created, if it has not
// been constructed previously.
func (lrgen *TableGenerator) CFSM() *CFSM {
	if lrgen.dfa == nil {
		lrgen.dfa = lrgen.buildCFSM()
	}
	return lrgen.dfa
}

// GotoTable returns the GOTO table for LR-parsing a grammar. The tables have
// to be built by calling CreateTables() previously.
func (lrgen *TableGenerator) GotoTable() *Table {
	if lrgen.gototable == nil {
		tracer().Errorf("tables not yet initialized")
	}
	return lrgen.gototable
}

// ActionTable returns the ACTION table for LR-parsing a grammar. The tables
// have to be built by calling CreateTables() previously.
func (lrgen *TableGenerator) ActionTable() *Table {
	if lrgen.actiontable == nil {
		tracer().Errorf("tables not yet initialized")
	}
	return lrgen.actiontable
}

// Conflicts returns every state/terminal pair where more than one action was
// structurally possible before resolution, annotated with the rule that
// decided it. The list is only complete after CreateTables().
func (lrgen *TableGenerator) Conflicts() []Conflict {
	return lrgen.conflicts
}

// CreateTables creates the necessary data structures for an LR(1) parser:
// the CFSM and both parser tables. Shift/reduce and reduce/reduce conflicts
// are resolved on the fly (see package documentation for the policy);
// CreateTables returns a *ConflictError if it hits a conflict the policy
// declares unresolvable.
func (lrgen *TableGenerator) CreateTables() error {
	lrgen.dfa = lrgen.buildCFSM()
	lrgen.gototable = lrgen.BuildGotoTable()
	actions, err := lrgen.BuildActionTable()
	if err != nil {
		lrgen.gototable = nil
		return err
	}
	lrgen.actiontable = actions
	lrgen.HasConflicts = len(lrgen.conflicts) > 0
	return nil
}

// AcceptingStates returns all states of the CFSM which represent an accept
// action. Clients have to call CreateTables() first.
func (lrgen *TableGenerator) AcceptingStates() []int {
	if lrgen.dfa == nil {
		tracer().Errorf("tables not yet generated; call CreateTables() first")
		return nil
	}
	acc := make([]int, 0, 3)
	for _, x := range lrgen.dfa.states.Values() {
		state := x.(*CFSMState)
		if state.Accept {
			acc = append(acc, state.ID)
		}
	}
	return acc
}

// Construct the characteristic finite state machine CFSM for a grammar.
func (lrgen *TableGenerator) buildCFSM() *CFSM {
	tracer().Debugf("=== build CFSM ==================================================")
	G := lrgen.g
	cfsm := emptyCFSM(G)
	start := StartItem(G)
	closure0 := newItemSet()
	closure0.add(start.rule, start.dot, start.la)
	lrgen.ga.closure(closure0)
	cfsm.S0 = cfsm.addState(closure0)
	cfsm.S0.Dump()
	S := treeset.NewWith(stateComparator)
	S.Add(cfsm.S0)
	for S.Size() > 0 {
		s := S.Values()[0].(*CFSMState)
		S.Remove(s)
		G.EachSymbol(func(A *Symbol) interface{} {
			gotoset := lrgen.ga.gotoSetClosure(s.items, A)
			if gotoset.empty() { // no state transition under A
				return nil
			}
			snew := cfsm.findStateByItems(gotoset)
			if snew == nil {
				snew = cfsm.addState(gotoset)
				S.Add(snew)
				if snew.containsCompletedStartRule() {
					snew.Accept = true
				}
				snew.Dump()
			}
			cfsm.addEdge(s, snew, A)
			return nil
		})
	}
	return cfsm
}

// CFSM2GraphViz exports a CFSM to the Graphviz Dot format, given a filename.
func (c *CFSM) CFSM2GraphViz(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		panic(fmt.Sprintf("file open error: %v", err.Error()))
	}
	defer f.Close()
	f.WriteString(`digraph {
graph [splines=true, fontname=Helvetica, fontsize=10];
node [shape=Mrecord, style=filled, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

`)
	for _, x := range c.states.Values() {
		s := x.(*CFSMState)
		f.WriteString(fmt.Sprintf("s%03d [fillcolor=%s label=\"{%03d | %s}\"]\n",
			s.ID, nodecolor(s), s.ID, forGraphviz(s.items)))
	}
	it := c.edges.Iterator()
	for it.Next() {
		edge := it.Value().(*cfsmEdge)
		f.WriteString(fmt.Sprintf("s%03d -> s%03d [label=\"%s\"]\n", edge.from.ID, edge.to.ID, edge.label))
	}
	f.WriteString("}\n")
}

func nodecolor(state *CFSMState) string {
	if state.Accept {
		return "lightgray"
	}
	return "white"
}

func forGraphviz(S *itemSet) string {
	s := ""
	for _, item := range S.ordered() {
		s += item.String() + "\\n"
	}
	return s
}

// ===========================================================================

// BuildGotoTable builds the GOTO table. This is normally not called directly,
// but rather via CreateTables().
func (lrgen *TableGenerator) BuildGotoTable() *Table {
	statescnt := lrgen.dfa.states.Size()
	symcnt := len(lrgen.g.symseq)
	tracer().Infof("GOTO table of size %d x %d", statescnt, symcnt)
	gototable := newTable(statescnt, symcnt)
	states := lrgen.dfa.states.Iterator()
	for states.Next() {
		state := states.Value().(*CFSMState)
		for _, e := range lrgen.dfa.allEdges(state) {
			gototable.set(state.ID, e.label.Value, int32(e.to.ID))
		}
	}
	return gototable
}

// BuildActionTable constructs the LR(1) ACTION table. This method is
// normally not called by clients, but rather via CreateTables(). For every
// state of the CFSM, complete items yield reduce entries for each of their
// lookahead terminals (accept for the completed start rule at end-of-input),
// and outgoing edges under terminals yield shift entries.
//
// Shift entries are represented as -1, accept as -2. Reduce entries are
// encoded as the serial of the grammar rule to reduce.
func (lrgen *TableGenerator) BuildActionTable() (*Table, error) {
	statescnt := lrgen.dfa.states.Size()
	symcnt := len(lrgen.g.symseq)
	tracer().Infof("ACTION table of size %d x %d", statescnt, symcnt)
	actions := newTable(statescnt, symcnt)
	states := lrgen.dfa.states.Iterator()
	for states.Next() {
		state := states.Value().(*CFSMState)
		tracer().Debugf("--- state %d --------------------------------", state.ID)
		for _, e := range lrgen.dfa.allEdges(state) {
			if e.label.IsTerminal() {
				if err := lrgen.writeShift(actions, state, e.label); err != nil {
					return nil, err
				}
			}
		}
		for _, i := range state.items.ordered() {
			if i.PeekSymbol() != nil { // not a complete item
				continue
			}
			for _, v := range i.la.Values() {
				la := lrgen.g.symbolByValue(v)
				if err := lrgen.writeReduce(actions, state, la, i.rule.Serial); err != nil {
					return nil, err
				}
			}
		}
	}
	return actions, nil
}

func (lrgen *TableGenerator) writeShift(actions *Table, state *CFSMState, t *Symbol) error {
	a := actions.Value(state.ID, t.Value)
	if a == actions.NullValue() {
		actions.set(state.ID, t.Value, ShiftAction)
		return nil
	}
	if a == ShiftAction { // relax, double shift
		return nil
	}
	// a is a reduce entry; resolve shift/reduce
	doReduce, how, err := lrgen.resolveSR(state, t, int(a))
	if err != nil {
		return err
	}
	lrgen.conflicts = append(lrgen.conflicts, &ShiftReduceConflict{
		State:    state.ID,
		Terminal: t,
		Rule:     int(a),
		Shifted:  !doReduce,
		Resolved: how,
	})
	if !doReduce {
		actions.set(state.ID, t.Value, ShiftAction)
	}
	return nil
}

func (lrgen *TableGenerator) writeReduce(actions *Table, state *CFSMState, la *Symbol, serial int) error {
	entry := int32(serial)
	if serial == 0 { // completed start rule at end-of-input: accept
		entry = AcceptAction
	}
	a := actions.Value(state.ID, la.Value)
	if a == actions.NullValue() {
		actions.set(state.ID, la.Value, entry)
		return nil
	}
	if a == ShiftAction {
		doReduce, how, err := lrgen.resolveSR(state, la, serial)
		if err != nil {
			return err
		}
		lrgen.conflicts = append(lrgen.conflicts, &ShiftReduceConflict{
			State:    state.ID,
			Terminal: la,
			Rule:     serial,
			Shifted:  !doReduce,
			Resolved: how,
		})
		if doReduce {
			actions.set(state.ID, la.Value, entry)
		}
		return nil
	}
	// reduce/reduce (an accept entry is a reduce of rule 0): the rule
	// declared first wins
	other := int(a)
	if a == AcceptAction {
		other = 0
	}
	if other == serial {
		return nil
	}
	chosen := serial
	if other < serial {
		chosen = other
	}
	lrgen.conflicts = append(lrgen.conflicts, &ReduceReduceConflict{
		State:    state.ID,
		Terminal: la,
		Rule1:    other,
		Rule2:    serial,
		Chosen:   chosen,
		Resolved: ResolvedByOrder,
	})
	if chosen == serial {
		actions.set(state.ID, la.Value, entry)
	}
	return nil
}

// resolveSR decides a shift/reduce conflict between an incoming terminal t
// and a completed rule. The default is to shift; the reduction wins only
// with a declared effective precedence strictly higher than t's level, or an
// equal level with left-associativity. An equal non-associative level is
// unresolvable and yields a *ConflictError.
func (lrgen *TableGenerator) resolveSR(state *CFSMState, t *Symbol, serial int) (bool, Resolution, error) {
	rule := lrgen.g.Rule(serial)
	rp, _, rok := lrgen.g.RulePrecedence(rule)
	tp, tassoc, tok := lrgen.g.TerminalPrecedence(t)
	if !rok || !tok {
		return false, ResolvedByShift, nil
	}
	if rp > tp {
		return true, ResolvedByPrecedence, nil
	}
	if rp < tp {
		return false, ResolvedByPrecedence, nil
	}
	switch tassoc {
	case AssocLeft:
		return true, ResolvedByAssociativity, nil
	case AssocRight:
		return false, ResolvedByAssociativity, nil
	}
	return false, ResolvedByShift, &ConflictError{State: state.ID, Terminal: t, Rule: serial}
}

// ===========================================================================

// Table is a parser table, indexed by state ID and symbol value. Missing
// entries read as NullValue.
type Table struct {
	matrix *sparse.IntMatrix
}

func newTable(m, n int) *Table {
	return &Table{matrix: sparse.NewIntMatrix(m, n, sparse.DefaultNullValue)}
}

func (t *Table) set(i, j int, val int32) {
	t.matrix.Set(i, j, val)
}

// NullValue returns the empty-entry marker of the table.
func (t *Table) NullValue() int32 {
	return t.matrix.NullValue()
}

// Value returns the table entry for a state and a symbol value, or
// NullValue.
func (t *Table) Value(i, j int) int32 {
	return t.matrix.Value(i, j)
}

// tableEntry is the canonical form of one table cell, input to Fingerprint.
type tableEntry struct {
	I int
	J int
	V int32
}

// Fingerprint returns a hash over the table's contents. Tables built from
// structurally identical grammars have identical fingerprints.
func (t *Table) Fingerprint() string {
	entries := make([]tableEntry, 0, t.matrix.ValueCount())
	t.matrix.Each(func(i, j int, v int32) {
		entries = append(entries, tableEntry{I: i, J: j, V: v})
	})
	return fmt.Sprintf("%x", structhash.Sha1(entries, 1))
}

// GotoTableAsHTML exports a GOTO-table in HTML-format.
func GotoTableAsHTML(lrgen *TableGenerator, w io.Writer) {
	if lrgen.gototable == nil {
		tracer().Errorf("GOTO table not yet created, cannot export to HTML")
		return
	}
	parserTableAsHTML(lrgen, "GOTO", lrgen.gototable, w)
}

// ActionTableAsHTML exports the ACTION-table in HTML-format.
func ActionTableAsHTML(lrgen *TableGenerator, w io.Writer) {
	if lrgen.actiontable == nil {
		tracer().Errorf("ACTION table not yet created, cannot export to HTML")
		return
	}
	parserTableAsHTML(lrgen, "ACTION", lrgen.actiontable, w)
}

func parserTableAsHTML(lrgen *TableGenerator, tname string, table *Table, w io.Writer) {
	io.WriteString(w, "<html><body>\n")
	io.WriteString(w, fmt.Sprintf("%s table of size = %d<p>", tname, table.matrix.ValueCount()))
	io.WriteString(w, "<table border=1 cellspacing=0 cellpadding=5>\n")
	io.WriteString(w, "<tr bgcolor=#cccccc><td></td>\n")
	var symvec []*Symbol
	lrgen.g.EachSymbol(func(A *Symbol) interface{} {
		io.WriteString(w, fmt.Sprintf("<td>%s</td>", A))
		symvec = append(symvec, A)
		return nil
	})
	io.WriteString(w, "</tr>\n")
	states := lrgen.dfa.states.Iterator()
	var td string // table cell
	for states.Next() {
		state := states.Value().(*CFSMState)
		io.WriteString(w, fmt.Sprintf("<tr><td>state %d</td>\n", state.ID))
		for _, A := range symvec {
			v := table.Value(state.ID, A.Value)
			if v == table.NullValue() {
				td = "&nbsp;"
			} else {
				td = valstring(v, table)
			}
			io.WriteString(w, "<td>")
			io.WriteString(w, td)
			io.WriteString(w, "</td>\n")
		}
		io.WriteString(w, "</tr>\n")
	}
	io.WriteString(w, "</table></body></html>\n")
}

// valstring is a short helper to stringify an action table entry.
func valstring(v int32, m *Table) string {
	if v == m.NullValue() {
		return "<none>"
	} else if v == AcceptAction {
		return "<accept>"
	} else if v == ShiftAction {
		return "<shift>"
	}
	return fmt.Sprintf("<reduce %d>", v)
}
