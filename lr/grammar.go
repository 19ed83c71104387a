package lr

import (
	"bytes"
	"fmt"
)

// EOFType is the name of the reserved pseudo-terminal signalling the end of
// input. It may appear in lookahead sets and ACTION table columns, but never
// in the right-hand side of a rule.
const EOFType = "#eof"

// --- Symbols ----------------------------------------------------------------

// Symbol is a grammar symbol, either a terminal or a non-terminal. A symbol
// is a non-terminal if and only if it appears as the left-hand side of at
// least one rule of its grammar.
//
// Value is a dense serial id, unique within the symbol's grammar. It is used
// as a column index into the generated parser tables.
type Symbol struct {
	Name     string
	Value    int
	terminal bool
}

// IsTerminal returns true if the symbol is a terminal.
func (A *Symbol) IsTerminal() bool {
	return A.terminal
}

func (A *Symbol) String() string {
	return A.Name
}

// --- Rules ------------------------------------------------------------------

// Rule is a grammar production. Rules are numbered by declaration order;
// their serial is the id semantic actions are keyed by. Serial 0 is always
// the synthetic start rule S' → S introduced during grammar construction.
type Rule struct {
	Serial int     // order of rule in the grammar
	LHS    *Symbol // left-hand side symbol, a non-terminal
	rhs    []*Symbol
	prec   *Symbol // optional %prec-style precedence override, a terminal
}

func newRule(serial int, lhs *Symbol, rhs []*Symbol, prec *Symbol) *Rule {
	return &Rule{Serial: serial, LHS: lhs, rhs: rhs, prec: prec}
}

// RHS returns the right-hand side of the rule. Clients must not modify the
// returned slice.
func (r *Rule) RHS() []*Symbol {
	return r.rhs
}

// Arity returns the number of symbols of the rule's right-hand side.
func (r *Rule) Arity() int {
	return len(r.rhs)
}

// IsEpsilon returns true for epsilon-rules, i.e. rules with an empty RHS.
func (r *Rule) IsEpsilon() bool {
	return len(r.rhs) == 0
}

func (r *Rule) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%d: [%s] ::= [", r.Serial, r.LHS.Name)
	for i, sym := range r.rhs {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(sym.Name)
	}
	b.WriteString("]")
	return b.String()
}

// --- Grammar ----------------------------------------------------------------

// Grammar is an immutable-after-construction representation of a context
// free grammar: an ordered list of rules, a synthetic start rule with
// serial 0, and a table of operator precedence levels. Construct a Grammar
// with a GrammarBuilder.
//
// A Grammar may be cloned and the clone augmented with auxiliary rules
// (see AddRule) before table generation; augmentation is never visible to
// holders of the original.
type Grammar struct {
	Name     string
	rules    []*Rule
	symbols  map[string]*Symbol
	symseq   []*Symbol // symbols in order of creation; iteration order for EachSymbol
	eof      *Symbol
	rulesFor map[*Symbol][]*Rule
	levels   []precLevel
	prec     map[string]precInfo // derived from levels
}

// Size returns the number of rules, including the synthetic start rule.
func (g *Grammar) Size() int {
	return len(g.rules)
}

// Rule returns rule no. n of the grammar, or nil if out of range.
func (g *Grammar) Rule(n int) *Rule {
	if n < 0 || n >= len(g.rules) {
		return nil
	}
	return g.rules[n]
}

// EOF returns the end-of-input pseudo-terminal of the grammar.
func (g *Grammar) EOF() *Symbol {
	return g.eof
}

// SymbolByName returns the symbol with the given name, or nil.
func (g *Grammar) SymbolByName(name string) *Symbol {
	return g.symbols[name]
}

// symbolByValue is the inverse of Symbol.Value.
func (g *Grammar) symbolByValue(v int) *Symbol {
	if v < 0 || v >= len(g.symseq) {
		return nil
	}
	return g.symseq[v]
}

// EachSymbol iterates over all symbols of the grammar, in a stable order.
// Iteration stops early if the mapper function returns a non-nil value,
// which is then returned to the caller.
func (g *Grammar) EachSymbol(f func(A *Symbol) interface{}) interface{} {
	for _, A := range g.symseq {
		if v := f(A); v != nil {
			return v
		}
	}
	return nil
}

// FindNonTermRules returns all rules with the given non-terminal as their
// left-hand side.
func (g *Grammar) FindNonTermRules(A *Symbol) []*Rule {
	return g.rulesFor[A]
}

// resolveSymbol returns the symbol with the given name, creating it as a
// terminal if it does not yet exist.
func (g *Grammar) resolveSymbol(name string, terminal bool) *Symbol {
	if sym, ok := g.symbols[name]; ok {
		return sym
	}
	sym := &Symbol{Name: name, Value: len(g.symseq), terminal: terminal}
	g.symbols[name] = sym
	g.symseq = append(g.symseq, sym)
	return sym
}

// AddRule appends a rule to the grammar and returns its serial. It is
// intended for compiler layers that augment a cloned grammar with auxiliary
// rules (e.g. when expanding list macros). The lhs becomes a non-terminal if
// it was not one already; unknown RHS names become terminals unless a later
// AddRule turns them into non-terminals. prec may name a terminal whose
// precedence level the new rule adopts, or be empty.
func (g *Grammar) AddRule(lhs string, rhs []string, prec string) (int, error) {
	if lhs == EOFType {
		return 0, fmt.Errorf("%s is reserved and cannot be a left-hand side", EOFType)
	}
	lhsSym := g.resolveSymbol(lhs, false)
	lhsSym.terminal = false
	rhsSyms := make([]*Symbol, len(rhs))
	for i, name := range rhs {
		if name == EOFType {
			return 0, fmt.Errorf("%s is reserved and cannot appear in a right-hand side", EOFType)
		}
		rhsSyms[i] = g.resolveSymbol(name, true)
	}
	var precSym *Symbol
	if prec != "" {
		precSym = g.resolveSymbol(prec, true)
		if !precSym.terminal {
			return 0, fmt.Errorf("precedence override %q is not a terminal", prec)
		}
	}
	r := newRule(len(g.rules), lhsSym, rhsSyms, precSym)
	g.rules = append(g.rules, r)
	g.rulesFor[lhsSym] = append(g.rulesFor[lhsSym], r)
	return r.Serial, nil
}

// Clone returns a deep, independent copy of the grammar. Rules appended to
// the clone are not visible through the original, and vice versa.
func (g *Grammar) Clone() *Grammar {
	c := &Grammar{
		Name:     g.Name,
		symbols:  make(map[string]*Symbol, len(g.symbols)),
		symseq:   make([]*Symbol, 0, len(g.symseq)),
		rulesFor: make(map[*Symbol][]*Rule, len(g.rulesFor)),
		levels:   make([]precLevel, len(g.levels)),
		prec:     make(map[string]precInfo, len(g.prec)),
	}
	for _, A := range g.symseq {
		sym := &Symbol{Name: A.Name, Value: A.Value, terminal: A.terminal}
		c.symbols[sym.Name] = sym
		c.symseq = append(c.symseq, sym)
	}
	c.eof = c.symbols[g.eof.Name]
	c.rules = make([]*Rule, len(g.rules))
	for i, r := range g.rules {
		rhs := make([]*Symbol, len(r.rhs))
		for j, sym := range r.rhs {
			rhs[j] = c.symbols[sym.Name]
		}
		var prec *Symbol
		if r.prec != nil {
			prec = c.symbols[r.prec.Name]
		}
		rule := newRule(r.Serial, c.symbols[r.LHS.Name], rhs, prec)
		c.rules[i] = rule
		c.rulesFor[rule.LHS] = append(c.rulesFor[rule.LHS], rule)
	}
	copy(c.levels, g.levels)
	for name, info := range g.prec {
		c.prec[name] = info
	}
	return c
}

// Dump is a debugging helper, listing all rules of the grammar.
func (g *Grammar) Dump() {
	tracer().Debugf("--- %s --------------", g.Name)
	for _, r := range g.rules {
		tracer().Debugf("%s", r)
	}
	tracer().Debugf("-------------------------")
}

// --- Grammar builder --------------------------------------------------------

// GrammarBuilder is a builder type for grammars. Clients add rules and
// precedence levels, then call Grammar() to receive the finished grammar,
// wrapped with the synthetic start rule.
type GrammarBuilder struct {
	name   string
	rules  []ruleDecl
	levels []precLevel
	nonts  map[string]bool // names used via N() or as an LHS
	terms  map[string]bool // names used via T()
	err    error
}

type ruleDecl struct {
	lhs  string
	rhs  []string
	prec string
}

// NewGrammarBuilder creates a builder for a grammar with a given name.
// The name is for diagnostics only.
func NewGrammarBuilder(name string) *GrammarBuilder {
	return &GrammarBuilder{
		name:  name,
		nonts: make(map[string]bool),
		terms: make(map[string]bool),
	}
}

// LHS starts a new rule with the given non-terminal as its left-hand side.
// The left-hand side of the first rule becomes the root of the grammar.
func (gb *GrammarBuilder) LHS(name string) *RuleBuilder {
	return &RuleBuilder{gb: gb, decl: ruleDecl{lhs: name}}
}

// Left declares a precedence level of left-associative terminals. Levels
// are ordered by declaration, from loosest to tightest binding.
func (gb *GrammarBuilder) Left(tokens ...string) *GrammarBuilder {
	gb.levels = append(gb.levels, precLevel{assoc: AssocLeft, tokens: tokens})
	return gb
}

// Right declares a precedence level of right-associative terminals.
func (gb *GrammarBuilder) Right(tokens ...string) *GrammarBuilder {
	gb.levels = append(gb.levels, precLevel{assoc: AssocRight, tokens: tokens})
	return gb
}

// Nonassoc declares a precedence level of non-associative terminals.
// A shift/reduce conflict on such a level cannot be resolved and will abort
// table generation.
func (gb *GrammarBuilder) Nonassoc(tokens ...string) *GrammarBuilder {
	gb.levels = append(gb.levels, precLevel{assoc: AssocNone, tokens: tokens})
	return gb
}

func (gb *GrammarBuilder) fail(format string, args ...interface{}) {
	if gb.err == nil {
		gb.err = fmt.Errorf(format, args...)
	}
}

// Grammar returns the finished grammar. The grammar is augmented with a
// synthetic start rule S' → S (serial 0), where S is the LHS of the first
// declared rule.
func (gb *GrammarBuilder) Grammar() (*Grammar, error) {
	if gb.err != nil {
		return nil, gb.err
	}
	if len(gb.rules) == 0 {
		return nil, fmt.Errorf("grammar %q has no rules", gb.name)
	}
	lhsNames := make(map[string]bool)
	for _, decl := range gb.rules {
		lhsNames[decl.lhs] = true
	}
	for name := range gb.nonts {
		if !lhsNames[name] {
			return nil, fmt.Errorf("non-terminal %q does not appear as a left-hand side", name)
		}
	}
	for name := range gb.terms {
		if lhsNames[name] {
			return nil, fmt.Errorf("terminal %q appears as a left-hand side", name)
		}
	}
	g := &Grammar{
		Name:     gb.name,
		symbols:  make(map[string]*Symbol),
		rulesFor: make(map[*Symbol][]*Rule),
		levels:   gb.levels,
	}
	root := gb.rules[0].lhs
	// the synthetic start symbol gets a non-clashing primed name
	super := root + "'"
	for lhsNames[super] || gb.terms[super] {
		super += "'"
	}
	superSym := g.resolveSymbol(super, false)
	rootSym := g.resolveSymbol(root, false)
	g.rules = append(g.rules, newRule(0, superSym, []*Symbol{rootSym}, nil))
	g.rulesFor[superSym] = []*Rule{g.rules[0]}
	for _, decl := range gb.rules {
		if _, err := g.AddRule(decl.lhs, decl.rhs, decl.prec); err != nil {
			return nil, err
		}
	}
	// phantom precedence terminals last: symbol numbering must not depend
	// on precedence declarations
	for _, level := range gb.levels {
		for _, name := range level.tokens {
			if lhsNames[name] {
				return nil, fmt.Errorf("precedence token %q appears as a left-hand side", name)
			}
			g.resolveSymbol(name, true)
		}
	}
	g.eof = g.resolveSymbol(EOFType, true)
	if err := g.buildPrecTable(); err != nil {
		return nil, err
	}
	g.Dump()
	return g, nil
}

// RuleBuilder is a builder type for a single grammar rule. Append symbols
// with N and T, then close the rule with End or Epsilon.
type RuleBuilder struct {
	gb   *GrammarBuilder
	decl ruleDecl
}

// N appends a non-terminal symbol to the rule's right-hand side.
func (rb *RuleBuilder) N(name string) *RuleBuilder {
	rb.gb.nonts[name] = true
	rb.decl.rhs = append(rb.decl.rhs, name)
	return rb
}

// T appends a terminal symbol to the rule's right-hand side.
func (rb *RuleBuilder) T(name string) *RuleBuilder {
	if name == EOFType {
		rb.gb.fail("%s is reserved and cannot appear in a right-hand side", EOFType)
		return rb
	}
	rb.gb.terms[name] = true
	rb.decl.rhs = append(rb.decl.rhs, name)
	return rb
}

// Prec overrides the rule's effective precedence with the level of the
// given terminal (yacc's %prec).
func (rb *RuleBuilder) Prec(token string) *RuleBuilder {
	rb.gb.terms[token] = true
	rb.decl.prec = token
	return rb
}

// End closes the rule and hands it to the grammar builder.
func (rb *RuleBuilder) End() *GrammarBuilder {
	rb.gb.nonts[rb.decl.lhs] = true
	rb.gb.rules = append(rb.gb.rules, rb.decl)
	return rb.gb
}

// Epsilon closes the rule with an empty right-hand side.
func (rb *RuleBuilder) Epsilon() *GrammarBuilder {
	rb.decl.rhs = nil
	return rb.End()
}
