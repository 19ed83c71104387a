package lr

import "fmt"

// Associativity of a precedence level.
type Associativity int8

// Associativity values. AssocNone marks levels declared non-associative
// (yacc's %nonassoc), typically used for unary-operator disambiguation.
const (
	AssocNone Associativity = iota
	AssocLeft
	AssocRight
)

func (a Associativity) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	}
	return "none"
}

// precLevel is one declared precedence level: a group of terminals sharing
// a binding strength and an associativity. Levels are declared from loosest
// to tightest binding.
type precLevel struct {
	assoc  Associativity
	tokens []string
}

// precInfo is the derived lookup entry for one terminal. Levels are counted
// from 1 upwards; a higher level binds tighter.
type precInfo struct {
	level int
	assoc Associativity
}

func (g *Grammar) buildPrecTable() error {
	g.prec = make(map[string]precInfo)
	for i, level := range g.levels {
		for _, name := range level.tokens {
			if prev, ok := g.prec[name]; ok {
				return fmt.Errorf("terminal %q declared in precedence levels %d and %d",
					name, prev.level, i+1)
			}
			g.prec[name] = precInfo{level: i + 1, assoc: level.assoc}
		}
	}
	return nil
}

// TerminalPrecedence returns the precedence level and associativity of a
// terminal. Levels count from 1, higher levels binding tighter. The third
// return value is false for terminals without a declared precedence; such
// terminals never participate in conflict resolution.
func (g *Grammar) TerminalPrecedence(A *Symbol) (int, Associativity, bool) {
	if A == nil {
		return 0, AssocNone, false
	}
	info, ok := g.prec[A.Name]
	return info.level, info.assoc, ok
}

// RulePrecedence returns the effective precedence of a rule: the level of
// its %prec override if present, otherwise the level of the rightmost
// terminal of its right-hand side. The third return value is false if
// neither yields a declared level.
func (g *Grammar) RulePrecedence(r *Rule) (int, Associativity, bool) {
	if r.prec != nil {
		return g.TerminalPrecedence(r.prec)
	}
	for i := len(r.rhs) - 1; i >= 0; i-- {
		if r.rhs[i].IsTerminal() {
			return g.TerminalPrecedence(r.rhs[i])
		}
	}
	return 0, AssocNone, false
}
