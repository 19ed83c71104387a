package lr

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Resolution names the rule that decided a conflict.
type Resolution int8

// Resolution values.
const (
	ResolvedByShift         Resolution = iota // default: shift wins
	ResolvedByPrecedence                      // precedence levels differed
	ResolvedByAssociativity                   // equal level, associativity decided
	ResolvedByOrder                           // rule declaration order decided
)

func (r Resolution) String() string {
	switch r {
	case ResolvedByPrecedence:
		return "precedence"
	case ResolvedByAssociativity:
		return "associativity"
	case ResolvedByOrder:
		return "declaration order"
	}
	return "default shift"
}

// Conflict is a state/terminal pair where more than one action was
// structurally possible before resolution.
type Conflict interface {
	conflict()
	String() string
}

// ShiftReduceConflict is a resolved conflict between shifting a terminal
// and reducing a completed rule.
type ShiftReduceConflict struct {
	State    int
	Terminal *Symbol
	Rule     int  // serial of the rule that wanted to reduce
	Shifted  bool // true if the shift won
	Resolved Resolution
}

func (c *ShiftReduceConflict) conflict() {}

func (c *ShiftReduceConflict) String() string {
	verdict := "reduce"
	if c.Shifted {
		verdict = "shift"
	}
	return fmt.Sprintf("state %d, token %s: shift/reduce(%d) resolved to %s by %s",
		c.State, c.Terminal, c.Rule, verdict, c.Resolved)
}

// ReduceReduceConflict is a resolved conflict between reducing two
// different completed rules under the same lookahead.
type ReduceReduceConflict struct {
	State    int
	Terminal *Symbol
	Rule1    int
	Rule2    int
	Chosen   int
	Resolved Resolution
}

func (c *ReduceReduceConflict) conflict() {}

func (c *ReduceReduceConflict) String() string {
	return fmt.Sprintf("state %d, token %s: reduce(%d)/reduce(%d) resolved to reduce(%d) by %s",
		c.State, c.Terminal, c.Rule1, c.Rule2, c.Chosen, c.Resolved)
}

var (
	_ Conflict = &ShiftReduceConflict{}
	_ Conflict = &ReduceReduceConflict{}
)

// ConflictError is the fatal variant: a shift/reduce conflict on an equal,
// non-associative precedence level has no defined resolution. Table
// construction aborts with this error instead of guessing.
type ConflictError struct {
	State    int
	Terminal *Symbol
	Rule     int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"unresolvable shift/reduce conflict in state %d: token %s and rule %d share a non-associative precedence level",
		e.State, e.Terminal, e.Rule)
}

// DumpConflicts renders the conflict report to the terminal. We use pterm
// for moderately fancy output.
func (lrgen *TableGenerator) DumpConflicts() {
	if len(lrgen.conflicts) == 0 {
		pterm.Info.Println("grammar is conflict-free")
		return
	}
	pterm.Info.Printf("%d conflict(s) resolved:\n", len(lrgen.conflicts))
	for _, c := range lrgen.conflicts {
		pterm.Warning.Println(c.String())
	}
}
