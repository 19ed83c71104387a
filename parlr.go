package parlr

import "fmt"

// --- Tokens -----------------------------------------------------------------

// Token is the input unit a parser consumes. Tokens are produced by a scanner
// (or by any other client code) and handed to a parser one by one.
//
// Type is the name of a terminal symbol of the grammar the parser has been
// generated from. Value is an arbitrary payload, e.g. a number literal's
// numeric value. Loc optionally carries the source region the token covers;
// parsers will merge token locations into locations for non-terminals.
type Token struct {
	Type  string
	Value interface{}
	Loc   *Location
}

func (t Token) String() string {
	if t.Loc == nil {
		return fmt.Sprintf("%s(%v)", t.Type, t.Value)
	}
	return fmt.Sprintf("%s(%v)%s", t.Type, t.Value, *t.Loc)
}

// IsValid checks the producer contract for tokens: a non-empty type name and,
// if a location is present, line numbers starting at 1 and non-negative
// columns.
func (t Token) IsValid() bool {
	if t.Type == "" {
		return false
	}
	if t.Loc != nil {
		return t.Loc.Start.IsValid() && t.Loc.End.IsValid()
	}
	return true
}

// --- Positions and locations ------------------------------------------------

// Position is a point in the source text, line-based. Lines are counted from
// 1, columns from 0.
type Position struct {
	Line   int
	Column int
}

// IsValid checks the line/column ranges of a position.
func (p Position) IsValid() bool {
	return p.Line >= 1 && p.Column >= 0
}

// Before returns true if p is located strictly before other.
func (p Position) Before(other Position) bool {
	return p.Line < other.Line || (p.Line == other.Line && p.Column < other.Column)
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Location is a region of input text. For every terminal and non-terminal, a
// parser will track which input region this symbol covers. End points just
// behind the covered region.
type Location struct {
	Start Position
	End   Position
}

// At returns a zero-width location anchored at pos. Reductions of epsilon
// productions carry such a location.
func At(pos Position) Location {
	return Location{Start: pos, End: pos}
}

// IsVoid is true for the zero location, i.e. one not referring to any input.
func (l Location) IsVoid() bool {
	return l == Location{}
}

// Extend merges two locations into the smallest location covering both.
func (l Location) Extend(other Location) Location {
	if other.IsVoid() {
		return l
	}
	if l.IsVoid() {
		return other
	}
	if other.Start.Before(l.Start) {
		l.Start = other.Start
	}
	if l.End.Before(other.End) {
		l.End = other.End
	}
	return l
}

func (l Location) String() string {
	return fmt.Sprintf("(%s…%s)", l.Start, l.End)
}
