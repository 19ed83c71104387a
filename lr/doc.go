/*
Package lr implements prerequisites for LR parsing: a grammar and
precedence model, static grammar analysis, and a canonical LR(1)
parse table generator.

Building a Grammar

Grammars are specified using a grammar builder object. Clients add
rules, consisting of non-terminal symbols and terminals. Symbols are
plain identifier strings; a symbol is a non-terminal if and only if it
appears as the left-hand side of a rule. Grammars may contain
epsilon-productions.

Example:

    b := lr.NewGrammarBuilder("G")
    b.LHS("S").N("A").T("a").End()     // S  ->  A a
    b.LHS("A").N("B").N("D").End()     // A  ->  B D
    b.LHS("B").T("b").End()            // B  ->  b
    b.LHS("B").Epsilon()               // B  ->
    b.LHS("D").T("d").End()            // D  ->  d
    b.LHS("D").Epsilon()               // D  ->

This results in the following trivial grammar:

   b.Grammar().Dump()

   0: [S'] ::= [S]
   1: [S] ::= [A a]
   2: [A] ::= [B D]
   3: [B] ::= [b]
   4: [B] ::= []
   5: [D] ::= [d]
   6: [D] ::= []

Rule 0 is the synthetic start rule wrapping the root non-terminal; the
table generator relies on it to detect acceptance. Builders may declare
operator precedence levels, from loosest to tightest binding:

    b.Left("+", "-")
    b.Left("*", "/")
    b.Right("^")

Individual rules may override their precedence with a terminal's level,
yacc-style:

    b.LHS("E").T("-").N("E").Prec("NEG").End()

Static Grammar Analysis

After the grammar is complete, it has to be analysed. For this end, the
grammar is subjected to an LRAnalysis object, which computes FIRST sets
and determines all epsilon-derivable non-terminals.

    ga := lr.Analysis(g)
    ga.Grammar().EachSymbol(func(A *lr.Symbol) interface{} {
        fmt.Printf("FIRST(%s) = %v", A, ga.First(A))
        return nil
    })

Parser Construction

Using grammar analysis as input, a bottom-up parser can be constructed.
First a characteristic finite state machine (CFSM) is built from the
grammar, with canonical LR(1) item sets as states. The CFSM will then be
transformed into a GOTO table and an ACTION table. The CFSM will not be
thrown away, but is made available to the client. This is intended
for debugging purposes. It can be exported to Graphviz's Dot-format.

Example:

    lrgen := lr.NewTableGenerator(ga)   // ga is an LRAnalysis, see above
    if err := lrgen.CreateTables(); err != nil {
        ...                             // grammar has an unresolvable conflict
    }

Shift/reduce conflicts are resolved with the declared precedence levels
(shift by default); reduce/reduce conflicts by rule declaration order.
Every resolved conflict is recorded and may be inspected with
lrgen.Conflicts(). A shift/reduce conflict on an equal, non-associative
precedence level is unresolvable and aborts table construction.

The generated tables are consumed by the push-based runtime in package
lr/push.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lr

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parlr.lr'.
func tracer() tracing.Trace {
	return tracing.Select("parlr.lr")
}
