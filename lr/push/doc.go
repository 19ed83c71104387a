/*
Package push provides a push-driven LR(1) parser runtime. Clients have to
use the tools of package lr to prepare the necessary parse tables. The
parser utilizes these tables to create a right derivation for input
supplied token by token, firing semantic actions as soon as reductions
become certain.

Control is inverted with respect to conventional table-driven parsers:
the parser never pulls from a token stream. Clients feed tokens at their
own pace with Push and terminate the parse with Finish. This makes the
runtime suitable for incremental use, e.g. interactive input or tokens
arriving over a network connection.

Usage

Clients construct a grammar and generate tables for it (see package lr),
then bind the tables to a table of semantic actions:

    engine, err := push.NewEngine(g, lrgen.GotoTable(), lrgen.ActionTable(),
        map[int]push.Action{
            1: func(env interface{}, vals []interface{}, loc parlr.Location,
                rule int) (interface{}, error) {
                return vals[0].(int) + vals[2].(int), nil
            },
            ...
        })

An engine is immutable and may produce any number of independent parser
instances; instances sharing one engine may run fully concurrently.

    p := engine.NewParser()
    for _, tok := range tokens {
        if err := p.Push(tok); err != nil { ... }
    }
    result, err := p.Finish()

A parser instance is good for a single parse: after Finish returns, or
after any error, the instance is spent and must be discarded.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package push

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'parlr.push'.
func tracer() tracing.Trace {
	return tracing.Select("parlr.push")
}
