/*
Package scanner defines an interface for scanners feeding push-parsers.

Two default scanner implementations are provided: (1) a thin wrapper over the
Go std lib 'text/scanner', and (2) an adapter for lexmachine, living in
sub-package `lexmach`. Both emit tokens in the shape the parser runtime
expects: a terminal name, the lexeme as value, and a line/column location.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package scanner

import (
	"io"
	"text/scanner"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/parlr"
	"github.com/npillmayer/parlr/lr"
	"github.com/npillmayer/parlr/lr/push"
)

// tracer traces with key 'parlr.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("parlr.scanner")
}

// Terminal names produced by the default tokenizer for text/scanner token
// classes. Tokens without a class, i.e. operators and punctuation, are typed
// with their own text ("+", "(", …). Grammars meant to be driven by the
// default tokenizer use these names for their terminals.
const (
	Ident     = "ident"
	Int       = "int"
	Float     = "float"
	Char      = "char"
	String    = "string"
	RawString = "rawstring"
	Comment   = "comment"
)

// Tokenizer is a scanner interface. NextToken returns a token with type
// lr.EOFType at the end of input.
type Tokenizer interface {
	NextToken() parlr.Token
	SetErrorHandler(func(error))
}

// Drive pumps a tokenizer into a parser instance: every token up to
// end-of-input is pushed, then the parse is finished. It returns the
// parse result or the first error the parser reported.
func Drive(p *push.Parser, tokens Tokenizer) (interface{}, error) {
	for {
		t := tokens.NextToken()
		if t.Type == lr.EOFType {
			return p.Finish()
		}
		if err := p.Push(t); err != nil {
			return nil, err
		}
	}
}

// DefaultTokenizer is a default implementation, backed by scanner.Scanner.
// Create one with GoTokenizer.
type DefaultTokenizer struct {
	scanner.Scanner
	Error        func(error) // error handler
	unifyStrings bool        // convert single chars and raw strings to strings
}

var _ Tokenizer = (*DefaultTokenizer)(nil)

// Default error reporting function for scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// GoTokenizer creates a scanner/tokenizer accepting tokens similar to the Go
// language.
func GoTokenizer(sourceID string, input io.Reader, opts ...Option) *DefaultTokenizer {
	t := &DefaultTokenizer{}
	t.Error = logError
	t.Init(input)
	t.Filename = sourceID
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetErrorHandler sets an error handler for the scanner.
func (t *DefaultTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		t.Error = logError
		return
	}
	t.Error = h
}

// NextToken is part of the Tokenizer interface.
func (t *DefaultTokenizer) NextToken() parlr.Token {
	r := t.Scan()
	lexeme := t.TokenText()
	var typ string
	switch r {
	case scanner.EOF:
		tracer().Debugf("DefaultTokenizer reached end of input")
		return parlr.Token{Type: lr.EOFType}
	case scanner.Ident:
		typ = Ident
	case scanner.Int:
		typ = Int
	case scanner.Float:
		typ = Float
	case scanner.Char:
		typ = Char
		if t.unifyStrings {
			typ = String
		}
	case scanner.String:
		typ = String
	case scanner.RawString:
		typ = RawString
		if t.unifyStrings {
			typ = String
		}
	case scanner.Comment:
		typ = Comment
	default:
		typ = lexeme
	}
	// text/scanner counts columns from 1
	start := parlr.Position{Line: t.Position.Line, Column: t.Position.Column - 1}
	endpos := t.Pos()
	end := parlr.Position{Line: endpos.Line, Column: endpos.Column - 1}
	return parlr.Token{
		Type:  typ,
		Value: lexeme,
		Loc:   &parlr.Location{Start: start, End: end},
	}
}

// --- Scanner options for the default (Go) tokenizer -------------------------

// Option configures a default tokenizer.
type Option func(t *DefaultTokenizer)

// SkipComments sets or clears mode-flag SkipComments.
func SkipComments(b bool) Option {
	return func(t *DefaultTokenizer) {
		if b {
			t.Mode |= scanner.SkipComments
		} else {
			t.Mode &^= scanner.SkipComments
		}
	}
}

// UnifyStrings sets or clears option UnifyStrings:
// treat raw strings and single chars as strings.
func UnifyStrings(b bool) Option {
	return func(t *DefaultTokenizer) {
		t.unifyStrings = b
	}
}
