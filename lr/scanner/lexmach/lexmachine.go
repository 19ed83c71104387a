package lexmach

import (
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/npillmayer/parlr"
	"github.com/npillmayer/parlr/lr"
	"github.com/npillmayer/parlr/lr/scanner"
)

// lexmachine adapter

// tracer traces with key 'parlr.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("parlr.scanner")
}

// LMAdapter is a lexmachine adapter to use lexmachine as a scanner. Tokens
// are emitted with the name of their terminal as token type, ready to be
// pushed into a parser.
type LMAdapter struct {
	Lexer *lexmachine.Lexer
	names []string // token names by lexmachine token id
}

// NewLMAdapter creates a new lexmachine adapter. It receives a list of
// literals ('[', ';', …), a list of keywords ("if", "for", …) and a
// map for translating token names to their lexmachine ids.
//
// NewLMAdapter will return an error if compiling the DFA failed.
func NewLMAdapter(init func(*lexmachine.Lexer), literals []string, keywords []string, tokenIds map[string]int) (*LMAdapter, error) {
	adapter := &LMAdapter{}
	adapter.Lexer = lexmachine.NewLexer()
	init(adapter.Lexer)
	for _, lit := range literals {
		r := "\\" + strings.Join(strings.Split(lit, ""), "\\")
		adapter.Lexer.Add([]byte(r), MakeToken(lit, tokenIds[lit]))
	}
	for _, name := range keywords {
		adapter.Lexer.Add([]byte(strings.ToLower(name)), MakeToken(name, tokenIds[name]))
	}
	maxid := 0
	for _, id := range tokenIds {
		if id > maxid {
			maxid = id
		}
	}
	adapter.names = make([]string, maxid+1)
	for name, id := range tokenIds {
		adapter.names[id] = name
	}
	if err := adapter.Lexer.Compile(); err != nil {
		tracer().Errorf("Error compiling DFA: %v", err)
		return nil, err
	}
	return adapter, nil
}

// Scanner creates a scanner for a given input. The scanner will implement
// the Tokenizer interface.
func (lm *LMAdapter) Scanner(input string) (*LMScanner, error) {
	s, err := lm.Lexer.Scanner([]byte(input))
	if err != nil {
		return &LMScanner{}, err
	}
	return &LMScanner{scanner: s, names: lm.names, Error: logError}, nil
}

// LMScanner is a scanner type for lexmachine scanners, implementing the
// Tokenizer interface.
type LMScanner struct {
	scanner *lexmachine.Scanner
	names   []string
	Error   func(error)
}

var _ scanner.Tokenizer = (*LMScanner)(nil)

// SetErrorHandler sets an error handler for the scanner.
func (lms *LMScanner) SetErrorHandler(h func(error)) {
	if h == nil {
		lms.Error = logError
		return
	}
	lms.Error = h
}

// Default error reporting function for lexmachine-based scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// NextToken is part of the Tokenizer interface.
func (lms *LMScanner) NextToken() parlr.Token {
	tok, err, eof := lms.scanner.Next()
	for err != nil {
		lms.Error(err)
		if ui, is := err.(*machines.UnconsumedInput); is {
			lms.scanner.TC = ui.FailTC
		}
		tok, err, eof = lms.scanner.Next()
	}
	if eof {
		return parlr.Token{Type: lr.EOFType}
	}
	token := tok.(*lexmachine.Token)
	name := ""
	if token.Type >= 0 && token.Type < len(lms.names) {
		name = lms.names[token.Type]
	}
	tracer().Debugf("token %q | %v", name, token)
	// lexmachine counts lines and columns from 1; EndColumn is inclusive
	loc := parlr.Location{
		Start: parlr.Position{Line: token.StartLine, Column: token.StartColumn - 1},
		End:   parlr.Position{Line: token.EndLine, Column: token.EndColumn},
	}
	return parlr.Token{
		Type:  name,
		Value: string(token.Lexeme),
		Loc:   &loc,
	}
}

// ---------------------------------------------------------------------------

// Skip is a pre-defined action which ignores the scanned match.
func Skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// MakeToken is a pre-defined action which wraps a scanned match into a token.
func MakeToken(name string, id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}
