package push

import (
	"fmt"

	"github.com/npillmayer/parlr"
	"github.com/npillmayer/parlr/lr"
)

// Action is a semantic action callable, bound to a grammar rule by its
// serial. On reduction it receives the values of the rule's right-hand side
// frames (in order), the merged source location of the reduction, and the
// rule serial. env is the context value the parser instance was created
// with. The returned value becomes the value of the reduced non-terminal.
//
// An error returned from an action propagates unmodified out of Push or
// Finish and spends the parser instance.
type Action func(env interface{}, values []interface{}, loc parlr.Location, rule int) (interface{}, error)

// Engine binds generated parser tables to a table of semantic actions. An
// engine is immutable; it is a factory for independent parser instances and
// may be shared freely between goroutines.
//
// Rules without a bound action default to the value of their first RHS
// frame, or an empty []interface{} for epsilon rules.
type Engine struct {
	g       *lr.Grammar
	gotoT   *lr.Table
	actionT *lr.Table
	actions map[int]Action
}

// NewEngine creates an engine from a grammar, its GOTO and ACTION tables
// (see lr.TableGenerator), and the semantic actions, keyed by rule serial.
// The actions map is copied; it may be nil.
func NewEngine(g *lr.Grammar, gotoTable, actionTable *lr.Table, actions map[int]Action) (*Engine, error) {
	if g == nil || gotoTable == nil || actionTable == nil {
		return nil, fmt.Errorf("engine needs a grammar and both parser tables")
	}
	acts := make(map[int]Action, len(actions))
	for serial, a := range actions {
		if g.Rule(serial) == nil {
			return nil, fmt.Errorf("action bound to unknown rule %d", serial)
		}
		acts[serial] = a
	}
	return &Engine{
		g:       g,
		gotoT:   gotoTable,
		actionT: actionTable,
		actions: acts,
	}, nil
}

// Option configures a parser instance.
type Option func(p *Parser)

// Context sets the context value handed to every semantic action of the
// instance.
func Context(env interface{}) Option {
	return func(p *Parser) {
		p.env = env
	}
}

// ReduceHook registers a hook invoked synchronously immediately before each
// semantic action, with the reduced rule's left-hand symbol and the merged
// location. Purely observational: the hook cannot influence the parse.
func ReduceHook(hook func(lhs *lr.Symbol, loc parlr.Location)) Option {
	return func(p *Parser) {
		p.hook = hook
	}
}

// --- Parser instances -------------------------------------------------------

type phase int8

const (
	phaseReady phase = iota
	phaseAccepted
	phaseFailed
)

func (ph phase) String() string {
	switch ph {
	case phaseAccepted:
		return "accepted"
	case phaseFailed:
		return "failed"
	}
	return "ready"
}

// We store a state ID together with the semantic value and the source
// location of the symbol that produced the state.
type frame struct {
	state int
	value interface{}
	loc   parlr.Location
}

// Parser is a single-use parser instance. It consumes one token per Push
// call and produces the parse result from Finish. Instances are not safe
// for concurrent use; independent instances of one engine are.
type Parser struct {
	engine *Engine
	stack  []frame // parser stack
	phase  phase
	env    interface{}
	hook   func(*lr.Symbol, parlr.Location)
	pos    parlr.Position // just behind the last shifted token
}

// NewParser creates a fresh parser instance, positioned in the start state
// of the engine's tables.
func (e *Engine) NewParser(opts ...Option) *Parser {
	p := &Parser{
		engine: e,
		stack:  make([]frame, 0, 512),
		pos:    parlr.Position{Line: 1, Column: 0},
	}
	p.stack = append(p.stack, frame{state: 0}) // table generators number the start state 0
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) top() *frame {
	return &p.stack[len(p.stack)-1]
}

func (p *Parser) spent() error {
	return fmt.Errorf("parser instance is %s: %w", p.phase, ErrDone)
}

// Push feeds the next input token to the parser. It performs all reductions
// the token makes certain, fires their semantic actions, and finally shifts
// the token. A non-nil error spends the instance: no pending reduction is
// rolled back, and all further calls fail with ErrDone.
func (p *Parser) Push(tok parlr.Token) error {
	if p.phase != phaseReady {
		return p.spent()
	}
	if !tok.IsValid() {
		p.phase = phaseFailed
		return fmt.Errorf("malformed token %s", tok)
	}
	if tok.Type == lr.EOFType {
		p.phase = phaseFailed
		return fmt.Errorf("token type %s is reserved, call Finish to end the input", lr.EOFType)
	}
	sym := p.engine.g.SymbolByName(tok.Type)
	if sym == nil || !sym.IsTerminal() {
		p.phase = phaseFailed
		return &UnexpectedTokenError{State: p.top().state, Token: tok}
	}
	anchor := p.pos
	if tok.Loc != nil {
		anchor = tok.Loc.Start
	}
	for {
		act := p.engine.actionT.Value(p.top().state, sym.Value)
		switch {
		case act == p.engine.actionT.NullValue():
			p.phase = phaseFailed
			return &UnexpectedTokenError{State: p.top().state, Token: tok}
		case act == lr.ShiftAction:
			next := p.engine.gotoT.Value(p.top().state, sym.Value)
			if next == p.engine.gotoT.NullValue() {
				p.phase = phaseFailed
				return fmt.Errorf("no goto under %s in state %d: corrupt parser tables", sym, p.top().state)
			}
			var loc parlr.Location
			if tok.Loc != nil {
				loc = *tok.Loc
				p.pos = loc.End
			}
			tracer().Debugf("shift %s, next state = %d", sym, next)
			p.stack = append(p.stack, frame{state: int(next), value: tok.Value, loc: loc})
			return nil
		case act == lr.AcceptAction:
			// accept lives in the end-of-input column only
			p.phase = phaseFailed
			return fmt.Errorf("accept action under %s: corrupt parser tables", sym)
		default:
			if err := p.reduce(int(act), anchor); err != nil {
				p.phase = phaseFailed
				return err
			}
		}
	}
}

// Finish ends the input, treating end-of-input as a virtual final token. It
// performs the remaining reductions and returns the value of the root
// rule's action. The instance is spent afterwards, whether the parse was
// accepted or not.
func (p *Parser) Finish() (interface{}, error) {
	if p.phase != phaseReady {
		return nil, p.spent()
	}
	eof := p.engine.g.EOF()
	for {
		act := p.engine.actionT.Value(p.top().state, eof.Value)
		switch {
		case act == p.engine.actionT.NullValue():
			p.phase = phaseFailed
			return nil, &PrematureEndError{State: p.top().state}
		case act == lr.AcceptAction:
			result := p.top().value
			p.stack = p.stack[:len(p.stack)-1]
			p.phase = phaseAccepted
			tracer().Debugf("input accepted")
			return result, nil
		case act == lr.ShiftAction:
			p.phase = phaseFailed
			return nil, fmt.Errorf("shift action at end of input: corrupt parser tables")
		default:
			if err := p.reduce(int(act), p.pos); err != nil {
				p.phase = phaseFailed
				return nil, err
			}
		}
	}
}

// reduce performs a reduce action for a rule
//
//    LHS → X1 ... Xn   (with X being terminals or non-terminals)
//
// by popping the frames for X1 ... Xn, merging their locations, firing the
// rule's semantic action and pushing a frame for LHS at the state the GOTO
// table prescribes. Epsilon rules pop nothing and carry a zero-width
// location at anchor.
func (p *Parser) reduce(serial int, anchor parlr.Position) error {
	rule := p.engine.g.Rule(serial)
	if rule == nil {
		return fmt.Errorf("reduce action for unknown rule %d: corrupt parser tables", serial)
	}
	tracer().Infof("reduce %v", rule)
	n := rule.Arity()
	if len(p.stack) < n+1 {
		return fmt.Errorf("parser stack underflow reducing rule %d", serial)
	}
	var loc parlr.Location
	values := make([]interface{}, n)
	if n == 0 {
		loc = parlr.At(anchor)
	} else {
		popped := p.stack[len(p.stack)-n:]
		for k := range popped {
			values[k] = popped[k].value
		}
		loc = parlr.Location{Start: popped[0].loc.Start, End: popped[n-1].loc.End}
	}
	p.stack = p.stack[:len(p.stack)-n]
	if p.hook != nil {
		p.hook(rule.LHS, loc)
	}
	var val interface{}
	if action, ok := p.engine.actions[serial]; ok {
		v, err := action(p.env, values, loc, serial)
		if err != nil {
			return err // propagates unmodified
		}
		val = v
	} else if n > 0 {
		val = values[0]
	} else {
		val = []interface{}{}
	}
	next := p.engine.gotoT.Value(p.top().state, rule.LHS.Value)
	if next == p.engine.gotoT.NullValue() {
		return fmt.Errorf("no goto under %s in state %d: corrupt parser tables", rule.LHS, p.top().state)
	}
	p.stack = append(p.stack, frame{state: int(next), value: val, loc: loc})
	return nil
}
