package push

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"unicode"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/parlr"
	"github.com/npillmayer/parlr/lr"
)

// Arithmetic test grammar:
//
//     E = E '+' E | E '-' E
//       | E '*' E | E '/' E
//       | E '^' E
//       | '-' E            %prec NEG
//       | '(' E ')'
//       | num
//
// with the usual yacc-style disambiguation: '+' and '-' bind loosest,
// '^' binds tightest and associates to the right, unary minus sits
// between '*' and '^'.
func arithEngine(t *testing.T) *Engine {
	b := lr.NewGrammarBuilder("Arith")
	b.Left("+", "-")
	b.Left("*", "/")
	b.Nonassoc("NEG")
	b.Right("^")
	b.LHS("E").N("E").T("+").N("E").End()
	b.LHS("E").N("E").T("-").N("E").End()
	b.LHS("E").N("E").T("*").N("E").End()
	b.LHS("E").N("E").T("/").N("E").End()
	b.LHS("E").N("E").T("^").N("E").End()
	b.LHS("E").T("-").N("E").Prec("NEG").End()
	b.LHS("E").T("(").N("E").T(")").End()
	b.LHS("E").T("num").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	lrgen := lr.NewTableGenerator(lr.Analysis(g))
	if err = lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	engine, err := NewEngine(g, lrgen.GotoTable(), lrgen.ActionTable(), arithActions())
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func arithActions() map[int]Action {
	binary := func(op func(a, b int) int) Action {
		return func(env interface{}, values []interface{}, loc parlr.Location, rule int) (interface{}, error) {
			return op(values[0].(int), values[2].(int)), nil
		}
	}
	return map[int]Action{
		1: binary(func(a, b int) int { return a + b }),
		2: binary(func(a, b int) int { return a - b }),
		3: binary(func(a, b int) int { return a * b }),
		4: binary(func(a, b int) int { return a / b }),
		5: binary(func(a, b int) int {
			r := 1
			for ; b > 0; b-- {
				r *= a
			}
			return r
		}),
		6: func(env interface{}, values []interface{}, loc parlr.Location, rule int) (interface{}, error) {
			return -values[1].(int), nil
		},
		7: func(env interface{}, values []interface{}, loc parlr.Location, rule int) (interface{}, error) {
			return values[1], nil
		},
		// rule 8, E = num, defaults to the value of its only RHS frame
	}
}

// tokenize hand-lexes an arithmetic input line: digit runs become 'num'
// tokens carrying their int value, everything else (sans blanks) is typed
// with its own text. Locations are on line 1, column = byte index.
func tokenize(input string) []parlr.Token {
	var tokens []parlr.Token
	runes := []rune(input)
	for i := 0; i < len(runes); {
		if runes[i] == ' ' {
			i++
			continue
		}
		start := i
		if unicode.IsDigit(runes[i]) {
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			n, _ := strconv.Atoi(string(runes[start:i]))
			tokens = append(tokens, parlr.Token{
				Type:  "num",
				Value: n,
				Loc: &parlr.Location{
					Start: parlr.Position{Line: 1, Column: start},
					End:   parlr.Position{Line: 1, Column: i},
				},
			})
			continue
		}
		i++
		tokens = append(tokens, parlr.Token{
			Type:  string(runes[start]),
			Value: string(runes[start]),
			Loc: &parlr.Location{
				Start: parlr.Position{Line: 1, Column: start},
				End:   parlr.Position{Line: 1, Column: i},
			},
		})
	}
	return tokens
}

func evaluate(e *Engine, input string) (interface{}, error) {
	p := e.NewParser()
	for _, tok := range tokenize(input) {
		if err := p.Push(tok); err != nil {
			return nil, err
		}
	}
	return p.Finish()
}

func TestArithmetic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parlr.push")
	defer teardown()
	//
	inputs := []struct {
		expr string
		want int
	}{
		{"1", 1},
		{"1+2*3", 7},    // '*' binds tighter than '+'
		{"2^3^2", 512},  // '^' associates to the right
		{"-2^2", -4},    // '^' binds tighter than unary minus
		{"1+2+3", 6},    // '+' associates to the left
		{"8-2-3", 3},    // so does '-'
		{"-2-3", -5},    // unary minus binds tighter than binary '-'
		{"(1+2)*3", 9},  // parentheses override precedence
		{"16/4/2", 2},   // '/' associates to the left
		{"2*3+4", 10},
		{"-(1+2)", -3},
	}
	engine := arithEngine(t)
	for _, input := range inputs {
		tracer().Infof("=== '%s' ========================", input.expr)
		val, err := evaluate(engine, input.expr)
		if err != nil {
			t.Errorf("'%s' failed to parse: %v", input.expr, err)
			continue
		}
		if val != input.want {
			t.Errorf("Expected '%s' to evaluate to %d, got %v", input.expr, input.want, val)
		}
	}
}

func TestUnexpectedToken(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parlr.push")
	defer teardown()
	//
	engine := arithEngine(t)
	p := engine.NewParser()
	_, err := func() (interface{}, error) {
		for _, tok := range tokenize("1+*3") {
			if err := p.Push(tok); err != nil {
				return nil, err
			}
		}
		return p.Finish()
	}()
	var unexp *UnexpectedTokenError
	if !errors.As(err, &unexp) {
		t.Fatalf("Expected an *UnexpectedTokenError, got %v", err)
	}
	if unexp.Token.Type != "*" {
		t.Errorf("Expected the error to name the offending token '*', got %s", unexp.Token)
	}
	// the instance is poisoned now
	if err = p.Push(tokenize("1")[0]); !errors.Is(err, ErrDone) {
		t.Errorf("Expected ErrDone from a spent instance, got %v", err)
	}
	if _, err = p.Finish(); !errors.Is(err, ErrDone) {
		t.Errorf("Expected ErrDone from Finish on a spent instance, got %v", err)
	}
}

func TestUnknownTerminal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parlr.push")
	defer teardown()
	//
	engine := arithEngine(t)
	p := engine.NewParser()
	err := p.Push(parlr.Token{Type: "ident", Value: "x"})
	var unexp *UnexpectedTokenError
	if !errors.As(err, &unexp) {
		t.Errorf("Expected an *UnexpectedTokenError for a token outside the grammar, got %v", err)
	}
}

func TestMalformedToken(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parlr.push")
	defer teardown()
	//
	engine := arithEngine(t)
	p := engine.NewParser()
	if err := p.Push(parlr.Token{}); err == nil {
		t.Errorf("Expected an error for a token without a type")
	}
	p = engine.NewParser()
	if err := p.Push(parlr.Token{Type: lr.EOFType}); err == nil {
		t.Errorf("Expected an error for a pushed %s token", lr.EOFType)
	}
}

func TestPrematureEnd(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parlr.push")
	defer teardown()
	//
	engine := arithEngine(t)
	p := engine.NewParser()
	for _, tok := range tokenize("1+") {
		if err := p.Push(tok); err != nil {
			t.Fatal(err)
		}
	}
	_, err := p.Finish()
	var premature *PrematureEndError
	if !errors.As(err, &premature) {
		t.Fatalf("Expected a *PrematureEndError, got %v", err)
	}
	if _, err = p.Finish(); !errors.Is(err, ErrDone) {
		t.Errorf("Expected ErrDone from the second Finish, got %v", err)
	}
}

func TestInstanceIsSingleUse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parlr.push")
	defer teardown()
	//
	engine := arithEngine(t)
	p := engine.NewParser()
	for _, tok := range tokenize("1+2") {
		if err := p.Push(tok); err != nil {
			t.Fatal(err)
		}
	}
	val, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if val != 3 {
		t.Errorf("Expected 3, got %v", val)
	}
	// accepted instances are spent, too
	if _, err = p.Finish(); !errors.Is(err, ErrDone) {
		t.Errorf("Expected ErrDone after acceptance, got %v", err)
	}
	if err = p.Push(tokenize("1")[0]); !errors.Is(err, ErrDone) {
		t.Errorf("Expected ErrDone from Push after acceptance, got %v", err)
	}
}

func TestConcurrentInstances(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parlr.push")
	defer teardown()
	//
	engine := arithEngine(t)
	inputs := []struct {
		expr string
		want int
	}{
		{"1+2*3", 7},
		{"2^3^2", 512},
		{"-2^2", -4},
		{"(1+2)*(3+4)", 21},
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		input := inputs[i%len(inputs)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				val, err := evaluate(engine, input.expr)
				if err != nil {
					t.Errorf("'%s' failed to parse: %v", input.expr, err)
					return
				}
				if val != input.want {
					t.Errorf("Expected '%s' to evaluate to %d, got %v", input.expr, input.want, val)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestActionErrorPropagates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parlr.push")
	defer teardown()
	//
	errOverflow := errors.New("number too large")
	b := lr.NewGrammarBuilder("Nums")
	b.LHS("S").N("S").T("num").End()
	b.LHS("S").T("num").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	lrgen := lr.NewTableGenerator(lr.Analysis(g))
	if err = lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	actions := map[int]Action{
		2: func(env interface{}, values []interface{}, loc parlr.Location, rule int) (interface{}, error) {
			return nil, errOverflow
		},
	}
	engine, err := NewEngine(g, lrgen.GotoTable(), lrgen.ActionTable(), actions)
	if err != nil {
		t.Fatal(err)
	}
	p := engine.NewParser()
	if err = p.Push(parlr.Token{Type: "num", Value: 1}); err != nil {
		t.Fatal(err) // rule 2 only reduces on the next token or at finish
	}
	err = p.Push(parlr.Token{Type: "num", Value: 2})
	if !errors.Is(err, errOverflow) {
		t.Errorf("Expected the action error unmodified, got %v", err)
	}
	if err = p.Push(parlr.Token{Type: "num", Value: 3}); !errors.Is(err, ErrDone) {
		t.Errorf("Expected the instance to be spent after an action error, got %v", err)
	}
}

func TestEngineRejectsUnknownAction(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parlr.push")
	defer teardown()
	//
	b := lr.NewGrammarBuilder("Tiny")
	b.LHS("S").T("a").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	lrgen := lr.NewTableGenerator(lr.Analysis(g))
	if err = lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	actions := map[int]Action{
		99: func(env interface{}, values []interface{}, loc parlr.Location, rule int) (interface{}, error) {
			return nil, nil
		},
	}
	if _, err = NewEngine(g, lrgen.GotoTable(), lrgen.ActionTable(), actions); err == nil {
		t.Errorf("Expected NewEngine to reject an action for rule 99")
	}
}

func TestEpsilonRule(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parlr.push")
	defer teardown()
	//
	// L = L 'x' | ε  — counts its x's
	b := lr.NewGrammarBuilder("List")
	b.LHS("S").N("L").End()
	b.LHS("L").N("L").T("x").End()
	b.LHS("L").Epsilon()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	lrgen := lr.NewTableGenerator(lr.Analysis(g))
	if err = lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	actions := map[int]Action{
		2: func(env interface{}, values []interface{}, loc parlr.Location, rule int) (interface{}, error) {
			return values[0].(int) + 1, nil
		},
		3: func(env interface{}, values []interface{}, loc parlr.Location, rule int) (interface{}, error) {
			if len(values) != 0 {
				return nil, fmt.Errorf("epsilon rule with %d values", len(values))
			}
			if loc.Start != loc.End {
				return nil, fmt.Errorf("epsilon rule with non-empty location %s", loc)
			}
			return 0, nil
		},
	}
	engine, err := NewEngine(g, lrgen.GotoTable(), lrgen.ActionTable(), actions)
	if err != nil {
		t.Fatal(err)
	}
	for input, want := range map[string]int{"": 0, "x": 1, "xxx": 3} {
		p := engine.NewParser()
		for _, tok := range tokenize(input) {
			if err := p.Push(tok); err != nil {
				t.Fatal(err)
			}
		}
		val, err := p.Finish()
		if err != nil {
			t.Fatal(err)
		}
		if val != want {
			t.Errorf("Expected %d x's in %q, got %v", want, input, val)
		}
	}
}

func TestReduceHookAndLocations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parlr.push")
	defer teardown()
	//
	engine := arithEngine(t)
	var reduced []string
	var last parlr.Location
	p := engine.NewParser(ReduceHook(func(lhs *lr.Symbol, loc parlr.Location) {
		reduced = append(reduced, lhs.Name)
		last = loc
	}))
	for _, tok := range tokenize("1+2") {
		if err := p.Push(tok); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := p.Finish(); err != nil {
		t.Fatal(err)
	}
	// num, num and the addition reduce, in this order
	if len(reduced) != 3 {
		t.Fatalf("Expected 3 reductions, got %v", reduced)
	}
	for _, name := range reduced {
		if name != "E" {
			t.Errorf("Expected every reduction to produce E, got %v", reduced)
		}
	}
	want := parlr.Location{
		Start: parlr.Position{Line: 1, Column: 0},
		End:   parlr.Position{Line: 1, Column: 3},
	}
	if last != want {
		t.Errorf("Expected the final reduction to cover %s, got %s", want, last)
	}
}

func TestContextValue(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parlr.push")
	defer teardown()
	//
	b := lr.NewGrammarBuilder("Tiny")
	b.LHS("S").T("a").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	lrgen := lr.NewTableGenerator(lr.Analysis(g))
	if err = lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	actions := map[int]Action{
		1: func(env interface{}, values []interface{}, loc parlr.Location, rule int) (interface{}, error) {
			return env, nil
		},
	}
	engine, err := NewEngine(g, lrgen.GotoTable(), lrgen.ActionTable(), actions)
	if err != nil {
		t.Fatal(err)
	}
	p := engine.NewParser(Context("environment"))
	if err = p.Push(parlr.Token{Type: "a", Value: "a"}); err != nil {
		t.Fatal(err)
	}
	val, err := p.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if val != "environment" {
		t.Errorf("Expected the context value to reach the action, got %v", val)
	}
}
