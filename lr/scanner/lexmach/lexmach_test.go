package lexmach

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/timtadh/lexmachine"

	"github.com/npillmayer/parlr/lr"
)

var inputStrings = []string{
	"1",
	"1+12",
	"Hello #World",
	`x="mystring" // commented `,
	"1,22,333",
}

var tokenCounts = []int{1, 3, 2, 3, 3}

func makeAdapter(t *testing.T) *LMAdapter {
	literals := []string{"="}
	tokenIds := map[string]int{"=": 1, "STRING": 2, "ID": 3, "NUM": 4}
	init := func(lexer *lexmachine.Lexer) {
		lexer.Add([]byte(`//[^\n]*\n?`), Skip)
		lexer.Add([]byte(`\"[^"]*\"`), MakeToken("STRING", tokenIds["STRING"]))
		lexer.Add([]byte(`#?([a-z]|[A-Z])([a-z]|[A-Z]|[0-9]|_|-)*[!\?]?`), MakeToken("ID", tokenIds["ID"]))
		lexer.Add([]byte(`[1-9][0-9]*`), MakeToken("NUM", tokenIds["NUM"]))
		lexer.Add([]byte(`( |\,|\t|\n|\r)+`), Skip)
	}
	LM, err := NewLMAdapter(init, literals, nil, tokenIds)
	if err != nil {
		t.Fatal(err)
	}
	return LM
}

func TestLM(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parlr.scanner")
	defer teardown()
	//
	LM := makeAdapter(t)
	for i, input := range inputStrings {
		t.Logf("------+-----------------+--------")
		sc, err := LM.Scanner(input)
		if err != nil {
			t.Fatal(err)
		}
		token := sc.NextToken()
		count := 0
		for token.Type != lr.EOFType {
			t.Logf(" %15q | %15v | @%v", token.Type, token.Value, token.Loc)
			token = sc.NextToken()
			count++
		}
		if count != tokenCounts[i] {
			t.Errorf("Expected token count for #%d to be %d, is %d", i, tokenCounts[i], count)
		}
	}
	t.Logf("------+-----------------+--------")
}

func TestLMTokenTypes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parlr.scanner")
	defer teardown()
	//
	LM := makeAdapter(t)
	sc, err := LM.Scanner(`x="str"`)
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{"ID", "=", "STRING"}
	for i, want := range expected {
		token := sc.NextToken()
		if token.Type != want {
			t.Errorf("Expected token #%d to be of type %q, got %q", i, want, token.Type)
		}
		if !token.IsValid() {
			t.Errorf("Expected token #%d to satisfy the producer contract, is %s", i, token)
		}
	}
	if token := sc.NextToken(); token.Type != lr.EOFType {
		t.Errorf("Expected %s at end of input, got %q", lr.EOFType, token.Type)
	}
}

func TestLMScannerError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parlr.scanner")
	defer teardown()
	//
	LM := makeAdapter(t)
	sc, err := LM.Scanner(`1 = "abc`) // string never closes
	if err != nil {
		t.Fatal(err)
	}
	errcnt := 0
	sc.SetErrorHandler(func(e error) {
		errcnt++
	})
	count := 0
	for token := sc.NextToken(); token.Type != lr.EOFType; token = sc.NextToken() {
		count++
	}
	if errcnt == 0 {
		t.Errorf("Expected the error handler to fire for unscannable input")
	}
	if count != 2 {
		t.Errorf("Expected 2 tokens before the error, got %d", count)
	}
}
