package eval

import (
	"errors"
	"testing"

	"zawa/pkg/value"
)

func TestEvaluate(t *testing.T) {
	scope := MapScope{
		"a":   value.FromInt(6),
		"b":   value.FromStr("7"),
		"f":   value.FromFloat(0.5),
		"s":   value.FromStr("hi"),
		"n_1": value.FromInt(10),
	}

	tests := []struct {
		expr string
		want value.Value
	}{
		{"1+2*3", value.FromInt(7)},
		{"(1+2)*3", value.FromInt(9)},
		{"7/2", value.FromFloat(3.5)},
		{"4/2", value.FromFloat(2)},
		{"7//2", value.FromInt(3)},
		{"-7//2", value.FromInt(-4)},
		{"-7%3", value.FromInt(2)},
		{"7%-3", value.FromInt(-2)},
		{"7.5//2", value.FromFloat(3)},
		{"2**10", value.FromInt(1024)},
		{"2**-1", value.FromFloat(0.5)},
		{"-2**2", value.FromInt(-4)},
		{"2**3**2", value.FromInt(512)},
		{"--3", value.FromInt(3)},
		{"1.5e2", value.FromFloat(150)},
		{".5+1", value.FromFloat(1.5)},
		{"a*b+1", value.FromInt(43)},
		{"a+f", value.FromFloat(6.5)},
		{"n_1-1", value.FromInt(9)},
		{"s+'!'", value.FromStr("hi!")},
		{`"ab"*2`, value.FromStr("abab")},
		{"1<2<3", value.FromBool(true)},
		{"1<3<2", value.FromBool(false)},
		{"a==6", value.FromBool(true)},
		{"a!=6", value.FromBool(false)},
		{"a>=6 and a<=6", value.FromBool(true)},
		{"2.0==2", value.FromBool(true)},
		{"'a'<'b'", value.FromBool(true)},
		{"'a'==1", value.FromBool(false)},
		{"0 or 5", value.FromInt(5)},
		{"3 and 0", value.FromInt(0)},
		{"0 and undefined_name", value.FromInt(0)},
		{"not a", value.FromBool(false)},
		{"not 0 == 1", value.FromBool(true)},
		{"True+1", value.FromInt(2)},
		{"False", value.FromBool(false)},
	}

	for _, tc := range tests {
		got, err := Evaluate(tc.expr, scope)
		if err != nil {
			t.Errorf("Evaluate(%q) failed: %v", tc.expr, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Evaluate(%q) = %v (%s), want %v (%s)", tc.expr, got, got.Kind, tc.want, tc.want.Kind)
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	scope := MapScope{"s": value.FromStr("hi")}

	tests := []struct {
		expr string
		want error
	}{
		{"1/0", value.ErrDivisionByZero},
		{"1//0", value.ErrDivisionByZero},
		{"1%0", value.ErrDivisionByZero},
		{"0**-1", value.ErrDivisionByZero},
		{"x+1", ErrUndefined},
		{"s-1", value.ErrType},
		{"s<1", value.ErrType},
		{"-s", value.ErrType},
		{"1+", ErrSyntax},
		{"(1+2", ErrSyntax},
		{"1 2", ErrSyntax},
		{"", ErrSyntax},
		{"a=1", ErrSyntax},
		{"'open", ErrSyntax},
		{"1 and", ErrSyntax},
		{"0x10", ErrSyntax},
	}

	for _, tc := range tests {
		_, err := Evaluate(tc.expr, scope)
		if !errors.Is(err, tc.want) {
			t.Errorf("Evaluate(%q): got %v, want %v", tc.expr, err, tc.want)
		}
	}
}

func TestLex(t *testing.T) {
	tokens, err := Lex("a**2 // (b!=3.5)")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	want := []TokenType{IDENT, POW, NUMBER, FLOORDIV, LPAREN, IDENT, NE, NUMBER, RPAREN, EOF}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, tok := range tokens {
		if tok.Type != want[i] {
			t.Errorf("token %d: got type %d (%s), want %d", i, tok.Type, tok, want[i])
		}
	}
	if tokens[7].Text != "3.5" {
		t.Errorf("number text %q, want 3.5", tokens[7].Text)
	}
}

func TestLexStringEscapes(t *testing.T) {
	tokens, err := Lex(`'it\'s\n'`)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	if tokens[0].Type != STRING || tokens[0].Text != `it's\n` {
		t.Errorf("got %v %q, want STRING %q", tokens[0].Type, tokens[0].Text, `it's\n`)
	}
}
