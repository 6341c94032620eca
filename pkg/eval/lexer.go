package eval

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	NUMBER // 12, 1.5, 2e3
	STRING // 'abc' or "abc"
	IDENT  // variable name, True, False, and, or, not

	LPAREN // (
	RPAREN // )

	PLUS     // +
	MINUS    // -
	STAR     // *
	POW      // **
	SLASH    // /
	FLOORDIV // //
	PERCENT  // %

	EQ // ==
	NE // !=
	LT // <
	LE // <=
	GT // >
	GE // >=
)

type Token struct {
	Type TokenType
	Text string
	Pos  int
}

func (t Token) String() string {
	if t.Type == EOF {
		return "end of expression"
	}
	return fmt.Sprintf("%q", t.Text)
}

// twoCharOps is matched before single-character operators.
var twoCharOps = map[string]TokenType{
	"**": POW,
	"//": FLOORDIV,
	"==": EQ,
	"!=": NE,
	"<=": LE,
	">=": GE,
}

var oneCharOps = map[rune]TokenType{
	'(': LPAREN,
	')': RPAREN,
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'/': SLASH,
	'%': PERCENT,
	'<': LT,
	'>': GT,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src []rune
	pos int
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src)}
}

func (l *Lexer) peek(off int) rune {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

// Lex converts an expression into tokens, ending with EOF.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) next() (Token, error) {
	for unicode.IsSpace(l.peek(0)) {
		l.pos++
	}
	start := l.pos
	r := l.peek(0)

	switch {
	case r == 0:
		return Token{Type: EOF, Pos: start}, nil
	case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(l.peek(1))):
		return l.number(), nil
	case r == '_' || unicode.IsLetter(r):
		for r := l.peek(0); r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r); r = l.peek(0) {
			l.pos++
		}
		return Token{Type: IDENT, Text: string(l.src[start:l.pos]), Pos: start}, nil
	case r == '\'' || r == '"':
		return l.str(r)
	}

	if typ, ok := twoCharOps[string([]rune{r, l.peek(1)})]; ok {
		l.pos += 2
		return Token{Type: typ, Text: string(l.src[start:l.pos]), Pos: start}, nil
	}
	if typ, ok := oneCharOps[r]; ok {
		l.pos++
		return Token{Type: typ, Text: string(r), Pos: start}, nil
	}
	return Token{}, fmt.Errorf("%w: unexpected character %q at offset %d", ErrSyntax, r, start)
}

func (l *Lexer) number() Token {
	start := l.pos
	for unicode.IsDigit(l.peek(0)) {
		l.pos++
	}
	if l.peek(0) == '.' {
		l.pos++
		for unicode.IsDigit(l.peek(0)) {
			l.pos++
		}
	}
	if e := l.peek(0); e == 'e' || e == 'E' {
		off := 1
		if s := l.peek(1); s == '+' || s == '-' {
			off = 2
		}
		if unicode.IsDigit(l.peek(off)) {
			l.pos += off
			for unicode.IsDigit(l.peek(0)) {
				l.pos++
			}
		}
	}
	return Token{Type: NUMBER, Text: string(l.src[start:l.pos]), Pos: start}
}

func (l *Lexer) str(quote rune) (Token, error) {
	start := l.pos
	l.pos++
	var sb strings.Builder
	for {
		r := l.peek(0)
		switch r {
		case 0:
			return Token{}, fmt.Errorf("%w: unterminated string at offset %d", ErrSyntax, start)
		case quote:
			l.pos++
			return Token{Type: STRING, Text: sb.String(), Pos: start}, nil
		case '\\':
			// Other escapes are kept for puts to decode.
			if next := l.peek(1); next != 0 {
				if next != quote && next != '\\' {
					sb.WriteRune('\\')
				}
				sb.WriteRune(next)
				l.pos += 2
				continue
			}
		}
		sb.WriteRune(r)
		l.pos++
	}
}
