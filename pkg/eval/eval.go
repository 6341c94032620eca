// Package eval implements the arithmetic and boolean expression language used
// by equ statements.
//
// Expressions follow the host-language precedence:
//
//	or < and < not < comparisons < + - < * / // % < unary + - < **
//
// Comparisons chain (a < b < c), and/or return one of their operands, and **
// is right associative. Identifiers are looked up in a Scope; text values
// that spell a number act as that number.
package eval

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"zawa/pkg/value"
)

var (
	ErrSyntax    = errors.New("syntax error")
	ErrUndefined = errors.New("undefined name")
)

// Scope resolves variable names.
type Scope interface {
	Lookup(name string) (value.Value, bool)
}

// MapScope is a Scope backed by a plain map.
type MapScope map[string]value.Value

func (m MapScope) Lookup(name string) (value.Value, bool) {
	v, ok := m[name]
	return v, ok
}

// Evaluate parses and evaluates expr against scope.
func Evaluate(expr string, scope Scope) (value.Value, error) {
	n, err := Parse(expr)
	if err != nil {
		return value.Value{}, err
	}
	return n.Eval(scope)
}

// Parse builds the expression tree without evaluating it.
func Parse(expr string) (Node, error) {
	tokens, err := Lex(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	n, err := p.or()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != EOF {
		return nil, fmt.Errorf("%w: unexpected %s at offset %d", ErrSyntax, tok, tok.Pos)
	}
	return n, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) keyword(word string) bool {
	tok := p.peek()
	if tok.Type == IDENT && tok.Text == word {
		p.pos++
		return true
	}
	return false
}

func (p *parser) or() (Node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.keyword("or") {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = &logicalNode{or: true, left: left, right: right}
	}
	return left, nil
}

func (p *parser) and() (Node, error) {
	left, err := p.not()
	if err != nil {
		return nil, err
	}
	for p.keyword("and") {
		right, err := p.not()
		if err != nil {
			return nil, err
		}
		left = &logicalNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) not() (Node, error) {
	if p.keyword("not") {
		operand, err := p.not()
		if err != nil {
			return nil, err
		}
		return &notNode{operand: operand}, nil
	}
	return p.comparison()
}

func isComparison(t TokenType) bool {
	switch t {
	case EQ, NE, LT, LE, GT, GE:
		return true
	}
	return false
}

func (p *parser) comparison() (Node, error) {
	first, err := p.sum()
	if err != nil {
		return nil, err
	}
	if !isComparison(p.peek().Type) {
		return first, nil
	}
	cmp := &compareNode{operands: []Node{first}}
	for isComparison(p.peek().Type) {
		cmp.ops = append(cmp.ops, p.next().Type)
		operand, err := p.sum()
		if err != nil {
			return nil, err
		}
		cmp.operands = append(cmp.operands, operand)
	}
	return cmp, nil
}

func (p *parser) sum() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for t := p.peek().Type; t == PLUS || t == MINUS; t = p.peek().Type {
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: t, left: left, right: right}
	}
	return left, nil
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for t := p.peek().Type; t == STAR || t == SLASH || t == FLOORDIV || t == PERCENT; t = p.peek().Type {
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: t, left: left, right: right}
	}
	return left, nil
}

func (p *parser) unary() (Node, error) {
	if t := p.peek().Type; t == PLUS || t == MINUS {
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{neg: t == MINUS, operand: operand}, nil
	}
	return p.power()
}

// power binds tighter than a unary minus on its left but not on its right:
// -2**2 is -4 and 2**-1 is 0.5.
func (p *parser) power() (Node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != POW {
		return base, nil
	}
	p.next()
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: POW, left: base, right: exp}, nil
}

func (p *parser) primary() (Node, error) {
	tok := p.next()
	switch tok.Type {
	case NUMBER:
		v, ok := numberLiteral(tok.Text)
		if !ok {
			return nil, fmt.Errorf("%w: bad number %q", ErrSyntax, tok.Text)
		}
		return &literalNode{val: v}, nil
	case STRING:
		return &literalNode{val: value.FromStr(tok.Text)}, nil
	case IDENT:
		switch tok.Text {
		case "True":
			return &literalNode{val: value.FromBool(true)}, nil
		case "False":
			return &literalNode{val: value.FromBool(false)}, nil
		case "and", "or", "not":
			return nil, fmt.Errorf("%w: unexpected %s at offset %d", ErrSyntax, tok, tok.Pos)
		}
		return &nameNode{name: tok.Text}, nil
	case LPAREN:
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.Type != RPAREN {
			return nil, fmt.Errorf("%w: expected ) at offset %d, got %s", ErrSyntax, closing.Pos, closing)
		}
		return inner, nil
	}
	return nil, fmt.Errorf("%w: unexpected %s at offset %d", ErrSyntax, tok, tok.Pos)
}

// numberLiteral parses decimal integer and float literals. Text that is
// not a plain number (inf, hex, underscores) is rejected.
func numberLiteral(s string) (value.Value, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xXpP_nN") {
		return value.Value{}, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return value.FromInt(i), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.FromFloat(f), true
	}
	return value.Value{}, false
}
