package eval

import (
	"fmt"

	"zawa/pkg/value"
)

// Node is an evaluable expression tree node.
type Node interface {
	Eval(scope Scope) (value.Value, error)
}

type literalNode struct {
	val value.Value
}

func (n *literalNode) Eval(Scope) (value.Value, error) { return n.val, nil }

type nameNode struct {
	name string
}

func (n *nameNode) Eval(scope Scope) (value.Value, error) {
	v, ok := scope.Lookup(n.name)
	if !ok {
		return value.Value{}, fmt.Errorf("%w %q", ErrUndefined, n.name)
	}
	if v.Kind == value.Str {
		if num, ok := numberLiteral(v.S); ok {
			return num, nil
		}
	}
	return v, nil
}

type unaryNode struct {
	neg     bool
	operand Node
}

func (n *unaryNode) Eval(scope Scope) (value.Value, error) {
	v, err := n.operand.Eval(scope)
	if err != nil {
		return value.Value{}, err
	}
	if v.Kind == value.Str {
		return value.Value{}, fmt.Errorf("%w: bad operand type for unary operator: 'str'", value.ErrType)
	}
	if !n.neg {
		if v.Kind == value.Bool {
			return value.FromInt(v.I), nil
		}
		return v, nil
	}
	return value.Neg(v)
}

type notNode struct {
	operand Node
}

func (n *notNode) Eval(scope Scope) (value.Value, error) {
	v, err := n.operand.Eval(scope)
	if err != nil {
		return value.Value{}, err
	}
	return value.FromBool(!v.Truthy()), nil
}

// logicalNode short-circuits and yields the deciding operand.
type logicalNode struct {
	or          bool
	left, right Node
}

func (n *logicalNode) Eval(scope Scope) (value.Value, error) {
	l, err := n.left.Eval(scope)
	if err != nil {
		return value.Value{}, err
	}
	if l.Truthy() == n.or {
		return l, nil
	}
	return n.right.Eval(scope)
}

var binaryOps = map[TokenType]func(a, b value.Value) (value.Value, error){
	PLUS:     value.Add,
	MINUS:    value.Sub,
	STAR:     value.Mul,
	SLASH:    value.Div,
	FLOORDIV: value.FloorDiv,
	PERCENT:  value.Mod,
	POW:      value.Pow,
}

type binaryNode struct {
	op          TokenType
	left, right Node
}

func (n *binaryNode) Eval(scope Scope) (value.Value, error) {
	l, err := n.left.Eval(scope)
	if err != nil {
		return value.Value{}, err
	}
	r, err := n.right.Eval(scope)
	if err != nil {
		return value.Value{}, err
	}
	return binaryOps[n.op](l, r)
}

// compareNode holds a chain a op1 b op2 c, evaluated pairwise with each
// operand computed at most once.
type compareNode struct {
	ops      []TokenType
	operands []Node
}

func (n *compareNode) Eval(scope Scope) (value.Value, error) {
	left, err := n.operands[0].Eval(scope)
	if err != nil {
		return value.Value{}, err
	}
	for i, op := range n.ops {
		right, err := n.operands[i+1].Eval(scope)
		if err != nil {
			return value.Value{}, err
		}
		ok, err := compare(op, left, right)
		if err != nil {
			return value.Value{}, err
		}
		if !ok {
			return value.FromBool(false), nil
		}
		left = right
	}
	return value.FromBool(true), nil
}

func compare(op TokenType, a, b value.Value) (bool, error) {
	switch op {
	case EQ:
		return value.Equal(a, b), nil
	case NE:
		return !value.Equal(a, b), nil
	case LT:
		return value.Less(a, b)
	case GT:
		return value.Less(b, a)
	case LE:
		lt, err := value.Less(a, b)
		return lt || value.Equal(a, b), err
	case GE:
		gt, err := value.Less(b, a)
		return gt || value.Equal(a, b), err
	}
	return false, fmt.Errorf("%w: unknown comparison", ErrSyntax)
}
