package compiler

import (
	"errors"
	"fmt"
	"strings"

	"zawa/pkg/tape"
)

var (
	ErrMalformed             = errors.New("malformed statement")
	ErrUnknownStatement      = errors.New("unknown statement")
	ErrUnresolvedPlaceholder = errors.New("unresolved jump placeholder")
)

// Compiler lowers source statements into a tape. A Compiler is single use:
// create one per Assemble call.
type Compiler struct {
	stmts []string
	tape  []string
	// starts holds the record index of every emitted opcode, in order.
	starts []int
}

func NewCompiler(lines []string) *Compiler {
	return &Compiler{stmts: SplitStatements(lines)}
}

// Assemble compiles source lines into patched tape records. On error no
// tape is returned.
func Assemble(lines []string) ([]string, error) {
	return NewCompiler(lines).Assemble()
}

func (c *Compiler) Assemble() ([]string, error) {
	if err := c.emitAll(); err != nil {
		return nil, err
	}
	if err := c.patch(); err != nil {
		return nil, err
	}
	return c.tape, nil
}

func (c *Compiler) emitAll() error {
	for i := 0; i < len(c.stmts); i++ {
		line := stripSpace(c.stmts[i])
		if line == "" {
			continue
		}
		if err := c.statement(i, line); err != nil {
			return fmt.Errorf("statement %d %q: %w", i+1, line, err)
		}
	}
	c.emit(tape.OpExit)
	return nil
}

func (c *Compiler) emit(op tape.Opcode, operands ...string) {
	c.starts = append(c.starts, len(c.tape))
	c.tape = append(c.tape, tape.Instruction{Op: op, Operands: operands}.Records()...)
}

func (c *Compiler) statement(idx int, line string) error {
	switch {
	case strings.HasPrefix(line, "int"):
		return c.declare("int", line)
	case strings.HasPrefix(line, "str"):
		return c.declare("str", line)
	case strings.HasPrefix(line, "float"):
		return c.declare("float", line)

	case strings.HasPrefix(line, "print"):
		c.emit(tape.OpPuts, decodeText(line[len("print"):]))
		return nil

	case strings.HasPrefix(line, "sum"):
		return c.arith(tape.OpSumVar, "+", line)
	case strings.HasPrefix(line, "sub"):
		return c.arith(tape.OpSubVar, "-", line)
	case strings.HasPrefix(line, "mul"):
		return c.arith(tape.OpMulVar, "*", line)
	case strings.HasPrefix(line, "div"):
		return c.arith(tape.OpDivVar, "/", line)

	case strings.HasPrefix(line, "equ"):
		name, expr, ok := strings.Cut(line[len("equ"):], "=")
		if !ok || name == "" {
			return fmt.Errorf("%w: equ expects name=expression", ErrMalformed)
		}
		c.emit(tape.OpEquVar, name, decodeText(expr))
		return nil

	case strings.HasPrefix(line, "input"):
		name := line[len("input"):]
		if name == "" {
			return fmt.Errorf("%w: input expects a variable name", ErrMalformed)
		}
		c.emit(tape.OpCinVar, name)
		return nil

	case strings.HasPrefix(line, "using_name"):
		if err := applyMacro(c.stmts, idx+1, line[len("using_name"):]); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return nil

	case strings.HasPrefix(line, "if"):
		return c.jumpIf(line[len("if"):])

	case strings.HasPrefix(line, "endif"):
		c.emit(tape.OpJumpIfEnd)
		return nil

	case strings.HasPrefix(line, "forever"):
		if !strings.HasSuffix(line, "loop") {
			return fmt.Errorf("%w: forever block must end with loop", ErrMalformed)
		}
		c.emit(tape.OpLoopStart)
		return nil

	case strings.HasPrefix(line, "endloop"):
		c.emit(tape.OpJump, tape.PlaceholderLoop)
		return nil

	case strings.HasPrefix(line, "breakloop"):
		c.emit(tape.OpBreakLoop, tape.PlaceholderBreak)
		return nil
	}
	return ErrUnknownStatement
}

func (c *Compiler) declare(typ, line string) error {
	name, val, ok := strings.Cut(line[len(typ):], "=")
	if !ok || name == "" {
		return fmt.Errorf("%w: %s declaration expects name=value", ErrMalformed, typ)
	}
	if typ == "str" {
		val = decodeText(val)
	}
	c.emit(tape.OpSetVar, name, typ, val)
	return nil
}

func (c *Compiler) arith(op tape.Opcode, sign, line string) error {
	dest, expr, ok := strings.Cut(line[3:], "=")
	if !ok || dest == "" {
		return fmt.Errorf("%w: %s expects dest=operand%soperand", ErrMalformed, op, sign)
	}
	lhs, rhs, ok := strings.Cut(expr, sign)
	if !ok {
		return fmt.Errorf("%w: missing operator %q", ErrMalformed, sign)
	}
	t1, v1, err := typedOperand(lhs)
	if err != nil {
		return err
	}
	t2, v2, err := typedOperand(rhs)
	if err != nil {
		return err
	}
	c.emit(op, dest, t1, v1, t2, v2)
	return nil
}

// Comparison operators in detection order. The first one contained in the
// condition wins, so "a<b!=c" is a '<' test.
var comparisons = []struct{ src, sign string }{
	{"==", "="},
	{"<", "<"},
	{">", ">"},
	{"!=", "!"},
}

func (c *Compiler) jumpIf(rest string) error {
	open := strings.Index(rest, "(")
	closing := strings.LastIndex(rest, ")")
	if open == -1 || closing <= open {
		return fmt.Errorf("%w: if expects (condition)", ErrMalformed)
	}
	cond := rest[open+1 : closing]

	for _, cmp := range comparisons {
		lhs, rhs, ok := strings.Cut(cond, cmp.src)
		if !ok {
			continue
		}
		t1, v1, err := typedOperand(lhs)
		if err != nil {
			return err
		}
		t2, v2, err := typedOperand(rhs)
		if err != nil {
			return err
		}
		c.emit(tape.OpJumpIf, tape.PlaceholderIf, cmp.sign, t1, v1, t2, decodeText(v2))
		return nil
	}
	return fmt.Errorf("%w: no comparison operator in %q", ErrMalformed, cond)
}

// typedOperand strips the leading type keyword of an operand. A value that
// itself starts with a type keyword is indistinguishable from a prefixed
// one: "intx" is the int operand "x".
func typedOperand(s string) (typ, val string, err error) {
	for _, t := range []string{"int", "str", "float"} {
		if v, ok := strings.CutPrefix(s, t); ok {
			if t == "str" {
				v = decodeText(v)
			}
			return t, v, nil
		}
	}
	return "", "", fmt.Errorf("%w: operand %q needs an int, str or float prefix", ErrMalformed, s)
}
