// Package vm runs instruction tapes. A tape is decoded once into
// instructions; a Machine then walks them with a single program counter over
// one global variable store until it reaches exit or a fatal error.
package vm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sort"
	"strings"

	"zawa/pkg/eval"
	"zawa/pkg/tape"
	"zawa/pkg/value"
)

var (
	ErrCoercion  = errors.New("type coercion failed")
	ErrJumpRange = errors.New("jump target out of range")
	ErrInput     = errors.New("input failed")
	ErrTapeEnd   = errors.New("ran past the end of the tape")
	ErrStepLimit = errors.New("step limit exceeded")
	ErrBadSign   = errors.New("unknown comparison sign")
)

// Program is a decoded tape.
type Program struct {
	Instructions []tape.Instruction
}

// Load decodes tape records. Unknown opcodes are rejected here rather than
// when execution reaches them.
func Load(records []string) (*Program, error) {
	instrs, err := tape.Decode(records)
	if err != nil {
		return nil, err
	}
	return &Program{Instructions: instrs}, nil
}

// index maps a tape record index to the first instruction whose opcode sits
// at or after it.
func (p *Program) index(record int64) (int, error) {
	if record < 0 {
		return 0, fmt.Errorf("%w: %d", ErrJumpRange, record)
	}
	i := sort.Search(len(p.Instructions), func(i int) bool {
		return int64(p.Instructions[i].Pos) >= record
	})
	if i == len(p.Instructions) {
		return 0, fmt.Errorf("%w: %d", ErrJumpRange, record)
	}
	return i, nil
}

type Option func(*Machine)

func WithOutput(w io.Writer) Option { return func(m *Machine) { m.out = w } }
func WithInput(r io.Reader) Option  { return func(m *Machine) { m.in = bufio.NewReader(r) } }
func WithRand(r *rand.Rand) Option  { return func(m *Machine) { m.rng = r } }

// WithStepLimit aborts a run after n instructions. Zero means no limit.
func WithStepLimit(n int) Option { return func(m *Machine) { m.maxSteps = n } }

type Machine struct {
	Program *Program
	Vars    *Store

	// PC is the index of the next instruction to execute.
	PC     int
	Steps  int
	Halted bool

	out      io.Writer
	in       *bufio.Reader
	rng      *rand.Rand
	maxSteps int
}

func NewMachine(p *Program, opts ...Option) *Machine {
	m := &Machine{
		Program: p,
		Vars:    NewStore(),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.in == nil {
		m.in = bufio.NewReader(os.Stdin)
	}
	return m
}

// Run loads records and executes them on a fresh machine.
func Run(ctx context.Context, records []string, opts ...Option) error {
	p, err := Load(records)
	if err != nil {
		return err
	}
	return NewMachine(p, opts...).Run(ctx)
}

func (m *Machine) Run(ctx context.Context) error {
	for !m.Halted {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step executes one instruction.
func (m *Machine) Step() error {
	if m.Halted {
		return nil
	}
	if m.PC >= len(m.Program.Instructions) {
		return ErrTapeEnd
	}
	if m.maxSteps > 0 && m.Steps >= m.maxSteps {
		return fmt.Errorf("%w (%d)", ErrStepLimit, m.maxSteps)
	}
	in := m.Program.Instructions[m.PC]
	m.PC++
	m.Steps++
	if err := m.exec(in); err != nil {
		return fmt.Errorf("%s at record %d: %w", in.Op, in.Pos, err)
	}
	return nil
}

func (m *Machine) exec(in tape.Instruction) error {
	ops := in.Operands

	switch in.Op {
	case tape.OpExit:
		m.Halted = true

	case tape.OpSetVar:
		v, err := m.operand(ops[1], ops[2])
		if err != nil {
			return err
		}
		m.Vars.Set(ops[0], v)

	case tape.OpSumVar, tape.OpSubVar, tape.OpMulVar, tape.OpDivVar:
		a, err := m.operand(ops[1], ops[2])
		if err != nil {
			return err
		}
		b, err := m.operand(ops[3], ops[4])
		if err != nil {
			return err
		}
		res, err := arith[in.Op](a, b)
		if err != nil {
			return err
		}
		m.Vars.Set(ops[0], res)

	case tape.OpEquVar:
		res, err := eval.Evaluate(ops[1], m.Vars)
		if err != nil {
			return err
		}
		m.Vars.Set(ops[0], res)

	case tape.OpCinVar:
		line, err := m.in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return fmt.Errorf("%w: %w", ErrInput, err)
		}
		m.Vars.Set(ops[0], value.FromStr(strings.TrimRight(line, "\r\n")))

	case tape.OpRandomVar:
		lo, err := m.intOperand(ops[1])
		if err != nil {
			return err
		}
		hi, err := m.intOperand(ops[2])
		if err != nil {
			return err
		}
		if lo > hi {
			return fmt.Errorf("empty range for random_var (%d, %d)", lo, hi)
		}
		m.Vars.Set(ops[0], value.FromInt(lo+m.randN(hi-lo+1)))

	case tape.OpPuts:
		v, ok := m.Vars.Lookup(ops[0])
		if !ok {
			v = value.FromStr(ops[0])
		}
		text := v.String()
		if v.Kind == value.Str {
			text = unescape(text)
		}
		if _, err := io.WriteString(m.out, text); err != nil {
			return err
		}

	case tape.OpJump:
		return m.jump(ops[0])

	case tape.OpJumpIf:
		a, err := m.operand(ops[2], ops[3])
		if err != nil {
			return err
		}
		b, err := m.operand(ops[4], ops[5])
		if err != nil {
			return err
		}
		holds, err := relation(ops[1], a, b)
		if err != nil {
			return err
		}
		if !holds {
			return m.jump(ops[0])
		}

	case tape.OpJumpIfEnd, tape.OpLoopStart:
		// Markers only.

	default:
		return fmt.Errorf("%w %q", tape.ErrUnknownOpcode, in.Op)
	}
	return nil
}

var arith = map[tape.Opcode]func(a, b value.Value) (value.Value, error){
	tape.OpSumVar: value.Add,
	tape.OpSubVar: value.Sub,
	tape.OpMulVar: value.Mul,
	tape.OpDivVar: value.Div,
}

func relation(sign string, a, b value.Value) (bool, error) {
	switch sign {
	case "=":
		return value.Equal(a, b), nil
	case "!":
		return !value.Equal(a, b), nil
	case "<":
		return value.Less(a, b)
	case ">":
		return value.Less(b, a)
	}
	return false, fmt.Errorf("%w %q", ErrBadSign, sign)
}

// operand resolves text as a variable if one has that name, otherwise as a
// literal, then coerces it to the type tag of the reading instruction.
func (m *Machine) operand(typ, text string) (value.Value, error) {
	v, ok := m.Vars.Lookup(text)
	if !ok {
		v = value.FromStr(text)
	}
	res, err := value.Coerce(v, typ)
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: %w", ErrCoercion, err)
	}
	return res, nil
}

func (m *Machine) intOperand(text string) (int64, error) {
	v, err := m.operand("int", text)
	return v.I, err
}

func (m *Machine) jump(target string) error {
	rec, err := m.intOperand(target)
	if err != nil {
		return err
	}
	pc, err := m.Program.index(rec)
	if err != nil {
		return err
	}
	m.PC = pc
	return nil
}

func (m *Machine) randN(n int64) int64 {
	if m.rng != nil {
		return m.rng.Int64N(n)
	}
	return rand.Int64N(n)
}
