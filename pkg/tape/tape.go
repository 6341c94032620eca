// Package tape defines the text-encoded instruction tape shared by the
// compiler and the interpreter: opcode spellings, operand arity, jump
// placeholders and the one-record-per-line file format.
package tape

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrUnknownOpcode = errors.New("unknown opcode")
	ErrTruncated     = errors.New("truncated instruction")
)

type Opcode uint8

const (
	OpSetVar Opcode = iota
	OpSumVar
	OpSubVar
	OpMulVar
	OpDivVar
	OpEquVar
	OpCinVar
	OpPuts
	OpJump
	OpJumpIf
	OpJumpIfEnd
	OpLoopStart
	OpRandomVar
	OpBreakLoop
	OpExit
)

type opInfo struct {
	name  string
	arity int
}

var opTable = [...]opInfo{
	OpSetVar:    {"set_var", 3},
	OpSumVar:    {"sum_var", 5},
	OpSubVar:    {"sub_var", 5},
	OpMulVar:    {"mul_var", 5},
	OpDivVar:    {"div_var", 5},
	OpEquVar:    {"equ_var", 2},
	OpCinVar:    {"cin_var", 1},
	OpPuts:      {"puts", 1},
	OpJump:      {"jump", 1},
	OpJumpIf:    {"jumpif", 6},
	OpJumpIfEnd: {"jump_if_end", 0},
	OpLoopStart: {"forever_loop_start", 0},
	OpRandomVar: {"random_var", 3},
	OpBreakLoop: {"breakloop", 1},
	OpExit:      {"exit", 0},
}

var opByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opTable))
	for op, info := range opTable {
		m[info.name] = Opcode(op)
	}
	return m
}()

// Jump target placeholders emitted before patching.
const (
	PlaceholderIf    = "jump_if_idx"
	PlaceholderLoop  = "jump_idx"
	PlaceholderBreak = "breakloop_idx"
)

func IsPlaceholder(rec string) bool {
	return rec == PlaceholderIf || rec == PlaceholderLoop || rec == PlaceholderBreak
}

func (op Opcode) String() string {
	if int(op) < len(opTable) {
		return opTable[op].name
	}
	return fmt.Sprintf("Opcode(%d)", uint8(op))
}

// Arity is the number of operand records following the opcode record.
func (op Opcode) Arity() int { return opTable[op].arity }

// Separated reports whether the instruction ends with an empty record.
func (op Opcode) Separated() bool { return op != OpExit }

// Width is the total number of records the instruction occupies.
func (op Opcode) Width() int {
	if op.Separated() {
		return op.Arity() + 2
	}
	return 1
}

func Lookup(name string) (Opcode, bool) {
	op, ok := opByName[name]
	return op, ok
}

// Instruction is one decoded tape instruction. Pos is the record index of
// its opcode, which is what jump targets refer to.
type Instruction struct {
	Op       Opcode
	Pos      int
	Operands []string
}

func (in Instruction) String() string {
	if len(in.Operands) == 0 {
		return in.Op.String()
	}
	return in.Op.String() + " " + strings.Join(in.Operands, " ")
}

// Records encodes the instruction back into tape records.
func (in Instruction) Records() []string {
	recs := make([]string, 0, in.Op.Width())
	recs = append(recs, in.Op.String())
	recs = append(recs, in.Operands...)
	if in.Op.Separated() {
		recs = append(recs, "")
	}
	return recs
}

// Decode splits records into instructions. Empty records between
// instructions are skipped, so hand-written tapes may omit or double the
// separators.
func Decode(records []string) ([]Instruction, error) {
	var prog []Instruction
	for pos := 0; pos < len(records); pos++ {
		rec := records[pos]
		if rec == "" {
			continue
		}
		op, ok := Lookup(rec)
		if !ok || op == OpBreakLoop {
			return nil, fmt.Errorf("%w %q at record %d", ErrUnknownOpcode, rec, pos)
		}
		n := op.Arity()
		if pos+n >= len(records) {
			return nil, fmt.Errorf("%w: %s at record %d needs %d operands", ErrTruncated, op, pos, n)
		}
		ops := make([]string, n)
		copy(ops, records[pos+1:pos+1+n])
		prog = append(prog, Instruction{Op: op, Pos: pos, Operands: ops})
		pos += n
	}
	return prog, nil
}

// Read loads a tape file: one record per line with the line terminator
// stripped. Record text is otherwise kept as is, so operands may begin with
// spaces.
func Read(r io.Reader) ([]string, error) {
	var records []string
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 || err == nil {
			records = append(records, strings.TrimRight(line, "\r\n"))
		}
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Write stores records joined by newlines, without a trailing newline.
func Write(w io.Writer, records []string) error {
	_, err := io.WriteString(w, strings.Join(records, "\n"))
	return err
}
