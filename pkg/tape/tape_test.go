package tape

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	records := []string{
		"set_var", "a", "int", "3", "",
		"forever_loop_start", "",
		"jumpif", "14", "<", "int", "a", "int", "9", "",
		"",
		"puts", "", "",
		"exit",
	}
	got, err := Decode(records)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := []Instruction{
		{Op: OpSetVar, Pos: 0, Operands: []string{"a", "int", "3"}},
		{Op: OpLoopStart, Pos: 5, Operands: []string{}},
		{Op: OpJumpIf, Pos: 7, Operands: []string{"14", "<", "int", "a", "int", "9"}},
		// An empty operand is still an operand.
		{Op: OpPuts, Pos: 16, Operands: []string{""}},
		{Op: OpExit, Pos: 19, Operands: []string{}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode mismatch\n got: %v\nwant: %v", got, want)
	}
}

func TestDecodeWithoutSeparators(t *testing.T) {
	got, err := Decode([]string{"puts", "a", "puts", "b", "exit"})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(got) != 3 || got[1].Pos != 2 || got[1].Operands[0] != "b" {
		t.Errorf("got %v", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		records []string
		want    error
	}{
		{"unknown opcode", []string{"push", "1", ""}, ErrUnknownOpcode},
		{"unpatched break", []string{"breakloop", "breakloop_idx", ""}, ErrUnknownOpcode},
		{"truncated", []string{"jumpif", "3", "<"}, ErrTruncated},
		{"operands run to end", []string{"set_var", "a", "int"}, ErrTruncated},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.records); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestInstructionRecords(t *testing.T) {
	in := Instruction{Op: OpSumVar, Operands: []string{"c", "int", "a", "int", "b"}}
	want := []string{"sum_var", "c", "int", "a", "int", "b", ""}
	if got := in.Records(); !reflect.DeepEqual(got, want) {
		t.Errorf("Records() = %q, want %q", got, want)
	}
	if got := (Instruction{Op: OpExit}).Records(); !reflect.DeepEqual(got, []string{"exit"}) {
		t.Errorf("exit Records() = %q", got)
	}
	if in.String() != "sum_var c int a int b" {
		t.Errorf("String() = %q", in.String())
	}
}

func TestOpcodeTable(t *testing.T) {
	tests := []struct {
		name  string
		arity int
		width int
	}{
		{"set_var", 3, 5},
		{"sum_var", 5, 7},
		{"equ_var", 2, 4},
		{"cin_var", 1, 3},
		{"puts", 1, 3},
		{"jump", 1, 3},
		{"jumpif", 6, 8},
		{"jump_if_end", 0, 2},
		{"forever_loop_start", 0, 2},
		{"random_var", 3, 5},
		{"breakloop", 1, 3},
		{"exit", 0, 1},
	}
	for _, tc := range tests {
		op, ok := Lookup(tc.name)
		if !ok {
			t.Errorf("Lookup(%q) failed", tc.name)
			continue
		}
		if op.String() != tc.name || op.Arity() != tc.arity || op.Width() != tc.width {
			t.Errorf("%s: got name %q arity %d width %d, want arity %d width %d",
				tc.name, op, op.Arity(), op.Width(), tc.arity, tc.width)
		}
	}
	if _, ok := Lookup("jump_idx"); ok {
		t.Error("placeholder must not be an opcode")
	}
	if !IsPlaceholder(PlaceholderBreak) || IsPlaceholder("12") {
		t.Error("IsPlaceholder misclassifies records")
	}
}

func TestReadWrite(t *testing.T) {
	records := []string{"set_var", "s", "str", "a b", "", "puts", "s", "", "exit"}
	var buf bytes.Buffer
	if err := Write(&buf, records); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if strings.HasSuffix(buf.String(), "\n") {
		t.Error("tape must not end with a newline")
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(got, records) {
		t.Errorf("Read = %q, want %q", got, records)
	}
}

func TestReadKeepsRecordText(t *testing.T) {
	src := "puts\r\n  hello \r\n\r\nexit\n"
	got, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	want := []string{"puts", "  hello ", "", "exit"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read = %q, want %q", got, want)
	}
}
