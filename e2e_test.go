package main

import (
	"bytes"
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"zawa/pkg/compiler"
	"zawa/pkg/tape"
	"zawa/pkg/vm"
)

// pipeline compiles src, round-trips the tape through its file encoding and
// runs it with stdin as input.
func pipeline(t *testing.T, src, stdin string) (string, *vm.Machine) {
	t.Helper()

	// 1. Compile
	records, err := compiler.Assemble(strings.Split(src, "\n"))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	// 2. Encode and decode the tape file
	var file bytes.Buffer
	if err := tape.Write(&file, records); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	loaded, err := tape.Read(&file)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	// 3. Run
	prog, err := vm.Load(loaded)
	if err != nil {
		t.Fatalf("Load failed: %v\nTape:\n%s", err, strings.Join(records, "\n"))
	}
	var out bytes.Buffer
	m := vm.NewMachine(prog,
		vm.WithOutput(&out),
		vm.WithInput(strings.NewReader(stdin)),
		vm.WithRand(rand.New(rand.NewPCG(1, 2))),
		vm.WithStepLimit(100000),
	)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v\nOutput so far: %q", err, out.String())
	}
	return out.String(), m
}

func TestPipelineArithmetic(t *testing.T) {
	out, _ := pipeline(t, "int a=3;int b=4;sum c=int a+int b;print c", "")
	if out != "7" {
		t.Errorf("output %q, want %q", out, "7")
	}

	// print takes no type keyword, so "str c" is printed as literal text.
	out, m := pipeline(t, "int a=3;int b=4;sum c=int a+int b;print str c", "")
	if out != "strc" {
		t.Errorf("output %q, want %q", out, "strc")
	}
	if v, _ := m.Vars.Lookup("c"); v.String() != "7" {
		t.Errorf("c = %v, want 7", v)
	}
}

func TestPipelineOctalEscape(t *testing.T) {
	out, _ := pipeline(t, `print a\0b;print \101`, "")
	if out != "a\x00bA" {
		t.Errorf("output %q, want %q", out, "a\x00bA")
	}
}

func TestPipelineIfSkipsBody(t *testing.T) {
	_, m := pipeline(t, "if(int 5<int 3);print no;endif", "")
	// jumpif, then straight to exit.
	if m.Steps != 2 {
		t.Errorf("executed %d instructions, want 2", m.Steps)
	}

	out, m := pipeline(t, "if(int 3<int 5);print yes;endif", "")
	if out != "yes" || m.Steps != 4 {
		t.Errorf("output %q after %d instructions, want yes after 4", out, m.Steps)
	}
}

func TestPipelineCountdown(t *testing.T) {
	src := `
using_name counter = n;
input counter;
forever loop;
	print counter;
	print \c;
	sub counter = int counter - int 1;
	if (int counter == int 0);
		breakloop;
	endif;
endloop;
print done`
	out, m := pipeline(t, src, "3\n")
	if out != "3 2 1 done" {
		t.Errorf("output %q, want %q", out, "3 2 1 done")
	}
	if v, ok := m.Vars.Lookup("n"); !ok || v.String() != "0" {
		t.Errorf("n = %v, %v", v, ok)
	}
}

func TestPipelineNestedLoops(t *testing.T) {
	src := `
int i=0;
forever loop;
	sum i=int i+int 1;
	int j=0;
	forever loop;
		sum j=int j+int 1;
		print *;
		if(int j==int i);
			breakloop;
		endif;
	endloop;
	print \n;
	if(int i==int 3);
		breakloop;
	endif;
endloop`
	out, _ := pipeline(t, src, "")
	want := "*\n**\n***\n"
	if out != want {
		t.Errorf("output %q, want %q", out, want)
	}
}

func TestPipelineExpressions(t *testing.T) {
	src := `
int a = 6;
input b;
equ c = (a * b + 1) // 2;
equ ok = (c == 21) and (a < b);
float half = 0.5;
mul r = float half * int a;
print c; print ,; print ok; print ,; print r`
	out, _ := pipeline(t, src, "7")
	if out != "21,True,3.0" {
		t.Errorf("output %q, want %q", out, "21,True,3.0")
	}
}

func TestPipelineStrings(t *testing.T) {
	src := `
str greet = hello,\s;
input name;
sum msg = str greet + str name;
print msg;
print \n;
div q = int 7 / int 2;
print q`
	out, _ := pipeline(t, src, "zawa\n")
	if out != "hello, zawa\n3.5" {
		t.Errorf("output %q, want %q", out, "hello, zawa\n3.5")
	}
}
