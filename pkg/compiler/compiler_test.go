package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/akhildatla/intcode/internal/testutil"
	"github.com/akhildatla/intcode/pkg/intcode"
)

func TestCompiler_SimpleProgram(t *testing.T) {
	input := `        IN    [x]
        ADD   [x], 5, [x]
        OUT   [x]
        HALT
x:      DATA  0`

	program, err := Compile(input)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	testutil.AssertCellsEqual(t, []int64{3, 9, 1001, 9, 5, 9, 4, 9, 99, 0}, program)

	out, err := intcode.New(program).Run(10)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{15}, out)
}

func TestCompiler_BackwardJump(t *testing.T) {
	input := `start:  OUT   [n]
        ADD   [n], -1, [n]
        JT    [n], start
        HALT
n:      DATA  3`

	program, err := Compile(input)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	testutil.AssertCellsEqual(t, []int64{4, 10, 1001, 10, -1, 10, 1005, 10, 0, 99, 3}, program)

	out, err := intcode.New(program).Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{3, 2, 1}, out)
}

func TestCompiler_LabelAtEnd(t *testing.T) {
	program, err := Compile("JT 1, end\nend:")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{1105, 1, 3}, program)
}

func TestCompiler_RelativeMode(t *testing.T) {
	input := `ARB 5
OUT [rb-2]
IN [rb+1]
HALT`

	program, err := Compile(input)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{109, 5, 204, -2, 203, 1, 99}, program)
}

func TestCompiler_CaseInsensitiveMnemonics(t *testing.T) {
	program, err := Compile("add 1, 2, [0]\ndata 7, 8\nhalt")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{1101, 1, 2, 0, 7, 8, 99}, program)
}

func TestCompiler_Aliases(t *testing.T) {
	program, err := Compile("INPUT [0]\nOUTPUT [0]\nJNZ 0, 0\nJZ 1, 0\nRBO 1\nHLT")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{3, 0, 4, 0, 1105, 0, 0, 1106, 1, 0, 109, 1, 99}, program)
}

func TestCompiler_AddressMarkers(t *testing.T) {
	input := `0000: ARB   1
0002: OUT   [rb-1]
0004: HALT`

	program, err := Compile(input)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{109, 1, 204, -1, 99}, program)
}

func TestCompiler_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unknown opcode", "FOO 1", ErrUnknownOpcode},
		{"too few operands", "ADD 1, 2", ErrOperandCount},
		{"too many operands", "HALT 1", ErrOperandCount},
		{"immediate input", "IN 5", ErrImmediateWrite},
		{"immediate add target", "ADD 1, 2, 3", ErrImmediateWrite},
		{"undefined label", "JT 1, nowhere", ErrUndefinedLabel},
		{"duplicate label", "a: HALT\na: HALT", ErrDuplicateLabel},
		{"address mismatch", "0002: HALT", ErrAddressMismatch},
		{"data position", "DATA [5]", ErrInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCompiler_ErrorLineNumbers(t *testing.T) {
	_, err := Compile("HALT\n\nFOO 1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("expected line 3 in error, got %v", err)
	}
}

func TestCompiler_DisassemblyRoundTrip(t *testing.T) {
	programs := []string{
		testutil.DayTwoSample,
		testutil.Quine,
		testutil.CompareToEight,
		testutil.AmplifierSample,
		testutil.FeedbackSample,
		testutil.FeedbackSampleTwo,
		testutil.EchoTwice,
		"-4,0,100099,11101,1,1,0,21101,2,3,4,203,-2,1,2",
	}

	for _, text := range programs {
		p := intcode.MustParse(text)
		listing := intcode.Disassemble(p)

		again, err := Compile(listing)
		if err != nil {
			t.Fatalf("Compile of disassembly failed: %v\n%s", err, listing)
		}
		testutil.AssertCellsEqual(t, p, again)
	}
}

func TestCompileFile(t *testing.T) {
	path := testutil.TempFile(t, "OUT 42\nHALT\n", ".asm")

	program, err := CompileFile(path)
	if err != nil {
		t.Fatalf("CompileFile failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{104, 42, 99}, program)

	if _, err := CompileFile("/nonexistent/prog.asm"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}
