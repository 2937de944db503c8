package embed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akhildatla/intcode/internal/testutil"
	"github.com/akhildatla/intcode/pkg/intcode"
)

func TestExecute_BasicProgram(t *testing.T) {
	out, err := Execute("3,0,4,0,99", 42)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{42}, out)
}

func TestExecute_Quine(t *testing.T) {
	out, err := Execute(testutil.Quine)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	testutil.AssertCellsEqual(t, intcode.MustParse(testutil.Quine), out)
}

func TestExecute_CompareToEight(t *testing.T) {
	tests := []struct {
		input int64
		want  int64
	}{
		{7, 999},
		{8, 1000},
		{9, 1001},
	}

	for _, tt := range tests {
		out, err := Execute(testutil.CompareToEight, tt.input)
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		testutil.AssertCellsEqual(t, []int64{tt.want}, out)
	}
}

func TestExecute_LargeNumber(t *testing.T) {
	out, err := Execute("104,1125899906842624,99")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{1125899906842624}, out)
}

func TestExecute_ReturnsErrorOnBadCode(t *testing.T) {
	if _, err := Execute("1,2,oops"); !errors.Is(err, intcode.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
	if _, err := Execute("42"); !errors.Is(err, intcode.ErrInvalidInstruction) {
		t.Errorf("expected ErrInvalidInstruction, got %v", err)
	}
}

func TestExecute_EmptyProgram(t *testing.T) {
	if _, err := Execute(""); err == nil {
		t.Error("expected error for empty program")
	}
}

func TestExecute_InputStarved(t *testing.T) {
	out, err := Execute(testutil.EchoTwice, 5)
	if !errors.Is(err, ErrInputStarved) {
		t.Errorf("expected ErrInputStarved, got %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{5}, out)
}

func TestExecuteFile_LoadsAndRuns(t *testing.T) {
	path := testutil.TempProgram(t, testutil.Quine)

	out, err := ExecuteFile(path)
	if err != nil {
		t.Fatalf("ExecuteFile failed: %v", err)
	}
	testutil.AssertCellsEqual(t, intcode.MustParse(testutil.Quine), out)
}

func TestExecuteFile_Assembly(t *testing.T) {
	path := testutil.TempFile(t, "IN [10]\nMUL [10], 3, [10]\nOUT [10]\nHALT\n", ".asm")

	out, err := ExecuteFile(path, 14)
	if err != nil {
		t.Fatalf("ExecuteFile failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{42}, out)
}

func TestExecuteFile_ReturnsErrorOnMissingFile(t *testing.T) {
	if _, err := ExecuteFile("/nonexistent/prog.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExecuteAssembly(t *testing.T) {
	out, err := ExecuteAssembly(`
        IN    [x]
        OUT   [x]
        HALT
x:      DATA  0
`, 7)
	if err != nil {
		t.Fatalf("ExecuteAssembly failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{7}, out)

	if _, err := ExecuteAssembly("NOPE"); err == nil {
		t.Error("expected assembly error")
	}
}

func TestExecuteWithOptions_StepLimit(t *testing.T) {
	// Jumps to itself forever.
	_, err := ExecuteWithOptions("1105,1,0", WithMaxSteps(50))
	if !errors.Is(err, ErrStepLimit) {
		t.Errorf("expected ErrStepLimit, got %v", err)
	}
}

func TestExecuteWithOptions_MaxMemory(t *testing.T) {
	// Writes 5 to address 50, then prints it.
	text := "1101,2,3,50,4,50,99"

	_, err := ExecuteWithOptions(text, WithMaxMemory(16))
	if !errors.Is(err, intcode.ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}

	out, err := ExecuteWithOptions(text, WithMaxMemory(64))
	if err != nil {
		t.Fatalf("ExecuteWithOptions failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{5}, out)
}

func TestExecute_HugeAddress(t *testing.T) {
	_, err := Execute("1,1152921504606846976,0,0,99")
	if !errors.Is(err, intcode.ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestExecuteWithOptions_Timeout(t *testing.T) {
	_, err := ExecuteWithOptions("1105,1,0", WithTimeout(10*time.Millisecond))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestExecuteWithOptions_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExecuteWithOptions("1105,1,0", WithContext(ctx))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestExecuteWithOptions_MultipleOptions(t *testing.T) {
	out, err := ExecuteWithOptions(testutil.EchoTwice,
		WithInputs(1),
		WithInputs(2),
		WithMaxSteps(1000),
		WithTimeout(time.Second),
	)
	if err != nil {
		t.Fatalf("ExecuteWithOptions failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{1, 2}, out)
}

func TestExecuteWithOptions_NilContext(t *testing.T) {
	out, err := ExecuteWithOptions("104,1,99", WithContext(nil))
	if err != nil {
		t.Fatalf("ExecuteWithOptions failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{1}, out)
}

func TestOptions(t *testing.T) {
	opts := &Options{}
	WithTimeout(5 * time.Second)(opts)
	WithMaxSteps(1000)(opts)
	WithInputs(1, 2)(opts)

	if opts.Timeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", opts.Timeout)
	}
	if opts.MaxSteps != 1000 {
		t.Errorf("expected 1000, got %d", opts.MaxSteps)
	}
	testutil.AssertCellsEqual(t, []int64{1, 2}, opts.Inputs)
}

func TestError_Variables(t *testing.T) {
	if ErrTimeout.Error() != "execution timeout exceeded" {
		t.Errorf("unexpected error message: %s", ErrTimeout.Error())
	}
	if ErrStepLimit.Error() != "step limit exceeded" {
		t.Errorf("unexpected error message: %s", ErrStepLimit.Error())
	}
	if ErrInputStarved.Error() != "program needs more input" {
		t.Errorf("unexpected error message: %s", ErrInputStarved.Error())
	}
}
