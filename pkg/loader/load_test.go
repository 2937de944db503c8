package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akhildatla/intcode/internal/testutil"
	"github.com/akhildatla/intcode/pkg/intcode"
)

func TestLoad_Formats(t *testing.T) {
	want := intcode.MustParse(testutil.Quine)
	image, err := intcode.SerializeProgram(want)
	if err != nil {
		t.Fatalf("SerializeProgram failed: %v", err)
	}

	dir := t.TempDir()
	files := map[string][]byte{
		"prog.txt":  []byte(testutil.Quine + "\n"),
		"prog":      []byte(testutil.Quine),
		"prog.icbc": image,
		"prog.asm":  []byte(intcode.Disassemble(want)),
	}

	for name, data := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, data, 0644); err != nil {
				t.Fatalf("failed to write %s: %v", name, err)
			}

			p, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			testutil.AssertCellsEqual(t, want, p)
		})
	}
}

func TestLoad_CSV(t *testing.T) {
	path := testutil.TempFile(t, "value\n104\n42\n99\n", ".CSV")

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{104, 42, 99}, p)
}

func TestSave_RoundTrip(t *testing.T) {
	cells := intcode.MustParse(testutil.CompareToEight)

	for _, name := range []string{"out.txt", "out.icbc", "out.asm", "out.csv"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := Save(path, cells); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			p, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			testutil.AssertCellsEqual(t, cells, p)
		})
	}
}

func TestSave_Unsupported(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "out.xlsx"), []int64{99})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad.txt", "1,2,x"},
		{"bad.asm", "FOO 1"},
		{"bad.icbc", "XXXX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.name)
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatalf("failed to write file: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("expected error loading %s", tt.name)
			}
		})
	}

	if _, err := Load("/nonexistent/prog.icbc"); err == nil || !strings.Contains(err.Error(), "no such file") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestWriteFrame(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "sparse.csv")
	if err := WriteFrame(path, SparseFrame([]int64{0, 0, 104, 5, 99})); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{0, 0, 104, 5, 99}, p)

	err = WriteFrame(filepath.Join(dir, "out.icbc"), MemoryFrame([]int64{1}))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
