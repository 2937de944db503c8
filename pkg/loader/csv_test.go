package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/intcode/internal/testutil"
)

func TestReadCSV_Basic(t *testing.T) {
	csvData := `address,value
0,1
1,9
2,10`

	tmpDir := t.TempDir()
	csvPath := filepath.Join(tmpDir, "test.csv")
	if err := os.WriteFile(csvPath, []byte(csvData), 0644); err != nil {
		t.Fatalf("failed to write test CSV: %v", err)
	}

	df, err := ReadCSV(csvPath)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	// Check number of rows
	if df.Series[0].NRows() != 3 {
		t.Errorf("expected 3 rows, got %d", df.Series[0].NRows())
	}

	// Check column names
	names := df.Names()
	if len(names) != 2 || names[0] != "address" || names[1] != "value" {
		t.Errorf("expected [address value], got %v", names)
	}

	valueIdx, err := df.NameToColumn("value")
	if err != nil {
		t.Fatal("expected 'value' column")
	}
	if _, ok := df.Series[valueIdx].(*dataframe.SeriesInt64); !ok {
		t.Errorf("expected value column type SeriesInt64, got %T", df.Series[valueIdx])
	}
}

func TestLoadCSV_ValueColumn(t *testing.T) {
	path := testutil.TempFile(t, "value\n1\n0\n0\n0\n99\n", ".csv")

	p, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{1, 0, 0, 0, 99}, p)
}

func TestLoadCSV_NegativeNumbers(t *testing.T) {
	path := testutil.TempFile(t, "value\n109\n-1\n204\n-1\n99\n", ".csv")

	p, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{109, -1, 204, -1, 99}, p)
}

func TestLoadCSV_SparseAddresses(t *testing.T) {
	csvData := `address,value
4,99
0,1101
1,2
2,3
3,0`

	path := testutil.TempFile(t, csvData, ".csv")

	p, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{1101, 2, 3, 0, 99}, p)
}

func TestLoadCSV_Gaps(t *testing.T) {
	path := testutil.TempFile(t, "address,value\n0,104\n1,7\n5,99\n", ".csv")

	p, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	testutil.AssertCellsEqual(t, []int64{104, 7, 0, 0, 0, 99}, p)
}

func TestLoadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"no value column", "a,b\n1,2\n", ErrNoValueColumn},
		{"negative address", "address,value\n-1,5\n", ErrInvalidAddress},
		{"duplicate address", "address,value\n0,5\n0,6\n", ErrDuplicateAddress},
		{"text cell", "value\n1\nfoo\n", ErrInvalidCell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.TempFile(t, tt.data, ".csv")
			_, err := LoadCSV(path)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadCSV_FileNotFound(t *testing.T) {
	_, err := LoadCSV("/nonexistent/path/file.csv")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadCSV_EmptyFile(t *testing.T) {
	path := testutil.TempFile(t, "", ".csv")
	if _, err := LoadCSV(path); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	cells := []int64{3, 0, 4, 0, 99, -7, 1 << 40}
	path := filepath.Join(t.TempDir(), "dump.csv")

	if err := WriteCSV(path, MemoryFrame(cells)); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	p, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	testutil.AssertCellsEqual(t, cells, p)
}

func TestWriteCSV_SparseRoundTrip(t *testing.T) {
	cells := []int64{104, 0, 0, 0, 99, 0, 5}
	path := filepath.Join(t.TempDir(), "sparse.csv")

	if err := WriteCSV(path, SparseFrame(cells)); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	p, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	testutil.AssertCellsEqual(t, cells, p)
}

func TestErrorDefinitions(t *testing.T) {
	errs := []error{
		ErrEmptyFile, ErrEmptyJSON, ErrEmptyParquet,
		ErrNoValueColumn, ErrInvalidCell, ErrInvalidAddress, ErrDuplicateAddress,
		ErrUnsupportedFormat,
	}
	for _, err := range errs {
		if err == nil || err.Error() == "" {
			t.Errorf("expected non-empty error, got %v", err)
		}
	}
}
