package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/intcode/pkg/compiler"
	"github.com/akhildatla/intcode/pkg/intcode"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

// Load reads a program from path, choosing the format by extension:
// .csv, .json/.jsonl, .parquet, .icbc (binary image), .asm (assembly).
// Anything else is read as comma-separated text.
func Load(path string) (intcode.Program, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".json", ".jsonl":
		return LoadJSON(path)
	case ".parquet":
		return LoadParquet(path)
	case ".icbc":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return intcode.DeserializeProgram(data)
	case ".asm":
		return compiler.CompileFile(path)
	default:
		return intcode.ParseFile(path)
	}
}

// Save writes cells to path in the format chosen by extension, the inverse
// of Load. Tabular formats get one row per cell.
func Save(path string, cells []int64) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".json", ".jsonl", ".parquet":
		return WriteFrame(path, MemoryFrame(cells))
	case ".icbc":
		data, err := intcode.SerializeProgram(cells)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	case ".asm":
		return os.WriteFile(path, []byte(intcode.Disassemble(cells)), 0644)
	case ".txt", "":
		return os.WriteFile(path, []byte(intcode.Program(cells).String()+"\n"), 0644)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// WriteFrame writes df as CSV, JSON Lines or Parquet depending on the
// extension of path.
func WriteFrame(path string, df *dataframe.DataFrame) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return WriteCSV(path, df)
	case ".json", ".jsonl":
		return WriteJSON(path, df)
	case ".parquet":
		return WriteParquet(path, df)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
