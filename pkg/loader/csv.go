package loader

import (
	"context"
	"errors"
	"os"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/exports"
	"github.com/rocketlaunchr/dataframe-go/imports"

	"github.com/akhildatla/intcode/pkg/intcode"
)

// Error definitions
var (
	ErrEmptyFile = errors.New("empty CSV file")
)

// ReadCSV reads a CSV file into a DataFrame using dataframe-go.
// - First row is header (column names)
// - Auto-detects column types, so integer columns load as int64
func ReadCSV(path string) (*dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ctx := context.Background()
	df, err := imports.LoadFromCSV(ctx, file, imports.CSVLoadOptions{
		InferDataTypes: true,
	})
	if err != nil {
		return nil, err
	}

	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyFile
	}

	return df, nil
}

// LoadCSV reads a program from a CSV file with a value column and an
// optional address column.
func LoadCSV(path string) (intcode.Program, error) {
	df, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	return FrameToProgram(df)
}

// WriteCSV writes a DataFrame to path as CSV.
func WriteCSV(path string, df *dataframe.DataFrame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := exports.ExportToCSV(context.Background(), file, df); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
