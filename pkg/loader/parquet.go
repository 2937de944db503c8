package loader

import (
	"context"
	"errors"
	"os"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/exports"
	"github.com/rocketlaunchr/dataframe-go/imports"
	"github.com/xitongsys/parquet-go-source/local"

	"github.com/akhildatla/intcode/pkg/intcode"
)

// Parquet-specific errors
var (
	ErrEmptyParquet = errors.New("empty Parquet file")
)

// ReadParquet reads a Parquet file into a DataFrame.
// Uses the dataframe-go imports package with parquet-go backend.
func ReadParquet(path string) (*dataframe.DataFrame, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	ctx := context.Background()

	df, err := imports.LoadFromParquet(ctx, fr)
	if err != nil {
		return nil, err
	}

	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyParquet
	}

	return df, nil
}

// LoadParquet reads a program from a Parquet file.
func LoadParquet(path string) (intcode.Program, error) {
	df, err := ReadParquet(path)
	if err != nil {
		return nil, err
	}
	return FrameToProgram(df)
}

// WriteParquet writes a DataFrame to path as Parquet.
func WriteParquet(path string, df *dataframe.DataFrame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := exports.ExportToParquet(context.Background(), file, df); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
