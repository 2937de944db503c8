package loader

import (
	"bytes"
	"context"
	"errors"
	"os"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/exports"
	"github.com/rocketlaunchr/dataframe-go/imports"

	"github.com/akhildatla/intcode/pkg/intcode"
)

// JSON-specific errors
var (
	ErrEmptyJSON = errors.New("empty JSON file")
)

// ReadJSON reads a JSON Lines file, one object per row, into a DataFrame.
// The first row determines the columns. Values load as strings.
func ReadJSON(path string) (*dataframe.DataFrame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyJSON
	}

	reader := bytes.NewReader(data)
	ctx := context.Background()

	df, err := imports.LoadFromJSON(ctx, reader)
	if err != nil {
		return nil, err
	}

	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyJSON
	}

	return df, nil
}

// LoadJSON reads a program from a JSON Lines file.
func LoadJSON(path string) (intcode.Program, error) {
	df, err := ReadJSON(path)
	if err != nil {
		return nil, err
	}
	return FrameToProgram(df)
}

// WriteJSON writes a DataFrame to path as JSON Lines.
func WriteJSON(path string, df *dataframe.DataFrame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := exports.ExportToJSON(context.Background(), file, df); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
