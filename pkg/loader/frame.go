// Package loader moves IntCode programs and memory dumps between files and
// Go values. Tabular formats (CSV, JSON Lines, Parquet) go through
// dataframe-go; a frame holds one cell per row in a value column, with an
// optional address column for sparse dumps.
package loader

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/intcode/pkg/intcode"
)

// Column names used by MemoryFrame and FrameToProgram.
const (
	AddressColumn = "address"
	ValueColumn   = "value"
)

var (
	ErrNoValueColumn    = errors.New("no value column")
	ErrInvalidCell      = errors.New("invalid cell")
	ErrInvalidAddress   = errors.New("invalid address")
	ErrDuplicateAddress = errors.New("duplicate address")
)

// FrameToProgram converts a DataFrame to a program. Cells come from the
// value column, or the only column when there is just one. When an address
// column is present each row sets the cell at that address and unset cells
// are zero.
func FrameToProgram(df *dataframe.DataFrame) (intcode.Program, error) {
	valueIdx := findColumn(df, ValueColumn)
	if valueIdx < 0 {
		if len(df.Series) != 1 {
			return nil, fmt.Errorf("%w among %v", ErrNoValueColumn, df.Names())
		}
		valueIdx = 0
	}
	values := df.Series[valueIdx]
	n := values.NRows()
	if n == 0 {
		return nil, fmt.Errorf("%w: no rows", intcode.ErrParse)
	}

	addrIdx := findColumn(df, AddressColumn)
	if addrIdx < 0 || addrIdx == valueIdx {
		p := make(intcode.Program, n)
		for row := range n {
			v, err := cellValue(values.Value(row))
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
			p[row] = v
		}
		return p, nil
	}

	addresses := df.Series[addrIdx]
	cells := make(map[int64]int64, n)
	var top int64 = -1
	for row := range n {
		addr, err := cellValue(addresses.Value(row))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if addr < 0 || addr > math.MaxInt32 {
			return nil, fmt.Errorf("row %d: %w: %d", row, ErrInvalidAddress, addr)
		}
		if _, dup := cells[addr]; dup {
			return nil, fmt.Errorf("row %d: %w: %d", row, ErrDuplicateAddress, addr)
		}
		v, err := cellValue(values.Value(row))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		cells[addr] = v
		top = max(top, addr)
	}

	p := make(intcode.Program, top+1)
	for addr, v := range cells {
		p[addr] = v
	}
	return p, nil
}

// MemoryFrame returns cells as a DataFrame with address and value columns.
func MemoryFrame(cells []int64) *dataframe.DataFrame {
	addresses := make([]interface{}, len(cells))
	values := make([]interface{}, len(cells))
	for i, v := range cells {
		addresses[i] = int64(i)
		values[i] = v
	}
	return newMemoryFrame(addresses, values)
}

// SparseFrame is like MemoryFrame but leaves out zero cells.
func SparseFrame(cells []int64) *dataframe.DataFrame {
	var addresses, values []interface{}
	for i, v := range cells {
		if v == 0 {
			continue
		}
		addresses = append(addresses, int64(i))
		values = append(values, v)
	}
	return newMemoryFrame(addresses, values)
}

func newMemoryFrame(addresses, values []interface{}) *dataframe.DataFrame {
	return dataframe.NewDataFrame(
		dataframe.NewSeriesInt64(AddressColumn, nil, addresses...),
		dataframe.NewSeriesInt64(ValueColumn, nil, values...),
	)
}

func findColumn(df *dataframe.DataFrame, name string) int {
	for i, s := range df.Series {
		if strings.EqualFold(s.Name(), name) {
			return i
		}
	}
	return -1
}

// cellValue converts a dataframe value to a cell. Text and JSON numbers
// load as strings, inferred CSV columns as int64.
func cellValue(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case *int64:
		if x == nil {
			return 0, fmt.Errorf("%w: missing", ErrInvalidCell)
		}
		return *x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidCell, x)
		}
		return int64(x), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidCell, x)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("%w: missing", ErrInvalidCell)
	default:
		return 0, fmt.Errorf("%w: %v (%T)", ErrInvalidCell, v, v)
	}
}
