package intcode

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Program is an initial memory image.
type Program []int64

// Parse parses comma-separated decimal integers. Surrounding whitespace and
// trailing separators are ignored.
func Parse(text string) (Program, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty program", ErrParse)
	}

	fields := strings.Split(text, ",")
	for len(fields) > 0 && strings.TrimSpace(fields[len(fields)-1]) == "" {
		fields = fields[:len(fields)-1]
	}

	p := make(Program, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d %q", ErrParse, i, f)
		}
		p[i] = v
	}
	return p, nil
}

// ParseFile reads a program in comma-separated text form from path.
func ParseFile(path string) (Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	p, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// program literals.
func MustParse(text string) Program {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// String encodes the program in comma-separated text form.
func (p Program) String() string {
	var sb strings.Builder
	for i, v := range p {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(v, 10))
	}
	return sb.String()
}

// Clone returns a copy of the program.
func (p Program) Clone() Program {
	return slices.Clone(p)
}
