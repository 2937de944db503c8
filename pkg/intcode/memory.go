package intcode

import (
	"fmt"
	"slices"
)

// DefaultMaxMemory is the number of cells memory may grow to unless a
// machine sets its own limit.
const DefaultMaxMemory = 1 << 24

// Memory is the machine's growable tape of cells. Reads and writes past the
// end zero-extend it up to the limit; it never shrinks.
type Memory struct {
	cells []int64
	limit int64
}

// NewMemory creates memory holding a copy of the given image.
func NewMemory(image []int64) *Memory {
	return &Memory{cells: slices.Clone(image), limit: DefaultMaxMemory}
}

// SetLimit bounds growth to n cells. Zero or less restores DefaultMaxMemory.
// Cells already present stay addressable.
func (m *Memory) SetLimit(n int64) {
	if n <= 0 {
		n = DefaultMaxMemory
	}
	m.limit = n
}

// Limit returns the growth limit in cells.
func (m *Memory) Limit() int64 {
	return m.limit
}

// Len returns the number of addressable cells.
func (m *Memory) Len() int {
	return len(m.cells)
}

// Read returns the cell at addr, growing memory if needed.
func (m *Memory) Read(addr int64) (int64, error) {
	if err := m.ensure(addr); err != nil {
		return 0, err
	}
	return m.cells[addr], nil
}

// Write stores v at addr, growing memory if needed.
func (m *Memory) Write(addr, v int64) error {
	if err := m.ensure(addr); err != nil {
		return err
	}
	m.cells[addr] = v
	return nil
}

// Peek returns the cell at addr without growing memory. Cells past the end
// read as zero.
func (m *Memory) Peek(addr int64) int64 {
	if addr < 0 || addr >= int64(len(m.cells)) {
		return 0
	}
	return m.cells[addr]
}

// Cells returns a copy of the memory contents.
func (m *Memory) Cells() []int64 {
	return slices.Clone(m.cells)
}

// Clone returns an independent copy of m.
func (m *Memory) Clone() *Memory {
	return &Memory{cells: slices.Clone(m.cells), limit: m.limit}
}

func (m *Memory) ensure(addr int64) error {
	if addr < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAddress, addr)
	}
	if addr < int64(len(m.cells)) {
		return nil
	}
	if addr >= m.limit {
		return fmt.Errorf("%w: %d exceeds memory limit of %d cells", ErrInvalidAddress, addr, m.limit)
	}
	n := int(addr) + 1
	old := len(m.cells)
	if n > cap(m.cells) {
		// Capacity at least doubles.
		m.cells = slices.Grow(m.cells, min(max(n, 2*cap(m.cells)), int(m.limit))-old)
	}
	m.cells = m.cells[:n]
	clear(m.cells[old:])
	return nil
}
