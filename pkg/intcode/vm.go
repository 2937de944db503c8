// Package intcode implements the IntCode virtual machine.
//
// The machine is a register-less interpreter over a growable tape of signed
// 64-bit cells with:
//   - three addressing modes (position, immediate, relative)
//   - a FIFO input queue fed by the caller
//   - explicit suspension when input runs dry or a value is output
//
// Basic usage:
//
//	m := intcode.New(program)
//	outputs, err := m.Run(1)
//
// Cooperative usage, driving the machine one pause at a time:
//
//	for {
//	    p, err := m.Resume()
//	    if err != nil {
//	        return err
//	    }
//	    switch p.Status {
//	    case intcode.StatusNeedInput:
//	        m.AddInput(next())
//	    case intcode.StatusOutput:
//	        handle(p.Value)
//	    case intcode.StatusDone:
//	        return nil
//	    }
//	}
package intcode

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Error definitions
var (
	ErrParse              = errors.New("malformed program")
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrInvalidMode        = errors.New("invalid addressing mode")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrInputStarved       = errors.New("input exhausted")
	ErrStepLimitExceeded  = errors.New("step limit exceeded")
)

// Status tells why Resume returned control to the caller.
type Status uint8

const (
	StatusNeedInput Status = iota // IN reached with an empty queue
	StatusOutput                  // OUT executed; Pause.Value holds the value
	StatusDone                    // HALT reached
)

// String returns the name of the status.
func (s Status) String() string {
	switch s {
	case StatusNeedInput:
		return "NeedInput"
	case StatusOutput:
		return "Output"
	case StatusDone:
		return "Done"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Pause is the externally observable state after a call to Resume.
type Pause struct {
	Status Status
	Value  int64 // valid when Status == StatusOutput
}

func (p Pause) String() string {
	if p.Status == StatusOutput {
		return fmt.Sprintf("Output(%d)", p.Value)
	}
	return p.Status.String()
}

// ExecutionStats contains metrics about machine execution.
type ExecutionStats struct {
	StepsExecuted  int64          // Instructions executed
	InputsConsumed int64          // Values popped from the input queue
	Outputs        int64          // Values produced by OUT
	OpCounts       map[string]int // Count of each opcode executed
}

// Machine is a single IntCode machine instance. A Machine is not safe for
// concurrent use; independent instances share no state.
type Machine struct {
	mem     *Memory
	pc      int64
	relBase int64
	input   []int64
	halted  bool
	err     error // fatal error, returned by every later Resume

	// Resource limits
	maxSteps  int64
	stepCount int64
	ctx       context.Context

	stats        ExecutionStats
	statsEnabled bool
}

// New creates a machine whose memory holds a copy of p.
func New(p Program) *Machine {
	return &Machine{mem: NewMemory(p)}
}

// NewFromText parses a comma-separated program and creates a machine.
func NewFromText(text string) (*Machine, error) {
	p, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return New(p), nil
}

// NewFromFile reads a comma-separated program from path and creates a
// machine.
func NewFromFile(path string) (*Machine, error) {
	p, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return New(p), nil
}

// Clone returns an independent deep copy of the machine, including its
// memory, pending input, pc and relative base.
func (m *Machine) Clone() *Machine {
	c := *m
	c.mem = m.mem.Clone()
	c.input = slices.Clone(m.input)
	c.stats.OpCounts = maps.Clone(m.stats.OpCounts)
	return &c
}

// AddInput appends values to the input queue. It may be called at any time.
func (m *Machine) AddInput(values ...int64) {
	m.input = append(m.input, values...)
}

// SetMaxSteps limits the number of instructions executed over the lifetime
// of the machine. Zero means unlimited.
func (m *Machine) SetMaxSteps(n int64) {
	m.maxSteps = n
}

// SetMaxMemory limits how many cells memory may grow to. Accesses beyond
// the limit fail with ErrInvalidAddress. Zero restores DefaultMaxMemory.
func (m *Machine) SetMaxMemory(n int64) {
	m.mem.SetLimit(n)
}

// SetContext sets the context checked before every instruction.
func (m *Machine) SetContext(ctx context.Context) {
	m.ctx = ctx
}

// EnableStats enables execution statistics collection.
func (m *Machine) EnableStats() {
	m.statsEnabled = true
	m.stats = ExecutionStats{
		OpCounts: make(map[string]int),
	}
}

// Stats returns the collected statistics, or nil if EnableStats was not
// called.
func (m *Machine) Stats() *ExecutionStats {
	if !m.statsEnabled {
		return nil
	}
	return &m.stats
}

// PC returns the program counter.
func (m *Machine) PC() int64 { return m.pc }

// RelativeBase returns the relative base.
func (m *Machine) RelativeBase() int64 { return m.relBase }

// PendingInput returns the number of queued input values.
func (m *Machine) PendingInput() int { return len(m.input) }

// Halted reports whether HALT has been reached.
func (m *Machine) Halted() bool { return m.halted }

// Err returns the fatal error that stopped the machine, if any.
func (m *Machine) Err() error { return m.err }

// Len returns the current memory length.
func (m *Machine) Len() int { return m.mem.Len() }

// Peek returns the cell at addr without growing memory.
func (m *Machine) Peek(addr int64) int64 { return m.mem.Peek(addr) }

// Memory returns a copy of the machine's memory.
func (m *Machine) Memory() []int64 { return m.mem.Cells() }

// Run queues inputs and resumes the machine until it halts, returning every
// value it output. Running out of input is an error: the caller is expected
// to supply everything up front.
func (m *Machine) Run(inputs ...int64) ([]int64, error) {
	m.AddInput(inputs...)

	var outputs []int64
	for {
		p, err := m.Resume()
		if err != nil {
			return outputs, err
		}
		switch p.Status {
		case StatusDone:
			return outputs, nil
		case StatusNeedInput:
			return outputs, fmt.Errorf("%w at pc %d", ErrInputStarved, m.pc)
		case StatusOutput:
			outputs = append(outputs, p.Value)
		}
	}
}

// Resume executes instructions until the machine needs input, produces an
// output or halts. Calling it again continues from where it stopped.
func (m *Machine) Resume() (Pause, error) {
	if m.err != nil {
		return Pause{}, m.err
	}

	for {
		// Context cancellation check
		if m.ctx != nil {
			select {
			case <-m.ctx.Done():
				return Pause{}, m.ctx.Err()
			default:
			}
		}

		if m.pc < 0 || m.pc >= int64(m.mem.Len()) {
			return m.fail(fmt.Errorf("%w: pc %d out of range", ErrInvalidInstruction, m.pc))
		}
		inst := Instruction(m.mem.Peek(m.pc))
		op := inst.Opcode()

		switch {
		case op == OpHalt:
			m.halted = true
			return Pause{Status: StatusDone}, nil
		case op == OpIn && len(m.input) == 0:
			return Pause{Status: StatusNeedInput}, nil
		}

		// Resource limit check
		if m.maxSteps > 0 && m.stepCount >= m.maxSteps {
			return Pause{}, fmt.Errorf("%w: %d", ErrStepLimitExceeded, m.maxSteps)
		}
		m.stepCount++

		out, produced, err := m.execute(inst)
		if err != nil {
			return m.fail(err)
		}
		if produced {
			return Pause{Status: StatusOutput, Value: out}, nil
		}
	}
}

func (m *Machine) fail(err error) (Pause, error) {
	m.err = err
	return Pause{}, err
}

// execute runs the instruction at pc. It reports whether the instruction
// produced an output value.
func (m *Machine) execute(inst Instruction) (int64, bool, error) {
	op := inst.Opcode()

	if m.statsEnabled {
		m.stats.StepsExecuted++
		m.stats.OpCounts[op.String()]++
	}

	switch op {
	// ===== Arithmetic & Comparison =====
	case OpAdd, OpMul, OpLessThan, OpEquals:
		a, err := m.read(inst, 1)
		if err != nil {
			return 0, false, err
		}
		b, err := m.read(inst, 2)
		if err != nil {
			return 0, false, err
		}
		dst, err := m.target(inst, 3)
		if err != nil {
			return 0, false, err
		}

		var v int64
		switch op {
		case OpAdd:
			v = a + b
		case OpMul:
			v = a * b
		case OpLessThan:
			v = boolCell(a < b)
		case OpEquals:
			v = boolCell(a == b)
		}
		if err := m.mem.Write(dst, v); err != nil {
			return 0, false, err
		}
		m.pc += 4

	// ===== I/O =====
	case OpIn:
		dst, err := m.target(inst, 1)
		if err != nil {
			return 0, false, err
		}
		v := m.input[0]
		m.input = m.input[1:]
		if err := m.mem.Write(dst, v); err != nil {
			return 0, false, err
		}
		if m.statsEnabled {
			m.stats.InputsConsumed++
		}
		m.pc += 2

	case OpOut:
		v, err := m.read(inst, 1)
		if err != nil {
			return 0, false, err
		}
		if m.statsEnabled {
			m.stats.Outputs++
		}
		m.pc += 2
		return v, true, nil

	// ===== Control Flow =====
	case OpJumpTrue, OpJumpFalse:
		cond, err := m.read(inst, 1)
		if err != nil {
			return 0, false, err
		}
		target, err := m.read(inst, 2)
		if err != nil {
			return 0, false, err
		}
		if (cond != 0) == (op == OpJumpTrue) {
			m.pc = target
		} else {
			m.pc += 3
		}

	// ===== Relative Base =====
	case OpAdjustBase:
		a, err := m.read(inst, 1)
		if err != nil {
			return 0, false, err
		}
		m.relBase += a
		m.pc += 2

	default:
		return 0, false, fmt.Errorf("%w: opcode %d at pc %d", ErrInvalidInstruction, int64(inst)%100, m.pc)
	}

	return 0, false, nil
}

// read resolves parameter n of the instruction at pc to its operand value.
func (m *Machine) read(inst Instruction, n int) (int64, error) {
	raw, err := m.mem.Read(m.pc + int64(n))
	if err != nil {
		return 0, err
	}
	switch mode := inst.Mode(n); mode {
	case ModePosition:
		return m.mem.Read(raw)
	case ModeImmediate:
		return raw, nil
	case ModeRelative:
		return m.mem.Read(m.relBase + raw)
	default:
		return 0, fmt.Errorf("%w: %d for parameter %d at pc %d", ErrInvalidMode, mode, n, m.pc)
	}
}

// target resolves write parameter n of the instruction at pc to an address.
func (m *Machine) target(inst Instruction, n int) (int64, error) {
	raw, err := m.mem.Read(m.pc + int64(n))
	if err != nil {
		return 0, err
	}
	switch mode := inst.Mode(n); mode {
	case ModePosition:
		return raw, nil
	case ModeRelative:
		return m.relBase + raw, nil
	default:
		return 0, fmt.Errorf("%w: %s write for parameter %d at pc %d", ErrInvalidMode, mode, n, m.pc)
	}
}

func boolCell(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
