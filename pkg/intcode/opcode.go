package intcode

import "fmt"

// Opcode represents an IntCode operation, the low two decimal digits of an
// instruction word.
type Opcode uint8

const (
	// ===== Arithmetic =====
	OpAdd Opcode = 1 // dest = a + b
	OpMul Opcode = 2 // dest = a * b

	// ===== I/O =====
	OpIn  Opcode = 3 // dest = pop(input); pauses with NeedInput when empty
	OpOut Opcode = 4 // pauses with Output(a)

	// ===== Control Flow =====
	OpJumpTrue  Opcode = 5 // pc = target if cond != 0
	OpJumpFalse Opcode = 6 // pc = target if cond == 0

	// ===== Comparison =====
	OpLessThan Opcode = 7 // dest = a < b
	OpEquals   Opcode = 8 // dest = a == b

	// ===== Relative Base =====
	OpAdjustBase Opcode = 9 // relative_base += a

	OpHalt Opcode = 99
)

// String returns the assembler mnemonic of an opcode.
func (o Opcode) String() string {
	switch o {
	case OpAdd:
		return "ADD"
	case OpMul:
		return "MUL"
	case OpIn:
		return "IN"
	case OpOut:
		return "OUT"
	case OpJumpTrue:
		return "JT"
	case OpJumpFalse:
		return "JF"
	case OpLessThan:
		return "LT"
	case OpEquals:
		return "EQ"
	case OpAdjustBase:
		return "ARB"
	case OpHalt:
		return "HALT"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(o))
	}
}

// Valid reports whether o is part of the instruction set.
func (o Opcode) Valid() bool {
	switch o {
	case OpAdd, OpMul, OpIn, OpOut, OpJumpTrue, OpJumpFalse,
		OpLessThan, OpEquals, OpAdjustBase, OpHalt:
		return true
	}
	return false
}

// Params returns the number of parameters that follow the instruction word.
func (o Opcode) Params() int {
	switch o {
	case OpAdd, OpMul, OpLessThan, OpEquals:
		return 3
	case OpJumpTrue, OpJumpFalse:
		return 2
	case OpIn, OpOut, OpAdjustBase:
		return 1
	default:
		return 0
	}
}

// Size returns the encoded length of the instruction in cells.
func (o Opcode) Size() int {
	return 1 + o.Params()
}

// WritesParam reports whether parameter n (1-based) is a write target.
func (o Opcode) WritesParam(n int) bool {
	switch o {
	case OpAdd, OpMul, OpLessThan, OpEquals:
		return n == 3
	case OpIn:
		return n == 1
	default:
		return false
	}
}

// OpcodeFromString returns the opcode for the given mnemonic.
// Aliases used by other IntCode assemblers are accepted as well.
func OpcodeFromString(s string) (Opcode, bool) {
	switch s {
	case "ADD":
		return OpAdd, true
	case "MUL":
		return OpMul, true
	case "IN", "INPUT":
		return OpIn, true
	case "OUT", "OUTPUT":
		return OpOut, true
	case "JT", "JNZ":
		return OpJumpTrue, true
	case "JF", "JZ":
		return OpJumpFalse, true
	case "LT":
		return OpLessThan, true
	case "EQ":
		return OpEquals, true
	case "ARB", "RBO":
		return OpAdjustBase, true
	case "HALT", "HLT":
		return OpHalt, true
	default:
		return 0, false
	}
}

// Mode is a parameter addressing mode.
type Mode uint8

const (
	ModePosition  Mode = 0 // operand = mem[param]
	ModeImmediate Mode = 1 // operand = param
	ModeRelative  Mode = 2 // operand = mem[param + relative_base]
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeImmediate:
		return "immediate"
	case ModeRelative:
		return "relative"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}
