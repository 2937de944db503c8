package intcode

// Instruction is an IntCode instruction word as stored in memory.
//
// Layout (decimal digits, least significant first):
//
//	┌────────────┬────────┬────────┬────────┐
//	│  opcode    │ mode 1 │ mode 2 │ mode 3 │
//	│ digits 0-1 │ digit 2│ digit 3│ digit 4│
//	└────────────┴────────┴────────┴────────┘
//
// Example: 1002 is MUL with parameter 1 in position mode, parameter 2 in
// immediate mode and parameter 3 in position mode.
type Instruction int64

var pow10 = [...]int64{1, 10, 100, 1000, 10000, 100000}

// EncodeInstruction creates an instruction word from an opcode and the modes
// of its parameters. Missing modes default to position mode.
func EncodeInstruction(op Opcode, modes ...Mode) Instruction {
	word := int64(op)
	for i, m := range modes {
		if i+2 >= len(pow10) {
			break
		}
		word += int64(m) * pow10[i+2]
	}
	return Instruction(word)
}

// Opcode returns the opcode (word mod 100). Negative words never decode to a
// valid opcode.
func (i Instruction) Opcode() Opcode {
	if i < 0 {
		return 0
	}
	return Opcode(int64(i) % 100)
}

// Mode returns the addressing mode of parameter n (1-based).
func (i Instruction) Mode(n int) Mode {
	if i < 0 || n < 1 || n+1 >= len(pow10) {
		return 0
	}
	return Mode(int64(i) / pow10[n+1] % 10)
}

// Modes returns the modes of every parameter of the instruction's opcode.
func (i Instruction) Modes() []Mode {
	n := i.Opcode().Params()
	modes := make([]Mode, n)
	for p := 1; p <= n; p++ {
		modes[p-1] = i.Mode(p)
	}
	return modes
}

// String returns a human-readable representation of the instruction.
func (i Instruction) String() string {
	return i.Opcode().String()
}
