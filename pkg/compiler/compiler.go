// Package compiler assembles IntCode assembly source into programs.
//
// Each line holds an optional NNNN: address marker, an optional label
// definition and one instruction or DATA directive:
//
//	loop:   IN    [rb+1]
//	        ADD   [rb+1], 5, [total]
//	        JT    1, loop
//	total:  DATA  0
//
// Operands are written as [n] for position mode, n for immediate mode and
// [rb+n] or [rb-n] for relative mode. A label may stand in for n in the
// first two forms. Comments start with ; or #.
package compiler

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/akhildatla/intcode/pkg/intcode"
)

var (
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrOperandCount    = errors.New("wrong number of operands")
	ErrImmediateWrite  = errors.New("immediate mode on a write parameter")
	ErrUndefinedLabel  = errors.New("undefined label")
	ErrDuplicateLabel  = errors.New("duplicate label")
	ErrAddressMismatch = errors.New("address marker mismatch")
	ErrInvalidData     = errors.New("DATA operands must be values")
)

// dataDirective emits its operands verbatim.
const dataDirective = "DATA"

// Compile assembles IntCode assembly source into a program.
func Compile(source string) (intcode.Program, error) {
	parser := NewParser(source)
	asmProgram, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	compiler := &Compiler{
		labels: make(map[string]int64),
	}

	return compiler.compile(asmProgram)
}

// CompileFile assembles the source at path.
func CompileFile(path string) (intcode.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(string(data))
}

// Compiler lays out and encodes a parsed assembly program.
type Compiler struct {
	labels    map[string]int64
	addresses []int64
	code      intcode.Program
}

func (c *Compiler) compile(program *AsmProgram) (intcode.Program, error) {
	// First pass: assign an address to every instruction.
	var pc int64
	c.addresses = make([]int64, len(program.Instructions))
	for i, inst := range program.Instructions {
		size, err := instructionSize(inst)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", inst.Line, err)
		}
		if inst.HasAddress && inst.Address != pc {
			return nil, fmt.Errorf("line %d: %w: marker %d, actual %d", inst.Line, ErrAddressMismatch, inst.Address, pc)
		}
		c.addresses[i] = pc
		pc += int64(size)
	}

	for name, index := range program.Labels {
		if index == len(program.Instructions) {
			c.labels[name] = pc
		} else {
			c.labels[name] = c.addresses[index]
		}
	}

	// Second pass: encode.
	c.code = make(intcode.Program, 0, pc)
	for _, inst := range program.Instructions {
		if err := c.compileInstruction(inst); err != nil {
			return nil, fmt.Errorf("line %d: %w", inst.Line, err)
		}
	}

	return c.code, nil
}

func instructionSize(inst AsmInstruction) (int, error) {
	if strings.EqualFold(inst.Opcode, dataDirective) {
		return len(inst.Operands), nil
	}
	opcode, ok := intcode.OpcodeFromString(strings.ToUpper(inst.Opcode))
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownOpcode, inst.Opcode)
	}
	return opcode.Size(), nil
}

func (c *Compiler) compileInstruction(inst AsmInstruction) error {
	if strings.EqualFold(inst.Opcode, dataDirective) {
		return c.compileData(inst)
	}

	opcode, _ := intcode.OpcodeFromString(strings.ToUpper(inst.Opcode))
	if len(inst.Operands) != opcode.Params() {
		return fmt.Errorf("%w: %s expects %d, got %d", ErrOperandCount, opcode, opcode.Params(), len(inst.Operands))
	}

	modes := make([]intcode.Mode, len(inst.Operands))
	values := make([]int64, len(inst.Operands))
	for i, op := range inst.Operands {
		mode := operandMode(op.Type)
		if mode == intcode.ModeImmediate && opcode.WritesParam(i+1) {
			return fmt.Errorf("%w: %s operand %d", ErrImmediateWrite, opcode, i+1)
		}
		v, err := c.resolve(op)
		if err != nil {
			return err
		}
		modes[i] = mode
		values[i] = v
	}

	c.code = append(c.code, int64(intcode.EncodeInstruction(opcode, modes...)))
	c.code = append(c.code, values...)
	return nil
}

func (c *Compiler) compileData(inst AsmInstruction) error {
	for _, op := range inst.Operands {
		if op.Type != OperandImmediate {
			return ErrInvalidData
		}
		v, err := c.resolve(op)
		if err != nil {
			return err
		}
		c.code = append(c.code, v)
	}
	return nil
}

func (c *Compiler) resolve(op Operand) (int64, error) {
	if op.Label == "" {
		return op.Value, nil
	}
	addr, ok := c.labels[op.Label]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUndefinedLabel, op.Label)
	}
	return addr, nil
}

func operandMode(t OperandType) intcode.Mode {
	switch t {
	case OperandImmediate:
		return intcode.ModeImmediate
	case OperandRelative:
		return intcode.ModeRelative
	default:
		return intcode.ModePosition
	}
}
