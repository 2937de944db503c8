package intcode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Image file format:
// - Magic: "ICBC" (4 bytes)
// - Version: uint16
// - NumCells: uint32
// - Cells: []int64

const (
	ImageMagic   = "ICBC"
	ImageVersion = 1
)

var (
	ErrInvalidMagic   = errors.New("invalid image magic")
	ErrInvalidVersion = errors.New("unsupported image version")
	ErrTruncatedImage = errors.New("truncated image")
)

// SerializeProgram serializes a Program to the binary image format.
func SerializeProgram(p Program) ([]byte, error) {
	buf := new(bytes.Buffer)

	// Write magic
	buf.WriteString(ImageMagic)

	// Write version
	if err := binary.Write(buf, binary.LittleEndian, uint16(ImageVersion)); err != nil {
		return nil, fmt.Errorf("writing version: %w", err)
	}

	// Write cells
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(p))); err != nil {
		return nil, fmt.Errorf("writing cell count: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, []int64(p)); err != nil {
		return nil, fmt.Errorf("writing cells: %w", err)
	}

	return buf.Bytes(), nil
}

// DeserializeProgram decodes a binary image into a Program.
func DeserializeProgram(data []byte) (Program, error) {
	buf := bytes.NewReader(data)

	// Read and verify magic
	magic := make([]byte, 4)
	if _, err := io.ReadFull(buf, magic); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if string(magic) != ImageMagic {
		return nil, ErrInvalidMagic
	}

	// Read and verify version
	var version uint16
	if err := binary.Read(buf, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version != ImageVersion {
		return nil, ErrInvalidVersion
	}

	// Read cells
	var numCells uint32
	if err := binary.Read(buf, binary.LittleEndian, &numCells); err != nil {
		return nil, fmt.Errorf("reading cell count: %w", err)
	}
	if int64(buf.Len()) < int64(numCells)*8 {
		return nil, fmt.Errorf("%w: want %d cells, have %d bytes", ErrTruncatedImage, numCells, buf.Len())
	}
	cells := make([]int64, numCells)
	if err := binary.Read(buf, binary.LittleEndian, cells); err != nil {
		return nil, fmt.Errorf("reading cells: %w", err)
	}

	return Program(cells), nil
}

// IsImage reports whether data starts with the image magic.
func IsImage(data []byte) bool {
	return bytes.HasPrefix(data, []byte(ImageMagic))
}

// Disassemble converts a Program to assembly source. Cells that do not
// decode to a well-formed instruction are emitted as DATA, so the listing
// assembles back to the identical program.
func Disassemble(p Program) string {
	var buf bytes.Buffer

	buf.WriteString("; Disassembled from IntCode image\n")
	buf.WriteString(fmt.Sprintf("; %d cells\n\n", len(p)))

	for addr := 0; addr < len(p); {
		text, size := disassembleAt(p, addr)
		buf.WriteString(fmt.Sprintf("%04d: %s\n", addr, text))
		addr += size
	}

	return buf.String()
}

// DisassembleAt returns the assembly text of the instruction at addr and
// the number of cells it occupies.
func DisassembleAt(p Program, addr int) (string, int) {
	if addr < 0 || addr >= len(p) {
		return "", 0
	}
	return disassembleAt(p, addr)
}

func disassembleAt(p Program, addr int) (string, int) {
	inst := Instruction(p[addr])
	op := inst.Opcode()
	data := fmt.Sprintf("%-5s %d", "DATA", p[addr])

	if !op.Valid() || addr+op.Size() > len(p) {
		return data, 1
	}
	modes := inst.Modes()
	if EncodeInstruction(op, modes...) != inst {
		return data, 1
	}
	if op == OpHalt {
		return op.String(), 1
	}

	operands := make([]string, len(modes))
	for i, mode := range modes {
		raw := p[addr+i+1]
		switch {
		case mode == ModePosition:
			operands[i] = fmt.Sprintf("[%d]", raw)
		case mode == ModeImmediate && !op.WritesParam(i+1):
			operands[i] = fmt.Sprintf("%d", raw)
		case mode == ModeRelative && raw < 0:
			operands[i] = fmt.Sprintf("[rb%d]", raw)
		case mode == ModeRelative:
			operands[i] = fmt.Sprintf("[rb+%d]", raw)
		default:
			return data, 1
		}
	}

	return fmt.Sprintf("%-5s %s", op.String(), strings.Join(operands, ", ")), op.Size()
}
