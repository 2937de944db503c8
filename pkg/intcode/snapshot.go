package intcode

import (
	"fmt"
	"os"
	"slices"

	"github.com/fxamacker/cbor/v2"
)

// Snapshot is the complete resumable state of a machine.
type Snapshot struct {
	Memory       []int64 `cbor:"1,keyasint"`
	PC           int64   `cbor:"2,keyasint"`
	RelativeBase int64   `cbor:"3,keyasint"`
	Input        []int64 `cbor:"4,keyasint,omitempty"`
	Halted       bool    `cbor:"5,keyasint,omitempty"`
}

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("intcode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot captures the machine state. Limits and statistics are not part
// of it.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Memory:       m.mem.Cells(),
		PC:           m.pc,
		RelativeBase: m.relBase,
		Input:        slices.Clone(m.input),
		Halted:       m.halted,
	}
}

// Restore creates a machine from a snapshot.
func Restore(s Snapshot) *Machine {
	return &Machine{
		mem:     NewMemory(s.Memory),
		pc:      s.PC,
		relBase: s.RelativeBase,
		input:   slices.Clone(s.Input),
		halted:  s.Halted,
	}
}

// MarshalSnapshot serializes a Snapshot to CBOR bytes.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("intcode: unmarshal snapshot: %w", err)
	}
	return s, nil
}

// SaveSnapshot writes the machine state to path.
func SaveSnapshot(path string, m *Machine) error {
	data, err := MarshalSnapshot(m.Snapshot())
	if err != nil {
		return fmt.Errorf("intcode: marshal snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadSnapshot reads a machine state written by SaveSnapshot.
func LoadSnapshot(path string) (*Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := UnmarshalSnapshot(data)
	if err != nil {
		return nil, err
	}
	return Restore(s), nil
}
