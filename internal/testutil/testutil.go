// Package testutil provides testing utilities for intcode tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Sample programs from the puzzle descriptions.
const (
	// DayTwoSample leaves 3500 at address 0.
	DayTwoSample = "1,9,10,3,2,3,11,0,99,30,40,50"

	// Quine outputs a copy of itself.
	Quine = "109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99"

	// CompareToEight outputs 999 below 8, 1000 at 8 and 1001 above 8.
	CompareToEight = "3,21,1008,21,8,20,1005,20,22,107,8,21,20,1006,20,31," +
		"1106,0,36,98,0,0,1002,21,125,20,4,20,1105,1,46,104,999,1105,1,46," +
		"1101,1000,1,20,4,20,1105,1,46,98,99"

	// AmplifierSample has a maximum series signal of 43210 (phases 4,3,2,1,0).
	AmplifierSample = "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0"

	// FeedbackSample has a maximum feedback signal of 139629729 (phases 9,8,7,6,5).
	FeedbackSample = "3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26,27,4,27," +
		"1001,28,-1,28,1005,28,6,99,0,0,5"

	// FeedbackSampleTwo has a maximum feedback signal of 18216 (phases 9,7,8,5,6).
	FeedbackSampleTwo = "3,52,1001,52,-5,52,3,53,1,52,56,54,1007,54,5,55," +
		"1005,55,26,1001,54,-5,54,1105,1,12,1,53,54,53,1008,54,0,55,1001,55," +
		"1,55,2,53,55,53,4,53,1001,56,-1,56,1005,56,6,99,0,0,0,0,10"

	// EchoTwice reads two values and outputs each one as it arrives.
	EchoTwice = "3,9,4,9,3,10,4,10,99,0,0"
)

// TempFile creates a temporary file with the given content and extension.
// The file is automatically cleaned up when the test finishes.
func TempFile(t *testing.T, content, ext string) string {
	t.Helper()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test"+ext)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// TempProgram writes a comma-separated program to a temporary file.
func TempProgram(t *testing.T, program string) string {
	t.Helper()
	return TempFile(t, program+"\n", ".txt")
}

// AssertInt64Equal checks if two int64 values are equal.
func AssertInt64Equal(t *testing.T, expected, actual int64) {
	t.Helper()
	if expected != actual {
		t.Errorf("expected %d, got %d", expected, actual)
	}
}

// AssertCellsEqual checks if two cell slices hold the same values.
func AssertCellsEqual(t *testing.T, expected, actual []int64) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Errorf("expected %d cells %v, got %d cells %v", len(expected), expected, len(actual), actual)
		return
	}
	for i := range expected {
		if expected[i] != actual[i] {
			t.Errorf("cell %d: expected %d, got %d (full: %v)", i, expected[i], actual[i], actual)
			return
		}
	}
}
