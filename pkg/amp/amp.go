// Package amp runs several copies of one IntCode program wired in series,
// either as a one-shot chain or as a feedback ring in which the last
// amplifier's output returns to the first.
package amp

import (
	"errors"
	"fmt"
	"slices"

	"github.com/akhildatla/intcode/pkg/intcode"
)

var (
	ErrNoPhases       = errors.New("no phases")
	ErrDuplicatePhase = errors.New("duplicate phase")
	ErrDeadlock       = errors.New("amplifiers deadlocked")
	ErrNoSignal       = errors.New("last amplifier produced no signal")
)

// RunChain runs one amplifier per phase in sequence. Each amplifier
// receives its phase and the previous signal, and its first output becomes
// the next signal. Later outputs are ignored.
func RunChain(p intcode.Program, phases []int64, signal int64) (int64, error) {
	return runChain(p, phases, signal, 0)
}

func runChain(p intcode.Program, phases []int64, signal int64, maxSteps int64) (int64, error) {
	if err := validatePhases(phases); err != nil {
		return 0, err
	}

	for i, phase := range phases {
		m := intcode.New(p)
		m.SetMaxSteps(maxSteps)
		out, err := m.Run(phase, signal)
		if err != nil {
			return 0, fmt.Errorf("amplifier %d: %w", i, err)
		}
		if len(out) == 0 {
			return 0, fmt.Errorf("amplifier %d: %w", i, ErrNoSignal)
		}
		signal = out[0]
	}

	return signal, nil
}

// RunFeedbackLoop runs one amplifier per phase in a ring until all of them
// halt. Every output is queued as input of the next amplifier, and the last
// amplifier feeds the first. The result is the last value the final
// amplifier emitted.
func RunFeedbackLoop(p intcode.Program, phases []int64, signal int64) (int64, error) {
	return runFeedbackLoop(p, phases, signal, 0)
}

func runFeedbackLoop(p intcode.Program, phases []int64, signal int64, maxSteps int64) (int64, error) {
	if err := validatePhases(phases); err != nil {
		return 0, err
	}

	n := len(phases)
	amps := make([]*intcode.Machine, n)
	for i, phase := range phases {
		m := intcode.New(p)
		m.SetMaxSteps(maxSteps)
		m.AddInput(phase)
		amps[i] = m
	}
	amps[0].AddInput(signal)

	var (
		last      int64
		haveLast  bool
		done      = make([]bool, n)
		remaining = n
	)

	for remaining > 0 {
		progress := false

		for i, m := range amps {
			if done[i] {
				continue
			}

			// Drain this amplifier until it blocks or halts.
			for {
				pause, err := m.Resume()
				if err != nil {
					return 0, fmt.Errorf("amplifier %d: %w", i, err)
				}
				if pause.Status == intcode.StatusOutput {
					progress = true
					if i == n-1 {
						last, haveLast = pause.Value, true
					}
					amps[(i+1)%n].AddInput(pause.Value)
					continue
				}
				if pause.Status == intcode.StatusDone {
					done[i] = true
					remaining--
					progress = true
				}
				break
			}
		}

		if !progress {
			return 0, ErrDeadlock
		}
	}

	if !haveLast {
		return 0, ErrNoSignal
	}
	return last, nil
}

// Permutations returns every ordering of set exactly once, generated with
// the iterative form of Heap's algorithm.
func Permutations(set []int64) [][]int64 {
	a := slices.Clone(set)
	n := len(a)
	out := [][]int64{slices.Clone(a)}

	c := make([]int, n)
	for i := 1; i < n; {
		if c[i] < i {
			if i%2 == 0 {
				a[0], a[i] = a[i], a[0]
			} else {
				a[c[i]], a[i] = a[i], a[c[i]]
			}
			out = append(out, slices.Clone(a))
			c[i]++
			i = 1
		} else {
			c[i] = 0
			i++
		}
	}

	return out
}

func validatePhases(phases []int64) error {
	if len(phases) == 0 {
		return ErrNoPhases
	}
	seen := make(map[int64]bool, len(phases))
	for _, ph := range phases {
		if seen[ph] {
			return fmt.Errorf("%w: %d", ErrDuplicatePhase, ph)
		}
		seen[ph] = true
	}
	return nil
}
