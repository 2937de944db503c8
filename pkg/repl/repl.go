package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/akhildatla/intcode/pkg/compiler"
	"github.com/akhildatla/intcode/pkg/intcode"
	"github.com/akhildatla/intcode/pkg/loader"
)

const (
	promptRun  = "intcode> "
	promptASM  = "asm> "
	promptCont = "...> "
)

// Mode represents the REPL input mode.
type Mode int

const (
	ModeRun Mode = iota // Lines of integers are program input
	ModeASM             // Lines are assembled and loaded as the program
)

var errNoProgram = errors.New("no program loaded")

// REPL provides an interactive console around a single machine.
type REPL struct {
	mode        Mode
	program     intcode.Program
	machine     *intcode.Machine
	outputs     []int64
	history     []string
	multiline   strings.Builder
	inMultiline bool
	done        bool
}

// New creates a new REPL instance.
func New() *REPL {
	return &REPL{
		mode:    ModeRun,
		history: []string{},
	}
}

// SetMode sets the REPL input mode.
func (r *REPL) SetMode(mode Mode) {
	r.mode = mode
}

// SetProgram loads p and starts a fresh machine.
func (r *REPL) SetProgram(p intcode.Program) {
	r.program = p.Clone()
	r.reset()
}

// Outputs returns every value the current machine has output.
func (r *REPL) Outputs() []int64 {
	return r.outputs
}

// Start starts the REPL loop. It returns at end of input or on quit.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<24)

	fmt.Fprintln(out, "IntCode REPL")
	fmt.Fprintln(out, "Type 'help' for available commands, 'quit' to exit")
	fmt.Fprintln(out)

	for !r.done {
		if r.inMultiline {
			fmt.Fprint(out, promptCont)
		} else if r.mode == ModeRun {
			fmt.Fprint(out, promptRun)
		} else {
			fmt.Fprint(out, promptASM)
		}

		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		// Handle multiline input
		if r.inMultiline {
			if line == "" {
				// End multiline input
				r.inMultiline = false
				input := r.multiline.String()
				r.multiline.Reset()
				r.eval(input, out)
			} else {
				r.multiline.WriteString(line)
				r.multiline.WriteString("\n")
			}
			continue
		}

		// Check for special commands
		if handled := r.handleCommand(line, out); handled {
			continue
		}

		// Check for multiline start (ends with \)
		if strings.HasSuffix(line, "\\") {
			r.inMultiline = true
			r.multiline.WriteString(strings.TrimSuffix(line, "\\"))
			r.multiline.WriteString("\n")
			continue
		}

		r.eval(line, out)
	}
}

func (r *REPL) handleCommand(line string, out io.Writer) bool {
	trimmed := strings.TrimSpace(line)
	parts := strings.Fields(trimmed)

	if len(parts) == 0 {
		return true
	}

	switch parts[0] {
	case "quit", "exit", "q":
		fmt.Fprintln(out, "Goodbye!")
		r.done = true
		return true

	case "help", "h", "?":
		r.printHelp(out)
		return true

	case "mode":
		if len(parts) > 1 {
			switch parts[1] {
			case "run":
				r.mode = ModeRun
				fmt.Fprintln(out, "Switched to run mode")
			case "asm":
				r.mode = ModeASM
				fmt.Fprintln(out, "Switched to assembly mode")
			default:
				fmt.Fprintln(out, "Unknown mode. Use 'run' or 'asm'")
			}
		} else {
			if r.mode == ModeRun {
				fmt.Fprintln(out, "Current mode: run")
			} else {
				fmt.Fprintln(out, "Current mode: asm")
			}
		}
		return true

	case "load":
		if len(parts) > 1 {
			r.load(parts[1], out)
		} else {
			fmt.Fprintln(out, "Usage: load <path>")
		}
		return true

	case "input":
		values, err := parseInts(parts[1:])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return true
		}
		r.record(trimmed)
		r.queue(values, out)
		return true

	case "run", "resume", "r":
		r.record(trimmed)
		r.resume(out)
		return true

	case "step", "s":
		r.record(trimmed)
		r.step(out)
		return true

	case "mem":
		r.printMemory(parts[1:], out)
		return true

	case "disasm":
		r.printDisassembly(out)
		return true

	case "reset":
		if r.machine == nil {
			fmt.Fprintf(out, "Error: %v\n", errNoProgram)
			return true
		}
		r.reset()
		fmt.Fprintln(out, "Machine reset")
		return true

	case "status":
		r.printStatus(out)
		return true

	case "outputs":
		fmt.Fprintf(out, "%v\n", r.outputs)
		return true

	case "save":
		if len(parts) > 1 {
			r.saveSnapshot(parts[1], out)
		} else {
			fmt.Fprintln(out, "Usage: save <file.snap>")
		}
		return true

	case "restore":
		if len(parts) > 1 {
			r.restoreSnapshot(parts[1], out)
		} else {
			fmt.Fprintln(out, "Usage: restore <file.snap>")
		}
		return true

	case "history":
		for i, cmd := range r.history {
			fmt.Fprintf(out, "%3d: %s\n", i+1, cmd)
		}
		return true
	}

	return false
}

func (r *REPL) eval(input string, out io.Writer) {
	if strings.TrimSpace(input) == "" {
		return
	}

	r.record(input)

	if r.mode == ModeASM {
		p, err := compiler.Compile(input)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		r.SetProgram(p)
		fmt.Fprintf(out, "Assembled %d cells\n", len(p))
		return
	}

	values, err := parseInts(strings.FieldsFunc(input, func(c rune) bool {
		return c == ',' || c == ' ' || c == '\t'
	}))
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	r.queue(values, out)
	r.resume(out)
}

func (r *REPL) record(input string) {
	r.history = append(r.history, strings.TrimRight(input, "\n"))
}

func (r *REPL) reset() {
	r.machine = intcode.New(r.program)
	r.outputs = nil
}

func (r *REPL) load(path string, out io.Writer) {
	p, err := loader.Load(path)
	if err != nil {
		fmt.Fprintf(out, "Error loading %s: %v\n", path, err)
		return
	}
	r.SetProgram(p)
	fmt.Fprintf(out, "Loaded %s (%d cells)\n", path, len(p))
}

func (r *REPL) queue(values []int64, out io.Writer) {
	if r.machine == nil {
		fmt.Fprintf(out, "Error: %v\n", errNoProgram)
		return
	}
	r.machine.AddInput(values...)
	fmt.Fprintf(out, "Queued %d value(s), %d pending\n", len(values), r.machine.PendingInput())
}

// resume runs until the machine blocks on input, halts or fails.
func (r *REPL) resume(out io.Writer) {
	for r.machine != nil {
		p, ok := r.pause(out)
		if !ok || p.Status != intcode.StatusOutput {
			return
		}
	}
	if r.machine == nil {
		fmt.Fprintf(out, "Error: %v\n", errNoProgram)
	}
}

func (r *REPL) step(out io.Writer) {
	if r.machine == nil {
		fmt.Fprintf(out, "Error: %v\n", errNoProgram)
		return
	}
	r.pause(out)
}

func (r *REPL) pause(out io.Writer) (intcode.Pause, bool) {
	p, err := r.machine.Resume()
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return p, false
	}

	switch p.Status {
	case intcode.StatusOutput:
		r.outputs = append(r.outputs, p.Value)
		fmt.Fprintf(out, "=> %d\n", p.Value)
	case intcode.StatusNeedInput:
		fmt.Fprintf(out, "Waiting for input at %04d\n", r.machine.PC())
	case intcode.StatusDone:
		fmt.Fprintln(out, "Halted")
	}
	return p, true
}

func (r *REPL) printMemory(args []string, out io.Writer) {
	if r.machine == nil {
		fmt.Fprintf(out, "Error: %v\n", errNoProgram)
		return
	}

	bounds, err := parseInts(args)
	if err != nil || len(bounds) == 0 || len(bounds) > 2 || bounds[0] < 0 {
		fmt.Fprintln(out, "Usage: mem <addr> [end]")
		return
	}

	lo, hi := bounds[0], bounds[0]
	if len(bounds) == 2 {
		hi = bounds[1]
	}
	for addr := lo; addr <= hi; addr++ {
		fmt.Fprintf(out, "%04d: %d\n", addr, r.machine.Peek(addr))
	}
}

func (r *REPL) printDisassembly(out io.Writer) {
	if r.machine == nil {
		fmt.Fprintf(out, "Error: %v\n", errNoProgram)
		return
	}
	fmt.Fprint(out, intcode.Disassemble(r.machine.Memory()))
}

func (r *REPL) printStatus(out io.Writer) {
	if r.machine == nil {
		fmt.Fprintln(out, "No program loaded")
		return
	}

	m := r.machine
	state := "running"
	switch {
	case m.Err() != nil:
		state = "failed: " + m.Err().Error()
	case m.Halted():
		state = "halted"
	}
	fmt.Fprintf(out, "pc=%d rb=%d cells=%d pending=%d outputs=%d state=%s\n",
		m.PC(), m.RelativeBase(), m.Len(), m.PendingInput(), len(r.outputs), state)
}

func (r *REPL) saveSnapshot(path string, out io.Writer) {
	if r.machine == nil {
		fmt.Fprintf(out, "Error: %v\n", errNoProgram)
		return
	}
	if err := intcode.SaveSnapshot(path, r.machine); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Saved snapshot to %s\n", path)
}

func (r *REPL) restoreSnapshot(path string, out io.Writer) {
	m, err := intcode.LoadSnapshot(path)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	r.program = m.Memory()
	r.machine = m
	r.outputs = nil
	fmt.Fprintf(out, "Restored snapshot from %s (pc=%d)\n", path, m.PC())
}

func parseInts(fields []string) ([]int64, error) {
	values := make([]int64, 0, len(fields))
	for _, f := range fields {
		for _, part := range strings.Split(f, ",") {
			if part == "" {
				continue
			}
			v, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid integer: %s", part)
			}
			values = append(values, v)
		}
	}
	return values, nil
}

func (r *REPL) printHelp(out io.Writer) {
	help := `
IntCode REPL Commands:
  help, h, ?        Show this help message
  quit, exit, q     Exit the REPL
  mode [run|asm]    Show or set input mode
  load <path>       Load a program (.txt, .csv, .json, .parquet, .icbc, .asm)
  input <n...>      Queue input values
  run, resume, r    Run until the machine needs input or halts
  step, s           Run until the next pause
  mem <a> [b]       Show memory cells a through b
  disasm            Disassemble current memory
  reset             Restart the loaded program
  status            Show pc, relative base and pending input
  outputs           Show every output so far
  save <file>       Save a snapshot of the machine
  restore <file>    Restore a snapshot
  history           Show command history

Run mode:
  A line of integers (1 2 or 1,2) is queued as input and the machine resumed.

Asm mode:
  Lines are assembled and loaded as the program.
  End a line with \ for multiline input, press Enter twice to assemble.
`
	fmt.Fprint(out, help)
}
