// Package main provides the CLI entry point for the IntCode toolchain.
//
// Usage:
//
//	intcode run program.txt -in 1        # Execute a program
//	intcode asm program.asm              # Assemble to a binary image (.icbc)
//	intcode disasm program.icbc          # Disassemble any program format
//	intcode amp -feedback program.txt    # Search amplifier phase settings
//	intcode paint -start 1 program.txt   # Run the hull painting robot
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akhildatla/intcode/internal/config"
	"github.com/akhildatla/intcode/internal/logging"
	"github.com/akhildatla/intcode/pkg/amp"
	"github.com/akhildatla/intcode/pkg/compiler"
	"github.com/akhildatla/intcode/pkg/intcode"
	"github.com/akhildatla/intcode/pkg/loader"
	"github.com/akhildatla/intcode/pkg/repl"
	"github.com/akhildatla/intcode/pkg/robot"
)

// Version info set by GoReleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("intcode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {}
	configPath := fs.String("config", "", "profile to load (default: nearest "+config.FileName+")")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return printUsage(stdout)
		}
		return err
	}

	if fs.NArg() < 1 {
		return printUsage(stdout)
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]

	switch cmd {
	case "version":
		fmt.Fprintf(stdout, "intcode version %s\n", version)
		if commit != "none" {
			fmt.Fprintf(stdout, "  commit: %s\n", commit)
		}
		if date != "unknown" {
			fmt.Fprintf(stdout, "  built:  %s\n", date)
		}
		return nil
	case "help":
		return printUsage(stdout)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		if err := cfg.Log.Level.Set(*logLevel); err != nil {
			return fmt.Errorf("invalid log level %q: %w", *logLevel, err)
		}
	}

	// ApplyEnv reports through the standard logger, which Setup redirects.
	level := zap.NewAtomicLevelAt(cfg.Log.Level)
	logger, cleanup := logging.Setup(level)
	defer cleanup()

	flagLevel := cfg.Log.Level
	cfg.ApplyEnv()
	if *logLevel != "" {
		cfg.Log.Level = flagLevel
	}
	level.SetLevel(cfg.Log.Level)
	if cfg.Path != "" {
		logger.Debug("loaded profile", zap.String("path", cfg.Path))
	}

	a := &app{cfg: cfg, log: logger.Named(cmd), stdin: stdin, stdout: stdout, stderr: stderr}

	switch cmd {
	case "run":
		return a.runCommand(rest)
	case "resume":
		return a.resumeCommand(rest)
	case "asm":
		return a.asmCommand(rest)
	case "disasm":
		return a.disasmCommand(rest)
	case "dump":
		return a.dumpCommand(rest)
	case "amp":
		return a.ampCommand(rest)
	case "paint":
		return a.paintCommand(rest)
	case "repl":
		return a.replCommand(rest)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FindAndLoad(".")
}

// parseArgs parses flags that appear before, between or after positional
// arguments and returns the positional ones.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// programPath returns the positional program path or the profile's.
func (a *app) programPath(positional []string, usage string) (string, error) {
	if len(positional) > 0 {
		return positional[0], nil
	}
	if a.cfg.Program.Path != "" {
		return a.cfg.Program.Path, nil
	}
	return "", fmt.Errorf("usage: %s", usage)
}

func (a *app) runCommand(args []string) error {
	fs := a.newFlagSet("run")
	in := fs.String("in", "", "comma-separated input values (default: profile inputs)")
	maxSteps := fs.Int64("max-steps", a.cfg.Limits.MaxSteps, "instruction limit, 0 for none")
	timeout := fs.Duration("timeout", a.cfg.Limits.Timeout.Duration, "wall clock limit, 0 for none")
	save := fs.String("save", "", "snapshot file written when the program waits for input")
	stats := fs.Bool("stats", false, "log execution statistics")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	path, err := a.programPath(positional, "intcode run <program> [-in 1,2] [-save snap]")
	if err != nil {
		return err
	}

	p, err := loader.Load(path)
	if err != nil {
		return err
	}

	inputs := a.cfg.Program.Inputs
	if *in != "" {
		if inputs, err = parseInts(*in); err != nil {
			return err
		}
	}

	a.log.Debug("executing",
		zap.String("program", path),
		zap.Int("cells", len(p)),
		zap.Int64s("inputs", inputs),
	)

	m := intcode.New(p)
	m.AddInput(inputs...)
	if *stats {
		m.EnableStats()
	}
	return a.execute(m, *maxSteps, *timeout, *save)
}

func (a *app) resumeCommand(args []string) error {
	fs := a.newFlagSet("resume")
	in := fs.String("in", "", "comma-separated input values")
	maxSteps := fs.Int64("max-steps", a.cfg.Limits.MaxSteps, "instruction limit, 0 for none")
	timeout := fs.Duration("timeout", a.cfg.Limits.Timeout.Duration, "wall clock limit, 0 for none")
	save := fs.String("save", "", "snapshot file written when the program waits again (default: the input snapshot)")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) < 1 {
		return fmt.Errorf("usage: intcode resume <snapshot> [-in 1,2]")
	}

	path := positional[0]
	m, err := intcode.LoadSnapshot(path)
	if err != nil {
		return err
	}

	if *in != "" {
		inputs, err := parseInts(*in)
		if err != nil {
			return err
		}
		m.AddInput(inputs...)
	}

	savePath := *save
	if savePath == "" {
		savePath = path
	}

	a.log.Debug("resuming",
		zap.String("snapshot", path),
		zap.Int64("pc", m.PC()),
		zap.Int("pending", m.PendingInput()),
	)
	return a.execute(m, *maxSteps, *timeout, savePath)
}

// execute drives m to completion, printing each output on its own line.
// When the input queue runs dry the machine is saved to savePath, or the
// run fails if savePath is empty.
func (a *app) execute(m *intcode.Machine, maxSteps int64, timeout time.Duration, savePath string) error {
	m.SetMaxSteps(maxSteps)

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	m.SetContext(ctx)

	defer a.logStats(m)

	for {
		pause, err := m.Resume()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("timed out after %s", timeout)
			}
			return err
		}

		switch pause.Status {
		case intcode.StatusOutput:
			fmt.Fprintln(a.stdout, pause.Value)

		case intcode.StatusDone:
			a.log.Debug("halted", zap.Int64("pc", m.PC()))
			return nil

		case intcode.StatusNeedInput:
			if savePath == "" {
				return fmt.Errorf("at %04d: %w", m.PC(), intcode.ErrInputStarved)
			}
			if err := intcode.SaveSnapshot(savePath, m); err != nil {
				return err
			}
			fmt.Fprintf(a.stderr, "Waiting for input at %04d, saved %s\n", m.PC(), savePath)
			return nil
		}
	}
}

func (a *app) logStats(m *intcode.Machine) {
	stats := m.Stats()
	if stats == nil {
		return
	}
	a.log.Info("execution stats",
		zap.Int64("steps", stats.StepsExecuted),
		zap.Int64("inputs", stats.InputsConsumed),
		zap.Int64("outputs", stats.Outputs),
		zap.Any("opcodes", stats.OpCounts),
	)
}

func (a *app) asmCommand(args []string) error {
	fs := a.newFlagSet("asm")
	output := fs.String("o", "", "output file (default: input with .icbc extension)")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) < 1 {
		return fmt.Errorf("usage: intcode asm <file.asm> [-o output.icbc]")
	}

	inputPath := positional[0]
	outputPath := *output
	if outputPath == "" {
		ext := filepath.Ext(inputPath)
		outputPath = strings.TrimSuffix(inputPath, ext) + ".icbc"
	}

	p, err := compiler.CompileFile(inputPath)
	if err != nil {
		return fmt.Errorf("assembling %s: %w", inputPath, err)
	}

	if err := loader.Save(outputPath, p); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	a.log.Debug("assembled", zap.String("source", inputPath), zap.String("output", outputPath))
	fmt.Fprintf(a.stdout, "Assembled %d cells: %s\n", len(p), outputPath)
	return nil
}

func (a *app) disasmCommand(args []string) error {
	fs := a.newFlagSet("disasm")
	output := fs.String("o", "", "output file (default: stdout)")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	path, err := a.programPath(positional, "intcode disasm <program> [-o output.asm]")
	if err != nil {
		return err
	}

	p, err := loader.Load(path)
	if err != nil {
		return err
	}

	listing := intcode.Disassemble(p)

	if *output != "" {
		if err := os.WriteFile(*output, []byte(listing), 0644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		fmt.Fprintf(a.stdout, "Disassembled to: %s\n", *output)
		return nil
	}

	fmt.Fprint(a.stdout, listing)
	return nil
}

func (a *app) dumpCommand(args []string) error {
	fs := a.newFlagSet("dump")
	output := fs.String("o", "", "output file (.csv, .json, .parquet, .icbc, .asm or .txt)")
	execute := fs.Bool("run", false, "run the program first and dump its final memory")
	in := fs.String("in", "", "comma-separated input values for -run")
	sparse := fs.Bool("sparse", false, "write only non-zero cells with their addresses")
	maxSteps := fs.Int64("max-steps", a.cfg.Limits.MaxSteps, "instruction limit for -run, 0 for none")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	path, err := a.programPath(positional, "intcode dump <program> -o output.csv")
	if err != nil {
		return err
	}
	if *output == "" {
		return fmt.Errorf("usage: intcode dump <program> -o output.csv")
	}

	p, err := loader.Load(path)
	if err != nil {
		return err
	}

	cells := []int64(p)
	if *execute {
		inputs := a.cfg.Program.Inputs
		if *in != "" {
			if inputs, err = parseInts(*in); err != nil {
				return err
			}
		}
		m := intcode.New(p)
		m.SetMaxSteps(*maxSteps)
		outputs, err := m.Run(inputs...)
		if err != nil {
			return err
		}
		a.log.Debug("ran before dump", zap.Int64s("outputs", outputs))
		cells = m.Memory()
	}

	if *sparse {
		err = loader.WriteFrame(*output, loader.SparseFrame(cells))
	} else {
		err = loader.Save(*output, cells)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Wrote %d cells to %s\n", len(cells), *output)
	return nil
}

func (a *app) ampCommand(args []string) error {
	amplifier := a.cfg.Amplifier

	fs := a.newFlagSet("amp")
	feedback := fs.Bool("feedback", amplifier.Feedback, "run the amplifiers in a feedback loop")
	phases := fs.String("phases", formatInts(amplifier.Phases), "comma-separated phase settings to permute")
	signal := fs.Int64("signal", amplifier.Signal, "initial input signal")
	table := fs.String("table", "", "write every trial to a .csv, .json or .parquet file")
	maxSteps := fs.Int64("max-steps", a.cfg.Limits.MaxSteps, "instruction limit per amplifier, 0 for none")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	path, err := a.programPath(positional, "intcode amp <program> [-feedback] [-phases 5,6,7,8,9]")
	if err != nil {
		return err
	}

	p, err := loader.Load(path)
	if err != nil {
		return err
	}
	settings, err := parseInts(*phases)
	if err != nil {
		return err
	}

	opts := []amp.Option{
		amp.WithSignal(*signal),
		amp.WithMaxSteps(*maxSteps),
		amp.WithLogger(a.log),
	}
	if *feedback {
		opts = append(opts, amp.WithFeedback())
	}

	res, err := amp.Search(p, settings, opts...)
	if err != nil {
		return err
	}

	if *table != "" {
		if err := loader.WriteFrame(*table, res.Frame()); err != nil {
			return err
		}
		a.log.Debug("wrote trial table", zap.String("path", *table), zap.Int("trials", len(res.Trials)))
	}

	fmt.Fprintf(a.stdout, "phases %s signal %d\n", formatInts(res.Phases), res.Signal)
	return nil
}

func (a *app) paintCommand(args []string) error {
	fs := a.newFlagSet("paint")
	start := fs.Int64("start", robot.Black, "color of the starting panel (0 black, 1 white)")
	maxSteps := fs.Int64("max-steps", a.cfg.Limits.MaxSteps, "instruction limit, 0 for none")
	timeout := fs.Duration("timeout", a.cfg.Limits.Timeout.Duration, "wall clock limit, 0 for none")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	path, err := a.programPath(positional, "intcode paint <program> [-start 1]")
	if err != nil {
		return err
	}

	p, err := loader.Load(path)
	if err != nil {
		return err
	}

	r := robot.New(robot.WithLogger(a.log))
	if *start != robot.Black {
		if err := r.PaintHere(*start); err != nil {
			return err
		}
	}

	m := intcode.New(p)
	m.SetMaxSteps(*maxSteps)
	if *timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		m.SetContext(ctx)
	}

	if err := r.Paint(m); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Painted %d panels\n", r.Panels())
	fmt.Fprint(a.stdout, r.Render())
	return nil
}

func (a *app) replCommand(args []string) error {
	fs := a.newFlagSet("repl")
	asmMode := fs.Bool("asm", false, "start in assembly mode (default: run mode)")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	r := repl.New()
	if *asmMode {
		r.SetMode(repl.ModeASM)
	}

	path := a.cfg.Program.Path
	if len(positional) > 0 {
		path = positional[0]
	}
	if path != "" {
		p, err := loader.Load(path)
		if err != nil {
			return err
		}
		r.SetProgram(p)
	}

	r.Start(a.stdin, a.stdout)
	return nil
}

func parseInts(s string) ([]int64, error) {
	var values []int64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", field)
		}
		values = append(values, v)
	}
	return values, nil
}

func formatInts(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

func printUsage(w io.Writer) error {
	fmt.Fprintln(w, `intcode - IntCode virtual machine, assembler and puzzle drivers

Usage:
  intcode [-config intcode.toml] [-log-level level] <command> [arguments]

Commands:
  run <program>         Execute a program, printing each output
  resume <snapshot>     Continue a program saved while waiting for input
  asm <file.asm>        Assemble source to a binary image (.icbc)
  disasm <program>      Disassemble a program to assembly
  dump <program>        Write program memory as a table or image
  amp <program>         Find the best amplifier phase settings
  paint <program>       Run the hull painting robot
  repl                  Start interactive REPL
  version               Print version information
  help                  Show this help message

Programs may be comma-separated text, .icbc images, .asm source or
.csv/.json/.parquet tables with a value column.

Run Options:
  -in <n,n,...>         Input values (default: profile inputs)
  -max-steps <n>        Instruction limit, 0 for none
  -timeout <d>          Wall clock limit such as 5s, 0 for none
  -save <file>          Save a snapshot when the program waits for input
  -stats                Log execution statistics

Resume Options:
  -in <n,n,...>         Input values appended to the queue
  -save <file>          Snapshot written on the next wait (default: overwrite)

Asm Options:
  -o <file>             Output file (default: input with .icbc extension)

Disasm Options:
  -o <file>             Output file (default: stdout)

Dump Options:
  -o <file>             Output file, format chosen by extension
  -run                  Dump memory after running the program
  -in <n,n,...>         Input values for -run
  -sparse               Only non-zero cells, with addresses

Amp Options:
  -feedback             Feedback loop instead of a single chain
  -phases <n,n,...>     Phase settings to permute (default: 0,1,2,3,4)
  -signal <n>           Initial signal (default: 0)
  -table <file>         Write every trial to .csv, .json or .parquet

Paint Options:
  -start <0|1>          Color of the starting panel

REPL Options:
  -asm                  Start in assembly mode (default: run mode)

Environment:
  INTCODE_LOG_LEVEL, INTCODE_MAX_STEPS, INTCODE_TIMEOUT override the profile.

Examples:
  intcode run day9.txt -in 1
  intcode run day5.txt -save day5.snap
  intcode resume day5.snap -in 5
  intcode asm countdown.asm -o countdown.icbc
  intcode disasm countdown.icbc
  intcode dump day2.txt -run -o memory.csv
  intcode amp day7.txt -feedback -phases 5,6,7,8,9 -table trials.csv
  intcode paint day11.txt -start 1`)
	return nil
}
