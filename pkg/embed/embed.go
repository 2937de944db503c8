// Package embed provides the Go embedding API for IntCode programs.
//
// Pass a program and its input, get the outputs back.
//
// Basic usage:
//
//	out, err := embed.Execute("3,0,4,0,99", 42)
//	// out == []int64{42}
//
// From assembly:
//
//	out, err := embed.ExecuteAssembly(`
//	    IN    [x]
//	    OUT   [x]
//	    HALT
//	x:  DATA  0
//	`, 7)
//
// With limits:
//
//	out, err := embed.ExecuteWithOptions(program,
//	    embed.WithInputs(1),
//	    embed.WithTimeout(time.Second),
//	    embed.WithMaxSteps(1_000_000),
//	)
package embed

import (
	"context"
	"errors"
	"time"

	"github.com/akhildatla/intcode/pkg/compiler"
	"github.com/akhildatla/intcode/pkg/intcode"
	"github.com/akhildatla/intcode/pkg/loader"
)

// Common errors
var (
	ErrTimeout      = errors.New("execution timeout exceeded")
	ErrStepLimit    = errors.New("step limit exceeded")
	ErrInputStarved = errors.New("program needs more input")
)

// Execute parses comma-separated program text, runs it on inputs and
// returns every output.
func Execute(text string, inputs ...int64) ([]int64, error) {
	return ExecuteWithOptions(text, WithInputs(inputs...))
}

// ExecuteFile loads a program in any format the loader understands and
// runs it.
func ExecuteFile(path string, inputs ...int64) ([]int64, error) {
	p, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	return ExecuteProgram(p, WithInputs(inputs...))
}

// ExecuteAssembly assembles source and runs it.
func ExecuteAssembly(source string, inputs ...int64) ([]int64, error) {
	p, err := compiler.Compile(source)
	if err != nil {
		return nil, err
	}
	return ExecuteProgram(p, WithInputs(inputs...))
}

// Options configures execution behavior for ExecuteWithOptions.
type Options struct {
	// Inputs are queued before the program starts.
	Inputs []int64

	// Timeout sets maximum execution time. Zero means no timeout.
	Timeout time.Duration

	// MaxSteps limits the number of instructions executed.
	// Zero means unlimited.
	MaxSteps int64

	// MaxMemory limits memory growth in cells. Zero means
	// intcode.DefaultMaxMemory.
	MaxMemory int64

	// Context for cancellation. If nil, context.Background() is used.
	Context context.Context
}

// Option is a functional option for configuring execution.
type Option func(*Options)

// WithInputs appends program input.
func WithInputs(inputs ...int64) Option {
	return func(o *Options) {
		o.Inputs = append(o.Inputs, inputs...)
	}
}

// WithTimeout sets execution timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithMaxSteps sets the instruction limit.
func WithMaxSteps(n int64) Option {
	return func(o *Options) {
		o.MaxSteps = n
	}
}

// WithMaxMemory sets the memory limit in cells.
func WithMaxMemory(cells int64) Option {
	return func(o *Options) {
		o.MaxMemory = cells
	}
}

// WithContext sets the context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		o.Context = ctx
	}
}

// ExecuteWithOptions parses program text and runs it with advanced
// configuration.
func ExecuteWithOptions(text string, opts ...Option) ([]int64, error) {
	p, err := intcode.Parse(text)
	if err != nil {
		return nil, err
	}
	return ExecuteProgram(p, opts...)
}

// ExecuteProgram runs a parsed program. Outputs produced before a failure
// are returned along with the error.
func ExecuteProgram(p intcode.Program, opts ...Option) ([]int64, error) {
	// Apply options
	options := &Options{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Context == nil {
		options.Context = context.Background()
	}

	machine := intcode.New(p)
	machine.SetMaxSteps(options.MaxSteps)
	machine.SetMaxMemory(options.MaxMemory)

	// Setup timeout context
	ctx := options.Context
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}
	machine.SetContext(ctx)

	out, err := machine.Run(options.Inputs...)
	if err != nil {
		// Map machine errors to embed package errors
		switch {
		case errors.Is(err, intcode.ErrStepLimitExceeded):
			return out, ErrStepLimit
		case errors.Is(err, intcode.ErrInputStarved):
			return out, ErrInputStarved
		case errors.Is(err, context.DeadlineExceeded):
			return out, ErrTimeout
		}
		return out, err
	}

	return out, nil
}
