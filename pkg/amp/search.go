package amp

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"go.uber.org/zap"

	"github.com/akhildatla/intcode/pkg/intcode"
)

// Options configures a phase search.
type Options struct {
	// Feedback selects the ring wiring instead of a one-shot chain.
	Feedback bool

	// Signal is the value fed to the first amplifier.
	Signal int64

	// MaxSteps limits each amplifier. Zero means unlimited.
	MaxSteps int64

	// Logger receives one debug entry per trial. Nil means no logging.
	Logger *zap.Logger
}

// Option is a functional option for configuring a search.
type Option func(*Options)

// WithFeedback runs every trial as a feedback loop.
func WithFeedback() Option {
	return func(o *Options) {
		o.Feedback = true
	}
}

// WithSignal sets the initial signal.
func WithSignal(signal int64) Option {
	return func(o *Options) {
		o.Signal = signal
	}
}

// WithMaxSteps limits the instructions each amplifier may execute.
func WithMaxSteps(n int64) Option {
	return func(o *Options) {
		o.MaxSteps = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// Trial is one evaluated phase ordering.
type Trial struct {
	Phases []int64
	Signal int64
}

// Result is the outcome of a search.
type Result struct {
	Phases []int64
	Signal int64
	Trials []Trial
}

// Search runs every ordering of phases and returns the one producing the
// highest final signal. Ties keep the ordering found first.
func Search(p intcode.Program, phases []int64, opts ...Option) (Result, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	log := options.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if err := validatePhases(phases); err != nil {
		return Result{}, err
	}

	run := runChain
	if options.Feedback {
		run = runFeedbackLoop
	}

	var res Result
	for i, order := range Permutations(phases) {
		signal, err := run(p, order, options.Signal, options.MaxSteps)
		if err != nil {
			return Result{}, fmt.Errorf("phases %s: %w", formatPhases(order), err)
		}
		log.Debug("trial",
			zap.Int64s("phases", order),
			zap.Int64("signal", signal),
		)

		res.Trials = append(res.Trials, Trial{Phases: order, Signal: signal})
		if i == 0 || signal > res.Signal {
			res.Phases = slices.Clone(order)
			res.Signal = signal
		}
	}

	log.Info("search complete",
		zap.Bool("feedback", options.Feedback),
		zap.Int("trials", len(res.Trials)),
		zap.Int64s("phases", res.Phases),
		zap.Int64("signal", res.Signal),
	)

	return res, nil
}

// Frame returns every trial as a dataframe with a phases column (comma
// separated) and a signal column.
func (r Result) Frame() *dataframe.DataFrame {
	phases := make([]interface{}, len(r.Trials))
	signals := make([]interface{}, len(r.Trials))
	for i, t := range r.Trials {
		phases[i] = formatPhases(t.Phases)
		signals[i] = t.Signal
	}

	return dataframe.NewDataFrame(
		dataframe.NewSeriesString("phases", nil, phases...),
		dataframe.NewSeriesInt64("signal", nil, signals...),
	)
}

func formatPhases(phases []int64) string {
	parts := make([]string, len(phases))
	for i, ph := range phases {
		parts[i] = strconv.FormatInt(ph, 10)
	}
	return strings.Join(parts, ",")
}
