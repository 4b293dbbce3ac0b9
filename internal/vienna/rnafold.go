// Package vienna wraps ViennaRNA's RNAfold binary for minimum free
// energy secondary-structure prediction. The sequence is piped to the
// tool as a FASTA record; the predicted dot-bracket notation and free
// energy are parsed from the captured standard output after a join.
package vienna

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/seqfold/rnafold-api/internal/dotbracket"
	"github.com/seqfold/rnafold-api/internal/extapp"
	"github.com/seqfold/rnafold-api/internal/seq"
)

const (
	// DefaultBinPath is the RNAfold executable name, resolved via PATH.
	DefaultBinPath = "RNAfold"
	// DefaultTemperature is the energy-parameter temperature in °C.
	DefaultTemperature = 37
	// DefaultJoinTimeout bounds the blocking wait in Fold.
	DefaultJoinTimeout = 2 * time.Minute
)

// resultLine matches the RNAfold result line: a dot-bracket notation
// followed by the free energy in parentheses. The line offset and the
// whitespace between notation and energy vary across RNAfold versions,
// so the line shape is matched instead of a fixed line index.
var resultLine = regexp.MustCompile(`^([.()]+)\s*\(\s*(-?\d+(?:\.\d+)?)\s*\)\s*$`)

// RNAfoldApp drives one RNAfold invocation for one sequence. Result
// accessors are valid only after a successful Join.
type RNAfoldApp struct {
	*extapp.App

	sequence    seq.NucleotideSequence
	temperature int
	binPath     string
	extraArgs   []string
	joinTimeout time.Duration
	logger      *slog.Logger

	dotBracket string
	freeEnergy float64
}

// Option configures an RNAfoldApp.
type Option func(*RNAfoldApp)

// WithTemperature sets the temperature (°C) assumed for the energy
// parameters.
func WithTemperature(t int) Option {
	return func(a *RNAfoldApp) {
		a.temperature = t
	}
}

// WithBinPath overrides the RNAfold binary path.
func WithBinPath(path string) Option {
	return func(a *RNAfoldApp) {
		if path != "" {
			a.binPath = path
		}
	}
}

// WithArgs appends extra invocation flags.
func WithArgs(args ...string) Option {
	return func(a *RNAfoldApp) {
		a.extraArgs = append(a.extraArgs, args...)
	}
}

// WithJoinTimeout bounds the blocking wait performed by Fold.
func WithJoinTimeout(d time.Duration) Option {
	return func(a *RNAfoldApp) {
		if d > 0 {
			a.joinTimeout = d
		}
	}
}

// WithLogger sets the logger used for deprecation and cleanup notices.
func WithLogger(logger *slog.Logger) Option {
	return func(a *RNAfoldApp) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an RNAfoldApp for the given sequence. The tool is
// invoked with --noPS to suppress postscript output and receives the
// sequence as a single FASTA record on standard input.
func New(sequence seq.NucleotideSequence, opts ...Option) *RNAfoldApp {
	a := &RNAfoldApp{
		sequence:    sequence,
		temperature: DefaultTemperature,
		binPath:     DefaultBinPath,
		joinTimeout: DefaultJoinTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	args := []string{"--noPS", "-T", strconv.Itoa(a.temperature)}
	args = append(args, a.extraArgs...)

	a.App = extapp.New(a.binPath,
		extapp.WithArgs(args...),
		extapp.WithStdin(seq.FastaInput("query", sequence)),
		extapp.WithEvaluator(a.evaluate),
		extapp.WithLogger(a.logger),
	)
	return a
}

// evaluate parses the captured stdout into the result cache. It runs
// exactly once, during the join that observes a successful exit.
func (a *RNAfoldApp) evaluate(stdout string) error {
	notation, energy, err := parseOutput(stdout)
	if err != nil {
		return err
	}
	a.dotBracket = notation
	a.freeEnergy = energy
	return nil
}

// parseOutput scans tool output for the result line and splits it into
// the dot-bracket notation and the parenthesized free energy.
func parseOutput(stdout string) (string, float64, error) {
	var match []string
	for _, line := range strings.Split(stdout, "\n") {
		if m := resultLine.FindStringSubmatch(strings.TrimRight(line, "\r")); m != nil {
			match = m
		}
	}
	if match == nil {
		return "", 0, extapp.Formatf("no result line found in RNAfold output")
	}

	energy, err := strconv.ParseFloat(match[2], 64)
	if err != nil {
		return "", 0, extapp.Formatf("malformed free energy %q in RNAfold output", match[2])
	}
	return match[1], energy, nil
}

// FreeEnergy returns the free energy (kcal/mol) of the predicted
// secondary structure. Valid only once JOINED.
func (a *RNAfoldApp) FreeEnergy() (float64, error) {
	if err := a.RequireState("free energy", extapp.StateJoined); err != nil {
		return 0, err
	}
	return a.freeEnergy, nil
}

// MFE returns the free energy of the predicted secondary structure.
//
// Deprecated: use FreeEnergy.
func (a *RNAfoldApp) MFE() (float64, error) {
	a.logger.Warn("MFE is deprecated, use FreeEnergy instead")
	return a.FreeEnergy()
}

// DotBracket returns the predicted secondary structure in dot-bracket
// notation. Valid only once JOINED.
func (a *RNAfoldApp) DotBracket() (string, error) {
	if err := a.RequireState("dot bracket", extapp.StateJoined); err != nil {
		return "", err
	}
	return a.dotBracket, nil
}

// BasePairs returns the base pairs of the predicted secondary
// structure, decoded from the dot-bracket notation. Valid only once
// JOINED.
func (a *RNAfoldApp) BasePairs() ([][2]int, error) {
	if err := a.RequireState("base pairs", extapp.StateJoined); err != nil {
		return nil, err
	}
	return dotbracket.BasePairs(a.dotBracket)
}

// Result holds a completed secondary-structure prediction.
type Result struct {
	DotBracket string
	FreeEnergy float64
	BasePairs  [][2]int
}

// Fold runs the full lifecycle synchronously: construct, start, join
// and extract. Convenience for callers that do not need fine-grained
// control over the job. A timed-out join kills the child process
// before the error is returned: no handle escapes this function, so
// the process must not outlive it.
func Fold(ctx context.Context, sequence seq.NucleotideSequence, opts ...Option) (Result, error) {
	app := New(sequence, opts...)

	if err := app.Start(ctx); err != nil {
		return Result{}, err
	}
	if err := app.Join(app.joinTimeout); err != nil {
		var timeoutErr *extapp.TimeoutError
		if errors.As(err, &timeoutErr) {
			if killErr := app.Kill(); killErr != nil {
				app.logger.Warn("failed to kill timed-out process",
					slog.String("error", killErr.Error()),
				)
			}
		}
		return Result{}, err
	}

	notation, err := app.DotBracket()
	if err != nil {
		return Result{}, err
	}
	energy, err := app.FreeEnergy()
	if err != nil {
		return Result{}, err
	}
	pairs, err := app.BasePairs()
	if err != nil {
		return Result{}, err
	}

	return Result{DotBracket: notation, FreeEnergy: energy, BasePairs: pairs}, nil
}
