package fold

import (
	"context"
	"log/slog"
	"time"

	"github.com/seqfold/rnafold-api/internal/seq"
	"github.com/seqfold/rnafold-api/internal/tools"
	"github.com/seqfold/rnafold-api/internal/vienna"
)

// CLIPredictor implements Predictor using a local RNAfold-compatible
// binary described by a registry engine.
type CLIPredictor struct {
	engine      tools.Engine
	joinTimeout time.Duration
	logger      *slog.Logger
}

// CLIOption configures a CLIPredictor.
type CLIOption func(*CLIPredictor)

// WithJoinTimeout bounds how long a single prediction may run.
func WithJoinTimeout(d time.Duration) CLIOption {
	return func(p *CLIPredictor) {
		if d > 0 {
			p.joinTimeout = d
		}
	}
}

// WithLogger sets the logger passed to the underlying application.
func WithLogger(logger *slog.Logger) CLIOption {
	return func(p *CLIPredictor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewCLIPredictor creates a predictor for the given engine.
func NewCLIPredictor(engine tools.Engine, opts ...CLIOption) *CLIPredictor {
	p := &CLIPredictor{
		engine:      engine,
		joinTimeout: vienna.DefaultJoinTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Predict runs the engine binary for one sequence and returns the
// parsed structure.
func (p *CLIPredictor) Predict(ctx context.Context, sequence seq.NucleotideSequence, opts Options) (Result, error) {
	vopts := []vienna.Option{
		vienna.WithBinPath(p.engine.Bin),
		vienna.WithJoinTimeout(p.joinTimeout),
		vienna.WithLogger(p.logger),
	}
	if opts.Temperature != 0 {
		vopts = append(vopts, vienna.WithTemperature(opts.Temperature))
	}
	if len(p.engine.Args) > 0 {
		vopts = append(vopts, vienna.WithArgs(p.engine.Args...))
	}

	res, err := vienna.Fold(ctx, sequence, vopts...)
	if err != nil {
		return Result{}, err
	}
	return Result{
		DotBracket: res.DotBracket,
		FreeEnergy: res.FreeEnergy,
		BasePairs:  res.BasePairs,
	}, nil
}

// Verify interface implementation at compile time.
var _ Predictor = (*CLIPredictor)(nil)
