// Package fold provides the common interface for secondary-structure
// prediction engines. The CLI adapter drives RNAfold-compatible local
// binaries; further adapters can wrap other engines behind the same
// port.
package fold

import (
	"context"

	"github.com/seqfold/rnafold-api/internal/seq"
)

// Options contains parameters for a prediction run.
type Options struct {
	// Temperature is the energy-parameter temperature in °C.
	// Zero selects the engine default (37).
	Temperature int
}

// Result contains a completed secondary-structure prediction.
type Result struct {
	// DotBracket is the predicted structure in dot-bracket notation.
	DotBracket string
	// FreeEnergy is the free energy (kcal/mol) of the structure.
	FreeEnergy float64
	// BasePairs holds the paired positions decoded from the notation.
	BasePairs [][2]int
}

// Predictor defines the interface for folding engines.
type Predictor interface {
	// Predict computes the minimum free energy secondary structure
	// of a nucleotide sequence.
	Predict(ctx context.Context, sequence seq.NucleotideSequence, opts Options) (Result, error)
}
