// Package seq provides the minimal sequence abstraction consumed by
// the folding wrappers: a validated nucleotide sequence and a FASTA
// record codec for tool input.
package seq

import (
	"fmt"
	"strings"
)

// ErrEmptySequence is returned when a sequence contains no symbols.
var ErrEmptySequence = fmt.Errorf("seq: empty sequence")

// nucleotideAlphabet is the accepted symbol set, RNA and DNA included.
const nucleotideAlphabet = "ACGTU"

// NucleotideSequence is an ordered sequence of symbols over the
// nucleotide alphabet. Symbols are stored upper case.
type NucleotideSequence string

// NewNucleotideSequence validates and normalizes a raw sequence
// string. Lower-case symbols are accepted and upper-cased; any symbol
// outside the nucleotide alphabet is an error.
func NewNucleotideSequence(raw string) (NucleotideSequence, error) {
	if raw == "" {
		return "", ErrEmptySequence
	}
	normalized := strings.ToUpper(raw)
	for i, c := range normalized {
		if !strings.ContainsRune(nucleotideAlphabet, c) {
			return "", fmt.Errorf("seq: invalid symbol %q at position %d", c, i)
		}
	}
	return NucleotideSequence(normalized), nil
}

// Len returns the number of symbols in the sequence.
func (s NucleotideSequence) Len() int {
	return len(s)
}

func (s NucleotideSequence) String() string {
	return string(s)
}
