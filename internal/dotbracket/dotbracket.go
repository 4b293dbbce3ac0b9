// Package dotbracket encodes and decodes nucleic-acid secondary
// structure in dot-bracket notation. A '(' marks the upstream partner
// of a base pair, ')' the downstream partner and '.' an unpaired
// position. Pseudoknotted structures (higher-order bracket alphabets)
// are not supported.
package dotbracket

import (
	"sort"

	"github.com/seqfold/rnafold-api/internal/extapp"
)

// BasePairs decodes a dot-bracket notation into base pairs. Each pair
// holds the zero-based positions of the upstream and downstream
// partner. The scan matches every '(' to its nearest unmatched ')'
// using a stack, left to right. An unmatched bracket on either side
// fails with a FormatError.
func BasePairs(notation string) ([][2]int, error) {
	var stack []int
	pairs := make([][2]int, 0)

	for i, c := range notation {
		switch c {
		case '.':
		case '(':
			stack = append(stack, i)
		case ')':
			if len(stack) == 0 {
				return nil, extapp.Formatf("unmatched ')' at position %d in %q", i, notation)
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			pairs = append(pairs, [2]int{open, i})
		default:
			return nil, extapp.Formatf("invalid symbol %q at position %d in dot-bracket notation", c, i)
		}
	}
	if len(stack) > 0 {
		return nil, extapp.Formatf("unmatched '(' at position %d in %q", stack[len(stack)-1], notation)
	}

	// Order pairs by their upstream position.
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i][0] < pairs[j][0]
	})

	return pairs, nil
}

// Notation encodes base pairs back into a dot-bracket string of the
// given length. Pairs must be within range and positions must not
// repeat; crossing (pseudoknotted) pairs cannot be expressed and fail
// with a FormatError.
func Notation(pairs [][2]int, length int) (string, error) {
	out := make([]byte, length)
	for i := range out {
		out[i] = '.'
	}

	for _, p := range pairs {
		open, close := p[0], p[1]
		if open > close {
			open, close = close, open
		}
		if open < 0 || close >= length {
			return "", extapp.Formatf("base pair (%d,%d) out of range for length %d", p[0], p[1], length)
		}
		if out[open] != '.' || out[close] != '.' {
			return "", extapp.Formatf("position %d or %d paired more than once", p[0], p[1])
		}
		out[open] = '('
		out[close] = ')'
	}

	// Reject crossing pairs: the encoded string must decode back to
	// the same pair set, otherwise the structure is pseudoknotted.
	decoded, err := BasePairs(string(out))
	if err != nil || !samePairs(decoded, pairs) {
		return "", extapp.Formatf("base pairs contain crossings not expressible in dot-bracket notation")
	}

	return string(out), nil
}

// samePairs compares two pair sets ignoring order and orientation.
func samePairs(a, b [][2]int) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[[2]int]int, len(a))
	for _, p := range a {
		seen[normalize(p)]++
	}
	for _, p := range b {
		seen[normalize(p)]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}

func normalize(p [2]int) [2]int {
	if p[0] > p[1] {
		return [2]int{p[1], p[0]}
	}
	return p
}
