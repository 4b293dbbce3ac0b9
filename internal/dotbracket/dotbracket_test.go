package dotbracket

import (
	"errors"
	"reflect"
	"testing"

	"github.com/seqfold/rnafold-api/internal/extapp"
)

func TestBasePairs(t *testing.T) {
	notation := "(((.((((.......)).)))))...."
	want := [][2]int{
		{0, 22}, {1, 21}, {2, 20}, {4, 19}, {5, 18}, {6, 16}, {7, 15},
	}

	pairs, err := BasePairs(notation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("expected pairs %v, got %v", want, pairs)
	}
}

func TestBasePairs_Unpaired(t *testing.T) {
	pairs, err := BasePairs(".....")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("expected no pairs, got %v", pairs)
	}
}

func TestBasePairs_Empty(t *testing.T) {
	pairs, err := BasePairs("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("expected no pairs, got %v", pairs)
	}
}

func TestBasePairs_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		notation string
	}{
		{"unmatched close", ".)"},
		{"unmatched open", "(."},
		{"close before open", ")("},
		{"invalid symbol", "(.x)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BasePairs(tt.notation)

			var formatErr *extapp.FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("expected FormatError for %q, got %v", tt.notation, err)
			}
		})
	}
}

func TestNotation_RoundTrip(t *testing.T) {
	notations := []string{
		"(((.((((.......)).)))))....",
		"((((....))))",
		".....",
		"",
		"(.)",
	}

	for _, notation := range notations {
		pairs, err := BasePairs(notation)
		if err != nil {
			t.Fatalf("decode %q: %v", notation, err)
		}
		got, err := Notation(pairs, len(notation))
		if err != nil {
			t.Fatalf("encode pairs of %q: %v", notation, err)
		}
		if got != notation {
			t.Errorf("round trip of %q yielded %q", notation, got)
		}
	}
}

func TestNotation_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		pairs  [][2]int
		length int
	}{
		{"out of range", [][2]int{{0, 5}}, 4},
		{"negative position", [][2]int{{-1, 2}}, 4},
		{"duplicate position", [][2]int{{0, 3}, {0, 2}}, 4},
		{"crossing pairs", [][2]int{{0, 2}, {1, 3}}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Notation(tt.pairs, tt.length)

			var formatErr *extapp.FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("expected FormatError, got %v", err)
			}
		})
	}
}
