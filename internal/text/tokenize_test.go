package text

import (
	"reflect"
	"testing"
)

// TestTokenize tests folding and splitting.
func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "lower-cases", in: "The Quick FOX", want: []string{"the", "quick", "fox"}},
		{name: "strips accents", in: "Café naïve", want: []string{"cafe", "naive"}},
		{name: "splits on hyphens and punctuation", in: "state-of-the-art, e.g. don't", want: []string{"state", "of", "the", "art", "e", "g", "don", "t"}},
		{name: "keeps digits", in: "CS 121 in 2024", want: []string{"cs", "121", "in", "2024"}},
		{name: "case folds sharp s", in: "Straße", want: []string{"strasse"}},
		{name: "non-latin scripts are delimiters", in: "hello 世界 world", want: []string{"hello", "world"}},
		{name: "collapses whitespace", in: "  a \n\t b  ", want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Tokenize(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestWordFrequenciesExcludeStopwords tests the histogram input.
func TestWordFrequenciesExcludeStopwords(t *testing.T) {
	t.Parallel()

	got := WordFrequencies(ContentTokens(Tokenize("the quick fox the fox")))
	want := map[string]int{"quick": 1, "fox": 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestIsStopword tests stopword membership.
func TestIsStopword(t *testing.T) {
	t.Parallel()

	for _, w := range []string{"the", "and", "wouldn", "s"} {
		if !IsStopword(w) {
			t.Errorf("expected %q to be a stopword", w)
		}
	}
	for _, w := range []string{"fox", "uci", ""} {
		if IsStopword(w) {
			t.Errorf("expected %q not to be a stopword", w)
		}
	}
}
