package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tokenize splits visible text into folded tokens. Stopwords are kept; use
// ContentTokens to drop them.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}

	return strings.FieldsFunc(fold(s), isDelimiter)
}

// fold applies case folding, then decomposes and drops combining marks.
// A fresh transformer is built per call because transform chains are not
// safe for concurrent use.
func fold(s string) string {
	t := transform.Chain(
		cases.Fold(),
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// isDelimiter reports whether r separates tokens. Hyphens separate tokens as
// well, so only [a-z0-9] survive inside a token.
func isDelimiter(r rune) bool {
	return (r < 'a' || r > 'z') && (r < '0' || r > '9')
}

// ContentTokens returns the tokens of s that are not stopwords.
func ContentTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !IsStopword(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// WordFrequencies counts how often each token occurs.
func WordFrequencies(tokens []string) map[string]int {
	freqs := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freqs[tok]++
	}
	return freqs
}
