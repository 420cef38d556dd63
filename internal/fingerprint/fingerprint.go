package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"math/bits"
	"unicode/utf8"

	"golang.org/x/crypto/sha3"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/uciscope/internal/model"
)

// Bits is the width of a SimHash fingerprint.
const Bits = 64

// Compute returns the fingerprint of a page's visible text and tokens.
// It fails with model.ErrMalformedInput if text is not valid UTF-8.
func Compute(visibleText string, tokens []string) (model.PageFingerprint, error) {
	exact, err := ExactHash(visibleText)
	if err != nil {
		return model.PageFingerprint{}, err
	}
	return model.PageFingerprint{
		ExactHash: exact,
		SimHash:   SimHash(tokens),
	}, nil
}

// ExactHash returns the SHA-256 digest of the NFKC normal form of text.
func ExactHash(text string) ([32]byte, error) {
	if !utf8.ValidString(text) {
		return [32]byte{}, fmt.Errorf("%w: visible text is not valid UTF-8", model.ErrMalformedInput)
	}
	return sha256.Sum256([]byte(norm.NFKC.String(text))), nil
}

// SimHash returns the 64-bit SimHash of tokens.
//
// Each distinct token votes once per output bit with a weight equal to its
// frequency: +f where the token's hash has a 1 bit, -f where it has a 0.
// A bit of the result is set only when its total is strictly positive, so
// an empty token list yields 0.
func SimHash(tokens []string) uint64 {
	if len(tokens) == 0 {
		return 0
	}

	freqs := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freqs[tok]++
	}

	var acc [Bits]int
	for tok, f := range freqs {
		h := sha3.Sum256([]byte(tok))
		for i := 0; i < Bits; i++ {
			if (h[i/8]>>(i%8))&1 == 1 {
				acc[i] += f
			} else {
				acc[i] -= f
			}
		}
	}

	var out uint64
	for i, v := range acc {
		if v > 0 {
			out |= 1 << i
		}
	}
	return out
}

// HammingDistance returns the number of differing bits between a and b.
func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
