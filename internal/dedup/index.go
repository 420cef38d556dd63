package dedup

import (
	"errors"
	"fmt"

	"github.com/nao1215/uciscope/internal/fingerprint"
)

// Index kinds accepted by NewIndex.
const (
	IndexBanded = "banded"
	IndexLinear = "linear"
)

// ErrUnknownIndex is returned by NewIndex for an unrecognized kind.
var ErrUnknownIndex = errors.New("unknown simhash index")

// Index stores SimHash fingerprints and answers proximity queries.
type Index interface {
	// Near reports whether a stored fingerprint is closer than the index
	// threshold to h.
	Near(h uint64) bool
	// Add stores h.
	Add(h uint64)
	// Len returns the number of stored fingerprints.
	Len() int
}

// NewIndex creates an index of the given kind. An empty kind selects the
// banded index.
func NewIndex(kind string, threshold int) (Index, error) {
	switch kind {
	case "", IndexBanded:
		return NewBandIndex(threshold), nil
	case IndexLinear:
		return NewLinearIndex(threshold), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndex, kind)
	}
}

// LinearIndex scans every stored fingerprint. Lookups cost O(n).
type LinearIndex struct {
	threshold int
	hashes    []uint64
}

// NewLinearIndex creates a LinearIndex that matches fingerprints whose
// Hamming distance is below threshold.
func NewLinearIndex(threshold int) *LinearIndex {
	return &LinearIndex{threshold: threshold}
}

// Near implements Index.
func (l *LinearIndex) Near(h uint64) bool {
	if l.threshold <= 0 {
		return false
	}
	for _, stored := range l.hashes {
		if fingerprint.HammingDistance(h, stored) < l.threshold {
			return true
		}
	}
	return false
}

// Add implements Index.
func (l *LinearIndex) Add(h uint64) {
	l.hashes = append(l.hashes, h)
}

// Len implements Index.
func (l *LinearIndex) Len() int {
	return len(l.hashes)
}

// band is a contiguous bit range of a fingerprint.
type band struct {
	shift uint
	mask  uint64
}

func (b band) key(h uint64) uint64 {
	return (h >> b.shift) & b.mask
}

// BandIndex buckets fingerprints by band value so that a lookup only
// compares against fingerprints sharing at least one band with the query.
type BandIndex struct {
	threshold int
	bands     []band
	buckets   []map[uint64][]uint64
	size      int

	// wide handles thresholds above the fingerprint width, where every
	// stored fingerprint is a match and banding cannot help.
	wide *LinearIndex
}

// NewBandIndex creates a BandIndex for the given threshold. The 64 bits are
// split into threshold bands whose widths differ by at most one bit.
func NewBandIndex(threshold int) *BandIndex {
	idx := &BandIndex{threshold: threshold}
	if threshold <= 0 {
		return idx
	}
	if threshold > fingerprint.Bits {
		idx.wide = NewLinearIndex(threshold)
		return idx
	}

	base := fingerprint.Bits / threshold
	extra := fingerprint.Bits % threshold
	shift := 0
	for i := 0; i < threshold; i++ {
		width := base
		if i < extra {
			width++
		}
		idx.bands = append(idx.bands, band{shift: uint(shift), mask: (uint64(1) << uint(width)) - 1})
		idx.buckets = append(idx.buckets, make(map[uint64][]uint64))
		shift += width
	}
	return idx
}

// Near implements Index.
func (b *BandIndex) Near(h uint64) bool {
	if b.wide != nil {
		return b.wide.Near(h)
	}
	for i, bd := range b.bands {
		for _, stored := range b.buckets[i][bd.key(h)] {
			if fingerprint.HammingDistance(h, stored) < b.threshold {
				return true
			}
		}
	}
	return false
}

// Add implements Index.
func (b *BandIndex) Add(h uint64) {
	b.size++
	if b.wide != nil {
		b.wide.Add(h)
		return
	}
	for i, bd := range b.bands {
		k := bd.key(h)
		b.buckets[i][k] = append(b.buckets[i][k], h)
	}
}

// Len implements Index.
func (b *BandIndex) Len() int {
	return b.size
}
