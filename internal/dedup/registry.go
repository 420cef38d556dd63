package dedup

import "github.com/nao1215/uciscope/internal/model"

// DefaultThreshold is the Hamming distance below which two SimHash
// fingerprints are considered near duplicates.
const DefaultThreshold = 5

// Registry is the process-wide record of seen page contents.
type Registry struct {
	exact map[[32]byte]struct{}
	index Index
}

// Option configures a Registry.
type Option func(*Registry)

// WithIndex sets the SimHash index. The index carries its own threshold.
func WithIndex(idx Index) Option {
	return func(r *Registry) {
		r.index = idx
	}
}

// NewRegistry creates an empty Registry. Without options it uses a
// BandIndex with DefaultThreshold.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		exact: make(map[[32]byte]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.index == nil {
		r.index = NewBandIndex(DefaultThreshold)
	}
	return r
}

// CheckAndRegister classifies fp and records it.
//
// A known exact hash returns OutcomeExactDuplicate and changes nothing.
// Otherwise the exact hash is stored, and the SimHash is compared against
// the cluster representatives: a close one returns OutcomeNearDuplicate
// without storing the SimHash, and no close one stores it and returns
// OutcomeNew.
func (r *Registry) CheckAndRegister(fp model.PageFingerprint) model.Outcome {
	if _, ok := r.exact[fp.ExactHash]; ok {
		return model.OutcomeExactDuplicate
	}
	r.exact[fp.ExactHash] = struct{}{}

	if r.index.Near(fp.SimHash) {
		return model.OutcomeNearDuplicate
	}
	r.index.Add(fp.SimHash)
	return model.OutcomeNew
}

// ExactCount returns the number of distinct exact hashes seen.
func (r *Registry) ExactCount() int {
	return len(r.exact)
}

// ClusterCount returns the number of stored SimHash representatives.
func (r *Registry) ClusterCount() int {
	return r.index.Len()
}
