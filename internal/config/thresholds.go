package config

import (
	"fmt"

	"github.com/nao1215/uciscope/internal/dedup"
	"github.com/nao1215/uciscope/internal/model"
	"github.com/nao1215/uciscope/internal/scope"
	"github.com/nao1215/uciscope/internal/stats"
	"github.com/nao1215/uciscope/internal/trap"
)

// Thresholds holds every empirically tuned admission constant.
// The YAML keys are the ones accepted under "thresholds:" in the config file.
type Thresholds struct {
	// Outlink explosion: a page may emit LinkBase + LinkPerPage*prior links.
	LinkBase    int `yaml:"link_base"`
	LinkPerPage int `yaml:"link_per_page"`

	// Pattern collapse.
	PatternMinCount int     `yaml:"pattern_min_count"`
	PatternMinRatio float64 `yaml:"pattern_min_ratio"`
	PatternKeep     int     `yaml:"pattern_keep"`

	// Host concentration.
	HostBase    int `yaml:"host_base"`
	HostPerPage int `yaml:"host_per_page"`
	TopHosts    int `yaml:"top_hosts"`

	// NearDuplicateDistance is the Hamming distance below which two
	// SimHashes are near duplicates.
	NearDuplicateDistance int `yaml:"near_duplicate_distance"`

	// Index is the SimHash index: "banded" or "linear".
	Index string `yaml:"index"`

	// MinWords is the token count below which a page is low value.
	MinWords int `yaml:"min_words"`

	// Structural URL limits.
	MaxURLLength     int `yaml:"max_url_length"`
	MaxQueryLength   int `yaml:"max_query_length"`
	MaxQueryParams   int `yaml:"max_query_params"`
	MaxPathDepth     int `yaml:"max_path_depth"`
	MaxSegmentLength int `yaml:"max_segment_length"`
	MaxHostLabels    int `yaml:"max_host_labels"`

	// MaxBodySize is the page body cap in bytes.
	MaxBodySize int64 `yaml:"max_body_size"`
}

// DefaultThresholds returns the tuned defaults.
func DefaultThresholds() Thresholds {
	limits := trap.DefaultLimits()
	rules := scope.DefaultRules()
	return Thresholds{
		LinkBase:              limits.LinkBase,
		LinkPerPage:           limits.LinkPerPage,
		PatternMinCount:       limits.PatternMinCount,
		PatternMinRatio:       limits.PatternMinRatio,
		PatternKeep:           limits.PatternKeep,
		HostBase:              limits.HostBase,
		HostPerPage:           limits.HostPerPage,
		TopHosts:              limits.TopHosts,
		NearDuplicateDistance: dedup.DefaultThreshold,
		Index:                 dedup.IndexBanded,
		MinWords:              stats.DefaultMinWords,
		MaxURLLength:          rules.MaxURLLength,
		MaxQueryLength:        rules.MaxQueryLength,
		MaxQueryParams:        rules.MaxQueryParams,
		MaxPathDepth:          rules.MaxPathDepth,
		MaxSegmentLength:      rules.MaxSegmentLength,
		MaxHostLabels:         rules.MaxHostLabels,
		MaxBodySize:           model.MaxPageSize,
	}
}

// TrapLimits returns the trap detector limits.
func (t Thresholds) TrapLimits() trap.Limits {
	return trap.Limits{
		LinkBase:        t.LinkBase,
		LinkPerPage:     t.LinkPerPage,
		PatternMinCount: t.PatternMinCount,
		PatternMinRatio: t.PatternMinRatio,
		PatternKeep:     t.PatternKeep,
		HostBase:        t.HostBase,
		HostPerPage:     t.HostPerPage,
		TopHosts:        t.TopHosts,
	}
}

// ScopeRules returns the structural URL limits.
func (t Thresholds) ScopeRules() scope.Rules {
	return scope.Rules{
		MaxURLLength:     t.MaxURLLength,
		MaxQueryLength:   t.MaxQueryLength,
		MaxQueryParams:   t.MaxQueryParams,
		MaxPathDepth:     t.MaxPathDepth,
		MaxSegmentLength: t.MaxSegmentLength,
		MaxHostLabels:    t.MaxHostLabels,
	}
}

// NewIndex builds the configured SimHash index.
func (t Thresholds) NewIndex() (dedup.Index, error) {
	idx, err := dedup.NewIndex(t.Index, t.NearDuplicateDistance)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownIndex, err)
	}
	return idx, nil
}

// Validate checks that every threshold is in range.
func (t Thresholds) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"link_base", t.LinkBase},
		{"pattern_min_count", t.PatternMinCount},
		{"pattern_keep", t.PatternKeep},
		{"host_base", t.HostBase},
		{"top_hosts", t.TopHosts},
		{"near_duplicate_distance", t.NearDuplicateDistance},
		{"max_url_length", t.MaxURLLength},
		{"max_query_length", t.MaxQueryLength},
		{"max_query_params", t.MaxQueryParams},
		{"max_path_depth", t.MaxPathDepth},
		{"max_segment_length", t.MaxSegmentLength},
		{"max_host_labels", t.MaxHostLabels},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidThreshold, p.name, p.value)
		}
	}

	if t.LinkPerPage < 0 || t.HostPerPage < 0 || t.MinWords < 0 {
		return fmt.Errorf("%w: per-page growth and min_words must be non-negative", ErrInvalidThreshold)
	}
	if t.PatternMinRatio <= 0 || t.PatternMinRatio > 1 {
		return fmt.Errorf("%w: pattern_min_ratio must be in (0, 1], got %g", ErrInvalidThreshold, t.PatternMinRatio)
	}
	if t.NearDuplicateDistance > 64 {
		return fmt.Errorf("%w: near_duplicate_distance must be at most 64, got %d", ErrInvalidThreshold, t.NearDuplicateDistance)
	}
	if t.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	switch t.Index {
	case "", dedup.IndexBanded, dedup.IndexLinear:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownIndex, t.Index)
	}
	return nil
}
