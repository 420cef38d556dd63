package trap

import (
	"net/url"
	"regexp"
	"strings"
)

// Context describes the page whose links are being filtered.
type Context struct {
	// PageHost is the host of the page the links were found on.
	PageHost string
	// PriorPages is how many unique pages of PageHost were seen before this one.
	PriorPages int
}

// Stage is one trap heuristic.
type Stage interface {
	// Name identifies the stage in logs.
	Name() string
	// Filter returns the links to keep. It must not modify links.
	Filter(ctx Context, links []string) []string
}

// Limits holds the tunable thresholds of the default stages.
type Limits struct {
	// LinkBase and LinkPerPage give the outlink explosion limit
	// LinkBase + LinkPerPage*PriorPages.
	LinkBase    int
	LinkPerPage int

	// PatternMinCount and PatternMinRatio are the absolute and relative
	// share a single URL shape needs to trigger a collapse.
	PatternMinCount int
	PatternMinRatio float64
	// PatternKeep caps the links of other shapes kept after a collapse.
	PatternKeep int

	// HostBase and HostPerPage give the per-host link limit
	// HostBase + HostPerPage*PriorPages.
	HostBase    int
	HostPerPage int
	// TopHosts is how many of the most linked-to hosts survive a
	// concentration cut.
	TopHosts int
}

// Default limits.
const (
	DefaultLinkBase        = 400
	DefaultLinkPerPage     = 10
	DefaultPatternMinCount = 80
	DefaultPatternMinRatio = 0.6
	DefaultPatternKeep     = 50
	DefaultHostBase        = 250
	DefaultHostPerPage     = 5
	DefaultTopHosts        = 10
)

// DefaultLimits returns the default thresholds.
func DefaultLimits() Limits {
	return Limits{
		LinkBase:        DefaultLinkBase,
		LinkPerPage:     DefaultLinkPerPage,
		PatternMinCount: DefaultPatternMinCount,
		PatternMinRatio: DefaultPatternMinRatio,
		PatternKeep:     DefaultPatternKeep,
		HostBase:        DefaultHostBase,
		HostPerPage:     DefaultHostPerPage,
		TopHosts:        DefaultTopHosts,
	}
}

// StagesFor returns the default stage order configured with l.
func StagesFor(l Limits) []Stage {
	return []Stage{
		&VolumeStage{Base: l.LinkBase, PerPage: l.LinkPerPage},
		&PatternStage{MinCount: l.PatternMinCount, MinRatio: l.PatternMinRatio, Keep: l.PatternKeep},
		&HostConcentrationStage{Base: l.HostBase, PerPage: l.HostPerPage, TopHosts: l.TopHosts},
	}
}

// digitRun matches the numeric parts of a URL that vary across trap pages.
var digitRun = regexp.MustCompile(`[0-9]+`)

// placeholder replaces digit runs in a URL shape.
const placeholder = "<n>"

// Shape returns the pattern key of link: host, path and query with every run
// of digits replaced by a placeholder. Links that only differ in their
// numbers share a shape.
func Shape(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return digitRun.ReplaceAllString(link, placeholder)
	}
	return strings.ToLower(u.Host) +
		digitRun.ReplaceAllString(u.EscapedPath(), placeholder) +
		"?" +
		digitRun.ReplaceAllString(u.RawQuery, placeholder)
}

// linkHost returns the lower-cased host of link, or "" if it does not parse.
func linkHost(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
