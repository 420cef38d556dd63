package trap

import "sort"

// VolumeStage rejects every link of a page that links out more than
// Base + PerPage*PriorPages times.
type VolumeStage struct {
	Base    int
	PerPage int
}

// Name implements Stage.
func (s *VolumeStage) Name() string { return "volume" }

// Filter implements Stage.
func (s *VolumeStage) Filter(ctx Context, links []string) []string {
	if len(links) > s.Base+s.PerPage*ctx.PriorPages {
		return []string{}
	}
	return links
}

// PatternStage collapses a link set dominated by one URL shape. When the
// most common shape occurs more than MinCount times and makes up more than
// MinRatio of all links, every link of that shape is dropped and at most
// Keep distinct links of other shapes are kept, in their original order.
type PatternStage struct {
	MinCount int
	MinRatio float64
	Keep     int
}

// Name implements Stage.
func (s *PatternStage) Name() string { return "pattern" }

// Filter implements Stage.
func (s *PatternStage) Filter(_ Context, links []string) []string {
	if len(links) == 0 {
		return links
	}

	shapes := make([]string, len(links))
	counts := make(map[string]int)
	top, topCount := "", 0
	for i, link := range links {
		shape := Shape(link)
		shapes[i] = shape
		counts[shape]++
		// strictly greater keeps the first shape to reach the highest count
		if counts[shape] > topCount {
			top, topCount = shape, counts[shape]
		}
	}

	if topCount <= s.MinCount || float64(topCount)/float64(len(links)) <= s.MinRatio {
		return links
	}

	kept := make([]string, 0, s.Keep)
	seen := make(map[string]struct{})
	for i, link := range links {
		if len(kept) >= s.Keep {
			break
		}
		if shapes[i] == top {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		kept = append(kept, link)
	}
	return kept
}

// HostConcentrationStage limits links when a single target host receives
// more than Base + PerPage*PriorPages of them. Only links to the TopHosts
// most frequent hosts are then kept, capped at that same limit.
type HostConcentrationStage struct {
	Base     int
	PerPage  int
	TopHosts int
}

// Name implements Stage.
func (s *HostConcentrationStage) Name() string { return "host_concentration" }

// Filter implements Stage.
func (s *HostConcentrationStage) Filter(ctx Context, links []string) []string {
	limit := s.Base + s.PerPage*ctx.PriorPages

	hosts := make([]string, len(links))
	counts := make(map[string]int)
	over := false
	for i, link := range links {
		h := linkHost(link)
		hosts[i] = h
		counts[h]++
		if counts[h] > limit {
			over = true
		}
	}
	if !over {
		return links
	}

	ranked := make([]string, 0, len(counts))
	for h := range counts {
		ranked = append(ranked, h)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > s.TopHosts {
		ranked = ranked[:s.TopHosts]
	}
	allowed := make(map[string]struct{}, len(ranked))
	for _, h := range ranked {
		allowed[h] = struct{}{}
	}

	kept := make([]string, 0, min(len(links), limit))
	for i, link := range links {
		if len(kept) >= limit {
			break
		}
		if _, ok := allowed[hosts[i]]; ok {
			kept = append(kept, link)
		}
	}
	return kept
}
