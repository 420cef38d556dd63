// Package trap trims the outbound link set of a single page when it looks
// like a crawler trap.
//
// A Detector runs an ordered list of Stage values; each stage sees the
// output of the one before it. The default order is:
//  1. VolumeStage drops every link of a page with an outlink explosion.
//  2. PatternStage collapses links dominated by one numeric URL shape,
//     which is what calendars and paginators produce.
//  3. HostConcentrationStage keeps only the most linked-to hosts when one
//     host receives an outsized share of links.
//
// Every limit grows with the number of pages already crawled on the page's
// host, so large legitimate sites are tolerated more as the crawl proceeds.
// Stages are heuristics and never fail: an inconclusive signal keeps the links.
package trap
