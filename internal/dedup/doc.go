// Package dedup tracks which page contents have been seen during a crawl.
//
// A Registry holds the set of exact content hashes and an Index of SimHash
// fingerprints that act as near-duplicate cluster representatives. Both only
// grow; nothing is evicted during a run.
//
// Two Index implementations are provided:
//   - LinearIndex compares a fingerprint against every stored one.
//   - BandIndex splits fingerprints into as many bands as the distance
//     threshold. Two fingerprints that differ in fewer bits than there are
//     bands must agree on at least one whole band, so looking only at the
//     fingerprints that share a band with the query finds every match the
//     linear scan would find.
//
// Design decision: Registry is not safe for concurrent use. Its check and its
// insert must happen as one step, so the lock belongs to the caller that also
// updates the other per-crawl state (see pipeline.CrawlState).
package dedup
