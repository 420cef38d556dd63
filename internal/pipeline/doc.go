// Package pipeline runs fetched pages through the admission steps.
//
// Every page passes through the same ordered steps: sanity checks, HTML
// extraction, fingerprinting, duplicate admission, trap filtering and the
// per-link scope filter. Each step reads what the earlier steps stored in the
// model.PageResult and adds its own findings. The first step to fail stops
// the page; a skip error (see model.IsSkip) only means "leave this page out".
//
// Design decision: All mutable crawl-wide state lives in one CrawlState value
// behind a single mutex. The duplicate check is a read followed by a
// conditional write over the whole SimHash index, and the trap limits read
// the per-host page counts, so both must see the same serialized history.
// Everything else a step does is pure and runs outside the lock, which lets
// BatchProcessor fetch and process many pages concurrently.
package pipeline
