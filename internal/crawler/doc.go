// Package crawler provides the HTML extraction collaborator and the Spider
// that drives a bounded crawl.
//
// # Components
//
//   - Parser: turns raw HTML into visible text and absolute anchor URLs
//   - Spider: breadth-first crawl over seeds, fetching each wave concurrently
//     and feeding every page through the admission pipeline
//
// # Visible text
//
// Text nodes count as visible unless their parent element is style, script,
// noscript, head, title or meta, or they hang directly off the document
// root. Comments never count. Text nodes are trimmed and joined with single
// spaces.
//
// Design decision: Anchors are enumerated with goquery selectors while the
// text walk uses golang.org/x/net/html directly. Both work on the same parsed
// tree, so each page is parsed once. The walk needs the parent of every text
// node, which is simpler on raw nodes than through a selection.
//
// # Usage
//
//	spider := crawler.NewSpider(fetcher, admission, crawler.WithMaxPages(1000))
//	stats, err := spider.Crawl(ctx, seeds)
package crawler
