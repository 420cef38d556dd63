// Package fetch retrieves pages over HTTP for the crawler.
//
// A Client issues one GET per URL, follows up to ten redirects, and reads at
// most the configured body cap. The result is a model.Page carrying the
// status, headers, final URL and raw bytes; deciding whether that page is
// usable is left to the admission pipeline.
//
// Design decision: The client can route every connection through a SOCKS5
// proxy (golang.org/x/net/proxy). The crawl normally runs from a campus
// network, but a proxy lets the same binary run from anywhere the target
// domains are reachable through a tunnel.
package fetch
