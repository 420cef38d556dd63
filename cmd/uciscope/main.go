// Package main provides the entry point for the uciscope CLI.
//
// uciscope crawls the UCI ICS, CS, Informatics and Statistics web sites,
// rejects duplicate and trap pages as it goes, and reports the unique page
// count, the longest page, the most common words and the pages per subdomain.
//
// Usage:
//
//	uciscope crawl
//	uciscope crawl https://www.ics.uci.edu --max-pages 500
//	uciscope report --list
//
// See --help for all available options.
package main

// main is the entry point for uciscope.
func main() {
	Execute()
}
