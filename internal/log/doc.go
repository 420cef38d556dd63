// Package log provides secure logging built on top of the standard slog
// package.
//
// A crawler logs thousands of URLs and the headers it sends. Campus web
// applications put session identifiers in URLs, and a configured cookie or
// Authorization header must never end up in a shared log file. The
// SecureHandler masks:
//   - attributes whose key names a credential (cookie, authorization, token)
//   - values that look like a credential (Bearer/Basic headers, JWTs)
//   - session and token query parameters inside logged URLs
//
// Masking applies in verbose mode too.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("fetched", "url", "https://ics.uci.edu/a?sid=42")
//	// url=https://ics.uci.edu/a?sid=***REDACTED***
//	slog.SetDefault(logger)
package log
