package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSeeds is returned when there is no URL to start crawling from.
	ErrNoSeeds = errors.New("no seeds specified: provide a seed URL or configure seeds")

	// ErrNoAllowedDomains is returned when the crawl scope is empty.
	// Every link would be out of scope.
	ErrNoAllowedDomains = errors.New("no allowed domains configured")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidMaxPages is returned when the page limit is negative.
	// Zero means no limit.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the body size cap is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidThreshold is returned when a tuned threshold is out of range.
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrUnknownIndex is returned when the SimHash index kind is not recognized.
	ErrUnknownIndex = errors.New("unknown simhash index: must be banded or linear")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
