// Package config provides configuration structures and utilities for uciscope.
// It defines the crawl scope (seeds, allowed domains, blocklist), every tuned
// admission threshold, fetch settings and report preferences, and loads
// overrides from a YAML file.
package config
