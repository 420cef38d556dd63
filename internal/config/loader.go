package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".uciscope"

// xdgConfigFile is the file name looked up in the XDG config directory.
const xdgConfigFile = "config.yaml"

// File represents the YAML configuration file.
// Every field is optional; an absent field keeps the built-in default.
//
// Example:
//
//	seeds:
//	  - https://www.ics.uci.edu
//	allowed_domains:
//	  - ics.uci.edu
//	blocklist:
//	  hosts:
//	    - wiki.ics.uci.edu
//	thresholds:
//	  near_duplicate_distance: 4
type File struct {
	Seeds          []string          `yaml:"seeds"`
	AllowedDomains []string          `yaml:"allowed_domains"`
	RootDomain     string            `yaml:"root_domain"`
	Blocklist      BlocklistFile     `yaml:"blocklist"`
	Thresholds     *Thresholds       `yaml:"thresholds"`
	Workers        int               `yaml:"workers"`
	MaxPages       int               `yaml:"max_pages"`
	TopWords       int               `yaml:"top_words"`
	Timeout        time.Duration     `yaml:"timeout"`
	MaxDuration    time.Duration     `yaml:"max_duration"`
	UserAgent      string            `yaml:"user_agent"`
	Cookie         string            `yaml:"cookie"`
	Headers        map[string]string `yaml:"headers"`
	Proxy          string            `yaml:"proxy"`
}

// BlocklistFile lists hosts and URL prefixes added to the built-in blocklist.
type BlocklistFile struct {
	Hosts    []string `yaml:"hosts"`
	Prefixes []string `yaml:"prefixes"`
}

// LoadConfigFile loads the configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
//
// Thresholds are decoded on top of DefaultThresholds, so a file that sets
// a single threshold keeps every other one.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	defaults := DefaultThresholds()
	cf := File{Thresholds: &defaults}
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// Apply copies every field set in the file onto cfg.
// CLI flags are applied afterwards and win over the file.
func (f *File) Apply(cfg *Config) {
	if len(f.Seeds) > 0 {
		cfg.Seeds = f.Seeds
	}
	if len(f.AllowedDomains) > 0 {
		cfg.AllowedDomains = f.AllowedDomains
	}
	if f.RootDomain != "" {
		cfg.RootDomain = f.RootDomain
	}
	cfg.BlockedHosts = append(cfg.BlockedHosts, f.Blocklist.Hosts...)
	cfg.BlockedPrefixes = append(cfg.BlockedPrefixes, f.Blocklist.Prefixes...)
	if f.Thresholds != nil {
		cfg.Thresholds = *f.Thresholds
	}
	if f.Workers != 0 {
		cfg.Workers = f.Workers
	}
	if f.MaxPages != 0 {
		cfg.MaxPages = f.MaxPages
	}
	if f.TopWords != 0 {
		cfg.TopWords = f.TopWords
	}
	if f.Timeout != 0 {
		cfg.Timeout = f.Timeout
	}
	if f.MaxDuration != 0 {
		cfg.MaxDuration = f.MaxDuration
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.Cookie != "" {
		cfg.Cookie = f.Cookie
	}
	if len(f.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(f.Headers))
		}
		for k, v := range f.Headers {
			cfg.Headers[k] = v
		}
	}
	if f.Proxy != "" {
		cfg.ProxyAddress = f.Proxy
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .uciscope in the current directory
// 3. Look for .uciscope in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
