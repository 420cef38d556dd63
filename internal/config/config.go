package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/net/publicsuffix"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "uciscope"

	// DefaultTimeout is the per-request timeout. University web servers
	// answer quickly; a request that takes longer is usually a hung CGI.
	DefaultTimeout = 30 * time.Second

	// DefaultWorkers is the number of concurrent fetches.
	DefaultWorkers = 8

	// DefaultMaxPages is the crawl page limit. Zero means no limit.
	DefaultMaxPages = 0

	// DefaultTopWords is the number of words in the frequency report.
	DefaultTopWords = 50

	// DefaultUserAgent identifies uciscope in HTTP requests.
	DefaultUserAgent = "uciscope/1.0 (+https://github.com/nao1215/uciscope)"
)

// DefaultSeeds are the four department roots the crawl starts from.
func DefaultSeeds() []string {
	return []string{
		"https://www.ics.uci.edu",
		"https://www.cs.uci.edu",
		"https://www.informatics.uci.edu",
		"https://www.stat.uci.edu",
	}
}

// DefaultAllowedDomains are the host suffixes the crawl may fetch from.
func DefaultAllowedDomains() []string {
	return []string{
		"ics.uci.edu",
		"cs.uci.edu",
		"informatics.uci.edu",
		"stat.uci.edu",
	}
}

// Config holds all configuration options for uciscope.
// This struct is populated from defaults, the config file and CLI flags, in
// that order, and passed through the application rather than kept global.
type Config struct {
	// Seeds are the URLs the crawl starts from.
	Seeds []string

	// AllowedDomains are the host suffixes in scope.
	AllowedDomains []string

	// RootDomain restricts the per-subdomain page counts. When empty it is
	// derived from the first allowed domain.
	RootDomain string

	// BlockedHosts and BlockedPrefixes extend the built-in trap blocklist.
	BlockedHosts    []string
	BlockedPrefixes []string

	// Thresholds holds every tuned admission constant.
	Thresholds Thresholds

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxDuration bounds the whole crawl. Zero means no bound.
	MaxDuration time.Duration

	// Workers is the number of concurrent fetches.
	Workers int

	// MaxPages stops the crawl after this many fetches. Zero means no limit.
	MaxPages int

	// TopWords is the number of words in the frequency report.
	TopWords int

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Cookie and Headers are sent with every request.
	Cookie  string
	Headers map[string]string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches the current directory, the home directory
	// and the XDG config directory.
	ConfigFilePath string

	// JSONReport and MarkdownReport select the output format.
	// They are mutually exclusive; neither means the text report.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory of the SQLite database.
	// Defaults to the XDG data directory (~/.local/share/uciscope on Linux).
	DBDir string

	// SaveToDB enables persisting page records and the crawl report.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because most defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Seeds:          DefaultSeeds(),
		AllowedDomains: DefaultAllowedDomains(),
		Thresholds:     DefaultThresholds(),
		Timeout:        DefaultTimeout,
		Workers:        DefaultWorkers,
		MaxPages:       DefaultMaxPages,
		TopWords:       DefaultTopWords,
		UserAgent:      DefaultUserAgent,
		DBDir:          XDGDataDir(),
		SaveToDB:       true,
	}
}

// EffectiveRootDomain returns RootDomain, or the registrable domain of the
// first allowed domain (ics.uci.edu gives uci.edu).
func (c *Config) EffectiveRootDomain() string {
	if c.RootDomain != "" {
		return strings.ToLower(c.RootDomain)
	}
	if len(c.AllowedDomains) == 0 {
		return ""
	}
	return RegistrableDomain(c.AllowedDomains[0])
}

// RegistrableDomain returns the public suffix plus one label of host,
// or host itself when it has no registrable part.
func RegistrableDomain(host string) string {
	host = strings.Trim(strings.ToLower(host), ".")
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// XDGDataDir returns the XDG data directory for uciscope.
// On Linux: ~/.local/share/uciscope
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for uciscope.
// On Linux: ~/.config/uciscope
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first rule that is violated.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}
	if len(c.AllowedDomains) == 0 {
		return ErrNoAllowedDomains
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return c.Thresholds.Validate()
}
