package scope

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"

	"github.com/nao1215/uciscope/internal/model"
	"github.com/nao1215/uciscope/internal/urlnorm"
)

// Validator decides whether canonical URLs are eligible for fetching.
// It holds no mutable state after construction and is safe for concurrent use.
type Validator struct {
	suffixes  []string
	rules     Rules
	blocklist *Blocklist
}

// Option configures a Validator.
type Option func(*Validator)

// WithRules sets the structural limits.
func WithRules(rules Rules) Option {
	return func(v *Validator) {
		v.rules = rules
	}
}

// WithBlocklist replaces the default blocklist. A nil blocklist disables
// blocklist matching.
func WithBlocklist(b *Blocklist) Option {
	return func(v *Validator) {
		v.blocklist = b
	}
}

// NewValidator creates a Validator accepting hosts equal to, or ending in
// "." plus, one of the allowed domain suffixes.
func NewValidator(allowedSuffixes []string, opts ...Option) *Validator {
	v := &Validator{
		rules:     DefaultRules(),
		blocklist: DefaultBlocklist(),
	}
	for _, s := range allowedSuffixes {
		s = strings.Trim(strings.ToLower(strings.TrimSpace(s)), ".")
		if s != "" {
			v.suffixes = append(v.suffixes, s)
		}
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// IsInScope reports whether the canonical URL may be fetched.
func (v *Validator) IsInScope(canonicalURL string) bool {
	return v.Check(canonicalURL) == nil
}

// Check returns nil if the canonical URL may be fetched, or an error naming
// the first rule it fails.
func (v *Validator) Check(canonicalURL string) error {
	if len(canonicalURL) > v.rules.MaxURLLength {
		return ErrURLTooLong
	}

	u, err := url.Parse(canonicalURL)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	host, err := v.asciiHost(u.Hostname())
	if err != nil {
		return err
	}
	if !v.allowedHost(host) {
		return fmt.Errorf("%w: %s", ErrOutOfDomain, host)
	}

	if IsDisallowedExtension(u.Path) {
		return ErrDisallowedExtension
	}

	if err := checkStructure(u, host, v.rules); err != nil {
		return err
	}

	if v.blocklist != nil && v.blocklist.Match(u, host) {
		return ErrBlocklisted
	}
	return nil
}

// Allows reports whether host is under one of the allowed suffixes.
func (v *Validator) Allows(host string) bool {
	h, err := v.asciiHost(host)
	if err != nil {
		return false
	}
	return v.allowedHost(h)
}

// Suffixes returns a copy of the allowed domain suffixes.
func (v *Validator) Suffixes() []string {
	return append([]string(nil), v.suffixes...)
}

func (v *Validator) asciiHost(host string) (string, error) {
	host = urlnorm.TrimWWW(strings.TrimRight(strings.ToLower(host), "."))
	if host == "" {
		return "", ErrInvalidHost
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidHost, err)
	}
	return ascii, nil
}

// allowedHost matches whole labels only, so "ics.uci.edu.evil.com" and
// "notics.uci.edu" are both rejected for the suffix "ics.uci.edu".
func (v *Validator) allowedHost(host string) bool {
	for _, s := range v.suffixes {
		if host == s || strings.HasSuffix(host, "."+s) {
			return true
		}
	}
	return false
}
