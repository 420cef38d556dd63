package urlnorm

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/nao1215/uciscope/internal/model"
)

// defaultPorts maps schemes to the port that is implied when none is written.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// trackingParams lists query keys that never change page content.
// Keys are compared in lower case. Any key starting with "utm_" is also dropped.
var trackingParams = map[string]struct{}{
	"gclid":        {},
	"gclsrc":       {},
	"dclid":        {},
	"fbclid":       {},
	"msclkid":      {},
	"yclid":        {},
	"igshid":       {},
	"mc_cid":       {},
	"mc_eid":       {},
	"_ga":          {},
	"ref":          {},
	"sessionid":    {},
	"session_id":   {},
	"sid":          {},
	"sessid":       {},
	"phpsessid":    {},
	"jsessionid":   {},
	"aspsessionid": {},
	"cfid":         {},
	"cftoken":      {},
}

// IsTrackingParam reports whether the query key is stripped during
// canonicalization.
func IsTrackingParam(key string) bool {
	key = strings.ToLower(key)
	if strings.HasPrefix(key, "utm_") {
		return true
	}
	_, ok := trackingParams[key]
	return ok
}

// Canonicalize returns the canonical form of rawURL.
//
// A URL without a scheme is assumed to be https. Only http and https URLs
// are accepted; anything else, or input that does not parse, yields an
// error wrapping model.ErrMalformedInput.
//
// Canonicalize is idempotent: Canonicalize(Canonicalize(u)) == Canonicalize(u).
func Canonicalize(rawURL string) (string, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return "", ErrEmptyURL
	}

	switch {
	case strings.HasPrefix(raw, "//"):
		raw = "https:" + raw
	case !strings.Contains(raw, "://"):
		if hasOpaqueScheme(raw) {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, raw)
		}
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if _, ok := defaultPorts[scheme]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	host := normalizeHost(u.Hostname())
	if host == "" {
		return "", ErrMissingHost
	}
	if strings.Contains(host, ":") {
		// IPv6 literal
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" && port != defaultPorts[scheme] {
		host = net.JoinHostPort(strings.Trim(host, "[]"), port)
	}

	var b strings.Builder
	b.Grow(len(raw))
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	b.WriteString(normalizePath(u.EscapedPath()))
	if q := normalizeQuery(u.RawQuery); q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}
	return b.String(), nil
}

// Key returns the scheme-insensitive identity of a canonical URL.
// "http://cs.uci.edu/b" and "https://cs.uci.edu/b" share the key "cs.uci.edu/b".
func Key(canonicalURL string) string {
	if i := strings.Index(canonicalURL, "://"); i >= 0 {
		return canonicalURL[i+3:]
	}
	return canonicalURL
}

// Resolve resolves href against base the way a browser resolves an anchor.
// The result is absolute but not canonical.
func Resolve(base, href string) (string, error) {
	baseURL, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("%w: base: %v", model.ErrMalformedInput, err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("%w: href: %v", model.ErrMalformedInput, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// Hostname returns the normalized host of rawURL (lower case, no trailing
// dot, no "www." prefix, no port), or an empty string if it cannot be parsed.
func Hostname(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return normalizeHost(u.Hostname())
}

// hasOpaqueScheme reports whether raw starts with a scheme that is not
// followed by "//", such as "mailto:" or "javascript:". "host:8080/x" is not
// treated as a scheme because a port follows the colon.
func hasOpaqueScheme(raw string) bool {
	name, rest, ok := strings.Cut(raw, ":")
	if !ok || name == "" {
		return false
	}
	for i, r := range name {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if i == 0 && !isAlpha {
			return false
		}
		if !isAlpha && !(r >= '0' && r <= '9') && r != '+' && r != '-' && r != '.' {
			return false
		}
	}
	return rest == "" || rest[0] < '0' || rest[0] > '9'
}

func normalizeHost(host string) string {
	return TrimWWW(strings.TrimRight(strings.ToLower(host), "."))
}

// TrimWWW removes every leading "www." label, so "www.www.ics.uci.edu"
// becomes "ics.uci.edu". host must already be lower case.
func TrimWWW(host string) string {
	for strings.HasPrefix(host, "www.") {
		host = host[len("www."):]
	}
	return host
}

// normalizePath collapses repeated slashes, resolves dot segments and drops
// the trailing slash. The path stays in its escaped form.
func normalizePath(escaped string) string {
	if escaped == "" || escaped == "/" {
		return "/"
	}
	if !strings.HasPrefix(escaped, "/") {
		escaped = "/" + escaped
	}
	// path.Clean also collapses "//" into "/".
	return path.Clean(escaped)
}

type queryPair struct {
	key      string
	value    string
	hasValue bool
}

// normalizeQuery drops tracking, empty and repeated pairs, then sorts the
// rest by key and value. Pairs are split by hand so that keys without "=" survive.
func normalizeQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	pairs := make([]queryPair, 0, strings.Count(rawQuery, "&")+1)
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		rawKey, rawValue, hasValue := strings.Cut(part, "=")
		key := unescape(rawKey)
		if key == "" || IsTrackingParam(key) {
			continue
		}
		pairs = append(pairs, queryPair{key: key, value: unescape(rawValue), hasValue: hasValue})
	}
	if len(pairs) == 0 {
		return ""
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	encoded := make([]string, 0, len(pairs))
	for i, p := range pairs {
		// sorted, so identical pairs are adjacent
		if i > 0 && p == pairs[i-1] {
			continue
		}
		if !p.hasValue {
			encoded = append(encoded, url.QueryEscape(p.key))
			continue
		}
		encoded = append(encoded, url.QueryEscape(p.key)+"="+url.QueryEscape(p.value))
	}
	return strings.Join(encoded, "&")
}

func unescape(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return s
}
