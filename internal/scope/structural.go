package scope

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Rules holds the numeric limits of the structural checks.
type Rules struct {
	// MaxURLLength is the longest URL accepted.
	MaxURLLength int
	// MaxQueryLength is the longest raw query accepted.
	MaxQueryLength int
	// MaxQueryParams is the largest number of "&"-separated parameters.
	MaxQueryParams int
	// MaxPathDepth is the largest number of slashes in the path.
	MaxPathDepth int
	// MaxSegmentLength is the longest single path segment.
	MaxSegmentLength int
	// MaxHostLabels is the largest number of dot-separated host labels.
	MaxHostLabels int
}

// Default structural limits.
const (
	DefaultMaxURLLength     = 2000
	DefaultMaxQueryLength   = 120
	DefaultMaxQueryParams   = 8
	DefaultMaxPathDepth     = 15
	DefaultMaxSegmentLength = 100
	DefaultMaxHostLabels    = 6
)

// DefaultRules returns the default structural limits.
func DefaultRules() Rules {
	return Rules{
		MaxURLLength:     DefaultMaxURLLength,
		MaxQueryLength:   DefaultMaxQueryLength,
		MaxQueryParams:   DefaultMaxQueryParams,
		MaxPathDepth:     DefaultMaxPathDepth,
		MaxSegmentLength: DefaultMaxSegmentLength,
		MaxHostLabels:    DefaultMaxHostLabels,
	}
}

// datePathPattern matches archive paths such as /2019/04/23 or /2019/04/23/post.
var datePathPattern = regexp.MustCompile(`/\d{4}/\d{2}/\d{2}(?:/|$)`)

// longNumberPattern matches a pagination value of three or more digits.
var longNumberPattern = regexp.MustCompile(`\d{3,}`)

// sessionKeys are query keys that carry per-visitor state.
var sessionKeys = map[string]struct{}{
	"sessionid":    {},
	"session_id":   {},
	"sid":          {},
	"token":        {},
	"jsessionid":   {},
	"phpsessid":    {},
	"sessid":       {},
	"auth_token":   {},
	"access_token": {},
}

// authSegments are path segments of login and logout pages. A segment
// matches with or without an extension ("login.php", "signin.aspx").
var authSegments = map[string]struct{}{
	"login":    {},
	"logout":   {},
	"signin":   {},
	"signout":  {},
	"wp-login": {},
}

// isAuthSegment reports whether seg names a login or logout page.
func isAuthSegment(seg string) bool {
	seg = strings.ToLower(seg)
	if i := strings.LastIndexByte(seg, '.'); i > 0 {
		seg = seg[:i]
	}
	_, ok := authSegments[seg]
	return ok
}

// checkStructure returns an error wrapping ErrStructuralTrap that names the
// first red flag found, or nil.
func checkStructure(u *url.URL, host string, rules Rules) error {
	if len(u.RawQuery) > rules.MaxQueryLength {
		return fmt.Errorf("%w: query longer than %d", ErrStructuralTrap, rules.MaxQueryLength)
	}
	if u.RawQuery != "" && strings.Count(u.RawQuery, "&")+1 > rules.MaxQueryParams {
		return fmt.Errorf("%w: more than %d query parameters", ErrStructuralTrap, rules.MaxQueryParams)
	}

	p := u.EscapedPath()
	if strings.Count(p, "/") > rules.MaxPathDepth {
		return fmt.Errorf("%w: path deeper than %d", ErrStructuralTrap, rules.MaxPathDepth)
	}
	if strings.Count(host, ".")+1 > rules.MaxHostLabels {
		return fmt.Errorf("%w: more than %d host labels", ErrStructuralTrap, rules.MaxHostLabels)
	}

	segments := pathSegments(u.Path)
	for _, seg := range segments {
		if len(seg) > rules.MaxSegmentLength {
			return fmt.Errorf("%w: path segment longer than %d", ErrStructuralTrap, rules.MaxSegmentLength)
		}
		if isAuthSegment(seg) {
			return fmt.Errorf("%w: login page", ErrStructuralTrap)
		}
	}
	if datePathPattern.MatchString(u.Path) {
		return fmt.Errorf("%w: dated archive path", ErrStructuralTrap)
	}
	if isCyclicPath(segments) {
		return fmt.Errorf("%w: repeating path segments", ErrStructuralTrap)
	}
	if strings.Contains(strings.ToLower(p), ";jsessionid=") {
		return fmt.Errorf("%w: session id in path", ErrStructuralTrap)
	}

	for _, part := range strings.Split(u.RawQuery, "&") {
		key, value, _ := strings.Cut(part, "=")
		key = strings.ToLower(key)
		if _, ok := sessionKeys[key]; ok {
			return fmt.Errorf("%w: session id in query", ErrStructuralTrap)
		}
		if (key == "page" || key == "p") && longNumberPattern.MatchString(value) {
			return fmt.Errorf("%w: deep pagination", ErrStructuralTrap)
		}
	}
	return nil
}

func pathSegments(p string) []string {
	raw := strings.Split(p, "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// isCyclicPath reports whether a path of four or more segments consists
// mostly of segments that occur more than once, as in /a/b/a/b/a.
func isCyclicPath(segments []string) bool {
	if len(segments) < 4 {
		return false
	}
	counts := make(map[string]int, len(segments))
	for _, s := range segments {
		counts[s]++
	}
	repeated := 0
	for _, s := range segments {
		if counts[s] > 1 {
			repeated++
		}
	}
	return repeated*2 > len(segments)
}
