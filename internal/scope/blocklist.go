package scope

import (
	"net/url"
	"strings"

	"github.com/nao1215/uciscope/internal/urlnorm"
)

// Blocklist holds hosts, paths and query markers known to generate
// unbounded or low-value frontiers on the crawl's target domains.
type Blocklist struct {
	hosts        map[string]struct{}
	prefixes     []string
	queryKeys    map[string]struct{}
	queryPairs   map[string]struct{}
	pathSegments map[string]struct{}
}

// NewBlocklist creates an empty blocklist.
func NewBlocklist() *Blocklist {
	return &Blocklist{
		hosts:        make(map[string]struct{}),
		queryKeys:    make(map[string]struct{}),
		queryPairs:   make(map[string]struct{}),
		pathSegments: make(map[string]struct{}),
	}
}

// DefaultBlocklist returns the blocklist for the uci.edu academic subdomains:
// wiki trees, code hosting, the image galleries and the event calendars.
func DefaultBlocklist() *Blocklist {
	b := NewBlocklist()
	for _, h := range []string{
		"swiki.ics.uci.edu",
		"wiki.ics.uci.edu",
		"gitlab.ics.uci.edu",
		"grape.ics.uci.edu",
		"fano.ics.uci.edu",
		"intranet.ics.uci.edu",
	} {
		b.AddHost(h)
	}
	for _, p := range []string{
		"ics.uci.edu/~eppstein/pix",
		"ics.uci.edu/events",
		"wics.ics.uci.edu/events",
		"isg.ics.uci.edu/events",
		"ngs.ics.uci.edu/tag",
		"cs.uci.edu/events",
	} {
		b.AddPrefix(p)
	}
	for _, k := range []string{
		"ical",
		"outlook-ical",
		"tribe-bar-date",
		"tribe_event",
		"tribe_events",
		"eventdisplay",
		"share",
		"replytocom",
	} {
		b.queryKeys[k] = struct{}{}
	}
	for _, p := range []string{
		"do=media",
		"do=diff",
		"do=edit",
		"do=revisions",
		"action=diff",
		"action=edit",
	} {
		b.queryPairs[p] = struct{}{}
	}
	for _, s := range []string{"wp-json", "ical", "tribe_events", "xmlrpc.php"} {
		b.pathSegments[s] = struct{}{}
	}
	return b
}

// AddHost blocks every URL on the exact host.
func (b *Blocklist) AddHost(host string) {
	b.hosts[normalizeEntry(host)] = struct{}{}
}

// AddPrefix blocks URLs whose "host/path" starts with prefix at a segment
// boundary. "ics.uci.edu/events" blocks "/events" and "/events/2024" but not
// "/eventsarchive".
func (b *Blocklist) AddPrefix(prefix string) {
	b.prefixes = append(b.prefixes, strings.TrimRight(normalizeEntry(prefix), "/"))
}

func normalizeEntry(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	return urlnorm.TrimWWW(s)
}

// Match reports whether u, whose normalized host is host, is blocklisted.
func (b *Blocklist) Match(u *url.URL, host string) bool {
	if _, ok := b.hosts[host]; ok {
		return true
	}

	target := host + strings.ToLower(u.Path)
	for _, p := range b.prefixes {
		if target == p || strings.HasPrefix(target, p+"/") {
			return true
		}
	}

	for _, seg := range strings.Split(strings.ToLower(u.Path), "/") {
		if _, ok := b.pathSegments[seg]; ok {
			return true
		}
	}

	if u.RawQuery == "" {
		return false
	}
	for _, part := range strings.Split(strings.ToLower(u.RawQuery), "&") {
		key, _, _ := strings.Cut(part, "=")
		if _, ok := b.queryKeys[key]; ok {
			return true
		}
		if _, ok := b.queryPairs[part]; ok {
			return true
		}
	}
	return false
}
