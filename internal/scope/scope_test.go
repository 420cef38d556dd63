package scope

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

var testSuffixes = []string{"ics.uci.edu", "cs.uci.edu", "informatics.uci.edu", "stat.uci.edu"}

// TestValidatorIsInScope tests accepted and rejected URLs end to end.
func TestValidatorIsInScope(t *testing.T) {
	t.Parallel()

	v := NewValidator(testSuffixes)

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "root of allowed domain", url: "https://ics.uci.edu/", want: true},
		{name: "subdomain of allowed domain", url: "https://faculty.cs.uci.edu/x", want: true},
		{name: "repeated www prefix", url: "https://www.www.ics.uci.edu/a", want: true},
		{name: "stat domain", url: "https://stat.uci.edu/people", want: true},
		{name: "html page whose name contains pdf", url: "https://cs.uci.edu/docs/pdf-guide.html", want: true},
		{name: "directory named like a file type", url: "https://cs.uci.edu/files.pdf/index.html", want: true},
		{name: "suffix embedded in another host", url: "https://ics.uci.edu.evil.com/", want: false},
		{name: "host that only shares trailing characters", url: "https://physics.uci.edu/", want: false},
		{name: "unrelated domain", url: "https://example.com/", want: false},
		{name: "pdf document", url: "https://cs.uci.edu/papers/report.pdf", want: false},
		{name: "upper-case extension", url: "https://cs.uci.edu/img/photo.JPG", want: false},
		{name: "ftp scheme", url: "ftp://ics.uci.edu/file", want: false},
		{name: "unparseable", url: "https://ics.uci.edu/%zz", want: false},
		{name: "empty string", url: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := v.IsInScope(tt.url); got != tt.want {
				t.Errorf("IsInScope(%q) = %v, want %v (reason: %v)", tt.url, got, tt.want, v.Check(tt.url))
			}
		})
	}
}

// TestValidatorCheckReasons tests that each rule reports its own reason.
func TestValidatorCheckReasons(t *testing.T) {
	t.Parallel()

	v := NewValidator(testSuffixes)

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{name: "too long", url: "https://ics.uci.edu/" + strings.Repeat("a", 2000), wantErr: ErrURLTooLong},
		{name: "mailto", url: "mailto:someone@ics.uci.edu", wantErr: ErrUnsupportedScheme},
		{name: "missing host", url: "https:///a", wantErr: ErrInvalidHost},
		{name: "out of domain", url: "https://uci.edu/", wantErr: ErrOutOfDomain},
		{name: "archive", url: "https://ics.uci.edu/dist/code.tar.gz", wantErr: ErrDisallowedExtension},
		{name: "long query", url: "https://ics.uci.edu/a?q=" + strings.Repeat("x", 130), wantErr: ErrStructuralTrap},
		{name: "many query params", url: "https://ics.uci.edu/a?a=1&b=2&c=3&d=4&e=5&f=6&g=7&h=8&i=9", wantErr: ErrStructuralTrap},
		{name: "deep path", url: "https://ics.uci.edu" + strings.Repeat("/x1", 16), wantErr: ErrStructuralTrap},
		{name: "long segment", url: "https://ics.uci.edu/" + strings.Repeat("s", 101), wantErr: ErrStructuralTrap},
		{name: "many host labels", url: "https://a.b.c.d.ics.uci.edu/", wantErr: ErrStructuralTrap},
		{name: "dated archive", url: "https://ics.uci.edu/news/2019/04/23/post", wantErr: ErrStructuralTrap},
		{name: "deep pagination", url: "https://ics.uci.edu/list?page=120", wantErr: ErrStructuralTrap},
		{name: "deep pagination short key", url: "https://ics.uci.edu/list?p=5000", wantErr: ErrStructuralTrap},
		{name: "cyclic path", url: "https://ics.uci.edu/a/b/a/b/a", wantErr: ErrStructuralTrap},
		{name: "session token", url: "https://ics.uci.edu/a?token=abc", wantErr: ErrStructuralTrap},
		{name: "jsessionid in path", url: "https://ics.uci.edu/a;jsessionid=ABC", wantErr: ErrStructuralTrap},
		{name: "login page", url: "https://ics.uci.edu/portal/login", wantErr: ErrStructuralTrap},
		{name: "login script", url: "https://ics.uci.edu/login.php", wantErr: ErrStructuralTrap},
		{name: "logout script", url: "https://ics.uci.edu/logout.php", wantErr: ErrStructuralTrap},
		{name: "login page with extension in subdirectory", url: "https://ics.uci.edu/user/login.aspx", wantErr: ErrStructuralTrap},
		{name: "wordpress login", url: "https://ics.uci.edu/wp-login.php", wantErr: ErrStructuralTrap},
		{name: "blocked host", url: "https://swiki.ics.uci.edu/doku.php", wantErr: ErrBlocklisted},
		{name: "blocked path prefix", url: "https://ics.uci.edu/~eppstein/pix/album/1", wantErr: ErrBlocklisted},
		{name: "ical query key", url: "https://ics.uci.edu/calendar?ical=1", wantErr: ErrBlocklisted},
		{name: "tribe_event query key", url: "https://ics.uci.edu/calendar?tribe_event=x", wantErr: ErrBlocklisted},
		{name: "wp-json segment", url: "https://ics.uci.edu/wp-json/wp/v2/posts", wantErr: ErrBlocklisted},
		{name: "wiki diff action", url: "https://ics.uci.edu/doku.php?do=diff", wantErr: ErrBlocklisted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := v.Check(tt.url); !errors.Is(err, tt.wantErr) {
				t.Errorf("Check(%q) = %v, want %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

// TestValidatorNoFalsePositives tests URLs that resemble trap markers but are fine.
func TestValidatorNoFalsePositives(t *testing.T) {
	t.Parallel()

	v := NewValidator(testSuffixes)

	urls := []string{
		"https://ics.uci.edu/physical-computing",
		"https://ics.uci.edu/a?page=12",
		"https://ics.uci.edu/a/b/c/a",
		"https://ics.uci.edu/eventsarchive",
		"https://ics.uci.edu/research/2019",
		"https://ics.uci.edu/~eppstein/pubs",
		"https://ics.uci.edu/a?sharepoint=1",
		"https://ics.uci.edu/login-help",
		"https://ics.uci.edu/blogin.html",
	}

	for _, u := range urls {
		t.Run(u, func(t *testing.T) {
			t.Parallel()

			if err := v.Check(u); err != nil {
				t.Errorf("Check(%q) = %v, want nil", u, err)
			}
		})
	}
}

// TestValidatorOptions tests custom rules and blocklists.
func TestValidatorOptions(t *testing.T) {
	t.Parallel()

	t.Run("custom rules raise the query limit", func(t *testing.T) {
		t.Parallel()

		rules := DefaultRules()
		rules.MaxQueryLength = 500
		v := NewValidator(testSuffixes, WithRules(rules))

		u := "https://ics.uci.edu/a?q=" + strings.Repeat("x", 200)
		if !v.IsInScope(u) {
			t.Errorf("expected %q to be in scope, got %v", u, v.Check(u))
		}
	})

	t.Run("nil blocklist disables blocking", func(t *testing.T) {
		t.Parallel()

		v := NewValidator(testSuffixes, WithBlocklist(nil))
		if !v.IsInScope("https://swiki.ics.uci.edu/doku.php") {
			t.Error("expected blocklisted host to be allowed without a blocklist")
		}
	})

	t.Run("extra blocked host and prefix", func(t *testing.T) {
		t.Parallel()

		b := DefaultBlocklist()
		b.AddHost("www.www.archive.ics.uci.edu")
		b.AddPrefix("https://cs.uci.edu/gallery/")
		v := NewValidator(testSuffixes, WithBlocklist(b))

		if v.IsInScope("https://archive.ics.uci.edu/ml") {
			t.Error("expected extra host to be blocked")
		}
		if v.IsInScope("https://cs.uci.edu/gallery/2") {
			t.Error("expected extra prefix to be blocked")
		}
		if !v.IsInScope("https://cs.uci.edu/gallery-info") {
			t.Error("expected prefix match to respect segment boundaries")
		}
	})

	t.Run("suffixes are normalized", func(t *testing.T) {
		t.Parallel()

		v := NewValidator([]string{" .ICS.uci.edu. ", ""})
		if got := v.Suffixes(); len(got) != 1 || got[0] != "ics.uci.edu" {
			t.Errorf("Suffixes() = %v", got)
		}
		if !v.Allows("WWW.ics.uci.edu") {
			t.Error("expected www host to be allowed")
		}
	})
}

// TestIsDisallowedExtension tests the extension matcher in isolation.
func TestIsDisallowedExtension(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"/report.pdf":         true,
		"/a/b/slides.PPTX":    true,
		"/pdf-guide.html":     false,
		"/files.pdf/":         true,
		"/":                   false,
		"/no-extension":       false,
		"/archive.tar.gz":     true,
		"/index.php":          false,
		"/pictures.zip/x.htm": false,
	}

	for p, want := range tests {
		if got := IsDisallowedExtension(p); got != want {
			t.Errorf("IsDisallowedExtension(%q) = %v, want %v", p, got, want)
		}
	}
}

// TestIsCyclicPath tests the repeated-segment heuristic.
func TestIsCyclicPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{path: "/a/b/a/b", want: true},
		{path: "/x/x/x/x", want: true},
		{path: "/a/b/c/a", want: false},
		{path: "/a/a/a", want: false},
		{path: "/a/b/c/d/e", want: false},
	}

	for _, tt := range tests {
		if got := isCyclicPath(pathSegments(tt.path)); got != tt.want {
			t.Errorf("isCyclicPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

// TestBlocklistMatch tests blocklist matching on parsed URLs.
func TestBlocklistMatch(t *testing.T) {
	t.Parallel()

	b := DefaultBlocklist()

	tests := []struct {
		raw  string
		want bool
	}{
		{raw: "https://gitlab.ics.uci.edu/group/project/commit/abc", want: true},
		{raw: "https://wics.ics.uci.edu/events/2024-01-01", want: true},
		{raw: "https://wics.ics.uci.edu/about", want: false},
		{raw: "https://ics.uci.edu/calendar?outlook-ical=1", want: true},
		{raw: "https://ics.uci.edu/post?share=twitter", want: true},
		{raw: "https://ics.uci.edu/feed/ical/", want: true},
		{raw: "https://ics.uci.edu/physical", want: false},
	}

	for _, tt := range tests {
		u, err := url.Parse(tt.raw)
		if err != nil {
			t.Fatal(err)
		}
		host := strings.TrimPrefix(u.Hostname(), "www.")
		if got := b.Match(u, host); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
