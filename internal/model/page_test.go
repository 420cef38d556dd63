package model

import (
	"errors"
	"strings"
	"testing"
)

// TestPageGetHeader tests the GetHeader method.
func TestPageGetHeader(t *testing.T) {
	t.Parallel()

	t.Run("returns first header value", func(t *testing.T) {
		t.Parallel()

		page := &Page{
			Headers: map[string][]string{
				"Content-Type": {"text/html; charset=utf-8"},
				"Set-Cookie":   {"session=abc123", "theme=dark"},
			},
		}

		if got := page.GetHeader("Content-Type"); got != "text/html; charset=utf-8" {
			t.Errorf("got %q, expected 'text/html; charset=utf-8'", got)
		}
	})

	t.Run("header lookup is case-insensitive", func(t *testing.T) {
		t.Parallel()

		page := &Page{
			Headers: map[string][]string{"Content-Type": {"text/html"}},
		}

		if got := page.GetHeader("content-type"); got != "text/html" {
			t.Errorf("got %q, expected 'text/html'", got)
		}
	})

	t.Run("missing header returns empty string", func(t *testing.T) {
		t.Parallel()

		page := &Page{}
		if got := page.GetHeader("X-Missing"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestPageEffectiveURL tests that the response URL wins over the request URL.
func TestPageEffectiveURL(t *testing.T) {
	t.Parallel()

	t.Run("prefers response URL", func(t *testing.T) {
		t.Parallel()

		page := &Page{RequestURL: "http://cs.uci.edu/a", URL: "https://cs.uci.edu/a/"}
		if got := page.EffectiveURL(); got != "https://cs.uci.edu/a/" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("falls back to request URL", func(t *testing.T) {
		t.Parallel()

		page := &Page{RequestURL: "http://cs.uci.edu/a"}
		if got := page.EffectiveURL(); got != "http://cs.uci.edu/a" {
			t.Errorf("got %q", got)
		}
	})
}

// TestPageIsHTML tests content type detection and byte sniffing.
func TestPageIsHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		raw         string
		want        bool
	}{
		{name: "text/html", contentType: "text/html", want: true},
		{name: "text/html with charset", contentType: "text/html; charset=utf-8", want: true},
		{name: "xhtml", contentType: "application/xhtml+xml", want: true},
		{name: "doctype sniffed without header", raw: "  <!DOCTYPE html><html></html>", want: true},
		{name: "html tag sniffed without header", raw: "<html><body>x</body></html>", want: true},
		{name: "json is not html", contentType: "application/json", raw: `{"a":1}`, want: false},
		{name: "pdf is not html", contentType: "application/pdf", raw: "%PDF-1.4", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page := &Page{ContentType: tt.contentType, Raw: []byte(tt.raw)}
			if got := page.IsHTML(); got != tt.want {
				t.Errorf("IsHTML() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPageCheck tests the fetch sanity rules.
func TestPageCheck(t *testing.T) {
	t.Parallel()

	html := []byte("<html><body>hello</body></html>")

	tests := []struct {
		name    string
		page    *Page
		maxSize int64
		wantErr error
	}{
		{
			name:    "valid page passes",
			page:    &Page{StatusCode: 200, ContentType: "text/html", Raw: html, Size: int64(len(html))},
			maxSize: MaxPageSize,
		},
		{
			name:    "non-200 status is rejected",
			page:    &Page{StatusCode: 404, ContentType: "text/html", Raw: html},
			maxSize: MaxPageSize,
			wantErr: ErrBadStatus,
		},
		{
			name:    "oversized flag is rejected",
			page:    &Page{StatusCode: 200, ContentType: "text/html", Oversized: true, Size: MaxPageSize + 1},
			maxSize: MaxPageSize,
			wantErr: ErrOversizedContent,
		},
		{
			name:    "body over cap is rejected",
			page:    &Page{StatusCode: 200, ContentType: "text/html", Raw: []byte(strings.Repeat("a", 11))},
			maxSize: 10,
			wantErr: ErrOversizedContent,
		},
		{
			name:    "empty body is rejected",
			page:    &Page{StatusCode: 200, ContentType: "text/html"},
			maxSize: MaxPageSize,
			wantErr: ErrEmptyContent,
		},
		{
			name:    "non-html is rejected",
			page:    &Page{StatusCode: 200, ContentType: "image/png", Raw: []byte{0x89, 'P', 'N', 'G'}},
			maxSize: MaxPageSize,
			wantErr: ErrUnsupportedContentType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.page.Check(tt.maxSize)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if !IsSkip(err) {
				t.Errorf("expected %v to be a skip error", err)
			}
		})
	}
}

// TestOutcome tests outcome naming and round-tripping through its string form.
func TestOutcome(t *testing.T) {
	t.Parallel()

	for _, o := range []Outcome{OutcomeNew, OutcomeExactDuplicate, OutcomeNearDuplicate} {
		if got := ParseOutcome(o.String()); got != o {
			t.Errorf("ParseOutcome(%q) = %v, want %v", o.String(), got, o)
		}
	}

	if OutcomeNew.IsDuplicate() {
		t.Error("new outcome should not be a duplicate")
	}
	if !OutcomeNearDuplicate.IsDuplicate() || !OutcomeExactDuplicate.IsDuplicate() {
		t.Error("duplicate outcomes should report IsDuplicate")
	}
}

// TestPageFingerprintHex tests the hex encodings used for storage.
func TestPageFingerprintHex(t *testing.T) {
	t.Parallel()

	fp := PageFingerprint{SimHash: 0xab}
	if got := fp.SimHex(); got != "00000000000000ab" {
		t.Errorf("SimHex() = %q", got)
	}
	if got := fp.ExactHex(); len(got) != 64 {
		t.Errorf("ExactHex() length = %d, want 64", len(got))
	}
}
