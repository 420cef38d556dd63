package model

import (
	"bytes"
	"net/http"
	"strings"
)

// Page is a fetch result handed to the admission pipeline.
// It carries exactly what the fetch collaborator knows about a response;
// nothing here is parsed yet.
type Page struct {
	// RequestURL is the URL that was requested.
	RequestURL string `json:"request_url"`

	// URL is the final response URL after redirects.
	// Empty when the fetcher could not determine it.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// Headers contains all HTTP response headers.
	Headers map[string][]string `json:"headers,omitempty"`

	// ContentType is the raw Content-Type header value.
	ContentType string `json:"content_type"`

	// Raw contains the response body. It is nil when the body exceeded the
	// fetcher's size cap; Size still reports how many bytes were seen.
	Raw []byte `json:"-"`

	// Size is the number of body bytes observed, which may exceed len(Raw)
	// when the body was over the cap.
	Size int64 `json:"size"`

	// Oversized is set by the fetcher when the body did not fit under its cap.
	Oversized bool `json:"oversized,omitempty"`
}

// MaxPageSize is the default cap on a page body, in bytes.
const MaxPageSize = 5_000_000

// sniffLength is how many leading bytes are inspected for an HTML preamble.
const sniffLength = 512

// EffectiveURL returns the response URL, falling back to the requested URL.
func (p *Page) EffectiveURL() string {
	if p.URL != "" {
		return p.URL
	}
	return p.RequestURL
}

// GetHeader returns the first value of the specified header.
// Returns empty string if the header is not present.
func (p *Page) GetHeader(name string) string {
	if values, ok := p.Headers[http.CanonicalHeaderKey(name)]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// IsHTML reports whether the page looks like an HTML document, either by its
// Content-Type header or by sniffing the first bytes of the body.
func (p *Page) IsHTML() bool {
	if strings.Contains(strings.ToLower(p.ContentType), "html") {
		return true
	}

	head := p.Raw
	if len(head) > sniffLength {
		head = head[:sniffLength]
	}
	head = bytes.ToLower(bytes.TrimSpace(head))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

// Check applies the fetch sanity rules: a 200 status, a non-empty body no
// larger than maxSize, and HTML content. The returned error is one of the
// package's skip errors.
func (p *Page) Check(maxSize int64) error {
	if p.StatusCode != http.StatusOK {
		return ErrBadStatus
	}
	if p.Oversized || (maxSize > 0 && (p.Size > maxSize || int64(len(p.Raw)) > maxSize)) {
		return ErrOversizedContent
	}
	if len(p.Raw) == 0 {
		return ErrEmptyContent
	}
	if !p.IsHTML() {
		return ErrUnsupportedContentType
	}
	return nil
}

// Document is what the HTML extraction collaborator produces for a page.
type Document struct {
	// Text is the visible text of the page, with text nodes joined by spaces.
	Text string

	// Links are anchor hrefs resolved to absolute URLs, in document order.
	Links []string
}
