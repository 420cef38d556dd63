package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nao1215/uciscope/internal/model"
)

const (
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the crawler to the servers it visits.
	DefaultUserAgent = "uciscope/1.0 (+https://github.com/nao1215/uciscope)"

	// maxRedirects bounds redirect chains.
	maxRedirects = 10

	// checkProxyTimeout bounds the SOCKS5 handshake in CheckProxy.
	checkProxyTimeout = 2 * time.Second
)

// Client fetches pages over HTTP, optionally through a SOCKS5 proxy.
type Client struct {
	proxyAddress string
	dialer       proxy.Dialer
	timeout      time.Duration
	userAgent    string
	maxBodySize  int64
	cookie       string
	headers      map[string]string
	httpClient   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithProxy routes all connections through the SOCKS5 proxy at address
// ("host:port").
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the body cap in bytes.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithCookie sends the raw cookie string (e.g. "session=abc") on every request.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithHeaders sends the given headers on every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// NewClient creates a Client.
//
// When a proxy is configured its address format is validated, but the proxy
// is not contacted. Call CheckProxy to verify it is reachable.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: model.MaxPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.proxyAddress != "" {
		if !isValidProxyAddress(c.proxyAddress) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, c.proxyAddress)
		}
		dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		c.dialer = dialer
	}

	c.httpClient = c.newHTTPClient()
	return c, nil
}

// isValidProxyAddress checks for a non-empty host and a port in 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// newHTTPClient builds the underlying http.Client.
// Redirects are capped; the last response of a longer chain is returned as is
// and then rejected by the status check.
func (c *Client) newHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert
	transport.MaxIdleConnsPerHost = 4
	transport.IdleConnTimeout = 30 * time.Second
	if c.dialer != nil {
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := c.dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return c.dialer.Dial(network, addr)
		}
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: &headerInjectingTransport{
			base:      transport,
			userAgent: c.userAgent,
			cookie:    c.cookie,
			headers:   c.headers,
		},
		Timeout: c.timeout,
		Jar:     jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// Fetch retrieves rawURL.
//
// Transport failures are returned as errors. Any HTTP response, whatever its
// status, becomes a Page. A body larger than the cap is not kept: Raw is nil,
// Oversized is set and Size is one byte past the cap.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", rawURL, err)
	}

	page := &model.Page{
		RequestURL:  rawURL,
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
		Raw:         body,
		Size:        int64(len(body)),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		page.URL = resp.Request.URL.String()
	}
	if page.Size > c.maxBodySize {
		page.Raw = nil
		page.Oversized = true
	}
	return page, nil
}

// MaxBodySize returns the body cap in bytes.
func (c *Client) MaxBodySize() int64 {
	return c.maxBodySize
}

// ProxyAddress returns the configured proxy address, or "" for direct connections.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// CheckProxy verifies that the configured proxy speaks SOCKS5 without
// authentication. It returns ProxyStatusOK when no proxy is configured.
func (c *Client) CheckProxy(ctx context.Context) ProxyStatus {
	if c.proxyAddress == "" {
		return ProxyStatusOK
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// version 5, one method, "no authentication"
	if _, err := conn.Write([]byte{0x05, 0x01, 0x00}); err != nil {
		return ProxyStatusCannotConnect
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}
	if resp[0] != 0x05 || resp[1] != 0x00 {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}

// headerInjectingTransport wraps an http.RoundTripper to add the crawler's
// identity, cookie and custom headers to every request, redirects included.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
	cookie    string
	headers   map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
