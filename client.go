package dailyquote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/1set/dailyquote/internal/ctxlog"
)

const (
	// DefaultQuoteURL serves one random quote per GET.
	DefaultQuoteURL = "https://api.quotable.io/random"
	// DefaultRandomColorURL serves one random colour per GET as {"hex":"#RRGGBB"}.
	DefaultRandomColorURL = "https://colors.zoodinkers.com/api"
	// DefaultSchemeURL is The Color API scheme endpoint. hex, mode and count are appended as query parameters.
	DefaultSchemeURL = "https://www.thecolorapi.com/scheme"

	// DefaultSchemeMode keeps the palette within one hue.
	DefaultSchemeMode = "monochrome"
	// DefaultSchemeCount is the number of colours a widget needs: text, gradient start, gradient end.
	DefaultSchemeCount = 3

	userAgentProduct    = "dailyquote-go"
	userAgentVersion    = "1.0"
	defaultHTTPTimeout  = 30 * time.Second
	maxResponseBodySize = 1 << 20 // 1 MiB, the endpoints return tiny documents
)

// Client fetches quotes and colour schemes from the public endpoints.
type Client struct {
	quoteURL    string
	colorURL    string
	schemeURL   string
	schemeMode  string
	schemeCount int

	http      *http.Client
	limiter   RateLimiter
	userAgent string
	log       *slog.Logger
}

// ClientOption mutates the client during construction.
type ClientOption func(*Client)

// NewClient builds a client pointing at the default endpoints.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		quoteURL:    DefaultQuoteURL,
		colorURL:    DefaultRandomColorURL,
		schemeURL:   DefaultSchemeURL,
		schemeMode:  DefaultSchemeMode,
		schemeCount: DefaultSchemeCount,
		http:        &http.Client{Timeout: defaultHTTPTimeout},
		limiter:     NewHostLimiter(250 * time.Millisecond),
		userAgent:   buildDefaultUserAgent(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if c.log == nil {
		c.log = ctxlog.Discard()
	}
	c.quoteURL = sanitizeURL(c.quoteURL, DefaultQuoteURL)
	c.colorURL = sanitizeURL(c.colorURL, DefaultRandomColorURL)
	c.schemeURL = sanitizeURL(c.schemeURL, DefaultSchemeURL)
	if strings.TrimSpace(c.schemeMode) == "" {
		c.schemeMode = DefaultSchemeMode
	}
	if c.schemeCount < DefaultSchemeCount {
		c.schemeCount = DefaultSchemeCount
	}
	return c
}

// WithQuoteURL overrides the random quote endpoint.
func WithQuoteURL(u string) ClientOption {
	return func(c *Client) { c.quoteURL = u }
}

// WithRandomColorURL overrides the random colour endpoint.
func WithRandomColorURL(u string) ClientOption {
	return func(c *Client) { c.colorURL = u }
}

// WithSchemeURL overrides the colour scheme endpoint (without query string).
func WithSchemeURL(u string) ClientOption {
	return func(c *Client) { c.schemeURL = u }
}

// WithSchemeMode selects the Color API scheme mode (monochrome, analogic, complement, ...).
func WithSchemeMode(mode string) ClientOption {
	return func(c *Client) { c.schemeMode = strings.ToLower(strings.TrimSpace(mode)) }
}

// WithSchemeCount asks the scheme endpoint for n colours. Values below 3 are raised to 3.
func WithSchemeCount(n int) ClientOption {
	return func(c *Client) { c.schemeCount = n }
}

// WithHTTPClient installs a custom http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithRateLimiter replaces the default limiter. Pass nil to disable.
func WithRateLimiter(l RateLimiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

// WithUserAgent sets a custom User-Agent string.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger routes request logging to l.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

func sanitizeURL(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	return strings.TrimRight(raw, "/")
}

func (c *Client) schemeQuery(hex string) string {
	q := url.Values{}
	q.Set("hex", hex)
	q.Set("mode", c.schemeMode)
	q.Set("count", strconv.Itoa(c.schemeCount))
	return c.schemeURL + "?" + q.Encode()
}

// getJSON executes a GET against rawURL and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("dailyquote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	raw, status, err := send(ctx, c.http, c.limiter, c.userAgent, req)
	if err != nil {
		return err
	}
	c.log.Debug("http get", "url", rawURL, "status", status, "bytes", len(raw), "elapsed", time.Since(started))

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("dailyquote: decode %s: %w", req.URL.Host, err)
	}
	return nil
}

// send waits on the limiter (keyed by host), executes req and returns the bounded body.
// Non-2xx responses are turned into *APIError.
func send(ctx context.Context, hc *http.Client, limiter RateLimiter, ua string, req *http.Request) ([]byte, int, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx, req.URL.Host); err != nil {
			return nil, 0, err
		}
	}
	if ua = strings.TrimSpace(ua); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("dailyquote: execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("dailyquote: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, buildAPIError(req.URL.Host, resp.StatusCode, raw)
	}
	return raw, resp.StatusCode, nil
}

func buildDefaultUserAgent() string {
	goVer := strings.TrimPrefix(runtime.Version(), "go")
	if goVer == "" {
		goVer = runtime.Version()
	}
	return fmt.Sprintf("%s/%s (+https://github.com/1set/dailyquote; Go%s; %s/%s)",
		userAgentProduct, userAgentVersion, goVer, runtime.GOOS, runtime.GOARCH)
}

