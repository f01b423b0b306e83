// Package httpclient provides the one HTTP client every source adapter,
// the enricher, and the health monitor's synthetic probes share: bounded
// redirects with SSRF re-validation on every hop, a body-size cap, TLS 1.2+
// enforcement, and a rotating User-Agent pool for hosts that start
// blocking the default one.
package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"leadscout/internal/leadgen/urlkit"
	"leadscout/internal/resilience/retry"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; LeadScoutBot/1.0; +https://leadscout.example/bot)"

var userAgentPool = []string{
	defaultUserAgent,
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
}

// Config tunes the client's behavior. Mirrors the shape of the content
// fetch config this was generalized from: a threshold, a timeout, a
// redirect cap, a body-size cap, and an SSRF toggle.
type Config struct {
	Timeout        time.Duration
	MaxRedirects   int
	MaxBodySize    int64
	DenyPrivateIPs bool

	// UserAgent, when set, replaces the head of the built-in UA pool
	// (the USER_AGENT environment override).
	UserAgent string

	// HostRequestsPerSecond throttles requests per target host so
	// scraping stays polite. Zero disables throttling.
	HostRequestsPerSecond float64

	// ProxyAPIKey, when set, routes every fetch through the scrape
	// proxy service instead of hitting the target host directly.
	ProxyAPIKey string
}

func DefaultConfig() Config {
	return Config{
		Timeout:               10 * time.Second,
		MaxRedirects:          5,
		MaxBodySize:           10 * 1024 * 1024,
		DenyPrivateIPs:        true,
		HostRequestsPerSecond: 2,
	}
}

// proxyEndpoint is the scrape-proxy fetch API; the target URL rides in
// the query string and the key in the Authorization header.
const proxyEndpoint = "https://api.scrapy.cloud/v1/fetch"

// Client wraps *http.Client with SSRF-safe redirect handling and UA
// rotation. It does not itself retry or circuit-break: callers compose it
// with internal/resilience/retry and internal/resilience/circuitbreaker.
type Client struct {
	cfg    Config
	client *http.Client
	pool   []string

	mu           sync.Mutex
	blockedHosts map[string]int // host -> next UA pool index to try
	limiters     map[string]*rate.Limiter
}

func New(cfg Config) *Client {
	pool := append([]string(nil), userAgentPool...)
	if cfg.UserAgent != "" {
		pool = append([]string{cfg.UserAgent}, pool...)
	}
	c := &Client{
		cfg:          cfg,
		pool:         pool,
		blockedHosts: make(map[string]int),
		limiters:     make(map[string]*rate.Limiter),
	}
	c.client = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("%w: exceeded %d redirects", ErrTooManyRedirects, cfg.MaxRedirects)
			}
			if cfg.DenyPrivateIPs {
				if err := urlkit.ValidateURL(req.URL.String()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return c
}

// userAgentFor returns the next User-Agent to try for host, rotating away
// from entries that previously drew a 403/429 from that host.
func (c *Client) userAgentFor(host string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.blockedHosts[host]
	return c.pool[idx%len(c.pool)]
}

// markBlocked records that host rejected the current UA, so the next
// request to that host rotates to the next pool entry.
func (c *Client) markBlocked(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blockedHosts[host] = (c.blockedHosts[host] + 1) % len(c.pool)
}

// Get performs a GET against rawURL, validating it first, applying the
// body-size cap, and rotating the User-Agent on 403/429 responses.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, *http.Response, error) {
	if c.cfg.DenyPrivateIPs {
		if err := urlkit.ValidateURL(rawURL); err != nil {
			return nil, nil, err
		}
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", urlkit.ErrInvalidURL, err)
	}

	if err := c.waitForHost(ctx, parsed.Host); err != nil {
		return nil, nil, err
	}

	requestURL := rawURL
	if c.cfg.ProxyAPIKey != "" {
		requestURL = proxyEndpoint + "?url=" + url.QueryEscape(rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", c.userAgentFor(parsed.Host))
	if c.cfg.ProxyAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.ProxyAPIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		c.markBlocked(parsed.Host)
	}

	limited := io.LimitReader(resp.Body, c.cfg.MaxBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, resp, fmt.Errorf("%w: %w", ErrTransient, err)
	}
	if int64(len(body)) > c.cfg.MaxBodySize {
		return nil, resp, ErrBodyTooLarge
	}
	if resp.StatusCode >= 400 {
		// Typed so the retry classifier can tell retryable statuses
		// (408/429/5xx) from terminal 4xx.
		return body, resp, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	return body, resp, nil
}

// waitForHost blocks on the per-host politeness limiter until a request
// slot is available or ctx is canceled.
func (c *Client) waitForHost(ctx context.Context, host string) error {
	if c.cfg.HostRequestsPerSecond <= 0 {
		return nil
	}
	c.mu.Lock()
	limiter, ok := c.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(c.cfg.HostRequestsPerSecond), 1)
		c.limiters[host] = limiter
	}
	c.mu.Unlock()
	return limiter.Wait(ctx)
}

// Raw exposes the underlying *http.Client for adapters (e.g. gofeed,
// goquery, colly) that need to supply their own client rather than call
// Get directly.
func (c *Client) Raw() *http.Client { return c.client }
