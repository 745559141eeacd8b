package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"

	"github.com/keraies/antennascan/internal/model"
)

// Client issues GET and POST requests against one site with a fixed pause
// between requests.
type Client struct {
	http   *resty.Client
	delay  time.Duration
	logger *slog.Logger

	// mu serializes requests and guards lastDone.
	mu       sync.Mutex
	lastDone time.Time
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	delay          time.Duration
	timeout        time.Duration
	userAgent      string
	acceptLanguage string
	headers        map[string]string
	logger         *slog.Logger
	transport      http.RoundTripper
}

// WithDelay sets the minimum pause between the end of one request and the
// start of the next.
func WithDelay(d time.Duration) Option {
	return func(o *clientOptions) {
		o.delay = d
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) {
		o.userAgent = ua
	}
}

// WithAcceptLanguage sets the Accept-Language header.
func WithAcceptLanguage(lang string) Option {
	return func(o *clientOptions) {
		o.acceptLanguage = lang
	}
}

// WithHeaders adds request headers sent with every request.
func WithHeaders(h map[string]string) Option {
	return func(o *clientOptions) {
		o.headers = h
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// WithTransport replaces the HTTP transport, e.g. for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.transport = rt
	}
}

// NewClient creates a Client for the site rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	o := clientOptions{
		delay:   time.Second,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	rc := resty.New()
	rc.SetBaseURL(baseURL)
	rc.SetTimeout(o.timeout)
	rc.SetCookieJar(jar)
	rc.SetRetryCount(0)
	rc.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if o.userAgent != "" {
		rc.SetHeader("User-Agent", o.userAgent)
	}
	if o.acceptLanguage != "" {
		rc.SetHeader("Accept-Language", o.acceptLanguage)
	}
	for k, v := range o.headers {
		rc.SetHeader(k, v)
	}
	if o.transport != nil {
		rc.SetTransport(o.transport)
	}

	return &Client{
		http:   rc,
		delay:  o.delay,
		logger: o.logger,
	}, nil
}

// Delay returns the configured pause between requests.
func (c *Client) Delay() time.Duration {
	return c.delay
}

// Get fetches path with the given query parameters.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (*model.RawPage, error) {
	return c.do(ctx, http.MethodGet, path, func(r *resty.Request) {
		if len(params) > 0 {
			r.SetQueryParamsFromValues(params)
		}
	})
}

// PostForm posts form as application/x-www-form-urlencoded to path.
// A non-empty referer is sent as the Referer header.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, referer string) (*model.RawPage, error) {
	return c.do(ctx, http.MethodPost, path, func(r *resty.Request) {
		r.SetFormDataFromValues(form)
		if referer != "" {
			r.SetHeader("Referer", referer)
		}
	})
}

func (c *Client) do(ctx context.Context, method, path string, build func(*resty.Request)) (*model.RawPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	defer func() {
		c.lastDone = time.Now()
	}()

	req := c.http.R().SetContext(ctx)
	build(req)

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{Method: method, URL: c.resolve(path), Err: err}
	}

	finalURL := c.resolve(path)
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	c.logger.Debug("request completed",
		"method", method,
		"url", finalURL,
		"status", resp.StatusCode(),
		"bytes", len(resp.Body()),
		"duration", time.Since(start),
	)

	if !resp.IsSuccess() {
		return nil, &HTTPStatusError{Method: method, URL: finalURL, StatusCode: resp.StatusCode()}
	}

	contentType := resp.Header().Get("Content-Type")
	body, err := decodeBody(resp.Body(), contentType)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: finalURL, Err: err}
	}

	return &model.RawPage{
		URL:         finalURL,
		StatusCode:  resp.StatusCode(),
		ContentType: contentType,
		Body:        body,
	}, nil
}

// wait blocks until the delay since the previous request has elapsed.
func (c *Client) wait(ctx context.Context) error {
	if c.delay <= 0 || c.lastDone.IsZero() {
		return ctx.Err()
	}

	remaining := c.delay - time.Since(c.lastDone)
	if remaining <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) resolve(path string) string {
	base, err := url.Parse(c.http.BaseURL)
	if err != nil {
		return path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	return base.ResolveReference(ref).String()
}

// decodeBody transcodes body to UTF-8 using the declared or sniffed charset.
func decodeBody(body []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to determine response charset: %w", err)
	}
	return io.ReadAll(r)
}
