// Package transport is the HTTP client every catalog client goes through.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"astrocat/internal/components/assert"
	"astrocat/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	report_client_get  = "client.get"
	report_client_post = "client.post"
)

const defaultUserAgent = "astrocat/1.0 (+https://github.com/astrocat)"

type Options struct {
	Timeout   time.Duration
	UserAgent string
	// CacheTTL of zero disables the response cache.
	CacheTTL  time.Duration
	CacheSize int
	// RequestsPerSecond of zero disables rate limiting.
	RequestsPerSecond float64
	// HTTPClient is the underlying client, nil means a new one.
	HTTPClient *http.Client
	// Output receives every request/response pair, it may be nil.
	Output telemetry.MessageOutput
}

// StatusError is returned for responses with a non 2xx status.
type StatusError struct {
	Method     string
	Url        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %s", e.Method, e.Url, e.Status)
}

// Form is a form body, url.Values or any type encoding itself in its own order.
type Form interface {
	Encode() string
}

type Client struct {
	http  *resty.Client
	cache *expirable.LRU[string, []byte]
	tel   telemetry.API
}

func New(opts Options, tel telemetry.API) *Client {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("transport", tel)

	var httpClient *resty.Client
	if opts.HTTPClient != nil {
		httpClient = resty.NewWithClient(opts.HTTPClient)
	} else {
		httpClient = resty.New()
	}
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	httpClient.SetHeader("user-agent", userAgent)

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, opts.Output)

	c := &Client{
		http: httpClient,
		tel:  tel,
	}
	if opts.CacheTTL > 0 {
		size := opts.CacheSize
		if size <= 0 {
			size = 256
		}
		c.cache = expirable.NewLRU[string, []byte](size, nil, opts.CacheTTL)
	}
	return c
}

func cacheKey(method, endpoint string, form Form) string {
	if form == nil {
		return method + " " + endpoint
	}
	return method + " " + endpoint + " " + form.Encode()
}

func (c *Client) cached(key string, useCache bool) ([]byte, bool) {
	if c.cache == nil || !useCache {
		return nil, false
	}
	body, hit := c.cache.Get(key)
	if hit {
		c.tel.ReportDebug("cache hit", key)
	}
	return body, hit
}

func (c *Client) store(key string, useCache bool, body []byte) {
	if c.cache == nil || !useCache {
		return
	}
	c.cache.Add(key, body)
}

func (c *Client) check(res *resty.Response) error {
	if res.IsSuccess() {
		return nil
	}
	return &StatusError{
		Method:     res.Request.Method,
		Url:        res.Request.URL,
		StatusCode: res.StatusCode(),
		Status:     res.Status(),
	}
}

// Get fetches endpoint and returns the response body.
func (c *Client) Get(ctx context.Context, endpoint string, useCache bool) ([]byte, error) {
	key := cacheKey(http.MethodGet, endpoint, nil)
	if body, hit := c.cached(key, useCache); hit {
		return body, nil
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", endpoint, err)
	}
	err = c.check(res)
	if err != nil {
		c.tel.ReportWarning(report_client_get, err)
		return nil, err
	}

	body := res.Body()
	c.store(key, useCache, body)
	return body, nil
}

// PostForm posts form url-encoded, in the order form.Encode gives, and
// returns the response body.
func (c *Client) PostForm(ctx context.Context, endpoint string, form Form, useCache bool) ([]byte, error) {
	key := cacheKey(http.MethodPost, endpoint, form)
	if body, hit := c.cached(key, useCache); hit {
		return body, nil
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/x-www-form-urlencoded").
		SetBody(form.Encode()).
		Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", endpoint, err)
	}
	err = c.check(res)
	if err != nil {
		c.tel.ReportWarning(report_client_post, err)
		return nil, err
	}

	body := res.Body()
	c.store(key, useCache, body)
	return body, nil
}

// Purge drops every cached response.
func (c *Client) Purge() {
	if c.cache != nil {
		c.cache.Purge()
	}
}
