package network

import (
	"bytes"
	"context"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quranku-cli/quranku/constant"
	"github.com/quranku-cli/quranku/log"
)

// Response is the decoded outcome of a single HTTP exchange.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// RequestConfig tunes a single request issued through the client.
// The zero value is valid and means: default signal key, no params, no hooks.
type RequestConfig struct {
	// SignalID selects the abort registry key this request registers under.
	// Empty means the client's DefaultSignalID.
	SignalID string

	// Signal, when set, is the parent context for the request. The request is
	// additionally cancellable through the abort registry.
	Signal context.Context

	// Params are appended to the URL as query parameters.
	Params url.Values

	// Header entries are set on the outgoing request.
	Header http.Header

	// Delay is slept before the first attempt.
	Delay time.Duration

	// BeforeRequest runs once per attempt, after the request is built.
	BeforeRequest func(*http.Request)

	// AfterRequest runs once per attempt with the attempt's outcome.
	AfterRequest func(*Response, error)

	// OnConnectionError runs once per attempt that fails at the transport level.
	OnConnectionError func(error)
}

// Client issues GET and POST requests with keyed cancellation and
// exponential-backoff retries for connection failures.
type Client struct {
	HTTP     *http.Client
	Registry *Registry

	// DefaultSignalID keys requests whose config carries no SignalID.
	DefaultSignalID string

	// Forever retries connection failures without an attempt cap.
	// When false, Retries bounds the number of retries after the first attempt.
	Forever    bool
	Retries    int
	Factor     float64
	MinTimeout time.Duration

	// RetryWhen, when set, fully replaces the default retry policy.
	RetryWhen func(err error, attempt int) bool

	// OnRetry is invoked before each backoff sleep.
	OnRetry func(err error, attempt int)
}

// NewClient constructs a client with the standard retry policy:
// unlimited retries on connection errors, 2s base backoff, flat factor.
func NewClient(registry *Registry) *Client {
	return &Client{
		HTTP: &http.Client{
			Timeout: time.Minute,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: time.Second,
			},
		},
		Registry:        registry,
		DefaultSignalID: "network",
		Forever:         true,
		Retries:         10,
		Factor:          1,
		MinTimeout:      2 * time.Second,
	}
}

// Get issues a GET request and retries connection failures per the client policy.
func (c *Client) Get(rawURL string, cfg RequestConfig) (*Response, error) {
	return c.do(http.MethodGet, rawURL, "", nil, cfg)
}

// Post issues a POST request with the given body and content type.
func (c *Client) Post(rawURL, contentType string, body []byte, cfg RequestConfig) (*Response, error) {
	return c.do(http.MethodPost, rawURL, contentType, body, cfg)
}

func (c *Client) do(method, rawURL, contentType string, body []byte, cfg RequestConfig) (*Response, error) {
	parent := cfg.Signal
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	signalID := cfg.SignalID
	if signalID == "" {
		signalID = c.DefaultSignalID
	}
	c.Registry.Add(signalID, cancel)

	if cfg.Delay > 0 {
		if err := sleep(ctx, cfg.Delay); err != nil {
			return nil, classify(rawURL, err, 0)
		}
	}

	fullURL := rawURL
	if len(cfg.Params) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		fullURL = rawURL + sep + cfg.Params.Encode()
	}

	for attempt := 1; ; attempt++ {
		resp, err := c.attempt(ctx, method, fullURL, contentType, body, cfg)
		if err == nil {
			return resp, nil
		}

		if !c.shouldRetry(err, attempt) {
			return nil, err
		}

		if c.OnRetry != nil {
			c.OnRetry(err, attempt)
		}
		log.Warnf("request %s failed (attempt %d), retrying: %v", fullURL, attempt, err)

		if sleepErr := sleep(ctx, c.backoff(attempt)); sleepErr != nil {
			return nil, classify(fullURL, sleepErr, 0)
		}
	}
}

// attempt performs a single exchange, running the per-attempt hooks exactly once.
func (c *Client) attempt(ctx context.Context, method, fullURL, contentType string, body []byte, cfg RequestConfig) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, &RequestError{Kind: KindUnknown, URL: fullURL, Err: err}
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for name, values := range cfg.Header {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}

	if cfg.BeforeRequest != nil {
		cfg.BeforeRequest(req)
	}

	httpResp, err := c.HTTP.Do(req)
	if err != nil {
		// Context cancellation wins over whatever the transport reports.
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		reqErr := classify(fullURL, err, 0)
		if reqErr.Kind == KindConnection && cfg.OnConnectionError != nil {
			cfg.OnConnectionError(reqErr)
		}
		if cfg.AfterRequest != nil {
			cfg.AfterRequest(nil, reqErr)
		}
		return nil, reqErr
	}
	defer drainClose(httpResp.Body)

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		reqErr := classify(fullURL, err, 0)
		if cfg.AfterRequest != nil {
			cfg.AfterRequest(nil, reqErr)
		}
		return nil, reqErr
	}

	resp := &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: data}

	if httpResp.StatusCode >= http.StatusBadRequest {
		reqErr := classify(fullURL, nil, httpResp.StatusCode)
		if cfg.AfterRequest != nil {
			cfg.AfterRequest(resp, reqErr)
		}
		return nil, reqErr
	}

	if cfg.AfterRequest != nil {
		cfg.AfterRequest(resp, nil)
	}
	return resp, nil
}

func (c *Client) shouldRetry(err error, attempt int) bool {
	if c.RetryWhen != nil {
		return c.RetryWhen(err, attempt)
	}
	if !IsConnection(err) {
		return false
	}
	if c.Forever {
		return true
	}
	return attempt <= c.Retries
}

// backoff computes MinTimeout * Factor^(attempt-1).
func (c *Client) backoff(attempt int) time.Duration {
	factor := c.Factor
	if factor <= 0 {
		factor = 1
	}
	scaled := float64(c.MinTimeout) * math.Pow(factor, float64(attempt-1))
	return time.Duration(scaled)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
