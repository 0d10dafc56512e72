package icecat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"icecatimport/internal/domain/importrun"
	"icecatimport/internal/errs"
	"icecatimport/internal/ports"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "icecatimport/1.0"
	maxBodyBytes     = 32 << 20

	requestIDHeader = "X-Request-ID"
)

type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client fetches live API responses. It never retries.
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
}

var _ ports.HTTPFetcher = (*Client)(nil)

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
		limiter:    limiter,
	}
}

// Fetch returns the response body for any status code. A failed host lookup is
// reported as a body carrying the host failure key instead of an error.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", errs.Wrap(err, "wait for rate limiter")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errs.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return hostFailureBody(dnsErr), nil
		}
		return "", errs.Wrap(err, "perform request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", errs.Wrap(err, "read response body")
	}
	return string(body), nil
}

func hostFailureBody(err error) string {
	encoded, marshalErr := json.Marshal(map[string]string{importrun.ResponseHostFailureKey: err.Error()})
	if marshalErr != nil {
		return `{"` + importrun.ResponseHostFailureKey + `":true}`
	}
	return string(encoded)
}
