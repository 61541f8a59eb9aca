// Package transport implements the HTTP(S) GET transport used by discovery
package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// TLS version constants
const (
	TLS12 = tls.VersionTLS12
	TLS13 = tls.VersionTLS13
)

// DefaultUserAgent is sent when no User-Agent is configured
const DefaultUserAgent = "go-yadis/1.0"

// Recommended TLS 1.2 cipher suites
var RecommendedTLS12CipherSuites = []uint16{
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
}

// ErrBodyTooLarge is returned when a response body exceeds MaxBodyBytes
var ErrBodyTooLarge = errors.New("response body too large")

// HTTPSConfig contains HTTP client configuration
type HTTPSConfig struct {
	MinTLSVersion      uint16
	MaxTLSVersion      uint16
	CipherSuites       []uint16
	RootCAs            *x509.CertPool
	InsecureSkipVerify bool
	Timeout            time.Duration
	IdleConnTimeout    time.Duration

	// UserAgent is the User-Agent header to send
	UserAgent string

	// MaxBodyBytes caps the size of a response body
	MaxBodyBytes int64

	// MaxHTTPRedirects caps 3xx redirects followed within one Fetch
	MaxHTTPRedirects int

	// HTTP2 enables HTTP/2 on TLS connections
	HTTP2 bool
}

// DefaultHTTPSConfig returns a default HTTPS configuration
func DefaultHTTPSConfig() *HTTPSConfig {
	return &HTTPSConfig{
		MinTLSVersion:    TLS12,
		MaxTLSVersion:    TLS13,
		CipherSuites:     RecommendedTLS12CipherSuites,
		Timeout:          30 * time.Second,
		IdleConnTimeout:  90 * time.Second,
		UserAgent:        DefaultUserAgent,
		MaxBodyBytes:     1 << 20,
		MaxHTTPRedirects: 10,
	}
}

// Client is the net/http implementation of Fetcher
type Client struct {
	client *http.Client
	config *HTTPSConfig
}

// NewClient creates a new client. A nil config uses DefaultHTTPSConfig.
func NewClient(config *HTTPSConfig) (*Client, error) {
	defaults := DefaultHTTPSConfig()
	if config == nil {
		config = defaults
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if config.MaxHTTPRedirects == 0 {
		config.MaxHTTPRedirects = defaults.MaxHTTPRedirects
	}

	tlsConfig := &tls.Config{
		MinVersion:         config.MinTLSVersion,
		MaxVersion:         config.MaxTLSVersion,
		CipherSuites:       config.CipherSuites,
		RootCAs:            config.RootCAs,
		InsecureSkipVerify: config.InsecureSkipVerify,
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSClientConfig:     tlsConfig,
		IdleConnTimeout:     config.IdleConnTimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
	}
	if config.HTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, fmt.Errorf("configuring HTTP/2: %w", err)
		}
	}

	maxRedirects := config.MaxHTTPRedirects
	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		config: config,
	}, nil
}

// NewClientWithHTTPClient wraps an existing *http.Client, e.g. one built
// by a caller with its own proxy or mTLS settings.
func NewClientWithHTTPClient(client *http.Client) *Client {
	config := DefaultHTTPSConfig()
	return &Client{client: client, config: config}
}

// Fetch sends a GET request and reads the whole response
func (c *Client) Fetch(ctx context.Context, r *Request) (*Exchange, error) {
	target, err := r.TargetURL()
	if err != nil {
		return nil, &Error{URL: r.URL, Err: fmt.Errorf("failed to build URL: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{URL: target, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes+1))
	if err != nil {
		return nil, &Error{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if int64(len(body)) > c.config.MaxBodyBytes {
		return nil, &Error{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, c.config.MaxBodyBytes)}
	}

	return &Exchange{
		URL:           resp.Request.URL.String(),
		RequestHeader: req.Header.Clone(),
		StatusCode:    resp.StatusCode,
		Header:        resp.Header,
		Body:          body,
	}, nil
}
