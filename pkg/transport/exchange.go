package transport

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// ErrTransport is the error kind of every failed or unsuccessful exchange
var ErrTransport = errors.New("transport error")

// Fetcher performs a single GET request and returns the complete exchange.
// Implementations return an error only when no response was received; a
// response with any status code is returned as an Exchange.
type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (*Exchange, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req *Request) (*Exchange, error)

// Fetch calls f(ctx, req).
func (f FetcherFunc) Fetch(ctx context.Context, req *Request) (*Exchange, error) {
	return f(ctx, req)
}

// Request describes a GET request.
type Request struct {
	URL    string
	Header http.Header
	Query  url.Values
}

// NewRequest creates a request for rawURL with empty headers and query.
func NewRequest(rawURL string) *Request {
	return &Request{
		URL:    rawURL,
		Header: make(http.Header),
		Query:  make(url.Values),
	}
}

// TargetURL returns the request URL with Query merged into its query string.
func (r *Request) TargetURL() (string, error) {
	if len(r.Query) == 0 {
		return r.URL, nil
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for key, values := range r.Query {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Exchange is one request/response pair. Discovery only reads it.
type Exchange struct {
	// URL is the URL that produced the response, after HTTP redirects
	URL           string
	RequestHeader http.Header
	StatusCode    int
	Header        http.Header
	Body          []byte
}

// HeaderValue returns the first non-empty value of the named response
// header, matching the name case-insensitively even when the header map was
// not built with canonical keys.
func (e *Exchange) HeaderValue(name string) string {
	if v := e.Header.Get(name); v != "" {
		return v
	}
	for key, values := range e.Header {
		if !strings.EqualFold(key, name) {
			continue
		}
		for _, v := range values {
			if v != "" {
				return v
			}
		}
	}
	return ""
}

// ContentType returns the raw Content-Type header.
func (e *Exchange) ContentType() string {
	return e.HeaderValue("Content-Type")
}

// MediaType returns the lower-cased media type of the Content-Type header
// without parameters, or "" when the header is missing or unparseable.
func (e *Exchange) MediaType() string {
	ct := e.ContentType()
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		mt, _, _ = strings.Cut(ct, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// Success reports whether the status code is 2xx.
func (e *Exchange) Success() bool {
	return e.StatusCode >= 200 && e.StatusCode < 300
}

// Error describes a failed exchange: either no response was received (Err is
// set) or the response status was not 2xx.
type Error struct {
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("unexpected status code %d from %s: %s", e.StatusCode, e.URL, truncate(e.Body, 256))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every *Error match ErrTransport.
func (e *Error) Is(target error) bool {
	return target == ErrTransport
}

// CheckStatus returns an *Error for a non-2xx exchange and nil otherwise.
func CheckStatus(ex *Exchange) error {
	if ex.Success() {
		return nil
	}
	return &Error{URL: ex.URL, StatusCode: ex.StatusCode, Body: ex.Body}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
