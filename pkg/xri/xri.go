package xri

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sirosfoundation/go-yadis/internal/uri"
	"github.com/sirosfoundation/go-yadis/pkg/transport"
	"github.com/sirosfoundation/go-yadis/pkg/xrds"
)

// Resolver errors
var (
	// ErrInvalidIdentifier is returned for input that is neither a URI nor an XRI
	ErrInvalidIdentifier = errors.New("identifier is neither a valid URI nor an XRI")
	// ErrTranslationFailed is returned when proxy translation yields an invalid URI
	ErrTranslationFailed = errors.New("unable to translate XRI to a valid URI")
	// ErrNotXRDSResponse is returned when a canonical ID lookup is not answered with an XRDS document
	ErrNotXRDSResponse = errors.New("response is not an XRDS document")
	// ErrInvalidProxy is returned when the configured proxy is not a valid URI
	ErrInvalidProxy = errors.New("invalid XRI proxy URI")
)

// DefaultProxy is the XRI proxy resolver translated identifiers are appended to
const DefaultProxy = "http://xri.net/"

// Scheme prefixes stripped before an XRI is appended to the proxy
const (
	schemePrefix = "xri://"
	ipPrefix     = "xri://$ip*"
	dnsPrefix    = "xri://$dns*"
)

// globalContextSymbols are the leading characters that mark a bare XRI
const globalContextSymbols = "=$!@+"

// Resolver turns identifiers into dereferenceable URIs. It is a plain value
// owned by its caller; nothing is shared between resolvers.
type Resolver struct {
	fetcher    transport.Fetcher
	proxy      string
	namespaces *xrds.Registry
	logger     *slog.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithProxy sets the proxy base URI. It is validated by NewResolver.
func WithProxy(proxy string) Option {
	return func(r *Resolver) {
		r.proxy = proxy
	}
}

// WithNamespaces sets the registry used to parse canonical ID responses
func WithNamespaces(ns *xrds.Registry) Option {
	return func(r *Resolver) {
		r.namespaces = ns
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a resolver. fetcher is only used by CanonicalID and
// may be nil when canonical IDs are never looked up.
func NewResolver(fetcher transport.Fetcher, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		fetcher: fetcher,
		proxy:   DefaultProxy,
	}
	for _, opt := range opts {
		opt(r)
	}
	if !uri.Valid(r.proxy) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, r.proxy)
	}
	if r.namespaces == nil {
		r.namespaces = xrds.NewRegistry()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r, nil
}

// Proxy returns the proxy base URI
func (r *Resolver) Proxy() string {
	return r.proxy
}

// IsXRI reports whether identifier looks like an XRI: it starts with the
// xri:// scheme (in any case) or with one of the global context symbols.
func IsXRI(identifier string) bool {
	if identifier == "" {
		return false
	}
	if hasPrefixFold(identifier, schemePrefix) {
		return true
	}
	return strings.IndexByte(globalContextSymbols, identifier[0]) >= 0
}

// Resolve returns the URI to dereference for identifier. A valid URI is
// returned unchanged without network access; an XRI is translated through
// the proxy.
func (r *Resolver) Resolve(identifier string) (string, error) {
	if uri.Valid(identifier) {
		return identifier, nil
	}
	if IsXRI(identifier) {
		return r.ToURI(identifier)
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, identifier)
}

// ToURI translates an XRI into a URI on the proxy. The xri://$ip*,
// xri://$dns* and xri:// prefixes are stripped before the remainder is
// appended to the proxy base.
func (r *Resolver) ToURI(xri string) (string, error) {
	if !IsXRI(xri) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, xri)
	}

	translated := r.proxy + stripScheme(xri)
	if !uri.Valid(translated) {
		return "", fmt.Errorf("%w: %q using proxy %s", ErrTranslationFailed, xri, r.proxy)
	}
	return translated, nil
}

// CanonicalID fetches the XRDS document for xri from the proxy and returns
// its last CanonicalID. serviceType, when non-empty, asks the proxy to select
// the services of that type. The boolean is false when the document has no
// CanonicalID; that is not an error.
func (r *Resolver) CanonicalID(ctx context.Context, xri, serviceType string) (string, bool, error) {
	if r.fetcher == nil {
		return "", false, errors.New("xri: resolver has no fetcher")
	}
	target, err := r.ToURI(xri)
	if err != nil {
		return "", false, err
	}

	req := transport.NewRequest(target)
	req.Header.Set("Accept", xrds.MediaType)
	if serviceType != "" {
		req.Query.Set("_xrd_r", xrds.MediaType)
		req.Query.Set("_xrd_t", serviceType)
	} else {
		req.Query.Set("_xrd_r", xrds.MediaType+";sep=false")
	}

	ex, err := r.fetcher.Fetch(ctx, req)
	if err != nil {
		return "", false, err
	}
	if err := transport.CheckStatus(ex); err != nil {
		return "", false, err
	}
	if !strings.Contains(strings.ToLower(ex.ContentType()), xrds.MediaType) {
		return "", false, fmt.Errorf("%w: %s served %q", ErrNotXRDSResponse, ex.URL, ex.ContentType())
	}

	doc, err := xrds.Parse(ex.Body, r.namespaces)
	if err != nil {
		return "", false, err
	}

	id, ok := doc.CanonicalID()
	r.logger.Debug("canonical ID lookup", "xri", xri, "uri", ex.URL, "found", ok, "canonical_id", id)
	return id, ok, nil
}

func stripScheme(xri string) string {
	switch {
	case hasPrefixFold(xri, ipPrefix):
		return xri[len(ipPrefix):]
	case hasPrefixFold(xri, dnsPrefix):
		return xri[len(dnsPrefix):]
	case hasPrefixFold(xri, schemePrefix):
		return xri[len(schemePrefix):]
	}
	return xri
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
