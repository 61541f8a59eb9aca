package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sirosfoundation/go-yadis/pkg/transport"
	"github.com/sirosfoundation/go-yadis/pkg/xrds"
	"github.com/sirosfoundation/go-yadis/pkg/xri"
)

const tracerName = "github.com/sirosfoundation/go-yadis/pkg/discovery"

// DefaultMaxRedirects bounds the number of header or meta redirects followed
// in one discovery call.
const DefaultMaxRedirects = 5

// RedirectPolicy decides whether a redirect may lead to another redirect.
type RedirectPolicy int

const (
	// RedirectStrict requires the response to a location header or meta hint
	// to be the XRDS document itself.
	RedirectStrict RedirectPolicy = iota
	// RedirectLenient follows chains of location headers and meta hints up to
	// the redirect bound.
	RedirectLenient
)

func (p RedirectPolicy) String() string {
	if p == RedirectLenient {
		return "lenient"
	}
	return "strict"
}

// ParseRedirectPolicy parses "strict" or "lenient".
func ParseRedirectPolicy(s string) (RedirectPolicy, error) {
	switch s {
	case "", "strict":
		return RedirectStrict, nil
	case "lenient":
		return RedirectLenient, nil
	}
	return RedirectStrict, fmt.Errorf("unknown redirect policy %q", s)
}

// Discoverer performs Yadis discovery. It holds only configuration and may be
// used by concurrent sessions as long as its namespace registry is not
// modified while they run.
type Discoverer struct {
	fetcher      transport.Fetcher
	resolver     *xri.Resolver
	namespaces   *xrds.Registry
	policy       RedirectPolicy
	maxRedirects int
	logger       *slog.Logger
	metrics      *Metrics
	tracer       trace.Tracer
	cache        *Cache
}

// Option configures a Discoverer
type Option func(*Discoverer)

// WithResolver sets the identifier resolver. By default one is created with
// the default XRI proxy, sharing the discoverer's fetcher and namespaces.
func WithResolver(r *xri.Resolver) Option {
	return func(d *Discoverer) {
		d.resolver = r
	}
}

// WithNamespaces sets the namespace registry used to parse documents
func WithNamespaces(ns *xrds.Registry) Option {
	return func(d *Discoverer) {
		d.namespaces = ns
	}
}

// WithRedirectPolicy sets the redirect policy (default RedirectStrict)
func WithRedirectPolicy(p RedirectPolicy) Option {
	return func(d *Discoverer) {
		d.policy = p
	}
}

// WithMaxRedirects sets the redirect bound (default DefaultMaxRedirects)
func WithMaxRedirects(n int) Option {
	return func(d *Discoverer) {
		d.maxRedirects = n
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(d *Discoverer) {
		d.logger = logger
	}
}

// WithMetrics enables Prometheus metrics
func WithMetrics(m *Metrics) Option {
	return func(d *Discoverer) {
		d.metrics = m
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider (default: the
// global provider)
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Discoverer) {
		d.tracer = tp.Tracer(tracerName)
	}
}

// WithCache caches successful results of Discoverer.Discover
func WithCache(c *Cache) Option {
	return func(d *Discoverer) {
		d.cache = c
	}
}

// NewDiscoverer creates a discoverer fetching through fetcher.
func NewDiscoverer(fetcher transport.Fetcher, opts ...Option) (*Discoverer, error) {
	if fetcher == nil {
		return nil, errors.New("discovery: fetcher is required")
	}

	d := &Discoverer{
		fetcher:      fetcher,
		policy:       RedirectStrict,
		maxRedirects: DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.namespaces == nil {
		d.namespaces = xrds.NewRegistry()
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.tracer == nil {
		d.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	if d.maxRedirects < 1 {
		return nil, fmt.Errorf("discovery: max redirects must be at least 1, got %d", d.maxRedirects)
	}
	if d.resolver == nil {
		r, err := xri.NewResolver(fetcher, xri.WithNamespaces(d.namespaces), xri.WithLogger(d.logger))
		if err != nil {
			return nil, err
		}
		d.resolver = r
	}

	return d, nil
}

// Namespaces returns the namespace registry used to parse documents
func (d *Discoverer) Namespaces() *xrds.Registry {
	return d.namespaces
}

// Resolver returns the identifier resolver
func (d *Discoverer) Resolver() *xri.Resolver {
	return d.resolver
}

// Result is the outcome of a successful discovery
type Result struct {
	// Identifier is the identifier discovery started from
	Identifier string
	// URI is the URI the identifier resolved to
	URI string
	// DocumentURI is the URL the XRDS document was retrieved from
	DocumentURI string
	Document    *xrds.Document
	Services    *xrds.ServiceList
	// FirstResponse is the first exchange of the discovery
	FirstResponse *transport.Exchange
}

// Discover resolves identifier and runs discovery on it. Callers that need
// the first response after a failure, e.g. to fall back to HTML-based
// discovery, should use a Session instead.
func (d *Discoverer) Discover(ctx context.Context, identifier string) (*Result, error) {
	if d.cache != nil {
		result, hit := d.cache.Get(identifier)
		d.metrics.observeCache(hit)
		if hit {
			d.logger.Debug("discovery cache hit", "identifier", identifier)
			return result, nil
		}
	}

	s, err := d.NewSession(identifier)
	if err != nil {
		d.metrics.observeDiscovery(err, 0)
		return nil, err
	}
	doc, err := s.Discover(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Identifier:    s.identifier,
		URI:           s.uri,
		DocumentURI:   s.documentURI,
		Document:      doc,
		Services:      doc.Services(),
		FirstResponse: s.first,
	}
	if d.cache != nil {
		d.cache.Set(identifier, result)
	}
	return result, nil
}

// Session is a discovery for one identifier. The identifier and the URI it
// resolved to are fixed when the session is created.
type Session struct {
	d           *Discoverer
	id          string
	identifier  string
	uri         string
	logger      *slog.Logger
	first       *transport.Exchange
	documentURI string
}

// NewSession resolves identifier and returns a session for it. It fails with
// ErrInvalidIdentifier or ErrXRITranslationFailed; no request is sent.
func (d *Discoverer) NewSession(identifier string) (*Session, error) {
	resolved, err := d.resolver.Resolve(identifier)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	return &Session{
		d:          d,
		id:         id,
		identifier: identifier,
		uri:        resolved,
		logger:     d.logger.With("session", id, "identifier", identifier),
	}, nil
}

// ID returns the session id used in logs and traces
func (s *Session) ID() string { return s.id }

// Identifier returns the identifier the session was created for
func (s *Session) Identifier() string { return s.identifier }

// URI returns the resolved URI of the identifier
func (s *Session) URI() string { return s.uri }

// DocumentURI returns the URL the XRDS document was retrieved from, once
// discovery succeeded.
func (s *Session) DocumentURI() string { return s.documentURI }

// FirstResponse returns the first exchange of the last Discover call,
// whatever its classification, or nil if no response was received.
func (s *Session) FirstResponse() *transport.Exchange { return s.first }

// UserResponse returns the body of the first response. Services such as
// OpenID fall back to parsing it when Yadis discovery fails.
func (s *Session) UserResponse() ([]byte, bool) {
	if s.first == nil {
		return nil, false
	}
	return s.first.Body, true
}

// IsXRI reports whether the session identifier is an XRI
func (s *Session) IsXRI() bool {
	return xri.IsXRI(s.identifier) && s.uri != s.identifier
}

// CanonicalID looks up the canonical ID of an XRI identifier. See
// xri.Resolver.CanonicalID.
func (s *Session) CanonicalID(ctx context.Context, serviceType string) (string, bool, error) {
	if !s.IsXRI() {
		return "", false, fmt.Errorf("%w: canonical IDs exist only for XRIs, got %q", ErrInvalidIdentifier, s.identifier)
	}
	return s.d.resolver.CanonicalID(ctx, s.identifier, serviceType)
}

type state int

const (
	stateFetching state = iota
	stateAwaitingTerminal
	stateDone
	stateFailed
)

func (st state) String() string {
	switch st {
	case stateFetching:
		return "fetching"
	case stateAwaitingTerminal:
		return "awaiting-terminal"
	case stateDone:
		return "done"
	default:
		return "failed"
	}
}

// Discover follows location headers and meta hints from the session URI to
// the XRDS document and parses it.
func (s *Session) Discover(ctx context.Context) (*xrds.Document, error) {
	start := time.Now()
	ctx, span := s.d.tracer.Start(ctx, "yadis.Discover", trace.WithAttributes(
		attribute.String("yadis.identifier", s.identifier),
		attribute.String("yadis.uri", s.uri),
		attribute.String("yadis.session", s.id),
	))
	defer span.End()

	doc, err := s.run(ctx)

	s.d.metrics.observeDiscovery(err, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Info("discovery failed", "error", err)
		return nil, err
	}
	s.logger.Info("discovery succeeded", "document_uri", s.documentURI, "services", doc.Services().Len())
	return doc, nil
}

func (s *Session) run(ctx context.Context) (*xrds.Document, error) {
	s.first = nil
	s.documentURI = ""

	var (
		st        = stateFetching
		current   = s.uri
		redirects int
		body      []byte
		failure   error
	)

	for {
		switch st {
		case stateDone:
			doc, err := xrds.Parse(body, s.d.namespaces)
			if err != nil {
				return nil, fmt.Errorf("XRDS document from %s could not be parsed: %w", s.documentURI, err)
			}
			return doc, nil
		case stateFailed:
			return nil, failure
		}

		ex, err := s.fetch(ctx, current)
		if err != nil {
			st, failure = stateFailed, err
			continue
		}
		if s.first == nil {
			s.first = ex
		}
		if err := transport.CheckStatus(ex); err != nil {
			st, failure = stateFailed, err
			continue
		}

		c, err := Classify(ex)
		if err != nil {
			st, failure = stateFailed, err
			continue
		}
		s.d.metrics.observeResponse(c.Kind)
		s.logger.Debug("classified response", "uri", ex.URL, "status", ex.StatusCode,
			"content_type", ex.ContentType(), "kind", c.Kind.String(), "state", st.String())

		switch c.Kind {
		case KindTerminalDocument:
			body, s.documentURI = ex.Body, ex.URL
			st = stateDone

		case KindLocationHeader, KindMetaHint:
			if st == stateAwaitingTerminal && s.d.policy == RedirectStrict {
				st, failure = stateFailed, fmt.Errorf("%w: %s from %s must lead directly to an XRDS document, got another %s",
					ErrNoValidDocument, current, ex.URL, c.Kind)
				continue
			}
			redirects++
			if redirects > s.d.maxRedirects {
				st, failure = stateFailed, fmt.Errorf("%w: more than %d redirects, last %s", ErrTooManyRedirects, s.d.maxRedirects, c.Location)
				continue
			}
			current = c.Location
			st = stateAwaitingTerminal

		default:
			if st == stateAwaitingTerminal {
				failure = fmt.Errorf("%w: redirect target %s served %q with status %d",
					ErrNoValidDocument, ex.URL, ex.ContentType(), ex.StatusCode)
			} else {
				failure = fmt.Errorf("%w: %s served %q with status %d",
					ErrNoValidDocument, ex.URL, ex.ContentType(), ex.StatusCode)
			}
			st = stateFailed
		}
	}
}

func (s *Session) fetch(ctx context.Context, target string) (*transport.Exchange, error) {
	ctx, span := s.d.tracer.Start(ctx, "yadis.Fetch", trace.WithAttributes(attribute.String("http.url", target)))
	defer span.End()

	req := transport.NewRequest(target)
	req.Header.Set("Accept", xrds.MediaType)

	ex, err := s.d.fetcher.Fetch(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !errors.Is(err, ErrTransport) {
			err = &transport.Error{URL: target, Err: err}
		}
		return nil, err
	}
	if ex.URL == "" {
		withURL := *ex
		withURL.URL = target
		ex = &withURL
	}
	span.SetAttributes(attribute.Int("http.status_code", ex.StatusCode))
	return ex, nil
}
