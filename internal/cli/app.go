package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/sirosfoundation/go-yadis/internal/config"
	"github.com/sirosfoundation/go-yadis/pkg/discovery"
	"github.com/sirosfoundation/go-yadis/pkg/transport"
	"github.com/sirosfoundation/go-yadis/pkg/xrds"
	"github.com/sirosfoundation/go-yadis/pkg/xri"
)

const serviceName = "yadis"

// app holds the components shared by all subcommands
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	provider *sdktrace.TracerProvider
	stderr   io.Writer
}

// newApp loads configuration, applies flag overrides and sets up logging,
// metrics and tracing.
func newApp(opts *rootOptions, stderr io.Writer) (*app, error) {
	cfg := config.Default()
	if opts.configFile != "" {
		loaded, err := config.Load(opts.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: newLogger(cfg.Log, stderr),
		stderr: stderr,
	}

	if cfg.Observability.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
	}
	if cfg.Observability.Tracing.Enabled {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}
		a.provider = sdktrace.NewTracerProvider(
			sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
			sdktrace.WithSyncer(exporter),
		)
	}

	return a, nil
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func (a *app) tracerProvider() trace.TracerProvider {
	if a.provider == nil {
		return noop.NewTracerProvider()
	}
	return a.provider
}

func (a *app) namespaces() (*xrds.Registry, error) {
	ns := xrds.NewRegistry()
	if err := ns.AddAll(a.cfg.Namespaces); err != nil {
		return nil, fmt.Errorf("namespaces: %w", err)
	}
	return ns, nil
}

func (a *app) fetcher() (*transport.Client, error) {
	h := a.cfg.HTTP
	httpsCfg := transport.DefaultHTTPSConfig()
	httpsCfg.Timeout = h.Timeout
	httpsCfg.MaxBodyBytes = h.MaxBodyBytes
	httpsCfg.HTTP2 = h.HTTP2
	httpsCfg.InsecureSkipVerify = h.TLS.InsecureSkipVerify
	if h.UserAgent != "" {
		httpsCfg.UserAgent = h.UserAgent
	}
	if h.TLS.MinVersion == "1.3" {
		httpsCfg.MinTLSVersion = transport.TLS13
	}
	if h.TLS.InsecureSkipVerify {
		a.logger.Warn("TLS certificate verification is disabled")
	}
	return transport.NewClient(httpsCfg)
}

func (a *app) resolver() (*xri.Resolver, error) {
	client, err := a.fetcher()
	if err != nil {
		return nil, err
	}
	ns, err := a.namespaces()
	if err != nil {
		return nil, err
	}
	return a.newResolver(client, ns)
}

func (a *app) newResolver(client transport.Fetcher, ns *xrds.Registry) (*xri.Resolver, error) {
	return xri.NewResolver(client,
		xri.WithProxy(a.cfg.Discovery.Proxy),
		xri.WithNamespaces(ns),
		xri.WithLogger(a.logger),
	)
}

func (a *app) discoverer() (*discovery.Discoverer, error) {
	client, err := a.fetcher()
	if err != nil {
		return nil, err
	}
	ns, err := a.namespaces()
	if err != nil {
		return nil, err
	}
	resolver, err := a.newResolver(client, ns)
	if err != nil {
		return nil, err
	}
	policy, err := discovery.ParseRedirectPolicy(a.cfg.Discovery.RedirectPolicy)
	if err != nil {
		return nil, err
	}

	opts := []discovery.Option{
		discovery.WithResolver(resolver),
		discovery.WithNamespaces(ns),
		discovery.WithRedirectPolicy(policy),
		discovery.WithMaxRedirects(a.cfg.Discovery.MaxRedirects),
		discovery.WithLogger(a.logger),
		discovery.WithTracerProvider(a.tracerProvider()),
	}
	if a.registry != nil {
		opts = append(opts, discovery.WithMetrics(discovery.NewMetrics(a.registry)))
	}
	if a.cfg.Discovery.CacheTTL > 0 {
		opts = append(opts, discovery.WithCache(discovery.NewCache(a.cfg.Discovery.CacheTTL)))
	}
	return discovery.NewDiscoverer(client, opts...)
}

// close flushes traces and writes gathered metrics in the Prometheus text
// format.
func (a *app) close(ctx context.Context) error {
	if a.provider != nil {
		if err := a.provider.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown tracer provider: %w", err)
		}
	}
	if a.registry == nil {
		return nil
	}
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.stderr, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
