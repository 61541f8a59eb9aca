package discovery

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by a Discoverer.
type Metrics struct {
	DiscoveryTotal    *prometheus.CounterVec
	DiscoveryDuration *prometheus.HistogramVec
	ResponsesTotal    *prometheus.CounterVec
	CacheTotal        *prometheus.CounterVec
}

// NewMetrics creates the discovery collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	discoveryTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "yadis_discovery_total",
		Help: "Total number of discovery calls by outcome.",
	}, []string{"outcome"})

	discoveryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yadis_discovery_duration_seconds",
		Help:    "Duration of discovery calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	responsesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "yadis_responses_total",
		Help: "Total number of classified HTTP responses.",
	}, []string{"kind"})

	cacheTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "yadis_cache_total",
		Help: "Total number of discovery cache lookups.",
	}, []string{"result"})

	if reg != nil {
		reg.MustRegister(discoveryTotal, discoveryDuration, responsesTotal, cacheTotal)
	}

	return &Metrics{
		DiscoveryTotal:    discoveryTotal,
		DiscoveryDuration: discoveryDuration,
		ResponsesTotal:    responsesTotal,
		CacheTotal:        cacheTotal,
	}
}

func (m *Metrics) observeDiscovery(err error, seconds float64) {
	if m == nil {
		return
	}
	o := outcome(err)
	m.DiscoveryTotal.WithLabelValues(o).Inc()
	m.DiscoveryDuration.WithLabelValues(o).Observe(seconds)
}

func (m *Metrics) observeResponse(kind Kind) {
	if m == nil {
		return
	}
	m.ResponsesTotal.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) observeCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheTotal.WithLabelValues(result).Inc()
}

// outcome maps an error to a low-cardinality label value.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidIdentifier):
		return "invalid_identifier"
	case errors.Is(err, ErrXRITranslationFailed):
		return "xri_translation_failed"
	case errors.Is(err, ErrTransport):
		return "transport_error"
	case errors.Is(err, ErrInvalidDiscoveredURI):
		return "invalid_discovered_uri"
	case errors.Is(err, ErrNoValidDocument):
		return "no_valid_document"
	case errors.Is(err, ErrMalformedDocument):
		return "malformed_document"
	case errors.Is(err, ErrTooManyRedirects):
		return "too_many_redirects"
	default:
		return "error"
	}
}
