package backend

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// Metrics counts backend requests by endpoint group, method and outcome.
type Metrics struct {
	requests *prometheus.CounterVec
}

// NewMetrics creates the backend request counter and registers it on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentrysite",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Backend API requests by endpoint group, method and outcome.",
		}, []string{"group", "method", "outcome"}),
	}
	reg.MustRegister(m.requests)
	return m
}

// observe records one request. A nil receiver is a no-op.
func (m *Metrics) observe(method, endpoint string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = driven.KindOf(err).String()
	}
	m.requests.WithLabelValues(endpointGroup(endpoint), method, outcome).Inc()
}

// endpointGroup reduces "/api/blogs/slug/foo" to "/api/blogs" to keep label cardinality bounded.
func endpointGroup(endpoint string) string {
	parts := strings.SplitN(strings.TrimPrefix(endpoint, "/"), "/", 3)
	if len(parts) >= 2 {
		return "/" + parts[0] + "/" + parts[1]
	}
	return "/" + parts[0]
}
