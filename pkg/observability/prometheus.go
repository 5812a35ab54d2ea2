package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	vo "metadata-scanner/domain/core/valueobjects"
)

// Collector exposes scan metrics on a private Prometheus registry.
type Collector struct {
	registry     *prometheus.Registry
	scansTotal   *prometheus.CounterVec
	scanDuration *prometheus.HistogramVec
	slicesTotal  *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		scansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Total number of metadata scan runs",
		}, []string{"app_id", "outcome"}),
		scanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Time taken by a metadata scan run",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"app_id", "outcome"}),
		slicesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slices_written_total",
			Help:      "Catalog slices written per domain",
		}, []string{"app_id", "domain"}),
	}
	c.registry.MustRegister(
		c.scansTotal,
		c.scanDuration,
		c.slicesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) RecordScan(ctx context.Context, appID, outcome string, duration time.Duration) {
	c.scansTotal.WithLabelValues(appID, outcome).Inc()
	c.scanDuration.WithLabelValues(appID, outcome).Observe(duration.Seconds())
}

func (c *Collector) RecordSlices(ctx context.Context, appID string, domain vo.CatalogDomain, count int) {
	c.slicesTotal.WithLabelValues(appID, domain.String()).Add(float64(count))
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
