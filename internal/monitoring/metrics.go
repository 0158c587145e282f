package monitoring

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors for one starbox process. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	CatalogRequests *prometheus.CounterVec
	CatalogDuration prometheus.Histogram
	ViewerRequests  *prometheus.CounterVec
	BoxObjects      *prometheus.GaugeVec
}

// NewMetrics registers the starbox collectors against reg, defaulting to the
// global registry when reg is nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starbox_catalog_requests_total",
		Help: "Catalog HTTP requests, labeled by response status code or \"error\".",
	}, []string{"code"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "starbox_catalog_request_duration_seconds",
		Help:    "Catalog HTTP request latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})
	viewer := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starbox_viewer_requests_total",
		Help: "Viewer HTTP requests, labeled by path and status code.",
	}, []string{"path", "code"})
	objects := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "starbox_box_objects",
		Help: "Objects in the last star box, labeled by stage (region or kept).",
	}, []string{"stage"})

	for name, c := range map[string]prometheus.Collector{
		"starbox_catalog_requests_total":           requests,
		"starbox_catalog_request_duration_seconds": duration,
		"starbox_viewer_requests_total":            viewer,
		"starbox_box_objects":                      objects,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register %s: %w", name, err)
		}
	}

	return &Metrics{
		gatherer:        gatherer,
		CatalogRequests: requests,
		CatalogDuration: duration,
		ViewerRequests:  viewer,
		BoxObjects:      objects,
	}, nil
}

// ObserveCatalog records one catalog request. code is the HTTP status, or
// "error" when no response arrived.
func (m *Metrics) ObserveCatalog(code string, d time.Duration) {
	if m == nil {
		return
	}
	m.CatalogRequests.WithLabelValues(code).Inc()
	m.CatalogDuration.Observe(d.Seconds())
}

// ObserveViewer records one viewer request.
func (m *Metrics) ObserveViewer(path string, code int) {
	if m == nil {
		return
	}
	m.ViewerRequests.WithLabelValues(path, strconv.Itoa(code)).Inc()
}

// SetBoxCounts publishes the size of the region query and of the kept set.
func (m *Metrics) SetBoxCounts(region, kept int) {
	if m == nil {
		return
	}
	m.BoxObjects.WithLabelValues("region").Set(float64(region))
	m.BoxObjects.WithLabelValues("kept").Set(float64(kept))
}

// Handler exposes the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if m != nil && m.gatherer != nil {
		gatherer = m.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
