package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts augmentation work on its own registry so that several
// runs in one process never collide.
type Metrics struct {
	Registry *prometheus.Registry
	Images   *prometheus.CounterVec
	Errors   prometheus.Counter
	Duration prometheus.Histogram
}

// New registers the augmentation metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Images: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "augment_images_total",
			Help: "Images written, by kind (image or target).",
		}, []string{"kind"}),
		Errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "augment_errors_total",
			Help: "Augmentations that failed.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "augment_duration_seconds",
			Help:    "Time spent augmenting one image or pair.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
	}
	m.Registry.MustRegister(m.Images, m.Errors, m.Duration)
	return m
}

// Observe records one augmentation that started at start.
func (m *Metrics) Observe(start time.Time, kinds []string, err error) {
	m.Duration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.Errors.Inc()
		return
	}
	for _, k := range kinds {
		m.Images.WithLabelValues(k).Inc()
	}
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// Handler serves the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
