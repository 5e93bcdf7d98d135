package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the severity service.
type Metrics struct {
	Submissions      *prometheus.CounterVec // labels: method={manual,dynamic}
	Predictions      *prometheus.CounterVec // labels: severity={Safe,Moderate,Severe,Unknown}
	SubmissionErrors *prometheus.CounterVec // labels: kind={network,parse,lookup,...}
	ModelLoaded      prometheus.Gauge

	// Geolocation metrics.
	GeoRequests    *prometheus.CounterVec   // labels: step={ip,location}, outcome={success,error,not_found}
	GeoCache       *prometheus.CounterVec   // labels: step={ip,location}, result={hit,miss}
	GeoAPIDuration *prometheus.HistogramVec // labels: step={ip,location}

	// Prediction event stream metrics.
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.Submissions,
		m.Predictions,
		m.SubmissionErrors,
		m.ModelLoaded,
		m.GeoRequests,
		m.GeoCache,
		m.GeoAPIDuration,
		m.EventsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "severity",
			Name:      "submissions_total",
			Help:      "Form submissions by location method.",
		}, []string{"method"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "severity",
			Name:      "predictions_total",
			Help:      "Completed predictions by severity label.",
		}, []string{"severity"}),
		SubmissionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "severity",
			Name:      "submission_errors_total",
			Help:      "Submissions that ended in a user-facing error, by error kind.",
		}, []string{"kind"}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "severity",
			Name:      "model_loaded",
			Help:      "1 when the classifier model artifact is loaded, 0 otherwise.",
		}),
		GeoRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "severity",
			Name:      "geolocation_requests_total",
			Help:      "Geolocation API requests by step and outcome.",
		}, []string{"step", "outcome"}),
		GeoCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "severity",
			Name:      "geolocation_cache_total",
			Help:      "Geolocation memo cache lookups by step and result.",
		}, []string{"step", "result"}),
		GeoAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "severity",
			Name:      "geolocation_api_duration_seconds",
			Help:      "Geolocation API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"step"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "severity",
			Name:      "events_published_total",
			Help:      "Prediction events written to the event topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "severity",
			Name:      "publish_errors_total",
			Help:      "Prediction events that failed to publish.",
		}),
	}
}
