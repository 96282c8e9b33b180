package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "solarize"

// Metrics holds the Prometheus counters and histograms for the analysis service.
type Metrics struct {
	AnalysesTotal     *prometheus.CounterVec   // labels: outcome={success,invalid,calculation_error,upstream_error,enrichment_error,store_error}
	StageDuration     *prometheus.HistogramVec // labels: stage={weather,calculate,enrich,store,publish}
	CalculationErrors *prometheus.CounterVec   // labels: field

	// Weather provider metrics.
	WeatherRequests    *prometheus.CounterVec // labels: outcome={success,error}
	WeatherCache       *prometheus.CounterVec // labels: result={hit,miss,shared}
	WeatherAPIDuration prometheus.Histogram

	// Enrichment metrics.
	EnrichmentRequests *prometheus.CounterVec // labels: outcome={success,error,invalid}
	EnrichmentDuration prometheus.Histogram

	AnalysesPublished *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analysis requests by outcome.",
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_stage_duration_seconds",
			Help:      "Duration of each analysis stage.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		CalculationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculation_errors_total",
			Help:      "Sizing calculations rejected, by offending input.",
		}, []string{"field"}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_requests_total",
			Help:      "OpenWeather API requests by outcome.",
		}, []string{"outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_api_duration_seconds",
			Help:      "OpenWeather API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		EnrichmentRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_requests_total",
			Help:      "LLM enrichment attempts by outcome.",
		}, []string{"outcome"}),
		EnrichmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "enrichment_duration_seconds",
			Help:      "LLM enrichment request duration in seconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		AnalysesPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_published_total",
			Help:      "Analysis events written to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.AnalysesTotal,
		m.StageDuration,
		m.CalculationErrors,
		m.WeatherRequests,
		m.WeatherCache,
		m.WeatherAPIDuration,
		m.EnrichmentRequests,
		m.EnrichmentDuration,
		m.AnalysesPublished,
	}
}
