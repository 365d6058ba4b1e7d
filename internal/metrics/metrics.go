package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Scrape and render metrics
var (
	ScrapeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imdb_scrape_requests_total",
			Help: "Total number of IMDB page fetches, by page kind and outcome.",
		},
		[]string{"page", "status"},
	)

	HeatmapRendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heatmap_renders_total",
			Help: "Total number of heatmap renders, by output format and outcome.",
		},
		[]string{"format", "status"},
	)

	RenderSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "heatmap_render_seconds",
			Help:    "Time spent rendering a single heatmap image.",
			Buckets: prometheus.DefBuckets,
		},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests served by the API.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "code"},
	)

	HTTPInFlightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served by the API.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ScrapeRequestsTotal,
		HeatmapRendersTotal,
		RenderSeconds,
		HTTPRequestDuration,
		HTTPInFlightRequests,
	)
}
