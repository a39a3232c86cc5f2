// Package metrics provides Prometheus metrics for the retro pricer.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retro_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retro_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Scraper Metrics
	ScrapeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retro_scrape_requests_total",
			Help: "Outbound scrape requests by source and result",
		},
		[]string{"source", "result"}, // source: "pricecharting", "dkoldies"; result: "success", "failed", "blocked"
	)

	ScrapeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retro_scrape_duration_seconds",
			Help:    "Outbound scrape latency by source",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"source"},
	)

	// Price Cache Metrics
	PriceCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retro_price_cache_hits_total",
			Help: "Price lookups served from the local cache",
		},
	)

	PriceCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retro_price_cache_misses_total",
			Help: "Price lookups that required a live fetch",
		},
	)

	// Buy-List Metrics
	BuylistRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retro_buylist_refresh_total",
			Help: "Buy-list refreshes by source",
		},
		[]string{"source"}, // "live", "bundled", "none"
	)

	BuylistSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "retro_buylist_size",
			Help: "Number of entries in the current buy-list",
		},
	)

	MatchScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retro_buylist_match_score",
			Help:    "Fuzzy match scores for buy-price lookups",
			Buckets: []float64{0.1, 0.25, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	// Vision Metrics
	VisionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retro_vision_requests_total",
			Help: "Image identification requests by result",
		},
		[]string{"result"}, // "success", "failed"
	)

	VisionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retro_vision_latency_seconds",
			Help:    "Vision API call latency",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30},
		},
	)
)
