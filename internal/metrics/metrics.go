package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ── Pipeline metrics ───────────────────────────────────────────────────

var (
	LiquidityFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farmscope",
		Subsystem: "liquidity",
		Name:      "fetch_total",
		Help:      "Liquidity-range fetches per chain and outcome.",
	}, []string{"chain", "status"})

	PoolDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farmscope",
		Subsystem: "pipeline",
		Name:      "pool_dropped_total",
		Help:      "Active pools excluded from the APR output, by reason.",
	}, []string{"chain", "reason"})

	PipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "farmscope",
		Subsystem: "pipeline",
		Name:      "duration_seconds",
		Help:      "Duration of one APR computation per chain.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"chain", "status"})

	PoolAPR = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "farmscope",
		Subsystem: "pipeline",
		Name:      "pool_apr_percent",
		Help:      "Last computed reward APR per pool.",
	}, []string{"chain", "pool"})
)

// ── HTTP request metrics ───────────────────────────────────────────────

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farmscope",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status_code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "farmscope",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})
)
