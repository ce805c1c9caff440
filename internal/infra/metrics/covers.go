package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(coversTotal, renderLatencyMs, batchPassesTotal) }

var coversTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "covers_total",
		Help: "Work-item outcomes by kind and language.",
	},
	[]string{"outcome", "lang"},
)

var renderLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "cover_render_latency_ms",
		Help:    "Headless-browser render latency distribution in milliseconds.",
		Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000, 30000},
	},
	[]string{"success"},
)

var batchPassesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "batch_passes_total",
		Help: "Number of batch passes dispatched, including retry passes.",
	},
)

func IncOutcome(outcome, lang string) {
	coversTotal.WithLabelValues(norm(outcome), norm(lang)).Inc()
}

func ObserveRender(latencyMs int64, success bool) {
	renderLatencyMs.WithLabelValues(strconv.FormatBool(success)).Observe(float64(latencyMs))
}

func IncBatchPass() { batchPassesTotal.Inc() }
