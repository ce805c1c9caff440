package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(iconSearchRetries, iconFallbacksTotal) }

var iconSearchRetries = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "icon_search_retries_total",
		Help: "Retried icon-search attempts after a transient failure.",
	},
)

var iconFallbacksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "icon_fallbacks_total",
		Help: "Default icon references served, by reason (empty|exhausted).",
	},
	[]string{"reason"},
)

func IncIconRetry() { iconSearchRetries.Inc() }

func IncIconFallback(reason string) {
	iconFallbacksTotal.WithLabelValues(norm(reason)).Inc()
}
