// Package metrics holds Prometheus instruments used across the chart host.
// All collectors are registered with the global registry, so importing this
// package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ChartsRenderedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "charts_rendered_total",
			Help: "Charts emitted to a render tree, by selection mode.",
		}, []string{"mode"})

	WidgetsRegisteredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chart_widgets_registered_total",
			Help: "Cumulative number of chart widget registrations.",
		})

	WidgetEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_events_total",
			Help: "Selection events applied to widgets, by whether they scheduled a rerun.",
		}, []string{"rerun"})

	PublishCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "publish_cache_hits_total",
			Help: "Remote publishes served from the memo or the ledger.",
		})

	PublishCacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "publish_cache_misses_total",
			Help: "Remote publishes that required a network call.",
		})

	PublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "publish_errors_total",
			Help: "Failed calls to the chart-hosting service.",
		})

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Number of browser sessions currently held in memory.",
		})
)

func init() {
	prometheus.MustRegister(
		ChartsRenderedTotal,
		WidgetsRegisteredTotal,
		WidgetEventsTotal,
		PublishCacheHitsTotal,
		PublishCacheMissesTotal,
		PublishErrorsTotal,
		ActiveSessions,
	)
}
