// Package metrics provides Prometheus metrics for the pharmacy service.
// HTTP traffic:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Domain state:
//   - pharmacy_inventory_records / pharmacy_inventory_units: Gauges
//   - pharmacy_orders_pending: Gauge
//   - pharmacy_orders_processed_total: Counter with outcome label
//   - pharmacy_saves_total: Counter with result label
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (clients seen since last cleanup)",
		},
	)

	InventoryRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pharmacy_inventory_records",
			Help: "Distinct medicines in the inventory",
		},
	)

	InventoryUnits = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pharmacy_inventory_units",
			Help: "Total units on shelf across all medicines",
		},
	)

	OrdersPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pharmacy_orders_pending",
			Help: "Orders waiting in the queue",
		},
	)

	OrdersProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pharmacy_orders_processed_total",
			Help: "Orders taken off the queue, by outcome",
		},
		[]string{"outcome"},
	)

	SavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pharmacy_saves_total",
			Help: "Inventory saves, by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(InventoryRecords)
	prometheus.MustRegister(InventoryUnits)
	prometheus.MustRegister(OrdersPending)
	prometheus.MustRegister(OrdersProcessedTotal)
	prometheus.MustRegister(SavesTotal)
}
