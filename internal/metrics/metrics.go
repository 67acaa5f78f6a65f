// Package metrics registers the Prometheus collectors exported on
// /metrics.  Collectors are package-level and registered once with the
// default registry through promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "course_booking"

var (
	// HTTPRequests counts served requests by method, route template and
	// status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency per route template.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	BookingsUpserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_upserted_total",
		Help:      "Bookings written, by payment status.",
	}, []string{"payment_status"})

	SeatIncrements = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seat_increments_total",
		Help:      "Successful class seat counter increments.",
	})

	// PaymentIntents counts payment intent attempts; outcome is created
	// or failed.
	PaymentIntents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_intents_total",
		Help:      "Payment intent creation attempts.",
	}, []string{"outcome"})

	// Receipts counts receipt deliveries; outcome is one of queued,
	// dropped, sent, skipped or failed.
	Receipts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "receipts_total",
		Help:      "Receipt email lifecycle events.",
	}, []string{"outcome"})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler { return promhttp.Handler() }
