// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersCreated counts successfully created orders.
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Number of orders created.",
	})

	// StatusChanges counts manual status transitions by target status.
	StatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Number of manual order status changes.",
	}, []string{"status"})

	// PaymentEvents counts consumed payment events by outcome.
	PaymentEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_events_total",
		Help: "Number of payment events processed, by outcome.",
	}, []string{"outcome"})

	// UpstreamFailures counts failed calls to collaborator services.
	UpstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_failures_total",
		Help: "Number of failed catalog/payment client calls.",
	}, []string{"service"})
)

// Payment event outcomes.
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
	OutcomeOrphaned  = "orphaned"
)
