// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus metrics for dispatch runs and webhook deliveries.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
)

const namespace = "slack_notifier"

var (
	// Buckets for dispatch run duration, 10ms up to the worst case of a fully retried delivery
	runDurationBuckets = []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 130, 300}

	// Buckets for attempts per delivery; the default policy makes at most 7
	attemptBuckets = []float64{1, 2, 3, 4, 5, 6, 7}
)

// Recorder records dispatch metrics into a Prometheus registry
type Recorder struct {
	gatherer prometheus.Gatherer

	// Deliveries counts webhook deliveries by outcome ("delivered" or "failed")
	Deliveries *prometheus.CounterVec
	// DeliveryAttempts observes the number of HTTP attempts per delivery
	DeliveryAttempts prometheus.Histogram
	// Runs counts dispatch runs by status
	Runs *prometheus.CounterVec
	// Groups counts channel groups by final status
	Groups *prometheus.CounterVec
	// RunDuration observes dispatch run wall time
	RunDuration prometheus.Histogram
	// MeetingsDeleted counts meetings removed after delivery
	MeetingsDeleted prometheus.Counter
}

// Ensure that Recorder implements domain.DispatchRecorder
var _ domain.DispatchRecorder = (*Recorder)(nil)

// NewRecorder registers the notifier metrics on reg. A nil reg uses a fresh registry.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Recorder{
		gatherer: reg,
		Deliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Total number of digest deliveries to Slack webhooks, by outcome and last status code.",
			},
			[]string{"outcome", "status_code"},
		),
		DeliveryAttempts: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "delivery_attempts",
				Help:      "Histogram of HTTP attempts made per digest delivery.",
				Buckets:   attemptBuckets,
			},
		),
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_runs_total",
				Help:      "Total number of dispatch runs, by status.",
			},
			[]string{"status"},
		),
		Groups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_groups_total",
				Help:      "Total number of channel groups processed, by final status.",
			},
			[]string{"status"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_run_duration_seconds",
				Help:      "Histogram of dispatch run duration in seconds.",
				Buckets:   runDurationBuckets,
			},
		),
		MeetingsDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "meetings_deleted_total",
				Help:      "Total number of web meetings deleted after their digest was delivered.",
			},
		),
	}
}

// Handler returns the HTTP handler for the Prometheus metrics endpoint.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// RecordDelivery counts one delivery outcome
func (r *Recorder) RecordDelivery(outcome models.DeliveryOutcome) {
	label := "failed"
	if outcome.Delivered {
		label = "delivered"
	}
	r.Deliveries.WithLabelValues(label, strconv.Itoa(outcome.StatusCode)).Inc()
	r.DeliveryAttempts.Observe(float64(outcome.Attempts))
}

// RecordRun counts a finished run and its groups
func (r *Recorder) RecordRun(report *models.DispatchReport) {
	if report == nil {
		return
	}
	r.Runs.WithLabelValues(string(report.Status)).Inc()
	if !report.FinishedAt.IsZero() && !report.StartedAt.IsZero() {
		r.RunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	}
	for _, g := range report.Groups {
		r.Groups.WithLabelValues(string(g.Status)).Inc()
		r.MeetingsDeleted.Add(float64(len(g.DeletedIDs)))
	}
}
