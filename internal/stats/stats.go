// Package stats counts webhook delivery outcomes.
//
// Counts are kept twice: as Prometheus counters for scraping and as plain
// totals the dashboard reads when it renders.
package stats

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Totals is a snapshot of in-process counts.
type Totals struct {
	Sent    int
	Success int
	Failed  int
}

// Aggregator records webhook results. It satisfies
// livesync.StatisticsAggregator. Safe for concurrent use.
type Aggregator struct {
	registry *prometheus.Registry
	webhooks *prometheus.CounterVec

	mu     sync.Mutex
	totals Totals
}

// New creates an Aggregator with its own registry.
func New() *Aggregator {
	registry := prometheus.NewRegistry()
	webhooks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookwatch_webhooks_total",
			Help: "Webhook deliveries observed on the push stream, by result",
		},
		[]string{"result"},
	)
	registry.MustRegister(webhooks)

	// Pre-create both series so they scrape as 0 before the first event.
	webhooks.WithLabelValues(resultSuccess)
	webhooks.WithLabelValues(resultFailure)

	return &Aggregator{registry: registry, webhooks: webhooks}
}

// RecordWebhook counts one delivery.
func (a *Aggregator) RecordWebhook(success bool) {
	result := resultFailure
	if success {
		result = resultSuccess
	}
	a.webhooks.WithLabelValues(result).Inc()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.totals.Sent++
	if success {
		a.totals.Success++
	} else {
		a.totals.Failed++
	}
}

// Totals returns the counts recorded so far.
func (a *Aggregator) Totals() Totals {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totals
}

// Registry exposes the underlying registry for additional collectors.
func (a *Aggregator) Registry() *prometheus.Registry {
	return a.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (a *Aggregator) Handler() http.Handler {
	return promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
}
