// Copyright (c) 2026 RuneBingo. All rights reserved.

// Package metrics owns the Prometheus registry and the collectors shared by
// the HTTP layer and the bingo domain.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "runebingo"

// Metrics groups every collector exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	transitions  *prometheus.CounterVec
	activities   *prometheus.CounterVec
}

// New builds a dedicated registry with runtime collectors and the application metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bingo",
			Name:      "transitions_total",
			Help:      "Bingo lifecycle transitions by kind.",
		}, []string{"transition"}),
		activities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bingo",
			Name:      "activities_total",
			Help:      "Activity entries recorded by key.",
		}, []string{"key"}),
	}

	registry.MustRegister(metrics.httpRequests, metrics.httpDuration, metrics.transitions, metrics.activities)
	return metrics
}

// ObserveHTTP records one finished request.
func (metrics *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	metrics.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	metrics.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// BingoTransition counts a lifecycle transition (start, end, cancel, reset, delete).
func (metrics *Metrics) BingoTransition(transition string) {
	metrics.transitions.WithLabelValues(transition).Inc()
}

// ActivityRecorded counts a persisted activity entry.
func (metrics *Metrics) ActivityRecorded(key string) {
	metrics.activities.WithLabelValues(key).Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (metrics *Metrics) Registry() *prometheus.Registry {
	return metrics.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (metrics *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{Registry: metrics.registry})
}
