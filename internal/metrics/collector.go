package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service's Prometheus metrics on its own registry, so
// tests can build as many as they like. All record methods are safe on a nil
// receiver.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	PublishTransitions *prometheus.CounterVec
	PublishDuration    prometheus.Histogram
	CoinsMinted        prometheus.Counter
	PersistFailures    prometheus.Counter

	Tips        prometheus.Counter
	BattleVotes prometheus.Counter
}

func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		PublishTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publish_transitions_total",
				Help:      "Publish pipeline status transitions by target status",
			},
			[]string{"status"},
		),
		PublishDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "publish_duration_seconds",
				Help:      "Wall time of a publish run from uploading to a terminal status",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
		),
		CoinsMinted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "coins_minted_total",
				Help:      "Total number of coins deployed",
			},
		),
		PersistFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "record_persist_failures_total",
				Help:      "Coins deployed whose gallery record could not be stored",
			},
		),
		Tips: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gallery_tips_total",
				Help:      "Total number of tips recorded",
			},
		),
		BattleVotes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gallery_battle_votes_total",
				Help:      "Total number of battle votes",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.PublishTransitions,
		c.PublishDuration,
		c.CoinsMinted,
		c.PersistFailures,
		c.Tips,
		c.BattleVotes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordTransition(status string) {
	if c == nil {
		return
	}
	c.PublishTransitions.WithLabelValues(status).Inc()
}

func (c *Collector) RecordPublish(duration time.Duration, minted bool) {
	if c == nil {
		return
	}
	c.PublishDuration.Observe(duration.Seconds())
	if minted {
		c.CoinsMinted.Inc()
	}
}

func (c *Collector) RecordPersistFailure() {
	if c == nil {
		return
	}
	c.PersistFailures.Inc()
}

func (c *Collector) RecordTip() {
	if c == nil {
		return
	}
	c.Tips.Inc()
}

func (c *Collector) RecordVote() {
	if c == nil {
		return
	}
	c.BattleVotes.Inc()
}
