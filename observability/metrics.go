package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"trashbin/core/events"
)

type rpcMetrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

type engineMetrics struct {
	events *prometheus.CounterVec
}

var (
	rpcMetricsOnce sync.Once
	rpcRegistry    *rpcMetrics

	engineMetricsOnce sync.Once
	engineRegistry    *engineMetrics
)

// RPCMetrics returns the lazily-initialised metrics registry used to record
// JSON-RPC activity.
func RPCMetrics() *rpcMetrics {
	rpcMetricsOnce.Do(func() {
		rpcRegistry = &rpcMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "trashbin",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total JSON-RPC requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "trashbin",
				Subsystem: "rpc",
				Name:      "errors_total",
				Help:      "Total JSON-RPC errors segmented by method and error code.",
			}, []string{"method", "code"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "trashbin",
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for JSON-RPC handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
		}
		prometheus.MustRegister(
			rpcRegistry.requests,
			rpcRegistry.errors,
			rpcRegistry.latency,
		)
	})
	return rpcRegistry
}

// Observe records the outcome of an RPC request.
func (m *rpcMetrics) Observe(method string, errCode int, duration time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	outcome := "ok"
	if errCode != 0 {
		outcome = "error"
		m.errors.WithLabelValues(method, strconv.Itoa(errCode)).Inc()
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.latency.WithLabelValues(method).Observe(duration.Seconds())
}

// EngineMetrics returns the lazily-initialised registry counting engine
// events by type.
func EngineMetrics() *engineMetrics {
	engineMetricsOnce.Do(func() {
		engineRegistry = &engineMetrics{
			events: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "trashbin",
				Subsystem: "engine",
				Name:      "events_total",
				Help:      "Total engine events segmented by event type.",
			}, []string{"type"}),
		}
		prometheus.MustRegister(engineRegistry.events)
	})
	return engineRegistry
}

// CountingEmitter decorates an events.Emitter with a per-type prometheus
// counter. A nil next emitter only counts.
type CountingEmitter struct {
	next events.Emitter
}

// NewCountingEmitter wires the decorator in front of next.
func NewCountingEmitter(next events.Emitter) *CountingEmitter {
	return &CountingEmitter{next: next}
}

// Emit implements events.Emitter.
func (c *CountingEmitter) Emit(evt events.Event) {
	if evt != nil {
		EngineMetrics().events.WithLabelValues(evt.EventType()).Inc()
	}
	if c == nil || c.next == nil {
		return
	}
	c.next.Emit(evt)
}
