// Package metrics exposes Prometheus collectors for mapping, indexing and
// tree resolution. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "logmap"

// Metrics holds the collectors registered by New.
type Metrics struct {
	bytesMapped   prometheus.Counter
	bytesIndexed  prometheus.Counter
	linesIndexed  prometheus.Counter
	indexDuration prometheus.Histogram

	resolveDuration prometheus.Histogram
	matcherCalls    prometheus.Counter
	cursors         *prometheus.CounterVec
}

// New registers the collectors with reg. A nil reg creates unregistered
// collectors, which is convenient in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		bytesMapped: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "mapped_bytes_total",
			Help:      "Bytes of log files mapped into memory",
		}),
		bytesIndexed: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "indexed_bytes_total",
			Help:      "Bytes scanned for line terminators",
		}),
		linesIndexed: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "indexed_lines_total",
			Help:      "Lines found while building line indexes",
		}),
		indexDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "index_duration_seconds",
			Help:      "Time to build a line index",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4m
		}),
		resolveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Time to resolve a pattern tree",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		matcherCalls: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "matcher_calls_total",
			Help:      "Pattern searches run while resolving trees",
		}),
		cursors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cursors_total",
			Help:      "Cursors produced per tree node label",
		}, []string{"label"}),
	}
}

// ObserveMapping records a new memory mapping of n bytes.
func (m *Metrics) ObserveMapping(n int) {
	if m == nil {
		return
	}
	m.bytesMapped.Add(float64(n))
}

// ObserveIndex implements lineindex.Recorder.
func (m *Metrics) ObserveIndex(bytes, lines int) {
	if m == nil {
		return
	}
	m.bytesIndexed.Add(float64(bytes))
	m.linesIndexed.Add(float64(lines))
}

// ObserveIndexDuration records how long an index build took.
func (m *Metrics) ObserveIndexDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.indexDuration.Observe(d.Seconds())
}

// ObserveResolve implements tree.Recorder.
func (m *Metrics) ObserveResolve(d time.Duration) {
	if m == nil {
		return
	}
	m.resolveDuration.Observe(d.Seconds())
}

// ObserveNode implements tree.Recorder.
func (m *Metrics) ObserveNode(label string, tested, cursors int) {
	if m == nil {
		return
	}
	m.matcherCalls.Add(float64(tested))
	m.cursors.WithLabelValues(label).Add(float64(cursors))
}
