package authkit

import (
	"sync/atomic"
	"time"
)

// MetricID defines a public type used by authkit APIs.
//
// MetricID instances are intended to be configured during initialization and then
// treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricLoginSuccess is an exported constant or variable used by the session kit.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure is an exported constant or variable used by the session kit.
	MetricLoginFailure
	// MetricLogout is an exported constant or variable used by the session kit.
	MetricLogout
	// MetricLogoutTransportError is an exported constant or variable used by the session kit.
	MetricLogoutTransportError
	// MetricBootstrapSuccess is an exported constant or variable used by the session kit.
	MetricBootstrapSuccess
	// MetricBootstrapFailure is an exported constant or variable used by the session kit.
	MetricBootstrapFailure
	// MetricBootstrapSkipped is an exported constant or variable used by the session kit.
	MetricBootstrapSkipped
	// MetricRenewSuccess is an exported constant or variable used by the session kit.
	MetricRenewSuccess
	// MetricRenewFailure is an exported constant or variable used by the session kit.
	MetricRenewFailure
	// MetricRenewShared is an exported constant or variable used by the session kit.
	MetricRenewShared
	// MetricForcedLogout is an exported constant or variable used by the session kit.
	MetricForcedLogout
	// MetricTenantSwitch is an exported constant or variable used by the session kit.
	MetricTenantSwitch
	// MetricOperationLatency is an exported constant or variable used by the session kit.
	MetricOperationLatency

	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics defines a public type used by authkit APIs.
//
// Metrics holds atomic counters and an optional latency histogram for manager
// operations. When disabled, all operations are no-ops.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig].
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records an operation duration into the latency histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricOperationLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value returns the current counter value for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters and histograms.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricOperationLatency].buckets[i])
		}
		s.Histograms[MetricOperationLatency] = buckets
	}
	return s
}

// bucketIndex maps a duration to an exponential bucket:
// <1ms, <4ms, <16ms, <64ms, <256ms, <1s, <4s, rest.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()
	limit := int64(1)
	for i := 0; i < histBucketCount-1; i++ {
		if ms < limit {
			return i
		}
		limit *= 4
	}
	return histBucketCount - 1
}
