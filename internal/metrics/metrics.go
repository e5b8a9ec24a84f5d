package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics is an in-process metrics collector exposed on /metrics.
// Counters and gauges are updated with atomics so request handlers
// never contend on the map locks for hot counters.
type Metrics struct {
	mu           sync.RWMutex
	counters     map[string]*int64
	gauges       map[string]*int64
	healthChecks map[string]*int64
	startTime    time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		counters:     make(map[string]*int64),
		gauges:       make(map[string]*int64),
		healthChecks: make(map[string]*int64),
		startTime:    time.Now(),
	}
}

// IncrementCounter increments a counter by 1
func (m *Metrics) IncrementCounter(name string) {
	m.IncrementCounterBy(name, 1)
}

// IncrementCounterBy increments a counter by the specified value
func (m *Metrics) IncrementCounterBy(name string, value int64) {
	atomic.AddInt64(m.slot(&m.counters, name), value)
}

// SetGauge sets a gauge to a specific value
func (m *Metrics) SetGauge(name string, value int64) {
	atomic.StoreInt64(m.slot(&m.gauges, name), value)
}

// SetHealthCheck records a named health status
func (m *Metrics) SetHealthCheck(name string, healthy bool) {
	var v int64
	if healthy {
		v = 1
	}
	atomic.StoreInt64(m.slot(&m.healthChecks, name), v)
}

func (m *Metrics) slot(table *map[string]*int64, name string) *int64 {
	m.mu.RLock()
	p, ok := (*table)[name]
	m.mu.RUnlock()
	if ok {
		return p
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok = (*table)[name]; !ok {
		p = new(int64)
		(*table)[name] = p
	}
	return p
}

// GetAllMetrics returns a snapshot of every metric plus process uptime
func (m *Metrics) GetAllMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for name, p := range m.counters {
		counters[name] = atomic.LoadInt64(p)
	}
	gauges := make(map[string]int64, len(m.gauges))
	for name, p := range m.gauges {
		gauges[name] = atomic.LoadInt64(p)
	}

	return map[string]interface{}{
		"counters":       counters,
		"gauges":         gauges,
		"health":         m.healthSnapshot(),
		"uptime_seconds": int64(time.Since(m.startTime).Seconds()),
	}
}

// GetHealthChecks returns the current health statuses
func (m *Metrics) GetHealthChecks() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthSnapshot()
}

func (m *Metrics) healthSnapshot() map[string]bool {
	health := make(map[string]bool, len(m.healthChecks))
	for name, p := range m.healthChecks {
		health[name] = atomic.LoadInt64(p) == 1
	}
	return health
}
