package metrics

import (
	"sync"
	"time"
)

// StreamingMetrics tracks the audit event stream.
type StreamingMetrics struct {
	mu sync.RWMutex

	TotalConnections  int64
	ActiveConnections int64
	ConnectionTime    time.Duration

	TotalEvents   int64
	DroppedEvents int64
}

func NewStreamingMetrics() *StreamingMetrics {
	return &StreamingMetrics{}
}

func (m *StreamingMetrics) RecordConnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalConnections++
	m.ActiveConnections++
}

// RecordDisconnect records a subscriber leaving after being connected for duration.
func (m *StreamingMetrics) RecordDisconnect(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ActiveConnections > 0 {
		m.ActiveConnections--
	}

	m.ConnectionTime += duration
}

// RecordEvent counts one delivery attempt to one subscriber.
func (m *StreamingMetrics) RecordEvent(dropped bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalEvents++

	if dropped {
		m.DroppedEvents++
	}
}

func (m *StreamingMetrics) GetMetrics() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	avg := 0.0

	if closed := m.TotalConnections - m.ActiveConnections; closed > 0 {
		avg = m.ConnectionTime.Seconds() / float64(closed)
	}

	return map[string]any{
		"total_connections":   m.TotalConnections,
		"active_connections":  m.ActiveConnections,
		"avg_connection_secs": avg,
		"total_events":        m.TotalEvents,
		"dropped_events":      m.DroppedEvents,
	}
}

func (m *StreamingMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalConnections = 0
	m.ActiveConnections = 0
	m.ConnectionTime = 0
	m.TotalEvents = 0
	m.DroppedEvents = 0
}
