package metrics

import (
	"maps"
	"sync"
	"time"
)

/*
TurnMetrics aggregates what the assistant reports about each turn: which
intent won and through which cascade step, how often an external port had
to be routed around, and how confirmed actions fared.
*/
type TurnMetrics struct {
	mu sync.RWMutex

	turns        int64
	byIntent     map[string]int64
	bySource     map[string]int64
	portFailures map[string]int64
	actions      map[string]ActionCount
	totalLatency time.Duration
	maxLatency   time.Duration
}

type ActionCount struct {
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

// TurnSnapshot is a point-in-time copy of TurnMetrics.
type TurnSnapshot struct {
	Turns          int64                  `json:"turns"`
	ByIntent       map[string]int64       `json:"by_intent"`
	BySource       map[string]int64       `json:"by_source"`
	PortFailures   map[string]int64       `json:"port_failures"`
	Actions        map[string]ActionCount `json:"actions"`
	AverageLatency float64                `json:"avg_latency_ms"`
	MaxLatency     float64                `json:"max_latency_ms"`
}

func NewTurnMetrics() *TurnMetrics {
	return &TurnMetrics{
		byIntent:     map[string]int64{},
		bySource:     map[string]int64{},
		portFailures: map[string]int64{},
		actions:      map[string]ActionCount{},
	}
}

func (m *TurnMetrics) RecordTurn(intent, source string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns++
	m.byIntent[intent]++
	m.bySource[source]++
	m.totalLatency += elapsed
	m.maxLatency = max(m.maxLatency, elapsed)
}

func (m *TurnMetrics) RecordPortFailure(port string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.portFailures[port]++
}

func (m *TurnMetrics) RecordAction(action string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := m.actions[action]

	if success {
		count.Succeeded++
	} else {
		count.Failed++
	}

	m.actions[action] = count
}

func (m *TurnMetrics) Snapshot() TurnSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := TurnSnapshot{
		Turns:        m.turns,
		ByIntent:     maps.Clone(m.byIntent),
		BySource:     maps.Clone(m.bySource),
		PortFailures: maps.Clone(m.portFailures),
		Actions:      maps.Clone(m.actions),
		MaxLatency:   float64(m.maxLatency) / float64(time.Millisecond),
	}

	if m.turns > 0 {
		snapshot.AverageLatency = float64(m.totalLatency) / float64(m.turns) / float64(time.Millisecond)
	}

	return snapshot
}
