package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/theapemachine/taskagent/pkg/metrics"
)

var ErrClosed = errors.New("broker closed")

type subscriber struct {
	topic string
	ch    chan []byte
}

/*
SSEBroker fans JSON events out to the subscribers of a topic.  The chat
service uses the user id as topic, so each user only sees their own audit
trail.  Each event is sent as a single-line SSE message:

data: {json}\n\n
*/
type SSEBroker struct {
	mu        sync.RWMutex
	clients   map[*subscriber]struct{}
	closed    bool
	heartbeat time.Duration
	metrics   *metrics.StreamingMetrics
}

func NewSSEBroker(streaming *metrics.StreamingMetrics) *SSEBroker {
	if streaming == nil {
		streaming = metrics.NewStreamingMetrics()
	}

	return &SSEBroker{
		clients:   make(map[*subscriber]struct{}),
		heartbeat: 25 * time.Second,
		metrics:   streaming,
	}
}

/*
NewTestSSEBroker creates a broker with a shorter heartbeat for testing
*/
func NewTestSSEBroker() *SSEBroker {
	broker := NewSSEBroker(nil)
	broker.heartbeat = 100 * time.Millisecond
	return broker
}

func (broker *SSEBroker) Metrics() *metrics.StreamingMetrics {
	return broker.metrics
}

/*
Attach registers a subscriber for topic.  The returned detach func must be
called once the consumer stops reading.
*/
func (broker *SSEBroker) Attach(topic string) (<-chan []byte, func(), error) {
	sub := &subscriber{topic: topic, ch: make(chan []byte, 8)}

	broker.mu.Lock()

	if broker.closed {
		broker.mu.Unlock()
		return nil, nil, ErrClosed
	}

	broker.clients[sub] = struct{}{}
	broker.mu.Unlock()

	started := time.Now()
	broker.metrics.RecordConnect()

	var once sync.Once

	detach := func() {
		once.Do(func() {
			broker.remove(sub)
			broker.metrics.RecordDisconnect(time.Since(started))
		})
	}

	return sub.ch, detach, nil
}

/*
Stream copies events to w as SSE messages, with a comment heartbeat in
between, until events is closed, done fires, or a write fails.
*/
func (broker *SSEBroker) Stream(done <-chan struct{}, w io.Writer, flush func() error, events <-chan []byte) {
	ticker := time.NewTicker(broker.heartbeat)
	defer ticker.Stop()

	for {
		var err error

		select {
		case <-done:
			return
		case msg, ok := <-events:
			if !ok {
				return
			}

			_, err = fmt.Fprintf(w, "data: %s\n\n", msg)
		case <-ticker.C:
			_, err = io.WriteString(w, ": heartbeat\n\n")
		}

		if err == nil {
			err = flush()
		}

		if err != nil {
			return
		}
	}
}

// SetHeaders applies the event-stream response headers through set.
func SetHeaders(set func(key, value string)) {
	set("Content-Type", "text/event-stream")
	set("Cache-Control", "no-cache")
	set("Connection", "keep-alive")
}

/*
Broadcast marshals v to JSON and sends it to every subscriber of topic.
Slow subscribers miss the event rather than block the sender.
*/
func (broker *SSEBroker) Broadcast(topic string, v any) error {
	msg, err := json.Marshal(v)

	if err != nil {
		return err
	}

	broker.mu.RLock()
	defer broker.mu.RUnlock()

	if broker.closed {
		return nil
	}

	for sub := range broker.clients {
		if sub.topic != topic {
			continue
		}

		select {
		case sub.ch <- msg:
			broker.metrics.RecordEvent(false)
		default:
			broker.metrics.RecordEvent(true)
		}
	}

	return nil
}

// Subscribers counts the open streams for topic.
func (broker *SSEBroker) Subscribers(topic string) int {
	broker.mu.RLock()
	defer broker.mu.RUnlock()

	count := 0

	for sub := range broker.clients {
		if sub.topic == topic {
			count++
		}
	}

	return count
}

/*
Close disconnects all clients and prevents further subscriptions.
*/
func (broker *SSEBroker) Close() {
	broker.mu.Lock()
	defer broker.mu.Unlock()

	if broker.closed {
		return
	}

	broker.closed = true

	for sub := range broker.clients {
		close(sub.ch)
	}

	broker.clients = map[*subscriber]struct{}{}
}

func (broker *SSEBroker) remove(sub *subscriber) {
	broker.mu.Lock()
	defer broker.mu.Unlock()

	if _, ok := broker.clients[sub]; ok {
		delete(broker.clients, sub)
		close(sub.ch)
	}
}
