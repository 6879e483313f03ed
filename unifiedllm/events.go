package unifiedllm

import (
	"sync"
	"time"
)

// EventType identifies a step in the life of a SendRequest call.
type EventType string

const (
	EventRequestAttempt   EventType = "request_attempt"
	EventContextTruncated EventType = "context_truncated"
	EventReasoningRetry   EventType = "reasoning_retry"
	EventReplyLogged      EventType = "reply_logged"
	EventLogSkipped       EventType = "log_skipped"
	EventFallback         EventType = "fallback"
)

// Event is an observable request event with typed data.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Provider  string         `json:"provider"`
	Model     string         `json:"model"`
	RequestID string         `json:"request_id"`
	Data      map[string]any `json:"data"`
}

// EventEmitter manages event listeners and dispatches events.
type EventEmitter struct {
	mu        sync.RWMutex
	listeners []func(Event)
}

// NewEventEmitter creates a new EventEmitter.
func NewEventEmitter() *EventEmitter {
	return &EventEmitter{
		listeners: make([]func(Event), 0),
	}
}

// On registers a listener function to receive events.
// Listeners are called synchronously in registration order.
func (e *EventEmitter) On(listener func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, listener)
}

// Emit dispatches an event to all registered listeners. A nil emitter
// drops the event.
func (e *EventEmitter) Emit(event Event) {
	if e == nil {
		return
	}
	e.mu.RLock()
	listeners := make([]func(Event), len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.RUnlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// ListenerCount returns the number of registered listeners.
func (e *EventEmitter) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}
