package unifiedllm

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventEmitter_RegistersAndCallsListeners(t *testing.T) {
	emitter := NewEventEmitter()

	var received []Event
	emitter.On(func(e Event) {
		received = append(received, e)
	})

	emitter.Emit(Event{
		Type:      EventContextTruncated,
		Timestamp: time.Now(),
		Provider:  ProviderGroq,
		Data:      map[string]any{"from_turns": 4, "to_turns": 3},
	})

	require.Len(t, received, 1)
	assert.Equal(t, EventContextTruncated, received[0].Type)
	assert.Equal(t, "groq", received[0].Provider)
	assert.Equal(t, 3, received[0].Data["to_turns"])
}

func TestEventEmitter_ConcurrentAccess(t *testing.T) {
	emitter := NewEventEmitter()

	var mu sync.Mutex
	var received []Event

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			emitter.On(func(e Event) {
				mu.Lock()
				received = append(received, e)
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			emitter.Emit(Event{Type: EventRequestAttempt, Timestamp: time.Now()})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, len(received))
}

func TestEventEmitter_ListenerCount(t *testing.T) {
	emitter := NewEventEmitter()
	assert.Equal(t, 0, emitter.ListenerCount())

	emitter.On(func(e Event) {})
	emitter.On(func(e Event) {})
	assert.Equal(t, 2, emitter.ListenerCount())
}

func TestEventEmitter_NilIsSilent(t *testing.T) {
	var emitter *EventEmitter
	assert.NotPanics(t, func() {
		emitter.Emit(Event{Type: EventFallback})
	})
}
