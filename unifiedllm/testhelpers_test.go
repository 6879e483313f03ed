package unifiedllm

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// promptRecord is one call captured by recordingSink.
type promptRecord struct {
	Prompt   string
	Response string
}

// recordingSink is a PromptLogger that remembers every call.
type recordingSink struct {
	mu      sync.Mutex
	records []promptRecord
}

func (s *recordingSink) Log(prompt, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, promptRecord{Prompt: prompt, Response: response})
}

func (s *recordingSink) Records() []promptRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]promptRecord, len(s.records))
	copy(out, s.records)
	return out
}

// recordingSleeper collects requested delays without waiting.
type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) {
	s.delays = append(s.delays, d)
}

// staticKeys is a KeyProvider backed by a map.
type staticKeys map[string]string

func (k staticKeys) GetKey(name string) (string, error) {
	if v, ok := k[name]; ok {
		return v, nil
	}
	return "", errMissingTestKey
}

var errMissingTestKey = &SDKError{Message: "key not found"}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// eventLog subscribes to an emitter and keeps the events it sees.
type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func newEventLog() (*EventEmitter, *eventLog) {
	emitter := NewEventEmitter()
	log := &eventLog{}
	emitter.On(func(e Event) {
		log.mu.Lock()
		defer log.mu.Unlock()
		log.events = append(log.events, e)
	})
	return emitter, log
}

func (l *eventLog) OfType(typ EventType) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, e := range l.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// testOptions returns adapter options suitable for unit tests.
func testOptions(t *testing.T, sink PromptLogger, extra ...Option) []Option {
	t.Helper()
	opts := []Option{
		WithLogger(discardLogger()),
		WithPromptLogger(sink),
		WithSleeper(&recordingSleeper{}),
	}
	return append(opts, extra...)
}

func turnsOf(contents ...string) []Turn {
	out := make([]Turn, 0, len(contents))
	for i, c := range contents {
		if i%2 == 0 {
			out = append(out, UserTurn(c))
		} else {
			out = append(out, AssistantTurn(c))
		}
	}
	return out
}
