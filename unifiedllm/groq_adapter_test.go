package unifiedllm

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroqAdapter(t *testing.T, cfg BackendConfig, handler http.HandlerFunc, extra ...Option) (*GroqAdapter, *recordingSink) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg = cfg.withDefaults(DefaultConfig(ProviderGroq))
	if cfg.APIKey == "" {
		cfg.APIKey = "test-key"
	}
	sink := &recordingSink{}
	o := newAdapterOptions(testOptions(t, sink, extra...))
	return newGroqAdapter(cfg, server.URL+"/openai/v1", o), sink
}

func writeGroqReply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:     "chatcmpl-groq",
		Object: "chat.completion",
		Model:  "mixtral-8x7b-32768",
		Choices: []openai.ChatCompletionChoice{{
			Index:        0,
			FinishReason: openai.FinishReasonStop,
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			},
		}},
	})
}

func TestGroqAdapterName(t *testing.T) {
	adapter := &GroqAdapter{}
	assert.Equal(t, "groq", adapter.Name())
}

func TestGroqAdapterSendRequest(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mixtral-8x7b-32768", req.Model)
		assert.Equal(t, 16384, req.MaxTokens)
		assert.InDelta(t, 0.2, req.Temperature, 1e-6)
		assert.InDelta(t, 1.0, req.TopP, 1e-6)
		assert.Equal(t, []string{"***"}, req.Stop)
		assert.False(t, req.Stream)

		require.Len(t, req.Messages, 3)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Equal(t, "Be terse.", req.Messages[0].Content)
		assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[1].Role)
		assert.Equal(t, openai.ChatMessageRoleAssistant, req.Messages[2].Role)

		writeGroqReply(w, "Sure.")
	}

	adapter, sink := newTestGroqAdapter(t, BackendConfig{}, handler)
	reply := adapter.SendRequest(context.Background(), turnsOf("Hi", "Hello"), "Be terse.")

	assert.Equal(t, "Sure.", reply)
	require.Len(t, sink.Records(), 1)
}

func TestGroqAdapterStopOverride(t *testing.T) {
	var stops [][]string
	handler := func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		stops = append(stops, req.Stop)
		writeGroqReply(w, "ok")
	}

	adapter, _ := newTestGroqAdapter(t, BackendConfig{}, handler)
	adapter.SendRequest(context.Background(), turnsOf("Hi"), "", WithStop("END"))
	adapter.SendRequest(context.Background(), turnsOf("Hi"), "", WithStop(""))

	require.Len(t, stops, 2)
	assert.Equal(t, []string{"END"}, stops[0])
	assert.Empty(t, stops[1])
}

func TestGroqAdapterContextLengthShrinks(t *testing.T) {
	var sizes []int
	handler := func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		sizes = append(sizes, len(req.Messages))
		if len(req.Messages) > 2 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"Please reduce the length of the messages.","type":"invalid_request_error","code":"context_length_exceeded"}}`))
			return
		}
		writeGroqReply(w, "fits")
	}

	adapter, _ := newTestGroqAdapter(t, BackendConfig{}, handler)
	reply := adapter.SendRequest(context.Background(), turnsOf("1", "2", "3", "4"), "sys")

	assert.Equal(t, "fits", reply)
	assert.Equal(t, []int{5, 4, 3, 2}, sizes)
}

func TestGroqAdapterOverflowAtOneTurnFallsBack(t *testing.T) {
	var calls atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"This model's maximum context length is 32768 tokens","code":"context_length_exceeded"}}`))
	}

	adapter, _ := newTestGroqAdapter(t, BackendConfig{}, handler)
	reply := adapter.SendRequest(context.Background(), turnsOf("1", "2"), "")

	assert.Equal(t, FallbackDisconnected, reply)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGroqAdapterOtherErrorFallsBack(t *testing.T) {
	var calls atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API Key","code":"invalid_api_key"}}`))
	}

	adapter, sink := newTestGroqAdapter(t, BackendConfig{}, handler)
	reply := adapter.SendRequest(context.Background(), turnsOf("1", "2", "3"), "")

	assert.Equal(t, FallbackDisconnected, reply)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, sink.Records())
}

func TestGroqAdapterReasoningStripped(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeGroqReply(w, "<think>Let me see.</think>\nParis.")
	}

	adapter, _ := newTestGroqAdapter(t, BackendConfig{ModelName: "deepseek-r1-distill-llama-70b"}, handler)
	assert.Equal(t, "Paris.", adapter.SendRequest(context.Background(), turnsOf("capital of France?"), ""))
}

func TestGroqAdapterReasoningExhausted(t *testing.T) {
	var calls atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeGroqReply(w, "<think>and so on")
	}

	adapter, sink := newTestGroqAdapter(t, BackendConfig{ModelName: "deepseek-r1-distill-llama-70b"}, handler)
	reply := adapter.SendRequest(context.Background(), turnsOf("q"), "")

	assert.Equal(t, FallbackIncomplete, reply)
	assert.Equal(t, int32(DefaultMaxAttempts), calls.Load())
	assert.Empty(t, sink.Records())
}

func TestGroqAdapterIgnoresCustomURL(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	adapter, err := NewGroqAdapter(BackendConfig{APIKey: "k", EndpointURL: "http://example.invalid"},
		WithLogger(logger))
	require.NoError(t, err)

	assert.Empty(t, adapter.cfg.EndpointURL)
	assert.Contains(t, buf.String(), "Groq Cloud has no implementation for custom URLs")
}

func TestGroqAdapterMissingKey(t *testing.T) {
	_, err := NewGroqAdapter(BackendConfig{}, WithKeyProvider(staticKeys{}), WithLogger(discardLogger()))

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "GROQCLOUD_API_KEY")
}

func TestGroqAdapterEmbedIsNoop(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	adapter, err := NewGroqAdapter(BackendConfig{APIKey: "k"}, WithLogger(logger))
	require.NoError(t, err)

	vec, err := adapter.Embed(context.Background(), "hello")
	assert.NoError(t, err)
	assert.Nil(t, vec)
	assert.Contains(t, buf.String(), "no support for embeddings")
}
