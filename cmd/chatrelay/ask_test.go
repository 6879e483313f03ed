package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/martinemde/chatrelay/unifiedllm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConversation_YAML(t *testing.T) {
	path := writeFile(t, "conv.yaml", `
system: You are a miner.
turns:
  - role: user
    content: dig
  - role: Assistant
    content: digging
`)
	conv, err := loadConversation(path)
	require.NoError(t, err)
	assert.Equal(t, "You are a miner.", conv.SystemMessage)
	assert.Equal(t, []unifiedllm.Turn{
		unifiedllm.UserTurn("dig"),
		unifiedllm.AssistantTurn("digging"),
	}, conv.Turns)
}

func TestLoadConversation_JSON(t *testing.T) {
	path := writeFile(t, "conv.json", `{
	"system": "sys",
	"turns": [{"role": "user", "content": "hi"}]
}`)
	conv, err := loadConversation(path)
	require.NoError(t, err)
	assert.Equal(t, "sys", conv.SystemMessage)
	require.Len(t, conv.Turns, 1)
}

func TestLoadConversation_Errors(t *testing.T) {
	_, err := loadConversation(writeFile(t, "conv.txt", "hi"))
	assert.ErrorContains(t, err, "unsupported")

	_, err = loadConversation(writeFile(t, "conv.yaml", "turns:\n  - role: narrator\n    content: x\n"))
	assert.ErrorContains(t, err, "turn 0")

	_, err = loadConversation(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorContains(t, err, "reading")
}

func TestBuildConversation(t *testing.T) {
	path := writeFile(t, "conv.yaml", "system: file\nturns:\n  - role: user\n    content: first\n")

	conv, err := buildConversation(path, "override", "second")
	require.NoError(t, err)
	assert.Equal(t, "override", conv.SystemMessage)
	assert.Equal(t, []unifiedllm.Turn{
		unifiedllm.UserTurn("first"),
		unifiedllm.UserTurn("second"),
	}, conv.Turns)

	_, err = buildConversation("", "", "  ")
	assert.Error(t, err, "a conversation needs at least one turn")
}

func TestAsk_Hyperbolic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer file-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "pong <|separator|>"},
			}},
		})
	}))
	defer server.Close()

	dir := t.TempDir()
	s := settings{
		Provider: unifiedllm.ProviderHyperbolic,
		Backend:  unifiedllm.BackendConfig{EndpointURL: server.URL},
		KeysFile: writeFile(t, "keys.json", `{"HYPERBOLIC_API_KEY": "file-key"}`),
		LogDir:   dir,
		LogKind:  "normal",
	}
	backend, err := buildBackend(s, discardLogger())
	require.NoError(t, err)

	var out bytes.Buffer
	conv := unifiedllm.Conversation{Turns: []unifiedllm.Turn{unifiedllm.UserTurn("ping")}}
	require.NoError(t, ask(context.Background(), backend, conv, &out))
	assert.Equal(t, "pong *no response*\n", out.String())

	data, err := os.ReadFile(filepath.Join(dir, "normal_logs.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "input,output\n")
	assert.Contains(t, string(data), "pong <|separator|>")
}

func TestBuildBackend_Errors(t *testing.T) {
	keysFile := writeFile(t, "keys.json", `{"GROQCLOUD_API_KEY": "k"}`)

	_, err := buildBackend(settings{Provider: "gemini", KeysFile: keysFile, LogDir: t.TempDir()}, discardLogger())
	var cfgErr *unifiedllm.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = buildBackend(settings{Provider: "groq", KeysFile: keysFile, LogDir: t.TempDir(), LogKind: "audio"}, discardLogger())
	assert.ErrorContains(t, err, "unknown log kind")
}
