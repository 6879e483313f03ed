package unifiedllm

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// GroqAdapter implements Backend for Groq Cloud through its
// OpenAI-compatible API. Groq has no notion of a custom endpoint, so a
// supplied URL is reported and ignored.
type GroqAdapter struct {
	cfg      BackendConfig
	client   *openai.Client
	exchange *exchange
}

// NewGroqAdapter creates a Groq adapter.
func NewGroqAdapter(cfg BackendConfig, opts ...Option) (*GroqAdapter, error) {
	o := newAdapterOptions(opts)
	def := DefaultConfig(ProviderGroq)
	cfg = cfg.withDefaults(def)

	if cfg.EndpointURL != "" {
		o.logger.Warn("Groq Cloud has no implementation for custom URLs, ignoring provided URL",
			"url", cfg.EndpointURL)
		cfg.EndpointURL = ""
	}

	key, err := o.resolveAPIKey(cfg.APIKey, KeyName(ProviderGroq))
	if err != nil {
		return nil, err
	}
	cfg.APIKey = key

	return newGroqAdapter(cfg, def.EndpointURL, o), nil
}

// newGroqAdapter wires the SDK client against baseURL.
func newGroqAdapter(cfg BackendConfig, baseURL string, o adapterOptions) *GroqAdapter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	clientCfg.HTTPClient = o.httpClient

	a := &GroqAdapter{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}
	a.exchange = &exchange{
		provider: ProviderGroq,
		model:    cfg.ModelName,
		caps:     a.Capabilities(),
		format:   passthroughFormat,
		call:     a.complete,
		overflow: overflowByMessage,
		opts:     o,
	}
	return a
}

func (a *GroqAdapter) Name() string  { return ProviderGroq }
func (a *GroqAdapter) Model() string { return a.cfg.ModelName }

func (a *GroqAdapter) Capabilities() Capabilities {
	return Capabilities{
		OverflowRecovery: true,
		ReasoningRepair:  true,
		Embeddings:       EmbedNoop,
	}
}

// SendRequest sends the conversation and returns the normalized reply.
func (a *GroqAdapter) SendRequest(ctx context.Context, turns []Turn, systemMessage string, opts ...RequestOption) string {
	return a.exchange.send(ctx, turns, systemMessage, resolveRequestSettings(a.cfg, opts))
}

// Embed logs that embeddings are unavailable and returns no vector.
func (a *GroqAdapter) Embed(_ context.Context, text string) ([]float64, error) {
	a.exchange.opts.logger.Info("there is no support for embeddings in Groq Cloud",
		"provider", ProviderGroq, "text", text)
	return nil, nil
}

func (a *GroqAdapter) buildRequest(system string, messages []Turn, stop string) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:       a.cfg.ModelName,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: float32(a.cfg.Temperature),
		TopP:        float32(a.cfg.TopP),
		Stream:      false,
	}
	if stop != "" {
		req.Stop = []string{stop}
	}

	req.Messages = append(req.Messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return req
}

func (a *GroqAdapter) complete(ctx context.Context, system string, messages []Turn, stop string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, a.buildRequest(system, messages, stop))
	if err != nil {
		return "", &NetworkError{SDKError: SDKError{Message: "groq request failed", Cause: err}}
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
