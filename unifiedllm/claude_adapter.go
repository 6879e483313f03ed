package unifiedllm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeAdapter implements Backend for the Anthropic Messages API through
// the official SDK. It has no context-overflow recovery and no reasoning
// repair: any provider error resolves to the disconnect fallback.
type ClaudeAdapter struct {
	cfg      BackendConfig
	client   anthropic.Client
	exchange *exchange
}

// NewClaudeAdapter creates a Claude adapter. cfg.EndpointURL, when set,
// replaces the SDK's base URL.
func NewClaudeAdapter(cfg BackendConfig, opts ...Option) (*ClaudeAdapter, error) {
	o := newAdapterOptions(opts)
	cfg = cfg.withDefaults(DefaultConfig(ProviderClaude))

	key, err := o.resolveAPIKey(cfg.APIKey, KeyName(ProviderClaude))
	if err != nil {
		return nil, err
	}
	cfg.APIKey = key

	clientOpts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithHTTPClient(o.httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.EndpointURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(strings.TrimRight(cfg.EndpointURL, "/")+"/"))
	}

	a := &ClaudeAdapter{
		cfg:    cfg,
		client: anthropic.NewClient(clientOpts...),
	}
	a.exchange = &exchange{
		provider: ProviderClaude,
		model:    cfg.ModelName,
		caps:     a.Capabilities(),
		format:   StrictFormat,
		call:     a.complete,
		overflow: neverOverflow,
		opts:     o,
	}
	return a, nil
}

func (a *ClaudeAdapter) Name() string  { return ProviderClaude }
func (a *ClaudeAdapter) Model() string { return a.cfg.ModelName }

func (a *ClaudeAdapter) Capabilities() Capabilities {
	return Capabilities{Embeddings: EmbedUnsupported}
}

// SendRequest sends the conversation and returns the reply text.
func (a *ClaudeAdapter) SendRequest(ctx context.Context, turns []Turn, systemMessage string, opts ...RequestOption) string {
	return a.exchange.send(ctx, turns, systemMessage, resolveRequestSettings(a.cfg, opts))
}

// Embed is not offered by Claude.
func (a *ClaudeAdapter) Embed(_ context.Context, _ string) ([]float64, error) {
	return nil, &UnsupportedCapabilityError{
		SDKError:   SDKError{Message: "embeddings are not supported by Claude"},
		Provider:   ProviderClaude,
		Capability: "embeddings",
	}
}

func (a *ClaudeAdapter) buildParams(system string, messages []Turn, stop string) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.cfg.ModelName),
		MaxTokens: int64(a.cfg.MaxTokens),
	}
	// The API rejects empty text blocks, so an empty system prompt is omitted.
	if strings.TrimSpace(system) != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if a.cfg.Temperature > 0 {
		params.Temperature = anthropic.Float(a.cfg.Temperature)
	}
	if a.cfg.TopP > 0 {
		params.TopP = anthropic.Float(a.cfg.TopP)
	}
	if stop != "" {
		params.StopSequences = []string{stop}
	}

	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}
	return params
}

func (a *ClaudeAdapter) complete(ctx context.Context, system string, messages []Turn, stop string) (string, error) {
	msg, err := a.client.Messages.New(ctx, a.buildParams(system, messages, stop))
	if err != nil {
		return "", &NetworkError{SDKError: SDKError{Message: "anthropic request failed", Cause: err}}
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
